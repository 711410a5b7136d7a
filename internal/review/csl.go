// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"io"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litreview/pkg/types"
)

// CSLItem is a bibliographic entry in CSL-YAML form, consumable by Pandoc
// and reference managers.
type CSLItem struct {
	ID        string    `yaml:"id"`
	Type      string    `yaml:"type"`
	Title     string    `yaml:"title"`
	Author    []CSLName `yaml:"author,omitempty"`
	Abstract  string    `yaml:"abstract,omitempty"`
	Issued    *CSLDate  `yaml:"issued,omitempty"`
	URL       string    `yaml:"URL,omitempty"`
	Number    string    `yaml:"number,omitempty"`
	Publisher string    `yaml:"publisher,omitempty"`
	Status    string    `yaml:"status,omitempty"`
}

// CSLName is a person's name in CSL form.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate is a CSL date using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes records as a CSL-YAML list to w.
func FormatCSL(recs []types.Record, w io.Writer) error {
	items := make([]CSLItem, 0, len(recs))
	for _, r := range recs {
		items = append(items, ToCSLItem(r))
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// ToCSLItem converts a record. Preprints become articles, trials become
// reports numbered by registry id, and web results become webpages.
func ToCSLItem(r types.Record) CSLItem {
	item := CSLItem{
		ID:       r.Identifier(),
		Title:    r.Title,
		Abstract: r.Abstract,
		URL:      r.Link,
	}
	switch {
	case r.Preprint != nil:
		item.Type = "article"
		item.ID = "arXiv:" + item.ID
		item.Publisher = "arXiv"
		if r.Preprint.SourceURL != "" {
			item.URL = r.Preprint.SourceURL
		}
		for _, a := range r.Preprint.Authors {
			item.Author = append(item.Author, parseAuthorName(a))
		}
		if t, err := time.Parse(time.DateOnly, r.Preprint.Published); err == nil {
			item.Issued = &CSLDate{DateParts: [][]int{{t.Year(), int(t.Month()), t.Day()}}}
		}
	case r.Trial != nil:
		item.Type = "report"
		item.Number = r.Trial.RegistryID
		item.Publisher = "ClinicalTrials.gov"
		item.Status = r.Trial.Status
	default:
		item.Type = "webpage"
		if item.Abstract == "" {
			item.Abstract = r.Snippet
		}
	}
	return item
}

// parseAuthorName splits on the last space: everything before is given, the
// last token is family. Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
