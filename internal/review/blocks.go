// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"fmt"
	"strings"

	"github.com/pdiddy/litreview/pkg/types"
)

const (
	bodyChars    = 500
	summaryChars = 300
)

// WebBlock renders web results for the synthesis prompt.
func WebBlock(topic string, recs []types.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on Google search for '%s', here are the findings:\n", topic)
	if len(recs) == 0 {
		b.WriteString("\nNo Google search results found.\n")
		return b.String()
	}
	for _, r := range recs {
		fmt.Fprintf(&b, "\nTitle: %s\nSnippet: %s\nContent: %s\n", r.Title, r.Snippet, ellipsis(r.Body, bodyChars))
	}
	return b.String()
}

// PreprintBlock renders arXiv results for the synthesis prompt.
func PreprintBlock(topic string, recs []types.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on Arxiv search for '%s', here are the academic papers:\n", topic)
	if len(recs) == 0 {
		b.WriteString("\nNo Arxiv papers found.\n")
		return b.String()
	}
	for _, r := range recs {
		var p types.PreprintFields
		if r.Preprint != nil {
			p = *r.Preprint
		}
		fmt.Fprintf(&b, "\nTitle: %s\nAuthors: %s\nPublished: %s\nAbstract: %s\nURL: %s\n",
			r.Title, strings.Join(p.Authors, ", "), p.Published, r.Abstract, p.SourceURL)
	}
	return b.String()
}

// TrialBlock renders registry results for the synthesis prompt.
func TrialBlock(topic string, recs []types.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on ClinicalTrials.gov search for '%s', here are the clinical trials:\n", topic)
	if len(recs) == 0 {
		b.WriteString("\nNo clinical trials found.\n")
		return b.String()
	}
	for _, r := range recs {
		var tr types.TrialFields
		if r.Trial != nil {
			tr = *r.Trial
		}
		conditions := "Not specified"
		if len(tr.Conditions) > 0 {
			conditions = strings.Join(tr.Conditions, ", ")
		}
		fmt.Fprintf(&b, "\nTitle: %s\nNCT ID: %s\nStatus: %s\nStudy Type: %s\nPhase: %s\nConditions: %s\nSummary: %s\nURL: %s\n",
			r.Title, tr.RegistryID, tr.Status, tr.StudyType, tr.Phase, conditions,
			ellipsis(r.Abstract, summaryChars), r.Link)
	}
	return b.String()
}

// ellipsis cuts s to max characters and appends "..." only when it cut.
func ellipsis(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
