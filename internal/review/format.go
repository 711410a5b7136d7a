// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litreview/pkg/types"
)

// FormatTable writes records as a human-readable table to w.
func FormatTable(recs []types.Record, w io.Writer) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-14s  %-60s  %-20s  %s\n", "#", "Source", "Title", "Detail", "Link")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for i, r := range recs {
		fmt.Fprintf(w, "%-4d  %-14s  %-60s  %-20s  %s\n",
			i+1, r.Source, truncate(r.Title, 60), truncate(detail(r), 20), r.Link)
	}
	fmt.Fprintf(w, "\n%d results\n", len(recs))
}

// FormatJSON writes v as indented JSON to w.
func FormatJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatYAML writes v as YAML to w.
func FormatYAML(v any, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// detail is the per-source column of the table: a trial's id and status, a
// preprint's first author, or nothing for web results.
func detail(r types.Record) string {
	switch {
	case r.Trial != nil:
		if r.Trial.Status == "" {
			return r.Trial.RegistryID
		}
		return r.Trial.RegistryID + " " + r.Trial.Status
	case r.Preprint != nil:
		return formatAuthors(r.Preprint.Authors)
	default:
		return ""
	}
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return authors[0]
	default:
		return authors[0] + " et al."
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
