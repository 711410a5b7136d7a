// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the litreview pipeline:
// the normalized evidence record every source adapter produces and the
// configuration injected at startup.
package types

import "regexp"

// Source identifies which adapter produced a record.
type Source string

const (
	SourceWeb      Source = "web"
	SourceArxiv    Source = "arxiv"
	SourceRegistry Source = "clinicaltrials"
)

// registryIDPattern is the ClinicalTrials.gov study identifier format.
var registryIDPattern = regexp.MustCompile(`^NCT\d{8}$`)

// ValidRegistryID reports whether id is a well-formed registry identifier
// ("NCT" followed by eight digits).
func ValidRegistryID(id string) bool {
	return registryIDPattern.MatchString(id)
}

// Record is one normalized evidence item. The common fields are shared by
// every source; Preprint and Trial are set only by the arXiv and registry
// adapters respectively.
//
// Guaranteed non-default fields per source:
//   - web: Title, Link.
//   - arxiv: Title, Preprint.SourceURL.
//   - clinicaltrials: Title, Link, Trial.RegistryID.
type Record struct {
	// Source names the adapter that produced the record.
	Source Source `json:"source" yaml:"source"`

	// Title is the item title. A record without a title is invalid.
	Title string `json:"title" yaml:"title"`

	// Link is the canonical URL of the item.
	Link string `json:"link,omitempty" yaml:"link,omitempty"`

	// Snippet is a short excerpt suitable for listings.
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`

	// Body is a plain-text excerpt of the linked page (web only).
	Body string `json:"body,omitempty" yaml:"body,omitempty"`

	// Abstract is the full summary text (arxiv and clinicaltrials only).
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	Preprint *PreprintFields `json:"preprint,omitempty" yaml:"preprint,omitempty"`
	Trial    *TrialFields    `json:"trial,omitempty" yaml:"trial,omitempty"`
}

// PreprintFields holds the arXiv-specific part of a record.
type PreprintFields struct {
	// Authors lists the paper authors in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Published is the publication date as YYYY-MM-DD.
	Published string `json:"published,omitempty" yaml:"published,omitempty"`

	// PDFURL links to the paper PDF.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// SourceURL is the canonical abstract page (https://arxiv.org/abs/<id>).
	SourceURL string `json:"source_url" yaml:"source_url"`
}

// TrialFields holds the registry-specific part of a record.
type TrialFields struct {
	RegistryID    string   `json:"registry_id" yaml:"registry_id"`
	Status        string   `json:"status,omitempty" yaml:"status,omitempty"`
	StudyType     string   `json:"study_type,omitempty" yaml:"study_type,omitempty"`
	Phase         string   `json:"phase,omitempty" yaml:"phase,omitempty"`
	Conditions    []string `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Interventions []string `json:"interventions,omitempty" yaml:"interventions,omitempty"`
	Enrollment    int      `json:"enrollment,omitempty" yaml:"enrollment,omitempty"`
	Locations     []string `json:"locations,omitempty" yaml:"locations,omitempty"`
}

// Valid reports whether the record carries a title.
func (r Record) Valid() bool {
	return r.Title != ""
}

// Identifier returns the source-specific identifier of the record: the
// registry id for trials, the trailing path segment of the abstract page for
// preprints, and the link for web results.
func (r Record) Identifier() string {
	switch {
	case r.Trial != nil:
		return r.Trial.RegistryID
	case r.Preprint != nil:
		return lastSegment(r.Preprint.SourceURL)
	default:
		return r.Link
	}
}

// Enrich fills the empty Abstract, Conditions, and Interventions of a trial
// record from a detail record. Populated fields are never overwritten.
func (r *Record) Enrich(detail Record) {
	if r.Abstract == "" {
		r.Abstract = detail.Abstract
	}
	if detail.Trial == nil {
		return
	}
	if r.Trial == nil {
		r.Trial = &TrialFields{RegistryID: detail.Trial.RegistryID}
	}
	if len(r.Trial.Conditions) == 0 && len(detail.Trial.Conditions) > 0 {
		r.Trial.Conditions = detail.Trial.Conditions
	}
	if len(r.Trial.Interventions) == 0 && len(detail.Trial.Interventions) > 0 {
		r.Trial.Interventions = detail.Trial.Interventions
	}
}

func lastSegment(u string) string {
	for i := len(u) - 1; i >= 0; i-- {
		if u[i] == '/' {
			return u[i+1:]
		}
	}
	return u
}
