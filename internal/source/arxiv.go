// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/xml"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/litreview/internal/httputil"
	"github.com/pdiddy/litreview/internal/ratelimit"
	"github.com/pdiddy/litreview/pkg/types"
)

// arxivAbsBase prefixes canonical abstract-page URLs.
const arxivAbsBase = "https://arxiv.org/abs/"

// Arxiv queries the arXiv Atom API. The API returns full abstracts, so no
// page bodies are fetched.
type Arxiv struct {
	cfg     types.PreprintConfig
	api     *httputil.Fetcher
	limiter *ratelimit.Limiter
	log     *zap.Logger
}

// NewArxiv builds the preprint adapter from its configuration.
func NewArxiv(cfg types.PreprintConfig, opts Options) *Arxiv {
	return &Arxiv{
		cfg: cfg,
		api: &httputil.Fetcher{
			Client:  opts.Client,
			Timeout: cfg.Timeout,
			Header:  apiHeader(cfg.UserAgent, "application/atom+xml"),
		},
		limiter: ratelimit.New(cfg.Delay, opts.Clock),
		log:     orNop(opts.Logger),
	}
}

// Name returns the source identifier.
func (a *Arxiv) Name() types.Source { return types.SourceArxiv }

// Fetch searches arXiv sorted by relevance and returns at most maxResults records.
func (a *Arxiv) Fetch(ctx context.Context, query string, maxResults int) Outcome {
	maxResults = clampMax(maxResults)
	q := buildArxivQuery(query)
	if q == "" {
		return success(types.SourceArxiv, nil, maxResults)
	}

	params := url.Values{
		"search_query": {q},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(maxResults)},
		"sortBy":       {"relevance"},
		"sortOrder":    {"descending"},
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return failure(a.log, types.SourceArxiv, &httputil.TransportError{URL: a.cfg.Endpoint, Err: err})
	}
	resp, err := a.api.Get(ctx, a.cfg.Endpoint+"?"+params.Encode())
	if err != nil {
		return failure(a.log, types.SourceArxiv, err)
	}

	var feed arxivFeed
	if err := xml.Unmarshal(resp.Body, &feed); err != nil {
		return failure(a.log, types.SourceArxiv, &ParseError{What: "arXiv feed", Err: err})
	}

	var records []types.Record
	for _, entry := range feed.Entries {
		id := extractArxivID(entry.ID)
		title := collapse(entry.Title)
		if id == "" || title == "" {
			continue
		}

		r := types.Record{
			Source:   types.SourceArxiv,
			Title:    title,
			Link:     arxivAbsBase + id,
			Abstract: strings.TrimSpace(entry.Summary),
			Preprint: &types.PreprintFields{
				Published: isoDate(entry.Published),
				PDFURL:    entry.pdfURL(),
				SourceURL: arxivAbsBase + id,
			},
		}
		for _, au := range entry.Authors {
			if name := strings.TrimSpace(au.Name); name != "" {
				r.Preprint.Authors = append(r.Preprint.Authors, name)
			}
		}
		records = append(records, r)
	}

	a.log.Info("arXiv search complete", zap.String("query", query), zap.Int("count", len(records)))
	return success(types.SourceArxiv, records, maxResults)
}

// buildArxivQuery turns free text into an all-fields search_query value.
func buildArxivQuery(q string) string {
	terms := strings.Fields(q)
	if len(terms) == 0 {
		return ""
	}
	return "all:" + strings.Join(terms, " ")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
	Links     []arxivLink   `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}

func (e arxivEntry) pdfURL() string {
	for _, l := range e.Links {
		if l.Title == "pdf" || l.Type == "application/pdf" {
			return l.Href
		}
	}
	return ""
}

// extractArxivID returns the path after /abs/ in the entry's <id> URL,
// version suffix included (e.g. "http://arxiv.org/abs/2301.07041v1" →
// "2301.07041v1"). Without an /abs/ segment the trailing path segment is used.
func extractArxivID(idURL string) string {
	idURL = strings.TrimSpace(idURL)
	const prefix = "/abs/"
	if idx := strings.Index(idURL, prefix); idx >= 0 {
		return strings.Trim(idURL[idx+len(prefix):], "/")
	}
	idURL = strings.TrimRight(idURL, "/")
	if idx := strings.LastIndex(idURL, "/"); idx >= 0 {
		return idURL[idx+1:]
	}
	return idURL
}

// isoDate reduces an Atom timestamp to YYYY-MM-DD.
func isoDate(s string) string {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(time.DateOnly)
	}
	if len(s) >= len(time.DateOnly) {
		if t, err := time.Parse(time.DateOnly, s[:len(time.DateOnly)]); err == nil {
			return t.Format(time.DateOnly)
		}
	}
	return ""
}

// collapse trims s and folds internal whitespace runs (arXiv titles wrap
// across lines) into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
