// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/litreview/internal/extract"
	"github.com/pdiddy/litreview/internal/httputil"
	"github.com/pdiddy/litreview/internal/ratelimit"
	"github.com/pdiddy/litreview/pkg/types"
)

// Options carries the collaborators shared by all adapter constructors.
type Options struct {
	// Client is the HTTP client (default http.DefaultClient).
	Client *http.Client
	// Clock drives the rate limiter (default real time).
	Clock ratelimit.Clock
	// Logger receives diagnostics (default no-op).
	Logger *zap.Logger
}

// WebSearch queries the Google Custom Search JSON API and enriches each hit
// with a bounded excerpt of the linked page.
type WebSearch struct {
	cfg     types.WebSearchConfig
	api     *httputil.Fetcher
	pages   *extract.Extractor
	limiter *ratelimit.Limiter
	log     *zap.Logger
}

// NewWebSearch builds the web-search adapter from its configuration.
func NewWebSearch(cfg types.WebSearchConfig, opts Options) *WebSearch {
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = extract.DefaultMaxChars
	}
	return &WebSearch{
		cfg: cfg,
		api: &httputil.Fetcher{
			Client:  opts.Client,
			Timeout: cfg.Timeout,
			Header:  apiHeader(cfg.UserAgent, "application/json"),
		},
		pages: extract.New(&httputil.Fetcher{
			Client:  opts.Client,
			Timeout: cfg.Timeout,
			Header:  httputil.BrowserHeaders(),
		}),
		limiter: ratelimit.New(cfg.Delay, opts.Clock),
		log:     orNop(opts.Logger),
	}
}

// Name returns the source identifier.
func (w *WebSearch) Name() types.Source { return types.SourceWeb }

// Fetch searches for query and returns at most maxResults records. Without
// both the API key and the engine id it returns immediately.
func (w *WebSearch) Fetch(ctx context.Context, query string, maxResults int) Outcome {
	maxResults = clampMax(maxResults)
	if w.cfg.APIKey == "" || w.cfg.EngineID == "" {
		return failure(w.log, types.SourceWeb, ErrMissingCredential)
	}

	params := url.Values{
		"key": {w.cfg.APIKey},
		"cx":  {w.cfg.EngineID},
		"q":   {query},
		"num": {strconv.Itoa(maxResults)},
	}

	if err := w.limiter.Wait(ctx); err != nil {
		return failure(w.log, types.SourceWeb, &httputil.TransportError{URL: w.cfg.Endpoint, Err: err})
	}
	resp, err := w.api.Get(ctx, w.cfg.Endpoint+"?"+params.Encode())
	if err != nil {
		return failure(w.log, types.SourceWeb, err)
	}

	var sr webSearchResponse
	if err := json.Unmarshal(resp.Body, &sr); err != nil {
		return failure(w.log, types.SourceWeb, &ParseError{What: "search response", Err: err})
	}

	records := make([]types.Record, 0, min(len(sr.Items), maxResults))
	for _, item := range sr.Items {
		if len(records) == maxResults {
			break
		}
		title := strings.TrimSpace(item.Title)
		if title == "" || item.Link == "" {
			continue
		}

		if err := w.limiter.Wait(ctx); err != nil {
			return partial(w.log, types.SourceWeb, records, &httputil.TransportError{URL: item.Link, Err: err})
		}
		body, err := w.pages.FetchText(ctx, item.Link, w.cfg.MaxChars)
		if err != nil {
			w.log.Debug("page content unavailable", zap.String("url", item.Link), zap.Error(err))
		}

		records = append(records, types.Record{
			Source:  types.SourceWeb,
			Title:   title,
			Link:    item.Link,
			Snippet: strings.TrimSpace(item.Snippet),
			Body:    body,
		})
	}

	w.log.Info("web search complete", zap.String("query", query), zap.Int("count", len(records)))
	return success(types.SourceWeb, records, maxResults)
}

// Custom Search JSON structures.
type webSearchResponse struct {
	Items []webSearchItem `json:"items"`
}

type webSearchItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}
