// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the single-request HTTP fetcher shared by all
// source adapters.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultMaxBody caps how much of a response body is read (4 MiB).
const DefaultMaxBody = 4 << 20

// browserHeaders mimic a desktop browser. Registry HTML pages and arbitrary
// web pages reject bare API clients.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
}

// BrowserHeaders returns a fresh copy of the browser-like header set.
func BrowserHeaders() http.Header {
	h := make(http.Header, len(browserHeaders))
	for k, v := range browserHeaders {
		h.Set(k, v)
	}
	return h
}

// Fetcher performs one outbound GET with a timeout and a fixed header policy.
// The zero value uses http.DefaultClient, no timeout, and no extra headers.
type Fetcher struct {
	Client  *http.Client
	Timeout time.Duration
	Header  http.Header

	// MaxBody limits the bytes read from a response (default DefaultMaxBody).
	MaxBody int64
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Get fetches url and returns its body. A transport failure returns a
// *TransportError; any status other than 200 returns a *StatusError with
// the body attached.
func (f *Fetcher) Get(ctx context.Context, url string) (*Response, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}
	for k, vs := range f.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	limit := f.MaxBody
	if limit <= 0 {
		limit = DefaultMaxBody
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}

	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}
	if resp.StatusCode != http.StatusOK {
		return out, &StatusError{URL: url, StatusCode: resp.StatusCode, Body: body}
	}
	return out, nil
}
