// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract strips markup from fetched pages and yields bounded plain
// text.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/pdiddy/litreview/internal/httputil"
)

// DefaultMaxChars is the page-text bound used when none is given.
const DefaultMaxChars = 500

// skipped elements contribute no text.
var skipped = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// Extractor fetches a page and returns its visible text.
type Extractor struct {
	Fetcher *httputil.Fetcher
}

// New returns an extractor that fetches with browser headers.
func New(f *httputil.Fetcher) *Extractor {
	return &Extractor{Fetcher: f}
}

// FetchText fetches url and returns at most maxChars characters of its
// visible text. A non-positive maxChars uses DefaultMaxChars.
func (e *Extractor) FetchText(ctx context.Context, url string, maxChars int) (string, error) {
	resp, err := e.Fetcher.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return Text(bytes.NewReader(resp.Body), maxChars)
}

// Text parses HTML from r and returns its visible text, whitespace-collapsed
// and truncated to maxChars characters.
func Text(r io.Reader, maxChars int) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}
	return Truncate(NodeText(doc), maxChars), nil
}

// NodeText returns the text under n: each text node trimmed, empty ones
// dropped, joined by single spaces. Script and style content is ignored.
func NodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if s := strings.Join(strings.Fields(n.Data), " "); s != "" {
				parts = append(parts, s)
			}
			return
		case html.ElementNode:
			if skipped[n.Data] {
				return
			}
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

// Truncate returns the first max characters of s. It counts runes so
// multi-byte text is never split. A non-positive max uses DefaultMaxChars.
func Truncate(s string, max int) string {
	if max <= 0 {
		max = DefaultMaxChars
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
