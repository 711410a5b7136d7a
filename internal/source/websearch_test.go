// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litreview/pkg/types"
)

// newWebServer serves a Custom Search response with n items whose links
// point back at /page/<i> on the same server.
func newWebServer(t *testing.T, n int, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch {
		case r.URL.Path == "/customsearch/v1":
			var items []string
			for i := range n {
				items = append(items, fmt.Sprintf(
					`{"title":"Result %d","link":"%s/page/%d","snippet":"snippet %d"}`, i, ts.URL, i, i))
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"items":[%s]}`, strings.Join(items, ","))
		case strings.HasPrefix(r.URL.Path, "/page/"):
			fmt.Fprint(w, `<html><head><script>var x;</script></head><body><p>Page about diabetes.</p></body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func webConfig(endpoint string) types.WebSearchConfig {
	return types.WebSearchConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "litreview-test"},
		Endpoint:   endpoint,
		APIKey:     "key",
		EngineID:   "cx",
		Delay:      time.Second,
	}
}

func TestWebSearchMissingCredentialsMakesNoCall(t *testing.T) {
	var calls atomic.Int32
	ts := newWebServer(t, 3, &calls)

	for _, tc := range []struct {
		name      string
		key, cxID string
	}{
		{"no key", "", "cx"},
		{"no engine", "key", ""},
		{"neither", "", ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := webConfig(ts.URL + "/customsearch/v1")
			cfg.APIKey, cfg.EngineID = tc.key, tc.cxID
			opts, _, logs := testOptions()
			opts.Client = ts.Client()

			out := NewWebSearch(cfg, opts).Fetch(context.Background(), "diabetes", 2)

			assert.Equal(t, KindMissingCredential, out.Kind)
			assert.Empty(t, out.Records)
			assert.Equal(t, 1, logs.FilterMessage("source fetch failed").Len())
		})
	}
	assert.Zero(t, calls.Load())
}

func TestWebSearchFetch(t *testing.T) {
	var calls atomic.Int32
	ts := newWebServer(t, 2, &calls)
	opts, _, _ := testOptions()
	opts.Client = ts.Client()

	out := NewWebSearch(webConfig(ts.URL+"/customsearch/v1"), opts).Fetch(context.Background(), "diabetes", 2)

	require.Equal(t, KindOK, out.Kind)
	require.Len(t, out.Records, 2)
	r := out.Records[0]
	assert.Equal(t, types.SourceWeb, r.Source)
	assert.Equal(t, "Result 0", r.Title)
	assert.Equal(t, ts.URL+"/page/0", r.Link)
	assert.Equal(t, "snippet 0", r.Snippet)
	assert.Equal(t, "Page about diabetes.", r.Body)
	assert.True(t, r.Valid())
}

func TestWebSearchRequestParams(t *testing.T) {
	var got *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer ts.Close()
	opts, _, _ := testOptions()
	opts.Client = ts.Client()

	out := NewWebSearch(webConfig(ts.URL), opts).Fetch(context.Background(), "type 2 diabetes", 3)

	assert.Equal(t, KindEmpty, out.Kind)
	require.NotNil(t, got)
	q := got.URL.Query()
	assert.Equal(t, "key", q.Get("key"))
	assert.Equal(t, "cx", q.Get("cx"))
	assert.Equal(t, "type 2 diabetes", q.Get("q"))
	assert.Equal(t, "3", q.Get("num"))
	assert.Equal(t, "litreview-test", got.Header.Get("User-Agent"))
}

func TestWebSearchLengthBound(t *testing.T) {
	for _, n := range []int{1, 2, 3} {
		t.Run(fmt.Sprintf("max=%d", n), func(t *testing.T) {
			var calls atomic.Int32
			ts := newWebServer(t, 5, &calls)
			opts, _, _ := testOptions()
			opts.Client = ts.Client()

			out := NewWebSearch(webConfig(ts.URL+"/customsearch/v1"), opts).Fetch(context.Background(), "q", n)
			assert.LessOrEqual(t, len(out.Records), n)
		})
	}
}

func TestWebSearchPageFailureKeepsRecord(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search" {
			fmt.Fprintf(w, `{"items":[{"title":"Gone","link":"http://%s/missing","snippet":"s"}]}`, r.Host)
			return
		}
		http.Error(w, "gone", http.StatusGone)
	}))
	defer ts.Close()
	opts, _, logs := testOptions()
	opts.Client = ts.Client()

	out := NewWebSearch(webConfig(ts.URL+"/search"), opts).Fetch(context.Background(), "q", 2)

	require.Len(t, out.Records, 1)
	assert.Equal(t, "Gone", out.Records[0].Title)
	assert.Empty(t, out.Records[0].Body)
	assert.Equal(t, 1, logs.FilterMessage("page content unavailable").Len())
}

func TestWebSearchRemoteError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"quota"}`, http.StatusForbidden)
	}))
	defer ts.Close()
	opts, _, _ := testOptions()
	opts.Client = ts.Client()

	out := NewWebSearch(webConfig(ts.URL), opts).Fetch(context.Background(), "q", 2)

	assert.Equal(t, KindRemote, out.Kind)
	assert.Empty(t, out.Records)
	assert.Error(t, out.Err)
}

func TestWebSearchRateLimitsEveryCall(t *testing.T) {
	var calls atomic.Int32
	ts := newWebServer(t, 2, &calls)
	opts, clock, _ := testOptions()
	opts.Client = ts.Client()

	NewWebSearch(webConfig(ts.URL+"/customsearch/v1"), opts).Fetch(context.Background(), "q", 2)

	// One search call plus two page fetches; the first is free.
	assert.Equal(t, int32(3), calls.Load())
	assert.GreaterOrEqual(t, clock.Elapsed(), 2*time.Second)
}
