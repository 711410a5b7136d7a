// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litreview/internal/httputil"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Diabetes overview</title>
  <style>body { color: red; }</style>
  <script>var tracking = "ignore me";</script>
</head>
<body>
  <h1>Type 2   diabetes</h1>
  <p>Insulin resistance is
     common.</p>
  <!-- a comment -->
  <noscript>enable js</noscript>
</body>
</html>`

func TestText(t *testing.T) {
	got, err := Text(strings.NewReader(samplePage), 1000)
	require.NoError(t, err)

	assert.Equal(t, "Diabetes overview Type 2 diabetes Insulin resistance is common.", got)
	assert.NotContains(t, got, "tracking")
	assert.NotContains(t, got, "color")
	assert.NotContains(t, got, "enable js")
}

func TestText_Bounded(t *testing.T) {
	got, err := Text(strings.NewReader(samplePage), 8)
	require.NoError(t, err)
	assert.Equal(t, "Diabetes", got)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"shorter", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"longer", "abcdef", 5, "abcde"},
		{"multibyte", "déjà vu", 4, "déjà"},
		{"default bound", strings.Repeat("a", 600), 0, strings.Repeat("a", DefaultMaxChars)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.max))
		})
	}
}

func TestFetchText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(samplePage))
	}))
	defer ts.Close()

	e := New(&httputil.Fetcher{Client: ts.Client(), Header: httputil.BrowserHeaders()})
	got, err := e.FetchText(context.Background(), ts.URL, 17)
	require.NoError(t, err)
	assert.Equal(t, "Diabetes overview", got)
}

func TestFetchText_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	e := New(&httputil.Fetcher{Client: ts.Client()})
	got, err := e.FetchText(context.Background(), ts.URL, 100)
	assert.Error(t, err)
	assert.Empty(t, got)
}
