// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litreview/pkg/types"
)

// clearEnv unsets the variables Load consults so the host environment does
// not leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GOOGLE_API_KEY", "GOOGLE_SEARCH_ENGINE_ID", "GEMINI_API_KEY",
		"LITREVIEW_WEB_API_KEY", "LITREVIEW_WEB_ENGINE_ID", "LITREVIEW_COMPOSER_API_KEY",
		"LITREVIEW_REGISTRY_DELAY", "LITREVIEW_REVIEW_MAX_RESULTS", "LITREVIEW_COMPOSER_BACKEND"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(viper.New(), nil)
	require.NoError(t, err)

	assert.Equal(t, "https://www.googleapis.com/customsearch/v1", cfg.Web.Endpoint)
	assert.Equal(t, 15*time.Second, cfg.Web.Timeout)
	assert.Equal(t, time.Second, cfg.Web.Delay)
	assert.Equal(t, 500, cfg.Web.MaxChars)
	assert.Equal(t, 500*time.Millisecond, cfg.Preprint.Delay)
	assert.Equal(t, 30*time.Second, cfg.Preprint.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Registry.Delay)
	assert.Equal(t, "https://clinicaltrials.gov/api/v2", cfg.Registry.APIBase)
	assert.Equal(t, "https://clinicaltrials.gov", cfg.Registry.LinkBase)
	assert.Equal(t, types.ComposerGenAI, cfg.Composer.Backend)
	assert.Equal(t, 2, cfg.Review.MaxResults)
	assert.Equal(t, ":8081", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowOrigins)
	assert.Empty(t, cfg.Web.APIKey)
	assert.Empty(t, cfg.Composer.APIKey)
}

func TestLoadWellKnownEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Setenv("GOOGLE_SEARCH_ENGINE_ID", "cx-id")

	cfg, err := Load(viper.New(), nil)
	require.NoError(t, err)

	assert.Equal(t, "g-key", cfg.Web.APIKey)
	assert.Equal(t, "cx-id", cfg.Web.EngineID)
	assert.Equal(t, "g-key", cfg.Composer.APIKey, "GOOGLE_API_KEY also serves the composer")
}

func TestLoadGeminiKeyWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Setenv("GEMINI_API_KEY", "gem-key")

	cfg, err := Load(viper.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, "gem-key", cfg.Composer.APIKey)
}

func TestLoadPrefixedEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("LITREVIEW_REGISTRY_DELAY", "3s")
	t.Setenv("LITREVIEW_REVIEW_MAX_RESULTS", "5")
	t.Setenv("LITREVIEW_COMPOSER_BACKEND", "langchain")

	cfg, err := Load(viper.New(), nil)
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Registry.Delay)
	assert.Equal(t, 5, cfg.Review.MaxResults)
	assert.Equal(t, types.ComposerLangchain, cfg.Composer.Backend)
}

func TestLoadSecretsFallback(t *testing.T) {
	clearEnv(t)
	secrets := map[string]string{
		SecretGoogleAPIKey:   "secret-g",
		SecretSearchEngineID: "secret-cx",
		SecretGeminiAPIKey:   "secret-gem",
	}

	cfg, err := Load(viper.New(), secrets)
	require.NoError(t, err)
	assert.Equal(t, "secret-g", cfg.Web.APIKey)
	assert.Equal(t, "secret-cx", cfg.Web.EngineID)
	assert.Equal(t, "secret-gem", cfg.Composer.APIKey)

	t.Setenv("GOOGLE_API_KEY", "env-g")
	cfg, err = Load(viper.New(), secrets)
	require.NoError(t, err)
	assert.Equal(t, "env-g", cfg.Web.APIKey, "environment beats secrets")
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "litreview.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
registry:
  link_base: https://mirror.example
  delay: 4s
review:
  max_results: 3
server:
  allow_origins: ["http://localhost:3000"]
`), 0o644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.example", cfg.Registry.LinkBase)
	assert.Equal(t, 4*time.Second, cfg.Registry.Delay)
	assert.Equal(t, 3, cfg.Review.MaxResults)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowOrigins)
	assert.Equal(t, "https://clinicaltrials.gov/api/v2", cfg.Registry.APIBase)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	base, err := Load(viper.New(), nil)
	require.NoError(t, err)

	bad := base
	bad.Composer.Backend = "claude"
	assert.ErrorContains(t, Validate(bad), "composer backend")

	bad = base
	bad.Review.MaxResults = 0
	assert.ErrorContains(t, Validate(bad), "max_results")

	bad = base
	bad.Web.Delay = -time.Second
	assert.ErrorContains(t, Validate(bad), "web.delay")
}
