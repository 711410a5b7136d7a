// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config assembles the single types.Config used by the CLI and the
// HTTP server. Values come, in rising precedence, from built-in defaults,
// the .secrets directory, the config file, and the environment. No other
// package reads the process environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/litreview/pkg/types"
)

// EnvPrefix prefixes every automatically bound environment variable, e.g.
// LITREVIEW_REGISTRY_DELAY.
const EnvPrefix = "LITREVIEW"

// Secret file names read from the .secrets directory.
const (
	SecretGoogleAPIKey   = "google-api-key"
	SecretSearchEngineID = "google-search-engine-id"
	SecretGeminiAPIKey   = "gemini-api-key"
)

const defaultUserAgent = "litreview/0.1 (mailto:litreview@example.org)"

// SetDefaults registers a default for every configuration key so viper can
// resolve environment overrides during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("web.endpoint", "https://www.googleapis.com/customsearch/v1")
	v.SetDefault("web.timeout", 15*time.Second)
	v.SetDefault("web.user_agent", defaultUserAgent)
	v.SetDefault("web.api_key", "")
	v.SetDefault("web.engine_id", "")
	v.SetDefault("web.max_chars", 500)
	v.SetDefault("web.delay", time.Second)

	v.SetDefault("preprint.endpoint", "https://export.arxiv.org/api/query")
	v.SetDefault("preprint.timeout", 30*time.Second)
	v.SetDefault("preprint.user_agent", defaultUserAgent)
	v.SetDefault("preprint.delay", 500*time.Millisecond)

	v.SetDefault("registry.api_base", "https://clinicaltrials.gov/api/v2")
	v.SetDefault("registry.site_base", "https://clinicaltrials.gov")
	v.SetDefault("registry.link_base", "https://clinicaltrials.gov")
	v.SetDefault("registry.timeout", 15*time.Second)
	v.SetDefault("registry.user_agent", defaultUserAgent)
	v.SetDefault("registry.delay", 2*time.Second)

	v.SetDefault("composer.backend", string(types.ComposerGenAI))
	v.SetDefault("composer.model", "gemini-2.0-flash")
	v.SetDefault("composer.api_key", "")
	v.SetDefault("composer.endpoint", "")

	v.SetDefault("review.max_results", 2)
	v.SetDefault("review.output_dir", ".")

	v.SetDefault("server.addr", ":8081")
	v.SetDefault("server.allow_origins", []string{"*"})
}

// Load resolves the configuration from v and the loaded secrets. The
// well-known variables GOOGLE_API_KEY, GOOGLE_SEARCH_ENGINE_ID, and
// GEMINI_API_KEY are honored alongside the prefixed names; GOOGLE_API_KEY
// also serves the composer when GEMINI_API_KEY is unset.
func Load(v *viper.Viper, secrets map[string]string) (types.Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	binds := map[string][]string{
		"web.api_key":      {EnvPrefix + "_WEB_API_KEY", "GOOGLE_API_KEY"},
		"web.engine_id":    {EnvPrefix + "_WEB_ENGINE_ID", "GOOGLE_SEARCH_ENGINE_ID"},
		"composer.api_key": {EnvPrefix + "_COMPOSER_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"},
	}
	for key, envs := range binds {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return types.Config{}, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}

	fallback(&cfg.Web.APIKey, secrets[SecretGoogleAPIKey])
	fallback(&cfg.Web.EngineID, secrets[SecretSearchEngineID])
	fallback(&cfg.Composer.APIKey, secrets[SecretGeminiAPIKey])
	fallback(&cfg.Composer.APIKey, secrets[SecretGoogleAPIKey])

	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// Validate rejects values no component can work with.
func Validate(cfg types.Config) error {
	switch cfg.Composer.Backend {
	case types.ComposerGenAI, types.ComposerLangchain:
	default:
		return fmt.Errorf("invalid composer backend %q (want genai or langchain)", cfg.Composer.Backend)
	}
	if cfg.Review.MaxResults < 1 {
		return fmt.Errorf("invalid review.max_results %d", cfg.Review.MaxResults)
	}
	for name, d := range map[string]time.Duration{
		"web.delay":      cfg.Web.Delay,
		"preprint.delay": cfg.Preprint.Delay,
		"registry.delay": cfg.Registry.Delay,
	} {
		if d < 0 {
			return fmt.Errorf("invalid %s %s", name, d)
		}
	}
	return nil
}

func fallback(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
