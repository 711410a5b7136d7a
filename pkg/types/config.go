package types

import "time"

// HTTPConfig holds shared HTTP settings used by adapters that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with API requests
	// (e.g. "litreview/0.1"). Scrape requests use browser headers instead.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// WebSearchConfig holds settings for the Google Custom Search adapter.
type WebSearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Endpoint is the Custom Search JSON API URL.
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// APIKey and EngineID are both required; without either the adapter
	// returns no results and makes no request.
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`
	EngineID string `json:"engine_id,omitempty" yaml:"engine_id,omitempty" mapstructure:"engine_id"`

	// MaxChars bounds the page text kept per result (default 500).
	MaxChars int `json:"max_chars" yaml:"max_chars" mapstructure:"max_chars"`

	// Delay is the minimum time between outbound calls (default 1s).
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`
}

// PreprintConfig holds settings for the arXiv adapter.
type PreprintConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Endpoint is the arXiv query API URL.
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// Delay is the minimum time between outbound calls (default 500ms).
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`
}

// RegistryConfig holds settings for the ClinicalTrials.gov adapter.
type RegistryConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// APIBase is the structured API root (e.g. "https://clinicaltrials.gov/api/v2").
	APIBase string `json:"api_base" yaml:"api_base" mapstructure:"api_base"`

	// SiteBase is the HTML site root used by the scrape tier.
	SiteBase string `json:"site_base" yaml:"site_base" mapstructure:"site_base"`

	// LinkBase prefixes the /ct2/show/<id> links placed in records and citations.
	LinkBase string `json:"link_base" yaml:"link_base" mapstructure:"link_base"`

	// Delay is the minimum time between outbound calls (default 2s).
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`
}

// ComposerBackend selects the generative-text session implementation.
type ComposerBackend string

const (
	ComposerGenAI     ComposerBackend = "genai"
	ComposerLangchain ComposerBackend = "langchain"
)

// ComposerConfig holds settings for the report composer.
type ComposerConfig struct {
	// Backend selects genai (default) or langchain.
	Backend ComposerBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Model is the Gemini model identifier.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the generative-service key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Endpoint overrides the genai service base URL. Empty uses the SDK default.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" mapstructure:"endpoint"`
}

// ReviewConfig holds settings for the literature-review pipeline.
type ReviewConfig struct {
	// MaxResults is the number of results requested from each source (default 2).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// OutputDir is where review reports are written (default ".").
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default ":8081").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// AllowOrigins lists CORS origins (default "*").
	AllowOrigins []string `json:"allow_origins" yaml:"allow_origins" mapstructure:"allow_origins"`
}

// Config groups all component configurations. It is built once at startup
// and passed down; components never read the process environment.
type Config struct {
	Web      WebSearchConfig `json:"web" yaml:"web" mapstructure:"web"`
	Preprint PreprintConfig  `json:"preprint" yaml:"preprint" mapstructure:"preprint"`
	Registry RegistryConfig  `json:"registry" yaml:"registry" mapstructure:"registry"`
	Composer ComposerConfig  `json:"composer" yaml:"composer" mapstructure:"composer"`
	Review   ReviewConfig    `json:"review" yaml:"review" mapstructure:"review"`
	Server   ServerConfig    `json:"server" yaml:"server" mapstructure:"server"`
}
