// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// ParseMode selects the entity-extraction strategy.
type ParseMode string

const (
	// ParseModeAuto resolves to blended when a credential is configured,
	// local-only otherwise.
	ParseModeAuto ParseMode = ""
	// ParseModeLocal uses only the offline heuristic extractor.
	ParseModeLocal ParseMode = "local-only"
	// ParseModeRemote uses only the generative-text extractor.
	ParseModeRemote ParseMode = "remote-only"
	// ParseModeBlended runs both extractors and merges their results.
	ParseModeBlended ParseMode = "blended"
)

// Default model identifiers. The embeddings list is ordered; the first model
// that answers becomes the process-wide embedder.
const (
	DefaultRerankerModel = "cross-encoder/ms-marco-MiniLM-L-6-v2"
)

// Config represents the matcher configuration, loadable from a JSON file with
// environment-variable overrides. Zero values fall back to defaults.
type Config struct {
	// Scoring
	CoverageWeight    float64 `json:"coverage_weight" validate:"gte=0,lte=1"`
	UseRemoteMatch    bool    `json:"use_remote_match"`
	RemoteBlendWeight float64 `json:"remote_blend_weight" validate:"gte=0,lte=1"`

	// Embeddings and reranking
	EmbeddingsModel string `json:"embeddings_model,omitempty"`
	EmbeddingsURL   string `json:"embeddings_url,omitempty"`
	UseReranker     bool   `json:"use_reranker"`
	RerankerModel   string `json:"reranker_model,omitempty"`
	RerankURL       string `json:"rerank_url,omitempty"`
	RerankPreselect int    `json:"rerank_preselect" validate:"gte=1"`

	// Entity extraction
	ParseMode ParseMode `json:"parse_mode,omitempty"`
	APIKey    string    `json:"api_key,omitempty"` // Gemini API key

	// Storage and I/O
	CacheDir string `json:"cache_dir,omitempty"`

	// Behavior
	UseBrowser bool `json:"use_browser,omitempty"` // Use headless browser for SPA job pages
	Verbose    bool `json:"verbose,omitempty"`
	LogJSON    bool `json:"log_json,omitempty"`

	// Timeouts. No retries anywhere; one failed call degrades immediately.
	RemoteTimeout time.Duration `json:"-"`
	FetchTimeout  time.Duration `json:"-"`
}

// Default returns the configuration defaults.
func Default() Config {
	return Config{
		CoverageWeight:    0.65,
		UseRemoteMatch:    false,
		RemoteBlendWeight: 0.4,
		UseReranker:       true,
		RerankerModel:     DefaultRerankerModel,
		RerankPreselect:   50,
		ParseMode:         ParseModeAuto,
		CacheDir:          filepath.Join("data", "cache"),
		RemoteTimeout:     30 * time.Second,
		FetchTimeout:      10 * time.Second,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// Unmarshal over defaults so absent keys keep their default values
	// (matters for bools like use_reranker, which defaults to true).
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a config from defaults overridden by environment variables.
// Call after godotenv has loaded any .env file.
func FromEnv() Config {
	cfg := Default()
	cfg.ApplyEnv()
	return cfg
}

// ApplyEnv overrides fields from environment variables. Unset or unparseable
// values leave the current field untouched.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("COVERAGE_WEIGHT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.CoverageWeight = f
		}
	}
	if v := os.Getenv("USE_REMOTE_MATCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.UseRemoteMatch = b
		}
	}
	if v := os.Getenv("REMOTE_BLEND_WEIGHT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RemoteBlendWeight = f
		}
	}
	if v := os.Getenv("EMBEDDINGS_MODEL"); v != "" {
		c.EmbeddingsModel = v
	}
	if v := os.Getenv("EMBEDDINGS_URL"); v != "" {
		c.EmbeddingsURL = v
	}
	if v := os.Getenv("USE_RERANKER"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.UseReranker = b
		}
	}
	if v := os.Getenv("RERANKER_MODEL"); v != "" {
		c.RerankerModel = v
	}
	if v := os.Getenv("RERANK_URL"); v != "" {
		c.RerankURL = v
	}
	if v := os.Getenv("RERANK_PRESELECT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.RerankPreselect = n
		}
	}
	if v := os.Getenv("PARSE_MODE"); v != "" {
		c.ParseMode = ParseMode(v)
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("CACHE_DIR"); v != "" {
		c.CacheDir = v
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	switch c.ParseMode {
	case ParseModeAuto, ParseModeLocal, ParseModeRemote, ParseModeBlended:
	default:
		return fmt.Errorf("config error: unknown parse_mode %q", c.ParseMode)
	}

	if c.ParseMode == ParseModeRemote && c.APIKey == "" {
		return fmt.Errorf("config error: parse_mode %q requires an API key", c.ParseMode)
	}

	return nil
}

// ResolveParseMode resolves ParseModeAuto against credential presence:
// blended when an API key is configured, local-only otherwise. A missing key
// also forces remote-capable modes down to local-only.
func (c *Config) ResolveParseMode() ParseMode {
	switch c.ParseMode {
	case ParseModeAuto:
		if c.APIKey != "" {
			return ParseModeBlended
		}
		return ParseModeLocal
	case ParseModeRemote, ParseModeBlended:
		if c.APIKey == "" {
			return ParseModeLocal
		}
		return c.ParseMode
	default:
		return ParseModeLocal
	}
}

// MergeWithDefaults returns a copy with zero-valued fields filled from
// defaults. Used to apply config file values beneath CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.CoverageWeight == 0 {
		result.CoverageWeight = defaults.CoverageWeight
	}
	if result.RemoteBlendWeight == 0 {
		result.RemoteBlendWeight = defaults.RemoteBlendWeight
	}
	if result.RerankerModel == "" {
		result.RerankerModel = defaults.RerankerModel
	}
	if result.RerankPreselect == 0 {
		result.RerankPreselect = defaults.RerankPreselect
	}
	if result.EmbeddingsModel == "" {
		result.EmbeddingsModel = defaults.EmbeddingsModel
	}
	if result.EmbeddingsURL == "" {
		result.EmbeddingsURL = defaults.EmbeddingsURL
	}
	if result.RerankURL == "" {
		result.RerankURL = defaults.RerankURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.CacheDir == "" {
		result.CacheDir = defaults.CacheDir
	}
	if result.ParseMode == ParseModeAuto {
		result.ParseMode = defaults.ParseMode
	}
	if result.RemoteTimeout == 0 {
		result.RemoteTimeout = defaults.RemoteTimeout
	}
	if result.FetchTimeout == 0 {
		result.FetchTimeout = defaults.FetchTimeout
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
