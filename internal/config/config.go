// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/capacity-planner/internal/llm"
)

// DefaultPort is the HTTP port used when none is configured.
const DefaultPort = 8080

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Backing store
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	Snapshot    string `json:"snapshot,omitempty"`     // Path to a JSON/YAML planning snapshot

	// Server
	Port int `json:"port,omitempty"`

	// Forecasting
	WeeksAhead      int    `json:"weeks_ahead,omitempty"`      // Default horizon when a request passes 0
	AdvisoryTimeout string `json:"advisory_timeout,omitempty"` // Go duration, e.g. "10s"

	// Advisory LLM
	LLMProvider string `json:"llm_provider,omitempty"` // gemini, openai or ollama; empty disables advice
	LLMModel    string `json:"llm_model,omitempty"`    // Overrides the advanced-tier model
	APIKey      string `json:"api_key,omitempty"`      // Provider API key

	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
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

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.DatabaseURL != "" && c.Snapshot != "" {
		return fmt.Errorf("config error: 'database_url' and 'snapshot' are mutually exclusive")
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535, got %d", c.Port)
	}
	if c.WeeksAhead < 0 {
		return fmt.Errorf("config error: 'weeks_ahead' must be non-negative")
	}

	if c.AdvisoryTimeout != "" {
		d, err := time.ParseDuration(c.AdvisoryTimeout)
		if err != nil {
			return fmt.Errorf("config error: invalid 'advisory_timeout': %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("config error: 'advisory_timeout' must be positive")
		}
	}

	if c.LLMProvider != "" {
		if _, err := llm.ValidateProvider(c.LLMProvider); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}

	if c.Snapshot != "" {
		if _, err := os.Stat(c.Snapshot); os.IsNotExist(err) {
			return fmt.Errorf("config error: snapshot file not found: %s", c.Snapshot)
		}
	}

	return nil
}

// AdvisoryTimeoutDuration returns the parsed advisory timeout, or 0 when unset or invalid.
func (c *Config) AdvisoryTimeoutDuration() time.Duration {
	if c.AdvisoryTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.AdvisoryTimeout)
	if err != nil {
		return 0
	}
	return d
}

// Addr returns the listen address for the configured port.
func (c *Config) Addr() string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	return fmt.Sprintf(":%d", port)
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" && result.Snapshot == "" {
		result.DatabaseURL = defaults.DatabaseURL
		result.Snapshot = defaults.Snapshot
	}
	if result.AdvisoryTimeout == "" {
		result.AdvisoryTimeout = defaults.AdvisoryTimeout
	}
	if result.LLMProvider == "" {
		result.LLMProvider = defaults.LLMProvider
	}
	if result.LLMModel == "" {
		result.LLMModel = defaults.LLMModel
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.WeeksAhead == 0 {
		result.WeeksAhead = defaults.WeeksAhead
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
