// Package common provides shared utilities for papertrade
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the papertrade client
type Config struct {
	Environment string        `toml:"environment"`
	API         APIConfig     `toml:"api"`
	Session     SessionConfig `toml:"session"`
	Search      SearchConfig  `toml:"search"`
	Logging     LoggingConfig `toml:"logging"`
}

// APIConfig holds trading platform API configuration
type APIConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *APIConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// SessionConfig holds credential store configuration.
// Backend is "file" or "encrypted"; the encrypted backend reads its
// passphrase from PAPERTRADE_SESSION_PASSPHRASE.
type SessionConfig struct {
	Path    string `toml:"path"`
	Backend string `toml:"backend"`
	TTL     string `toml:"ttl"`
}

// GetTTL parses and returns the credential lifetime (default 30 days,
// matching the platform's cookie expiry).
func (c *SessionConfig) GetTTL() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 30 * 24 * time.Hour
	}
	return d
}

// SearchConfig holds search-as-you-type behaviour
type SearchConfig struct {
	DebounceMS int `toml:"debounce_ms"`
	MinLength  int `toml:"min_length"`
}

// GetDebounce returns the debounce window duration
func (c *SearchConfig) GetDebounce() time.Duration {
	if c.DebounceMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		API: APIConfig{
			BaseURL:   "https://api.papertrade.app/api",
			RateLimit: 10,
			Timeout:   "30s",
		},
		Session: SessionConfig{
			Path:    defaultSessionPath(),
			Backend: "file",
			TTL:     "720h",
		},
		Search: SearchConfig{
			DebounceMS: 500,
			MinLength:  2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".papertrade/session.json"
	}
	return home + "/.papertrade/session.json"
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	validateSessionBackend(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("PAPERTRADE_ENV"); env != "" {
		config.Environment = env
	}

	if url := os.Getenv("PAPERTRADE_API_URL"); url != "" {
		config.API.BaseURL = url
	}

	if rl := os.Getenv("PAPERTRADE_API_RATE_LIMIT"); rl != "" {
		if n, err := strconv.Atoi(rl); err == nil {
			config.API.RateLimit = n
		}
	}

	if v := os.Getenv("PAPERTRADE_SESSION_PATH"); v != "" {
		config.Session.Path = v
	}

	if v := os.Getenv("PAPERTRADE_SESSION_BACKEND"); v != "" {
		config.Session.Backend = v
	}

	if level := os.Getenv("PAPERTRADE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// validateSessionBackend ensures the backend is "file" or "encrypted",
// defaulting to "file".
func validateSessionBackend(config *Config) {
	b := strings.ToLower(config.Session.Backend)
	if b != "file" && b != "encrypted" {
		b = "file"
	}
	config.Session.Backend = b
}
