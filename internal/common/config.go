// Package common provides shared utilities for FVS
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the FVS service
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Scoring     ScoringConfig `toml:"scoring"`
	Brief       BriefConfig   `toml:"brief"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds the embedded store location.
type StorageConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	FMP    FMPConfig    `toml:"fmp"`
	Gemini GeminiConfig `toml:"gemini"`
}

// FMPConfig holds Financial Modeling Prep API configuration
type FMPConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *FMPConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// ScoringConfig holds scoring pipeline configuration.
type ScoringConfig struct {
	CacheTTL      string `toml:"cache_ttl"`       // freshness window for persisted scores
	BatchLimit    int    `toml:"batch_limit"`     // max symbols per batch request
	IngestDelayMS int    `toml:"ingest_delay_ms"` // fixed sleep between batch tickers
}

// GetCacheTTL parses the score cache TTL, defaulting to 24h.
func (c *ScoringConfig) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// BriefConfig holds daily-brief orchestrator configuration.
type BriefConfig struct {
	Schedule string `toml:"schedule"` // cron expression; used when Enabled
	Enabled  bool   `toml:"enabled"`
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
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Path: "data/fvs",
		},
		Clients: ClientsConfig{
			FMP: FMPConfig{
				BaseURL:   "https://financialmodelingprep.com/api/v3",
				RateLimit: 5,
				Timeout:   "30s",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Scoring: ScoringConfig{
			CacheTTL:      "24h",
			BatchLimit:    10,
			IngestDelayMS: 250,
		},
		Brief: BriefConfig{
			Schedule: "0 18 * * MON-FRI",
			Enabled:  false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
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

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FVS_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FVS_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FVS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FVS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("FVS_DATA_PATH"); path != "" {
		config.Storage.Path = filepath.Join(path, "fvs")
	}

	if ttl := os.Getenv("FVS_SCORE_CACHE_TTL"); ttl != "" {
		config.Scoring.CacheTTL = ttl
	}

	if model := os.Getenv("FVS_GEMINI_MODEL"); model != "" {
		config.Clients.Gemini.Model = model
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := c.Environment
	return env == "production" || env == "prod"
}

// ResolveAPIKey resolves an API key from environment, system KV, or fallback.
// getKV may be nil (e.g. during early startup or in tests).
func ResolveAPIKey(getKV func(string) (string, error), name string, fallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"fmp_api_key":    {"FMP_API_KEY", "FVS_FMP_API_KEY"},
		"gemini_api_key": {"GEMINI_API_KEY", "FVS_GEMINI_API_KEY", "GOOGLE_API_KEY"},
	}

	// Environment variables win
	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	// System KV next
	if getKV != nil {
		if apiKey, err := getKV(name); err == nil && apiKey != "" {
			return apiKey, nil
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or store", name)
}
