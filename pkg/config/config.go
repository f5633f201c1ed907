// Package config provides configuration loading and validation for the
// gold price bot.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file. Environment variables in
// the file are expanded before parsing, so secrets (API keys, webhook
// URLs) stay out of the file itself.
func Load(path string) (*Config, error) {
	// Validate and sanitize path
	cleanPath := filepath.Clean(path)
	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	// Read config file
	data, err := os.ReadFile(absPath) // #nosec G304 -- Path sanitized with filepath.Clean and filepath.Abs
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in YAML
	expanded := os.ExpandEnv(string(data))

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Apply defaults
	applyDefaults(&cfg)

	return &cfg, nil
}

// applyDefaults sets default values for optional fields.
func applyDefaults(cfg *Config) {
	// Watch defaults
	if cfg.Watch.Interval.ToDuration() == 0 {
		cfg.Watch.Interval = Duration(5 * time.Minute)
	}
	if cfg.Watch.SMAPeriod == 0 {
		cfg.Watch.SMAPeriod = 5
	}
	if cfg.Watch.EMAPeriod == 0 {
		cfg.Watch.EMAPeriod = 10
	}
	if cfg.Watch.RSIPeriod == 0 {
		cfg.Watch.RSIPeriod = 14
	}

	// Reconcile defaults
	if cfg.Reconcile.MismatchThresholdPct == 0 {
		cfg.Reconcile.MismatchThresholdPct = 0.5
	}
	if cfg.Reconcile.PlausibilityFactor == 0 {
		cfg.Reconcile.PlausibilityFactor = 10
	}

	// Notify defaults
	if cfg.Notify.Timeout.ToDuration() == 0 {
		cfg.Notify.Timeout = Duration(10 * time.Second)
	}

	// History defaults
	if cfg.History.Enabled && cfg.History.Path == "" {
		cfg.History.Path = "data/history.db"
	}

	// Server defaults
	if cfg.Server.HTTP.Enabled && cfg.Server.HTTP.Addr == "" {
		cfg.Server.HTTP.Addr = ":8080"
	}
	if cfg.Server.WebSocket.Enabled && cfg.Server.WebSocket.Addr == "" {
		cfg.Server.WebSocket.Addr = ":8081"
	}

	// Metrics defaults
	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9091"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// GetString retrieves a string value from the source configuration.
func (sc *SourceConfig) GetString(key, defaultValue string) string {
	if val, ok := sc.Config[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return defaultValue
}

// GetInt retrieves an integer from source config.
func (sc *SourceConfig) GetInt(key string, defaultValue int) int {
	if val, ok := sc.Config[key]; ok {
		if i, ok := val.(int); ok {
			return i
		}
	}
	return defaultValue
}

// GetBool retrieves a boolean from source config.
func (sc *SourceConfig) GetBool(key string, defaultValue bool) bool {
	if val, ok := sc.Config[key]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return defaultValue
}

// EnabledSources returns the enabled source configs in file order.
func (c *Config) EnabledSources() []SourceConfig {
	out := make([]SourceConfig, 0, len(c.Sources))
	for _, sc := range c.Sources {
		if sc.Enabled {
			out = append(out, sc)
		}
	}
	return out
}
