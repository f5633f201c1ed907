package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration for errors
func Validate(cfg *Config) error {
	if len(cfg.Sources) == 0 {
		return fmt.Errorf("%w", ErrNoSourcesConfigured)
	}

	enabled := make(map[string]bool)
	for i, source := range cfg.Sources {
		if source.Name == "" {
			return fmt.Errorf("source %d: %w", i, ErrSourceNameRequired)
		}
		if source.Enabled {
			enabled[source.Name] = true
		}
	}
	if len(enabled) == 0 {
		return fmt.Errorf("%w", ErrNoSourcesEnabled)
	}

	if err := validateReconcileConfig(&cfg.Reconcile, enabled); err != nil {
		return fmt.Errorf("reconcile config: %w", err)
	}

	if cfg.History.Enabled && cfg.History.Path == "" {
		return fmt.Errorf("history config: %w", ErrHistoryPathRequired)
	}

	if err := validateLoggingConfig(&cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

func validateReconcileConfig(cfg *ReconcileConfig, enabled map[string]bool) error {
	if cfg.Primary != "" && !enabled[cfg.Primary] {
		return fmt.Errorf("%w: %s", ErrUnknownPrimary, cfg.Primary)
	}
	if cfg.MismatchThresholdPct < 0 {
		return fmt.Errorf("%w: %f", ErrInvalidThreshold, cfg.MismatchThresholdPct)
	}
	if cfg.PlausibilityFactor < 1 {
		return fmt.Errorf("%w: %f", ErrInvalidPlausibilityFactor, cfg.PlausibilityFactor)
	}
	return nil
}

func validateLoggingConfig(cfg *LoggingConfig) error {
	// Validate level
	validLevels := []string{"debug", "info", "warn", "error"}
	levelValid := false
	for _, l := range validLevels {
		if strings.ToLower(cfg.Level) == l {
			levelValid = true
			break
		}
	}
	if !levelValid {
		return fmt.Errorf("%w: %s (must be one of: %s)", ErrInvalidLogLevel, cfg.Level, strings.Join(validLevels, ", "))
	}

	// Validate format
	formatValid := strings.ToLower(cfg.Format) == "json" || strings.ToLower(cfg.Format) == "text"
	if !formatValid {
		return fmt.Errorf("%w: %s (must be 'json' or 'text')", ErrInvalidLogFormat, cfg.Format)
	}

	return nil
}
