package config

import "errors"

var (
	// ErrNoSourcesConfigured indicates that no price sources are configured.
	ErrNoSourcesConfigured = errors.New("at least one price source must be configured")
	// ErrNoSourcesEnabled indicates that no sources are enabled.
	ErrNoSourcesEnabled = errors.New("no sources enabled")
	// ErrSourceNameRequired indicates that source name is required.
	ErrSourceNameRequired = errors.New("source name is required")
	// ErrUnknownPrimary indicates the primary source is not an enabled source.
	ErrUnknownPrimary = errors.New("primary is not an enabled source")
	// ErrInvalidThreshold indicates a negative mismatch threshold.
	ErrInvalidThreshold = errors.New("mismatch_threshold_pct must be >= 0")
	// ErrInvalidPlausibilityFactor indicates a plausibility factor below 1.
	ErrInvalidPlausibilityFactor = errors.New("plausibility_factor must be >= 1")
	// ErrHistoryPathRequired indicates that a history path is required.
	ErrHistoryPathRequired = errors.New("history path must be specified when history is enabled")
	// ErrInvalidLogLevel indicates that the log level is invalid.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidLogFormat indicates that the log format is invalid.
	ErrInvalidLogFormat = errors.New("invalid log format")
	// ErrInvalidDuration indicates an unparseable duration value.
	ErrInvalidDuration = errors.New("invalid duration")
)
