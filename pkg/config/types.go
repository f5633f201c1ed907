package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure
type Config struct {
	Watch     WatchConfig     `yaml:"watch"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	Sources   []SourceConfig  `yaml:"sources"`
	Notify    NotifyConfig    `yaml:"notify"`
	History   HistoryConfig   `yaml:"history"`
	Server    ServerConfig    `yaml:"server"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// WatchConfig configures the polling loop and indicator periods
type WatchConfig struct {
	Interval  Duration `yaml:"interval"`
	SMAPeriod int      `yaml:"sma_period"`
	EMAPeriod int      `yaml:"ema_period"`
	RSIPeriod int      `yaml:"rsi_period"`
}

// ReconcileConfig configures the selection policy
type ReconcileConfig struct {
	Primary              string   `yaml:"primary"`                // designated primary source id
	MismatchThresholdPct float64  `yaml:"mismatch_threshold_pct"` // spread threshold, percent
	MaxQuoteAge          Duration `yaml:"max_quote_age"`          // staleness window, 0 disables
	PlausibilityFactor   float64  `yaml:"plausibility_factor"`    // reject quotes this factor away from previous
}

// SourceConfig configures one price source
type SourceConfig struct {
	Name    string                 `yaml:"name"`
	Enabled bool                   `yaml:"enabled"`
	Config  map[string]interface{} `yaml:"config"`
}

// NotifyConfig configures the Discord webhook notifier
type NotifyConfig struct {
	WebhookURL string   `yaml:"webhook_url"`
	Timeout    Duration `yaml:"timeout"`
}

// HistoryConfig configures snapshot persistence
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ServerConfig configures the read API
type ServerConfig struct {
	HTTP      HTTPConfig `yaml:"http"`
	WebSocket WSConfig   `yaml:"websocket"`
}

// HTTPConfig configures the HTTP server
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// WSConfig configures the WebSocket server
type WSConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// MetricsConfig configures Prometheus metrics
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// LoggingConfig configures logging
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Duration wraps time.Duration for YAML parsing. Accepts Go duration
// strings ("30s", "5m") or plain integers interpreted as seconds.
type Duration time.Duration

// ToDuration converts to time.Duration.
func (d Duration) ToDuration() time.Duration {
	return time.Duration(d)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw interface{}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case int:
		*d = Duration(time.Duration(v) * time.Second)
		return nil
	case float64:
		*d = Duration(time.Duration(v * float64(time.Second)))
		return nil
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidDuration, v)
		}
		*d = Duration(parsed)
		return nil
	default:
		return fmt.Errorf("%w: %v", ErrInvalidDuration, raw)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}
