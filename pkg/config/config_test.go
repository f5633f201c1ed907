package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_GOLD_API_KEY", "secret-key")

	path := writeConfig(t, `
watch:
  interval: 1m
  sma_period: 3
reconcile:
  primary: goldapi
  mismatch_threshold_pct: 0.75
  max_quote_age: 600
sources:
  - name: goldapi
    enabled: true
    config:
      api_key: ${TEST_GOLD_API_KEY}
  - name: goldprice
    enabled: true
  - name: metalsapi
    enabled: false
notify:
  webhook_url: https://discord.example/webhook
history:
  enabled: true
  path: /tmp/history.db
logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.Watch.Interval.ToDuration())
	assert.Equal(t, 3, cfg.Watch.SMAPeriod)
	assert.Equal(t, "goldapi", cfg.Reconcile.Primary)
	assert.Equal(t, 0.75, cfg.Reconcile.MismatchThresholdPct)
	assert.Equal(t, 10*time.Minute, cfg.Reconcile.MaxQuoteAge.ToDuration())
	require.Len(t, cfg.Sources, 3)
	assert.Equal(t, "secret-key", cfg.Sources[0].GetString("api_key", ""))
	assert.Equal(t, "https://discord.example/webhook", cfg.Notify.WebhookURL)

	require.NoError(t, Validate(cfg))
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: goldprice
    enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.Watch.Interval.ToDuration())
	assert.Equal(t, 5, cfg.Watch.SMAPeriod)
	assert.Equal(t, 10, cfg.Watch.EMAPeriod)
	assert.Equal(t, 14, cfg.Watch.RSIPeriod)
	assert.Equal(t, 0.5, cfg.Reconcile.MismatchThresholdPct)
	assert.Equal(t, float64(10), cfg.Reconcile.PlausibilityFactor)
	assert.Equal(t, 10*time.Second, cfg.Notify.Timeout.ToDuration())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "sources: [\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "no sources",
			mutate:  func(c *Config) { c.Sources = nil },
			wantErr: ErrNoSourcesConfigured,
		},
		{
			name:    "unnamed source",
			mutate:  func(c *Config) { c.Sources[0].Name = "" },
			wantErr: ErrSourceNameRequired,
		},
		{
			name:    "nothing enabled",
			mutate:  func(c *Config) { c.Sources[0].Enabled = false },
			wantErr: ErrNoSourcesEnabled,
		},
		{
			name:    "primary not enabled",
			mutate:  func(c *Config) { c.Reconcile.Primary = "yahoo" },
			wantErr: ErrUnknownPrimary,
		},
		{
			name:    "negative threshold",
			mutate:  func(c *Config) { c.Reconcile.MismatchThresholdPct = -1 },
			wantErr: ErrInvalidThreshold,
		},
		{
			name:    "plausibility below one",
			mutate:  func(c *Config) { c.Reconcile.PlausibilityFactor = 0.5 },
			wantErr: ErrInvalidPlausibilityFactor,
		},
		{
			name: "history without path",
			mutate: func(c *Config) {
				c.History.Enabled = true
				c.History.Path = ""
			},
			wantErr: ErrHistoryPathRequired,
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: ErrInvalidLogLevel,
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: ErrInvalidLogFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Sources: []SourceConfig{{Name: "goldprice", Enabled: true}},
				Reconcile: ReconcileConfig{
					MismatchThresholdPct: 0.5,
					PlausibilityFactor:   10,
				},
				Logging: LoggingConfig{Level: "info", Format: "json"},
			}
			tt.mutate(cfg)
			assert.ErrorIs(t, Validate(cfg), tt.wantErr)
		})
	}
}

func TestDuration_Unmarshal(t *testing.T) {
	var out struct {
		A Duration `yaml:"a"`
		B Duration `yaml:"b"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("a: 90\nb: 2m30s\n"), &out))
	assert.Equal(t, 90*time.Second, out.A.ToDuration())
	assert.Equal(t, 150*time.Second, out.B.ToDuration())

	err := yaml.Unmarshal([]byte("a: soon\n"), &out)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestEnabledSources(t *testing.T) {
	cfg := &Config{Sources: []SourceConfig{
		{Name: "goldapi", Enabled: true},
		{Name: "metalsapi", Enabled: false},
		{Name: "yahoo", Enabled: true},
	}}

	enabled := cfg.EnabledSources()
	require.Len(t, enabled, 2)
	assert.Equal(t, "goldapi", enabled[0].Name)
	assert.Equal(t, "yahoo", enabled[1].Name)
}
