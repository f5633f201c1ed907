// Package source provides price source adapters for public spot gold APIs.
//
// Each adapter wraps one external HTTP API and produces a single quote
// per invocation, bounded by its own timeout. Parsing failures, non-200
// statuses and non-numeric values are returned as errors, never panics;
// retry policy belongs to the caller.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/logging"
	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/version"
)

// DefaultTimeout is the default per-source fetch timeout.
const DefaultTimeout = 8 * time.Second

// maxResponseBytes caps response bodies read from providers.
const maxResponseBytes = 1 << 20

// GetLoggerFromConfig extracts the logger passed from main or returns a
// noop logger to prevent nil pointer dereferences.
func GetLoggerFromConfig(config map[string]interface{}) *logging.Logger {
	if loggerInterface, ok := config["logger"]; ok {
		if logger, ok := loggerInterface.(*logging.Logger); ok {
			return logger
		}
	}
	return logging.NewNoopLogger()
}

// getString retrieves a string value from a source config map.
func getString(config map[string]interface{}, key, defaultValue string) string {
	if v, ok := config[key].(string); ok && v != "" {
		return v
	}
	return defaultValue
}

// getTimeout retrieves the fetch timeout from a source config map.
// The value is interpreted as milliseconds.
func getTimeout(config map[string]interface{}) time.Duration {
	switch v := config["timeout"].(type) {
	case int:
		if v > 0 {
			return time.Duration(v) * time.Millisecond
		}
	case float64:
		if v > 0 {
			return time.Duration(v) * time.Millisecond
		}
	}
	return DefaultTimeout
}

// newHTTPClient builds the HTTP client shared by all adapters.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}

// fetchJSON performs a single GET against url with optional headers and
// returns the raw body. The caller unmarshals into its own response
// shape and keeps the body for diagnostics.
func fetchJSON(ctx context.Context, client *http.Client, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.AgentString())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w", ErrRateLimitExceeded)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
