// Package reconcile selects a single representative spot gold price
// from a set of independent source quotes.
package reconcile

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// SyntheticMedian is the ChosenSource value when no primary source
// produced a valid quote and the median was used instead.
const SyntheticMedian = "synthetic-median"

// Quote is a single price observation from one source.
type Quote struct {
	// SourceID identifies the originating provider.
	SourceID string `json:"source_id"`
	// Value is the observed price in USD per troy ounce. Must be positive.
	Value decimal.Decimal `json:"value"`
	// ObservedAt is when the quote was obtained (UTC).
	ObservedAt time.Time `json:"observed_at"`
	// Raw is the original response body, retained for diagnostics only.
	Raw json.RawMessage `json:"-"`
}

// Result is the outcome of one reconciliation pass. It is immutable
// once produced and handed to consumers by value.
type Result struct {
	ChosenValue  decimal.Decimal `json:"chosen_value"`
	ChosenSource string          `json:"chosen_source"`
	// Candidates is the full set of valid quotes gathered this pass,
	// sorted by SourceID for deterministic output.
	Candidates []Quote `json:"candidates"`
	// SpreadPct is (max-min)/min*100 across all valid quotes.
	SpreadPct decimal.Decimal `json:"spread_pct"`
	// Mismatch is set when SpreadPct exceeded the configured threshold.
	// It annotates the result and never changes ChosenValue.
	Mismatch bool      `json:"mismatch"`
	PassTime time.Time `json:"pass_timestamp"`
}

// Source produces one quote per invocation, or fails. Implementations
// perform exactly one outbound call bounded by their own timeout and
// never retry internally.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (Quote, error)
}

// Options configures the selection policy of a Reconciler.
type Options struct {
	// Primary is the id of a designated primary source. When it produced
	// a valid quote this pass, its value is chosen regardless of others.
	Primary string
	// MismatchThresholdPct flags the result when the spread across valid
	// quotes exceeds it. Default 0.5.
	MismatchThresholdPct decimal.Decimal
	// MaxQuoteAge rejects quotes observed longer ago than this window.
	// Zero disables the staleness guard.
	MaxQuoteAge time.Duration
	// PlausibilityFactor rejects quotes more than this factor away from
	// the previous reconciled value supplied by the caller. Default 10.
	PlausibilityFactor decimal.Decimal
}

// DefaultMismatchThresholdPct is the default spread threshold in percent.
var DefaultMismatchThresholdPct = decimal.RequireFromString("0.5")

// DefaultPlausibilityFactor is the default plausibility factor.
var DefaultPlausibilityFactor = decimal.NewFromInt(10)
