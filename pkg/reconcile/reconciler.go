package reconcile

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/logging"
	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/metrics"
)

// Reconciler queries all configured sources and selects a single
// representative price per pass. It holds no mutable state; each pass
// owns its candidate set exclusively.
type Reconciler struct {
	sources []Source
	opts    Options
	logger  *logging.Logger
}

// NewReconciler creates a reconciler over the given sources.
func NewReconciler(srcs []Source, opts Options, logger *logging.Logger) *Reconciler {
	if opts.MismatchThresholdPct.IsZero() {
		opts.MismatchThresholdPct = DefaultMismatchThresholdPct
	}
	if opts.PlausibilityFactor.IsZero() {
		opts.PlausibilityFactor = DefaultPlausibilityFactor
	}
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return &Reconciler{
		sources: srcs,
		opts:    opts,
		logger:  logger,
	}
}

// outcome carries one adapter's result back to the pass.
type outcome struct {
	name  string
	quote Quote
	err   error
}

// Run executes one reconciliation pass. All sources are queried
// concurrently, each bounded by its own timeout, so pass latency is
// roughly that of the slowest adapter. previous, when non-nil, is the
// caller's last reconciled value used for implausibility filtering.
//
// Adapter failures are non-fatal; only a pass with zero valid quotes
// returns ErrNoValidSource.
func (r *Reconciler) Run(ctx context.Context, previous *decimal.Decimal) (Result, error) {
	start := time.Now()

	if len(r.sources) == 0 {
		return Result{}, fmt.Errorf("%w", ErrNoSourcesConfigured)
	}

	results := make(chan outcome, len(r.sources))
	for _, src := range r.sources {
		go func(src Source) {
			quote, err := src.Fetch(ctx)
			results <- outcome{name: src.Name(), quote: quote, err: err}
		}(src)
	}

	candidates := make([]Quote, 0, len(r.sources))
	for range r.sources {
		out := <-results
		if out.err != nil {
			metrics.RecordQuoteFetch(out.name, "error")
			r.logger.Warn("Source fetch failed", "source", out.name, "error", out.err.Error())
			continue
		}
		metrics.RecordQuoteFetch(out.name, "ok")

		if reason := r.rejectReason(out.quote, previous); reason != "" {
			metrics.RecordQuoteRejection(out.name, reason)
			r.logger.Warn("Discarding invalid quote",
				"source", out.name,
				"value", out.quote.Value.String(),
				"reason", reason)
			continue
		}

		candidates = append(candidates, out.quote)
	}

	if len(candidates) == 0 {
		metrics.RecordPass("no_valid_source", time.Since(start))
		return Result{}, fmt.Errorf("%w: all %d sources failed or were rejected", ErrNoValidSource, len(r.sources))
	}

	result := r.selectPrice(candidates)
	result.PassTime = time.Now().UTC()

	metrics.RecordPass("ok", time.Since(start))
	spreadFloat, _ := result.SpreadPct.Float64()
	metrics.RecordSpread(spreadFloat, result.Mismatch)

	r.logger.Debug("Reconciliation pass complete",
		"chosen_value", result.ChosenValue.String(),
		"chosen_source", result.ChosenSource,
		"candidates", len(result.Candidates),
		"spread_pct", result.SpreadPct.String())

	return result, nil
}

// rejectReason returns a non-empty reason when the quote must not enter
// the candidate set.
func (r *Reconciler) rejectReason(q Quote, previous *decimal.Decimal) string {
	if !q.Value.IsPositive() {
		return "non_positive"
	}
	if r.opts.MaxQuoteAge > 0 && !q.ObservedAt.IsZero() {
		if time.Since(q.ObservedAt) > r.opts.MaxQuoteAge {
			return "stale"
		}
	}
	if previous != nil && previous.IsPositive() {
		upper := previous.Mul(r.opts.PlausibilityFactor)
		lower := previous.Div(r.opts.PlausibilityFactor)
		if q.Value.GreaterThan(upper) || q.Value.LessThan(lower) {
			return "implausible"
		}
	}
	return ""
}

// selectPrice applies the selection policy over a non-empty candidate
// set. It is pure and order-independent: candidates are sorted before
// selection so the same quote set always yields the same result.
func (r *Reconciler) selectPrice(candidates []Quote) Result {
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].SourceID < candidates[j].SourceID
	})

	result := Result{
		Candidates: candidates,
		SpreadPct:  spreadPct(candidates),
	}

	if len(candidates) == 1 {
		result.ChosenValue = candidates[0].Value
		result.ChosenSource = candidates[0].SourceID
		return result
	}

	if r.opts.Primary != "" {
		for _, q := range candidates {
			if q.SourceID == r.opts.Primary {
				result.ChosenValue = q.Value
				result.ChosenSource = q.SourceID
				result.Mismatch = result.SpreadPct.GreaterThan(r.opts.MismatchThresholdPct)
				return result
			}
		}
	}

	result.ChosenValue = lowerMedian(candidates)
	result.ChosenSource = SyntheticMedian
	result.Mismatch = result.SpreadPct.GreaterThan(r.opts.MismatchThresholdPct)
	return result
}

// lowerMedian returns the median quote value. For an even-sized set the
// lower of the two middle order statistics is used so selection stays
// deterministic.
func lowerMedian(candidates []Quote) decimal.Decimal {
	values := make([]decimal.Decimal, len(candidates))
	for i, q := range candidates {
		values[i] = q.Value
	}
	sort.Slice(values, func(i, j int) bool {
		return values[i].LessThan(values[j])
	})
	return values[(len(values)-1)/2]
}

// spreadPct computes (max-min)/min*100 across the candidate values.
func spreadPct(candidates []Quote) decimal.Decimal {
	if len(candidates) < 2 {
		return decimal.Zero
	}
	minVal := candidates[0].Value
	maxVal := candidates[0].Value
	for _, q := range candidates[1:] {
		if q.Value.LessThan(minVal) {
			minVal = q.Value
		}
		if q.Value.GreaterThan(maxVal) {
			maxVal = q.Value
		}
	}
	return maxVal.Sub(minVal).Div(minVal).Mul(decimal.NewFromInt(100))
}
