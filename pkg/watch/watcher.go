// Package watch runs the periodic fetch-reconcile-notify cycle. It owns
// all cross-pass state (the previous reconciled value used for
// implausibility filtering); the reconciler itself stays pure.
package watch

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/indicator"
	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/logging"
	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/metrics"
	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/reconcile"
)

// Runner executes one reconciliation pass.
type Runner interface {
	Run(ctx context.Context, previous *decimal.Decimal) (reconcile.Result, error)
}

// Store persists pass results and serves indicator windows.
type Store interface {
	Append(result reconcile.Result) error
	Recent(n int) ([]decimal.Decimal, error)
}

// Notifier delivers pass outcomes.
type Notifier interface {
	NotifyPrice(ctx context.Context, result reconcile.Result, snap indicator.Snapshot) error
	NotifyFailure(ctx context.Context) error
}

// Publisher receives each successful pass result (API cache, WebSocket).
type Publisher interface {
	Publish(result reconcile.Result)
}

// Config holds watcher timing and indicator periods.
type Config struct {
	Interval  time.Duration
	SMAPeriod int
	EMAPeriod int
	RSIPeriod int
}

// applyDefaults fills zero fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = 5 * time.Minute
	}
	if c.SMAPeriod <= 0 {
		c.SMAPeriod = 5
	}
	if c.EMAPeriod <= 0 {
		c.EMAPeriod = 10
	}
	if c.RSIPeriod <= 0 {
		c.RSIPeriod = 14
	}
}

// indicatorWindow is how many recent values to load for indicators.
func (c *Config) indicatorWindow() int {
	window := c.SMAPeriod
	if c.EMAPeriod > window {
		window = c.EMAPeriod
	}
	if c.RSIPeriod+1 > window {
		window = c.RSIPeriod + 1
	}
	return window
}

// Watcher drives reconciliation passes on a fixed interval.
type Watcher struct {
	runner     Runner
	store      Store
	notifier   Notifier
	publishers []Publisher
	cfg        Config
	logger     *logging.Logger

	// previous is the last reconciled value, fed back into the next
	// pass for implausibility filtering.
	previous *decimal.Decimal
}

// New creates a watcher. store and notifier may be nil to disable
// persistence and notifications.
func New(runner Runner, store Store, notifier Notifier, publishers []Publisher, cfg Config, logger *logging.Logger) *Watcher {
	cfg.applyDefaults()
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return &Watcher{
		runner:     runner,
		store:      store,
		notifier:   notifier,
		publishers: publishers,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run executes passes until ctx is cancelled. The first pass runs
// immediately, then one per interval.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("Starting watcher", "interval", w.cfg.Interval.String())

	w.runPass(ctx)

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Watcher stopped")
			return ctx.Err()
		case <-ticker.C:
			w.runPass(ctx)
		}
	}
}

// runPass executes a single cycle. Pass failures are never fatal to the
// loop; the cycle is skipped after one clear notice.
func (w *Watcher) runPass(ctx context.Context) {
	result, err := w.runner.Run(ctx, w.previous)
	if err != nil {
		w.logger.Warn("Could not obtain price this cycle", "error", err.Error())
		if w.notifier != nil {
			if nerr := w.notifier.NotifyFailure(ctx); nerr != nil {
				w.logger.Error("Failed to send failure notice", "error", nerr.Error())
			}
		}
		return
	}

	value := result.ChosenValue
	w.previous = &value

	priceFloat, _ := result.ChosenValue.Float64()
	metrics.RecordChosenPrice(priceFloat)

	var snap indicator.Snapshot
	if w.store != nil {
		if err := w.store.Append(result); err != nil {
			w.logger.Error("Failed to persist snapshot", "error", err.Error())
		}
		values, err := w.store.Recent(w.cfg.indicatorWindow())
		if err != nil {
			w.logger.Error("Failed to load indicator window", "error", err.Error())
		} else {
			snap = indicator.Compute(values, w.cfg.SMAPeriod, w.cfg.EMAPeriod, w.cfg.RSIPeriod)
		}
	}

	if w.notifier != nil {
		if err := w.notifier.NotifyPrice(ctx, result, snap); err != nil {
			w.logger.Error("Failed to send price notification", "error", err.Error())
		}
	}

	for _, p := range w.publishers {
		p.Publish(result)
	}

	w.logger.Info("Cycle complete",
		"price", result.ChosenValue.String(),
		"source", result.ChosenSource,
		"candidates", len(result.Candidates),
		"spread_pct", result.SpreadPct.StringFixed(3),
		"mismatch", result.Mismatch)
}
