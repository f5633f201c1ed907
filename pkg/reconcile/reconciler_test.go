package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/logging"
)

// stubSource returns a frozen quote or error, standing in for a live adapter.
type stubSource struct {
	name  string
	value decimal.Decimal
	age   time.Duration
	err   error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(_ context.Context) (Quote, error) {
	if s.err != nil {
		return Quote{}, s.err
	}
	return Quote{
		SourceID:   s.name,
		Value:      s.value,
		ObservedAt: time.Now().UTC().Add(-s.age),
	}, nil
}

func quoteSource(name string, value float64) *stubSource {
	return &stubSource{name: name, value: decimal.NewFromFloat(value)}
}

func failingSource(name string) *stubSource {
	return &stubSource{name: name, err: errors.New("connection refused")}
}

func newTestReconciler(srcs []Source, opts Options) *Reconciler {
	return NewReconciler(srcs, opts, logging.NewNoopLogger())
}

func TestReconciler_IdenticalValues(t *testing.T) {
	r := newTestReconciler([]Source{
		quoteSource("a", 2400),
		quoteSource("b", 2400),
		quoteSource("c", 2400),
	}, Options{})

	result, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.True(t, result.ChosenValue.Equal(decimal.NewFromInt(2400)))
	assert.True(t, result.SpreadPct.IsZero())
	assert.False(t, result.Mismatch)
	assert.Len(t, result.Candidates, 3)
}

func TestReconciler_PrimaryWins(t *testing.T) {
	r := newTestReconciler([]Source{
		quoteSource("goldapi", 2405.50),
		quoteSource("goldprice", 2401.00),
		quoteSource("yahoo", 2399.00),
	}, Options{Primary: "goldapi"})

	result, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "goldapi", result.ChosenSource)
	assert.True(t, result.ChosenValue.Equal(decimal.NewFromFloat(2405.50)))
}

func TestReconciler_MedianOddSet(t *testing.T) {
	r := newTestReconciler([]Source{
		quoteSource("a", 2401.10),
		quoteSource("b", 2402.00),
		quoteSource("c", 2403.50),
	}, Options{})

	result, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, SyntheticMedian, result.ChosenSource)
	assert.True(t, result.ChosenValue.Equal(decimal.NewFromFloat(2402.00)))
	// spread = (2403.50-2401.10)/2401.10*100 ≈ 0.10%, below default threshold
	assert.Equal(t, "0.10", result.SpreadPct.StringFixed(2))
	assert.False(t, result.Mismatch)
}

func TestReconciler_EvenSetLowerMiddle(t *testing.T) {
	r := newTestReconciler([]Source{
		quoteSource("a", 2400.00),
		quoteSource("b", 2450.00),
	}, Options{})

	result, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	// lower of the two middle order statistics
	assert.True(t, result.ChosenValue.Equal(decimal.NewFromFloat(2400.00)))
	assert.Equal(t, SyntheticMedian, result.ChosenSource)
	// spread ≈ 2.08%, above the 0.5 default, annotation only
	assert.True(t, result.Mismatch)
}

func TestReconciler_PrimaryUnavailableFallsBackToMedian(t *testing.T) {
	r := newTestReconciler([]Source{
		failingSource("goldapi"),
		quoteSource("goldprice", 2410.00),
		quoteSource("yahoo", 2412.00),
	}, Options{Primary: "goldapi"})

	result, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, SyntheticMedian, result.ChosenSource)
	assert.True(t, result.ChosenValue.Equal(decimal.NewFromFloat(2410.00)))
}

func TestReconciler_SingleValidQuote(t *testing.T) {
	r := newTestReconciler([]Source{
		failingSource("a"),
		quoteSource("b", 2420.25),
		failingSource("c"),
	}, Options{})

	result, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "b", result.ChosenSource)
	assert.True(t, result.ChosenValue.Equal(decimal.NewFromFloat(2420.25)))
	assert.True(t, result.SpreadPct.IsZero())
	assert.Len(t, result.Candidates, 1)
}

func TestReconciler_AllSourcesFail(t *testing.T) {
	r := newTestReconciler([]Source{
		failingSource("a"),
		failingSource("b"),
	}, Options{})

	_, err := r.Run(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoValidSource)
}

func TestReconciler_NoSourcesConfigured(t *testing.T) {
	r := newTestReconciler(nil, Options{})

	_, err := r.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoSourcesConfigured)
}

func TestReconciler_InvalidQuoteDoesNotChangeSelection(t *testing.T) {
	valid := []Source{
		quoteSource("a", 2401.10),
		quoteSource("b", 2402.00),
		quoteSource("c", 2403.50),
	}

	r := newTestReconciler(valid, Options{})
	base, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	withInvalid := append([]Source{}, valid...)
	withInvalid = append(withInvalid, &stubSource{name: "bad", value: decimal.NewFromInt(-5)})

	r2 := newTestReconciler(withInvalid, Options{})
	result, err := r2.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.True(t, result.ChosenValue.Equal(base.ChosenValue))
	assert.Equal(t, base.ChosenSource, result.ChosenSource)
	assert.Len(t, result.Candidates, 3)
}

func TestReconciler_Idempotent(t *testing.T) {
	srcs := []Source{
		quoteSource("a", 2401.10),
		quoteSource("b", 2403.50),
		quoteSource("c", 2402.00),
		failingSource("d"),
	}

	r := newTestReconciler(srcs, Options{})

	first, err := r.Run(context.Background(), nil)
	require.NoError(t, err)
	second, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.True(t, first.ChosenValue.Equal(second.ChosenValue))
	assert.Equal(t, first.ChosenSource, second.ChosenSource)
	assert.True(t, first.SpreadPct.Equal(second.SpreadPct))
	assert.Equal(t, first.Mismatch, second.Mismatch)
	require.Equal(t, len(first.Candidates), len(second.Candidates))
	for i := range first.Candidates {
		assert.Equal(t, first.Candidates[i].SourceID, second.Candidates[i].SourceID)
		assert.True(t, first.Candidates[i].Value.Equal(second.Candidates[i].Value))
	}
}

func TestReconciler_StaleQuoteRejected(t *testing.T) {
	stale := &stubSource{name: "cached", value: decimal.NewFromFloat(2600.00), age: time.Hour}
	r := newTestReconciler([]Source{
		quoteSource("fresh", 2400.00),
		stale,
	}, Options{MaxQuoteAge: 10 * time.Minute})

	result, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "fresh", result.ChosenSource)
	assert.Len(t, result.Candidates, 1)
}

func TestReconciler_ImplausibleQuoteRejected(t *testing.T) {
	r := newTestReconciler([]Source{
		quoteSource("sane", 2400.00),
		quoteSource("broken", 65000.00), // more than 10x the previous value
	}, Options{})

	previous := decimal.NewFromFloat(2395.00)
	result, err := r.Run(context.Background(), &previous)
	require.NoError(t, err)

	assert.Equal(t, "sane", result.ChosenSource)
	assert.Len(t, result.Candidates, 1)
}

func TestReconciler_CandidatesSortedBySourceID(t *testing.T) {
	r := newTestReconciler([]Source{
		quoteSource("zeta", 2403.00),
		quoteSource("alpha", 2401.00),
		quoteSource("mid", 2402.00),
	}, Options{})

	result, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, result.Candidates, 3)
	assert.Equal(t, "alpha", result.Candidates[0].SourceID)
	assert.Equal(t, "mid", result.Candidates[1].SourceID)
	assert.Equal(t, "zeta", result.Candidates[2].SourceID)
}

func TestLowerMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"single", []float64{2400}, 2400},
		{"odd", []float64{2403.50, 2401.10, 2402.00}, 2402.00},
		{"even", []float64{2450.00, 2400.00}, 2400.00},
		{"four", []float64{4, 1, 3, 2}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quotes := make([]Quote, len(tt.values))
			for i, v := range tt.values {
				quotes[i] = Quote{Value: decimal.NewFromFloat(v)}
			}
			got := lowerMedian(quotes)
			assert.True(t, got.Equal(decimal.NewFromFloat(tt.want)),
				"expected %v, got %s", tt.want, got.String())
		})
	}
}

func TestSpreadPct(t *testing.T) {
	quotes := []Quote{
		{Value: decimal.NewFromFloat(2400.00)},
		{Value: decimal.NewFromFloat(2450.00)},
	}
	spread := spreadPct(quotes)
	// (2450-2400)/2400*100 ≈ 2.0833
	assert.Equal(t, "2.08", spread.StringFixed(2))

	assert.True(t, spreadPct(quotes[:1]).IsZero())
	assert.True(t, spreadPct(nil).IsZero())
}
