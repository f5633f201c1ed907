package history

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/reconcile"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func testResult(value float64, at time.Time) reconcile.Result {
	return reconcile.Result{
		ChosenValue:  decimal.NewFromFloat(value),
		ChosenSource: "goldapi",
		SpreadPct:    decimal.NewFromFloat(0.12),
		Mismatch:     false,
		PassTime:     at,
	}
}

func TestStore_EmptyStore(t *testing.T) {
	store := openTestStore(t)

	latest, err := store.Latest()
	require.NoError(t, err)
	assert.Nil(t, latest)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Zero(t, count)

	values, err := store.Recent(5)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestStore_AppendAndLatest(t *testing.T) {
	store := openTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, store.Append(testResult(2400.50, now.Add(-time.Minute))))
	require.NoError(t, store.Append(testResult(2401.25, now)))

	latest, err := store.Latest()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "2401.25", latest.ChosenValue)
	assert.Equal(t, "goldapi", latest.ChosenSource)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestStore_RecentOrdersOldestFirst(t *testing.T) {
	store := openTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	for i, v := range []float64{2400, 2401, 2402, 2403} {
		at := now.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Append(testResult(v, at)))
	}

	values, err := store.Recent(3)
	require.NoError(t, err)
	require.Len(t, values, 3)
	assert.True(t, values[0].Equal(decimal.NewFromInt(2401)))
	assert.True(t, values[1].Equal(decimal.NewFromInt(2402)))
	assert.True(t, values[2].Equal(decimal.NewFromInt(2403)))
}

func TestStore_RecentLargerThanStored(t *testing.T) {
	store := openTestStore(t)
	now := time.Now().UTC()

	require.NoError(t, store.Append(testResult(2400, now)))

	values, err := store.Recent(100)
	require.NoError(t, err)
	assert.Len(t, values, 1)
}
