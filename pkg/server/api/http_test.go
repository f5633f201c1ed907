package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/history"
	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/logging"
	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/reconcile"
)

func newTestServer(t *testing.T, store *history.Store) *Server {
	t.Helper()
	return NewServer(":0", store, logging.NewNoopLogger())
}

func publishedResult() reconcile.Result {
	return reconcile.Result{
		ChosenValue:  decimal.NewFromFloat(2402.00),
		ChosenSource: "goldapi",
		Candidates:   []reconcile.Quote{{SourceID: "goldapi"}, {SourceID: "yahoo"}},
		SpreadPct:    decimal.NewFromFloat(0.08),
		PassTime:     time.Now().UTC(),
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestHandlePrice_BeforeFirstPass(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.handlePrice(rec, httptest.NewRequest(http.MethodGet, "/v1/price", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandlePrice_AfterPublish(t *testing.T) {
	s := newTestServer(t, nil)
	s.Publish(publishedResult())

	rec := httptest.NewRecorder()
	s.handlePrice(rec, httptest.NewRequest(http.MethodGet, "/v1/price", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got reconcile.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "goldapi", got.ChosenSource)
	assert.True(t, got.ChosenValue.Equal(decimal.NewFromFloat(2402.00)))
	assert.Len(t, got.Candidates, 2)
}

func TestHandlePrice_PublishOverwrites(t *testing.T) {
	s := newTestServer(t, nil)
	s.Publish(publishedResult())

	next := publishedResult()
	next.ChosenValue = decimal.NewFromFloat(2410.50)
	next.ChosenSource = "goldprice"
	s.Publish(next)

	rec := httptest.NewRecorder()
	s.handlePrice(rec, httptest.NewRequest(http.MethodGet, "/v1/price", nil))

	var got reconcile.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "goldprice", got.ChosenSource)
}

func TestHandleHistory_NotEnabled(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.handleHistory(rec, httptest.NewRequest(http.MethodGet, "/v1/history", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHistory(t *testing.T) {
	store, err := history.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	now := time.Now().UTC()
	for i, v := range []float64{2400, 2401, 2402} {
		require.NoError(t, store.Append(reconcile.Result{
			ChosenValue:  decimal.NewFromFloat(v),
			ChosenSource: "goldapi",
			SpreadPct:    decimal.Zero,
			PassTime:     now.Add(time.Duration(i) * time.Minute),
		}))
	}

	s := newTestServer(t, store)

	rec := httptest.NewRecorder()
	s.handleHistory(rec, httptest.NewRequest(http.MethodGet, "/v1/history?limit=2", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Values []string `json:"values"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []string{"2401", "2402"}, got.Values)
}

func TestHandleHistory_InvalidLimit(t *testing.T) {
	store, err := history.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	s := newTestServer(t, store)

	for _, limit := range []string{"abc", "0", "-5"} {
		rec := httptest.NewRecorder()
		s.handleHistory(rec, httptest.NewRequest(http.MethodGet, "/v1/history?limit="+limit, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", limit)
	}
}
