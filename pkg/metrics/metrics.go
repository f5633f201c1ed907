// Package metrics provides Prometheus metrics for the gold price bot.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// QuoteFetchesTotal is a counter of quote fetch attempts per source.
	QuoteFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_fetches_total",
			Help: "Total number of quote fetch attempts per source",
		},
		[]string{"source", "status"},
	)

	// QuoteRejectionsTotal is a counter of quotes rejected during validation.
	QuoteRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_rejections_total",
			Help: "Total number of quotes rejected before selection",
		},
		[]string{"source", "reason"},
	)

	// ReconcilePassesTotal is a counter of reconciliation passes by outcome.
	ReconcilePassesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_passes_total",
			Help: "Total number of reconciliation passes",
		},
		[]string{"status"},
	)

	// ReconcilePassDuration is a histogram of reconciliation pass duration.
	ReconcilePassDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reconcile_pass_duration_seconds",
			Help:    "Duration of reconciliation passes",
			Buckets: prometheus.DefBuckets,
		},
	)

	// SpreadPct is a gauge of the relative spread across valid quotes.
	SpreadPct = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reconcile_spread_pct",
			Help: "Relative spread between max and min valid quote in the last pass",
		},
	)

	// MismatchesTotal is a counter of passes whose spread exceeded the threshold.
	MismatchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reconcile_mismatches_total",
			Help: "Total number of passes flagged with a source mismatch",
		},
	)

	// ChosenPrice is a gauge of the last reconciled gold price.
	ChosenPrice = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gold_price_usd",
			Help: "Last reconciled spot gold price in USD per troy ounce",
		},
	)

	// NotificationsTotal is a counter of webhook notifications.
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total number of webhook notifications sent",
		},
		[]string{"kind", "status"},
	)

	// HTTPRequestsTotal is a counter of total HTTP requests.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"endpoint", "status"},
	)

	// HTTPRequestDuration is a histogram of HTTP request latencies.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"endpoint"},
	)
)

// Init initializes Prometheus metrics registry.
func Init() {
	prometheus.MustRegister(
		QuoteFetchesTotal,
		QuoteRejectionsTotal,
		ReconcilePassesTotal,
		ReconcilePassDuration,
		SpreadPct,
		MismatchesTotal,
		ChosenPrice,
		NotificationsTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

// ServeHTTP serves Prometheus metrics on the specified address.
func ServeHTTP(addr string) error {
	http.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:         addr,
		Handler:      http.DefaultServeMux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

// RecordQuoteFetch records a quote fetch attempt.
func RecordQuoteFetch(source, status string) {
	QuoteFetchesTotal.WithLabelValues(source, status).Inc()
}

// RecordQuoteRejection records a quote rejected during validation.
func RecordQuoteRejection(source, reason string) {
	QuoteRejectionsTotal.WithLabelValues(source, reason).Inc()
}

// RecordPass records the outcome and duration of a reconciliation pass.
func RecordPass(status string, duration time.Duration) {
	ReconcilePassesTotal.WithLabelValues(status).Inc()
	ReconcilePassDuration.Observe(duration.Seconds())
}

// RecordSpread records the spread of the last pass.
func RecordSpread(spreadPct float64, mismatch bool) {
	SpreadPct.Set(spreadPct)
	if mismatch {
		MismatchesTotal.Inc()
	}
}

// RecordChosenPrice records the last reconciled price.
func RecordChosenPrice(price float64) {
	ChosenPrice.Set(price)
}

// RecordNotification records a webhook notification attempt.
func RecordNotification(kind, status string) {
	NotificationsTotal.WithLabelValues(kind, status).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}
