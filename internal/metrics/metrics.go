// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

// Package metrics defines the Prometheus collectors exported on /metrics.
//
// Collectors are registered with the default registry through promauto.
// Callers use the Record* helpers rather than touching collectors directly.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Dataset metrics
	DatasetLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dataset_load_duration_seconds",
			Help:    "Duration of dataset loads (fetch, parse and normalize)",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	DatasetLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_loads_total",
			Help: "Total dataset load attempts by result",
		},
		[]string{"result"},
	)

	DatasetRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataset_records",
			Help: "Number of normalized listings in the active snapshot",
		},
	)

	DatasetMalformedRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataset_malformed_rows",
			Help: "Rows dropped from the active snapshot because they could not be normalized",
		},
	)

	DatasetLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataset_last_success_timestamp",
			Help: "Unix timestamp of the last successful dataset load",
		},
	)

	// Render metrics
	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_render_duration_seconds",
			Help:    "Time spent filtering and aggregating a dashboard view",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
		[]string{"channel"},
	)

	RenderEmptyResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_empty_results_total",
			Help: "Total renders where no listing matched the criteria",
		},
	)

	// View cache metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "view_cache_hits_total",
			Help: "Total number of rendered view cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "view_cache_misses_total",
			Help: "Total number of rendered view cache misses",
		},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "view_cache_entries",
			Help: "Current number of cached views",
		},
	)

	// Circuit breaker metrics for the remote dataset source
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total requests through the circuit breaker by result",
		},
		[]string{"name", "result"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// WebSocket metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of connected dashboard WebSocket clients",
		},
	)

	WSMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_total",
			Help: "Total WebSocket messages by direction and type",
		},
		[]string{"direction", "type"},
	)

	// Session store metrics
	SessionOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_operations_total",
			Help: "Total session store operations by operation and result",
		},
		[]string{"store", "operation", "result"},
	)

	// DuckDB mirror metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)

	// Export metrics
	ExportRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "export_rows_total",
			Help: "Total listings written by export sinks",
		},
		[]string{"sink"},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordDatasetLoad records one dataset load attempt.
func RecordDatasetLoad(duration time.Duration, records, malformed int, err error) {
	DatasetLoadDuration.Observe(duration.Seconds())
	if err != nil {
		DatasetLoadsTotal.WithLabelValues("error").Inc()
		return
	}
	DatasetLoadsTotal.WithLabelValues("success").Inc()
	DatasetRecords.Set(float64(records))
	DatasetMalformedRows.Set(float64(malformed))
	DatasetLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordRender records a dashboard render on a channel ("http" or "websocket").
func RecordRender(channel string, duration time.Duration, empty bool) {
	RenderDuration.WithLabelValues(channel).Observe(duration.Seconds())
	if empty {
		RenderEmptyResults.Inc()
	}
}

// RecordCacheLookup records a view cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheHits.Inc()
	} else {
		CacheMisses.Inc()
	}
}

// RecordDBQuery records a DuckDB query metric.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordSessionOp records a session store operation.
func RecordSessionOp(store, operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	SessionOperations.WithLabelValues(store, operation, result).Inc()
}

// RecordWSMessage counts a WebSocket message ("in" or "out").
func RecordWSMessage(direction, msgType string) {
	WSMessagesTotal.WithLabelValues(direction, msgType).Inc()
}
