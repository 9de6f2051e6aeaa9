// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

/*
Package middleware provides HTTP middleware used by the API router.

Key Components:

  - RequestID: X-Request-ID propagation into the logging context
  - AccessLog: one zerolog line per request
  - PrometheusMetrics: request count, latency and in-flight gauge
  - PerformanceMonitor: sliding-window latency percentiles for /health/performance
  - Compression: gzip (klauspost/compress) for clients that accept it

All middleware use the func(http.HandlerFunc) http.HandlerFunc shape; the
router adapts them to chi with a small wrapper. Metrics and logs label
requests by chi route pattern rather than raw path.

Middleware Stack:

	RequestID -> AccessLog -> CORS -> rate limit -> PrometheusMetrics
	    -> PerformanceMonitor -> Compression -> handler
*/
package middleware
