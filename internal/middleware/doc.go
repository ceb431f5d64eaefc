// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

/*
Package middleware provides HTTP middleware shared by the API router.

Key Components:

  - RequestID: request and correlation IDs for log tracing
  - PrometheusMetrics: request count, latency, and in-flight gauge

Both use the chi signature func(http.Handler) http.Handler:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

RequestID honors an incoming X-Request-ID and X-Correlation-ID so that a
caller's trace continues through the matching engine, the notification
dispatcher, and the event bus. PrometheusMetrics labels requests with the
chi route pattern (for example /api/v1/items/{id}/matches) rather than the
raw path, which keeps label cardinality bounded.
*/
package middleware
