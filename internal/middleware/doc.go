// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package middleware provides HTTP middleware shared by the API router.

Key Components:

  - RequestID: UUID-based request tracking, propagated into the logging
    context so every log line of a request carries request_id and
    correlation_id
  - PrometheusMetrics: request count, latency and in-flight gauges,
    labelled by chi route pattern

Both use the http.HandlerFunc signature; the api package adapts them to
chi's func(http.Handler) http.Handler:

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chiMiddleware(middleware.PrometheusMetrics))

Accessing the request ID in a handler:

	func handler(w http.ResponseWriter, r *http.Request) {
	    logging.Ctx(r.Context()).Info().Msg("processing")  // includes request_id
	    id := middleware.GetRequestID(r.Context())
	}

Route patterns keep label cardinality bounded: /api/v1/notifications/abc
and /api/v1/notifications/def both record as /api/v1/notifications/{id}.
Requests that match no route record as "unmatched".

See Also:

  - internal/api: router and handlers wrapped by this middleware
  - internal/metrics: Prometheus collector definitions
*/
package middleware
