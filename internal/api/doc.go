// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package api provides the HTTP API for Waypoint using the Chi router.

Every response uses the models.APIResponse envelope:

	{"status": "success", "data": {...}, "metadata": {"timestamp": "...", "count": 3}}
	{"status": "error", "error": {"code": "VALIDATION_ERROR", "message": "..."}}

# Endpoints

Health (1000 req/min):
  - GET /api/v1/health, /api/v1/health/live, /api/v1/health/ready

Reads (600 req/min):
  - GET /api/v1/places, /favorites, /insights, /policy
  - GET /api/v1/recommendations?k=
  - GET /api/v1/search?q=&k=, /search/suggestions?q=, /search/autocomplete?q=
  - GET /api/v1/nearby?lat=&lon=
  - GET /api/v1/notifications, /notifications/next-optimal,
    /notifications/stats, /notifications/last-pass

Writes (configured limit, default 60 req/min):
  - POST /api/v1/places, /favorites, /searches, /location
  - PUT /api/v1/policy
  - DELETE /api/v1/notifications, /notifications/{id}
  - POST /api/v1/notifications/{id}/engagement

Pass triggers (10 req/min):
  - POST /api/v1/learn
  - POST /api/v1/notifications/run

Metrics:
  - GET /metrics (Prometheus exposition format)

# Middleware

Global: request ID, real IP, panic recovery, CORS (go-chi/cors) and a
debug-level access log. API routes add security headers and Prometheus
instrumentation. Rate limits are per client IP (go-chi/httprate).

# Validation

Request bodies and query parameters are validated with
internal/validation. Failures return 400 with code VALIDATION_ERROR and the
failing field in details.
*/
package api
