// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/waypoint/internal/middleware"
)

// Router wires handlers and middleware into a chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil middleware uses the defaults.
func NewRouter(handler *Handler, chiMw *ChiMiddleware) *Router {
	if chiMw == nil {
		chiMw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: chiMw}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi configures all HTTP routes using Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(chiMiddleware(middleware.RequestID)) // X-Request-ID plus logging context
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(AccessLog())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	// Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		// ========================
		// Read Endpoints
		// ========================
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitRead())

			r.Get("/places", router.handler.ListPlaces)
			r.Get("/favorites", router.handler.ListFavorites)
			r.Get("/insights", router.handler.Insights)
			r.Get("/recommendations", router.handler.Recommendations)
			r.Get("/search", router.handler.Search)
			r.Get("/search/suggestions", router.handler.SearchSuggestions)
			r.Get("/search/autocomplete", router.handler.SearchAutocomplete)
			r.Get("/nearby", router.handler.Nearby)
			r.Get("/notifications", router.handler.PendingNotifications)
			r.Get("/notifications/next-optimal", router.handler.NextOptimalTime)
			r.Get("/notifications/stats", router.handler.EngagementStats)
			r.Get("/notifications/last-pass", router.handler.LastPass)
			r.Get("/policy", router.handler.GetPolicy)
		})

		// ========================
		// Write Endpoints
		// ========================
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())

			r.Post("/places", router.handler.CreatePlace)
			r.Post("/favorites", router.handler.CreateFavorite)
			r.Post("/searches", router.handler.CreateSearch)
			r.Post("/location", router.handler.UpdateLocation)
			r.Put("/policy", router.handler.UpdatePolicy)
			r.Delete("/notifications", router.handler.CancelAllNotifications)
			r.Delete("/notifications/{id}", router.handler.CancelNotification)
			r.Post("/notifications/{id}/engagement", router.handler.RecordEngagement)
		})

		// ========================
		// Pass Triggers
		// ========================
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitPass())

			r.Post("/learn", router.handler.Learn)
			r.Post("/notifications/run", router.handler.RunNotificationPass)
		})
	})

	return r
}
