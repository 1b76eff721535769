// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/personalize"
)

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status               string                   `json:"status"`
	Version              string                   `json:"version"`
	Uptime               float64                  `json:"uptime"`
	StoreReachable       bool                     `json:"store_reachable"`
	PendingCount         int                      `json:"pending_notifications"`
	LastNotificationPass *personalize.PassSummary `json:"last_notification_pass,omitempty"`
}

// Health handles health check requests
//
// @Summary Get system health status
// @Description Returns store reachability, pending notification count, the last notification pass and uptime
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=HealthStatus}
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	// The policy read touches the store; a failure marks the service degraded.
	_, err := h.svc.Policy(r.Context())
	storeOK := err == nil

	uptime := time.Since(h.startTime).Seconds()
	metrics.AppUptime.Set(uptime)

	health := HealthStatus{
		Status:         "healthy",
		Version:        h.version,
		Uptime:         uptime,
		StoreReachable: storeOK,
		PendingCount:   len(h.svc.PendingNotifications()),
	}
	if !storeOK {
		health.Status = "degraded"
	}
	if pass, ok := h.svc.LastPass(); ok {
		health.LastNotificationPass = &pass
	}

	respondData(w, http.StatusOK, health, start)
}

// HealthLive handles liveness probe requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Now())
}

// HealthReady handles readiness probe requests (Kubernetes-style)
// Returns 503 until the store answers.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.Policy(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeStorage, "Store is not reachable", err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{"ready": true}, time.Now())
}
