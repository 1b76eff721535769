// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/waypoint/internal/models"
)

type notificationIDParams struct {
	ID string `json:"id" validate:"required,max=128"`
}

// engagementRequest is the body of POST /notifications/{id}/engagement.
type engagementRequest struct {
	Engaged *bool `json:"engaged" validate:"required"`
}

// nextOptimalResponse is the body of GET /notifications/next-optimal.
type nextOptimalResponse struct {
	Next       time.Time `json:"next"`
	OptimalNow bool      `json:"optimal_now"`
}

// RunNotificationPass generates and schedules notifications now and returns
// the pass summary.
//
// @Summary Run a notification pass
// @Tags Notifications
// @Produce json
// @Success 200 {object} models.APIResponse{data=personalize.PassSummary}
// @Failure 500 {object} models.APIResponse
// @Router /notifications/run [post]
func (h *Handler) RunNotificationPass(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := h.svc.GenerateAndScheduleNotifications(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodePassFailed, "Notification pass failed", err)
		return
	}
	summary, _ := h.svc.LastPass()
	respondData(w, http.StatusOK, summary, start)
}

// LastPass returns the summary of the most recent notification pass.
func (h *Handler) LastPass(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.svc.LastPass()
	if !ok {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "No notification pass has run yet", nil)
		return
	}
	respondData(w, http.StatusOK, summary, time.Now())
}

// PendingNotifications lists scheduled notifications by delivery time.
func (h *Handler) PendingNotifications(w http.ResponseWriter, r *http.Request) {
	pending := h.svc.PendingNotifications()
	if pending == nil {
		pending = []models.Notification{}
	}
	respondData(w, http.StatusOK, pending, time.Now())
}

// NextOptimalTime reports the next good delivery time under the stored
// policy and whether now already is one.
func (h *Handler) NextOptimalTime(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	next, optimalNow, err := h.svc.NextOptimalTime(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeStorage, "Failed to read policy", err)
		return
	}
	respondData(w, http.StatusOK, nextOptimalResponse{Next: next, OptimalNow: optimalNow}, start)
}

// EngagementStats returns engaged and dismissed counts by hour and weekday.
func (h *Handler) EngagementStats(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, h.svc.EngagementStats(), time.Now())
}

// CancelNotification cancels one pending notification.
//
// @Summary Cancel a pending notification
// @Tags Notifications
// @Param id path string true "Notification ID"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse "Not pending"
// @Router /notifications/{id} [delete]
func (h *Handler) CancelNotification(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	params := notificationIDParams{ID: chi.URLParam(r, "id")}
	if apiErr := validateRequest(&params); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	ok, err := h.svc.CancelNotification(r.Context(), params.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to cancel notification", err)
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Notification is not pending", nil)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{"id": params.ID, "cancelled": true}, start)
}

// CancelAllNotifications cancels every pending notification.
func (h *Handler) CancelAllNotifications(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	n, err := h.svc.CancelAllNotifications(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to cancel notifications", err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{"cancelled": n}, start)
}

// RecordEngagement records that the user engaged with or dismissed a
// notification.
//
// @Summary Record notification engagement
// @Tags Notifications
// @Accept json
// @Param id path string true "Notification ID"
// @Param body body engagementRequest true "Engagement"
// @Success 200 {object} models.APIResponse{data=models.Engagement}
// @Router /notifications/{id}/engagement [post]
func (h *Handler) RecordEngagement(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	params := notificationIDParams{ID: chi.URLParam(r, "id")}
	if apiErr := validateRequest(&params); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	var req engagementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondBodyError(w, err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	e, err := h.svc.RecordEngagement(r.Context(), params.ID, *req.Engaged)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeStorage, "Failed to record engagement", err)
		return
	}
	respondData(w, http.StatusOK, e, start)
}
