// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/waypoint/internal/models"
)

// limitParams bounds the k query parameter. Zero means the engine default.
type limitParams struct {
	K int `json:"k" validate:"gte=0,lte=100"`
}

// Learn runs a learning pass over the current catalog and returns the
// resulting insights.
//
// @Summary Run the learning pass
// @Tags Recommendations
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.Insights}
// @Failure 500 {object} models.APIResponse
// @Router /learn [post]
func (h *Handler) Learn(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	insights, err := h.svc.RunLearningAndRecommendationPass(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodePassFailed, "Learning pass failed", err)
		return
	}
	respondData(w, http.StatusOK, insights, start)
}

// Insights returns the current preference summary without learning.
func (h *Handler) Insights(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, h.svc.Insights(), time.Now())
}

// Recommendations returns the top k places by learned preference.
//
// @Summary Get personalized recommendations
// @Tags Recommendations
// @Produce json
// @Param k query int false "Result count (1-100)"
// @Success 200 {object} models.APIResponse{data=[]models.ScoredCandidate}
// @Failure 400 {object} models.APIResponse
// @Router /recommendations [get]
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	params := limitParams{K: getIntParam(r, "k", 0)}
	if apiErr := validateRequest(&params); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	out, err := h.svc.Recommendations(r.Context(), params.K)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeStorage, "Failed to compute recommendations", err)
		return
	}
	if out == nil {
		out = []models.ScoredCandidate{}
	}
	respondData(w, http.StatusOK, out, start)
}
