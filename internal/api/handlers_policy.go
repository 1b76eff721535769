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

// GetPolicy returns the notification policy.
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	p, err := h.svc.Policy(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeStorage, "Failed to read policy", err)
		return
	}
	respondData(w, http.StatusOK, p, start)
}

// UpdatePolicy replaces the notification policy. Kinds missing from
// "enabled" are disabled. Changes apply from the next pass.
//
// @Summary Replace the notification policy
// @Tags Policy
// @Accept json
// @Produce json
// @Param policy body models.Policy true "Policy"
// @Success 200 {object} models.APIResponse{data=models.Policy}
// @Failure 400 {object} models.APIResponse
// @Router /policy [put]
func (h *Handler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var p models.Policy
	if err := decodeJSON(w, r, &p); err != nil {
		respondBodyError(w, err)
		return
	}
	if apiErr := validateRequest(&p); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}
	for kind := range p.Enabled {
		if !kind.Valid() {
			respondErrorWithDetails(w, http.StatusBadRequest, ErrCodeValidation,
				"enabled contains an unknown notification kind",
				map[string]interface{}{"field": "enabled", "value": string(kind)}, nil)
			return
		}
	}

	saved, err := h.svc.UpdatePolicy(r.Context(), p)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeStorage, "Failed to save policy", err)
		return
	}
	respondData(w, http.StatusOK, saved, start)
}
