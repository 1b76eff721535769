// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/waypoint/internal/models"
)

// respondBodyError maps a decodeJSON failure to a 400 or 413.
func respondBodyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBodyTooLarge):
		respondError(w, http.StatusRequestEntityTooLarge, ErrCodeInvalidBody, err.Error(), nil)
	case errors.Is(err, ErrEmptyBody):
		respondError(w, http.StatusBadRequest, ErrCodeInvalidBody, err.Error(), nil)
	default:
		respondError(w, http.StatusBadRequest, ErrCodeInvalidBody, "Invalid JSON body: "+err.Error(), nil)
	}
}

// CreatePlace adds a place to the catalog. A missing id is generated.
//
// @Summary Add a catalog place
// @Tags Catalog
// @Accept json
// @Produce json
// @Param place body models.Place true "Place"
// @Success 201 {object} models.APIResponse{data=models.Place}
// @Failure 400 {object} models.APIResponse
// @Router /places [post]
func (h *Handler) CreatePlace(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var p models.Place
	if err := decodeJSON(w, r, &p); err != nil {
		respondBodyError(w, err)
		return
	}
	if strings.TrimSpace(p.ID) == "" {
		p.ID = uuid.NewString()
	}
	if apiErr := validateRequest(&p); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	saved, err := h.svc.AddPlace(r.Context(), p)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeStorage, "Failed to save place", err)
		return
	}
	respondData(w, http.StatusCreated, saved, start)
}

// ListPlaces returns the catalog.
func (h *Handler) ListPlaces(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	places, err := h.svc.Places(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeStorage, "Failed to list places", err)
		return
	}
	if places == nil {
		places = []models.Place{}
	}
	respondData(w, http.StatusOK, places, start)
}

// CreateFavorite saves a favorite. A missing id is generated and AddedAt
// defaults to now.
func (h *Handler) CreateFavorite(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var f models.Favorite
	if err := decodeJSON(w, r, &f); err != nil {
		respondBodyError(w, err)
		return
	}
	if strings.TrimSpace(f.ID) == "" {
		f.ID = uuid.NewString()
	}
	if apiErr := validateRequest(&f); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	saved, err := h.svc.AddFavorite(r.Context(), f)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeStorage, "Failed to save favorite", err)
		return
	}
	respondData(w, http.StatusCreated, saved, start)
}

// ListFavorites returns the saved favorites.
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	favs, err := h.svc.Favorites(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeStorage, "Failed to list favorites", err)
		return
	}
	if favs == nil {
		favs = []models.Favorite{}
	}
	respondData(w, http.StatusOK, favs, start)
}

// CreateSearch appends a query to the search history.
func (h *Handler) CreateSearch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var rec models.SearchRecord
	if err := decodeJSON(w, r, &rec); err != nil {
		respondBodyError(w, err)
		return
	}
	rec.Query = strings.TrimSpace(rec.Query)
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if apiErr := validateRequest(&rec); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	saved, err := h.svc.RecordSearch(r.Context(), rec)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeStorage, "Failed to record search", err)
		return
	}
	respondData(w, http.StatusCreated, saved, start)
}
