// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/waypoint/internal/models"
)

type searchParams struct {
	Query string `json:"q" validate:"max=256"`
	K     int    `json:"k" validate:"gte=0,lte=100"`
}

type partialParams struct {
	Query string `json:"q" validate:"max=256"`
}

type coordinateParams struct {
	Latitude  float64 `json:"lat" validate:"latitude"`
	Longitude float64 `json:"lon" validate:"longitude"`
}

// Search ranks the catalog against q. A blank q returns recommendations.
//
// @Summary Search places
// @Tags Search
// @Produce json
// @Param q query string false "Free-text query"
// @Param k query int false "Result count (1-100)"
// @Success 200 {object} models.APIResponse{data=[]models.ScoredCandidate}
// @Router /search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	params := searchParams{
		Query: strings.TrimSpace(r.URL.Query().Get("q")),
		K:     getIntParam(r, "k", 0),
	}
	if apiErr := validateRequest(&params); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	out, err := h.svc.RankForQuery(r.Context(), params.Query, params.K)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeStorage, "Search failed", err)
		return
	}
	if out == nil {
		out = []models.ScoredCandidate{}
	}
	respondData(w, http.StatusOK, out, start)
}

// SearchSuggestions returns suggestions for a partial query.
func (h *Handler) SearchSuggestions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	params := partialParams{Query: r.URL.Query().Get("q")}
	if apiErr := validateRequest(&params); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	out, err := h.svc.Suggestions(r.Context(), params.Query)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeStorage, "Failed to build suggestions", err)
		return
	}
	if out == nil {
		out = []string{}
	}
	respondData(w, http.StatusOK, out, start)
}

// SearchAutocomplete completes a partial query from place names and
// categories.
func (h *Handler) SearchAutocomplete(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	params := partialParams{Query: r.URL.Query().Get("q")}
	if apiErr := validateRequest(&params); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	out := h.svc.Autocomplete(params.Query)
	if out == nil {
		out = []string{}
	}
	respondData(w, http.StatusOK, out, start)
}

// parseCoordinates reads lat and lon query parameters. It writes the error
// response and returns false when they are missing or out of range.
func parseCoordinates(w http.ResponseWriter, r *http.Request) (coordinateParams, bool) {
	lat, okLat := getFloatParam(r, "lat")
	lon, okLon := getFloatParam(r, "lon")
	if !okLat || !okLon {
		respondErrorWithDetails(w, http.StatusBadRequest, ErrCodeValidation,
			"lat and lon are required numeric parameters",
			map[string]interface{}{"field": "lat,lon"}, nil)
		return coordinateParams{}, false
	}

	params := coordinateParams{Latitude: lat, Longitude: lon}
	if apiErr := validateRequest(&params); apiErr != nil {
		respondValidation(w, apiErr)
		return coordinateParams{}, false
	}
	return params, true
}

// Nearby returns catalog places around lat/lon, closest first.
//
// @Summary Nearby places
// @Tags Location
// @Produce json
// @Param lat query number true "Latitude"
// @Param lon query number true "Longitude"
// @Success 200 {object} models.APIResponse{data=[]models.NearbyPlace}
// @Failure 400 {object} models.APIResponse
// @Router /nearby [get]
func (h *Handler) Nearby(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	params, ok := parseCoordinates(w, r)
	if !ok {
		return
	}

	out, err := h.svc.NearbyPlaces(r.Context(), params.Latitude, params.Longitude)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeStorage, "Nearby lookup failed", err)
		return
	}
	if out == nil {
		out = []models.NearbyPlace{}
	}
	respondData(w, http.StatusOK, out, start)
}

// UpdateLocation records the device position used by the next
// notification pass.
func (h *Handler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var loc models.Location
	if err := decodeJSON(w, r, &loc); err != nil {
		respondBodyError(w, err)
		return
	}
	if apiErr := validateRequest(&loc); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	respondData(w, http.StatusOK, h.svc.UpdateLocation(loc.Latitude, loc.Longitude), start)
}
