// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package models

import "time"

// Place is a catalog entry the user has visited or could visit.
// Fields are read-only inputs from the place catalog.
//
// Example:
//
//	{
//	  "id": "p-42",
//	  "name": "Blue Tokai Coffee",
//	  "category": "cafes",
//	  "address": "Sector 17, Vashi",
//	  "rating": 4.5,
//	  "latitude": 19.0771,
//	  "longitude": 72.9986
//	}
type Place struct {
	ID        string    `json:"id" validate:"required,max=128"`
	Name      string    `json:"name" validate:"required,max=256"`
	Category  string    `json:"category" validate:"required,max=64"`
	Address   string    `json:"address,omitempty" validate:"max=512"`
	Rating    float64   `json:"rating" validate:"gte=0,lte=5"`
	Latitude  float64   `json:"latitude" validate:"latitude"`
	Longitude float64   `json:"longitude" validate:"longitude"`
	VisitedAt time.Time `json:"visited_at,omitempty"`
}

// Favorite is a place the user explicitly saved.
type Favorite struct {
	ID       string    `json:"id" validate:"required,max=128"`
	PlaceID  string    `json:"place_id,omitempty" validate:"max=128"`
	Name     string    `json:"name" validate:"required,max=256"`
	Category string    `json:"category" validate:"required,max=64"`
	Address  string    `json:"address,omitempty" validate:"max=512"`
	Rating   float64   `json:"rating" validate:"gte=0,lte=5"`
	AddedAt  time.Time `json:"added_at"`
}

// SearchRecord is one free-text query from the user's search history.
type SearchRecord struct {
	ID          string    `json:"id"`
	Query       string    `json:"query" validate:"required,max=256"`
	SearchedAt  time.Time `json:"searched_at"`
	ResultCount int       `json:"result_count,omitempty" validate:"gte=0"`
}

// Location is a point reported by the client device.
type Location struct {
	Latitude   float64   `json:"latitude" validate:"latitude"`
	Longitude  float64   `json:"longitude" validate:"longitude"`
	ReportedAt time.Time `json:"reported_at"`
}

// ScoredCandidate is a place with the score a ranking function assigned to it.
// Scores holds the per-component breakdown for explainability.
type ScoredCandidate struct {
	Place  Place              `json:"place"`
	Score  float64            `json:"score"`
	Scores map[string]float64 `json:"scores,omitempty"`
}

// NearbyPlace is a place paired with its distance from a query point.
type NearbyPlace struct {
	Place      Place   `json:"place"`
	DistanceKm float64 `json:"distance_km"`
}

// Insights summarizes the learned preference model for display.
type Insights struct {
	TopPreference      string  `json:"top_preference"`
	MostVisited        string  `json:"most_visited"`
	DiversityScore     float64 `json:"diversity_score"`
	TotalVisits        int     `json:"total_visits"`
	PreferenceStrength float64 `json:"preference_strength"`
	PredictedNext      string  `json:"predicted_next"`
}
