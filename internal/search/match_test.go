// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package search

import (
	"math"
	"testing"
)

func TestNameMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		place string
		want  float64
	}{
		{"exact", "brew lab", "Brew Lab", 1.0},
		{"exact ignores case and space", "  BREW LAB ", "brew lab", 1.0},
		{"substring", "brew", "Brew Lab", 0.8},
		{"half the tokens overlap", "lab coffee", "Brew Lab", 0.3},
		{"all tokens overlap out of order", "lab brew", "Brew Lab", 0.6},
		{"typo falls back to similarity", "starbuks", "Starbucks", (1 - 1.0/9) * 0.4},
		{"unrelated", "xyz", "Brew Lab", 0},
		{"empty query", "", "Brew Lab", 0},
		{"empty name", "brew", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NameMatch(tt.query, tt.place); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("NameMatch(%q, %q) = %v, want %v", tt.query, tt.place, got, tt.want)
			}
		})
	}
}

func TestCategoryMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		cat   string
		want  float64
	}{
		{"canonical", "cafes", "cafes", 1.0},
		{"spaced spelling", "gas stations", "gas_stations", 1.0},
		{"singular category normalized", "hotels", "Hotel", 1.0},
		{"prefix", "caf", "cafes", 0.8},
		{"substring of spaced spelling", "gas", "gas_stations", 0.8},
		{"synonym", "coffee", "cafes", 0.6},
		{"query contains synonym", "cheap stay downtown", "hostels", 0.6},
		{"no match", "zoo", "cafes", 0},
		{"empty", "", "cafes", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CategoryMatch(tt.query, tt.cat); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CategoryMatch(%q, %q) = %v, want %v", tt.query, tt.cat, got, tt.want)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"abc", "abc", 1},
		{"abc", "", 0},
		{"kitten", "sitting", 1 - 3.0/7},
		{"café", "cafe", 0.75},
	}

	for _, tt := range tests {
		if got := Similarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got := Similarity(tt.b, tt.a); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Similarity(%q, %q) = %v, want %v (symmetric)", tt.b, tt.a, got, tt.want)
		}
	}
}
