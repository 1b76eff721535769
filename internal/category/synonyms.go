// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package category

import "strings"

// Synonyms lists words people use when they mean a category.
var Synonyms = map[string][]string{
	Restaurants: {"food", "eat", "dining", "meal", "cuisine"},
	Cafes:       {"coffee", "tea", "drink", "beverage", "cafe"},
	Hotels:      {"stay", "accommodation", "lodge", "inn", "resort"},
	Hostels:     {"budget", "backpacker", "dorm", "cheap stay"},
	Malls:       {"shopping", "store", "retail", "shop", "market"},
	Parks:       {"nature", "garden", "outdoor", "recreation", "green"},
	GasStations: {"fuel", "petrol", "gas", "station"},
	Parking:     {"park", "lot", "garage", "space"},
}

// MatchesSynonym reports whether query and one of category's synonyms
// contain each other. Both sides are compared lowercased.
func MatchesSynonym(category, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	for _, syn := range Synonyms[Normalize(category)] {
		if strings.Contains(q, syn) || strings.Contains(syn, q) {
			return true
		}
	}
	return false
}
