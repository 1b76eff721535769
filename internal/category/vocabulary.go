// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package category

import (
	"strings"
	"unicode"
)

// Canonical category identifiers. Every preference weight, score and
// notification is keyed by one of these plural forms.
const (
	Restaurants = "restaurants"
	Cafes       = "cafes"
	Hotels      = "hotels"
	Hostels     = "hostels"
	Malls       = "malls"
	Parks       = "parks"
	GasStations = "gas_stations"
	Parking     = "parking"
)

// Default is returned when nothing has been learned yet.
const Default = Restaurants

// All lists the canonical vocabulary in display order.
var All = []string{Restaurants, Cafes, Hotels, Hostels, Malls, Parks, GasStations, Parking}

// aliases maps singular and legacy spellings onto the canonical vocabulary.
var aliases = map[string]string{
	"restaurant":     Restaurants,
	"food":           Restaurants,
	"cafe":           Cafes,
	"café":           Cafes,
	"cafés":          Cafes,
	"coffee_shop":    Cafes,
	"hotel":          Hotels,
	"accommodation":  Hotels,
	"lodging":        Hotels,
	"hostel":         Hostels,
	"mall":           Malls,
	"shopping_mall":  Malls,
	"shopping":       Malls,
	"park":           Parks,
	"garden":         Parks,
	"gas_station":    GasStations,
	"petrol_pump":    GasStations,
	"fuel":           GasStations,
	"parking_lot":    Parking,
	"parking_garage": Parking,
}

var canonical = func() map[string]bool {
	m := make(map[string]bool, len(All))
	for _, c := range All {
		m[c] = true
	}
	return m
}()

// Normalize maps a free-form category string onto the canonical vocabulary.
// Input is lowercased and spaces or dashes become underscores. Strings that
// are neither canonical nor a known alias are returned in that cleaned form,
// so unknown categories still accumulate weight under a stable key.
// Blank input yields "".
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	if canonical[s] {
		return s
	}
	if c, ok := aliases[s]; ok {
		return c
	}
	return s
}

// IsCanonical reports whether c is part of the canonical vocabulary.
func IsCanonical(c string) bool {
	return canonical[c]
}

// DisplayName renders a category for people: "gas_stations" becomes "Gas stations".
func DisplayName(c string) string {
	if c == "" {
		return ""
	}
	r := []rune(strings.ReplaceAll(c, "_", " "))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
