// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package recommend

import (
	"strings"

	"github.com/tomtom215/waypoint/internal/category"
	"github.com/tomtom215/waypoint/internal/models"
)

// UnknownLabel is shown when the model has nothing to report.
const UnknownLabel = "Unknown"

// contextualSuggestions are phrases offered when the partial query hints
// at an intent. The first rule whose trigger appears in the query applies.
var contextualSuggestions = []struct {
	triggers    []string
	suggestions []string
}{
	{[]string{"food", "eat"}, []string{"Restaurants near me", "Best cafes", "Local cuisine"}},
	{[]string{"stay", "hotel"}, []string{"Hotels nearby", "Budget hostels", "Luxury accommodations"}},
	{[]string{"fun", "activity"}, []string{"Tourist attractions", "Parks and recreation", "Entertainment"}},
}

// AnalyzePatterns summarizes the preference model for display.
func (e *Engine) AnalyzePatterns() models.Insights {
	e.mu.RLock()
	defer e.mu.RUnlock()

	insights := models.Insights{
		TopPreference: UnknownLabel,
		MostVisited:   UnknownLabel,
		PredictedNext: category.Default,
	}

	if top, w, ok := e.model.TopCategory(); ok {
		insights.TopPreference = category.DisplayName(top)
		insights.PreferenceStrength = w
		insights.PredictedNext = top
	}
	if mv, _, ok := e.model.MostVisited(); ok {
		insights.MostVisited = category.DisplayName(mv)
	}
	insights.DiversityScore = e.model.Diversity()
	insights.TotalVisits = e.model.TotalVisits()

	return insights
}

// SmartSuggestions returns search suggestions for a partial query: the
// user's top categories that contain the query (all of them when the query
// is blank), followed by intent phrases. Duplicates are dropped and the
// result is capped at Limits.MaxSuggestions.
func (e *Engine) SmartSuggestions(partial string) []string {
	query := strings.ToLower(strings.TrimSpace(partial))

	e.mu.RLock()
	ranked := e.model.RankedCategories()
	e.mu.RUnlock()

	limit := e.config.Limits.MaxSuggestions
	out := newSuggestionSet(limit)

	for i, c := range ranked {
		if i >= e.config.Limits.SuggestionCategories {
			break
		}
		if query == "" || strings.Contains(c, query) {
			out.add(category.DisplayName(c))
		}
	}

	for _, rule := range contextualSuggestions {
		if containsAny(query, rule.triggers) {
			for _, s := range rule.suggestions {
				out.add(s)
			}
			break
		}
	}

	return out.items
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// suggestionSet keeps insertion order, drops duplicates and stops at a limit.
type suggestionSet struct {
	items []string
	seen  map[string]bool
	limit int
}

func newSuggestionSet(limit int) *suggestionSet {
	return &suggestionSet{items: make([]string, 0, limit), seen: make(map[string]bool), limit: limit}
}

func (s *suggestionSet) add(v string) {
	if len(s.items) >= s.limit || v == "" || s.seen[v] {
		return
	}
	s.seen[v] = true
	s.items = append(s.items, v)
}
