// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package search

import (
	"sort"
	"strings"

	"github.com/tomtom215/waypoint/internal/models"
)

// contextualPhrase maps trigger words in a partial query to canned
// suggestions.
type contextualPhrase struct {
	triggers []string
	phrases  []string
}

var contextualPhrases = []contextualPhrase{
	{
		triggers: []string{"near", "nearby"},
		phrases:  []string{"Restaurants near me", "Hotels near me", "Cafes nearby", "Parks near me"},
	},
	{
		triggers: []string{"best", "top"},
		phrases:  []string{"Best restaurants", "Top hotels", "Best cafes", "Top attractions"},
	},
	{
		triggers: []string{"cheap", "budget"},
		phrases:  []string{"Budget hotels", "Cheap restaurants", "Affordable cafes", "Budget hostels"},
	},
}

// Suggestions completes a partial query. Engine suggestions come first,
// then popular past queries containing partial, then phrases triggered by
// words like "near", "best" or "cheap". Duplicates are removed.
func (r *Ranker) Suggestions(partial string, history []models.SearchRecord) []string {
	p := normalizeText(partial)
	seen := make(map[string]struct{})
	out := make([]string, 0, r.config.MaxSuggestions)

	add := func(s string) {
		if len(out) >= r.config.MaxSuggestions || s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	for _, s := range r.pref.SmartSuggestions(partial) {
		add(s)
	}
	for _, q := range PopularQueries(history, p, r.config.PopularQueries) {
		add(q)
	}
	for _, cp := range contextualPhrases {
		if containsAny(p, cp.triggers) {
			for _, phrase := range cp.phrases {
				add(phrase)
			}
		}
	}
	return out
}

// PopularQueries returns up to limit distinct past queries containing
// partial, most frequent first. Queries are compared case-insensitively
// and returned in the spelling of their first occurrence.
func PopularQueries(history []models.SearchRecord, partial string, limit int) []string {
	if limit <= 0 || len(history) == 0 {
		return nil
	}
	partial = normalizeText(partial)

	type entry struct {
		query string
		count int
	}
	counts := make(map[string]*entry)
	for i := range history {
		q := strings.TrimSpace(history[i].Query)
		key := strings.ToLower(q)
		if key == "" || !strings.Contains(key, partial) {
			continue
		}
		if e, ok := counts[key]; ok {
			e.count++
			continue
		}
		counts[key] = &entry{query: q, count: 1}
	}

	entries := make([]*entry, 0, len(counts))
	for _, e := range counts {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return strings.ToLower(entries[i].query) < strings.ToLower(entries[j].query)
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.query
	}
	return out
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
