// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package search

import (
	"strings"

	"github.com/tomtom215/waypoint/internal/category"
)

// Match scores. Name and category share the exact/substring tiers.
const (
	exactMatchScore     = 1.0
	substringMatchScore = 0.8
	tokenOverlapScale   = 0.6
	synonymMatchScore   = 0.6
	fuzzyMatchScale     = 0.4
	fuzzyMinSimilarity  = 0.7
)

// NameMatch scores how well query matches a place name:
//
//	1.0          exact (case-insensitive)
//	0.8          name contains query
//	ratio * 0.6  share of query tokens overlapping a name token
//	sim * 0.4    edit-distance similarity, when no token overlaps and sim > 0.7
func NameMatch(query, name string) float64 {
	q := normalizeText(query)
	n := normalizeText(name)
	if q == "" || n == "" {
		return 0
	}

	if q == n {
		return exactMatchScore
	}
	if strings.Contains(n, q) {
		return substringMatchScore
	}

	if ratio := tokenOverlap(q, n); ratio > 0 {
		return ratio * tokenOverlapScale
	}

	if sim := Similarity(n, q); sim > fuzzyMinSimilarity {
		return sim * fuzzyMatchScale
	}
	return 0
}

// tokenOverlap returns the fraction of query tokens that contain, or are
// contained in, some name token.
func tokenOverlap(query, name string) float64 {
	qTokens := strings.Fields(query)
	nTokens := strings.Fields(name)
	if len(qTokens) == 0 {
		return 0
	}

	matched := 0
	for _, qt := range qTokens {
		for _, nt := range nTokens {
			if strings.Contains(nt, qt) || strings.Contains(qt, nt) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(qTokens))
}

// CategoryMatch scores how well query matches a category:
//
//	1.0  exact
//	0.8  category contains query
//	0.6  query matches a synonym of the category
//
// The category is compared both in canonical form ("gas_stations") and
// spelled with spaces ("gas stations").
func CategoryMatch(query, cat string) float64 {
	q := normalizeText(query)
	c := category.Normalize(cat)
	if q == "" || c == "" {
		return 0
	}
	spaced := strings.ReplaceAll(c, "_", " ")

	if q == c || q == spaced {
		return exactMatchScore
	}
	if strings.Contains(c, q) || strings.Contains(spaced, q) {
		return substringMatchScore
	}
	if category.MatchesSynonym(c, q) {
		return synonymMatchScore
	}
	return 0
}

// Similarity returns 1 - levenshtein(a, b)/max(len(a), len(b)), measured in runes.
// Two empty strings are identical.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	maxLen := max(len(ra), len(rb))
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(maxLen)
}

// levenshtein computes edit distance with two rolling rows.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
			} else {
				curr[j] = 1 + min(prev[j], curr[j-1], prev[j-1])
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
