// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package recommend

import (
	"math"
	"sort"
)

// normalizeTolerance is how close to 1.0 a weight sum must be for
// Normalize to leave the weights untouched.
const normalizeTolerance = 1e-12

// PreferenceModel accumulates category weights and visit counts.
//
// Weights are unnormalized until Normalize is called; afterwards they are
// non-negative and sum to 1.0 (or the model is empty). Visit frequencies
// only grow and are never normalized.
//
// PreferenceModel is not safe for concurrent use. Engine owns one and
// guards it with a lock.
type PreferenceModel struct {
	weights   map[string]float64
	frequency map[string]int
}

// NewPreferenceModel returns an empty model.
func NewPreferenceModel() *PreferenceModel {
	return &PreferenceModel{
		weights:   make(map[string]float64),
		frequency: make(map[string]int),
	}
}

// UpdateCategoryPreference adds weight to the category's accumulated weight.
// Empty categories and non-positive or non-finite weights are ignored.
func (m *PreferenceModel) UpdateCategoryPreference(category string, weight float64) {
	if category == "" || weight <= 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return
	}
	m.weights[category] += weight
}

// IncrementVisitFrequency records one more visit to category.
func (m *PreferenceModel) IncrementVisitFrequency(category string) {
	if category == "" {
		return
	}
	m.frequency[category]++
}

// Normalize rescales the weights so they sum to 1.0. It is a no-op when the
// sum is zero or already 1.0, so calling it twice in a row changes nothing.
func (m *PreferenceModel) Normalize() {
	sum := m.sum()
	if sum == 0 || math.Abs(sum-1.0) < normalizeTolerance {
		return
	}
	for c, w := range m.weights {
		m.weights[c] = w / sum
	}
}

func (m *PreferenceModel) sum() float64 {
	var sum float64
	for _, w := range m.weights {
		sum += w
	}
	return sum
}

// CategoryPreference returns the weight of category, or 0 if it is unknown.
func (m *PreferenceModel) CategoryPreference(category string) float64 {
	return m.weights[category]
}

// VisitFrequency returns how many visits were recorded for category.
func (m *PreferenceModel) VisitFrequency(category string) int {
	return m.frequency[category]
}

// TotalVisits sums visit frequency across all categories.
func (m *PreferenceModel) TotalVisits() int {
	total := 0
	for _, n := range m.frequency {
		total += n
	}
	return total
}

// Len returns the number of categories with a weight.
func (m *PreferenceModel) Len() int {
	return len(m.weights)
}

// Weights returns a copy of the category weights.
func (m *PreferenceModel) Weights() map[string]float64 {
	out := make(map[string]float64, len(m.weights))
	for c, w := range m.weights {
		out[c] = w
	}
	return out
}

// Frequencies returns a copy of the visit counters.
func (m *PreferenceModel) Frequencies() map[string]int {
	out := make(map[string]int, len(m.frequency))
	for c, n := range m.frequency {
		out[c] = n
	}
	return out
}

// Clone returns an independent copy of the model.
func (m *PreferenceModel) Clone() *PreferenceModel {
	return &PreferenceModel{
		weights:   m.Weights(),
		frequency: m.Frequencies(),
	}
}

// TopCategory returns the category with the highest weight.
// Ties resolve to the alphabetically first category so results are stable.
func (m *PreferenceModel) TopCategory() (string, float64, bool) {
	best, bestW := "", 0.0
	for c, w := range m.weights {
		if best == "" || w > bestW || (w == bestW && c < best) {
			best, bestW = c, w
		}
	}
	return best, bestW, best != ""
}

// MostVisited returns the category with the highest visit count.
func (m *PreferenceModel) MostVisited() (string, int, bool) {
	best, bestN := "", 0
	for c, n := range m.frequency {
		if best == "" || n > bestN || (n == bestN && c < best) {
			best, bestN = c, n
		}
	}
	return best, bestN, best != ""
}

// RankedCategories returns categories ordered by weight, highest first.
func (m *PreferenceModel) RankedCategories() []string {
	out := make([]string, 0, len(m.weights))
	for c := range m.weights {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		wi, wj := m.weights[out[i]], m.weights[out[j]]
		if wi != wj {
			return wi > wj
		}
		return out[i] < out[j]
	})
	return out
}

// Diversity is the Shannon entropy of the weight distribution divided by
// log2 of the number of categories with nonzero weight, giving 0..1.
// An empty or single-category model has diversity 0.
func (m *PreferenceModel) Diversity() float64 {
	sum := m.sum()
	if sum <= 0 {
		return 0
	}

	nonzero := 0
	entropy := 0.0
	for _, w := range m.weights {
		if w <= 0 {
			continue
		}
		nonzero++
		p := w / sum
		entropy -= p * math.Log2(p)
	}
	if nonzero < 2 {
		return 0
	}

	d := entropy / math.Log2(float64(nonzero))
	// Guard against rounding pushing a uniform distribution past 1.
	return math.Max(0, math.Min(1, d))
}
