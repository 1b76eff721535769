// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package recommend

import (
	"fmt"
	"math"
	"testing"
)

const floatTolerance = 1e-9

func sumWeights(m *PreferenceModel) float64 {
	var s float64
	for _, w := range m.Weights() {
		s += w
	}
	return s
}

func TestPreferenceModel_Normalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		weights map[string]float64
	}{
		{"single category", map[string]float64{"cafes": 2.7}},
		{"two categories", map[string]float64{"cafes": 2.7, "hotels": 1.5}},
		{"many categories", map[string]float64{"a": 0.1, "b": 7, "c": 3.3, "d": 12, "e": 0.0001}},
		{"already normalized", map[string]float64{"a": 0.25, "b": 0.75}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := NewPreferenceModel()
			for c, w := range tt.weights {
				m.UpdateCategoryPreference(c, w)
			}
			m.Normalize()

			if got := sumWeights(m); math.Abs(got-1.0) > floatTolerance {
				t.Errorf("sum after Normalize = %v, want 1.0", got)
			}
			for c, w := range m.Weights() {
				if w < 0 {
					t.Errorf("weight %s = %v, want >= 0", c, w)
				}
			}

			before := m.Weights()
			m.Normalize()
			for c, w := range m.Weights() {
				if w != before[c] {
					t.Errorf("second Normalize changed %s: %v -> %v", c, before[c], w)
				}
			}
		})
	}
}

func TestPreferenceModel_NormalizeEmpty(t *testing.T) {
	t.Parallel()

	m := NewPreferenceModel()
	m.Normalize()
	if m.Len() != 0 {
		t.Errorf("Len = %d, want 0", m.Len())
	}
}

func TestPreferenceModel_UnknownCategory(t *testing.T) {
	t.Parallel()

	m := NewPreferenceModel()
	m.UpdateCategoryPreference("cafes", 1)
	if got := m.CategoryPreference("museums"); got != 0 {
		t.Errorf("CategoryPreference(unknown) = %v, want 0", got)
	}
	if got := m.VisitFrequency("museums"); got != 0 {
		t.Errorf("VisitFrequency(unknown) = %d, want 0", got)
	}
}

func TestPreferenceModel_IgnoresInvalidWeights(t *testing.T) {
	t.Parallel()

	m := NewPreferenceModel()
	m.UpdateCategoryPreference("", 1)
	m.UpdateCategoryPreference("a", -1)
	m.UpdateCategoryPreference("a", math.NaN())
	m.UpdateCategoryPreference("a", math.Inf(1))
	if m.Len() != 0 {
		t.Errorf("invalid updates should be ignored, got %v", m.Weights())
	}
}

func TestPreferenceModel_Diversity(t *testing.T) {
	t.Parallel()

	empty := NewPreferenceModel()
	if got := empty.Diversity(); got != 0 {
		t.Errorf("empty diversity = %v, want 0", got)
	}

	single := NewPreferenceModel()
	single.UpdateCategoryPreference("cafes", 1)
	single.Normalize()
	if got := single.Diversity(); got != 0 {
		t.Errorf("single-category diversity = %v, want 0", got)
	}

	for _, n := range []int{2, 4, 8} {
		m := NewPreferenceModel()
		for i := 0; i < n; i++ {
			m.UpdateCategoryPreference(fmt.Sprintf("c%d", i), 1)
		}
		m.Normalize()
		if got := m.Diversity(); math.Abs(got-1.0) > floatTolerance {
			t.Errorf("uniform over %d categories: diversity = %v, want 1.0", n, got)
		}
	}

	skewed := NewPreferenceModel()
	skewed.UpdateCategoryPreference("a", 100)
	skewed.UpdateCategoryPreference("b", 1)
	skewed.Normalize()
	if got := skewed.Diversity(); got <= 0 || got >= 0.5 {
		t.Errorf("skewed diversity = %v, want in (0, 0.5)", got)
	}
}

func TestPreferenceModel_TopCategoryTieBreak(t *testing.T) {
	t.Parallel()

	m := NewPreferenceModel()
	m.UpdateCategoryPreference("parks", 1)
	m.UpdateCategoryPreference("cafes", 1)
	m.UpdateCategoryPreference("malls", 0.5)

	c, w, ok := m.TopCategory()
	if !ok || c != "cafes" || w != 1 {
		t.Errorf("TopCategory = (%q, %v, %v), want (cafes, 1, true)", c, w, ok)
	}

	ranked := m.RankedCategories()
	want := []string{"cafes", "parks", "malls"}
	for i := range want {
		if ranked[i] != want[i] {
			t.Fatalf("RankedCategories = %v, want %v", ranked, want)
		}
	}
}

func TestPreferenceModel_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	m := NewPreferenceModel()
	m.UpdateCategoryPreference("cafes", 1)
	m.IncrementVisitFrequency("cafes")

	c := m.Clone()
	c.UpdateCategoryPreference("cafes", 5)
	c.IncrementVisitFrequency("cafes")

	if m.CategoryPreference("cafes") != 1 || m.VisitFrequency("cafes") != 1 {
		t.Error("mutating the clone changed the original")
	}
}
