// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package search

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/waypoint/internal/category"
	"github.com/tomtom215/waypoint/internal/models"
)

// Personalizer is the slice of the recommendation engine the ranker needs.
type Personalizer interface {
	CategoryPreference(category string) float64
	Recommend(candidates []models.Place, k int) []models.ScoredCandidate
	SmartSuggestions(partial string) []string
}

// Weights blends the search relevance components.
type Weights struct {
	// Name is the weight of NameMatch. Default: 0.4.
	Name float64 `json:"name" koanf:"name"`
	// Category is the weight of CategoryMatch. Default: 0.3.
	Category float64 `json:"category" koanf:"category"`
	// Rating is the weight of rating/5. Default: 0.2.
	Rating float64 `json:"rating" koanf:"rating"`
	// Preference is the weight of the learned category preference. Default: 0.1.
	Preference float64 `json:"preference" koanf:"preference"`
}

// Config contains search ranking configuration.
type Config struct {
	Weights Weights `json:"weights" koanf:"weights"`

	// MaxSuggestions caps Suggestions output. Default: 8.
	MaxSuggestions int `json:"max_suggestions" koanf:"max_suggestions"`

	// PopularQueries is how many past queries Suggestions may add. Default: 3.
	PopularQueries int `json:"popular_queries" koanf:"popular_queries"`

	// MaxCompletions caps Autocomplete output. Default: 5.
	MaxCompletions int `json:"max_completions" koanf:"max_completions"`
}

// DefaultConfig returns the production search configuration.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Name:       0.4,
			Category:   0.3,
			Rating:     0.2,
			Preference: 0.1,
		},
		MaxSuggestions: 8,
		PopularQueries: 3,
		MaxCompletions: 5,
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	w := c.Weights
	if w.Name < 0 || w.Category < 0 || w.Rating < 0 || w.Preference < 0 {
		return fmt.Errorf("weights must be non-negative, got %+v", w)
	}
	if sum := w.Name + w.Category + w.Rating + w.Preference; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("weights must sum to 1.0, got %f", sum)
	}
	if c.MaxSuggestions < 1 || c.MaxCompletions < 1 || c.PopularQueries < 0 {
		return fmt.Errorf("suggestion limits must be positive, got %d/%d/%d",
			c.MaxSuggestions, c.MaxCompletions, c.PopularQueries)
	}
	return nil
}

// Ranker ranks places against free-text queries. Its weighting favors
// textual match; the recommendation score favors learned preference, so
// the two are kept as separate functions.
type Ranker struct {
	config Config
	pref   Personalizer
	index  *Index
	logger zerolog.Logger
}

// NewRanker creates a ranker backed by pref.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRanker(cfg Config, pref Personalizer, logger zerolog.Logger) (*Ranker, error) {
	if pref == nil {
		return nil, fmt.Errorf("personalizer is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	r := &Ranker{
		config: cfg,
		pref:   pref,
		index:  NewIndex(),
		logger: logger.With().Str("component", "search").Logger(),
	}
	r.IndexPlaces(nil)
	return r, nil
}

// Rank returns up to k candidates relevant to query, best first. A blank
// query falls back to personalized recommendations. Candidates scoring 0
// are dropped.
func (r *Ranker) Rank(query string, candidates []models.Place, k int) []models.ScoredCandidate {
	if strings.TrimSpace(query) == "" {
		return r.pref.Recommend(candidates, k)
	}
	if k <= 0 || len(candidates) == 0 {
		return nil
	}

	results := make([]models.ScoredCandidate, 0, len(candidates))
	for i := range candidates {
		sc := r.Relevance(query, candidates[i])
		if sc.Score > 0 {
			results = append(results, sc)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}

	r.logger.Debug().
		Str("query", query).
		Int("candidates", len(candidates)).
		Int("returned", len(results)).
		Msg("search ranked")

	return results
}

// Relevance scores one place against query:
//
//	0.4*nameMatch + 0.3*categoryMatch + 0.2*rating/5 + 0.1*preference
//
//nolint:gocritic // hugeParam: place passed by value for immutability
func (r *Ranker) Relevance(query string, place models.Place) models.ScoredCandidate {
	w := r.config.Weights

	name := NameMatch(query, place.Name)
	cat := CategoryMatch(query, place.Category)
	rating := math.Max(0, math.Min(place.Rating/5.0, 1.0))
	pref := r.pref.CategoryPreference(place.Category)

	return models.ScoredCandidate{
		Place: place,
		Score: w.Name*name + w.Category*cat + w.Rating*rating + w.Preference*pref,
		Scores: map[string]float64{
			"name":       name,
			"category":   cat,
			"rating":     rating,
			"preference": pref,
		},
	}
}

// IndexPlaces rebuilds the autocomplete index from places plus the
// canonical category names.
func (r *Ranker) IndexPlaces(places []models.Place) {
	r.index.Reset()
	for _, c := range category.All {
		r.index.Insert(category.DisplayName(c), EntryCategory)
	}
	for i := range places {
		r.index.Insert(places[i].Name, EntryPlace)
	}
}

// AddPlace indexes one more place name.
func (r *Ranker) AddPlace(place models.Place) {
	r.index.Insert(place.Name, EntryPlace)
}

// Autocomplete returns place and category names starting with partial.
func (r *Ranker) Autocomplete(partial string) []string {
	completions := r.index.Complete(partial, r.config.MaxCompletions)
	out := make([]string, 0, len(completions))
	for _, c := range completions {
		out = append(out, c.Value)
	}
	return out
}
