// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package recommend

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/waypoint/internal/category"
	"github.com/tomtom215/waypoint/internal/models"
)

// Engine owns one PreferenceModel and scores places against it.
//
// Learn takes an exclusive lock; scoring and inspection share a read lock,
// so concurrent Score calls never observe a half-applied Learn. Callers
// that learn from several goroutines should funnel through a Worker.
type Engine struct {
	config  *Config
	logger  zerolog.Logger
	matcher *category.Matcher

	mu            sync.RWMutex
	model         *PreferenceModel
	lastLearnedAt time.Time

	learnCount atomic.Int64
	scoreCount atomic.Int64
}

// LearnInput is one snapshot of behavioral history.
type LearnInput struct {
	Visited   []models.Place
	Favorites []models.Favorite
	Searches  []models.SearchRecord

	// Fresh discards the current model before learning, so the result
	// reflects only this snapshot. Without it weights compound.
	Fresh bool
}

// LearnStats reports what one Learn call consumed.
type LearnStats struct {
	Visits           int           `json:"visits"`
	Favorites        int           `json:"favorites"`
	SearchesMatched  int           `json:"searches_matched"`
	SearchCategories int           `json:"search_categories"`
	Categories       int           `json:"categories"`
	Duration         time.Duration `json:"duration"`
}

// EngineStats exposes engine counters.
type EngineStats struct {
	LearnCount    int64     `json:"learn_count"`
	ScoreCount    int64     `json:"score_count"`
	Categories    int       `json:"categories"`
	LastLearnedAt time.Time `json:"last_learned_at"`
}

// NewEngine creates a recommendation engine with an empty model.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config:  cfg,
		logger:  logger.With().Str("component", "recommend").Logger(),
		matcher: category.DefaultMatcher(),
		model:   NewPreferenceModel(),
	}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Learn folds a behavioral snapshot into the preference model and
// normalizes it.
//
//nolint:gocritic // hugeParam: input passed by value for immutability
func (e *Engine) Learn(in LearnInput) LearnStats {
	start := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	if in.Fresh {
		e.model = NewPreferenceModel()
	}

	stats := LearnStats{}
	lc := e.config.Learning

	for i := range in.Visited {
		p := &in.Visited[i]
		c := category.Normalize(p.Category)
		if c == "" {
			continue
		}
		e.model.UpdateCategoryPreference(c, e.visitWeight(p.Rating))
		e.model.IncrementVisitFrequency(c)
		stats.Visits++
	}

	for i := range in.Favorites {
		c := category.Normalize(in.Favorites[i].Category)
		if c == "" {
			continue
		}
		e.model.UpdateCategoryPreference(c, lc.FavoriteWeight)
		e.model.IncrementVisitFrequency(c)
		stats.Favorites++
	}

	counts := make(map[string]int)
	for i := range in.Searches {
		if c, ok := e.matcher.Infer(in.Searches[i].Query); ok {
			counts[c]++
			stats.SearchesMatched++
		}
	}
	for c, n := range counts {
		e.model.UpdateCategoryPreference(c, float64(n)*lc.SearchWeight)
	}
	stats.SearchCategories = len(counts)

	e.model.Normalize()

	stats.Categories = e.model.Len()
	stats.Duration = time.Since(start)
	e.lastLearnedAt = time.Now()
	e.learnCount.Add(1)

	e.logger.Debug().
		Int("visits", stats.Visits).
		Int("favorites", stats.Favorites).
		Int("searches_matched", stats.SearchesMatched).
		Int("categories", stats.Categories).
		Bool("fresh", in.Fresh).
		Msg("preference model updated")

	return stats
}

// visitWeight maps a 0..5 rating onto 0..1, using the unrated weight when
// the rating is unknown.
func (e *Engine) visitWeight(rating float64) float64 {
	if rating <= 0 || math.IsNaN(rating) {
		return e.config.Learning.UnratedVisitWeight
	}
	return math.Min(rating/5.0, 1.0)
}

// Score returns the recommendation score of place.
func (e *Engine) Score(place models.Place) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	e.scoreCount.Add(1)
	return e.scoreLocked(&place).Score
}

// ScoreBreakdown returns the score of place together with its components.
func (e *Engine) ScoreBreakdown(place models.Place) models.ScoredCandidate {
	e.mu.RLock()
	defer e.mu.RUnlock()

	e.scoreCount.Add(1)
	return e.scoreLocked(&place)
}

// scoreLocked computes
//
//	w.Preference*pref + w.Rating*rating/5 + w.Frequency*min(freq/sat, 1) + w.Recency*neutral
//
// Caller must hold e.mu.
func (e *Engine) scoreLocked(place *models.Place) models.ScoredCandidate {
	w := e.config.Weights
	c := category.Normalize(place.Category)

	pref := e.model.CategoryPreference(c)
	rating := clamp01(place.Rating / 5.0)
	freq := math.Min(float64(e.model.VisitFrequency(c))/float64(e.config.Learning.FrequencySaturation), 1.0)
	recency := e.config.Learning.NeutralRecency

	score := w.Preference*pref + w.Rating*rating + w.Frequency*freq + w.Recency*recency

	return models.ScoredCandidate{
		Place: *place,
		Score: score,
		Scores: map[string]float64{
			"preference": pref,
			"rating":     rating,
			"frequency":  freq,
			"recency":    recency,
		},
	}
}

// Recommend returns the k highest-scoring candidates, best first.
// Equal scores keep their input order. k <= 0 yields no results.
func (e *Engine) Recommend(candidates []models.Place, k int) []models.ScoredCandidate {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}

	e.mu.RLock()
	scored := make([]models.ScoredCandidate, len(candidates))
	for i := range candidates {
		scored[i] = e.scoreLocked(&candidates[i])
	}
	e.mu.RUnlock()
	e.scoreCount.Add(int64(len(candidates)))

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// PredictNextCategory returns the category with the highest learned weight,
// or category.Default when nothing has been learned.
func (e *Engine) PredictNextCategory() string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if c, _, ok := e.model.TopCategory(); ok {
		return c
	}
	return category.Default
}

// DiversityScore returns the normalized entropy of the preference distribution.
func (e *Engine) DiversityScore() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.model.Diversity()
}

// CategoryPreference returns the learned weight for a category.
// The category is normalized first; unknown categories return 0.
func (e *Engine) CategoryPreference(c string) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.model.CategoryPreference(category.Normalize(c))
}

// Snapshot returns a copy of the current preference model.
func (e *Engine) Snapshot() *PreferenceModel {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.model.Clone()
}

// Reset discards everything learned so far.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.model = NewPreferenceModel()
	e.logger.Debug().Msg("preference model reset")
}

// Stats returns engine counters.
func (e *Engine) Stats() EngineStats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return EngineStats{
		LearnCount:    e.learnCount.Load(),
		ScoreCount:    e.scoreCount.Load(),
		Categories:    e.model.Len(),
		LastLearnedAt: e.lastLearnedAt,
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
