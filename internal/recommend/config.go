// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package recommend

import (
	"fmt"
	"math"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Weights defines the contribution of each signal to a place's score.
	Weights ScoreWeights `json:"weights" koanf:"weights"`

	// Learning contains the per-signal weights applied by Learn.
	Learning LearningConfig `json:"learning" koanf:"learning"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits" koanf:"limits"`

	// Worker configures the serialized learning worker.
	Worker WorkerConfig `json:"worker" koanf:"worker"`
}

// ScoreWeights defines the linear blend used by Score.
type ScoreWeights struct {
	// Preference is the weight of the learned category preference.
	// Default: 0.4.
	Preference float64 `json:"preference" koanf:"preference"`

	// Rating is the weight of the place rating (scaled to 0..1).
	// Default: 0.3.
	Rating float64 `json:"rating" koanf:"rating"`

	// Frequency is the weight of the saturated visit frequency.
	// Default: 0.2.
	Frequency float64 `json:"frequency" koanf:"frequency"`

	// Recency is the weight of the recency term.
	// Default: 0.1.
	Recency float64 `json:"recency" koanf:"recency"`
}

// Sum returns the total of all weights.
func (w ScoreWeights) Sum() float64 {
	return w.Preference + w.Rating + w.Frequency + w.Recency
}

// LearningConfig contains the weights Learn applies per behavioral signal.
type LearningConfig struct {
	// UnratedVisitWeight is applied to visits whose rating is unknown or zero.
	// Default: 0.5.
	UnratedVisitWeight float64 `json:"unrated_visit_weight" koanf:"unrated_visit_weight"`

	// FavoriteWeight is added per favorite. Must exceed any single visit.
	// Default: 1.5.
	FavoriteWeight float64 `json:"favorite_weight" koanf:"favorite_weight"`

	// SearchWeight is multiplied by the number of searches inferred per category.
	// Default: 0.3.
	SearchWeight float64 `json:"search_weight" koanf:"search_weight"`

	// FrequencySaturation is the visit count at which the frequency term reaches 1.
	// Default: 10.
	FrequencySaturation int `json:"frequency_saturation" koanf:"frequency_saturation"`

	// NeutralRecency is the constant recency term. Visits carry timestamps
	// but they are not yet blended into the score.
	// Default: 0.5.
	NeutralRecency float64 `json:"neutral_recency" koanf:"neutral_recency"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultK is the default number of recommendations.
	// Default: 10.
	DefaultK int `json:"default_k" koanf:"default_k"`

	// MaxK is the maximum allowed K value.
	// Default: 100.
	MaxK int `json:"max_k" koanf:"max_k"`

	// SuggestionCategories is how many top categories feed search suggestions.
	// Default: 3.
	SuggestionCategories int `json:"suggestion_categories" koanf:"suggestion_categories"`

	// MaxSuggestions caps SmartSuggestions output.
	// Default: 5.
	MaxSuggestions int `json:"max_suggestions" koanf:"max_suggestions"`
}

// WorkerConfig configures the serialized learning worker.
type WorkerConfig struct {
	// QueueSize is the number of learn jobs that can wait before Submit blocks.
	// Default: 8.
	QueueSize int `json:"queue_size" koanf:"queue_size"`
}

// DefaultConfig returns a Config with the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: ScoreWeights{
			Preference: 0.4,
			Rating:     0.3,
			Frequency:  0.2,
			Recency:    0.1,
		},
		Learning: LearningConfig{
			UnratedVisitWeight:  0.5,
			FavoriteWeight:      1.5,
			SearchWeight:        0.3,
			FrequencySaturation: 10,
			NeutralRecency:      0.5,
		},
		Limits: LimitsConfig{
			DefaultK:             10,
			MaxK:                 100,
			SuggestionCategories: 3,
			MaxSuggestions:       5,
		},
		Worker: WorkerConfig{
			QueueSize: 8,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	w := c.Weights
	if w.Preference < 0 || w.Rating < 0 || w.Frequency < 0 || w.Recency < 0 {
		return fmt.Errorf("weights must be non-negative, got %+v", w)
	}
	if math.Abs(w.Sum()-1.0) > 1e-9 {
		return fmt.Errorf("weights must sum to 1.0, got %f", w.Sum())
	}

	if c.Learning.UnratedVisitWeight <= 0 || c.Learning.UnratedVisitWeight > 1 {
		return fmt.Errorf("learning.unrated_visit_weight must be in (0, 1], got %f", c.Learning.UnratedVisitWeight)
	}
	if c.Learning.FavoriteWeight <= 1 {
		return fmt.Errorf("learning.favorite_weight must exceed 1.0 (a full visit), got %f", c.Learning.FavoriteWeight)
	}
	if c.Learning.SearchWeight <= 0 || c.Learning.SearchWeight >= 1 {
		return fmt.Errorf("learning.search_weight must be in (0, 1), got %f", c.Learning.SearchWeight)
	}
	if c.Learning.FrequencySaturation < 1 {
		return fmt.Errorf("learning.frequency_saturation must be positive, got %d", c.Learning.FrequencySaturation)
	}
	if c.Learning.NeutralRecency < 0 || c.Learning.NeutralRecency > 1 {
		return fmt.Errorf("learning.neutral_recency must be in [0, 1], got %f", c.Learning.NeutralRecency)
	}

	if c.Limits.DefaultK < 1 {
		return fmt.Errorf("limits.default_k must be positive, got %d", c.Limits.DefaultK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("limits.max_k must be >= limits.default_k, got %d < %d", c.Limits.MaxK, c.Limits.DefaultK)
	}
	if c.Limits.SuggestionCategories < 0 {
		return fmt.Errorf("limits.suggestion_categories must be non-negative, got %d", c.Limits.SuggestionCategories)
	}
	if c.Limits.MaxSuggestions < 1 {
		return fmt.Errorf("limits.max_suggestions must be positive, got %d", c.Limits.MaxSuggestions)
	}

	if c.Worker.QueueSize < 1 {
		return fmt.Errorf("worker.queue_size must be positive, got %d", c.Worker.QueueSize)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types.
	clone := *c
	return &clone
}
