// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package generator

import (
	"fmt"
	"time"

	"github.com/tomtom215/waypoint/internal/cron"
)

// Config holds the thresholds and sampling rates of every source.
type Config struct {
	// RecommendationPool is how many top places are considered. Default: 5.
	RecommendationPool int `koanf:"recommendation_pool"`
	// MaxRecommendations caps SmartRecommendation candidates. Default: 3.
	MaxRecommendations int `koanf:"max_recommendations"`

	// PatternThreshold is the minimum inferred-category count for a
	// PatternAlert. Default: 3.
	PatternThreshold int `koanf:"pattern_threshold"`
	// TimePatternMinSearches is the history size needed for a
	// TimeOptimized candidate. Default: 5.
	TimePatternMinSearches int `koanf:"time_pattern_min_searches"`

	// WeeklyInsightSchedule is the cron window in which the weekly
	// summary is emitted. Default: Sunday from 18:00.
	WeeklyInsightSchedule string `koanf:"weekly_insight_schedule"`
	// InsightWindow bounds what the weekly summary counts. Default: 7 days.
	InsightWindow time.Duration `koanf:"insight_window"`

	// FavoriteReminderAge is how old a favorite must be before a
	// reminder may fire. Default: 7 days.
	FavoriteReminderAge time.Duration `koanf:"favorite_reminder_age"`
	// FavoriteReminderProbability gates each eligible favorite. Default: 0.3.
	FavoriteReminderProbability float64 `koanf:"favorite_reminder_probability"`

	// FollowUpMinAge and FollowUpMaxAge bound the search age, in whole
	// hours, eligible for a follow-up. Defaults: 24h and 72h.
	FollowUpMinAge time.Duration `koanf:"follow_up_min_age"`
	FollowUpMaxAge time.Duration `koanf:"follow_up_max_age"`
	// FollowUpProbability gates each eligible search. Default: 0.4.
	FollowUpProbability float64 `koanf:"follow_up_probability"`
}

// DefaultConfig returns the production generator settings.
func DefaultConfig() Config {
	return Config{
		RecommendationPool:          5,
		MaxRecommendations:          3,
		PatternThreshold:            3,
		TimePatternMinSearches:      5,
		WeeklyInsightSchedule:       "* 18-23 * * 0",
		InsightWindow:               7 * 24 * time.Hour,
		FavoriteReminderAge:         7 * 24 * time.Hour,
		FavoriteReminderProbability: 0.3,
		FollowUpMinAge:              24 * time.Hour,
		FollowUpMaxAge:              72 * time.Hour,
		FollowUpProbability:         0.4,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.RecommendationPool < 1 || c.MaxRecommendations < 0 {
		return fmt.Errorf("recommendation limits must be positive, got pool=%d max=%d",
			c.RecommendationPool, c.MaxRecommendations)
	}
	if c.PatternThreshold < 1 || c.TimePatternMinSearches < 1 {
		return fmt.Errorf("pattern thresholds must be positive")
	}
	if _, err := cron.Parse(c.WeeklyInsightSchedule); err != nil {
		return fmt.Errorf("weekly_insight_schedule: %w", err)
	}
	for name, p := range map[string]float64{
		"favorite_reminder_probability": c.FavoriteReminderProbability,
		"follow_up_probability":         c.FollowUpProbability,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %v", name, p)
		}
	}
	if c.FollowUpMinAge > c.FollowUpMaxAge {
		return fmt.Errorf("follow_up_min_age %s exceeds follow_up_max_age %s", c.FollowUpMinAge, c.FollowUpMaxAge)
	}
	return nil
}
