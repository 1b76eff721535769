// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package scheduler

import (
	"fmt"
	"sort"
	"time"
)

// Config contains scheduler timing configuration.
type Config struct {
	// PeakHours are the hours of day with the best historical engagement.
	// Default: 9, 10, 13, 14, 19, 20.
	PeakHours []int `koanf:"peak_hours"`

	// PeakLookahead is how far in the future a time must be before it is
	// moved to a peak hour. Default: 2h.
	PeakLookahead time.Duration `koanf:"peak_lookahead"`

	// MinLead is the earliest a trigger may fire relative to now. Default: 1m.
	MinLead time.Duration `koanf:"min_lead"`

	// OptimalLead is the starting offset for NextOptimalTime. Default: 30m.
	OptimalLead time.Duration `koanf:"optimal_lead"`
}

// DefaultConfig returns the production scheduler configuration.
func DefaultConfig() Config {
	return Config{
		PeakHours:     []int{9, 10, 13, 14, 19, 20},
		PeakLookahead: 2 * time.Hour,
		MinLead:       time.Minute,
		OptimalLead:   30 * time.Minute,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if len(c.PeakHours) == 0 {
		return fmt.Errorf("at least one peak hour is required")
	}
	seen := make(map[int]bool, len(c.PeakHours))
	for _, h := range c.PeakHours {
		if h < 0 || h > 23 {
			return fmt.Errorf("peak hour must be 0-23, got %d", h)
		}
		if seen[h] {
			return fmt.Errorf("duplicate peak hour %d", h)
		}
		seen[h] = true
	}
	if c.PeakLookahead < 0 || c.MinLead < 0 || c.OptimalLead < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

// sortedPeakHours returns a sorted copy of the peak hours.
func (c Config) sortedPeakHours() []int {
	out := append([]int(nil), c.PeakHours...)
	sort.Ints(out)
	return out
}
