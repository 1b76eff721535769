// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package models

import "time"

// Policy holds the user's notification preferences.
//
// Quiet hours form the half-open hour interval [QuietHoursStart, QuietHoursEnd),
// wrapping past midnight when start > end.
//
// Example:
//
//	{
//	  "enabled": {"smart_recommendation": true, "weather_alert": false},
//	  "respect_quiet_hours": true,
//	  "quiet_hours_start": 22,
//	  "quiet_hours_end": 8,
//	  "max_daily_count": 10,
//	  "min_spacing_minutes": 30,
//	  "min_priority": 2,
//	  "min_relevance": 0.3,
//	  "location_radius_km": 5
//	}
type Policy struct {
	Enabled           map[NotificationKind]bool `json:"enabled"`
	RespectQuietHours bool                      `json:"respect_quiet_hours"`
	QuietHoursStart   int                       `json:"quiet_hours_start" validate:"gte=0,lte=23"`
	QuietHoursEnd     int                       `json:"quiet_hours_end" validate:"gte=0,lte=23"`
	MaxDailyCount     int                       `json:"max_daily_count" validate:"gte=0,lte=100"`
	MinSpacingMinutes int                       `json:"min_spacing_minutes" validate:"gte=0,lte=1440"`
	MinPriority       int                       `json:"min_priority"`
	MinRelevance      float64                   `json:"min_relevance"`
	LocationRadiusKm  float64                   `json:"location_radius_km" validate:"gte=0,lte=100"`
}

// DefaultPolicy returns the policy applied before the user changes anything.
func DefaultPolicy() Policy {
	enabled := make(map[NotificationKind]bool, len(AllKinds))
	for _, k := range AllKinds {
		enabled[k] = true
	}
	return Policy{
		Enabled:           enabled,
		RespectQuietHours: true,
		QuietHoursStart:   22,
		QuietHoursEnd:     8,
		MaxDailyCount:     10,
		MinSpacingMinutes: 30,
		MinPriority:       2,
		MinRelevance:      0.3,
		LocationRadiusKm:  5.0,
	}
}

// KindEnabled reports whether notifications of kind k may be delivered.
// Kinds missing from the map are treated as disabled.
func (p Policy) KindEnabled(k NotificationKind) bool {
	return p.Enabled[k]
}

// MinSpacing returns the minimum gap between two scheduled notifications.
func (p Policy) MinSpacing() time.Duration {
	return time.Duration(p.MinSpacingMinutes) * time.Minute
}

// InQuietHours reports whether hour falls inside the quiet window.
func (p Policy) InQuietHours(hour int) bool {
	if p.QuietHoursStart < p.QuietHoursEnd {
		return hour >= p.QuietHoursStart && hour < p.QuietHoursEnd
	}
	if p.QuietHoursStart == p.QuietHoursEnd {
		return false
	}
	return hour >= p.QuietHoursStart || hour < p.QuietHoursEnd
}

// Clone returns a deep copy of the policy.
func (p Policy) Clone() Policy {
	out := p
	out.Enabled = make(map[NotificationKind]bool, len(p.Enabled))
	for k, v := range p.Enabled {
		out.Enabled[k] = v
	}
	return out
}
