// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package scheduler

import (
	"time"

	"github.com/tomtom215/waypoint/internal/models"
)

// AdjustForQuietHours moves t to the end of the quiet window when its hour
// falls inside it. The result is on the hour. When the window wraps past
// midnight and t is in the evening part, the result is on the next day.
func AdjustForQuietHours(t time.Time, p *models.Policy) time.Time {
	if !p.RespectQuietHours {
		return t
	}
	hour := t.Hour()
	if !p.InQuietHours(hour) {
		return t
	}

	adjusted := time.Date(t.Year(), t.Month(), t.Day(), p.QuietHoursEnd, 0, 0, 0, t.Location())
	if p.QuietHoursEnd <= p.QuietHoursStart && hour >= p.QuietHoursStart {
		adjusted = adjusted.AddDate(0, 0, 1)
	}
	return adjusted
}

// AdjustForPeakHours moves t to the next peak hour when t is more than
// lookahead after now and not already in a peak hour. peakHours must be
// sorted ascending. Times within the lookahead are left alone.
func AdjustForPeakHours(t, now time.Time, lookahead time.Duration, peakHours []int) time.Time {
	if len(peakHours) == 0 || !t.After(now.Add(lookahead)) {
		return t
	}

	hour := t.Hour()
	for _, h := range peakHours {
		if h == hour {
			return t
		}
	}

	for _, h := range peakHours {
		if h > hour {
			return time.Date(t.Year(), t.Month(), t.Day(), h, 0, 0, 0, t.Location())
		}
	}
	return time.Date(t.Year(), t.Month(), t.Day()+1, peakHours[0], 0, 0, 0, t.Location())
}

// adjust runs the full per-item pipeline: quiet hours, peak hours, then
// the minimum lead floor.
func (s *Scheduler) adjust(t, now time.Time, p *models.Policy) time.Time {
	t = AdjustForQuietHours(t, p)
	t = AdjustForPeakHours(t, now, s.config.PeakLookahead, s.peakHours)
	if floor := now.Add(s.config.MinLead); t.Before(floor) {
		t = floor
	}
	return t
}

// isPeakHour reports whether hour is one of the configured peak hours.
func (s *Scheduler) isPeakHour(hour int) bool {
	for _, h := range s.peakHours {
		if h == hour {
			return true
		}
	}
	return false
}

// NextOptimalTime returns the delivery time a notification created now
// would receive: now plus the optimal lead, run through the adjustments.
func (s *Scheduler) NextOptimalTime(p *models.Policy) time.Time {
	now := s.clock.Now()
	return s.adjust(now.Add(s.config.OptimalLead), now, p)
}

// IsOptimalTime reports whether now is a good moment to notify: outside
// quiet hours (when respected) and inside a peak hour.
func (s *Scheduler) IsOptimalTime(p *models.Policy) bool {
	hour := s.clock.Now().Hour()
	if p.RespectQuietHours && p.InQuietHours(hour) {
		return false
	}
	return s.isPeakHour(hour)
}
