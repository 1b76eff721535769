// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package scheduler

import (
	"context"
	"time"

	"github.com/tomtom215/waypoint/internal/models"
)

// Counts is a pair of engaged and dismissed tallies.
type Counts struct {
	Engaged   int `json:"engaged"`
	Dismissed int `json:"dismissed"`
}

// Total returns engaged plus dismissed.
func (c Counts) Total() int {
	return c.Engaged + c.Dismissed
}

// EngagementRate returns engaged/total, or 0 with no signals.
func (c Counts) EngagementRate() float64 {
	if c.Total() == 0 {
		return 0
	}
	return float64(c.Engaged) / float64(c.Total())
}

// EngagementStats summarizes recorded engagement by hour of day and by
// day of week.
type EngagementStats struct {
	ByHour    [24]Counts `json:"by_hour"`
	ByWeekday [7]Counts  `json:"by_weekday"`
	Total     Counts     `json:"total"`
}

// BestHour returns the hour with the highest engagement rate among hours
// with at least minSignals signals, or -1 if none qualify.
func (s *EngagementStats) BestHour(minSignals int) int {
	best, bestRate := -1, -1.0
	for h, c := range s.ByHour {
		if c.Total() < minSignals || c.Total() == 0 {
			continue
		}
		if rate := c.EngagementRate(); rate > bestRate {
			best, bestRate = h, rate
		}
	}
	return best
}

type engagementLog struct {
	byHour    [24]Counts
	byWeekday [7]Counts
	total     Counts
}

func newEngagementLog() *engagementLog {
	return &engagementLog{}
}

func (l *engagementLog) add(e *models.Engagement) {
	if e.Hour < 0 || e.Hour > 23 || e.Weekday < time.Sunday || e.Weekday > time.Saturday {
		return
	}
	if e.Engaged {
		l.byHour[e.Hour].Engaged++
		l.byWeekday[e.Weekday].Engaged++
		l.total.Engaged++
		return
	}
	l.byHour[e.Hour].Dismissed++
	l.byWeekday[e.Weekday].Dismissed++
	l.total.Dismissed++
}

// RecordEngagement records whether the user engaged with or dismissed a
// notification, keyed by the current hour and weekday. It only feeds the
// timing statistics; scheduled items are not touched.
func (s *Scheduler) RecordEngagement(_ context.Context, id string, engaged bool) models.Engagement {
	now := s.clock.Now()
	e := models.Engagement{
		NotificationID: id,
		Engaged:        engaged,
		Hour:           now.Hour(),
		Weekday:        now.Weekday(),
		RecordedAt:     now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.items[id]; ok {
		e.Kind = n.Kind
	}
	s.engagement.add(&e)

	s.logger.Debug().
		Str("id", id).
		Bool("engaged", engaged).
		Int("hour", e.Hour).
		Str("weekday", e.Weekday.String()).
		Msg("engagement recorded")
	return e
}

// LoadEngagement replays persisted engagement records into the statistics.
func (s *Scheduler) LoadEngagement(records []models.Engagement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range records {
		s.engagement.add(&records[i])
	}
}

// EngagementStats returns a snapshot of the engagement statistics.
func (s *Scheduler) EngagementStats() EngagementStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return EngagementStats{
		ByHour:    s.engagement.byHour,
		ByWeekday: s.engagement.byWeekday,
		Total:     s.engagement.total,
	}
}
