// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package scheduler

import (
	"testing"
	"time"

	"github.com/tomtom215/waypoint/internal/models"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2026, 10, day, hour, minute, 0, 0, time.UTC)
}

// --- Test: quiet hours ---

func TestAdjustForQuietHours(t *testing.T) {
	t.Parallel()

	wrapping := models.DefaultPolicy() // 22 -> 8

	daytime := models.DefaultPolicy()
	daytime.QuietHoursStart, daytime.QuietHoursEnd = 1, 5

	ignored := models.DefaultPolicy()
	ignored.RespectQuietHours = false

	empty := models.DefaultPolicy()
	empty.QuietHoursStart, empty.QuietHoursEnd = 7, 7

	tests := []struct {
		name   string
		policy models.Policy
		in     time.Time
		want   time.Time
	}{
		{name: "evening wraps to next morning", policy: wrapping, in: at(19, 23, 0), want: at(20, 8, 0)},
		{name: "start hour wraps to next morning", policy: wrapping, in: at(19, 22, 0), want: at(20, 8, 0)},
		{name: "early morning stays same day", policy: wrapping, in: at(20, 3, 0), want: at(20, 8, 0)},
		{name: "minutes are dropped", policy: wrapping, in: at(20, 7, 59), want: at(20, 8, 0)},
		{name: "end hour is outside", policy: wrapping, in: at(20, 8, 15), want: at(20, 8, 15)},
		{name: "before start is outside", policy: wrapping, in: at(19, 21, 59), want: at(19, 21, 59)},
		{name: "non-wrapping window", policy: daytime, in: at(20, 3, 30), want: at(20, 5, 0)},
		{name: "non-wrapping outside", policy: daytime, in: at(20, 23, 30), want: at(20, 23, 30)},
		{name: "not respected", policy: ignored, in: at(19, 23, 0), want: at(19, 23, 0)},
		{name: "start equals end is empty", policy: empty, in: at(19, 7, 0), want: at(19, 7, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := AdjustForQuietHours(tt.in, &tt.policy); !got.Equal(tt.want) {
				t.Errorf("AdjustForQuietHours(%s) = %s, want %s",
					tt.in.Format(time.RFC3339), got.Format(time.RFC3339), tt.want.Format(time.RFC3339))
			}
		})
	}
}

// --- Test: peak hours ---

func TestAdjustForPeakHours(t *testing.T) {
	t.Parallel()

	peaks := DefaultConfig().sortedPeakHours()
	now := at(19, 12, 0)

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{name: "within lookahead", in: at(19, 12, 30), want: at(19, 12, 30)},
		{name: "exactly at lookahead", in: at(19, 14, 0), want: at(19, 14, 0)},
		{name: "already peak", in: at(19, 19, 45), want: at(19, 19, 45)},
		{name: "next peak same day", in: at(19, 15, 30), want: at(19, 19, 0)},
		{name: "after last peak", in: at(19, 21, 30), want: at(20, 9, 0)},
		{name: "early morning", in: at(20, 6, 0), want: at(20, 9, 0)},
		{name: "between morning peaks", in: at(20, 11, 10), want: at(20, 13, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := AdjustForPeakHours(tt.in, now, 2*time.Hour, peaks)
			if !got.Equal(tt.want) {
				t.Errorf("AdjustForPeakHours(%s) = %s, want %s",
					tt.in.Format(time.RFC3339), got.Format(time.RFC3339), tt.want.Format(time.RFC3339))
			}
		})
	}
}

func TestAdjustForPeakHours_NoPeaks(t *testing.T) {
	t.Parallel()

	in := at(19, 23, 0)
	if got := AdjustForPeakHours(in, at(19, 12, 0), 2*time.Hour, nil); !got.Equal(in) {
		t.Errorf("got %s, want unchanged", got)
	}
}

// --- Test: full pipeline ---

func TestAdjust_QuietThenPeakThenFloor(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestScheduler(t, DefaultConfig(), at(19, 12, 0))
	p := models.DefaultPolicy()
	now := at(19, 12, 0)

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{name: "quiet then peak", in: at(19, 23, 0), want: at(20, 9, 0)},
		{name: "past floored", in: at(19, 11, 0), want: at(19, 12, 1)},
		{name: "now floored", in: now, want: at(19, 12, 1)},
		{name: "near future untouched", in: at(19, 13, 20), want: at(19, 13, 20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := s.adjust(tt.in, now, &p); !got.Equal(tt.want) {
				t.Errorf("adjust(%s) = %s, want %s",
					tt.in.Format(time.RFC3339), got.Format(time.RFC3339), tt.want.Format(time.RFC3339))
			}
		})
	}
}

// --- Test: optimal time ---

func TestNextOptimalTime(t *testing.T) {
	t.Parallel()

	p := models.DefaultPolicy()

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{name: "midday", now: at(19, 12, 0), want: at(19, 12, 30)},
		{name: "late evening falls into quiet hours", now: at(19, 22, 10), want: at(20, 9, 0)},
		{name: "early evening", now: at(19, 21, 0), want: at(19, 21, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, _, _ := newTestScheduler(t, DefaultConfig(), tt.now)
			if got := s.NextOptimalTime(&p); !got.Equal(tt.want) {
				t.Errorf("NextOptimalTime() = %s, want %s", got.Format(time.RFC3339), tt.want.Format(time.RFC3339))
			}
		})
	}
}

func TestIsOptimalTime(t *testing.T) {
	t.Parallel()

	lateCfg := DefaultConfig()
	lateCfg.PeakHours = []int{23}

	respect := models.DefaultPolicy()
	ignore := models.DefaultPolicy()
	ignore.RespectQuietHours = false

	tests := []struct {
		name   string
		cfg    Config
		now    time.Time
		policy models.Policy
		want   bool
	}{
		{name: "peak hour", cfg: DefaultConfig(), now: at(19, 13, 15), policy: respect, want: true},
		{name: "off-peak", cfg: DefaultConfig(), now: at(19, 12, 0), policy: respect},
		{name: "peak inside quiet hours", cfg: lateCfg, now: at(19, 23, 5), policy: respect},
		{name: "quiet hours ignored", cfg: lateCfg, now: at(19, 23, 5), policy: ignore, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, _, _ := newTestScheduler(t, tt.cfg, tt.now)
			if got := s.IsOptimalTime(&tt.policy); got != tt.want {
				t.Errorf("IsOptimalTime() = %v, want %v", got, tt.want)
			}
		})
	}
}
