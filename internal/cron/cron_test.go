// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package cron

import (
	"reflect"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{"daily at 9am", "0 9 * * *", false},
		{"every 5 minutes", "*/5 * * * *", false},
		{"monday at 9am", "0 9 * * 1", false},
		{"sunday evening window", "* 18-23 * * 0", false},
		{"sunday as 7", "0 9 * * 7", false},
		{"list", "0,15,30,45 * * * *", false},
		{"stepped range", "0 8-20/4 * * *", false},
		{"descriptor", "@hourly", false},
		{"too few fields", "0 9 * *", true},
		{"too many fields", "0 9 * * * *", true},
		{"minute out of range", "60 9 * * *", true},
		{"hour out of range", "0 24 * * *", true},
		{"zero step", "*/0 * * * *", true},
		{"inverted range", "0 20-8 * * *", true},
		{"empty list item", "0, * * * *", true},
		{"garbage", "a b c d e", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tt.expr)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			}
		})
	}
}

func TestSchedule_Hours(t *testing.T) {
	t.Parallel()

	if got, want := MustParse("0 8-20/4 * * *").Hours(), []int{8, 12, 16, 20}; !reflect.DeepEqual(got, want) {
		t.Errorf("Hours = %v, want %v", got, want)
	}
	if got := len(MustParse("* * * * *").Hours()); got != 24 {
		t.Errorf("wildcard hours = %d, want 24", got)
	}
}

func TestSchedule_Matches(t *testing.T) {
	t.Parallel()

	weekly := MustParse("* 18-23 * * 0")

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"sunday 18:00", time.Date(2026, 10, 18, 18, 0, 0, 0, time.UTC), true},
		{"sunday 23:59", time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC), true},
		{"sunday 17:59", time.Date(2026, 10, 18, 17, 59, 0, 0, time.UTC), false},
		{"monday 19:00", time.Date(2026, 10, 19, 19, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := weekly.Matches(tt.at); got != tt.want {
				t.Errorf("Matches(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}

	if !MustParse("0 9 * * 7").Matches(time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)) {
		t.Error("day-of-week 7 should match Sunday")
	}
}

func TestSchedule_DayFieldsAreOred(t *testing.T) {
	t.Parallel()

	// The 1st of the month OR any Monday.
	s := MustParse("0 0 1 * 1")
	if !s.Matches(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("1st of October should match")
	}
	if !s.Matches(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)) {
		t.Error("Monday the 19th should match")
	}
	if s.Matches(time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)) {
		t.Error("Sunday the 18th should not match")
	}
}

func TestSchedule_Next(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		expr  string
		after time.Time
		want  time.Time
	}{
		{
			name:  "later same day",
			expr:  "0 9 * * *",
			after: time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC),
			want:  time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
		},
		{
			name:  "strictly after",
			expr:  "0 9 * * *",
			after: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
			want:  time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC),
		},
		{
			name:  "seconds are dropped",
			expr:  "*/15 * * * *",
			after: time.Date(2026, 10, 19, 10, 14, 59, 0, time.UTC),
			want:  time.Date(2026, 10, 19, 10, 15, 0, 0, time.UTC),
		},
		{
			name:  "next sunday evening",
			expr:  "* 18-23 * * 0",
			after: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
			want:  time.Date(2026, 10, 25, 18, 0, 0, 0, time.UTC),
		},
		{
			name:  "month boundary",
			expr:  "0 0 1 * *",
			after: time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC),
			want:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := MustParse(tt.expr).Next(tt.after); !got.Equal(tt.want) {
				t.Errorf("Next(%v) = %v, want %v", tt.after, got, tt.want)
			}
		})
	}
}

func TestSchedule_NextHalfHourOffset(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("IST", 5*3600+1800)
	after := time.Date(2026, 10, 19, 7, 10, 0, 0, loc)

	got := MustParse("0 9 * * *").Next(after)
	want := time.Date(2026, 10, 19, 9, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("Next = %v, want %v", got, want)
	}
}

func TestSchedule_NextNever(t *testing.T) {
	t.Parallel()

	if got := MustParse("0 0 30 2 *").Next(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)); !got.IsZero() {
		t.Errorf("February 30th should never fire, got %v", got)
	}
}

func TestMustParsePanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("MustParse should panic on invalid input")
		}
	}()
	MustParse("nope")
}

func TestSchedule_String(t *testing.T) {
	t.Parallel()

	if got := MustParse("@daily").String(); got != "@daily" {
		t.Errorf("String = %q", got)
	}
	if !MustParse("@daily").Matches(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)) {
		t.Error("@daily should match midnight")
	}
}
