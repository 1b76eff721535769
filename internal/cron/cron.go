// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package cron parses standard 5-field cron expressions and answers
// "does this instant fall in the schedule" and "when is the next run".
package cron

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
	"time"
)

// Schedule is a parsed cron expression. Each field is a bitset: bit n is
// set when value n is allowed.
type Schedule struct {
	expr string

	minutes uint64 // 0-59
	hours   uint64 // 0-23
	dom     uint64 // 1-31
	months  uint64 // 1-12
	dow     uint64 // 0-6, 0 = Sunday

	domAny bool
	dowAny bool
}

var descriptors = map[string]string{
	"@hourly":   "0 * * * *",
	"@daily":    "0 0 * * *",
	"@midnight": "0 0 * * *",
	"@weekly":   "0 0 * * 0",
	"@monthly":  "0 0 1 * *",
	"@yearly":   "0 0 1 1 *",
}

// Parse parses a standard 5-field cron expression:
//
//	minute hour day-of-month month day-of-week
//
// Supported syntax: * (any), n, n-m, n,m,o, */s and n-m/s. Day-of-week
// accepts 0-7 where both 0 and 7 mean Sunday. The @hourly, @daily,
// @weekly, @monthly and @yearly shorthands are accepted.
//
// Examples:
//   - "*/15 * * * *" every 15 minutes
//   - "0 9 * * 1" Mondays at 9:00
//   - "* 18-23 * * 0" every minute of Sunday evening
func Parse(expr string) (*Schedule, error) {
	expr = strings.TrimSpace(expr)
	if d, ok := descriptors[strings.ToLower(expr)]; ok {
		s, err := Parse(d)
		if err != nil {
			return nil, err
		}
		s.expr = expr
		return s, nil
	}

	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return nil, fmt.Errorf("cron expression must have 5 fields, got %d", len(fields))
	}

	s := &Schedule{expr: expr}
	var err error

	if s.minutes, err = parseField(fields[0], 0, 59); err != nil {
		return nil, fmt.Errorf("invalid minute field: %w", err)
	}
	if s.hours, err = parseField(fields[1], 0, 23); err != nil {
		return nil, fmt.Errorf("invalid hour field: %w", err)
	}
	if s.dom, err = parseField(fields[2], 1, 31); err != nil {
		return nil, fmt.Errorf("invalid day-of-month field: %w", err)
	}
	if s.months, err = parseField(fields[3], 1, 12); err != nil {
		return nil, fmt.Errorf("invalid month field: %w", err)
	}
	dow, err := parseField(fields[4], 0, 7)
	if err != nil {
		return nil, fmt.Errorf("invalid day-of-week field: %w", err)
	}
	if dow&(1<<7) != 0 {
		dow = dow&^(1<<7) | 1
	}
	s.dow = dow

	s.domAny = fields[2] == "*"
	s.dowAny = fields[4] == "*"
	return s, nil
}

// MustParse is Parse for expressions known at compile time.
func MustParse(expr string) *Schedule {
	s, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return s
}

// String returns the expression the schedule was parsed from.
func (s *Schedule) String() string {
	return s.expr
}

// Matches reports whether t (to the minute, in t's location) falls in the
// schedule. Day-of-month and day-of-week are OR'd when both are
// restricted, as in standard cron.
func (s *Schedule) Matches(t time.Time) bool {
	return has(s.minutes, t.Minute()) &&
		has(s.hours, t.Hour()) &&
		s.dayMatches(t)
}

func (s *Schedule) dayMatches(t time.Time) bool {
	if !has(s.months, int(t.Month())) {
		return false
	}
	domMatch := has(s.dom, t.Day())
	dowMatch := has(s.dow, int(t.Weekday()))

	switch {
	case s.domAny && s.dowAny:
		return true
	case s.domAny:
		return dowMatch
	case s.dowAny:
		return domMatch
	default:
		return domMatch || dowMatch
	}
}

// maxSearch bounds Next for expressions that can never fire (Feb 30).
const maxSearch = 4 * 366 * 24 * time.Hour

// Next returns the first matching minute strictly after after, in
// after's location. It returns the zero time when nothing matches within
// four years.
func (s *Schedule) Next(after time.Time) time.Time {
	loc := after.Location()
	t := after.Add(time.Minute)
	t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc)
	limit := after.Add(maxSearch)

	for t.Before(limit) {
		if !s.dayMatches(t) {
			y, m, d := t.Date()
			t = time.Date(y, m, d+1, 0, 0, 0, 0, loc)
			continue
		}
		if !has(s.hours, t.Hour()) {
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, loc)
			continue
		}
		if !has(s.minutes, t.Minute()) {
			t = t.Add(time.Minute)
			continue
		}
		return t
	}
	return time.Time{}
}

// Hours returns the allowed hours in ascending order.
func (s *Schedule) Hours() []int {
	return members(s.hours)
}

func has(set uint64, v int) bool {
	return set&(1<<uint(v)) != 0
}

func members(set uint64) []int {
	out := make([]int, 0, bits.OnesCount64(set))
	for set != 0 {
		v := bits.TrailingZeros64(set)
		out = append(out, v)
		set &^= 1 << uint(v)
	}
	return out
}

func parseField(field string, minVal, maxVal int) (uint64, error) {
	var set uint64
	for _, part := range strings.Split(field, ",") {
		bitsFor, err := parsePart(part, minVal, maxVal)
		if err != nil {
			return 0, err
		}
		set |= bitsFor
	}
	return set, nil
}

func parsePart(part string, minVal, maxVal int) (uint64, error) {
	if part == "" {
		return 0, fmt.Errorf("empty value")
	}

	rangeExpr, step := part, 1
	if i := strings.IndexByte(part, '/'); i >= 0 {
		rangeExpr = part[:i]
		n, err := strconv.Atoi(part[i+1:])
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid step value: %s", part[i+1:])
		}
		step = n
	}

	start, end := minVal, maxVal
	switch {
	case rangeExpr == "*":
	case strings.Contains(rangeExpr, "-"):
		lo, hi, _ := strings.Cut(rangeExpr, "-")
		var err error
		if start, err = strconv.Atoi(lo); err != nil {
			return 0, fmt.Errorf("invalid range start: %s", lo)
		}
		if end, err = strconv.Atoi(hi); err != nil {
			return 0, fmt.Errorf("invalid range end: %s", hi)
		}
	default:
		v, err := strconv.Atoi(rangeExpr)
		if err != nil {
			return 0, fmt.Errorf("invalid value: %s", rangeExpr)
		}
		start = v
		end = v
		if step > 1 {
			end = maxVal
		}
	}

	if start > end || start < minVal || end > maxVal {
		return 0, fmt.Errorf("value out of range: %d-%d (min=%d, max=%d)", start, end, minVal, maxVal)
	}

	var set uint64
	for v := start; v <= end; v += step {
		set |= 1 << uint(v)
	}
	return set, nil
}
