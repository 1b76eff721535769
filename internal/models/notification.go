// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package models

import (
	"fmt"
	"time"
)

// NotificationKind identifies which signal produced a notification.
type NotificationKind string

// Notification kinds. The string values are the stable wire names.
const (
	KindSmartRecommendation NotificationKind = "smart_recommendation"
	KindPatternAlert        NotificationKind = "pattern_alert"
	KindLocationAware       NotificationKind = "location_aware"
	KindTimeOptimized       NotificationKind = "time_optimized"
	KindTravelInsight       NotificationKind = "travel_insight"
	KindFavoriteUpdate      NotificationKind = "favorite_update"
	KindSmartReminder       NotificationKind = "smart_reminder"
	KindWeatherAlert        NotificationKind = "weather_alert"
)

// AllKinds lists every notification kind in declaration order.
var AllKinds = []NotificationKind{
	KindSmartRecommendation,
	KindPatternAlert,
	KindLocationAware,
	KindTimeOptimized,
	KindTravelInsight,
	KindFavoriteUpdate,
	KindSmartReminder,
	KindWeatherAlert,
}

var kindDisplayNames = map[NotificationKind]string{
	KindSmartRecommendation: "Smart Travel Recommendation",
	KindPatternAlert:        "Pattern-Based Alert",
	KindLocationAware:       "Location-Aware Notification",
	KindTimeOptimized:       "Time-Optimized Alert",
	KindTravelInsight:       "Travel Insight",
	KindFavoriteUpdate:      "Favorite Place Update",
	KindSmartReminder:       "Smart Reminder",
	KindWeatherAlert:        "Weather Alert",
}

// DisplayName returns the human-readable name shown in settings screens.
func (k NotificationKind) DisplayName() string {
	if name, ok := kindDisplayNames[k]; ok {
		return name
	}
	return string(k)
}

// Valid reports whether k is a known kind.
func (k NotificationKind) Valid() bool {
	_, ok := kindDisplayNames[k]
	return ok
}

// ParseNotificationKind converts a wire name into a NotificationKind.
func ParseNotificationKind(s string) (NotificationKind, error) {
	k := NotificationKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown notification kind %q", s)
	}
	return k, nil
}

// NotificationState tracks a notification through scheduling.
//
//	Generated -> FilteredOut
//	Generated -> Scheduled -> Dispatched
//	Scheduled -> Cancelled
type NotificationState string

const (
	StateGenerated   NotificationState = "generated"
	StateFilteredOut NotificationState = "filtered_out"
	StateScheduled   NotificationState = "scheduled"
	StateDispatched  NotificationState = "dispatched"
	StateCancelled   NotificationState = "cancelled"
)

// Terminal reports whether no further transition is possible from s.
func (s NotificationState) Terminal() bool {
	return s == StateFilteredOut || s == StateDispatched || s == StateCancelled
}

// CanTransition reports whether moving from s to next is allowed.
func (s NotificationState) CanTransition(next NotificationState) bool {
	switch s {
	case StateGenerated:
		return next == StateFilteredOut || next == StateScheduled
	case StateScheduled:
		// Rescheduling an id replaces its pending trigger.
		return next == StateScheduled || next == StateDispatched || next == StateCancelled
	default:
		return false
	}
}

// Priority bounds. 5 is the most urgent.
const (
	MinNotificationPriority = 1
	MaxNotificationPriority = 5
)

// Notification is a generated candidate and, once scheduled, the record of its delivery.
//
// Priority and Relevance are assigned by the generator and never changed afterwards.
// The scheduler only rewrites ScheduledAt and State.
type Notification struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Body           string            `json:"body"`
	Kind           NotificationKind  `json:"kind"`
	Priority       int               `json:"priority"`
	Relevance      float64           `json:"relevance"`
	ScheduledAt    time.Time         `json:"scheduled_at"`
	RelatedPlaceID string            `json:"related_place_id,omitempty"`
	Category       string            `json:"category,omitempty"`
	State          NotificationState `json:"state"`
	CreatedAt      time.Time         `json:"created_at"`
	DeliveredAt    *time.Time        `json:"delivered_at,omitempty"`
}

// Engagement is a single engaged/dismissed signal recorded against a notification.
type Engagement struct {
	NotificationID string           `json:"notification_id"`
	Kind           NotificationKind `json:"kind,omitempty"`
	Engaged        bool             `json:"engaged"`
	Hour           int              `json:"hour"`
	Weekday        time.Weekday     `json:"weekday"`
	RecordedAt     time.Time        `json:"recorded_at"`
}
