// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package events

import (
	"time"

	"github.com/tomtom215/waypoint/internal/models"
)

// Topics.
const (
	TopicNotificationDispatched = "notification.dispatched"
	TopicNotificationEngagement = "notification.engagement"
	TopicLearningCompleted      = "learning.completed"
)

// Metadata keys set on every message.
const (
	MetadataCorrelationID = "correlation_id"
	MetadataEventType     = "event_type"
)

// NotificationDispatched is published after a due trigger went through
// the delivery channels.
type NotificationDispatched struct {
	Notification models.Notification `json:"notification"`
	Delivered    bool                `json:"delivered"`
	Channels     []string            `json:"channels,omitempty"`
	DispatchedAt time.Time           `json:"dispatched_at"`
}

// EngagementRecorded is published when the user engaged with or dismissed
// a notification.
type EngagementRecorded struct {
	Engagement models.Engagement `json:"engagement"`
}

// LearningCompleted is published at the end of each learning pass.
type LearningCompleted struct {
	Insights    models.Insights `json:"insights"`
	Categories  int             `json:"categories"`
	CompletedAt time.Time       `json:"completed_at"`
}
