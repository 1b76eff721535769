// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package events carries domain events over an in-process watermill
// GoChannel pub/sub.
//
// The personalization service publishes NotificationDispatched,
// EngagementRecorded and LearningCompleted. Consumer subscribes to all
// three through a watermill router with Recoverer and Retry middleware and
// persists dispatch records and engagement signals to the store.
package events
