// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package models defines data structures shared across Waypoint.

Key Components:

  - Place, Favorite, SearchRecord: behavioral inputs read from the catalog
  - ScoredCandidate: a place with its ranking score and score breakdown
  - Notification: a generated candidate and the record of its delivery
  - NotificationKind, NotificationState: notification type and lifecycle
  - Policy: the user's notification preferences (quiet hours, caps, floors)
  - APIResponse: standardized HTTP response wrapper

Notification lifecycle:

	Generated -> FilteredOut                 (policy rejected it)
	Generated -> Scheduled -> Dispatched     (delivered by the transport)
	Scheduled -> Cancelled                   (explicit cancel before dispatch)

Usage Example:

	import "github.com/tomtom215/waypoint/internal/models"

	policy := models.DefaultPolicy()
	if policy.InQuietHours(23) {
	    // defer delivery
	}

Thread Safety:

Models are plain values with no internal synchronization. Policy.Clone
returns an independent copy that can be handed to another goroutine.
*/
package models
