// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package scheduler decides which notification candidates are delivered and
when.

A pass through ScheduleMany:

 1. Drops ids already dispatched or cancelled.
 2. Filters by policy: kind enabled, priority and relevance floors.
 3. Orders survivors by priority then relevance, both descending, and keeps
    at most MaxDailyCount.
 4. Spaces item i to no earlier than now + i*MinSpacing.
 5. Moves each time out of quiet hours, then towards a peak hour when it is
    far enough in the future, then floors it at now + MinLead.
 6. Hands the trigger to the delivery.Transport.

Items are adjusted independently, so two items may swap relative order
after step 5. They are not re-sorted.

State per id follows models.NotificationState:

	Generated -> FilteredOut
	Generated -> Scheduled -> Dispatched
	Scheduled -> Cancelled

Scheduling an id that is still pending replaces its trigger. Engagement
signals recorded with RecordEngagement feed per-hour and per-weekday
statistics and never change scheduled items.
*/
package scheduler
