// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package personalize is the application service behind the HTTP API and
// the background loops. It owns no algorithms of its own; it reads the
// catalog once per pass and drives the packages that do.
//
// Data flows one way:
//
//	catalog -> recommend (learn) -> search / generator -> scheduler -> transport -> Dispatch -> delivery
//
// Only engagement feedback flows back, into the scheduler's timing
// statistics.
//
// # Passes
//
//   - RunLearningAndRecommendationPass rebuilds the preference model from a
//     fresh catalog snapshot and refreshes the search and nearby indexes.
//   - GenerateAndScheduleNotifications reads the catalog and policy once,
//     generates candidates from every source and schedules the survivors.
//     A failing source is logged and skipped; only a catalog or policy read
//     failure aborts the pass.
//
// # Persistence
//
// Scheduled and cancelled records are written to the store directly.
// Dispatched records and engagement signals are published on the event bus
// and persisted by the event consumer; when no bus is configured, or
// publishing fails, they are written directly.
//
// # Maintenance
//
// CleanupOldNotifications drops terminal records past the retention
// period. ProcessDueNotifications re-hands scheduled records whose trigger
// never fired. Restore replays persisted state at startup.
package personalize
