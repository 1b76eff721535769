// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package services adapts Waypoint's periodic passes and the HTTP server to
suture's Serve(ctx) error contract.

# Available Services

LearningService:
  - Runs RunLearningAndRecommendationPass on a fixed interval
  - Optional pass at startup

NotificationPassService:
  - Runs GenerateAndScheduleNotifications on a cron schedule
  - Sleeps until the next matching minute in the clock's location
  - Returns suture.ErrDoNotRestart when the schedule can never fire

MaintenanceService:
  - Reschedules missed notifications every DueInterval
  - Removes expired records every CleanupInterval
  - Runs badger value log GC every GCInterval when a collector is set

HTTPServerService:
  - Converts ListenAndServe/Shutdown into Serve
  - http.ErrServerClosed is a clean stop

The runners are small interfaces satisfied by *personalize.Service, so each
loop is tested against a hand-written mock.

# Error Handling

A failed pass is logged and retried on the next tick; a loop only returns
when its context is canceled. Returning an error makes suture restart the
service with backoff.
*/
package services
