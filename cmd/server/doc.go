// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package main is the entry point for the Waypoint server application.

Waypoint learns a traveller's category preferences from visits, favorites
and searches, ranks places and search results with them, and turns the
result into notifications that are filtered by the user's policy and
scheduled around quiet hours and peak engagement hours.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("waypoint")
	├── DataSupervisor ("data-layer")
	│   └── Maintenance (due recovery, retention cleanup, value log GC)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── Event consumer (optional, EVENTS_ENABLED)
	│   ├── Trigger transport (fires scheduled notifications)
	│   ├── Learning worker
	│   ├── Learning pass (fixed interval)
	│   └── Notification pass (cron schedule)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (Chi router)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config file and environment
 2. Logging: zerolog with JSON/console output modes
 3. Store: BadgerDB, seeded with the configured default policy
 4. Pipeline: engine, ranker, detector, generator, scheduler, delivery
 5. Service: personalize.Service, restored from the store
 6. Supervisor Tree: Suture v4 process supervision
 7. HTTP Server: Chi router with middleware stack

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervisor stops every
service, the HTTP server drains in-flight requests, and the store is
closed last.

# Example Usage

	export NOTIFY_TIMEZONE=Europe/Paris
	export NOTIFY_PASS_SCHEDULE="0 8-20/2 * * *"
	export WEBHOOK_URL=https://hooks.example.com/waypoint
	./waypoint
*/
package main
