// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package config provides centralized configuration management for Waypoint.

Configuration is loaded with Koanf v2 from three layers, later layers
overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: CONFIG_PATH, else the first of DefaultConfigPaths
 3. Environment variables listed in envMappings

Each package owns its own section type (store.Config, recommend.Config,
scheduler.Config and so on); Config only composes them. Load validates the
result and returns an error naming the failing section.

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT (default: 0.0.0.0:8088)
  - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - ENVIRONMENT: development or production
  - CORS_ORIGINS: comma-separated list (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Storage:
  - STORAGE_PATH, STORAGE_IN_MEMORY, STORAGE_SYNC_WRITES, STORAGE_GC_INTERVAL

Notifications:
  - NOTIFY_PASS_SCHEDULE: cron expression (default: "0 * * * *")
  - NOTIFY_TIMEZONE: IANA zone for quiet and peak hours
  - NOTIFY_PEAK_HOURS: comma-separated hours, e.g. "9,13,19"
  - NOTIFY_DISABLED_KINDS: comma-separated kinds disabled in the default policy
  - NOTIFY_QUIET_START, NOTIFY_QUIET_END, NOTIFY_MAX_DAILY, NOTIFY_MIN_SPACING

Delivery:
  - WEBHOOK_URL: enables the webhook channel when set
  - WEBHOOK_RATE_LIMIT, WEBHOOK_BURST, WEBHOOK_AUTHORIZATION

See envMappings for the full list.

# Example File

	server:
	  port: 8088
	  cors_origins: ["https://app.example.com"]
	  environment: production
	notifications:
	  pass_schedule: "0,30 * * * *"
	  timezone: Asia/Kolkata
	  scheduler:
	    peak_hours: [9, 13, 19]
	  default_policy:
	    quiet_hours_start: 22
	    quiet_hours_end: 7
	    max_daily_count: 6
*/
package config
