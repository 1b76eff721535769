// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered with the default registry at package init through
promauto. Callers record values with the Record* helpers rather than touching
collectors directly.

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Learning:
  - waypoint_learning_pass_duration_seconds (histogram)
  - waypoint_learning_pass_errors_total (counter)
  - waypoint_learning_signals_total (counter). Labels: signal
  - waypoint_preference_categories (gauge)
  - waypoint_diversity_score (gauge)

Recommendation and search:
  - waypoint_recommendations_served_total (counter)
  - waypoint_search_queries_total (counter). Labels: mode (query, fallback)
  - waypoint_search_results (histogram)

Notifications:
  - waypoint_notifications_generated_total (counter). Labels: kind
  - waypoint_notifications_filtered_total (counter). Labels: reason (policy, daily_cap, terminal)
  - waypoint_notifications_scheduled_total (counter). Labels: kind
  - waypoint_notifications_cancelled_total (counter)
  - waypoint_notifications_dispatched_total (counter). Labels: kind
  - waypoint_notification_pass_duration_seconds (histogram)
  - waypoint_generator_source_failures_total (counter). Labels: source
  - waypoint_pending_triggers (gauge)
  - waypoint_engagements_total (counter). Labels: engaged

Delivery:
  - waypoint_delivery_attempts_total (counter). Labels: channel, result
  - waypoint_delivery_duration_seconds (histogram). Labels: channel
  - circuit_breaker_state (gauge). Labels: name. Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total (counter). Labels: name, result
  - circuit_breaker_state_transitions_total (counter). Labels: name, from_state, to_state

Storage and events:
  - waypoint_store_operation_duration_seconds (histogram). Labels: operation, bucket
  - waypoint_store_operation_errors_total (counter). Labels: operation, bucket
  - waypoint_events_published_total (counter). Labels: topic

API:
  - api_requests_total (counter). Labels: method, endpoint, status_code
  - api_request_duration_seconds (histogram). Labels: method, endpoint
  - api_active_requests (gauge)
  - api_rate_limit_hits_total (counter). Labels: endpoint

# Usage Example

	start := time.Now()
	stats, err := worker.Submit(ctx, input)
	metrics.RecordLearningPass(time.Since(start), stats.Visits, stats.Favorites,
	    stats.SearchesMatched, stats.Categories, engine.DiversityScore(), err)

Example PromQL queries:

	# Notifications scheduled per hour by kind
	sum by (kind) (rate(waypoint_notifications_scheduled_total[1h])) * 3600

	# Webhook failure ratio
	sum(rate(waypoint_delivery_attempts_total{channel="webhook",result!="success"}[5m]))
	  / sum(rate(waypoint_delivery_attempts_total{channel="webhook"}[5m]))

# Thread Safety

All recording functions are safe for concurrent use. The Prometheus client
library handles synchronization internally.

# Cardinality Management

Labels are limited to bounded sets: notification kinds, generator source
names, channel names and route patterns. Notification ids and place ids are
never used as label values.
*/
package metrics
