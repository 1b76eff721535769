// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Learning and recommendation passes
// - Search ranking
// - Notification generation, scheduling and delivery
// - Storage operations (Badger)
// - API endpoint latency and throughput

var (
	// Learning Metrics
	LearningPassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "waypoint_learning_pass_duration_seconds",
			Help:    "Duration of a learning and recommendation pass in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
	)

	LearningPassErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "waypoint_learning_pass_errors_total",
			Help: "Total number of learning passes that ended with an error",
		},
	)

	LearningSignals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_learning_signals_total",
			Help: "Total number of signals consumed by learning passes",
		},
		[]string{"signal"}, // "visit", "favorite", "search"
	)

	PreferenceCategories = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "waypoint_preference_categories",
			Help: "Number of categories with a learned preference weight",
		},
	)

	DiversityScore = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "waypoint_diversity_score",
			Help: "Normalized entropy of the learned category preferences",
		},
	)

	// Recommendation and Search Metrics
	RecommendationsServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "waypoint_recommendations_served_total",
			Help: "Total number of recommended places returned to callers",
		},
	)

	SearchQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_search_queries_total",
			Help: "Total number of ranked search queries",
		},
		[]string{"mode"}, // "query", "fallback"
	)

	SearchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "waypoint_search_results",
			Help:    "Number of results returned per search query",
			Buckets: []float64{0, 1, 3, 5, 10, 20, 50},
		},
	)

	// Notification Metrics
	NotificationsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_notifications_generated_total",
			Help: "Total number of notification candidates generated",
		},
		[]string{"kind"},
	)

	NotificationsFiltered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_notifications_filtered_total",
			Help: "Total number of candidates rejected before scheduling",
		},
		[]string{"reason"}, // "policy", "daily_cap", "terminal"
	)

	NotificationsScheduled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_notifications_scheduled_total",
			Help: "Total number of notifications handed to the transport",
		},
		[]string{"kind"},
	)

	NotificationsCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "waypoint_notifications_cancelled_total",
			Help: "Total number of scheduled notifications cancelled",
		},
	)

	NotificationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_notifications_dispatched_total",
			Help: "Total number of notifications whose trigger fired",
		},
		[]string{"kind"},
	)

	NotificationPassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "waypoint_notification_pass_duration_seconds",
			Help:    "Duration of a generate-and-schedule pass in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
	)

	GeneratorSourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_generator_source_failures_total",
			Help: "Total number of generator source failures",
		},
		[]string{"source"},
	)

	PendingTriggers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "waypoint_pending_triggers",
			Help: "Current number of triggers waiting in the transport",
		},
	)

	Engagements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_engagements_total",
			Help: "Total number of engagement signals recorded",
		},
		[]string{"engaged"}, // "true", "false"
	)

	// Delivery Metrics
	DeliveryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_delivery_attempts_total",
			Help: "Total number of delivery attempts per channel",
		},
		[]string{"channel", "result"}, // result: "success", "transient", "permanent"
	)

	DeliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "waypoint_delivery_duration_seconds",
			Help:    "Duration of delivery attempts in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"channel"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Storage Metrics
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "waypoint_store_operation_duration_seconds",
			Help:    "Duration of Badger store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "bucket"},
	)

	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_store_operation_errors_total",
			Help: "Total number of failed Badger store operations",
		},
		[]string{"operation", "bucket"},
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_events_published_total",
			Help: "Total number of events published to the bus",
		},
		[]string{"topic"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of requests rejected by rate limiting",
		},
		[]string{"endpoint"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordLearningPass records one learning pass.
func RecordLearningPass(duration time.Duration, visits, favorites, searches, categories int, diversity float64, err error) {
	LearningPassDuration.Observe(duration.Seconds())
	if err != nil {
		LearningPassErrors.Inc()
		return
	}
	LearningSignals.WithLabelValues("visit").Add(float64(visits))
	LearningSignals.WithLabelValues("favorite").Add(float64(favorites))
	LearningSignals.WithLabelValues("search").Add(float64(searches))
	PreferenceCategories.Set(float64(categories))
	DiversityScore.Set(diversity)
}

// RecordSearch records a ranked search query. fallback marks blank queries
// answered by the recommendation engine.
func RecordSearch(fallback bool, results int) {
	mode := "query"
	if fallback {
		mode = "fallback"
		RecommendationsServed.Add(float64(results))
	}
	SearchQueries.WithLabelValues(mode).Inc()
	SearchResults.Observe(float64(results))
}

// RecordRecommendations records recommendations returned to a caller.
func RecordRecommendations(count int) {
	RecommendationsServed.Add(float64(count))
}

// RecordNotificationPass records one generate-and-schedule pass.
func RecordNotificationPass(duration time.Duration, generated map[string]int, failedSources []string) {
	NotificationPassDuration.Observe(duration.Seconds())
	for kind, n := range generated {
		NotificationsGenerated.WithLabelValues(kind).Add(float64(n))
	}
	for _, source := range failedSources {
		GeneratorSourceFailures.WithLabelValues(source).Inc()
	}
}

// RecordScheduleOutcome records what the scheduler did with a batch.
func RecordScheduleOutcome(scheduledByKind map[string]int, filtered, capped, terminal int) {
	for kind, n := range scheduledByKind {
		NotificationsScheduled.WithLabelValues(kind).Add(float64(n))
	}
	if filtered > 0 {
		NotificationsFiltered.WithLabelValues("policy").Add(float64(filtered))
	}
	if capped > 0 {
		NotificationsFiltered.WithLabelValues("daily_cap").Add(float64(capped))
	}
	if terminal > 0 {
		NotificationsFiltered.WithLabelValues("terminal").Add(float64(terminal))
	}
}

// RecordDispatch records a fired trigger.
func RecordDispatch(kind string) {
	NotificationsDispatched.WithLabelValues(kind).Inc()
}

// RecordCancellation records cancelled notifications.
func RecordCancellation(count int) {
	NotificationsCancelled.Add(float64(count))
}

// RecordEngagement records an engagement or dismissal signal.
func RecordEngagement(engaged bool) {
	Engagements.WithLabelValues(strconv.FormatBool(engaged)).Inc()
}

// RecordDeliveryAttempt records a single channel send.
func RecordDeliveryAttempt(channel string, duration time.Duration, success, transient bool) {
	result := "success"
	switch {
	case success:
	case transient:
		result = "transient"
	default:
		result = "permanent"
	}
	DeliveryAttempts.WithLabelValues(channel, result).Inc()
	DeliveryDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordStoreOperation records a Badger operation.
func RecordStoreOperation(operation, bucket string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(operation, bucket).Observe(duration.Seconds())
	if err != nil {
		StoreOperationErrors.WithLabelValues(operation, bucket).Inc()
	}
}

// RecordEventPublished records an event published on topic.
func RecordEventPublished(topic string) {
	EventsPublished.WithLabelValues(topic).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// SetAppInfo publishes build information.
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}

// RecordRateLimitHit counts a request rejected by the HTTP rate limiter.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}
