// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// getHistogramCount extracts the sample count from a Prometheus histogram
func getHistogramCount(h prometheus.Histogram) uint64 {
	var m io_prometheus_client.Metric
	if err := h.Write(&m); err != nil {
		return 0
	}
	return m.GetHistogram().GetSampleCount()
}

// TestRecordLearningPass verifies signal counters and gauges
func TestRecordLearningPass(t *testing.T) {
	visits := testutil.ToFloat64(LearningSignals.WithLabelValues("visit"))
	favs := testutil.ToFloat64(LearningSignals.WithLabelValues("favorite"))
	errs := testutil.ToFloat64(LearningPassErrors)

	RecordLearningPass(10*time.Millisecond, 3, 1, 2, 2, 0.94, nil)

	if got := testutil.ToFloat64(LearningSignals.WithLabelValues("visit")) - visits; got != 3 {
		t.Errorf("visit signals delta = %v, want 3", got)
	}
	if got := testutil.ToFloat64(LearningSignals.WithLabelValues("favorite")) - favs; got != 1 {
		t.Errorf("favorite signals delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(PreferenceCategories); got != 2 {
		t.Errorf("PreferenceCategories = %v, want 2", got)
	}
	if got := testutil.ToFloat64(DiversityScore); got != 0.94 {
		t.Errorf("DiversityScore = %v, want 0.94", got)
	}

	// A failed pass only counts the error.
	RecordLearningPass(time.Millisecond, 100, 100, 100, 9, 0.1, errors.New("catalog unavailable"))
	if got := testutil.ToFloat64(LearningPassErrors) - errs; got != 1 {
		t.Errorf("LearningPassErrors delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(PreferenceCategories); got != 2 {
		t.Errorf("PreferenceCategories changed on failure: %v", got)
	}
}

// TestRecordSearch verifies query and fallback modes
func TestRecordSearch(t *testing.T) {
	tests := []struct {
		name     string
		fallback bool
		results  int
		mode     string
		served   float64
	}{
		{name: "text query", fallback: false, results: 4, mode: "query", served: 0},
		{name: "blank query falls back", fallback: true, results: 3, mode: "fallback", served: 3},
		{name: "no results", fallback: false, results: 0, mode: "query", served: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(SearchQueries.WithLabelValues(tt.mode))
			servedBefore := testutil.ToFloat64(RecommendationsServed)

			RecordSearch(tt.fallback, tt.results)

			if got := testutil.ToFloat64(SearchQueries.WithLabelValues(tt.mode)) - before; got != 1 {
				t.Errorf("%s queries delta = %v, want 1", tt.mode, got)
			}
			if got := testutil.ToFloat64(RecommendationsServed) - servedBefore; got != tt.served {
				t.Errorf("recommendations served delta = %v, want %v", got, tt.served)
			}
		})
	}
}

// TestRecordNotificationPass verifies per-kind and per-source counters
func TestRecordNotificationPass(t *testing.T) {
	recBefore := testutil.ToFloat64(NotificationsGenerated.WithLabelValues("smart_recommendation"))
	failBefore := testutil.ToFloat64(GeneratorSourceFailures.WithLabelValues("location"))

	RecordNotificationPass(5*time.Millisecond,
		map[string]int{"smart_recommendation": 3, "pattern_alert": 1},
		[]string{"location"})

	if got := testutil.ToFloat64(NotificationsGenerated.WithLabelValues("smart_recommendation")) - recBefore; got != 3 {
		t.Errorf("generated delta = %v, want 3", got)
	}
	if got := testutil.ToFloat64(GeneratorSourceFailures.WithLabelValues("location")) - failBefore; got != 1 {
		t.Errorf("source failures delta = %v, want 1", got)
	}
}

// TestRecordScheduleOutcome verifies filter reasons are split
func TestRecordScheduleOutcome(t *testing.T) {
	policy := testutil.ToFloat64(NotificationsFiltered.WithLabelValues("policy"))
	capped := testutil.ToFloat64(NotificationsFiltered.WithLabelValues("daily_cap"))
	terminal := testutil.ToFloat64(NotificationsFiltered.WithLabelValues("terminal"))
	scheduled := testutil.ToFloat64(NotificationsScheduled.WithLabelValues("travel_insight"))

	RecordScheduleOutcome(map[string]int{"travel_insight": 2}, 4, 10, 0)

	if got := testutil.ToFloat64(NotificationsFiltered.WithLabelValues("policy")) - policy; got != 4 {
		t.Errorf("policy delta = %v, want 4", got)
	}
	if got := testutil.ToFloat64(NotificationsFiltered.WithLabelValues("daily_cap")) - capped; got != 10 {
		t.Errorf("daily_cap delta = %v, want 10", got)
	}
	if got := testutil.ToFloat64(NotificationsFiltered.WithLabelValues("terminal")) - terminal; got != 0 {
		t.Errorf("terminal delta = %v, want 0", got)
	}
	if got := testutil.ToFloat64(NotificationsScheduled.WithLabelValues("travel_insight")) - scheduled; got != 2 {
		t.Errorf("scheduled delta = %v, want 2", got)
	}
}

// TestRecordDeliveryAttempt verifies result classification
func TestRecordDeliveryAttempt(t *testing.T) {
	tests := []struct {
		name      string
		success   bool
		transient bool
		result    string
	}{
		{name: "success", success: true, result: "success"},
		{name: "success ignores transient flag", success: true, transient: true, result: "success"},
		{name: "transient failure", transient: true, result: "transient"},
		{name: "permanent failure", result: "permanent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(DeliveryAttempts.WithLabelValues("webhook", tt.result))
			RecordDeliveryAttempt("webhook", 20*time.Millisecond, tt.success, tt.transient)
			if got := testutil.ToFloat64(DeliveryAttempts.WithLabelValues("webhook", tt.result)) - before; got != 1 {
				t.Errorf("%s delta = %v, want 1", tt.result, got)
			}
		})
	}
}

// TestRecordEngagement verifies the engaged label
func TestRecordEngagement(t *testing.T) {
	engaged := testutil.ToFloat64(Engagements.WithLabelValues("true"))
	dismissed := testutil.ToFloat64(Engagements.WithLabelValues("false"))

	RecordEngagement(true)
	RecordEngagement(false)
	RecordEngagement(false)

	if got := testutil.ToFloat64(Engagements.WithLabelValues("true")) - engaged; got != 1 {
		t.Errorf("engaged delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(Engagements.WithLabelValues("false")) - dismissed; got != 2 {
		t.Errorf("dismissed delta = %v, want 2", got)
	}
}

// TestRecordStoreOperation verifies errors are counted separately
func TestRecordStoreOperation(t *testing.T) {
	before := testutil.ToFloat64(StoreOperationErrors.WithLabelValues("get", "policy"))

	RecordStoreOperation("get", "policy", time.Millisecond, nil)
	RecordStoreOperation("get", "policy", time.Millisecond, errors.New("key not found"))

	if got := testutil.ToFloat64(StoreOperationErrors.WithLabelValues("get", "policy")) - before; got != 1 {
		t.Errorf("store errors delta = %v, want 1", got)
	}
}

// TestSimpleRecorders covers the single-counter helpers
func TestSimpleRecorders(t *testing.T) {
	cancelled := testutil.ToFloat64(NotificationsCancelled)
	dispatched := testutil.ToFloat64(NotificationsDispatched.WithLabelValues("pattern_alert"))
	published := testutil.ToFloat64(EventsPublished.WithLabelValues("notification.dispatched"))
	served := testutil.ToFloat64(RecommendationsServed)

	RecordCancellation(3)
	RecordDispatch("pattern_alert")
	RecordEventPublished("notification.dispatched")
	RecordRecommendations(5)

	if got := testutil.ToFloat64(NotificationsCancelled) - cancelled; got != 3 {
		t.Errorf("cancelled delta = %v, want 3", got)
	}
	if got := testutil.ToFloat64(NotificationsDispatched.WithLabelValues("pattern_alert")) - dispatched; got != 1 {
		t.Errorf("dispatched delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(EventsPublished.WithLabelValues("notification.dispatched")) - published; got != 1 {
		t.Errorf("published delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(RecommendationsServed) - served; got != 5 {
		t.Errorf("served delta = %v, want 5", got)
	}
}

// TestRecordAPIRequest tests API request metric recording
func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		endpoint   string
		statusCode string
		duration   time.Duration
	}{
		{name: "recommendations", method: "GET", endpoint: "/api/v1/recommendations", statusCode: "200", duration: 5 * time.Millisecond},
		{name: "bad search", method: "GET", endpoint: "/api/v1/search", statusCode: "400", duration: time.Millisecond},
		{name: "policy update", method: "PUT", endpoint: "/api/v1/policy", statusCode: "204", duration: 2 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.statusCode))
			RecordAPIRequest(tt.method, tt.endpoint, tt.statusCode, tt.duration)
			if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.statusCode)) - before; got != 1 {
				t.Errorf("requests delta = %v, want 1", got)
			}
		})
	}
}

// TestRecordRateLimitHit verifies the rejection counter per endpoint
func TestRecordRateLimitHit(t *testing.T) {
	before := testutil.ToFloat64(APIRateLimitHits.WithLabelValues("/api/v1/places"))
	RecordRateLimitHit("/api/v1/places")
	RecordRateLimitHit("/api/v1/places")
	if got := testutil.ToFloat64(APIRateLimitHits.WithLabelValues("/api/v1/places")) - before; got != 2 {
		t.Errorf("rate limit delta = %v, want 2", got)
	}
}

// TestTrackActiveRequest_RequestLifecycle verifies the gauge returns to its start value
func TestTrackActiveRequest_RequestLifecycle(t *testing.T) {
	start := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests) - start; got != 2 {
		t.Errorf("active delta = %v, want 2", got)
	}

	TrackActiveRequest(false)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != start {
		t.Errorf("active = %v, want %v", got, start)
	}
}

// TestConcurrentMetricRecording tests thread safety of metric recording
func TestConcurrentMetricRecording(t *testing.T) {
	var wg sync.WaitGroup
	numGoroutines := 50
	operationsPerGoroutine := 20

	before := testutil.ToFloat64(NotificationsDispatched.WithLabelValues("smart_reminder"))

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				RecordDispatch("smart_reminder")
				RecordDeliveryAttempt("in_app", time.Millisecond, true, false)
				TrackActiveRequest(true)
				TrackActiveRequest(false)
			}
		}()
	}
	wg.Wait()

	want := float64(numGoroutines * operationsPerGoroutine)
	if got := testutil.ToFloat64(NotificationsDispatched.WithLabelValues("smart_reminder")) - before; got != want {
		t.Errorf("dispatched delta = %v, want %v", got, want)
	}
}

// TestCircuitBreakerMetrics tests circuit breaker metric recording
func TestCircuitBreakerMetrics(t *testing.T) {
	cbName := "webhook"

	CircuitBreakerState.WithLabelValues(cbName).Set(2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues(cbName)); got != 2 {
		t.Errorf("state = %v, want 2", got)
	}

	before := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues(cbName, "closed", "open"))
	CircuitBreakerTransitions.WithLabelValues(cbName, "closed", "open").Inc()
	if got := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues(cbName, "closed", "open")) - before; got != 1 {
		t.Errorf("transitions delta = %v, want 1", got)
	}

	CircuitBreakerRequests.WithLabelValues(cbName, "rejected").Inc()
}

// TestAppInfo verifies build info is published as a constant 1
func TestAppInfo(t *testing.T) {
	SetAppInfo("1.0.0", "go1.24")
	if got := testutil.ToFloat64(AppInfo.WithLabelValues("1.0.0", "go1.24")); got != 1 {
		t.Errorf("app_info = %v, want 1", got)
	}
}

// TestPassDurationHistograms verifies both pass timers observe once per call,
// failed learning passes included
func TestPassDurationHistograms(t *testing.T) {
	learning := getHistogramCount(LearningPassDuration)
	passes := getHistogramCount(NotificationPassDuration)

	RecordLearningPass(5*time.Millisecond, 1, 0, 0, 2, 0.94, nil)
	RecordLearningPass(5*time.Millisecond, 0, 0, 0, 0, 0, errors.New("boom"))
	RecordNotificationPass(20*time.Millisecond, map[string]int{"smart_recommendation": 1}, nil)

	if got := getHistogramCount(LearningPassDuration) - learning; got != 2 {
		t.Errorf("learning pass observations = %d, want 2", got)
	}
	if got := getHistogramCount(NotificationPassDuration) - passes; got != 1 {
		t.Errorf("notification pass observations = %d, want 1", got)
	}
}

// TestMetricGathering tests that metrics can be gathered using testutil
func TestMetricGathering(t *testing.T) {
	RecordAPIRequest("GET", "/test", "200", time.Millisecond)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Logf("Lint errors (may be expected): %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s", p.Text)
	}
}
