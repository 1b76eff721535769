// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/personalize"
)

// testEnvelope mirrors models.APIResponse with Data left raw.
type testEnvelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

// newTestRouter builds the full router over svc with rate limiting off.
func newTestRouter(svc Service) http.Handler {
	cfg := DefaultChiMiddlewareConfig()
	cfg.CORSAllowedOrigins = []string{"https://app.example.com"}
	cfg.RateLimitDisabled = true
	return NewRouter(NewHandler(svc, "test"), NewChiMiddleware(cfg)).SetupChi()
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) testEnvelope {
	t.Helper()
	env := decodeEnvelope(t, rec)
	if env.Status != "success" {
		t.Fatalf("status = %q, error = %+v", env.Status, env.Error)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
	return env
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) testEnvelope {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env.Status != "error" || env.Error == nil {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	if env.Error.Code != code {
		t.Errorf("error code = %q, want %q", env.Error.Code, code)
	}
	return env
}

// --- Test: health ---

func TestHealth(t *testing.T) {
	t.Parallel()

	t.Run("healthy with last pass", func(t *testing.T) {
		t.Parallel()
		svc := newMockService()
		svc.pending = []models.Notification{{ID: "n1"}, {ID: "n2"}}
		svc.lastPass = &personalize.PassSummary{Scheduled: 2}

		rec := doRequest(t, newTestRouter(svc), http.MethodGet, "/api/v1/health", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var health HealthStatus
		decodeData(t, rec, &health)
		if health.Status != "healthy" || !health.StoreReachable {
			t.Errorf("health = %+v", health)
		}
		if health.PendingCount != 2 {
			t.Errorf("PendingCount = %d, want 2", health.PendingCount)
		}
		if health.LastNotificationPass == nil || health.LastNotificationPass.Scheduled != 2 {
			t.Errorf("LastNotificationPass = %+v", health.LastNotificationPass)
		}
		if health.Version != "test" {
			t.Errorf("Version = %q", health.Version)
		}
	})

	t.Run("degraded when store fails", func(t *testing.T) {
		t.Parallel()
		svc := newMockService()
		svc.storeErr = errStore

		rec := doRequest(t, newTestRouter(svc), http.MethodGet, "/api/v1/health", "")
		var health HealthStatus
		decodeData(t, rec, &health)
		if health.Status != "degraded" || health.StoreReachable {
			t.Errorf("health = %+v, want degraded", health)
		}
	})

	t.Run("ready reports 503 when store fails", func(t *testing.T) {
		t.Parallel()
		svc := newMockService()
		svc.storeErr = errStore
		rec := doRequest(t, newTestRouter(svc), http.MethodGet, "/api/v1/health/ready", "")
		expectError(t, rec, http.StatusServiceUnavailable, ErrCodeStorage)
	})

	t.Run("live always answers", func(t *testing.T) {
		t.Parallel()
		svc := newMockService()
		svc.storeErr = errStore
		rec := doRequest(t, newTestRouter(svc), http.MethodGet, "/api/v1/health/live", "")
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}

// --- Test: catalog ---

func TestCreatePlace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		status    int
		code      string
		wantField string
	}{
		{
			name:   "valid place gets generated id",
			body:   `{"name":"Blue Tokai","category":"cafes","rating":4.5,"latitude":19.07,"longitude":72.99}`,
			status: http.StatusCreated,
		},
		{
			name:      "latitude out of range",
			body:      `{"name":"Nowhere","category":"cafes","latitude":120,"longitude":0}`,
			status:    http.StatusBadRequest,
			code:      ErrCodeValidation,
			wantField: "latitude",
		},
		{
			name:      "missing category",
			body:      `{"name":"Somewhere","latitude":1,"longitude":1}`,
			status:    http.StatusBadRequest,
			code:      ErrCodeValidation,
			wantField: "category",
		},
		{
			name:   "malformed json",
			body:   `{"name":`,
			status: http.StatusBadRequest,
			code:   ErrCodeInvalidBody,
		},
		{
			name:   "unknown field",
			body:   `{"name":"A","category":"cafes","stars":5}`,
			status: http.StatusBadRequest,
			code:   ErrCodeInvalidBody,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newMockService()
			rec := doRequest(t, newTestRouter(svc), http.MethodPost, "/api/v1/places", tt.body)

			if tt.code != "" {
				env := expectError(t, rec, tt.status, tt.code)
				if tt.wantField != "" && env.Error.Details["field"] != tt.wantField {
					t.Errorf("details.field = %v, want %s", env.Error.Details["field"], tt.wantField)
				}
				if len(svc.places) != 0 {
					t.Error("invalid place should not reach the service")
				}
				return
			}

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			var p models.Place
			decodeData(t, rec, &p)
			if p.ID == "" {
				t.Error("id should be generated")
			}
			if len(svc.places) != 1 || svc.places[0].ID != p.ID {
				t.Errorf("service places = %+v", svc.places)
			}
		})
	}
}

func TestCreatePlace_StoreFailure(t *testing.T) {
	t.Parallel()

	svc := newMockService()
	svc.storeErr = errStore
	rec := doRequest(t, newTestRouter(svc), http.MethodPost, "/api/v1/places",
		`{"id":"p1","name":"A","category":"cafes","latitude":1,"longitude":1}`)
	expectError(t, rec, http.StatusInternalServerError, ErrCodeStorage)
}

func TestListPlaces_EmptyIsArray(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, newTestRouter(newMockService()), http.MethodGet, "/api/v1/places", "")
	env := decodeEnvelope(t, rec)
	if string(env.Data) != "[]" {
		t.Errorf("data = %s, want []", env.Data)
	}
}

func TestCreateFavoriteAndSearch(t *testing.T) {
	t.Parallel()

	svc := newMockService()
	h := newTestRouter(svc)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/favorites", `{"name":"Cafe Mondegar","category":"cafes","rating":4.2}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("favorite status = %d (%s)", rec.Code, rec.Body.String())
	}
	var f models.Favorite
	decodeData(t, rec, &f)
	if f.ID == "" || f.AddedAt.IsZero() {
		t.Errorf("favorite = %+v, want id and added_at", f)
	}

	rec = doRequest(t, h, http.MethodPost, "/api/v1/searches", `{"query":"  coffee near me  "}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("search status = %d (%s)", rec.Code, rec.Body.String())
	}
	if len(svc.searches) != 1 || svc.searches[0].Query != "coffee near me" {
		t.Errorf("searches = %+v, want trimmed query", svc.searches)
	}

	rec = doRequest(t, h, http.MethodPost, "/api/v1/searches", `{"query":"   "}`)
	expectError(t, rec, http.StatusBadRequest, ErrCodeValidation)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/favorites", "")
	var favs []models.Favorite
	env := decodeData(t, rec, &favs)
	if len(favs) != 1 || env.Metadata.Count != 1 {
		t.Errorf("favorites = %d, count = %d, want 1", len(favs), env.Metadata.Count)
	}
}

// --- Test: recommendations and search ---

func TestRecommendations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		query  string
		status int
		wantK  int
	}{
		{"default k", "", http.StatusOK, 0},
		{"explicit k", "?k=3", http.StatusOK, 3},
		{"non-numeric k falls back to default", "?k=abc", http.StatusOK, 0},
		{"k above limit", "?k=500", http.StatusBadRequest, 0},
		{"negative k", "?k=-1", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newMockService()
			svc.scored = []models.ScoredCandidate{{Place: models.Place{ID: "p1"}, Score: 0.8}}

			rec := doRequest(t, newTestRouter(svc), http.MethodGet, "/api/v1/recommendations"+tt.query, "")
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status == http.StatusOK && svc.gotK != tt.wantK {
				t.Errorf("k passed = %d, want %d", svc.gotK, tt.wantK)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	t.Parallel()

	svc := newMockService()
	h := newTestRouter(svc)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/search?q=%20coffee%20&k=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.gotQuery != "coffee" || svc.gotK != 5 {
		t.Errorf("query = %q k = %d, want coffee/5", svc.gotQuery, svc.gotK)
	}
	if env := decodeEnvelope(t, rec); string(env.Data) != "[]" {
		t.Errorf("data = %s, want []", env.Data)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/v1/search?q="+strings.Repeat("a", 300), "")
	expectError(t, rec, http.StatusBadRequest, ErrCodeValidation)
}

func TestSuggestionsAndAutocomplete(t *testing.T) {
	t.Parallel()

	svc := newMockService()
	svc.suggest = []string{"cafes", "cafes near me"}
	h := newTestRouter(svc)

	for _, path := range []string{"/api/v1/search/suggestions?q=caf", "/api/v1/search/autocomplete?q=caf"} {
		rec := doRequest(t, h, http.MethodGet, path, "")
		var out []string
		env := decodeData(t, rec, &out)
		if len(out) != 2 || env.Metadata.Count != 2 {
			t.Errorf("%s: out = %v count = %d", path, out, env.Metadata.Count)
		}
		if svc.gotQuery != "caf" {
			t.Errorf("%s: partial = %q", path, svc.gotQuery)
		}
	}
}

func TestNearby(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"valid", "?lat=19.07&lon=72.99", http.StatusOK},
		{"missing lon", "?lat=19.07", http.StatusBadRequest},
		{"not a number", "?lat=north&lon=1", http.StatusBadRequest},
		{"latitude out of range", "?lat=95&lon=1", http.StatusBadRequest},
		{"longitude out of range", "?lat=1&lon=181", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newMockService()
			rec := doRequest(t, newTestRouter(svc), http.MethodGet, "/api/v1/nearby"+tt.query, "")
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status == http.StatusOK && (svc.gotLat != 19.07 || svc.gotLon != 72.99) {
				t.Errorf("coordinates = %v,%v", svc.gotLat, svc.gotLon)
			}
		})
	}
}

func TestUpdateLocation(t *testing.T) {
	t.Parallel()

	svc := newMockService()
	h := newTestRouter(svc)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/location", `{"latitude":48.85,"longitude":2.35}`)
	var loc models.Location
	decodeData(t, rec, &loc)
	if loc.Latitude != 48.85 || svc.gotLon != 2.35 {
		t.Errorf("location = %+v, service lon = %v", loc, svc.gotLon)
	}

	rec = doRequest(t, h, http.MethodPost, "/api/v1/location", `{"latitude":-91,"longitude":0}`)
	expectError(t, rec, http.StatusBadRequest, ErrCodeValidation)
}

// --- Test: learning ---

func TestLearn(t *testing.T) {
	t.Parallel()

	svc := newMockService()
	svc.insights = models.Insights{TopPreference: "Cafes", TotalVisits: 3}
	h := newTestRouter(svc)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/learn", "")
	var insights models.Insights
	decodeData(t, rec, &insights)
	if insights.TopPreference != "Cafes" || insights.TotalVisits != 3 {
		t.Errorf("insights = %+v", insights)
	}

	svc.learnErr = errStore
	rec = doRequest(t, h, http.MethodPost, "/api/v1/learn", "")
	expectError(t, rec, http.StatusInternalServerError, ErrCodePassFailed)
}

// --- Test: notifications ---

func TestRunNotificationPass(t *testing.T) {
	t.Parallel()

	svc := newMockService()
	h := newTestRouter(svc)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/notifications/last-pass", "")
	expectError(t, rec, http.StatusNotFound, ErrCodeNotFound)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/notifications/run", "")
	var summary personalize.PassSummary
	decodeData(t, rec, &summary)
	if summary.Scheduled != 3 || summary.Generated != 4 {
		t.Errorf("summary = %+v", summary)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/v1/notifications/last-pass", "")
	if rec.Code != http.StatusOK {
		t.Errorf("last-pass status = %d, want 200", rec.Code)
	}

	svc.passErr = errStore
	rec = doRequest(t, h, http.MethodPost, "/api/v1/notifications/run", "")
	expectError(t, rec, http.StatusInternalServerError, ErrCodePassFailed)
}

func TestCancelNotification(t *testing.T) {
	t.Parallel()

	svc := newMockService()
	svc.pending = []models.Notification{{ID: "n1"}, {ID: "n2"}, {ID: "n3"}}
	h := newTestRouter(svc)

	rec := doRequest(t, h, http.MethodDelete, "/api/v1/notifications/n2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	if len(svc.cancelled) != 1 || svc.cancelled[0] != "n2" {
		t.Errorf("cancelled = %v", svc.cancelled)
	}

	rec = doRequest(t, h, http.MethodDelete, "/api/v1/notifications/n2", "")
	expectError(t, rec, http.StatusNotFound, ErrCodeNotFound)

	rec = doRequest(t, h, http.MethodDelete, "/api/v1/notifications", "")
	var out map[string]int
	decodeData(t, rec, &out)
	if out["cancelled"] != 2 {
		t.Errorf("cancelled = %d, want 2", out["cancelled"])
	}

	rec = doRequest(t, h, http.MethodGet, "/api/v1/notifications", "")
	if env := decodeEnvelope(t, rec); string(env.Data) != "[]" {
		t.Errorf("pending after cancel all = %s", env.Data)
	}
}

func TestRecordEngagement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"engaged", `{"engaged":true}`, http.StatusOK},
		{"dismissed", `{"engaged":false}`, http.StatusOK},
		{"missing flag", `{}`, http.StatusBadRequest},
		{"empty body", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newMockService()
			rec := doRequest(t, newTestRouter(svc), http.MethodPost, "/api/v1/notifications/n1/engagement", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}
			var e models.Engagement
			decodeData(t, rec, &e)
			if e.NotificationID != "n1" {
				t.Errorf("NotificationID = %q", e.NotificationID)
			}
			if len(svc.engagement) != 1 || svc.engagement[0].Engaged != strings.Contains(tt.body, "true") {
				t.Errorf("engagement = %+v", svc.engagement)
			}
		})
	}
}

func TestNextOptimalTime(t *testing.T) {
	t.Parallel()

	svc := newMockService()
	rec := doRequest(t, newTestRouter(svc), http.MethodGet, "/api/v1/notifications/next-optimal", "")
	var out nextOptimalResponse
	decodeData(t, rec, &out)
	if !out.Next.Equal(svc.next) || out.OptimalNow {
		t.Errorf("next optimal = %+v", out)
	}
}

// --- Test: policy ---

func TestUpdatePolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{
			name:   "valid policy",
			body:   `{"enabled":{"smart_recommendation":true,"weather_alert":false},"respect_quiet_hours":true,"quiet_hours_start":23,"quiet_hours_end":7,"max_daily_count":5,"min_spacing_minutes":60,"min_priority":3,"min_relevance":0.5,"location_radius_km":2}`,
			status: http.StatusOK,
		},
		{
			name:   "quiet hour out of range",
			body:   `{"quiet_hours_start":25}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "daily cap too high",
			body:   `{"max_daily_count":1000}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown kind",
			body:   `{"enabled":{"carrier_pigeon":true}}`,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newMockService()
			h := newTestRouter(svc)

			rec := doRequest(t, h, http.MethodPut, "/api/v1/policy", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status != http.StatusOK {
				if svc.policy.QuietHoursStart != models.DefaultPolicy().QuietHoursStart {
					t.Error("rejected policy should not be stored")
				}
				return
			}

			rec = doRequest(t, h, http.MethodGet, "/api/v1/policy", "")
			var p models.Policy
			decodeData(t, rec, &p)
			if p.MaxDailyCount != 5 || p.QuietHoursStart != 23 {
				t.Errorf("stored policy = %+v", p)
			}
			if p.KindEnabled(models.KindWeatherAlert) || !p.KindEnabled(models.KindSmartRecommendation) {
				t.Errorf("enabled = %v", p.Enabled)
			}
		})
	}
}
