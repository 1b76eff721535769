// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/notify/scheduler"
	"github.com/tomtom215/waypoint/internal/personalize"
)

var errStore = errors.New("store unavailable")

// mockService records calls and returns canned values. Set the *Err fields
// to make the matching call fail.
type mockService struct {
	mu sync.Mutex

	places    []models.Place
	favorites []models.Favorite
	searches  []models.SearchRecord
	policy    models.Policy
	pending   []models.Notification
	insights  models.Insights
	scored    []models.ScoredCandidate
	nearby    []models.NearbyPlace
	suggest   []string
	lastPass  *personalize.PassSummary
	next      time.Time

	storeErr error
	passErr  error
	learnErr error

	gotK       int
	gotQuery   string
	gotLat     float64
	gotLon     float64
	engagement []models.Engagement
	cancelled  []string
	passRuns   int
}

func newMockService() *mockService {
	return &mockService{
		policy: models.DefaultPolicy(),
		next:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (m *mockService) AddPlace(_ context.Context, p models.Place) (models.Place, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return p, m.storeErr
	}
	m.places = append(m.places, p)
	return p, nil
}

func (m *mockService) Places(context.Context) ([]models.Place, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.places, m.storeErr
}

func (m *mockService) AddFavorite(_ context.Context, f models.Favorite) (models.Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return f, m.storeErr
	}
	if f.AddedAt.IsZero() {
		f.AddedAt = m.next
	}
	m.favorites = append(m.favorites, f)
	return f, nil
}

func (m *mockService) Favorites(context.Context) ([]models.Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.favorites, m.storeErr
}

func (m *mockService) RecordSearch(_ context.Context, r models.SearchRecord) (models.SearchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return r, m.storeErr
	}
	m.searches = append(m.searches, r)
	return r, nil
}

func (m *mockService) RunLearningAndRecommendationPass(context.Context) (models.Insights, error) {
	return m.insights, m.learnErr
}

func (m *mockService) Insights() models.Insights { return m.insights }

func (m *mockService) Recommendations(_ context.Context, k int) ([]models.ScoredCandidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gotK = k
	return m.scored, m.storeErr
}

func (m *mockService) RankForQuery(_ context.Context, query string, k int) ([]models.ScoredCandidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gotQuery, m.gotK = query, k
	return m.scored, m.storeErr
}

func (m *mockService) Suggestions(_ context.Context, partial string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gotQuery = partial
	return m.suggest, m.storeErr
}

func (m *mockService) Autocomplete(partial string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gotQuery = partial
	return m.suggest
}

func (m *mockService) NearbyPlaces(_ context.Context, lat, lon float64) ([]models.NearbyPlace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gotLat, m.gotLon = lat, lon
	return m.nearby, m.storeErr
}

func (m *mockService) UpdateLocation(lat, lon float64) models.Location {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gotLat, m.gotLon = lat, lon
	return models.Location{Latitude: lat, Longitude: lon, ReportedAt: m.next}
}

func (m *mockService) GenerateAndScheduleNotifications(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passRuns++
	if m.passErr != nil {
		return m.passErr
	}
	m.lastPass = &personalize.PassSummary{StartedAt: m.next, Generated: 4, Scheduled: 3, FilteredOut: 1}
	return nil
}

func (m *mockService) LastPass() (personalize.PassSummary, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastPass == nil {
		return personalize.PassSummary{}, false
	}
	return *m.lastPass, true
}

func (m *mockService) PendingNotifications() []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

func (m *mockService) NextOptimalTime(context.Context) (time.Time, bool, error) {
	return m.next, false, m.storeErr
}

func (m *mockService) CancelNotification(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.pending {
		if m.pending[i].ID == id {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			m.cancelled = append(m.cancelled, id)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockService) CancelAllNotifications(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.pending)
	m.pending = nil
	return n, nil
}

func (m *mockService) RecordEngagement(_ context.Context, id string, engaged bool) (models.Engagement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := models.Engagement{NotificationID: id, Engaged: engaged, Hour: 9, RecordedAt: m.next}
	if m.storeErr != nil {
		return e, m.storeErr
	}
	m.engagement = append(m.engagement, e)
	return e, nil
}

func (m *mockService) EngagementStats() scheduler.EngagementStats {
	return scheduler.EngagementStats{}
}

func (m *mockService) Policy(context.Context) (models.Policy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.policy, m.storeErr
}

func (m *mockService) UpdatePolicy(_ context.Context, p models.Policy) (models.Policy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return p, m.storeErr
	}
	m.policy = p
	return p, nil
}

var _ Service = (*mockService)(nil)
