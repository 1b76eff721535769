// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"context"
	"time"

	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/notify/scheduler"
	"github.com/tomtom215/waypoint/internal/personalize"
)

// Service is the personalization surface the handlers call.
// *personalize.Service implements it.
type Service interface {
	// Catalog
	AddPlace(ctx context.Context, p models.Place) (models.Place, error)
	Places(ctx context.Context) ([]models.Place, error)
	AddFavorite(ctx context.Context, f models.Favorite) (models.Favorite, error)
	Favorites(ctx context.Context) ([]models.Favorite, error)
	RecordSearch(ctx context.Context, r models.SearchRecord) (models.SearchRecord, error)

	// Learning and ranking
	RunLearningAndRecommendationPass(ctx context.Context) (models.Insights, error)
	Insights() models.Insights
	Recommendations(ctx context.Context, k int) ([]models.ScoredCandidate, error)
	RankForQuery(ctx context.Context, query string, k int) ([]models.ScoredCandidate, error)
	Suggestions(ctx context.Context, partial string) ([]string, error)
	Autocomplete(partial string) []string

	// Location
	NearbyPlaces(ctx context.Context, lat, lon float64) ([]models.NearbyPlace, error)
	UpdateLocation(lat, lon float64) models.Location

	// Notifications
	GenerateAndScheduleNotifications(ctx context.Context) error
	LastPass() (personalize.PassSummary, bool)
	PendingNotifications() []models.Notification
	NextOptimalTime(ctx context.Context) (time.Time, bool, error)
	CancelNotification(ctx context.Context, id string) (bool, error)
	CancelAllNotifications(ctx context.Context) (int, error)
	RecordEngagement(ctx context.Context, id string, engaged bool) (models.Engagement, error)
	EngagementStats() scheduler.EngagementStats

	// Policy
	Policy(ctx context.Context) (models.Policy, error)
	UpdatePolicy(ctx context.Context, p models.Policy) (models.Policy, error)
}

var _ Service = (*personalize.Service)(nil)

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: response, decoding and validation helpers
//   - handlers_health.go: health probes
//   - handlers_catalog.go: places, favorites and search history
//   - handlers_recommend.go: learning, insights and recommendations
//   - handlers_search.go: search, suggestions, autocomplete and nearby
//   - handlers_notifications.go: passes, pending, cancel and engagement
//   - handlers_policy.go: notification policy
type Handler struct {
	svc       Service
	version   string
	startTime time.Time
}

// NewHandler creates a new API handler.
//
// Example:
//
//	handler := api.NewHandler(svc, version)
//	router := api.NewRouter(handler, api.NewChiMiddleware(nil))
//	http.ListenAndServe(":8088", router.SetupChi())
func NewHandler(svc Service, version string) *Handler {
	return &Handler{
		svc:       svc,
		version:   version,
		startTime: time.Now(),
	}
}
