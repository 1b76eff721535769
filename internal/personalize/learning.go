// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package personalize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/waypoint/internal/events"
	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/recommend"
)

// RunLearningAndRecommendationPass reads the catalog once, rebuilds the
// preference model from it and returns the resulting insights. The search
// and nearby indexes are refreshed from the same snapshot.
func (s *Service) RunLearningAndRecommendationPass(ctx context.Context) (models.Insights, error) {
	start := time.Now()

	// Learning rebuilds the model from scratch from every input.
	snap := s.readCatalog(ctx)
	if err := snap.err(); err != nil {
		metrics.RecordLearningPass(time.Since(start), 0, 0, 0, 0, 0, err)
		s.logger.Error().Err(err).Msg("Learning pass aborted")
		return models.Insights{}, err
	}
	s.reindex(snap.places)

	in := recommend.LearnInput{
		Visited:   visitedPlaces(snap.places),
		Favorites: snap.favorites,
		Searches:  snap.searches,
		Fresh:     true,
	}
	stats, err := s.learn(ctx, in)
	if err != nil {
		metrics.RecordLearningPass(time.Since(start), 0, 0, 0, 0, 0, err)
		return models.Insights{}, err
	}

	insights := s.engine.AnalyzePatterns()
	metrics.RecordLearningPass(time.Since(start), stats.Visits, stats.Favorites, stats.SearchesMatched,
		stats.Categories, insights.DiversityScore, nil)

	ev := events.LearningCompleted{
		Insights:    insights,
		Categories:  stats.Categories,
		CompletedAt: s.clock.Now(),
	}
	if err := s.publish(ctx, events.TopicLearningCompleted, ev, nil); err != nil {
		s.logger.Warn().Err(err).Msg("Learning event not recorded")
	}

	s.logger.Info().
		Int("visits", stats.Visits).
		Int("favorites", stats.Favorites).
		Int("searches_matched", stats.SearchesMatched).
		Str("top_preference", insights.TopPreference).
		Float64("diversity", insights.DiversityScore).
		Dur("duration", time.Since(start)).
		Msg("Learning pass completed")

	return insights, nil
}

func (s *Service) learn(ctx context.Context, in recommend.LearnInput) (recommend.LearnStats, error) {
	if s.worker == nil {
		return s.engine.Learn(in), nil
	}
	stats, err := s.worker.Submit(ctx, in)
	if err != nil {
		return recommend.LearnStats{}, fmt.Errorf("learn: %w", err)
	}
	return stats, nil
}

// visitedPlaces returns the places the user has been to.
func visitedPlaces(places []models.Place) []models.Place {
	out := make([]models.Place, 0, len(places))
	for i := range places {
		if !places[i].VisitedAt.IsZero() {
			out = append(out, places[i])
		}
	}
	return out
}

// Insights summarizes the current preference model without learning.
func (s *Service) Insights() models.Insights {
	return s.engine.AnalyzePatterns()
}

// clampK maps a requested result count onto the engine limits.
func (s *Service) clampK(k int) int {
	limits := s.engine.Config().Limits
	if k <= 0 {
		return limits.DefaultK
	}
	if k > limits.MaxK {
		return limits.MaxK
	}
	return k
}

// Recommendations returns the top k catalog places by learned preference.
func (s *Service) Recommendations(ctx context.Context, k int) ([]models.ScoredCandidate, error) {
	places, err := s.store.ListPlaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("list places: %w", err)
	}
	out := s.engine.Recommend(places, s.clampK(k))
	metrics.RecordRecommendations(len(out))
	return out, nil
}

// RankForQuery ranks the catalog against a free-text query. A blank query
// returns personalized recommendations.
func (s *Service) RankForQuery(ctx context.Context, query string, k int) ([]models.ScoredCandidate, error) {
	places, err := s.store.ListPlaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("list places: %w", err)
	}
	out := s.ranker.Rank(query, places, s.clampK(k))
	metrics.RecordSearch(strings.TrimSpace(query) == "", len(out))
	return out, nil
}

// Suggestions returns search suggestions for a partial query.
func (s *Service) Suggestions(ctx context.Context, partial string) ([]string, error) {
	history, err := s.store.ListSearchHistory(ctx, s.config.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list search history: %w", err)
	}
	return s.ranker.Suggestions(partial, history), nil
}

// Autocomplete completes a partial query from place names and categories.
func (s *Service) Autocomplete(partial string) []string {
	return s.ranker.Autocomplete(partial)
}

// NearbyPlaces returns catalog places around a point, closest first. The
// policy's location radius caps the detection radius.
func (s *Service) NearbyPlaces(ctx context.Context, lat, lon float64) ([]models.NearbyPlace, error) {
	p, err := s.store.GetPolicy(ctx)
	if err != nil {
		return nil, fmt.Errorf("get policy: %w", err)
	}
	return s.detector.NearbyWithin(lat, lon, p.LocationRadiusKm), nil
}

// UpdateLocation records the user's current position for the next
// notification pass.
func (s *Service) UpdateLocation(lat, lon float64) models.Location {
	loc := models.Location{Latitude: lat, Longitude: lon, ReportedAt: s.clock.Now()}
	s.detector.UpdateLocation(loc)
	return loc
}

// AddPlace stores a place and indexes it for search and nearby lookups.
//
//nolint:gocritic // hugeParam: place passed by value for immutability
func (s *Service) AddPlace(ctx context.Context, p models.Place) (models.Place, error) {
	if err := s.store.PutPlace(ctx, &p); err != nil {
		return p, fmt.Errorf("put place: %w", err)
	}
	s.ranker.AddPlace(p)
	s.detector.Add(p)
	return p, nil
}

// Places lists the catalog.
func (s *Service) Places(ctx context.Context) ([]models.Place, error) {
	return s.store.ListPlaces(ctx)
}

// AddFavorite stores a favorite. AddedAt defaults to now.
//
//nolint:gocritic // hugeParam: favorite passed by value for immutability
func (s *Service) AddFavorite(ctx context.Context, f models.Favorite) (models.Favorite, error) {
	if f.AddedAt.IsZero() {
		f.AddedAt = s.clock.Now()
	}
	if err := s.store.PutFavorite(ctx, &f); err != nil {
		return f, fmt.Errorf("put favorite: %w", err)
	}
	return f, nil
}

// Favorites lists the saved favorites.
func (s *Service) Favorites(ctx context.Context) ([]models.Favorite, error) {
	return s.store.ListFavorites(ctx)
}

// RecordSearch appends a query to the search history. SearchedAt defaults
// to now.
//
//nolint:gocritic // hugeParam: record passed by value for immutability
func (s *Service) RecordSearch(ctx context.Context, r models.SearchRecord) (models.SearchRecord, error) {
	if r.SearchedAt.IsZero() {
		r.SearchedAt = s.clock.Now()
	}
	if err := s.store.AddSearch(ctx, &r); err != nil {
		return r, fmt.Errorf("add search: %w", err)
	}
	return r, nil
}

// Policy returns the current notification policy.
func (s *Service) Policy(ctx context.Context) (models.Policy, error) {
	return s.store.GetPolicy(ctx)
}

// UpdatePolicy replaces the notification policy. It applies from the next
// pass; already scheduled notifications keep their times.
//
//nolint:gocritic // hugeParam: policy passed by value for immutability
func (s *Service) UpdatePolicy(ctx context.Context, p models.Policy) (models.Policy, error) {
	if p.Enabled == nil {
		p.Enabled = make(map[models.NotificationKind]bool)
	}
	if err := s.store.PutPolicy(ctx, &p); err != nil {
		return p, fmt.Errorf("put policy: %w", err)
	}
	s.logger.Info().
		Bool("respect_quiet_hours", p.RespectQuietHours).
		Int("max_daily_count", p.MaxDailyCount).
		Msg("Notification policy updated")
	return p, nil
}

// NextOptimalTime returns the next good delivery time under the stored
// policy.
func (s *Service) NextOptimalTime(ctx context.Context) (next time.Time, optimalNow bool, err error) {
	p, err := s.store.GetPolicy(ctx)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("get policy: %w", err)
	}
	return s.scheduler.NextOptimalTime(&p), s.scheduler.IsOptimalTime(&p), nil
}
