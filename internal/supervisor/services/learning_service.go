// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/waypoint/internal/models"
)

// LearningRunner runs one learning and recommendation pass.
// Satisfied by *personalize.Service.
type LearningRunner interface {
	RunLearningAndRecommendationPass(ctx context.Context) (models.Insights, error)
}

// LearningServiceConfig holds configuration for the learning loop.
type LearningServiceConfig struct {
	// RunOnStartup runs a pass as soon as the service starts.
	RunOnStartup bool

	// Interval is how often to relearn. Default: 1h.
	Interval time.Duration

	// Timeout bounds a single pass. Default: 5m.
	Timeout time.Duration
}

// LearningService rebuilds the preference model on a fixed interval.
type LearningService struct {
	runner LearningRunner
	config LearningServiceConfig
	logger zerolog.Logger
	name   string
}

// NewLearningService creates a new learning loop service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewLearningService(runner LearningRunner, cfg LearningServiceConfig, logger zerolog.Logger) *LearningService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &LearningService{
		runner: runner,
		config: cfg,
		logger: logger.With().Str("service", "learning").Logger(),
		name:   "learning-pass",
	}
}

// Serve implements suture.Service. A failed pass is logged and retried
// on the next tick; only context cancellation ends the loop.
func (s *LearningService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("run_on_startup", s.config.RunOnStartup).
		Dur("interval", s.config.Interval).
		Msg("learning service starting")

	if s.config.RunOnStartup {
		s.run(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("learning service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *LearningService) run(ctx context.Context) {
	passCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	insights, err := s.runner.RunLearningAndRecommendationPass(passCtx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("learning pass failed (will retry on schedule)")
		return
	}
	s.logger.Debug().
		Int("total_visits", insights.TotalVisits).
		Str("top_preference", insights.TopPreference).
		Dur("duration", time.Since(start)).
		Msg("learning pass complete")
}

// String returns the service name for logging.
func (s *LearningService) String() string {
	return s.name
}
