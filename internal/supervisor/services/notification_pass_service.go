// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/waypoint/internal/clock"
	"github.com/tomtom215/waypoint/internal/cron"
)

// ErrScheduleNeverFires is returned when the pass schedule has no future
// occurrence.
var ErrScheduleNeverFires = errors.New("notification pass schedule never fires")

// PassRunner runs one generate-and-schedule pass.
// Satisfied by *personalize.Service.
type PassRunner interface {
	GenerateAndScheduleNotifications(ctx context.Context) error
}

// NotificationPassServiceConfig holds configuration for the pass loop.
type NotificationPassServiceConfig struct {
	// Schedule decides when passes run. Required.
	Schedule *cron.Schedule

	// RunOnStartup runs a pass as soon as the service starts.
	RunOnStartup bool

	// Timeout bounds a single pass. Default: 2m.
	Timeout time.Duration
}

// NotificationPassService runs notification passes on a cron schedule.
// Times are evaluated in the clock's location.
type NotificationPassService struct {
	runner PassRunner
	config NotificationPassServiceConfig
	clock  clock.Clock
	logger zerolog.Logger
	name   string
}

// NewNotificationPassService creates a new cron-driven pass service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewNotificationPassService(runner PassRunner, cfg NotificationPassServiceConfig, clk clock.Clock, logger zerolog.Logger) (*NotificationPassService, error) {
	if runner == nil {
		return nil, errors.New("pass runner is required")
	}
	if cfg.Schedule == nil {
		return nil, errors.New("pass schedule is required")
	}
	if clk == nil {
		return nil, errors.New("clock is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &NotificationPassService{
		runner: runner,
		config: cfg,
		clock:  clk,
		logger: logger.With().Str("service", "notification_pass").Logger(),
		name:   "notification-pass",
	}, nil
}

// Serve implements suture.Service. It sleeps until the next scheduled
// minute, runs a pass and repeats. A schedule with no future occurrence
// stops the service for good.
func (s *NotificationPassService) Serve(ctx context.Context) error {
	s.logger.Info().
		Str("schedule", s.config.Schedule.String()).
		Bool("run_on_startup", s.config.RunOnStartup).
		Msg("notification pass service starting")

	if s.config.RunOnStartup {
		s.run(ctx)
	}

	for {
		wait, next, err := s.nextDelay()
		if err != nil {
			s.logger.Error().Err(err).Msg("notification pass service stopping")
			return fmt.Errorf("%w: %w", suture.ErrDoNotRestart, err)
		}
		s.logger.Debug().Time("next_run", next).Msg("next notification pass scheduled")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info().Msg("notification pass service shutting down")
			return ctx.Err()
		case <-timer.C:
			s.run(ctx)
		}
	}
}

// nextDelay returns how long to sleep until the next scheduled run.
func (s *NotificationPassService) nextDelay() (time.Duration, time.Time, error) {
	now := s.clock.Now()
	next := s.config.Schedule.Next(now)
	if next.IsZero() {
		return 0, time.Time{}, ErrScheduleNeverFires
	}
	return next.Sub(now), next, nil
}

func (s *NotificationPassService) run(ctx context.Context) {
	passCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	if err := s.runner.GenerateAndScheduleNotifications(passCtx); err != nil {
		s.logger.Warn().Err(err).Msg("notification pass failed (will retry on schedule)")
	}
}

// String returns the service name for logging.
func (s *NotificationPassService) String() string {
	return s.name
}
