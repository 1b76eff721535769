// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// NotificationMaintainer cleans up and recovers notification records.
// Satisfied by *personalize.Service.
type NotificationMaintainer interface {
	CleanupOldNotifications(ctx context.Context) (int, error)
	ProcessDueNotifications(ctx context.Context) (int, error)
}

// GarbageCollector reclaims storage space. Satisfied by *store.Store.
type GarbageCollector interface {
	RunGC() error
}

// MaintenanceServiceConfig holds configuration for the maintenance loop.
type MaintenanceServiceConfig struct {
	// DueInterval is how often missed notifications are rescheduled.
	// Default: 1m.
	DueInterval time.Duration

	// CleanupInterval is how often expired records are removed.
	// Default: 1h.
	CleanupInterval time.Duration

	// GCInterval is how often the store's value log is garbage collected.
	// Default: 10m.
	GCInterval time.Duration
}

// MaintenanceService runs the periodic housekeeping passes: rescheduling
// missed notifications, removing expired records and value log GC.
type MaintenanceService struct {
	maintainer NotificationMaintainer
	gc         GarbageCollector
	config     MaintenanceServiceConfig
	logger     zerolog.Logger
	name       string
}

// NewMaintenanceService creates a new maintenance service. gc may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMaintenanceService(m NotificationMaintainer, gc GarbageCollector, cfg MaintenanceServiceConfig, logger zerolog.Logger) *MaintenanceService {
	if cfg.DueInterval <= 0 {
		cfg.DueInterval = time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Hour
	}
	if cfg.GCInterval <= 0 {
		cfg.GCInterval = 10 * time.Minute
	}
	return &MaintenanceService{
		maintainer: m,
		gc:         gc,
		config:     cfg,
		logger:     logger.With().Str("service", "maintenance").Logger(),
		name:       "maintenance",
	}
}

// Serve implements suture.Service. Due processing runs once at startup to
// pick up records missed while the process was down.
func (s *MaintenanceService) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("due_interval", s.config.DueInterval).
		Dur("cleanup_interval", s.config.CleanupInterval).
		Bool("gc", s.gc != nil).
		Msg("maintenance service starting")

	s.processDue(ctx)

	dueTicker := time.NewTicker(s.config.DueInterval)
	defer dueTicker.Stop()
	cleanupTicker := time.NewTicker(s.config.CleanupInterval)
	defer cleanupTicker.Stop()

	// A nil channel never fires, so without a collector the GC case is idle.
	var gcTick <-chan time.Time
	if s.gc != nil {
		gcTicker := time.NewTicker(s.config.GCInterval)
		defer gcTicker.Stop()
		gcTick = gcTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("maintenance service shutting down")
			return ctx.Err()
		case <-dueTicker.C:
			s.processDue(ctx)
		case <-cleanupTicker.C:
			s.cleanup(ctx)
		case <-gcTick:
			s.collect()
		}
	}
}

func (s *MaintenanceService) processDue(ctx context.Context) {
	n, err := s.maintainer.ProcessDueNotifications(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Int("rescheduled", n).Msg("due processing failed")
	}
}

func (s *MaintenanceService) cleanup(ctx context.Context) {
	if _, err := s.maintainer.CleanupOldNotifications(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("notification cleanup failed")
	}
}

func (s *MaintenanceService) collect() {
	if err := s.gc.RunGC(); err != nil {
		s.logger.Warn().Err(err).Msg("store garbage collection failed")
	}
}

// String returns the service name for logging.
func (s *MaintenanceService) String() string {
	return s.name
}
