// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/tomtom215/waypoint/internal/api"
	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/cron"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/store"
	"github.com/tomtom215/waypoint/internal/supervisor"
	"github.com/tomtom215/waypoint/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging)
	logger := logging.Logger()

	logging.Info().
		Str("version", version).
		Str("addr", cfg.Server.Addr()).
		Str("storage", storageDescription(cfg)).
		Str("pass_schedule", cfg.Notifications.PassSchedule).
		Bool("events", cfg.Events.Enabled).
		Bool("webhook", cfg.Webhook.Enabled()).
		Msg("Starting Waypoint with supervisor tree")

	metrics.SetAppInfo(version, runtime.Version())

	st, err := store.Open(cfg.Storage, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	policy := cfg.Notifications.DefaultPolicy.Policy()
	seeded, err := st.SeedPolicy(ctx, &policy)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to seed notification policy")
	}
	if seeded {
		logging.Info().Msg("Default notification policy written to store")
	}

	p, err := initPipeline(cfg, st, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize pipeline")
	}
	defer p.Close()

	if err := p.Service.Restore(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to restore notification state")
	}

	// Bridges zerolog to slog for sutureslog
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), cfg.Supervisor)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Data layer
	tree.AddDataService(services.NewMaintenanceService(p.Service, st, services.MaintenanceServiceConfig{
		DueInterval:     cfg.Notifications.DueInterval,
		CleanupInterval: cfg.Notifications.CleanupInterval,
		GCInterval:      st.GCInterval(),
	}, logger))

	// Messaging layer. The consumer goes first so it is subscribed before
	// the first dispatch is published.
	if p.Consumer != nil {
		tree.AddMessagingService(p.Consumer)
		logging.Info().Msg("Event consumer added to supervisor tree")
	}
	tree.AddMessagingService(p.Transport)
	tree.AddMessagingService(p.Worker)
	tree.AddMessagingService(services.NewLearningService(p.Service, services.LearningServiceConfig{
		RunOnStartup: cfg.Learning.RunOnStartup,
		Interval:     cfg.Learning.Interval,
		Timeout:      cfg.Learning.Timeout,
	}, logger))

	schedule, err := cron.Parse(cfg.Notifications.PassSchedule)
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid notification pass schedule")
	}
	passService, err := services.NewNotificationPassService(p.Service, services.NotificationPassServiceConfig{
		Schedule:     schedule,
		RunOnStartup: cfg.Notifications.RunOnStartup,
		Timeout:      cfg.Notifications.PassTimeout,
	}, p.Clock, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create notification pass service")
	}
	tree.AddMessagingService(passService)

	// API layer
	chiMw := api.NewChiMiddlewareFromServer(
		cfg.Server.CORSOrigins,
		cfg.Server.RateLimitRequests,
		cfg.Server.RateLimitWindow,
		cfg.Server.RateLimitDisabled,
	)
	router := api.NewRouter(api.NewHandler(p.Service, version), chiMw)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// The error channel receives exactly once, when the root supervisor returns.
	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

func storageDescription(cfg *config.Config) string {
	if cfg.Storage.InMemory {
		return "in-memory"
	}
	return cfg.Storage.Path
}
