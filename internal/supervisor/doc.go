// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package supervisor provides process supervision for Waypoint using suture v4.

Every long-running component runs under a three-layer supervisor tree with
Erlang/OTP-style restart, failure isolation and graceful shutdown.

# Overview

	RootSupervisor ("waypoint")
	├── DataSupervisor ("data-layer")
	│   └── MaintenanceService (due processing, cleanup, badger GC)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── events.Consumer
	│   ├── delivery.TimerTransport
	│   ├── recommend.Worker
	│   ├── LearningService
	│   └── NotificationPassService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A pass loop that keeps crashing backs off inside the messaging layer; the
API keeps answering from the store meanwhile.

# Usage

	tree, err := supervisor.NewSupervisorTree(slogLogger, cfg.Supervisor)
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewMaintenanceService(svc, st, maintCfg, logger))
	tree.AddMessagingService(transport)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

# Configuration

TreeConfig zero values fall back to suture's defaults: 5 failures before
backoff, 30s decay, 15s backoff and a 10s per-service shutdown timeout.

# Logging

Supervisor events (service panics, terminations, backoff) are logged
through thejerf/sutureslog. The slog handler is backed by zerolog, see
logging.NewSlogLogger.

# Debugging Shutdown Issues

	report, _ := tree.UnstoppedServiceReport()
	for _, svc := range report {
	    logger.Warn().Str("service", svc.Name).Msg("service did not stop")
	}
*/
package supervisor
