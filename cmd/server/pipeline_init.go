// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/waypoint/internal/clock"
	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/events"
	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/notify/delivery"
	"github.com/tomtom215/waypoint/internal/notify/generator"
	"github.com/tomtom215/waypoint/internal/notify/scheduler"
	"github.com/tomtom215/waypoint/internal/personalize"
	"github.com/tomtom215/waypoint/internal/random"
	"github.com/tomtom215/waypoint/internal/recommend"
	"github.com/tomtom215/waypoint/internal/search"
	"github.com/tomtom215/waypoint/internal/store"
)

// Pipeline holds the personalization components that main hands to the
// supervisor tree. Consumer and Bus are nil when events are disabled.
type Pipeline struct {
	Service   *personalize.Service
	Worker    *recommend.Worker
	Transport *delivery.TimerTransport
	Bus       *events.Bus
	Consumer  *events.Consumer
	Clock     clock.Clock
}

// Close releases the event bus.
func (p *Pipeline) Close() {
	if p.Bus == nil {
		return
	}
	if err := p.Bus.Close(); err != nil {
		logging.Warn().Err(err).Msg("Error closing event bus")
	}
}

// initPipeline builds the learning, search, generation, scheduling and
// delivery components over st.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initPipeline(cfg *config.Config, st *store.Store, logger zerolog.Logger) (*Pipeline, error) {
	loc, err := cfg.Notifications.Location()
	if err != nil {
		return nil, err
	}
	clk := clock.NewReal(loc)

	engine, err := recommend.NewEngine(&cfg.Recommend, logger)
	if err != nil {
		return nil, fmt.Errorf("recommendation engine: %w", err)
	}
	worker := recommend.NewWorker(engine, logger)

	ranker, err := search.NewRanker(cfg.Search, engine, logger)
	if err != nil {
		return nil, fmt.Errorf("search ranker: %w", err)
	}

	detector, err := geo.NewDetector(cfg.Geo, logger)
	if err != nil {
		return nil, fmt.Errorf("geo detector: %w", err)
	}

	gen, err := generator.New(cfg.Notifications.Generator, engine,
		random.New(cfg.Notifications.RandomSeed), clk, logger)
	if err != nil {
		return nil, fmt.Errorf("notification generator: %w", err)
	}

	// The transport fires into the service, which needs the scheduler
	// built on top of the transport.
	var svc *personalize.Service
	transport, err := delivery.NewTimerTransport(cfg.Notifications.Dispatch, clk,
		func(ctx context.Context, t delivery.Trigger) error {
			return svc.Dispatch(ctx, t)
		}, logger)
	if err != nil {
		return nil, fmt.Errorf("trigger transport: %w", err)
	}

	sched, err := scheduler.New(cfg.Notifications.Scheduler, transport, clk, logger)
	if err != nil {
		return nil, fmt.Errorf("notification scheduler: %w", err)
	}

	registry := delivery.NewChannelRegistry(delivery.NewInAppChannel(st))
	if cfg.Webhook.Enabled() {
		webhook, err := delivery.NewWebhookChannel(cfg.Webhook, logger)
		if err != nil {
			return nil, fmt.Errorf("webhook channel: %w", err)
		}
		registry.Register(webhook)
		logger.Info().Str("channel", webhook.Name()).Msg("Webhook delivery enabled")
	}
	manager := delivery.NewManager(registry, cfg.Notifications.Delivery, logger)

	p := &Pipeline{
		Worker:    worker,
		Transport: transport,
		Clock:     clk,
	}

	comps := personalize.Components{
		Store:     st,
		Engine:    engine,
		Worker:    worker,
		Ranker:    ranker,
		Detector:  detector,
		Generator: gen,
		Scheduler: sched,
		Delivery:  manager,
		Clock:     clk,
	}

	if cfg.Events.Enabled {
		bus := events.NewBus(cfg.Events.Bus, logger)
		consumer, err := events.NewConsumer(cfg.Events.Consumer, bus.Subscriber(), st, bus.Logger(), logger)
		if err != nil {
			_ = bus.Close()
			return nil, fmt.Errorf("event consumer: %w", err)
		}
		p.Bus = bus
		p.Consumer = consumer
		comps.Events = bus
	}

	svc, err = personalize.New(cfg.Personalize, comps, logger)
	if err != nil {
		return nil, fmt.Errorf("personalize service: %w", err)
	}
	p.Service = svc

	return p, nil
}
