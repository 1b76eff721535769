// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package personalize

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/waypoint/internal/clock"
	"github.com/tomtom215/waypoint/internal/events"
	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/notify/delivery"
	"github.com/tomtom215/waypoint/internal/notify/generator"
	"github.com/tomtom215/waypoint/internal/notify/scheduler"
	"github.com/tomtom215/waypoint/internal/recommend"
	"github.com/tomtom215/waypoint/internal/search"
)

// Catalog is the read side of the user's places and history.
type Catalog interface {
	ListPlaces(ctx context.Context) ([]models.Place, error)
	ListFavorites(ctx context.Context) ([]models.Favorite, error)
	ListSearchHistory(ctx context.Context, limit int) ([]models.SearchRecord, error)
}

// PolicyStore holds the notification policy.
type PolicyStore interface {
	GetPolicy(ctx context.Context) (models.Policy, error)
	PutPolicy(ctx context.Context, p *models.Policy) error
}

// Store defines every storage operation the service needs.
type Store interface {
	Catalog
	PolicyStore

	// Catalog writes
	PutPlace(ctx context.Context, p *models.Place) error
	PutFavorite(ctx context.Context, f *models.Favorite) error
	AddSearch(ctx context.Context, r *models.SearchRecord) error

	// Notification records
	SaveNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, states ...models.NotificationState) ([]models.Notification, error)
	ListUndispatchedBefore(ctx context.Context, t time.Time) ([]models.Notification, error)
	DeleteDeliveredBefore(ctx context.Context, cutoff time.Time) (int, error)

	// Engagement log
	AppendEngagement(ctx context.Context, e *models.Engagement) error
	ListEngagement(ctx context.Context, since time.Time) ([]models.Engagement, error)
}

// Deliverer fans a due notification out to the delivery channels.
type Deliverer interface {
	Deliver(ctx context.Context, n *models.Notification) *delivery.Report
}

// Config holds the service settings.
type Config struct {
	// HistoryLimit caps the search history read per pass. Default: 500.
	HistoryLimit int `koanf:"history_limit"`

	// Retention is how long dispatched and cancelled records are kept.
	// Default: 30 days.
	Retention time.Duration `koanf:"retention"`

	// DueGrace is how far past its time a scheduled record must be before
	// ProcessDueNotifications treats it as missed. Default: 5 minutes.
	DueGrace time.Duration `koanf:"due_grace"`

	// EngagementWindow bounds the engagement log replayed at startup.
	// Default: 90 days.
	EngagementWindow time.Duration `koanf:"engagement_window"`
}

// DefaultConfig returns the production service settings.
func DefaultConfig() Config {
	return Config{
		HistoryLimit:     500,
		Retention:        30 * 24 * time.Hour,
		DueGrace:         5 * time.Minute,
		EngagementWindow: 90 * 24 * time.Hour,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.HistoryLimit < 1 {
		return fmt.Errorf("history_limit must be positive, got %d", c.HistoryLimit)
	}
	if c.Retention <= 0 {
		return fmt.Errorf("retention must be positive, got %v", c.Retention)
	}
	if c.DueGrace < 0 {
		return fmt.Errorf("due_grace must not be negative, got %v", c.DueGrace)
	}
	if c.EngagementWindow <= 0 {
		return fmt.Errorf("engagement_window must be positive, got %v", c.EngagementWindow)
	}
	return nil
}

// Components are the collaborators a Service orchestrates. Worker and
// Events are optional: without a worker Learn runs inline, without a
// publisher records are written straight to the store.
type Components struct {
	Store     Store
	Engine    *recommend.Engine
	Worker    *recommend.Worker
	Ranker    *search.Ranker
	Detector  *geo.Detector
	Generator *generator.Generator
	Scheduler *scheduler.Scheduler
	Delivery  Deliverer
	Events    events.Publisher
	Clock     clock.Clock
}

// PassSummary describes the last notification pass.
type PassSummary struct {
	StartedAt       time.Time      `json:"started_at"`
	DurationMS      int64          `json:"duration_ms"`
	Generated       int            `json:"generated"`
	Scheduled       int            `json:"scheduled"`
	FilteredOut     int            `json:"filtered_out"`
	Capped          int            `json:"capped"`
	Skipped         int            `json:"skipped"`
	Failed          int            `json:"failed"`
	FailedSources   []string       `json:"failed_sources,omitempty"`
	FailedReads     []string       `json:"failed_reads,omitempty"`
	GeneratedByKind map[string]int `json:"generated_by_kind,omitempty"`
}

// Service is the entry point of the personalization and notification
// pipeline. It is safe for concurrent use.
type Service struct {
	config    Config
	store     Store
	engine    *recommend.Engine
	worker    *recommend.Worker
	ranker    *search.Ranker
	detector  *geo.Detector
	generator *generator.Generator
	scheduler *scheduler.Scheduler
	delivery  Deliverer
	events    events.Publisher
	clock     clock.Clock
	logger    zerolog.Logger

	// passMu serializes notification passes.
	passMu sync.Mutex

	mu       sync.RWMutex
	lastPass *PassSummary
}

// New creates a service over comps.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, comps Components, logger zerolog.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid personalize config: %w", err)
	}
	switch {
	case comps.Store == nil:
		return nil, errors.New("store is required")
	case comps.Engine == nil:
		return nil, errors.New("recommendation engine is required")
	case comps.Ranker == nil:
		return nil, errors.New("search ranker is required")
	case comps.Detector == nil:
		return nil, errors.New("geo detector is required")
	case comps.Generator == nil:
		return nil, errors.New("notification generator is required")
	case comps.Scheduler == nil:
		return nil, errors.New("notification scheduler is required")
	case comps.Delivery == nil:
		return nil, errors.New("delivery manager is required")
	case comps.Clock == nil:
		return nil, errors.New("clock is required")
	}

	return &Service{
		config:    cfg,
		store:     comps.Store,
		engine:    comps.Engine,
		worker:    comps.Worker,
		ranker:    comps.Ranker,
		detector:  comps.Detector,
		generator: comps.Generator,
		scheduler: comps.Scheduler,
		delivery:  comps.Delivery,
		events:    comps.Events,
		clock:     comps.Clock,
		logger:    logger.With().Str("component", "personalize").Logger(),
	}, nil
}

// catalogSnapshot is the catalog as read once at the start of a pass.
// An input that failed to load is empty and its error is in failed.
type catalogSnapshot struct {
	places    []models.Place
	favorites []models.Favorite
	searches  []models.SearchRecord
	failed    map[string]error
}

// err returns the first read error in places, favorites, searches order.
func (c *catalogSnapshot) err() error {
	for _, in := range []string{generator.InputPlaces, generator.InputFavorites, generator.InputSearches} {
		if err, ok := c.failed[in]; ok {
			return err
		}
	}
	return nil
}

// readCatalog reads each catalog input once. A failed read is logged and
// recorded; the other inputs are still read.
func (s *Service) readCatalog(ctx context.Context) *catalogSnapshot {
	snap := &catalogSnapshot{failed: make(map[string]error)}
	fail := func(input string, err error) {
		s.logger.Error().Err(err).Str("input", input).Msg("Catalog read failed")
		snap.failed[input] = err
	}

	var err error
	if snap.places, err = s.store.ListPlaces(ctx); err != nil {
		snap.places = []models.Place{}
		fail(generator.InputPlaces, fmt.Errorf("list places: %w", err))
	}
	if snap.favorites, err = s.store.ListFavorites(ctx); err != nil {
		snap.favorites = []models.Favorite{}
		fail(generator.InputFavorites, fmt.Errorf("list favorites: %w", err))
	}
	if snap.searches, err = s.store.ListSearchHistory(ctx, s.config.HistoryLimit); err != nil {
		snap.searches = []models.SearchRecord{}
		fail(generator.InputSearches, fmt.Errorf("list search history: %w", err))
	}
	return snap
}

// reindex rebuilds the autocomplete and nearby indexes from places.
func (s *Service) reindex(places []models.Place) {
	s.ranker.IndexPlaces(places)
	indexed := s.detector.Load(places)
	s.logger.Debug().Int("places", len(places)).Int("geo_indexed", indexed).Msg("Catalog indexes rebuilt")
}

// RefreshCatalog reloads the place catalog into the search and nearby
// indexes.
func (s *Service) RefreshCatalog(ctx context.Context) error {
	places, err := s.store.ListPlaces(ctx)
	if err != nil {
		return fmt.Errorf("list places: %w", err)
	}
	s.reindex(places)
	return nil
}

// publish sends event on topic. When no bus is configured, or publishing
// fails, fallback writes the record directly.
func (s *Service) publish(ctx context.Context, topic string, event any, fallback func() error) error {
	if s.events != nil {
		err := s.events.Publish(ctx, topic, event)
		if err == nil {
			return nil
		}
		s.logger.Warn().Err(err).Str("topic", topic).Msg("Event publish failed, writing directly")
	}
	if fallback == nil {
		return nil
	}
	return fallback()
}

// LastPass returns the summary of the most recent notification pass.
func (s *Service) LastPass() (PassSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastPass == nil {
		return PassSummary{}, false
	}
	return *s.lastPass, true
}

func (s *Service) setLastPass(p *PassSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPass = p
}

// countByKind tallies notifications by wire kind.
func countByKind(ns []models.Notification) map[string]int {
	out := make(map[string]int)
	for i := range ns {
		out[string(ns[i].Kind)]++
	}
	return out
}
