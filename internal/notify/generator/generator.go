// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package generator

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/waypoint/internal/category"
	"github.com/tomtom215/waypoint/internal/clock"
	"github.com/tomtom215/waypoint/internal/cron"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/random"
)

// Source names, used in logs, metrics and SourceFailure.
const (
	SourceRecommendation = "recommendation"
	SourcePattern        = "pattern"
	SourceLocation       = "location"
	SourceInsight        = "insight"
)

// Snapshot inputs a source can depend on.
const (
	InputPlaces    = "places"
	InputFavorites = "favorites"
	InputSearches  = "searches"
)

// ErrInputUnavailable wraps the read error of an input a source needs.
var ErrInputUnavailable = errors.New("input unavailable")

// idNamespace seeds the deterministic notification ids.
var idNamespace = uuid.MustParse("6f1c9a52-3b7e-4d0a-9c51-2e8f7d4b6a13")

// Recommender ranks catalog places by learned preference.
type Recommender interface {
	Recommend(candidates []models.Place, k int) []models.ScoredCandidate
}

// Snapshot is everything one generation pass reads. It is built once per
// pass and shared by every source.
type Snapshot struct {
	Places    []models.Place
	Favorites []models.Favorite
	Searches  []models.SearchRecord

	// Location and Nearby are optional; without them the location source
	// produces nothing.
	Location *models.Location
	Nearby   []models.NearbyPlace

	// Unavailable holds the read error of each input that could not be
	// loaded. Sources that need one of them are skipped and reported as
	// failed; the rest run on what was read.
	Unavailable map[string]error
}

// missing returns the first input in needs that is unavailable.
func (s *Snapshot) missing(needs []string) (string, error) {
	for _, in := range needs {
		if err, ok := s.Unavailable[in]; ok {
			return in, err
		}
	}
	return "", nil
}

// SourceFunc produces candidates from a snapshot at time now.
type SourceFunc func(snap *Snapshot, now time.Time) ([]models.Notification, error)

// SourceFailure records a source that returned an error or panicked.
type SourceFailure struct {
	Source string
	Err    error
}

// Result is the outcome of one Generate call.
type Result struct {
	Candidates []models.Notification
	// PerSource counts candidates by source name.
	PerSource map[string]int
	Failures  []SourceFailure
}

type namedSource struct {
	name  string
	fn    SourceFunc
	needs []string
}

// Generator turns a snapshot into notification candidates. Sources are
// independent; one failing never stops the rest.
type Generator struct {
	config  Config
	rec     Recommender
	rng     random.Source
	clock   clock.Clock
	matcher *category.Matcher
	weekly  *cron.Schedule
	logger  zerolog.Logger

	sources []namedSource
}

// Option customizes a Generator.
type Option func(*Generator)

// WithSource appends an extra source after the built-in ones. needs
// names the snapshot inputs it reads.
func WithSource(name string, fn SourceFunc, needs ...string) Option {
	return func(g *Generator) {
		g.sources = append(g.sources, namedSource{name: name, fn: fn, needs: needs})
	}
}

// New creates a generator. rec, rng and clk are required.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, rec Recommender, rng random.Source, clk clock.Clock, logger zerolog.Logger, opts ...Option) (*Generator, error) {
	if rec == nil || rng == nil || clk == nil {
		return nil, fmt.Errorf("recommender, random source and clock are required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generator config: %w", err)
	}
	weekly, err := cron.Parse(cfg.WeeklyInsightSchedule)
	if err != nil {
		return nil, fmt.Errorf("parse weekly schedule: %w", err)
	}

	g := &Generator{
		config:  cfg,
		rec:     rec,
		rng:     rng,
		clock:   clk,
		matcher: category.DefaultMatcher(),
		weekly:  weekly,
		logger:  logger.With().Str("component", "generator").Logger(),
	}
	g.sources = []namedSource{
		{SourceRecommendation, g.recommendations, []string{InputPlaces}},
		{SourcePattern, g.patterns, []string{InputSearches}},
		{SourceLocation, g.location, []string{InputFavorites}},
		{SourceInsight, g.insights, []string{InputPlaces, InputFavorites, InputSearches}},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate runs every source against snap.
func (g *Generator) Generate(snap *Snapshot) Result {
	if snap == nil {
		snap = &Snapshot{}
	}
	now := g.clock.Now()

	res := Result{PerSource: make(map[string]int, len(g.sources))}
	for _, src := range g.sources {
		if in, err := snap.missing(src.needs); err != nil {
			g.logger.Warn().Str("source", src.name).Str("input", in).Err(err).Msg("notification source skipped")
			res.Failures = append(res.Failures, SourceFailure{
				Source: src.name,
				Err:    fmt.Errorf("%w: %s: %w", ErrInputUnavailable, in, err),
			})
			continue
		}
		out, err := g.run(src, snap, now)
		if err != nil {
			g.logger.Error().Str("source", src.name).Err(err).Msg("notification source failed")
			res.Failures = append(res.Failures, SourceFailure{Source: src.name, Err: err})
			continue
		}
		res.PerSource[src.name] = len(out)
		res.Candidates = append(res.Candidates, out...)
	}

	g.logger.Debug().
		Int("candidates", len(res.Candidates)).
		Int("failures", len(res.Failures)).
		Msg("notification candidates generated")
	return res
}

func (g *Generator) run(src namedSource, snap *Snapshot, now time.Time) (out []models.Notification, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("panic in source %s: %v", src.name, r)
		}
	}()
	return src.fn(snap, now)
}

// newCandidate builds a Generated notification. The id is derived from
// kind, key and the calendar day so rerunning a pass on the same day
// replaces earlier candidates instead of duplicating them.
func newCandidate(now time.Time, kind models.NotificationKind, key, title, body string,
	priority int, relevance float64, delay time.Duration) models.Notification {
	id := uuid.NewSHA1(idNamespace, []byte(string(kind)+"|"+key+"|"+now.Format(time.DateOnly)))
	return models.Notification{
		ID:          id.String(),
		Title:       title,
		Body:        body,
		Kind:        kind,
		Priority:    priority,
		Relevance:   min(max(relevance, 0), 1),
		ScheduledAt: now.Add(delay),
		State:       models.StateGenerated,
		CreatedAt:   now,
	}
}
