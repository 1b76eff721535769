// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/waypoint/internal/clock"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/notify/delivery"
)

var (
	// ErrFilteredOut is returned by Schedule when the policy rejects a candidate.
	ErrFilteredOut = errors.New("notification filtered out by policy")

	// ErrTerminal is returned by Schedule for ids already dispatched or cancelled.
	ErrTerminal = errors.New("notification already dispatched or cancelled")
)

// Scheduler filters candidates against a policy, picks delivery times and
// hands triggers to a delivery.Transport. It tracks the state of every id
// it has scheduled so repeated passes replace pending triggers and never
// resend dispatched ones.
type Scheduler struct {
	config    Config
	peakHours []int
	transport delivery.Transport
	clock     clock.Clock
	logger    zerolog.Logger

	mu         sync.Mutex
	items      map[string]*models.Notification
	engagement *engagementLog
}

// Plan is the pure result of filtering, ordering, capping and timing.
type Plan struct {
	// Planned are the candidates to schedule, in (priority, relevance)
	// order, with ScheduledAt already adjusted.
	Planned []models.Notification

	// FilteredOut failed the policy filter.
	FilteredOut []models.Notification

	// Capped passed the filter but fell beyond MaxDailyCount.
	Capped []models.Notification
}

// Failure pairs a notification id with the transport error it hit.
type Failure struct {
	ID  string
	Err error
}

// Outcome reports what ScheduleMany did with each candidate.
type Outcome struct {
	Scheduled   []models.Notification
	FilteredOut []models.Notification
	Capped      []models.Notification
	Skipped     []models.Notification
	Failed      []Failure
}

// New creates a scheduler handing triggers to transport.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, transport delivery.Transport, clk clock.Clock, logger zerolog.Logger) (*Scheduler, error) {
	if transport == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if clk == nil {
		return nil, fmt.Errorf("clock is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Scheduler{
		config:     cfg,
		peakHours:  cfg.sortedPeakHours(),
		transport:  transport,
		clock:      clk,
		logger:     logger.With().Str("component", "scheduler").Logger(),
		items:      make(map[string]*models.Notification),
		engagement: newEngagementLog(),
	}, nil
}

// Filter reports whether n may be scheduled under p: its kind is enabled
// and it meets the priority and relevance floors.
func Filter(n *models.Notification, p *models.Policy) bool {
	if !p.KindEnabled(n.Kind) {
		return false
	}
	if n.Priority < p.MinPriority {
		return false
	}
	return n.Relevance >= p.MinRelevance
}

// Plan filters candidates, orders survivors by priority then relevance
// (both descending, stable), keeps at most MaxDailyCount and assigns each
// the latest of its own time, now, and the previous item's time plus
// MinSpacing. Quiet-hour, peak-hour and minimum-lead adjustments come
// after. Items are adjusted independently and not re-sorted afterwards.
// candidates is not modified.
func (s *Scheduler) Plan(candidates []models.Notification, p *models.Policy) Plan {
	now := s.clock.Now()
	var plan Plan

	survivors := make([]models.Notification, 0, len(candidates))
	for i := range candidates {
		n := candidates[i]
		if Filter(&n, p) {
			survivors = append(survivors, n)
			continue
		}
		n.State = models.StateFilteredOut
		plan.FilteredOut = append(plan.FilteredOut, n)
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		if survivors[i].Priority != survivors[j].Priority {
			return survivors[i].Priority > survivors[j].Priority
		}
		return survivors[i].Relevance > survivors[j].Relevance
	})

	limit := max(p.MaxDailyCount, 0)
	if len(survivors) > limit {
		for _, n := range survivors[limit:] {
			n.State = models.StateFilteredOut
			plan.Capped = append(plan.Capped, n)
		}
		survivors = survivors[:limit]
	}

	// Spacing is measured between unadjusted times, in plan order.
	spacing := p.MinSpacing()
	var prev time.Time
	for i := range survivors {
		n := survivors[i]
		t := n.ScheduledAt
		if t.Before(now) {
			t = now
		}
		if i > 0 {
			if earliest := prev.Add(spacing); t.Before(earliest) {
				t = earliest
			}
		}
		prev = t
		n.ScheduledAt = s.adjust(t, now, p)
		n.State = models.StateScheduled
		plan.Planned = append(plan.Planned, n)
	}

	return plan
}

// ScheduleMany plans candidates and hands each planned item to the
// transport. Ids already dispatched or cancelled are skipped before the
// daily cap is applied. Scheduling an id that is still pending replaces
// its trigger. A transport failure affects only that item.
func (s *Scheduler) ScheduleMany(ctx context.Context, candidates []models.Notification, p *models.Policy) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out Outcome
	fresh := make([]models.Notification, 0, len(candidates))
	for i := range candidates {
		if s.isTerminalLocked(candidates[i].ID) {
			out.Skipped = append(out.Skipped, candidates[i])
			continue
		}
		fresh = append(fresh, candidates[i])
	}

	plan := s.Plan(fresh, p)
	out.FilteredOut = plan.FilteredOut
	out.Capped = plan.Capped

	for i := range plan.Planned {
		n := plan.Planned[i]
		if err := s.handOffLocked(ctx, &n); err != nil {
			out.Failed = append(out.Failed, Failure{ID: n.ID, Err: err})
			continue
		}
		out.Scheduled = append(out.Scheduled, n)
	}

	s.logger.Info().
		Int("candidates", len(candidates)).
		Int("scheduled", len(out.Scheduled)).
		Int("filtered_out", len(out.FilteredOut)).
		Int("capped", len(out.Capped)).
		Int("skipped", len(out.Skipped)).
		Int("failed", len(out.Failed)).
		Msg("notifications scheduled")

	return out
}

// Schedule filters, times and hands off a single candidate.
//
//nolint:gocritic // hugeParam: candidate passed by value for immutability
func (s *Scheduler) Schedule(ctx context.Context, n models.Notification, p *models.Policy) (models.Notification, error) {
	if !Filter(&n, p) {
		n.State = models.StateFilteredOut
		return n, ErrFilteredOut
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isTerminalLocked(n.ID) {
		return n, ErrTerminal
	}

	now := s.clock.Now()
	if n.ScheduledAt.Before(now) {
		n.ScheduledAt = now
	}
	n.ScheduledAt = s.adjust(n.ScheduledAt, now, p)
	n.State = models.StateScheduled

	if err := s.handOffLocked(ctx, &n); err != nil {
		return n, err
	}
	return n, nil
}

// Resume re-hands a previously scheduled notification to the transport
// without filtering or re-timing it, except that a time already in the
// past moves to now plus the minimum lead. Used after a restart and for
// overdue records.
//
//nolint:gocritic // hugeParam: notification passed by value for immutability
func (s *Scheduler) Resume(ctx context.Context, n models.Notification) (models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isTerminalLocked(n.ID) {
		return n, ErrTerminal
	}

	if floor := s.clock.Now().Add(s.config.MinLead); n.ScheduledAt.Before(floor) {
		n.ScheduledAt = floor
	}
	n.State = models.StateScheduled

	if err := s.handOffLocked(ctx, &n); err != nil {
		return n, err
	}
	return n, nil
}

// handOffLocked encodes n and schedules its trigger, recording it as
// pending on success. Must be called with s.mu held.
func (s *Scheduler) handOffLocked(ctx context.Context, n *models.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification %s: %w", n.ID, err)
	}

	if err := s.transport.ScheduleTrigger(ctx, n.ID, n.ScheduledAt, payload); err != nil {
		s.logger.Error().
			Err(err).
			Str("id", n.ID).
			Str("kind", string(n.Kind)).
			Msg("transport rejected trigger")
		return fmt.Errorf("schedule trigger %s: %w", n.ID, err)
	}

	stored := *n
	s.items[n.ID] = &stored

	s.logger.Debug().
		Str("id", n.ID).
		Str("kind", string(n.Kind)).
		Int("priority", n.Priority).
		Time("at", n.ScheduledAt).
		Msg("trigger handed off")
	return nil
}

func (s *Scheduler) isTerminalLocked(id string) bool {
	if n, ok := s.items[id]; ok {
		return n.State == models.StateDispatched || n.State == models.StateCancelled
	}
	return false
}

// Cancel cancels a pending notification. Unknown, dispatched and already
// cancelled ids are a no-op. Reports whether a pending item was cancelled.
func (s *Scheduler) Cancel(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.items[id]
	if !ok || n.State != models.StateScheduled {
		return false, nil
	}

	err := s.transport.CancelTrigger(ctx, id)
	if err != nil && !errors.Is(err, delivery.ErrTriggerNotFound) {
		return false, fmt.Errorf("cancel trigger %s: %w", id, err)
	}
	// ErrTriggerNotFound means the trigger already fired; the dispatch in
	// flight will find the item cancelled.
	n.State = models.StateCancelled

	s.logger.Debug().Str("id", id).Msg("notification cancelled")
	return true, nil
}

// CancelAll cancels the given ids, or every pending notification when ids
// is empty. Returns the number cancelled and any transport errors joined.
func (s *Scheduler) CancelAll(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		for _, n := range s.Pending() {
			ids = append(ids, n.ID)
		}
	}

	cancelled := 0
	var errs []error
	for _, id := range ids {
		ok, err := s.Cancel(ctx, id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			cancelled++
		}
	}
	return cancelled, errors.Join(errs...)
}

// MarkDispatched moves a pending notification to Dispatched and returns
// it. It reports false when id is unknown or no longer pending, for
// example because it was cancelled after its trigger fired.
func (s *Scheduler) MarkDispatched(id string) (models.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.items[id]
	if !ok || !n.State.CanTransition(models.StateDispatched) {
		return models.Notification{}, false
	}
	now := s.clock.Now()
	n.State = models.StateDispatched
	n.DeliveredAt = &now
	return *n, true
}

// Get returns the tracked notification for id.
func (s *Scheduler) Get(id string) (models.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[id]
	if !ok {
		return models.Notification{}, false
	}
	return *n, true
}

// State returns the tracked state of id.
func (s *Scheduler) State(id string) (models.NotificationState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[id]
	if !ok {
		return "", false
	}
	return n.State, true
}

// Pending returns every scheduled notification ordered by delivery time.
func (s *Scheduler) Pending() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Notification, 0, len(s.items))
	for _, n := range s.items {
		if n.State == models.StateScheduled {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out
}

// Restore tracks previously persisted notifications without touching the
// transport, so terminal ids stay terminal across restarts. Pending ones
// must be re-handed with Resume.
func (s *Scheduler) Restore(records []models.Notification) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for i := range records {
		if !records[i].State.Terminal() {
			continue
		}
		rec := records[i]
		s.items[rec.ID] = &rec
		n++
	}
	return n
}

// Prune forgets terminal notifications last touched before cutoff.
// Returns the number removed.
func (s *Scheduler) Prune(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, n := range s.items {
		if !n.State.Terminal() {
			continue
		}
		touched := n.ScheduledAt
		if n.DeliveredAt != nil {
			touched = *n.DeliveredAt
		}
		if touched.Before(cutoff) {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}
