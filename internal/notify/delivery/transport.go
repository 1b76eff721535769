// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package delivery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/waypoint/internal/clock"
	"github.com/tomtom215/waypoint/internal/metrics"
)

// ErrTriggerNotFound is returned by CancelTrigger for unknown ids.
var ErrTriggerNotFound = errors.New("trigger not found")

// Transport accepts single-shot triggers. Scheduling an id that is already
// pending replaces it. Delivery is at-least-once.
type Transport interface {
	ScheduleTrigger(ctx context.Context, id string, when time.Time, payload []byte) error
	CancelTrigger(ctx context.Context, id string) error
}

// Trigger is a pending (id, time, payload) hand-off.
type Trigger struct {
	ID      string
	When    time.Time
	Payload []byte
}

// DispatchFunc handles a trigger whose time has come.
type DispatchFunc func(ctx context.Context, t Trigger) error

type heapEntry struct {
	trigger Trigger
	index   int
}

// triggerHeap is a min-heap ordered by fire time with O(1) lookup by id.
// Not safe for concurrent use; TimerTransport holds the lock.
type triggerHeap struct {
	heap []*heapEntry
	byID map[string]*heapEntry
}

func newTriggerHeap() *triggerHeap {
	return &triggerHeap{byID: make(map[string]*heapEntry)}
}

// push adds t, replacing any entry with the same id. Reports whether an
// entry was replaced.
func (h *triggerHeap) push(t Trigger) bool {
	if existing, ok := h.byID[t.ID]; ok {
		existing.trigger = t
		h.fix(existing.index)
		return true
	}
	e := &heapEntry{trigger: t, index: len(h.heap)}
	h.heap = append(h.heap, e)
	h.byID[t.ID] = e
	h.up(e.index)
	return false
}

func (h *triggerHeap) peek() *heapEntry {
	if len(h.heap) == 0 {
		return nil
	}
	return h.heap[0]
}

func (h *triggerHeap) remove(id string) (Trigger, bool) {
	e, ok := h.byID[id]
	if !ok {
		return Trigger{}, false
	}
	return h.removeAt(e.index).trigger, true
}

// popDue removes every entry due at or before now, earliest first.
func (h *triggerHeap) popDue(now time.Time) []Trigger {
	var due []Trigger
	for len(h.heap) > 0 && !h.heap[0].trigger.When.After(now) {
		due = append(due, h.removeAt(0).trigger)
	}
	return due
}

func (h *triggerHeap) removeAt(i int) *heapEntry {
	n := len(h.heap) - 1
	e := h.heap[i]
	delete(h.byID, e.trigger.ID)

	if i == n {
		h.heap = h.heap[:n]
		return e
	}
	h.heap[i] = h.heap[n]
	h.heap[i].index = i
	h.heap = h.heap[:n]
	h.fix(i)
	return e
}

func (h *triggerHeap) fix(i int) {
	if !h.up(i) {
		h.down(i)
	}
}

func (h *triggerHeap) less(i, j int) bool {
	a, b := h.heap[i].trigger, h.heap[j].trigger
	if a.When.Equal(b.When) {
		return a.ID < b.ID
	}
	return a.When.Before(b.When)
}

func (h *triggerHeap) up(i int) bool {
	moved := false
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(i, parent) {
			break
		}
		h.swap(i, parent)
		i = parent
		moved = true
	}
	return moved
}

func (h *triggerHeap) down(i int) {
	n := len(h.heap)
	for {
		smallest := i
		left, right := 2*i+1, 2*i+2
		if left < n && h.less(left, smallest) {
			smallest = left
		}
		if right < n && h.less(right, smallest) {
			smallest = right
		}
		if smallest == i {
			return
		}
		h.swap(i, smallest)
		i = smallest
	}
}

func (h *triggerHeap) swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]
	h.heap[i].index = i
	h.heap[j].index = j
}

// TimerConfig configures the TimerTransport dispatcher loop.
type TimerConfig struct {
	// TickInterval is how often due triggers are checked. Default: 1s.
	TickInterval time.Duration `koanf:"tick_interval"`
}

// DefaultTimerConfig returns the default dispatcher configuration.
func DefaultTimerConfig() TimerConfig {
	return TimerConfig{TickInterval: time.Second}
}

// TimerTransport keeps pending triggers in memory and fires them from a
// ticker loop. A trigger cancelled before its tick pops it is never
// dispatched. Implements Transport and suture.Service.
type TimerTransport struct {
	config   TimerConfig
	clock    clock.Clock
	dispatch DispatchFunc
	logger   zerolog.Logger

	mu      sync.Mutex
	pending *triggerHeap
	wake    chan struct{}

	running    atomic.Bool
	dispatched atomic.Int64
	failed     atomic.Int64
}

// NewTimerTransport creates a transport that hands due triggers to dispatch.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTimerTransport(cfg TimerConfig, clk clock.Clock, dispatch DispatchFunc, logger zerolog.Logger) (*TimerTransport, error) {
	if dispatch == nil {
		return nil, fmt.Errorf("dispatch function is required")
	}
	if clk == nil {
		clk = clock.NewReal(nil)
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	return &TimerTransport{
		config:   cfg,
		clock:    clk,
		dispatch: dispatch,
		logger:   logger.With().Str("component", "timer-transport").Logger(),
		pending:  newTriggerHeap(),
		wake:     make(chan struct{}, 1),
	}, nil
}

// ScheduleTrigger queues payload to fire at when. An existing trigger with
// the same id is replaced.
func (t *TimerTransport) ScheduleTrigger(ctx context.Context, id string, when time.Time, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("trigger id is required")
	}

	t.mu.Lock()
	replaced := t.pending.push(Trigger{ID: id, When: when, Payload: payload})
	size := len(t.pending.heap)
	t.mu.Unlock()

	metrics.PendingTriggers.Set(float64(size))
	t.logger.Debug().
		Str("id", id).
		Time("when", when).
		Bool("replaced", replaced).
		Msg("trigger scheduled")

	t.signal()
	return nil
}

// CancelTrigger removes a pending trigger.
func (t *TimerTransport) CancelTrigger(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	_, ok := t.pending.remove(id)
	size := len(t.pending.heap)
	t.mu.Unlock()

	if !ok {
		return fmt.Errorf("cancel %s: %w", id, ErrTriggerNotFound)
	}
	metrics.PendingTriggers.Set(float64(size))
	return nil
}

// Pending returns the number of queued triggers.
func (t *TimerTransport) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending.heap)
}

// Lookup returns the pending trigger for id.
func (t *TimerTransport) Lookup(id string) (Trigger, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.pending.byID[id]
	if !ok {
		return Trigger{}, false
	}
	return e.trigger, true
}

// NextFire returns the earliest pending fire time.
func (t *TimerTransport) NextFire() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e := t.pending.peek(); e != nil {
		return e.trigger.When, true
	}
	return time.Time{}, false
}

// DispatchDue fires every trigger due at the current clock time and
// returns how many were dispatched successfully.
func (t *TimerTransport) DispatchDue(ctx context.Context) int {
	now := t.clock.Now()

	t.mu.Lock()
	due := t.pending.popDue(now)
	size := len(t.pending.heap)
	t.mu.Unlock()

	if len(due) == 0 {
		return 0
	}
	metrics.PendingTriggers.Set(float64(size))

	ok := 0
	for _, trig := range due {
		if err := t.dispatch(ctx, trig); err != nil {
			t.failed.Add(1)
			t.logger.Error().
				Err(err).
				Str("id", trig.ID).
				Time("when", trig.When).
				Msg("trigger dispatch failed")
			continue
		}
		ok++
		t.dispatched.Add(1)
	}
	return ok
}

// Serve runs the dispatcher loop until ctx is cancelled.
func (t *TimerTransport) Serve(ctx context.Context) error {
	if !t.running.CompareAndSwap(false, true) {
		return fmt.Errorf("timer transport already running")
	}
	defer t.running.Store(false)

	ticker := time.NewTicker(t.config.TickInterval)
	defer ticker.Stop()

	t.logger.Info().Dur("tick", t.config.TickInterval).Msg("trigger dispatcher started")

	for {
		select {
		case <-ctx.Done():
			t.logger.Info().
				Int("pending", t.Pending()).
				Int64("dispatched", t.dispatched.Load()).
				Msg("trigger dispatcher stopping")
			return ctx.Err()
		case <-ticker.C:
			t.DispatchDue(ctx)
		case <-t.wake:
			t.DispatchDue(ctx)
		}
	}
}

// signal wakes the loop so triggers already due fire without waiting a tick.
func (t *TimerTransport) signal() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// Stats returns dispatch counters.
func (t *TimerTransport) Stats() (dispatched, failed int64) {
	return t.dispatched.Load(), t.failed.Load()
}

// String returns the service name for logging.
func (t *TimerTransport) String() string {
	return "trigger-dispatcher"
}
