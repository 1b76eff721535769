// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package personalize

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/waypoint/internal/events"
	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/notify/delivery"
	"github.com/tomtom215/waypoint/internal/notify/generator"
	"github.com/tomtom215/waypoint/internal/notify/scheduler"
)

// GenerateAndScheduleNotifications runs one notification pass: read the
// catalog and policy once, generate candidates from every source, then
// filter, cap, time and hand them to the transport. A failed catalog read
// fails only the sources that need that input; the others still run.
// Only a policy read failure aborts the pass.
func (s *Service) GenerateAndScheduleNotifications(ctx context.Context) error {
	s.passMu.Lock()
	defer s.passMu.Unlock()

	start := time.Now()
	summary := &PassSummary{StartedAt: s.clock.Now()}

	snap := s.readCatalog(ctx)
	for in := range snap.failed {
		summary.FailedReads = append(summary.FailedReads, in)
	}
	sort.Strings(summary.FailedReads)

	policy, err := s.store.GetPolicy(ctx)
	if err != nil {
		err = fmt.Errorf("get policy: %w", err)
		s.logger.Error().Err(err).Msg("Notification pass aborted")
		return err
	}

	gsnap := &generator.Snapshot{
		Places:    snap.places,
		Favorites: snap.favorites,
		Searches:  snap.searches,
	}
	if len(snap.failed) > 0 {
		gsnap.Unavailable = snap.failed
	}
	if loc, ok := s.detector.Location(); ok {
		gsnap.Location = &loc
		gsnap.Nearby = s.detector.NearbyWithin(loc.Latitude, loc.Longitude, policy.LocationRadiusKm)
	}

	res := s.generator.Generate(gsnap)
	for _, f := range res.Failures {
		summary.FailedSources = append(summary.FailedSources, f.Source)
	}
	summary.Generated = len(res.Candidates)
	summary.GeneratedByKind = countByKind(res.Candidates)

	outcome := s.scheduler.ScheduleMany(ctx, res.Candidates, &policy)
	for i := range outcome.Scheduled {
		if err := s.store.SaveNotification(ctx, &outcome.Scheduled[i]); err != nil {
			s.logger.Warn().Err(err).Str("id", outcome.Scheduled[i].ID).Msg("Failed to persist scheduled notification")
		}
	}
	for _, f := range outcome.Failed {
		s.logger.Warn().Err(f.Err).Str("id", f.ID).Msg("Transport rejected notification")
	}

	summary.Scheduled = len(outcome.Scheduled)
	summary.FilteredOut = len(outcome.FilteredOut)
	summary.Capped = len(outcome.Capped)
	summary.Skipped = len(outcome.Skipped)
	summary.Failed = len(outcome.Failed)
	summary.DurationMS = time.Since(start).Milliseconds()
	s.setLastPass(summary)

	metrics.RecordNotificationPass(time.Since(start), summary.GeneratedByKind, summary.FailedSources)
	metrics.RecordScheduleOutcome(countByKind(outcome.Scheduled), summary.FilteredOut, summary.Capped, summary.Skipped)

	s.logger.Info().
		Int("generated", summary.Generated).
		Int("scheduled", summary.Scheduled).
		Int("failed_sources", len(summary.FailedSources)).
		Strs("failed_reads", summary.FailedReads).
		Dur("duration", time.Since(start)).
		Msg("Notification pass completed")
	return nil
}

// Dispatch delivers a due trigger. It is the transport's dispatch
// function. A trigger whose notification was cancelled, or is otherwise
// no longer pending, is dropped.
func (s *Service) Dispatch(ctx context.Context, t delivery.Trigger) error {
	var payload models.Notification
	if err := json.Unmarshal(t.Payload, &payload); err != nil {
		return fmt.Errorf("decode trigger %s: %w", t.ID, err)
	}

	n, ok := s.scheduler.MarkDispatched(t.ID)
	if !ok {
		s.logger.Debug().Str("id", t.ID).Msg("Trigger fired for notification that is no longer pending")
		return nil
	}

	report := s.delivery.Deliver(ctx, &n)
	var channels []string
	for i := range report.Results {
		if report.Results[i].Success {
			channels = append(channels, report.Results[i].Channel)
		}
	}
	metrics.RecordDispatch(string(n.Kind))

	ev := events.NotificationDispatched{
		Notification: n,
		Delivered:    report.Delivered,
		Channels:     channels,
		DispatchedAt: s.clock.Now(),
	}
	if err := s.publish(ctx, events.TopicNotificationDispatched, ev, func() error {
		return s.store.SaveNotification(ctx, &n)
	}); err != nil {
		s.logger.Error().Err(err).Str("id", n.ID).Msg("Failed to record dispatched notification")
	}

	if !report.Delivered {
		return fmt.Errorf("deliver %s: %d of %d channels failed", n.ID, report.Failed(), len(report.Results))
	}
	return nil
}

// RecordEngagement records that the user engaged with (or dismissed) a
// notification. It feeds timing statistics only.
func (s *Service) RecordEngagement(ctx context.Context, id string, engaged bool) (models.Engagement, error) {
	e := s.scheduler.RecordEngagement(ctx, id, engaged)
	metrics.RecordEngagement(engaged)

	err := s.publish(ctx, events.TopicNotificationEngagement, events.EngagementRecorded{Engagement: e}, func() error {
		return s.store.AppendEngagement(ctx, &e)
	})
	if err != nil {
		return e, fmt.Errorf("record engagement: %w", err)
	}
	return e, nil
}

// EngagementStats returns the engagement statistics by hour and weekday.
func (s *Service) EngagementStats() scheduler.EngagementStats {
	return s.scheduler.EngagementStats()
}

// PendingNotifications returns the scheduled notifications by delivery time.
func (s *Service) PendingNotifications() []models.Notification {
	return s.scheduler.Pending()
}

// CancelNotification cancels one pending notification. Reports false when
// id was not pending.
func (s *Service) CancelNotification(ctx context.Context, id string) (bool, error) {
	ok, err := s.scheduler.Cancel(ctx, id)
	if err != nil || !ok {
		return ok, err
	}
	metrics.RecordCancellation(1)
	s.persistTracked(ctx, id)
	return true, nil
}

// CancelAllNotifications cancels every pending notification.
func (s *Service) CancelAllNotifications(ctx context.Context) (int, error) {
	pending := s.scheduler.Pending()
	ids := make([]string, 0, len(pending))
	for i := range pending {
		ids = append(ids, pending[i].ID)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	cancelled, err := s.scheduler.CancelAll(ctx, ids)
	for _, id := range ids {
		if state, ok := s.scheduler.State(id); ok && state == models.StateCancelled {
			s.persistTracked(ctx, id)
		}
	}
	metrics.RecordCancellation(cancelled)
	s.logger.Info().Int("cancelled", cancelled).Msg("Pending notifications cancelled")
	return cancelled, err
}

// persistTracked writes the scheduler's current record for id.
func (s *Service) persistTracked(ctx context.Context, id string) {
	n, ok := s.scheduler.Get(id)
	if !ok {
		return
	}
	if err := s.store.SaveNotification(ctx, &n); err != nil {
		s.logger.Warn().Err(err).Str("id", id).Msg("Failed to persist notification")
	}
}

// CleanupOldNotifications removes dispatched and cancelled records older
// than the retention period from the store and the scheduler.
func (s *Service) CleanupOldNotifications(ctx context.Context) (int, error) {
	cutoff := s.clock.Now().Add(-s.config.Retention)
	removed, err := s.store.DeleteDeliveredBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old notifications: %w", err)
	}
	pruned := s.scheduler.Prune(cutoff)
	if removed > 0 || pruned > 0 {
		s.logger.Info().
			Int("removed", removed).
			Int("pruned", pruned).
			Time("cutoff", cutoff).
			Msg("Old notifications cleaned up")
	}
	return removed, nil
}

// ProcessDueNotifications reschedules records whose time has passed but
// that were never dispatched, such as those missed while the process was
// down. Returns the number rescheduled.
func (s *Service) ProcessDueNotifications(ctx context.Context) (int, error) {
	cutoff := s.clock.Now().Add(-s.config.DueGrace)
	overdue, err := s.store.ListUndispatchedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list overdue notifications: %w", err)
	}

	rescheduled := 0
	var errs []error
	for i := range overdue {
		n, err := s.scheduler.Resume(ctx, overdue[i])
		if errors.Is(err, scheduler.ErrTerminal) {
			// Dispatched or cancelled already; the store catches up.
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := s.store.SaveNotification(ctx, &n); err != nil {
			errs = append(errs, fmt.Errorf("save %s: %w", n.ID, err))
			continue
		}
		rescheduled++
	}

	if rescheduled > 0 {
		s.logger.Info().Int("rescheduled", rescheduled).Msg("Overdue notifications rescheduled")
	}
	return rescheduled, errors.Join(errs...)
}

// Restore loads persisted state at startup: terminal records keep their
// ids terminal, scheduled records are handed back to the transport, the
// engagement log is replayed and the catalog indexes are rebuilt.
func (s *Service) Restore(ctx context.Context) error {
	if err := s.RefreshCatalog(ctx); err != nil {
		return err
	}

	records, err := s.store.ListNotifications(ctx)
	if err != nil {
		return fmt.Errorf("list notifications: %w", err)
	}
	terminal := s.scheduler.Restore(records)

	resumed := 0
	for i := range records {
		if records[i].State != models.StateScheduled {
			continue
		}
		n, err := s.scheduler.Resume(ctx, records[i])
		if err != nil {
			s.logger.Warn().Err(err).Str("id", records[i].ID).Msg("Failed to resume notification")
			continue
		}
		if !n.ScheduledAt.Equal(records[i].ScheduledAt) {
			if err := s.store.SaveNotification(ctx, &n); err != nil {
				s.logger.Warn().Err(err).Str("id", n.ID).Msg("Failed to persist resumed notification")
			}
		}
		resumed++
	}

	engagement, err := s.store.ListEngagement(ctx, s.clock.Now().Add(-s.config.EngagementWindow))
	if err != nil {
		return fmt.Errorf("list engagement: %w", err)
	}
	s.scheduler.LoadEngagement(engagement)

	s.logger.Info().
		Int("terminal", terminal).
		Int("resumed", resumed).
		Int("engagement", len(engagement)).
		Msg("Notification state restored")
	return nil
}
