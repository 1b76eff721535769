// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/waypoint/internal/models"
)

// SaveNotification creates or replaces a notification record.
func (s *Store) SaveNotification(_ context.Context, n *models.Notification) error {
	if n.ID == "" {
		return fmt.Errorf("notification id is required")
	}
	return s.put("put", "notification", []byte(prefixNotif+n.ID), n)
}

// GetNotification returns the notification record with id.
func (s *Store) GetNotification(_ context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	if err := s.get("get", "notification", []byte(prefixNotif+id), &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// ListNotifications returns records in any of the given states, or every
// record when states is empty. Order is by id.
func (s *Store) ListNotifications(_ context.Context, states ...models.NotificationState) ([]models.Notification, error) {
	want := make(map[models.NotificationState]bool, len(states))
	for _, st := range states {
		want[st] = true
	}

	var out []models.Notification
	err := scan(s, "list", "notification", prefixNotif, scanOptions{}, func(_ []byte, n *models.Notification) bool {
		if len(want) == 0 || want[n.State] {
			out = append(out, *n)
		}
		return true
	})
	return out, err
}

// ListUndispatchedBefore returns scheduled records whose delivery time is
// before t. These are triggers that were lost or failed to dispatch.
func (s *Store) ListUndispatchedBefore(_ context.Context, t time.Time) ([]models.Notification, error) {
	var out []models.Notification
	err := scan(s, "list", "notification", prefixNotif, scanOptions{}, func(_ []byte, n *models.Notification) bool {
		if n.State == models.StateScheduled && n.ScheduledAt.Before(t) {
			out = append(out, *n)
		}
		return true
	})
	return out, err
}

// DeleteDeliveredBefore removes dispatched records delivered before cutoff
// and cancelled records scheduled before cutoff, along with feed entries
// older than cutoff. Returns the number of notification records removed.
func (s *Store) DeleteDeliveredBefore(_ context.Context, cutoff time.Time) (int, error) {
	var keys [][]byte
	err := scan(s, "scan", "notification", prefixNotif, scanOptions{}, func(key []byte, n *models.Notification) bool {
		switch n.State {
		case models.StateDispatched:
			if n.DeliveredAt != nil && n.DeliveredAt.Before(cutoff) {
				keys = append(keys, key)
			}
		case models.StateCancelled:
			if n.ScheduledAt.Before(cutoff) {
				keys = append(keys, key)
			}
		}
		return true
	})
	if err != nil {
		return 0, err
	}
	removed := len(keys)

	limit := timeKey(prefixFeed, cutoff, "")
	err = scan(s, "scan", "feed", prefixFeed, scanOptions{}, func(key []byte, _ *models.Notification) bool {
		if string(key) >= string(limit) {
			return false
		}
		keys = append(keys, key)
		return true
	})
	if err != nil {
		return 0, err
	}

	if err := s.deleteKeys("delete", "notification", keys); err != nil {
		return 0, err
	}
	return removed, nil
}

// AppendFeed adds a delivered notification to the in-app feed.
func (s *Store) AppendFeed(_ context.Context, n *models.Notification) error {
	at := n.ScheduledAt
	if n.DeliveredAt != nil {
		at = *n.DeliveredAt
	}
	return s.put("put", "feed", timeKey(prefixFeed, at, n.ID), n)
}

// ListFeed returns up to limit feed entries, newest first.
func (s *Store) ListFeed(_ context.Context, limit int) ([]models.Notification, error) {
	var out []models.Notification
	err := scan(s, "list", "feed", prefixFeed, scanOptions{reverse: true, limit: limit},
		func(_ []byte, n *models.Notification) bool {
			out = append(out, *n)
			return true
		})
	return out, err
}

// AppendEngagement records an engagement signal.
func (s *Store) AppendEngagement(_ context.Context, e *models.Engagement) error {
	return s.put("put", "engagement", timeKey(prefixEngage, e.RecordedAt, e.NotificationID), e)
}

// ListEngagement returns engagement records at or after since, oldest first.
func (s *Store) ListEngagement(_ context.Context, since time.Time) ([]models.Engagement, error) {
	var out []models.Engagement
	err := scan(s, "list", "engagement", prefixEngage, scanOptions{}, func(_ []byte, e *models.Engagement) bool {
		if !e.RecordedAt.Before(since) {
			out = append(out, *e)
		}
		return true
	})
	return out, err
}
