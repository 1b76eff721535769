// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package delivery

import (
	"context"
	"time"

	"github.com/tomtom215/waypoint/internal/models"
)

// maxInAppBodyLength bounds the body stored in the feed, in runes.
const maxInAppBodyLength = 1000

// FeedStore persists in-app notifications for retrieval via the API.
type FeedStore interface {
	AppendFeed(ctx context.Context, n *models.Notification) error
}

// InAppChannel delivers notifications by writing them into the user's feed.
type InAppChannel struct {
	store FeedStore
}

// NewInAppChannel creates an in-app channel writing to store.
func NewInAppChannel(store FeedStore) *InAppChannel {
	return &InAppChannel{store: store}
}

// Name returns the channel identifier.
func (c *InAppChannel) Name() string {
	return ChannelInApp
}

// Send appends n to the feed.
func (c *InAppChannel) Send(ctx context.Context, n *models.Notification) (*Result, error) {
	result := &Result{Channel: ChannelInApp}

	if c.store == nil {
		result.ErrorMessage = "in-app feed store not configured"
		result.ErrorCode = ErrorCodeInvalidConfig
		return result, nil
	}

	entry := *n
	entry.Body = truncateRunes(entry.Body, maxInAppBodyLength)
	now := time.Now()
	entry.DeliveredAt = &now

	if err := c.store.AppendFeed(ctx, &entry); err != nil {
		result.ErrorMessage = err.Error()
		result.ErrorCode = ErrorCodeServerError
		result.IsTransient = true
		return result, nil
	}

	result.Success = true
	result.DeliveredAt = &now
	return result, nil
}

// truncateRunes shortens s to at most limit runes, marking the cut with "...".
func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if limit <= 0 || len(r) <= limit {
		return s
	}
	if limit <= 3 {
		return string(r[:limit])
	}
	return string(r[:limit-3]) + "..."
}
