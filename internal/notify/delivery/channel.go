// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package delivery

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/waypoint/internal/models"
)

// Channel names.
const (
	ChannelInApp   = "in_app"
	ChannelWebhook = "webhook"
)

// Channel delivers a fired notification to one destination.
type Channel interface {
	// Name returns the channel identifier.
	Name() string

	// Send delivers n. Failures are reported in the Result; the error
	// return is reserved for failures outside the channel's control.
	Send(ctx context.Context, n *models.Notification) (*Result, error)
}

// Result contains the result of a delivery attempt.
type Result struct {
	// Success indicates if delivery was successful.
	Success bool `json:"success"`

	// Channel is the channel that produced the result.
	Channel string `json:"channel"`

	// DeliveredAt is when delivery succeeded.
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`

	// ErrorMessage contains error details if failed.
	ErrorMessage string `json:"error_message,omitempty"`

	// ErrorCode is a machine-readable error code.
	ErrorCode string `json:"error_code,omitempty"`

	// IsTransient indicates the attempt may succeed if retried.
	IsTransient bool `json:"is_transient"`

	// RetryAfter is the delay the destination asked for (rate limiting).
	RetryAfter *time.Duration `json:"retry_after,omitempty"`

	// ResponseCode is the HTTP response code for webhook deliveries.
	ResponseCode int `json:"response_code,omitempty"`

	// RetryCount is the number of retries made.
	RetryCount int `json:"retry_count"`
}

// Error codes for delivery failures.
const (
	ErrorCodeInvalidConfig    = "INVALID_CONFIG"
	ErrorCodeConnectionFailed = "CONNECTION_FAILED"
	ErrorCodeAuthFailed       = "AUTH_FAILED"
	ErrorCodeRateLimited      = "RATE_LIMITED"
	ErrorCodeContentTooLarge  = "CONTENT_TOO_LARGE"
	ErrorCodeNotFound         = "NOT_FOUND"
	ErrorCodeServerError      = "SERVER_ERROR"
	ErrorCodeCircuitOpen      = "CIRCUIT_OPEN"
	ErrorCodeTimeout          = "TIMEOUT"
	ErrorCodeUnknown          = "UNKNOWN"
)

// ChannelRegistry holds the channels a Manager delivers through.
type ChannelRegistry struct {
	mu       sync.RWMutex
	channels map[string]Channel
}

// NewChannelRegistry creates a registry holding channels.
func NewChannelRegistry(channels ...Channel) *ChannelRegistry {
	r := &ChannelRegistry{channels: make(map[string]Channel)}
	for _, ch := range channels {
		r.Register(ch)
	}
	return r
}

// Register adds a channel, replacing any channel with the same name.
func (r *ChannelRegistry) Register(channel Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels[channel.Name()] = channel
}

// Get retrieves a channel by name.
func (r *ChannelRegistry) Get(name string) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[name]
	return ch, ok
}

// List returns registered channel names in alphabetical order.
func (r *ChannelRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.channels))
	for name := range r.channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered channels.
func (r *ChannelRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}
