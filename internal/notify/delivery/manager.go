// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package delivery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/models"
)

// ManagerConfig contains configuration for the delivery manager.
type ManagerConfig struct {
	// MaxRetries is the maximum number of retry attempts for transient errors.
	MaxRetries int `koanf:"max_retries"`

	// BaseDelay is the initial delay between retries.
	BaseDelay time.Duration `koanf:"base_delay"`

	// MaxDelay is the maximum delay between retries.
	MaxDelay time.Duration `koanf:"max_delay"`
}

// DefaultManagerConfig returns a default manager configuration.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// Manager fans a fired notification out to every registered channel,
// retrying transient failures with exponential backoff.
type Manager struct {
	registry   *ChannelRegistry
	logger     zerolog.Logger
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// Report aggregates the per-channel results for one notification.
type Report struct {
	NotificationID string    `json:"notification_id"`
	Results        []Result  `json:"results"`
	Delivered      bool      `json:"delivered"`
	StartedAt      time.Time `json:"started_at"`
	DurationMS     int64     `json:"duration_ms"`
}

// Failed returns the number of channels that did not deliver.
func (r *Report) Failed() int {
	n := 0
	for i := range r.Results {
		if !r.Results[i].Success {
			n++
		}
	}
	return n
}

// NewManager creates a delivery manager over registry.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewManager(registry *ChannelRegistry, config ManagerConfig, logger zerolog.Logger) *Manager {
	if registry == nil {
		registry = NewChannelRegistry()
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = 1 * time.Second
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}

	return &Manager{
		registry:   registry,
		logger:     logger.With().Str("component", "notify-delivery").Logger(),
		maxRetries: config.MaxRetries,
		baseDelay:  config.BaseDelay,
		maxDelay:   config.MaxDelay,
	}
}

// Registry returns the manager's channel registry.
func (m *Manager) Registry() *ChannelRegistry {
	return m.registry
}

// Deliver sends n through every registered channel concurrently. The
// notification counts as delivered when at least one channel succeeds.
func (m *Manager) Deliver(ctx context.Context, n *models.Notification) *Report {
	report := &Report{
		NotificationID: n.ID,
		StartedAt:      time.Now(),
	}

	names := m.registry.List()
	results := make([]Result, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			results[i] = m.deliverToChannel(ctx, n, name)
		}(i, name)
	}
	wg.Wait()

	report.Results = results
	for i := range results {
		if results[i].Success {
			report.Delivered = true
			break
		}
	}
	report.DurationMS = time.Since(report.StartedAt).Milliseconds()

	m.logger.Debug().
		Str("notification_id", n.ID).
		Str("kind", string(n.Kind)).
		Bool("delivered", report.Delivered).
		Int("channels", len(names)).
		Int("failed", report.Failed()).
		Int64("duration_ms", report.DurationMS).
		Msg("notification delivery completed")

	return report
}

// deliverToChannel handles delivery on a single channel with retries.
func (m *Manager) deliverToChannel(ctx context.Context, n *models.Notification, name string) Result {
	channel, ok := m.registry.Get(name)
	if !ok {
		return Result{
			Channel:      name,
			ErrorMessage: fmt.Sprintf("unknown channel: %s", name),
			ErrorCode:    ErrorCodeInvalidConfig,
		}
	}

	var lastResult *Result
	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		if attempt > 0 {
			delay := m.calculateBackoff(attempt, lastResult)
			m.logger.Debug().
				Str("notification_id", n.ID).
				Str("channel", name).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("retrying delivery after delay")

			select {
			case <-ctx.Done():
				return Result{
					Channel:      name,
					ErrorMessage: "delivery canceled",
					ErrorCode:    ErrorCodeTimeout,
					IsTransient:  true,
					RetryCount:   attempt - 1,
				}
			case <-time.After(delay):
			}
		}

		start := time.Now()
		result, err := channel.Send(ctx, n)
		if err != nil {
			metrics.RecordDeliveryAttempt(name, time.Since(start), false, true)
			m.logger.Error().
				Err(err).
				Str("notification_id", n.ID).
				Str("channel", name).
				Int("attempt", attempt).
				Msg("channel send error")
			lastResult = &Result{
				Channel:      name,
				ErrorMessage: err.Error(),
				ErrorCode:    ErrorCodeUnknown,
				IsTransient:  true,
			}
			continue
		}
		metrics.RecordDeliveryAttempt(name, time.Since(start), result.Success, result.IsTransient)

		result.Channel = name
		result.RetryCount = attempt
		lastResult = result

		if result.Success {
			return *result
		}

		if !result.IsTransient {
			m.logger.Warn().
				Str("notification_id", n.ID).
				Str("channel", name).
				Str("error", result.ErrorMessage).
				Str("error_code", result.ErrorCode).
				Msg("permanent delivery error, not retrying")
			return *result
		}

		m.logger.Debug().
			Str("notification_id", n.ID).
			Str("channel", name).
			Str("error", result.ErrorMessage).
			Int("attempt", attempt).
			Msg("transient delivery error")
	}

	lastResult.RetryCount = m.maxRetries
	return *lastResult
}

// calculateBackoff calculates the delay before the next retry attempt.
func (m *Manager) calculateBackoff(attempt int, lastResult *Result) time.Duration {
	// If the destination specified retry-after, use it
	if lastResult != nil && lastResult.RetryAfter != nil {
		return min(*lastResult.RetryAfter, m.maxDelay)
	}

	// Exponential backoff: baseDelay * 2^(attempt-1)
	delay := m.baseDelay * (1 << uint(attempt-1))
	if delay > m.maxDelay || delay <= 0 {
		delay = m.maxDelay
	}
	return delay
}
