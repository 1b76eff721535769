// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/waypoint/internal/models"
)

// RecordStore persists what the consumer receives.
type RecordStore interface {
	SaveNotification(ctx context.Context, n *models.Notification) error
	AppendEngagement(ctx context.Context, e *models.Engagement) error
}

// ConsumerConfig configures the event router.
type ConsumerConfig struct {
	// CloseTimeout is how long to wait for in-flight handlers on shutdown.
	CloseTimeout time.Duration `koanf:"close_timeout"`

	// Retry middleware settings.
	RetryMaxRetries      int           `koanf:"retry_max_retries"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `koanf:"retry_max_interval"`
}

// DefaultConsumerConfig returns production defaults.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		CloseTimeout:         10 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     5 * time.Second,
	}
}

// Consumer runs a watermill router that persists dispatched notifications
// and engagement signals. It implements suture.Service; each Serve call
// builds a fresh router since a closed router cannot be restarted.
type Consumer struct {
	config     ConsumerConfig
	subscriber message.Subscriber
	store      RecordStore
	wmLogger   watermill.LoggerAdapter
	logger     zerolog.Logger

	readyOnce sync.Once
	ready     chan struct{}
}

// NewConsumer creates a consumer reading from subscriber.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewConsumer(cfg ConsumerConfig, subscriber message.Subscriber, store RecordStore, wmLogger watermill.LoggerAdapter, logger zerolog.Logger) (*Consumer, error) {
	if subscriber == nil {
		return nil, errors.New("subscriber is required")
	}
	if store == nil {
		return nil, errors.New("record store is required")
	}
	if wmLogger == nil {
		wmLogger = watermill.NopLogger{}
	}
	return &Consumer{
		config:     cfg,
		subscriber: subscriber,
		store:      store,
		wmLogger:   wmLogger,
		logger:     logger.With().Str("component", "event-consumer").Logger(),
		ready:      make(chan struct{}),
	}, nil
}

// Serve runs the router until ctx is cancelled.
func (c *Consumer) Serve(ctx context.Context) error {
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: c.config.CloseTimeout}, c.wmLogger)
	if err != nil {
		return fmt.Errorf("create router: %w", err)
	}

	router.AddMiddleware(
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      c.config.RetryMaxRetries,
			InitialInterval: c.config.RetryInitialInterval,
			MaxInterval:     c.config.RetryMaxInterval,
			Multiplier:      2.0,
			Logger:          c.wmLogger,
		}.Middleware,
	)

	router.AddConsumerHandler("persist-dispatched", TopicNotificationDispatched, c.subscriber, c.handleDispatched)
	router.AddConsumerHandler("persist-engagement", TopicNotificationEngagement, c.subscriber, c.handleEngagement)
	router.AddConsumerHandler("log-learning", TopicLearningCompleted, c.subscriber, c.handleLearning)

	go func() {
		select {
		case <-router.Running():
			c.readyOnce.Do(func() { close(c.ready) })
		case <-ctx.Done():
		}
	}()
	go func() {
		<-ctx.Done()
		if err := router.Close(); err != nil {
			c.logger.Warn().Err(err).Msg("Router close failed")
		}
	}()

	c.logger.Info().Msg("Event consumer started")
	runErr := router.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if runErr != nil {
		return fmt.Errorf("router stopped: %w", runErr)
	}
	return errors.New("router stopped unexpectedly")
}

// Ready is closed once the first router is running.
func (c *Consumer) Ready() <-chan struct{} {
	return c.ready
}

// String implements fmt.Stringer for suture logging.
func (c *Consumer) String() string {
	return "event-consumer"
}

func (c *Consumer) handleDispatched(msg *message.Message) error {
	var ev NotificationDispatched
	if err := Decode(msg, &ev); err != nil {
		// A payload that cannot be decoded will never succeed; drop it.
		c.logger.Error().Err(err).Msg("Dropping malformed dispatch event")
		return nil
	}
	if err := c.store.SaveNotification(msg.Context(), &ev.Notification); err != nil {
		return fmt.Errorf("save dispatched %s: %w", ev.Notification.ID, err)
	}
	c.logger.Debug().
		Str("id", ev.Notification.ID).
		Bool("delivered", ev.Delivered).
		Str("correlation_id", msg.Metadata.Get(MetadataCorrelationID)).
		Msg("Dispatch persisted")
	return nil
}

func (c *Consumer) handleEngagement(msg *message.Message) error {
	var ev EngagementRecorded
	if err := Decode(msg, &ev); err != nil {
		c.logger.Error().Err(err).Msg("Dropping malformed engagement event")
		return nil
	}
	if err := c.store.AppendEngagement(msg.Context(), &ev.Engagement); err != nil {
		return fmt.Errorf("append engagement %s: %w", ev.Engagement.NotificationID, err)
	}
	return nil
}

func (c *Consumer) handleLearning(msg *message.Message) error {
	var ev LearningCompleted
	if err := Decode(msg, &ev); err != nil {
		c.logger.Error().Err(err).Msg("Dropping malformed learning event")
		return nil
	}
	c.logger.Info().
		Str("top_preference", ev.Insights.TopPreference).
		Float64("diversity", ev.Insights.DiversityScore).
		Int("categories", ev.Categories).
		Msg("Learning pass completed")
	return nil
}
