// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
)

// BusConfig configures the in-process pub/sub.
type BusConfig struct {
	// OutputChannelBuffer is the per-subscriber buffer size. Default: 256.
	OutputChannelBuffer int64 `koanf:"buffer"`

	// BlockPublishUntilAck makes Publish wait for every subscriber to ack.
	BlockPublishUntilAck bool `koanf:"block_until_ack"`
}

// DefaultBusConfig returns production defaults.
func DefaultBusConfig() BusConfig {
	return BusConfig{OutputChannelBuffer: 256}
}

// Publisher publishes typed events. Bus implements it; services depend on
// this interface so tests can record events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
}

// Bus is an in-process watermill GoChannel pub/sub carrying JSON events.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter
}

var _ Publisher = (*Bus)(nil)

// NewBus creates the bus.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBus(cfg BusConfig, logger zerolog.Logger) *Bus {
	adapter := logging.NewWatermillAdapter(logger.With().Str("component", "events").Logger())
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            cfg.OutputChannelBuffer,
			BlockPublishUntilSubscriberAck: cfg.BlockPublishUntilAck,
		}, adapter),
		logger: adapter,
	}
}

// Publish encodes event as JSON and publishes it on topic. The correlation
// id from ctx travels in the message metadata.
func (b *Bus) Publish(ctx context.Context, topic string, event any) error {
	msg, err := NewMessage(ctx, event)
	if err != nil {
		return err
	}
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	metrics.RecordEventPublished(topic)
	return nil
}

// Subscriber exposes the underlying watermill subscriber for routers.
func (b *Bus) Subscriber() message.Subscriber {
	return b.pubsub
}

// Logger returns the watermill logger used by the bus.
func (b *Bus) Logger() watermill.LoggerAdapter {
	return b.logger
}

// Close closes the pub/sub; subscriptions end.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// NewMessage builds a watermill message with a JSON payload.
func NewMessage(ctx context.Context, event any) (*message.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set(MetadataEventType, fmt.Sprintf("%T", event))
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set(MetadataCorrelationID, id)
	}
	return msg, nil
}

// Decode unmarshals a message payload into v.
func Decode(msg *message.Message, v any) error {
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("decode message %s: %w", msg.UUID, err)
	}
	return nil
}
