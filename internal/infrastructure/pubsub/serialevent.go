// Package pubsub publishes serial lifecycle events over Redis Pub/Sub.
// Publication is fire-and-forget and kept off the validation hot path.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"serialhub/internal/shared/goroutine"
	"serialhub/internal/shared/logger"
)

const serialEventChannel = "serialhub:serial:events"

// Envelope wraps a lifecycle event with its name for the wire.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// EventHandler is a callback for consuming serial lifecycle events.
type EventHandler func(ctx context.Context, event string, payload json.RawMessage)

// EventPublisher is the event sink contract: fire-and-forget publication of
// "serial.expiring", "serial.expired" and "serial.renewed".
type EventPublisher interface {
	Publish(ctx context.Context, event string, payload interface{}) error
}

// EventSubscriber consumes serial lifecycle events.
type EventSubscriber interface {
	Subscribe(ctx context.Context, handler EventHandler) error
}

// RedisSerialEventBus implements EventPublisher and EventSubscriber using
// Redis Pub/Sub for cross-instance distribution.
type RedisSerialEventBus struct {
	client *redis.Client
	logger logger.Interface
}

func NewRedisSerialEventBus(client *redis.Client, logger logger.Interface) *RedisSerialEventBus {
	return &RedisSerialEventBus{
		client: client,
		logger: logger,
	}
}

// Publish serializes and publishes an event. Errors are returned for
// logging but callers never fail a mutation over them.
func (b *RedisSerialEventBus) Publish(ctx context.Context, event string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	data, err := json.Marshal(Envelope{Event: event, Payload: raw})
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	if err := b.client.Publish(ctx, serialEventChannel, data).Err(); err != nil {
		b.logger.Errorw("failed to publish serial event",
			"event", event,
			"error", err,
		)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debugw("serial event published", "event", event)
	return nil
}

// Subscribe consumes serial lifecycle events until the context is cancelled.
func (b *RedisSerialEventBus) Subscribe(ctx context.Context, handler EventHandler) error {
	pubsub := b.client.Subscribe(ctx, serialEventChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	b.logger.Infow("subscribed to serial events", "channel", serialEventChannel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			b.logger.Infow("serial event subscriber stopped", "reason", ctx.Err())
			return ctx.Err()

		case msg, ok := <-ch:
			if !ok {
				b.logger.Warnw("serial event channel closed")
				return nil
			}

			var envelope Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
				b.logger.Warnw("failed to unmarshal serial event",
					"payload", msg.Payload,
					"error", err,
				)
				continue
			}

			// Handle in a background goroutine so a slow handler never
			// blocks the event loop.
			goroutine.SafeGo(b.logger, "serial-event-handler", func() {
				handler(context.Background(), envelope.Event, envelope.Payload)
			})
		}
	}
}
