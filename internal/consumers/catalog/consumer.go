// Package catalog consumes catalog-topic events and drops cached chatbot
// prices when promotions or stock change.
package catalog

import (
	"context"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/techzonevn/storefront-backend/internal/chatbot"
	"github.com/techzonevn/storefront-backend/pkg/enums"
	"github.com/techzonevn/storefront-backend/pkg/logger"
	"github.com/techzonevn/storefront-backend/pkg/outbox"
)

const (
	consumerName     = "catalog-cache"
	processedMarkTTL = 72 * time.Hour
)

type receiver interface {
	Receive(ctx context.Context, f func(context.Context, *pubsub.Message)) error
}

type processedStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
	Del(ctx context.Context, keys ...string) error
}

// Consumer invalidates the chatbot lookup cache for pricing-relevant events.
type Consumer struct {
	subscription receiver
	processed    processedStore
	cache        chatbot.Invalidator
	logg         *logger.Logger
}

// NewConsumer builds a catalog consumer. redis.Client satisfies both stores.
func NewConsumer(subscription receiver, processed processedStore, cache chatbot.Invalidator, logg *logger.Logger) (*Consumer, error) {
	switch {
	case subscription == nil:
		return nil, fmt.Errorf("catalog subscription required")
	case processed == nil:
		return nil, fmt.Errorf("idempotency store required")
	case cache == nil:
		return nil, fmt.Errorf("cache invalidator required")
	case logg == nil:
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{subscription: subscription, processed: processed, cache: cache, logg: logg}, nil
}

// Run receives until ctx is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.settle(ctx, msg) == nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type verdict bool

const (
	ack  verdict = true
	nack verdict = false
)

// settle decides the fate of one delivery. Only failures that a redelivery
// could fix are nacked.
func (c *Consumer) settle(ctx context.Context, msg *pubsub.Message) verdict {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	ctx = c.logg.WithFields(ctx, map[string]any{"message_id": msg.ID, "event_type": eventType})

	envelope, err := outbox.DecodeEnvelope(msg.Data)
	if err != nil {
		c.logg.Error(ctx, "catalog.envelope_invalid", err)
		return ack
	}
	if err := c.Process(ctx, eventType, envelope); err != nil {
		c.logg.Error(ctx, "catalog.handle_failed", err)
		return nack
	}
	return ack
}

func handles(eventType enums.OutboxEventType) bool {
	return eventType == enums.EventPromotionChanged || eventType == enums.EventStockDepleted
}

// Process bumps the chatbot cache generation once per event id.
func (c *Consumer) Process(ctx context.Context, eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) error {
	ctx = c.logg.WithField(ctx, "event_id", envelope.EventID)
	if !handles(eventType) {
		c.logg.Debug(ctx, "catalog.event_ignored")
		return nil
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Warn(ctx, "catalog.event_id_invalid")
		return nil
	}

	marker := c.processed.IdempotencyKey(consumerName, eventID.String())
	first, err := c.processed.SetNX(ctx, marker, "1", processedMarkTTL)
	switch {
	case err != nil:
		return fmt.Errorf("claim event %s: %w", eventID, err)
	case !first:
		c.logg.Info(ctx, "catalog.event_duplicate")
		return nil
	}

	gen, err := chatbot.InvalidateCache(ctx, c.cache)
	if err != nil {
		// Release the claim so the redelivery can retry the bump.
		_ = c.processed.Del(ctx, marker)
		return fmt.Errorf("invalidate chatbot cache: %w", err)
	}
	c.logg.Info(c.logg.WithField(ctx, "cache_generation", gen), "catalog.cache_invalidated")
	return nil
}
