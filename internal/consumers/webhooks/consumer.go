package webhookconsumer

import (
	"context"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	pkgerrors "github.com/ecotrackhq/ecotrack-backend/pkg/errors"
	"github.com/ecotrackhq/ecotrack-backend/pkg/logger"
	"github.com/ecotrackhq/ecotrack-backend/pkg/shopify"
)

type webhookHandler interface {
	Handle(ctx context.Context, topic, shopDomain string, body []byte) error
}

type idempotencyGuard interface {
	CheckAndMark(ctx context.Context, webhookID string) (bool, error)
	Release(ctx context.Context, webhookID string) error
}

// Consumer drains the Shopify webhook Pub/Sub subscription into the same
// dispatch service the HTTP endpoint uses. Shopify copies the webhook headers
// into message attributes and the body into the message data.
type Consumer struct {
	subscription *pubsub.Subscriber
	handler      webhookHandler
	guard        idempotencyGuard
	logg         *logger.Logger
}

// NewConsumer builds a webhook consumer.
func NewConsumer(subscription *pubsub.Subscriber, handler webhookHandler, guard idempotencyGuard, logg *logger.Logger) (*Consumer, error) {
	if subscription == nil {
		return nil, fmt.Errorf("webhook subscription required")
	}
	if handler == nil {
		return nil, fmt.Errorf("webhook handler required")
	}
	if guard == nil {
		return nil, fmt.Errorf("idempotency guard required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		subscription: subscription,
		handler:      handler,
		guard:        guard,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	topic := msg.Attributes[shopify.WebhookTopicHeader]
	shopDomain := msg.Attributes[shopify.WebhookShopHeader]
	webhookID := msg.Attributes[shopify.WebhookIDHeader]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"topic":      topic,
		"webhook_id": webhookID,
	})

	if topic == "" || shopDomain == "" {
		c.logg.Warn(logCtx, "dropping delivery without topic or shop domain")
		return processResult{ack: true}
	}

	if webhookID != "" {
		duplicate, err := c.guard.CheckAndMark(ctx, webhookID)
		if err != nil {
			c.logg.Error(logCtx, "idempotency check failed", err)
			return processResult{nack: true}
		}
		if duplicate {
			c.logg.Info(logCtx, "delivery already processed")
			return processResult{ack: true}
		}
	}

	if err := c.handler.Handle(ctx, topic, shopDomain, msg.Data); err != nil {
		if !retryable(err) {
			// Malformed deliveries never succeed on redelivery.
			c.logg.Error(logCtx, "dropping unprocessable delivery", err)
			return processResult{ack: true}
		}
		c.logg.Error(logCtx, "webhook handling failed", err)
		if webhookID != "" {
			_ = c.guard.Release(ctx, webhookID)
		}
		return processResult{nack: true}
	}

	return processResult{ack: true}
}

func retryable(err error) bool {
	typed := pkgerrors.As(err)
	if typed == nil {
		return true
	}
	return pkgerrors.MetadataFor(typed.Code()).Retryable
}
