package webhooks

import (
	"context"
	"io"
	"net/http"

	"github.com/ecotrackhq/ecotrack-backend/api/responses"
	"github.com/ecotrackhq/ecotrack-backend/pkg/config"
	pkgerrors "github.com/ecotrackhq/ecotrack-backend/pkg/errors"
	"github.com/ecotrackhq/ecotrack-backend/pkg/logger"
	"github.com/ecotrackhq/ecotrack-backend/pkg/shopify"
)

type ShopifyWebhookService interface {
	Handle(ctx context.Context, topic, shopDomain string, body []byte) error
}

type shopifyWebhookGuard interface {
	CheckAndMark(ctx context.Context, webhookID string) (bool, error)
	Release(ctx context.Context, webhookID string) error
}

// ShopifyWebhook verifies the delivery HMAC against the raw body, dedupes by
// webhook id, and routes the payload by topic. Retryable failures return 5xx
// so Shopify redelivers; unprocessable deliveries are acknowledged.
func ShopifyWebhook(svc ShopifyWebhookService, cfg config.ShopifyConfig, guard shopifyWebhookGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard unavailable"))
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		if !shopify.VerifyWebhookHMAC(cfg.WebhookSecret, body, r.Header.Get(shopify.WebhookHMACHeader)) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "webhook signature invalid"))
			return
		}

		topic := r.Header.Get(shopify.WebhookTopicHeader)
		shopDomain := r.Header.Get(shopify.WebhookShopHeader)
		webhookID := r.Header.Get(shopify.WebhookIDHeader)

		if webhookID != "" {
			duplicate, err := guard.CheckAndMark(ctx, webhookID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}
			if duplicate {
				responses.WriteSuccess(w, nil)
				return
			}
		}

		if err := svc.Handle(ctx, topic, shopDomain, body); err != nil {
			if retryable(err) {
				if webhookID != "" {
					_ = guard.Release(ctx, webhookID)
				}
				responses.WriteError(ctx, logg, w, err)
				return
			}
			// Redelivery cannot fix a malformed payload; ack it.
			if logg != nil {
				logg.Error(ctx, "dropping unprocessable delivery", err)
			}
		}

		responses.WriteSuccess(w, nil)
	}
}

func retryable(err error) bool {
	typed := pkgerrors.As(err)
	if typed == nil {
		return true
	}
	return pkgerrors.MetadataFor(typed.Code()).Retryable
}
