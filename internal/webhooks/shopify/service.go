package shopifywebhook

import (
	"context"
	"encoding/json"
	"fmt"

	product "github.com/ecotrackhq/ecotrack-backend/internal/products"
	"github.com/ecotrackhq/ecotrack-backend/pkg/db/models"
	pkgerrors "github.com/ecotrackhq/ecotrack-backend/pkg/errors"
	"github.com/ecotrackhq/ecotrack-backend/pkg/logger"
	"github.com/ecotrackhq/ecotrack-backend/pkg/shopify"
	"github.com/google/uuid"
)

type storeResolver interface {
	EnsureByDomain(ctx context.Context, domain string) (*models.Store, error)
}

type productSink interface {
	UpsertFromPayload(ctx context.Context, storeID uuid.UUID, payload shopify.ProductWebhookPayload) (*product.ProductDTO, error)
	Delete(ctx context.Context, storeID uuid.UUID, externalID string) error
}

type orderSink interface {
	ApplyWebhook(ctx context.Context, store *models.Store, payload shopify.OrderWebhookPayload) error
}

type ServiceParams struct {
	Stores   storeResolver
	Products productSink
	Orders   orderSink
	Logger   *logger.Logger
}

// Service routes verified webhook deliveries to the product and order sync
// paths. The HTTP controller and the Pub/Sub consumer both feed it.
type Service struct {
	stores   storeResolver
	products productSink
	orders   orderSink
	logg     *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Stores == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "store resolver required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product sink required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order sink required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		stores:   params.Stores,
		products: params.Products,
		orders:   params.Orders,
		logg:     params.Logger,
	}, nil
}

// Handle dispatches one delivery by topic. Unknown topics are acknowledged
// without action so the platform does not retry them.
func (s *Service) Handle(ctx context.Context, topic, shopDomain string, body []byte) error {
	if shopDomain == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop domain is required")
	}
	ctx = s.logg.WithShopDomain(ctx, shopDomain)
	ctx = s.logg.WithWebhookTopic(ctx, topic)

	store, err := s.stores.EnsureByDomain(ctx, shopDomain)
	if err != nil {
		return err
	}
	ctx = s.logg.WithStoreID(ctx, store.ID.String())

	switch topic {
	case shopify.TopicProductsCreate, shopify.TopicProductsUpdate:
		var payload shopify.ProductWebhookPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode product payload")
		}
		_, err := s.products.UpsertFromPayload(ctx, store.ID, payload)
		return err
	case shopify.TopicProductsDelete:
		var payload shopify.ProductWebhookPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode product payload")
		}
		externalID := payload.ExternalID()
		if externalID == "" {
			return pkgerrors.New(pkgerrors.CodeIncomplete, "product payload has no id")
		}
		return s.products.Delete(ctx, store.ID, externalID)
	case shopify.TopicOrdersFulfilled:
		var payload shopify.OrderWebhookPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode order payload")
		}
		return s.orders.ApplyWebhook(ctx, store, payload)
	case shopify.TopicAppUninstalled:
		// The mirror and history are kept for reinstalls.
		s.logg.Info(ctx, "app uninstalled")
		return nil
	default:
		s.logg.Warn(ctx, fmt.Sprintf("ignoring webhook topic %q", topic))
		return nil
	}
}
