package order

import (
	"context"
	"fmt"

	"github.com/ecotrackhq/ecotrack-backend/pkg/config"
	"github.com/ecotrackhq/ecotrack-backend/pkg/db/models"
	pkgerrors "github.com/ecotrackhq/ecotrack-backend/pkg/errors"
	"github.com/ecotrackhq/ecotrack-backend/pkg/geo"
	"github.com/ecotrackhq/ecotrack-backend/pkg/logger"
	"github.com/ecotrackhq/ecotrack-backend/pkg/shopify"
	"github.com/google/uuid"
)

// Service mirrors fulfilled orders and owns the store's average delivery
// distance.
type Service interface {
	SyncFulfilled(ctx context.Context, store *models.Store) (*SyncSummary, error)
	ApplyWebhook(ctx context.Context, store *models.Store, payload shopify.OrderWebhookPayload) error
}

// SyncSummary reports the outcome of an order refresh.
type SyncSummary struct {
	OrdersSeen            int      `json:"orders_seen"`
	AvgDeliveryDistanceKm *float64 `json:"avg_delivery_distance_km,omitempty"`
}

type orderPager interface {
	PageFulfilledOrders(ctx context.Context, pageSize int, after string) (*shopify.OrderPage, error)
}

type storeDistanceWriter interface {
	UpdateAvgDeliveryDistance(ctx context.Context, id uuid.UUID, km float64) error
}

type storeAggregator interface {
	RefreshStoreAggregates(ctx context.Context, storeID uuid.UUID) bool
}

type service struct {
	repo       *Repository
	platform   orderPager
	stores     storeDistanceWriter
	aggregator storeAggregator
	sync       config.SyncConfig
	logg       *logger.Logger
}

// NewService constructs an order service instance.
func NewService(repo *Repository, platform orderPager, stores storeDistanceWriter, aggregator storeAggregator, sync config.SyncConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if platform == nil {
		return nil, fmt.Errorf("order pager required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store writer required")
	}
	if aggregator == nil {
		return nil, fmt.Errorf("store aggregator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:       repo,
		platform:   platform,
		stores:     stores,
		aggregator: aggregator,
		sync:       sync,
		logg:       logg,
	}, nil
}

// SyncFulfilled re-pulls the store's fulfilled orders from the platform,
// upserts them with computed delivery distances, and recomputes the store's
// average delivery distance.
func (s *service) SyncFulfilled(ctx context.Context, store *models.Store) (*SyncSummary, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store is required")
	}
	ctx = s.logg.WithStoreID(ctx, store.ID.String())

	summary := &SyncSummary{}
	after := ""
	for page := 0; s.sync.MaxPages <= 0 || page < s.sync.MaxPages; page++ {
		orderPage, err := s.platform.PageFulfilledOrders(ctx, s.sync.PageSize, after)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetching fulfilled orders")
		}

		for _, node := range orderPage.Orders {
			if !node.Fulfilled {
				continue
			}
			if err := s.upsertOrder(ctx, store, orderFromNode(node)); err != nil {
				return nil, err
			}
			summary.OrdersSeen++
		}

		if !orderPage.HasNextPage {
			break
		}
		after = orderPage.EndCursor
	}

	avg, err := s.refreshAverage(ctx, store)
	if err != nil {
		return nil, err
	}
	summary.AvgDeliveryDistanceKm = avg

	_ = s.aggregator.RefreshStoreAggregates(ctx, store.ID)
	return summary, nil
}

// ApplyWebhook mirrors one fulfilled-order delivery.
func (s *service) ApplyWebhook(ctx context.Context, store *models.Store, payload shopify.OrderWebhookPayload) error {
	if store == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "store is required")
	}
	externalID := payload.ExternalID()
	if externalID == "" {
		return pkgerrors.New(pkgerrors.CodeIncomplete, "order payload has no id")
	}

	order := &models.Order{
		ExternalID: externalID,
		Name:       payload.Name,
		Fulfilled:  true,
	}
	if addr := payload.ShippingAddress; addr != nil {
		order.ShippingCity = strPtrOrNil(addr.City)
		order.ShippingZip = strPtrOrNil(addr.Zip)
		order.ShippingCountry = strPtrOrNil(addr.Country)
		order.ShippingLatitude = addr.Latitude
		order.ShippingLongitude = addr.Longitude
	}

	if err := s.upsertOrder(ctx, store, order); err != nil {
		return err
	}

	if _, err := s.refreshAverage(ctx, store); err != nil {
		return err
	}
	_ = s.aggregator.RefreshStoreAggregates(ctx, store.ID)
	return nil
}

// upsertOrder fills in the store key and the computed delivery distance, then
// writes the row.
func (s *service) upsertOrder(ctx context.Context, store *models.Store, order *models.Order) error {
	order.StoreID = store.ID
	order.DeliveryDistanceKm = deliveryDistance(store, order)

	if _, err := s.repo.Upsert(ctx, order); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "upserting order")
	}
	return nil
}

// refreshAverage recomputes and persists the store's average delivery
// distance. The aggregator only passes the stored value through.
func (s *service) refreshAverage(ctx context.Context, store *models.Store) (*float64, error) {
	avg, err := s.repo.AverageDeliveryDistance(ctx, store.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "computing average delivery distance")
	}
	if avg == nil {
		return nil, nil
	}
	if err := s.stores.UpdateAvgDeliveryDistance(ctx, store.ID, *avg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "saving average delivery distance")
	}
	store.AvgDeliveryDistanceKm = avg
	return avg, nil
}

// deliveryDistance computes warehouse-to-destination distance, or nil when
// either side lacks coordinates.
func deliveryDistance(store *models.Store, order *models.Order) *float64 {
	if !store.HasWarehouseCoordinates() || !order.HasShippingCoordinates() {
		return nil
	}
	km := geo.DistanceKm(
		*store.WarehouseLatitude, *store.WarehouseLongitude,
		*order.ShippingLatitude, *order.ShippingLongitude,
	)
	return &km
}

func orderFromNode(node shopify.OrderNode) *models.Order {
	order := &models.Order{
		ExternalID: node.ExternalID(),
		Name:       node.Name,
		Fulfilled:  node.Fulfilled,
	}
	if node.Shipping != nil {
		order.ShippingCity = strPtrOrNil(node.Shipping.City)
		order.ShippingZip = strPtrOrNil(node.Shipping.Zip)
		order.ShippingCountry = strPtrOrNil(node.Shipping.Country)
		order.ShippingLatitude = node.Shipping.Latitude
		order.ShippingLongitude = node.Shipping.Longitude
	}
	return order
}

func strPtrOrNil(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
