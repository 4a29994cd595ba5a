package store

import (
	"context"
	"fmt"

	"github.com/ecotrackhq/ecotrack-backend/pkg/db/models"
	"github.com/ecotrackhq/ecotrack-backend/pkg/logger"
	"github.com/ecotrackhq/ecotrack-backend/pkg/metrics"
	"github.com/google/uuid"
)

type storeLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

type productSource interface {
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Product, error)
}

// Aggregator recomputes store-wide aggregates from the full current product
// set and republishes the store gauges. Errors are logged and degraded to a
// boolean false; aggregate refreshes must never fail the write that
// triggered them.
type Aggregator struct {
	stores   storeLoader
	products productSource
	sink     *metrics.SustainabilitySink
	logg     *logger.Logger
}

// NewAggregator constructs the aggregator.
func NewAggregator(stores storeLoader, products productSource, sink *metrics.SustainabilitySink, logg *logger.Logger) (*Aggregator, error) {
	if stores == nil {
		return nil, fmt.Errorf("store loader required")
	}
	if products == nil {
		return nil, fmt.Errorf("product source required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Aggregator{
		stores:   stores,
		products: products,
		sink:     sink,
		logg:     logg,
	}, nil
}

// RefreshStoreAggregates reloads the store's product set and republishes
// every store gauge. The delivery-distance average is passed through from the
// store row; it is owned by the order-fulfillment path.
func (a *Aggregator) RefreshStoreAggregates(ctx context.Context, storeID uuid.UUID) bool {
	ctx = a.logg.WithStoreID(ctx, storeID.String())

	store, err := a.stores.FindByID(ctx, storeID)
	if err != nil {
		a.logg.Warn(ctx, fmt.Sprintf("loading store for aggregate refresh: %v", err))
		return false
	}

	products, err := a.products.ListByStore(ctx, storeID)
	if err != nil {
		a.logg.Warn(ctx, fmt.Sprintf("loading products for aggregate refresh: %v", err))
		return false
	}

	agg := ComputeAggregates(products)
	labels := metrics.StoreLabels{
		StoreID: store.ID.String(),
		Name:    store.DisplayName(),
		Domain:  store.Domain,
	}

	a.sink.SetStoreProductCount(labels, float64(agg.ProductCount))
	a.sink.SetStoreLocalProductCount(labels, float64(agg.LocalProductCount))

	if agg.AvgSustainableMaterials != nil {
		a.sink.SetStoreAvgSustainableMaterials(labels, *agg.AvgSustainableMaterials)
	} else {
		// No product carries the field; an average would be undefined.
		a.sink.RemoveStoreAvgSustainableMaterials(labels)
	}

	if store.AvgDeliveryDistanceKm != nil {
		a.sink.SetStoreAvgDeliveryDistance(labels, *store.AvgDeliveryDistanceKm)
	}
	return true
}
