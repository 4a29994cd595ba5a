package tracking

import (
	"context"
	"fmt"

	"github.com/ecotrackhq/ecotrack-backend/pkg/db/models"
	pkgerrors "github.com/ecotrackhq/ecotrack-backend/pkg/errors"
	"github.com/ecotrackhq/ecotrack-backend/pkg/logger"
	"github.com/ecotrackhq/ecotrack-backend/pkg/metrics"
	"github.com/google/uuid"
)

type historyStore interface {
	Latest(ctx context.Context, productID uuid.UUID) (*models.ProductMetricsHistory, error)
	Append(ctx context.Context, snapshot *models.ProductMetricsHistory) error
}

type storeAggregator interface {
	RefreshStoreAggregates(ctx context.Context, storeID uuid.UUID) bool
}

// Recorder appends history snapshots and republishes per-product gauges.
// Every failure is logged and degraded to a boolean false; recording must
// never fail the primary write that triggered it.
type Recorder struct {
	history    historyStore
	sink       *metrics.SustainabilitySink
	aggregator storeAggregator
	logg       *logger.Logger
}

// NewRecorder constructs the recorder.
func NewRecorder(history historyStore, sink *metrics.SustainabilitySink, aggregator storeAggregator, logg *logger.Logger) (*Recorder, error) {
	if history == nil {
		return nil, fmt.Errorf("history store required")
	}
	if aggregator == nil {
		return nil, fmt.Errorf("store aggregator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Recorder{
		history:    history,
		sink:       sink,
		aggregator: aggregator,
		logg:       logg,
	}, nil
}

// RecordAndPublish appends a history snapshot when any tracked field changed,
// republishes the product's gauges unconditionally, and triggers a store
// aggregate refresh. Ordering: history append, then gauges, then aggregates.
func (r *Recorder) RecordAndPublish(ctx context.Context, product *models.Product) bool {
	if product == nil || product.ExternalID == "" || product.StoreID == uuid.Nil {
		err := pkgerrors.New(pkgerrors.CodeIncomplete, "product is missing identity fields")
		r.logg.Warn(ctx, fmt.Sprintf("skipping metrics recording: %v", err))
		return false
	}

	ok := true
	ctx = r.logg.WithField(ctx, "productExternalId", product.ExternalID)

	latest, err := r.history.Latest(ctx, product.ID)
	if err != nil {
		r.logg.Warn(ctx, fmt.Sprintf("loading latest metrics snapshot: %v", err))
		ok = false
	} else if latest == nil || !latest.SameMetrics(*product) {
		snapshot := &models.ProductMetricsHistory{
			ProductID:            product.ID,
			SustainableMaterials: product.SustainableMaterials,
			LocallyProduced:      product.LocallyProduced,
			PackagingWeightKg:    product.PackagingWeightKg,
			ProductWeightKg:      product.ProductWeightKg,
			PackagingRatio:       product.PackagingRatio,
		}
		if err := r.history.Append(ctx, snapshot); err != nil {
			r.logg.Warn(ctx, fmt.Sprintf("appending metrics snapshot: %v", err))
			ok = false
		}
	}

	r.publishGauges(product)

	if !r.aggregator.RefreshStoreAggregates(ctx, product.StoreID) {
		ok = false
	}
	return ok
}

// RemoveProduct drops the product's gauge series after a delete.
func (r *Recorder) RemoveProduct(ctx context.Context, product *models.Product) {
	if product == nil {
		return
	}
	r.sink.RemoveProduct(productLabels(product))
}

// publishGauges sets every gauge that has a value, regardless of whether a
// history row was appended.
func (r *Recorder) publishGauges(product *models.Product) {
	labels := productLabels(product)

	r.sink.SetProductStatus(labels, true)
	if product.SustainableMaterials != nil {
		r.sink.SetProductSustainableMaterials(labels, *product.SustainableMaterials)
	}
	if product.PackagingRatio != nil {
		r.sink.SetProductPackagingRatio(labels, *product.PackagingRatio)
	}
	if product.LocallyProduced != nil {
		r.sink.SetProductLocallyProduced(labels, *product.LocallyProduced)
	}
}

func productLabels(product *models.Product) metrics.ProductLabels {
	return metrics.ProductLabels{
		ProductID: product.ExternalID,
		Title:     product.DisplayTitle(),
		StoreID:   product.StoreID.String(),
	}
}
