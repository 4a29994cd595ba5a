package report

import (
	"context"
	"fmt"
	"time"

	store "github.com/ecotrackhq/ecotrack-backend/internal/stores"
	"github.com/ecotrackhq/ecotrack-backend/pkg/db/models"
	pkgerrors "github.com/ecotrackhq/ecotrack-backend/pkg/errors"
	"github.com/google/uuid"
)

// Report is the metrics snapshot consumed by the external document renderer.
type Report struct {
	StoreID                     uuid.UUID `json:"store_id"`
	Domain                      string    `json:"domain"`
	Name                        string    `json:"name"`
	ProductCount                int       `json:"product_count"`
	LocalProductCount           int       `json:"local_product_count"`
	SustainableMaterialsPercent float64   `json:"sustainable_materials_percent"`
	LocalProductsPercent        float64   `json:"local_products_percent"`
	AvgPackagingRatio           *float64  `json:"avg_packaging_ratio,omitempty"`
	AvgDeliveryDistanceKm       *float64  `json:"avg_delivery_distance_km,omitempty"`
	Score                       int       `json:"score"`
	GeneratedAt                 time.Time `json:"generated_at"`
}

type productSource interface {
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Product, error)
}

// Service assembles report snapshots.
type Service struct {
	products productSource
}

// NewService constructs the report service.
func NewService(products productSource) (*Service, error) {
	if products == nil {
		return nil, fmt.Errorf("product source required")
	}
	return &Service{products: products}, nil
}

// Snapshot derives the store's current aggregates and score.
func (s *Service) Snapshot(ctx context.Context, storeRow *models.Store) (*Report, error) {
	if storeRow == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store is required")
	}

	products, err := s.products.ListByStore(ctx, storeRow.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading products for report")
	}

	agg := store.ComputeAggregates(products)

	smPercent := 0.0
	if agg.AvgSustainableMaterials != nil {
		smPercent = *agg.AvgSustainableMaterials * 100
	}
	localPercent := 0.0
	if agg.ProductCount > 0 {
		localPercent = float64(agg.LocalProductCount) / float64(agg.ProductCount) * 100
	}

	return &Report{
		StoreID:                     storeRow.ID,
		Domain:                      storeRow.Domain,
		Name:                        storeRow.DisplayName(),
		ProductCount:                agg.ProductCount,
		LocalProductCount:           agg.LocalProductCount,
		SustainableMaterialsPercent: smPercent,
		LocalProductsPercent:        localPercent,
		AvgPackagingRatio:           agg.AvgPackagingRatio,
		AvgDeliveryDistanceKm:       storeRow.AvgDeliveryDistanceKm,
		Score: Score(ScoreInput{
			SustainableMaterialsPercent: smPercent,
			LocalProductsPercent:        localPercent,
			AvgPackagingRatio:           agg.AvgPackagingRatio,
			AvgDeliveryDistanceKm:       storeRow.AvgDeliveryDistanceKm,
		}),
		GeneratedAt: time.Now().UTC(),
	}, nil
}
