package order

import (
	"context"

	"github.com/ecotrackhq/ecotrack-backend/internal/repo"
	"github.com/ecotrackhq/ecotrack-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists mirrored orders.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(tx)}
}

// Upsert writes the order keyed by (store_id, external_id). Orders are never
// deleted by the sync pipeline.
func (r *Repository) Upsert(ctx context.Context, order *models.Order) (*models.Order, error) {
	err := r.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "store_id"}, {Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name",
				"fulfilled",
				"shipping_city",
				"shipping_zip",
				"shipping_country",
				"shipping_latitude",
				"shipping_longitude",
				"delivery_distance_km",
				"updated_at",
			}),
		}).
		Create(order).Error
	if err != nil {
		return nil, err
	}

	var saved models.Order
	err = r.DB(ctx).
		First(&saved, "store_id = ? AND external_id = ?", order.StoreID, order.ExternalID).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// AverageDeliveryDistance computes the mean delivery distance over the
// store's orders that have one, or nil when none do.
func (r *Repository) AverageDeliveryDistance(ctx context.Context, storeID uuid.UUID) (*float64, error) {
	var avg *float64
	err := r.DB(ctx).
		Model(&models.Order{}).
		Where("store_id = ? AND delivery_distance_km IS NOT NULL", storeID).
		Select("AVG(delivery_distance_km)").
		Scan(&avg).Error
	if err != nil {
		return nil, err
	}
	return avg, nil
}

// CountByStore counts the store's mirrored orders.
func (r *Repository) CountByStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.Order{}).
		Where("store_id = ?", storeID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
