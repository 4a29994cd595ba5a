package store

import (
	"context"

	"github.com/ecotrackhq/ecotrack-backend/internal/repo"
	"github.com/ecotrackhq/ecotrack-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists stores.
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

// FindByID loads one store by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.DB(ctx).First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindByDomain loads one store by its shop domain.
func (r *Repository) FindByDomain(ctx context.Context, domain string) (*models.Store, error) {
	var store models.Store
	if err := r.DB(ctx).First(&store, "domain = ?", domain).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// EnsureByDomain creates the store row if it does not exist yet and returns
// the current row either way. Concurrent first requests race benignly on the
// domain unique index.
func (r *Repository) EnsureByDomain(ctx context.Context, domain string) (*models.Store, error) {
	store := &models.Store{Domain: domain}
	err := r.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "domain"}},
			DoNothing: true,
		}).
		Create(store).Error
	if err != nil {
		return nil, err
	}
	return r.FindByDomain(ctx, domain)
}

// UpdateWarehouseCoordinates stores the resolved warehouse location.
func (r *Repository) UpdateWarehouseCoordinates(ctx context.Context, id uuid.UUID, lat, lng float64) error {
	return r.DB(ctx).
		Model(&models.Store{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"warehouse_latitude":  lat,
			"warehouse_longitude": lng,
		}).Error
}

// UpdateAvgDeliveryDistance stores the recomputed rolling average.
func (r *Repository) UpdateAvgDeliveryDistance(ctx context.Context, id uuid.UUID, km float64) error {
	return r.DB(ctx).
		Model(&models.Store{}).
		Where("id = ?", id).
		Update("avg_delivery_distance_km", km).Error
}

// UpdateName stores the display name.
func (r *Repository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	return r.DB(ctx).
		Model(&models.Store{}).
		Where("id = ?", id).
		Update("name", name).Error
}
