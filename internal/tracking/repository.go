package tracking

import (
	"context"

	"github.com/ecotrackhq/ecotrack-backend/internal/repo"
	"github.com/ecotrackhq/ecotrack-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists the append-only product metrics history.
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

// Latest loads the most recent snapshot for the product, or nil when the
// product has no history yet.
func (r *Repository) Latest(ctx context.Context, productID uuid.UUID) (*models.ProductMetricsHistory, error) {
	var snapshot models.ProductMetricsHistory
	err := r.DB(ctx).
		Where("product_id = ?", productID).
		Order("recorded_at DESC").
		First(&snapshot).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &snapshot, nil
}

// Append writes a new snapshot row. History rows are never updated.
func (r *Repository) Append(ctx context.Context, snapshot *models.ProductMetricsHistory) error {
	return r.DB(ctx).Create(snapshot).Error
}

// ListByProduct returns the product's snapshots, newest first.
func (r *Repository) ListByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]models.ProductMetricsHistory, error) {
	query := r.DB(ctx).
		Where("product_id = ?", productID).
		Order("recorded_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var snapshots []models.ProductMetricsHistory
	if err := query.Find(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}
