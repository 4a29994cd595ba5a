package product

import (
	"context"

	"github.com/ecotrackhq/ecotrack-backend/internal/repo"
	"github.com/ecotrackhq/ecotrack-backend/pkg/db/models"
	"github.com/ecotrackhq/ecotrack-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository wires together product persistence helpers.
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

// Upsert writes the product keyed by (store_id, external_id), updating the
// tracked metric fields on conflict.
func (r *Repository) Upsert(ctx context.Context, product *models.Product) (*models.Product, error) {
	err := r.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "store_id"}, {Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title",
				"sustainable_materials",
				"locally_produced",
				"packaging_weight_kg",
				"product_weight_kg",
				"packaging_ratio",
				"updated_at",
			}),
		}).
		Create(product).Error
	if err != nil {
		return nil, err
	}
	return r.FindByExternalID(ctx, product.StoreID, product.ExternalID)
}

// FindByExternalID loads one product by its store-scoped external key.
func (r *Repository) FindByExternalID(ctx context.Context, storeID uuid.UUID, externalID string) (*models.Product, error) {
	var product models.Product
	err := r.DB(ctx).
		First(&product, "store_id = ? AND external_id = ?", storeID, externalID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByID loads one product by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListExternalIDs returns every external id known locally for the store.
func (r *Repository) ListExternalIDs(ctx context.Context, storeID uuid.UUID) ([]string, error) {
	var ids []string
	err := r.DB(ctx).
		Model(&models.Product{}).
		Where("store_id = ?", storeID).
		Pluck("external_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ListByStore loads the store's full current product set.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := r.DB(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC, id DESC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// ListPage loads one cursor page of the store's products, newest first.
func (r *Repository) ListPage(ctx context.Context, storeID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Product, error) {
	query := r.DB(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// DeleteByExternalID removes the product and reports how many rows matched.
// Zero rows is not an error; delete is idempotent.
func (r *Repository) DeleteByExternalID(ctx context.Context, storeID uuid.UUID, externalID string) (int64, error) {
	result := r.DB(ctx).
		Where("store_id = ? AND external_id = ?", storeID, externalID).
		Delete(&models.Product{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// CountByStore counts the store's products.
func (r *Repository) CountByStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.Product{}).
		Where("store_id = ?", storeID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
