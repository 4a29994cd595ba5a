package product

import (
	"time"

	"github.com/ecotrackhq/ecotrack-backend/pkg/db/models"
	"github.com/ecotrackhq/ecotrack-backend/pkg/shopify"
	"github.com/google/uuid"
)

// ProductDTO represents the product payload returned to the admin UI.
type ProductDTO struct {
	ID                   uuid.UUID `json:"id"`
	ExternalID           string    `json:"external_id"`
	Title                string    `json:"title"`
	SustainableMaterials *float64  `json:"sustainable_materials,omitempty"`
	LocallyProduced      *bool     `json:"locally_produced,omitempty"`
	PackagingWeightKg    *float64  `json:"packaging_weight_kg,omitempty"`
	ProductWeightKg      *float64  `json:"product_weight_kg,omitempty"`
	PackagingRatio       *float64  `json:"packaging_ratio,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:                   product.ID,
		ExternalID:           product.ExternalID,
		Title:                product.DisplayTitle(),
		SustainableMaterials: product.SustainableMaterials,
		LocallyProduced:      product.LocallyProduced,
		PackagingWeightKg:    product.PackagingWeightKg,
		ProductWeightKg:      product.ProductWeightKg,
		PackagingRatio:       product.PackagingRatio,
		CreatedAt:            product.CreatedAt,
		UpdatedAt:            product.UpdatedAt,
	}
}

// ProductListResult is one cursor page of products.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor *string      `json:"next_cursor,omitempty"`
}

// UpdateResult carries the outcome of an editor update, including any
// field-level errors the platform reported for the metafield write.
type UpdateResult struct {
	Product     *ProductDTO         `json:"product,omitempty"`
	FieldErrors []shopify.UserError `json:"field_errors,omitempty"`
}

// Failed reports whether the platform rejected the metafield write.
func (r *UpdateResult) Failed() bool {
	return len(r.FieldErrors) > 0
}
