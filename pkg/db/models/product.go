package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Product mirrors one catalog item, keyed by (external id, store).
// PackagingRatio is always derived from the two weight fields at write time,
// never supplied by a caller.
type Product struct {
	ID                   uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID              uuid.UUID `gorm:"column:store_id;type:uuid;not null;uniqueIndex:products_store_external_key"`
	ExternalID           string    `gorm:"column:external_id;not null;uniqueIndex:products_store_external_key"`
	Title                *string   `gorm:"column:title"`
	SustainableMaterials *float64  `gorm:"column:sustainable_materials;type:numeric(4,2)"`
	LocallyProduced      *bool     `gorm:"column:locally_produced"`
	PackagingWeightKg    *float64  `gorm:"column:packaging_weight_kg;type:numeric(6,3)"`
	ProductWeightKg      *float64  `gorm:"column:product_weight_kg;type:numeric(6,3)"`
	PackagingRatio       *float64  `gorm:"column:packaging_ratio;type:numeric(8,4)"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// DisplayTitle returns the title, falling back to "Product <externalID>".
func (p Product) DisplayTitle() string {
	if p.Title != nil && strings.TrimSpace(*p.Title) != "" {
		return *p.Title
	}
	return fmt.Sprintf("Product %s", p.ExternalID)
}
