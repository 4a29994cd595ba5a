package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductMetricsHistory is the append-only log of metric snapshots. A row is
// written only when at least one tracked field differs from the most recent
// snapshot for the product.
type ProductMetricsHistory struct {
	ID                   uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID            uuid.UUID `gorm:"column:product_id;type:uuid;not null;index:product_metrics_history_product_idx"`
	SustainableMaterials *float64  `gorm:"column:sustainable_materials;type:numeric(4,2)"`
	LocallyProduced      *bool     `gorm:"column:locally_produced"`
	PackagingWeightKg    *float64  `gorm:"column:packaging_weight_kg;type:numeric(6,3)"`
	ProductWeightKg      *float64  `gorm:"column:product_weight_kg;type:numeric(6,3)"`
	PackagingRatio       *float64  `gorm:"column:packaging_ratio;type:numeric(8,4)"`
	RecordedAt           time.Time `gorm:"column:recorded_at;autoCreateTime"`
}

// SameMetrics reports whether the snapshot matches the product's current
// tracked fields, comparing null-ness and value per field.
func (h ProductMetricsHistory) SameMetrics(p Product) bool {
	return floatPtrEqual(h.SustainableMaterials, p.SustainableMaterials) &&
		boolPtrEqual(h.LocallyProduced, p.LocallyProduced) &&
		floatPtrEqual(h.PackagingWeightKg, p.PackagingWeightKg) &&
		floatPtrEqual(h.ProductWeightKg, p.ProductWeightKg) &&
		floatPtrEqual(h.PackagingRatio, p.PackagingRatio)
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func boolPtrEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
