package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store represents one connected shop. Warehouse coordinates stay nil until
// resolved from the platform's primary location (or the configured fallback).
type Store struct {
	ID                    uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Domain                string    `gorm:"column:domain;not null;uniqueIndex:stores_domain_key"`
	Name                  *string   `gorm:"column:name"`
	WarehouseLatitude     *float64  `gorm:"column:warehouse_latitude;type:numeric(9,6)"`
	WarehouseLongitude    *float64  `gorm:"column:warehouse_longitude;type:numeric(9,6)"`
	AvgDeliveryDistanceKm *float64  `gorm:"column:avg_delivery_distance_km;type:numeric(10,3)"`
	Products              []Product `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
	Orders                []Order   `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
	CreatedAt             time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// DisplayName returns the store name, falling back to the domain prefix
// before the first dot.
func (s Store) DisplayName() string {
	if s.Name != nil && strings.TrimSpace(*s.Name) != "" {
		return *s.Name
	}
	if idx := strings.Index(s.Domain, "."); idx > 0 {
		return s.Domain[:idx]
	}
	return s.Domain
}

// HasWarehouseCoordinates reports whether both coordinates are resolved.
func (s Store) HasWarehouseCoordinates() bool {
	return s.WarehouseLatitude != nil && s.WarehouseLongitude != nil
}
