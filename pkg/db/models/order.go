package models

import (
	"time"

	"github.com/google/uuid"
)

// Order mirrors one fulfilled order with a shipping address, keyed by
// (external id, store). Never deleted by the sync pipeline.
type Order struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID            uuid.UUID `gorm:"column:store_id;type:uuid;not null;uniqueIndex:orders_store_external_key"`
	ExternalID         string    `gorm:"column:external_id;not null;uniqueIndex:orders_store_external_key"`
	Name               string    `gorm:"column:name;not null"`
	Fulfilled          bool      `gorm:"column:fulfilled;not null;default:false"`
	ShippingCity       *string   `gorm:"column:shipping_city"`
	ShippingZip        *string   `gorm:"column:shipping_zip"`
	ShippingCountry    *string   `gorm:"column:shipping_country"`
	ShippingLatitude   *float64  `gorm:"column:shipping_latitude;type:numeric(9,6)"`
	ShippingLongitude  *float64  `gorm:"column:shipping_longitude;type:numeric(9,6)"`
	DeliveryDistanceKm *float64  `gorm:"column:delivery_distance_km;type:numeric(10,3)"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// HasShippingCoordinates reports whether the order's destination is geocoded.
func (o Order) HasShippingCoordinates() bool {
	return o.ShippingLatitude != nil && o.ShippingLongitude != nil
}
