package store

import (
	"context"
	"fmt"

	"github.com/ecotrackhq/ecotrack-backend/pkg/config"
	"github.com/ecotrackhq/ecotrack-backend/pkg/db"
	"github.com/ecotrackhq/ecotrack-backend/pkg/db/models"
	pkgerrors "github.com/ecotrackhq/ecotrack-backend/pkg/errors"
	"github.com/ecotrackhq/ecotrack-backend/pkg/logger"
	"github.com/ecotrackhq/ecotrack-backend/pkg/shopify"
	"github.com/google/uuid"
)

// Service exposes store bootstrap and lookup operations.
type Service interface {
	EnsureByDomain(ctx context.Context, domain string) (*models.Store, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

type locationSource interface {
	PrimaryLocation(ctx context.Context) (*shopify.Location, error)
}

type service struct {
	repo     *Repository
	platform locationSource
	geo      config.GeoConfig
	logg     *logger.Logger
}

// NewService constructs a store service instance.
func NewService(repo *Repository, platform locationSource, geo config.GeoConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if platform == nil {
		return nil, fmt.Errorf("location source required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		platform: platform,
		geo:      geo,
		logg:     logg,
	}, nil
}

// EnsureByDomain returns the store for the shop, creating the row on the
// first authenticated request. Warehouse coordinates are resolved lazily from
// the platform's primary location, with a configured fallback.
func (s *service) EnsureByDomain(ctx context.Context, domain string) (*models.Store, error) {
	if domain == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop domain is required")
	}

	store, err := s.repo.EnsureByDomain(ctx, domain)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "ensuring store")
	}

	if !store.HasWarehouseCoordinates() {
		lat, lng := s.resolveWarehouse(ctx)
		if err := s.repo.UpdateWarehouseCoordinates(ctx, store.ID, lat, lng); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "saving warehouse coordinates")
		}
		store.WarehouseLatitude = &lat
		store.WarehouseLongitude = &lng
	}
	return store, nil
}

// GetByID loads one store.
func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading store")
	}
	return store, nil
}

// resolveWarehouse asks the platform for its primary location, falling back
// to the configured default coordinates when the shop has none.
func (s *service) resolveWarehouse(ctx context.Context) (float64, float64) {
	location, err := s.platform.PrimaryLocation(ctx)
	if err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("fetching primary location, using default coordinates: %v", err))
		return s.geo.DefaultLatitude, s.geo.DefaultLongitude
	}
	if location == nil || location.Latitude == nil || location.Longitude == nil {
		return s.geo.DefaultLatitude, s.geo.DefaultLongitude
	}
	return *location.Latitude, *location.Longitude
}
