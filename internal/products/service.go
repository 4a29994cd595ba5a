package product

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ecotrackhq/ecotrack-backend/pkg/db"
	"github.com/ecotrackhq/ecotrack-backend/pkg/db/models"
	pkgerrors "github.com/ecotrackhq/ecotrack-backend/pkg/errors"
	"github.com/ecotrackhq/ecotrack-backend/pkg/pagination"
	"github.com/ecotrackhq/ecotrack-backend/pkg/shopify"
	"github.com/google/uuid"
)

// Service exposes product mirror operations for the admin UI, the bulk
// importer, and the webhook pipeline.
type Service interface {
	UpdateMetrics(ctx context.Context, storeID uuid.UUID, externalID string, input UpdateMetricsInput) (*UpdateResult, error)
	UpsertFromPayload(ctx context.Context, storeID uuid.UUID, payload shopify.ProductWebhookPayload) (*ProductDTO, error)
	Delete(ctx context.Context, storeID uuid.UUID, externalID string) error
	Get(ctx context.Context, storeID uuid.UUID, externalID string) (*ProductDTO, error)
	List(ctx context.Context, storeID uuid.UUID, params pagination.Params) (*ProductListResult, error)
}

// UpdateMetricsInput holds the editable metric fields. Nil pointers leave the
// stored value untouched; the packaging ratio is always recomputed.
type UpdateMetricsInput struct {
	Title                *string
	SustainableMaterials *float64
	LocallyProduced      *bool
	PackagingWeightKg    *float64
	ProductWeightKg      *float64

	// FromImport switches the sustainable ratio to the bulk-import
	// normalization, which reads values in (1, 100] as percentages.
	FromImport bool
}

type metricsRecorder interface {
	RecordAndPublish(ctx context.Context, product *models.Product) bool
	RemoveProduct(ctx context.Context, product *models.Product)
}

type storeAggregator interface {
	RefreshStoreAggregates(ctx context.Context, storeID uuid.UUID) bool
}

type metafieldsWriter interface {
	SetMetafields(ctx context.Context, productGID string, inputs []shopify.MetafieldInput) ([]shopify.UserError, error)
}

type service struct {
	repo       *Repository
	recorder   metricsRecorder
	aggregator storeAggregator
	platform   metafieldsWriter
}

// NewService constructs a product service instance.
func NewService(repo *Repository, recorder metricsRecorder, aggregator storeAggregator, platform metafieldsWriter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("metrics recorder required")
	}
	if aggregator == nil {
		return nil, fmt.Errorf("store aggregator required")
	}
	if platform == nil {
		return nil, fmt.Errorf("metafields writer required")
	}
	return &service{
		repo:       repo,
		recorder:   recorder,
		aggregator: aggregator,
		platform:   platform,
	}, nil
}

// UpdateMetrics is the editor path: normalize the provided fields, write them
// through to the platform metafields, then mirror locally and republish
// metrics. Platform field errors abort the local write and come back as a
// structured result.
func (s *service) UpdateMetrics(ctx context.Context, storeID uuid.UUID, externalID string, input UpdateMetricsInput) (*UpdateResult, error) {
	if externalID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "external id is required")
	}

	normalized, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}

	metafields := metafieldInputs(normalized)
	if len(metafields) > 0 {
		userErrs, err := s.platform.SetMetafields(ctx, shopify.ProductGID(externalID), metafields)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "writing product metafields")
		}
		if len(userErrs) > 0 {
			return &UpdateResult{FieldErrors: userErrs}, nil
		}
	}

	product, err := s.applyAndUpsert(ctx, storeID, externalID, normalized)
	if err != nil {
		return nil, err
	}

	// Best effort; the recorder logs its own failures.
	_ = s.recorder.RecordAndPublish(ctx, product)

	return &UpdateResult{Product: NewProductDTO(product)}, nil
}

// UpsertFromPayload is the webhook path: mirror whatever sustainability
// metafields the delivery carries. Malformed metafield values are skipped
// rather than rejected; the platform owns them.
func (s *service) UpsertFromPayload(ctx context.Context, storeID uuid.UUID, payload shopify.ProductWebhookPayload) (*ProductDTO, error) {
	externalID := payload.ExternalID()
	if externalID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeIncomplete, "product payload has no id")
	}

	input := inputFromMetafields(payload.SustainabilityMetafields())
	if payload.Title != "" {
		title := payload.Title
		input.Title = &title
	}

	product, err := s.applyAndUpsert(ctx, storeID, externalID, input)
	if err != nil {
		return nil, err
	}

	_ = s.recorder.RecordAndPublish(ctx, product)

	return NewProductDTO(product), nil
}

// Delete removes the mirrored product. Deleting an absent product is a
// success. Gauges for the product are removed and store aggregates refreshed
// either way.
func (s *service) Delete(ctx context.Context, storeID uuid.UUID, externalID string) error {
	existing, err := s.repo.FindByExternalID(ctx, storeID, externalID)
	if err != nil && !db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading product for delete")
	}

	if _, err := s.repo.DeleteByExternalID(ctx, storeID, externalID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "deleting product")
	}

	if existing != nil {
		s.recorder.RemoveProduct(ctx, existing)
	}
	_ = s.aggregator.RefreshStoreAggregates(ctx, storeID)
	return nil
}

// Get loads one mirrored product.
func (s *service) Get(ctx context.Context, storeID uuid.UUID, externalID string) (*ProductDTO, error) {
	product, err := s.repo.FindByExternalID(ctx, storeID, externalID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading product")
	}
	return NewProductDTO(product), nil
}

// List returns one cursor page of the store's products, newest first.
func (s *service) List(ctx context.Context, storeID uuid.UUID, params pagination.Params) (*ProductListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListPage(ctx, storeID, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing products")
	}

	result := &ProductListResult{Products: make([]ProductDTO, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for i := range rows {
		result.Products = append(result.Products, *NewProductDTO(&rows[i]))
	}
	if hasMore {
		last := rows[len(rows)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		result.NextCursor = &next
	}
	return result, nil
}

// applyAndUpsert merges the input onto the current record (or a fresh one),
// recomputes the derived packaging ratio, and writes the row.
func (s *service) applyAndUpsert(ctx context.Context, storeID uuid.UUID, externalID string, input UpdateMetricsInput) (*models.Product, error) {
	product, err := s.repo.FindByExternalID(ctx, storeID, externalID)
	if err != nil {
		if !db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading product")
		}
		product = &models.Product{StoreID: storeID, ExternalID: externalID}
	}

	if input.Title != nil {
		product.Title = input.Title
	}
	if input.SustainableMaterials != nil {
		product.SustainableMaterials = input.SustainableMaterials
	}
	if input.LocallyProduced != nil {
		product.LocallyProduced = input.LocallyProduced
	}
	if input.PackagingWeightKg != nil {
		product.PackagingWeightKg = input.PackagingWeightKg
	}
	if input.ProductWeightKg != nil {
		product.ProductWeightKg = input.ProductWeightKg
	}
	product.PackagingRatio = PackagingRatio(product.PackagingWeightKg, product.ProductWeightKg)

	saved, err := s.repo.Upsert(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "upserting product")
	}
	return saved, nil
}

// normalizeInput validates and normalizes the editable fields, rejecting the
// write on the first invalid number.
func normalizeInput(input UpdateMetricsInput) (UpdateMetricsInput, error) {
	out := input

	if input.SustainableMaterials != nil {
		var (
			ratio float64
			err   error
		)
		if input.FromImport {
			ratio, err = NormalizeImportedSustainableRatio(*input.SustainableMaterials)
		} else {
			ratio, err = NormalizeSustainableRatio(*input.SustainableMaterials)
		}
		if err != nil {
			return out, err
		}
		out.SustainableMaterials = &ratio
	}
	if input.PackagingWeightKg != nil {
		weight, err := NormalizeWeight(*input.PackagingWeightKg)
		if err != nil {
			return out, err
		}
		out.PackagingWeightKg = &weight
	}
	if input.ProductWeightKg != nil {
		weight, err := NormalizeWeight(*input.ProductWeightKg)
		if err != nil {
			return out, err
		}
		out.ProductWeightKg = &weight
	}
	return out, nil
}

// inputFromMetafields reads the namespaced metafield map leniently; fields
// that fail to parse or normalize are left unset.
func inputFromMetafields(metafields map[string]string) UpdateMetricsInput {
	var input UpdateMetricsInput

	if raw, ok := metafields[shopify.KeySustainableMaterials]; ok {
		if value, err := ParseMetricValue(raw); err == nil {
			if ratio, err := NormalizeSustainableRatio(value); err == nil {
				input.SustainableMaterials = &ratio
			}
		}
	}
	if raw, ok := metafields[shopify.KeyLocallyProduced]; ok {
		local := ParseLocallyProduced(raw)
		input.LocallyProduced = &local
	}
	if raw, ok := metafields[shopify.KeyPackagingWeight]; ok {
		if value, err := ParseMetricValue(raw); err == nil {
			if weight, err := NormalizeWeight(value); err == nil {
				input.PackagingWeightKg = &weight
			}
		}
	}
	if raw, ok := metafields[shopify.KeyProductWeight]; ok {
		if value, err := ParseMetricValue(raw); err == nil {
			if weight, err := NormalizeWeight(value); err == nil {
				input.ProductWeightKg = &weight
			}
		}
	}
	return input
}

// metafieldInputs renders the provided fields as platform metafield writes.
func metafieldInputs(input UpdateMetricsInput) []shopify.MetafieldInput {
	var inputs []shopify.MetafieldInput

	if input.SustainableMaterials != nil {
		inputs = append(inputs, shopify.MetafieldInput{
			Key:   shopify.KeySustainableMaterials,
			Value: formatFloat(*input.SustainableMaterials),
			Type:  "number_decimal",
		})
	}
	if input.LocallyProduced != nil {
		inputs = append(inputs, shopify.MetafieldInput{
			Key:   shopify.KeyLocallyProduced,
			Value: strconv.FormatBool(*input.LocallyProduced),
			Type:  "boolean",
		})
	}
	if input.PackagingWeightKg != nil {
		inputs = append(inputs, shopify.MetafieldInput{
			Key:   shopify.KeyPackagingWeight,
			Value: formatFloat(*input.PackagingWeightKg),
			Type:  "number_decimal",
		})
	}
	if input.ProductWeightKg != nil {
		inputs = append(inputs, shopify.MetafieldInput{
			Key:   shopify.KeyProductWeight,
			Value: formatFloat(*input.ProductWeightKg),
			Type:  "number_decimal",
		})
	}
	return inputs
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
