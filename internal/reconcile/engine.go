package reconcile

import (
	"context"
	"fmt"

	product "github.com/ecotrackhq/ecotrack-backend/internal/products"
	"github.com/ecotrackhq/ecotrack-backend/pkg/config"
	"github.com/ecotrackhq/ecotrack-backend/pkg/db"
	"github.com/ecotrackhq/ecotrack-backend/pkg/db/models"
	pkgerrors "github.com/ecotrackhq/ecotrack-backend/pkg/errors"
	"github.com/ecotrackhq/ecotrack-backend/pkg/logger"
	"github.com/ecotrackhq/ecotrack-backend/pkg/shopify"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// Result reports one reconciliation pass.
type Result struct {
	Status         Status   `json:"status"`
	MissingLocally []string `json:"missing_locally,omitempty"`
	Orphaned       []string `json:"orphaned,omitempty"`
	Created        int      `json:"created"`
	Deleted        int      `json:"deleted"`
	ExternalCount  int      `json:"external_count"`
	LocalCount     int      `json:"local_count"`
	Exhaustive     bool     `json:"exhaustive"`
}

type productMirror interface {
	ListExternalIDs(ctx context.Context, storeID uuid.UUID) ([]string, error)
	FindByExternalID(ctx context.Context, storeID uuid.UUID, externalID string) (*models.Product, error)
	Upsert(ctx context.Context, product *models.Product) (*models.Product, error)
	DeleteByExternalID(ctx context.Context, storeID uuid.UUID, externalID string) (int64, error)
}

type catalogSource interface {
	PageProducts(ctx context.Context, pageSize int, after string) (*shopify.ProductPage, error)
	SetMetafields(ctx context.Context, productGID string, inputs []shopify.MetafieldInput) ([]shopify.UserError, error)
}

type metricsRecorder interface {
	RecordAndPublish(ctx context.Context, product *models.Product) bool
	RemoveProduct(ctx context.Context, product *models.Product)
}

type storeAggregator interface {
	RefreshStoreAggregates(ctx context.Context, storeID uuid.UUID) bool
}

// Engine diffs the local mirror against the authoritative catalog and drives
// corrective upserts and deletes.
type Engine struct {
	mirror     productMirror
	catalog    catalogSource
	recorder   metricsRecorder
	aggregator storeAggregator
	sync       config.SyncConfig
	logg       *logger.Logger
}

// NewEngine constructs the reconciliation engine.
func NewEngine(mirror productMirror, catalog catalogSource, recorder metricsRecorder, aggregator storeAggregator, sync config.SyncConfig, logg *logger.Logger) (*Engine, error) {
	if mirror == nil {
		return nil, fmt.Errorf("product mirror required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog source required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("metrics recorder required")
	}
	if aggregator == nil {
		return nil, fmt.Errorf("store aggregator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Engine{
		mirror:     mirror,
		catalog:    catalog,
		recorder:   recorder,
		aggregator: aggregator,
		sync:       sync,
		logg:       logg,
	}, nil
}

// ReconcileStore runs one pass for the store. A catalog fetch failure
// degrades the result to the error status with zeroed counts instead of
// propagating. Per-product corrective failures are collected and returned
// alongside the result; they do not stop the pass.
func (e *Engine) ReconcileStore(ctx context.Context, store *models.Store) (*Result, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store is required")
	}
	ctx = e.logg.WithStoreID(ctx, store.ID.String())

	localIDs, err := e.mirror.ListExternalIDs(ctx, store.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing local product ids")
	}

	nodes, exhaustive, err := e.fetchCatalog(ctx)
	if err != nil {
		e.logg.Error(ctx, "fetching external catalog", err)
		return &Result{Status: StatusError}, nil
	}

	externalIDs := make([]string, 0, len(nodes))
	byID := make(map[string]shopify.ProductNode, len(nodes))
	for _, node := range nodes {
		id := node.ExternalID()
		externalIDs = append(externalIDs, id)
		byID[id] = node
	}

	classification := Classify(localIDs, externalIDs, exhaustive)
	result := &Result{
		Status:         classification.Status,
		MissingLocally: classification.MissingLocally,
		Orphaned:       classification.Orphaned,
		ExternalCount:  len(externalIDs),
		LocalCount:     len(localIDs),
		Exhaustive:     exhaustive,
	}

	var errs error
	for _, externalID := range classification.MissingLocally {
		if err := e.createMissing(ctx, store, byID[externalID]); err != nil {
			e.logg.Warn(ctx, fmt.Sprintf("creating missing product %s: %v", externalID, err))
			errs = multierr.Append(errs, err)
			continue
		}
		result.Created++
	}

	for _, externalID := range classification.Orphaned {
		deleted, err := e.deleteOrphan(ctx, store, externalID)
		if err != nil {
			e.logg.Warn(ctx, fmt.Sprintf("deleting orphaned product %s: %v", externalID, err))
			errs = multierr.Append(errs, err)
			continue
		}
		if deleted {
			result.Deleted++
		}
	}

	_ = e.aggregator.RefreshStoreAggregates(ctx, store.ID)
	return result, errs
}

// fetchCatalog pages through the external catalog up to the configured page
// cap. The second return reports whether the fetch was exhaustive.
func (e *Engine) fetchCatalog(ctx context.Context) ([]shopify.ProductNode, bool, error) {
	var nodes []shopify.ProductNode
	after := ""
	for page := 0; e.sync.MaxPages <= 0 || page < e.sync.MaxPages; page++ {
		productPage, err := e.catalog.PageProducts(ctx, e.sync.PageSize, after)
		if err != nil {
			return nil, false, err
		}
		nodes = append(nodes, productPage.Products...)
		if !productPage.HasNextPage {
			return nodes, true, nil
		}
		after = productPage.EndCursor
	}
	// Hit the page cap with more pages remaining.
	return nodes, false, nil
}

// createMissing mirrors one catalog product, records its metrics, and pushes
// default metafields for any tracked field the catalog record lacks. The
// write-back initializes metadata only; it never overwrites existing fields.
func (e *Engine) createMissing(ctx context.Context, store *models.Store, node shopify.ProductNode) error {
	record := &models.Product{
		StoreID:    store.ID,
		ExternalID: node.ExternalID(),
	}
	if node.Title != "" {
		title := node.Title
		record.Title = &title
	}
	applyMetafields(record, node.Metafields)
	record.PackagingRatio = product.PackagingRatio(record.PackagingWeightKg, record.ProductWeightKg)

	saved, err := e.mirror.Upsert(ctx, record)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "creating mirrored product")
	}

	_ = e.recorder.RecordAndPublish(ctx, saved)

	defaults := missingMetafieldDefaults(node.Metafields)
	if len(defaults) == 0 {
		return nil
	}
	userErrs, err := e.catalog.SetMetafields(ctx, node.ID, defaults)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "initializing default metafields")
	}
	if len(userErrs) > 0 {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("metafield defaults rejected: %v", userErrs)).
			WithDetails(userErrs)
	}
	return nil
}

// deleteOrphan removes one locally-known product the catalog no longer has.
func (e *Engine) deleteOrphan(ctx context.Context, store *models.Store, externalID string) (bool, error) {
	existing, err := e.mirror.FindByExternalID(ctx, store.ID, externalID)
	if err != nil && !db.IsNotFound(err) {
		return false, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading orphaned product")
	}

	affected, err := e.mirror.DeleteByExternalID(ctx, store.ID, externalID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "deleting orphaned product")
	}
	if existing != nil {
		e.recorder.RemoveProduct(ctx, existing)
	}
	return affected > 0, nil
}

// applyMetafields copies the parsed sustainability metafields onto the
// record. Malformed values are skipped; the catalog owns them.
func applyMetafields(record *models.Product, metafields map[string]string) {
	if raw, ok := metafields[shopify.KeySustainableMaterials]; ok {
		if value, err := product.ParseMetricValue(raw); err == nil {
			if ratio, err := product.NormalizeSustainableRatio(value); err == nil {
				record.SustainableMaterials = &ratio
			}
		}
	}
	if raw, ok := metafields[shopify.KeyLocallyProduced]; ok {
		local := product.ParseLocallyProduced(raw)
		record.LocallyProduced = &local
	}
	if raw, ok := metafields[shopify.KeyPackagingWeight]; ok {
		if value, err := product.ParseMetricValue(raw); err == nil {
			if weight, err := product.NormalizeWeight(value); err == nil {
				record.PackagingWeightKg = &weight
			}
		}
	}
	if raw, ok := metafields[shopify.KeyProductWeight]; ok {
		if value, err := product.ParseMetricValue(raw); err == nil {
			if weight, err := product.NormalizeWeight(value); err == nil {
				record.ProductWeightKg = &weight
			}
		}
	}
}

// missingMetafieldDefaults renders default writes for tracked fields absent
// from the catalog record.
func missingMetafieldDefaults(metafields map[string]string) []shopify.MetafieldInput {
	defaults := []shopify.MetafieldInput{
		{Key: shopify.KeySustainableMaterials, Value: "0.0", Type: "number_decimal"},
		{Key: shopify.KeyLocallyProduced, Value: "false", Type: "boolean"},
		{Key: shopify.KeyPackagingWeight, Value: "0", Type: "number_decimal"},
		{Key: shopify.KeyProductWeight, Value: "0", Type: "number_decimal"},
	}

	var missing []shopify.MetafieldInput
	for _, def := range defaults {
		if _, ok := metafields[def.Key]; !ok {
			missing = append(missing, def)
		}
	}
	return missing
}
