package importer

import (
	"context"
	"fmt"
	"time"

	product "github.com/ecotrackhq/ecotrack-backend/internal/products"
	"github.com/ecotrackhq/ecotrack-backend/pkg/config"
	pkgerrors "github.com/ecotrackhq/ecotrack-backend/pkg/errors"
	"github.com/ecotrackhq/ecotrack-backend/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Row is one bulk-import line with the product's editable metric fields.
// Sustainable-materials values in (1, 100] are read as percentages.
type Row struct {
	ExternalID           string   `json:"external_id" validate:"required"`
	Title                *string  `json:"title,omitempty"`
	SustainableMaterials *float64 `json:"sustainable_materials,omitempty"`
	LocallyProduced      *bool    `json:"locally_produced,omitempty"`
	PackagingWeightKg    *float64 `json:"packaging_weight_kg,omitempty"`
	ProductWeightKg      *float64 `json:"product_weight_kg,omitempty"`
}

// RowError reports one failed row. Row failures never abort the import.
type RowError struct {
	Index      int    `json:"index"`
	ExternalID string `json:"external_id"`
	Message    string `json:"message"`
}

// Summary is the import outcome.
type Summary struct {
	Total     int        `json:"total"`
	Succeeded int        `json:"succeeded"`
	Failed    int        `json:"failed"`
	Errors    []RowError `json:"errors,omitempty"`
}

type productUpdater interface {
	UpdateMetrics(ctx context.Context, storeID uuid.UUID, externalID string, input product.UpdateMetricsInput) (*product.UpdateResult, error)
}

// Importer feeds bulk rows through the single-product update path in
// fixed-size concurrent batches, waiting between batches to respect the
// platform's rate limits.
type Importer struct {
	products productUpdater
	sync     config.SyncConfig
	logg     *logger.Logger
}

// NewImporter constructs the importer.
func NewImporter(products productUpdater, sync config.SyncConfig, logg *logger.Logger) (*Importer, error) {
	if products == nil {
		return nil, fmt.Errorf("product updater required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Importer{products: products, sync: sync, logg: logg}, nil
}

// Run processes the rows batch by batch. Each batch runs concurrently and is
// awaited as a unit before the next one starts.
func (i *Importer) Run(ctx context.Context, storeID uuid.UUID, rows []Row) (*Summary, error) {
	summary := &Summary{Total: len(rows)}
	if len(rows) == 0 {
		return summary, nil
	}

	batchSize := i.sync.ImportBatchSize
	if batchSize <= 0 {
		batchSize = 1
	}

	rowErrors := make([]*RowError, len(rows))
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}

		group, groupCtx := errgroup.WithContext(ctx)
		for index := start; index < end; index++ {
			index := index
			group.Go(func() error {
				if rowErr := i.processRow(groupCtx, storeID, index, rows[index]); rowErr != nil {
					rowErrors[index] = rowErr
				}
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return nil, err
		}

		if end < len(rows) && i.sync.ImportBatchWait > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(i.sync.ImportBatchWait):
			}
		}
	}

	for _, rowErr := range rowErrors {
		if rowErr != nil {
			i.logg.Warn(ctx, fmt.Sprintf("import row %d (%s) failed: %s", rowErr.Index, rowErr.ExternalID, rowErr.Message))
			summary.Failed++
			summary.Errors = append(summary.Errors, *rowErr)
		}
	}
	summary.Succeeded = summary.Total - summary.Failed
	return summary, nil
}

func (i *Importer) processRow(ctx context.Context, storeID uuid.UUID, index int, row Row) *RowError {
	if row.ExternalID == "" {
		return &RowError{Index: index, Message: "row has no external id"}
	}

	input := product.UpdateMetricsInput{
		Title:                row.Title,
		SustainableMaterials: row.SustainableMaterials,
		LocallyProduced:      row.LocallyProduced,
		PackagingWeightKg:    row.PackagingWeightKg,
		ProductWeightKg:      row.ProductWeightKg,
		FromImport:           true,
	}

	result, err := i.products.UpdateMetrics(ctx, storeID, row.ExternalID, input)
	if err != nil {
		message := err.Error()
		if typed := pkgerrors.As(err); typed != nil {
			message = typed.Message()
		}
		return &RowError{Index: index, ExternalID: row.ExternalID, Message: message}
	}
	if result.Failed() {
		return &RowError{
			Index:      index,
			ExternalID: row.ExternalID,
			Message:    fmt.Sprintf("platform rejected fields: %v", result.FieldErrors),
		}
	}
	return nil
}
