package controllers

import (
	"context"
	"net/http"

	"github.com/ecotrackhq/ecotrack-backend/api/middleware"
	"github.com/ecotrackhq/ecotrack-backend/api/responses"
	"github.com/ecotrackhq/ecotrack-backend/api/validators"
	"github.com/ecotrackhq/ecotrack-backend/internal/importer"
	pkgerrors "github.com/ecotrackhq/ecotrack-backend/pkg/errors"
	"github.com/ecotrackhq/ecotrack-backend/pkg/logger"
	"github.com/google/uuid"
)

const maxImportRows = 1000

type bulkImporter interface {
	Run(ctx context.Context, storeID uuid.UUID, rows []importer.Row) (*importer.Summary, error)
}

type importRequest struct {
	Rows []importer.Row `json:"rows" validate:"required,min=1,dive"`
}

// ProductImport runs a pre-parsed bulk import through the single-product
// update path. Row failures are reported in the summary, not as a request
// error.
func ProductImport(imp bulkImporter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if imp == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "importer unavailable"))
			return
		}

		store := middleware.StoreFromContext(r.Context())
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "store context missing"))
			return
		}

		var payload importRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(payload.Rows) > maxImportRows {
			err := pkgerrors.New(pkgerrors.CodeValidation, "too many rows").
				WithDetails(map[string]any{"max": maxImportRows})
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := imp.Run(r.Context(), store.ID, payload.Rows)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}
