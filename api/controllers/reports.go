package controllers

import (
	"context"
	"net/http"

	"github.com/ecotrackhq/ecotrack-backend/api/middleware"
	"github.com/ecotrackhq/ecotrack-backend/api/responses"
	report "github.com/ecotrackhq/ecotrack-backend/internal/reports"
	"github.com/ecotrackhq/ecotrack-backend/pkg/db/models"
	pkgerrors "github.com/ecotrackhq/ecotrack-backend/pkg/errors"
	"github.com/ecotrackhq/ecotrack-backend/pkg/logger"
)

type reportSource interface {
	Snapshot(ctx context.Context, store *models.Store) (*report.Report, error)
}

// Report returns the store's current sustainability snapshot and score. The
// UI renders the downloadable document from this payload.
func Report(svc reportSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}

		store := middleware.StoreFromContext(r.Context())
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "store context missing"))
			return
		}

		snapshot, err := svc.Snapshot(r.Context(), store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshot)
	}
}
