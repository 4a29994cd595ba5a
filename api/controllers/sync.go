package controllers

import (
	"context"
	"net/http"

	"github.com/ecotrackhq/ecotrack-backend/api/middleware"
	"github.com/ecotrackhq/ecotrack-backend/api/responses"
	"github.com/ecotrackhq/ecotrack-backend/internal/reconcile"
	"github.com/ecotrackhq/ecotrack-backend/pkg/db/models"
	pkgerrors "github.com/ecotrackhq/ecotrack-backend/pkg/errors"
	"github.com/ecotrackhq/ecotrack-backend/pkg/logger"
)

type reconciler interface {
	ReconcileStore(ctx context.Context, store *models.Store) (*reconcile.Result, error)
}

// SyncRun reconciles the store's mirror against the live platform catalog.
// The dashboard calls it both for its status card and for the explicit
// "sync now" action; the classification is always computed fresh.
func SyncRun(engine reconciler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if engine == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reconciler unavailable"))
			return
		}

		store := middleware.StoreFromContext(r.Context())
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "store context missing"))
			return
		}

		result, err := engine.ReconcileStore(r.Context(), store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
