package controllers

import (
	"net/http"

	"github.com/ecotrackhq/ecotrack-backend/api/middleware"
	"github.com/ecotrackhq/ecotrack-backend/api/responses"
	order "github.com/ecotrackhq/ecotrack-backend/internal/orders"
	pkgerrors "github.com/ecotrackhq/ecotrack-backend/pkg/errors"
	"github.com/ecotrackhq/ecotrack-backend/pkg/logger"
)

// OrdersRefresh re-pulls the store's fulfilled orders and recomputes the
// average delivery distance.
func OrdersRefresh(svc order.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		store := middleware.StoreFromContext(r.Context())
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "store context missing"))
			return
		}

		summary, err := svc.SyncFulfilled(r.Context(), store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}
