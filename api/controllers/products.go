package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ecotrackhq/ecotrack-backend/api/middleware"
	"github.com/ecotrackhq/ecotrack-backend/api/responses"
	"github.com/ecotrackhq/ecotrack-backend/api/validators"
	product "github.com/ecotrackhq/ecotrack-backend/internal/products"
	pkgerrors "github.com/ecotrackhq/ecotrack-backend/pkg/errors"
	"github.com/ecotrackhq/ecotrack-backend/pkg/logger"
	"github.com/ecotrackhq/ecotrack-backend/pkg/pagination"
)

// ProductList returns one cursor page of the store's mirrored products.
func ProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		store := middleware.StoreFromContext(r.Context())
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "store context missing"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{
			Cursor: r.URL.Query().Get("cursor"),
			Limit:  limit,
		}

		result, err := svc.List(r.Context(), store.ID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ProductDetail loads a single mirrored product by its platform id.
func ProductDetail(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		store := middleware.StoreFromContext(r.Context())
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "store context missing"))
			return
		}

		externalID := chi.URLParam(r, "externalId")
		if externalID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}

		dto, err := svc.Get(r.Context(), store.ID, externalID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

type updateMetricsRequest struct {
	Title                *string  `json:"title,omitempty" validate:"omitempty,max=255"`
	SustainableMaterials *float64 `json:"sustainable_materials,omitempty"`
	LocallyProduced      *bool    `json:"locally_produced,omitempty"`
	PackagingWeightKg    *float64 `json:"packaging_weight_kg,omitempty"`
	ProductWeightKg      *float64 `json:"product_weight_kg,omitempty"`
}

func (req updateMetricsRequest) toInput() product.UpdateMetricsInput {
	input := product.UpdateMetricsInput{
		SustainableMaterials: req.SustainableMaterials,
		LocallyProduced:      req.LocallyProduced,
		PackagingWeightKg:    req.PackagingWeightKg,
		ProductWeightKg:      req.ProductWeightKg,
	}
	if req.Title != nil {
		title := validators.SanitizeString(*req.Title, 255)
		input.Title = &title
	}
	return input
}

// ProductUpdateMetrics is the editor save path: platform metafields are the
// source of truth, so field errors from the write-through come back as
// validation details.
func ProductUpdateMetrics(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		store := middleware.StoreFromContext(r.Context())
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "store context missing"))
			return
		}

		externalID := chi.URLParam(r, "externalId")
		if externalID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}

		var payload updateMetricsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.UpdateMetrics(r.Context(), store.ID, externalID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if result.Failed() {
			err := pkgerrors.New(pkgerrors.CodeValidation, "platform rejected metafield values").
				WithDetails(map[string]any{"field_errors": result.FieldErrors})
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result.Product)
	}
}
