package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ecotrackhq/ecotrack-backend/api/responses"
	pkgauth "github.com/ecotrackhq/ecotrack-backend/pkg/auth"
	"github.com/ecotrackhq/ecotrack-backend/pkg/config"
	"github.com/ecotrackhq/ecotrack-backend/pkg/db/models"
	pkgerrors "github.com/ecotrackhq/ecotrack-backend/pkg/errors"
	"github.com/ecotrackhq/ecotrack-backend/pkg/logger"
)

type storeResolver interface {
	EnsureByDomain(ctx context.Context, domain string) (*models.Store, error)
}

// SessionAuth validates an App Bridge session token, resolves the shop's
// store row (creating it on first contact), and seeds the request context.
func SessionAuth(cfg config.ShopifyConfig, stores storeResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseSessionToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid session token"))
				return
			}

			store, err := stores.EnsureByDomain(r.Context(), claims.ShopDomain())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithShopDomain(r.Context(), claims.ShopDomain())
			ctx = WithStore(ctx, store)

			if logg != nil {
				ctx = logg.WithShopDomain(ctx, claims.ShopDomain())
				ctx = logg.WithStoreID(ctx, store.ID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
