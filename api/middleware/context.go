package middleware

import (
	"context"

	"github.com/ecotrackhq/ecotrack-backend/pkg/db/models"
)

type contextKey string

const (
	ctxShopDomain contextKey = "shop_domain"
	ctxStore      contextKey = "store"
)

func ShopDomainFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxShopDomain).(string); ok {
		return v
	}
	return ""
}

func StoreFromContext(ctx context.Context) *models.Store {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxStore).(*models.Store); ok {
		return v
	}
	return nil
}

// WithShopDomain injects the authenticated shop domain into the context.
func WithShopDomain(ctx context.Context, domain string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxShopDomain, domain)
}

// WithStore injects the resolved store row into the context for downstream handlers.
func WithStore(ctx context.Context, store *models.Store) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxStore, store)
}
