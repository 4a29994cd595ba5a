package shopifywebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecotrackhq/ecotrack-backend/pkg/redis"
)

// DefaultIdempotencyTTL bounds how long a delivery id blocks replays.
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyGuard deduplicates webhook deliveries by their platform-assigned
// id. Shopify retries deliveries until acknowledged, so replays are routine.
type IdempotencyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &IdempotencyGuard{
		store: store,
		ttl:   ttl,
		scope: scope,
	}, nil
}

// CheckAndMark marks the delivery id and reports whether it was seen before.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, webhookID string) (bool, error) {
	if webhookID == "" {
		return false, errors.New("webhook id is required")
	}
	key := g.store.IdempotencyKey(g.scope, webhookID)
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

// Release unmarks the delivery so the platform's retry can be reprocessed.
func (g *IdempotencyGuard) Release(ctx context.Context, webhookID string) error {
	if webhookID == "" {
		return errors.New("webhook id is required")
	}
	key := g.store.IdempotencyKey(g.scope, webhookID)
	return g.store.Del(ctx, key)
}
