package shopifywebhook

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubIdempotencyStore struct {
	seen    map[string]bool
	lastTTL time.Duration
	err     error
}

func (s *stubIdempotencyStore) SetNX(_ context.Context, key string, _ any, ttl time.Duration) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	s.lastTTL = ttl
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func (s *stubIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "et:idempotency:" + scope + ":" + id
}

func (s *stubIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.seen, key)
	}
	return nil
}

func TestCheckAndMarkDeduplicates(t *testing.T) {
	store := &stubIdempotencyStore{}
	guard, err := NewIdempotencyGuard(store, DefaultIdempotencyTTL, "webhook")
	if err != nil {
		t.Fatalf("setup guard: %v", err)
	}

	duplicate, err := guard.CheckAndMark(context.Background(), "delivery-1")
	if err != nil || duplicate {
		t.Fatalf("first delivery should be fresh, got duplicate=%v err=%v", duplicate, err)
	}
	duplicate, err = guard.CheckAndMark(context.Background(), "delivery-1")
	if err != nil || !duplicate {
		t.Fatalf("replay should be flagged, got duplicate=%v err=%v", duplicate, err)
	}
	if store.lastTTL != DefaultIdempotencyTTL {
		t.Fatalf("expected ttl %v, got %v", DefaultIdempotencyTTL, store.lastTTL)
	}
}

func TestCheckAndMarkPropagatesStoreErrors(t *testing.T) {
	guard, err := NewIdempotencyGuard(&stubIdempotencyStore{err: errors.New("redis down")}, time.Minute, "webhook")
	if err != nil {
		t.Fatalf("setup guard: %v", err)
	}
	if _, err := guard.CheckAndMark(context.Background(), "delivery-1"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestReleaseAllowsReprocessing(t *testing.T) {
	store := &stubIdempotencyStore{}
	guard, err := NewIdempotencyGuard(store, time.Minute, "webhook")
	if err != nil {
		t.Fatalf("setup guard: %v", err)
	}

	if _, err := guard.CheckAndMark(context.Background(), "delivery-2"); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := guard.Release(context.Background(), "delivery-2"); err != nil {
		t.Fatalf("release: %v", err)
	}
	duplicate, err := guard.CheckAndMark(context.Background(), "delivery-2")
	if err != nil || duplicate {
		t.Fatalf("released delivery should be fresh again, got duplicate=%v err=%v", duplicate, err)
	}
}

func TestNewIdempotencyGuardValidatesInputs(t *testing.T) {
	if _, err := NewIdempotencyGuard(nil, time.Minute, "webhook"); err == nil {
		t.Fatalf("expected error for nil store")
	}
	if _, err := NewIdempotencyGuard(&stubIdempotencyStore{}, -time.Minute, "webhook"); err == nil {
		t.Fatalf("expected error for negative ttl")
	}
	if _, err := NewIdempotencyGuard(&stubIdempotencyStore{}, time.Minute, ""); err == nil {
		t.Fatalf("expected error for empty scope")
	}
}
