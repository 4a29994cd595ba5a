package product

import (
	"context"
	"fmt"
	"testing"

	"github.com/ecotrackhq/ecotrack-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func mustCreateTestStore(t *testing.T, tx *gorm.DB) *models.Store {
	t.Helper()
	store := &models.Store{
		ID:     uuid.New(),
		Domain: fmt.Sprintf("et-test-%s.myshopify.com", uuid.NewString()),
	}
	if err := tx.Create(store).Error; err != nil {
		t.Fatalf("create store: %v", err)
	}
	return store
}

func TestUpsertIsKeyedByStoreAndExternalID(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()

	err := conn.Transaction(func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		store := mustCreateTestStore(t, tx)

		ratio := 0.8
		first, err := repo.Upsert(ctx, &models.Product{
			StoreID:              store.ID,
			ExternalID:           "1001",
			SustainableMaterials: &ratio,
		})
		if err != nil {
			t.Fatalf("first upsert: %v", err)
		}

		updated := 0.5
		second, err := repo.Upsert(ctx, &models.Product{
			StoreID:              store.ID,
			ExternalID:           "1001",
			SustainableMaterials: &updated,
		})
		if err != nil {
			t.Fatalf("second upsert: %v", err)
		}

		if second.ID != first.ID {
			t.Fatalf("expected same row, got %s then %s", first.ID, second.ID)
		}
		if second.SustainableMaterials == nil || *second.SustainableMaterials != 0.5 {
			t.Fatalf("expected updated ratio 0.5, got %v", second.SustainableMaterials)
		}

		count, err := repo.CountByStore(ctx, store.ID)
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if count != 1 {
			t.Fatalf("expected 1 product, got %d", count)
		}
		return gorm.ErrInvalidTransaction // rollback
	})
	if err == nil {
		t.Fatal("expected rollback sentinel")
	}
}

func TestDeleteByExternalIDIsIdempotent(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()

	err := conn.Transaction(func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		store := mustCreateTestStore(t, tx)

		if _, err := repo.Upsert(ctx, &models.Product{StoreID: store.ID, ExternalID: "1001"}); err != nil {
			t.Fatalf("upsert: %v", err)
		}

		affected, err := repo.DeleteByExternalID(ctx, store.ID, "1001")
		if err != nil {
			t.Fatalf("first delete: %v", err)
		}
		if affected != 1 {
			t.Fatalf("expected 1 row deleted, got %d", affected)
		}

		affected, err = repo.DeleteByExternalID(ctx, store.ID, "1001")
		if err != nil {
			t.Fatalf("second delete: %v", err)
		}
		if affected != 0 {
			t.Fatalf("expected 0 rows on repeat delete, got %d", affected)
		}
		return gorm.ErrInvalidTransaction
	})
	if err == nil {
		t.Fatal("expected rollback sentinel")
	}
}

func TestListExternalIDsScopedToStore(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()

	err := conn.Transaction(func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		storeA := mustCreateTestStore(t, tx)
		storeB := mustCreateTestStore(t, tx)

		for _, id := range []string{"1", "2"} {
			if _, err := repo.Upsert(ctx, &models.Product{StoreID: storeA.ID, ExternalID: id}); err != nil {
				t.Fatalf("upsert A/%s: %v", id, err)
			}
		}
		if _, err := repo.Upsert(ctx, &models.Product{StoreID: storeB.ID, ExternalID: "3"}); err != nil {
			t.Fatalf("upsert B/3: %v", err)
		}

		ids, err := repo.ListExternalIDs(ctx, storeA.ID)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(ids) != 2 {
			t.Fatalf("expected 2 ids for store A, got %v", ids)
		}
		return gorm.ErrInvalidTransaction
	})
	if err == nil {
		t.Fatal("expected rollback sentinel")
	}
}
