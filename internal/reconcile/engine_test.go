package reconcile

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/ecotrackhq/ecotrack-backend/pkg/config"
	"github.com/ecotrackhq/ecotrack-backend/pkg/db/models"
	"github.com/ecotrackhq/ecotrack-backend/pkg/logger"
	"github.com/ecotrackhq/ecotrack-backend/pkg/shopify"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubMirror struct {
	products map[string]*models.Product
}

func newStubMirror(ids ...string) *stubMirror {
	m := &stubMirror{products: map[string]*models.Product{}}
	for _, id := range ids {
		m.products[id] = &models.Product{ID: uuid.New(), ExternalID: id}
	}
	return m
}

func (m *stubMirror) ListExternalIDs(context.Context, uuid.UUID) ([]string, error) {
	var ids []string
	for id := range m.products {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *stubMirror) FindByExternalID(_ context.Context, _ uuid.UUID, externalID string) (*models.Product, error) {
	if p, ok := m.products[externalID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *stubMirror) Upsert(_ context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	m.products[product.ExternalID] = product
	return product, nil
}

func (m *stubMirror) DeleteByExternalID(_ context.Context, _ uuid.UUID, externalID string) (int64, error) {
	if _, ok := m.products[externalID]; !ok {
		return 0, nil
	}
	delete(m.products, externalID)
	return 1, nil
}

type stubCatalog struct {
	pages         []*shopify.ProductPage
	fetchErr      error
	written       map[string][]shopify.MetafieldInput
	userErrors    []shopify.UserError
	metafieldsErr error
}

func (c *stubCatalog) PageProducts(_ context.Context, _ int, after string) (*shopify.ProductPage, error) {
	if c.fetchErr != nil {
		return nil, c.fetchErr
	}
	index := 0
	if after != "" {
		for i, page := range c.pages {
			if page.EndCursor == after {
				index = i + 1
				break
			}
		}
	}
	if index >= len(c.pages) {
		return &shopify.ProductPage{}, nil
	}
	return c.pages[index], nil
}

func (c *stubCatalog) SetMetafields(_ context.Context, productGID string, inputs []shopify.MetafieldInput) ([]shopify.UserError, error) {
	if c.metafieldsErr != nil {
		return nil, c.metafieldsErr
	}
	if c.written == nil {
		c.written = map[string][]shopify.MetafieldInput{}
	}
	c.written[productGID] = append(c.written[productGID], inputs...)
	return c.userErrors, nil
}

type stubRecorder struct {
	recorded []string
	removed  []string
}

func (r *stubRecorder) RecordAndPublish(_ context.Context, product *models.Product) bool {
	r.recorded = append(r.recorded, product.ExternalID)
	return true
}

func (r *stubRecorder) RemoveProduct(_ context.Context, product *models.Product) {
	r.removed = append(r.removed, product.ExternalID)
}

type stubAggregator struct {
	calls int
}

func (s *stubAggregator) RefreshStoreAggregates(context.Context, uuid.UUID) bool {
	s.calls++
	return true
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "reconcile-test", Output: &bytes.Buffer{}})
}

func testSyncConfig() config.SyncConfig {
	return config.SyncConfig{PageSize: 50, MaxPages: 10}
}

func newTestEngine(t *testing.T, mirror *stubMirror, catalog *stubCatalog, recorder *stubRecorder, agg *stubAggregator) *Engine {
	t.Helper()
	engine, err := NewEngine(mirror, catalog, recorder, agg, testSyncConfig(), testLogger())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

func catalogNode(id, title string, metafields map[string]string) shopify.ProductNode {
	if metafields == nil {
		metafields = map[string]string{}
	}
	return shopify.ProductNode{
		ID:         shopify.ProductGID(id),
		Title:      title,
		Metafields: metafields,
	}
}

func testReconcileStore() *models.Store {
	return &models.Store{ID: uuid.New(), Domain: "eco-demo.myshopify.com"}
}

func TestReconcileCreatesMissingProducts(t *testing.T) {
	mirror := newStubMirror("A", "B")
	catalog := &stubCatalog{pages: []*shopify.ProductPage{{
		Products: []shopify.ProductNode{
			catalogNode("A", "Alpha", nil),
			catalogNode("B", "Beta", nil),
			catalogNode("C", "Gamma", map[string]string{
				shopify.KeySustainableMaterials: "0.8",
				shopify.KeyPackagingWeight:      "0.4",
				shopify.KeyProductWeight:        "2.0",
			}),
		},
	}}}
	recorder := &stubRecorder{}
	agg := &stubAggregator{}
	engine := newTestEngine(t, mirror, catalog, recorder, agg)

	result, err := engine.ReconcileStore(context.Background(), testReconcileStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != StatusNeedsSync {
		t.Fatalf("expected needs_sync, got %s", result.Status)
	}
	if result.Created != 1 {
		t.Fatalf("expected 1 created, got %d", result.Created)
	}

	created, ok := mirror.products["C"]
	if !ok {
		t.Fatal("expected product C mirrored")
	}
	if created.SustainableMaterials == nil || *created.SustainableMaterials != 0.8 {
		t.Fatalf("expected sustainable ratio 0.8, got %v", created.SustainableMaterials)
	}
	if created.PackagingRatio == nil || *created.PackagingRatio != 0.2 {
		t.Fatalf("expected derived packaging ratio 0.2, got %v", created.PackagingRatio)
	}

	if len(recorder.recorded) != 1 || recorder.recorded[0] != "C" {
		t.Fatalf("expected recorder invoked for C, got %v", recorder.recorded)
	}
	if agg.calls != 1 {
		t.Fatalf("expected exactly one batched aggregate refresh, got %d", agg.calls)
	}
}

func TestReconcileWritesBackOnlyMissingDefaults(t *testing.T) {
	mirror := newStubMirror()
	catalog := &stubCatalog{pages: []*shopify.ProductPage{{
		Products: []shopify.ProductNode{
			catalogNode("C", "Gamma", map[string]string{
				shopify.KeySustainableMaterials: "0.8",
			}),
		},
	}}}
	engine := newTestEngine(t, mirror, catalog, &stubRecorder{}, &stubAggregator{})

	if _, err := engine.ReconcileStore(context.Background(), testReconcileStore()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	written := catalog.written[shopify.ProductGID("C")]
	if len(written) != 3 {
		t.Fatalf("expected defaults for the 3 absent fields, got %v", written)
	}
	for _, input := range written {
		if input.Key == shopify.KeySustainableMaterials {
			t.Fatal("write-back must never overwrite an existing field")
		}
	}
}

func TestReconcileDeletesOrphansOnlyWhenExhaustive(t *testing.T) {
	mirror := newStubMirror("A", "B", "D")
	catalog := &stubCatalog{pages: []*shopify.ProductPage{{
		Products: []shopify.ProductNode{
			catalogNode("A", "Alpha", nil),
			catalogNode("B", "Beta", nil),
		},
	}}}
	recorder := &stubRecorder{}
	engine := newTestEngine(t, mirror, catalog, recorder, &stubAggregator{})

	result, err := engine.ReconcileStore(context.Background(), testReconcileStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != StatusNeedsCleanup {
		t.Fatalf("expected needs_cleanup, got %s", result.Status)
	}
	if result.Deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d", result.Deleted)
	}
	if _, ok := mirror.products["D"]; ok {
		t.Fatal("expected orphan D removed")
	}
	if len(recorder.removed) != 1 || recorder.removed[0] != "D" {
		t.Fatalf("expected gauge removal for D, got %v", recorder.removed)
	}
}

func TestReconcilePartialFetchSkipsOrphanDeletion(t *testing.T) {
	mirror := newStubMirror("D")
	pages := []*shopify.ProductPage{}
	// More pages than the cap allows, all reporting another page behind them.
	for i := 0; i < 12; i++ {
		pages = append(pages, &shopify.ProductPage{
			Products:    []shopify.ProductNode{catalogNode("D", "Delta", nil)},
			EndCursor:   string(rune('a' + i)),
			HasNextPage: true,
		})
	}
	catalog := &stubCatalog{pages: pages}
	engine := newTestEngine(t, mirror, catalog, &stubRecorder{}, &stubAggregator{})

	result, err := engine.ReconcileStore(context.Background(), testReconcileStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Exhaustive {
		t.Fatal("expected partial fetch after hitting the page cap")
	}
	if result.Status != StatusMightNeedSync {
		t.Fatalf("expected might_need_sync, got %s", result.Status)
	}
	if _, ok := mirror.products["D"]; !ok {
		t.Fatal("expected D untouched on a partial fetch")
	}
}

func TestReconcileFetchFailureDegradesToErrorStatus(t *testing.T) {
	mirror := newStubMirror("A")
	catalog := &stubCatalog{fetchErr: errors.New("shopify down")}
	recorder := &stubRecorder{}
	agg := &stubAggregator{}
	engine := newTestEngine(t, mirror, catalog, recorder, agg)

	result, err := engine.ReconcileStore(context.Background(), testReconcileStore())
	if err != nil {
		t.Fatalf("fetch failure must not propagate, got %v", err)
	}

	if result.Status != StatusError {
		t.Fatalf("expected error status, got %s", result.Status)
	}
	if result.ExternalCount != 0 || result.LocalCount != 0 || result.Created != 0 || result.Deleted != 0 {
		t.Fatalf("expected zeroed counts, got %+v", result)
	}
	if len(recorder.recorded) != 0 || agg.calls != 0 {
		t.Fatal("expected no corrective side effects on fetch failure")
	}
}
