package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ecotrackhq/ecotrack-backend/pkg/config"
	pkgerrors "github.com/ecotrackhq/ecotrack-backend/pkg/errors"
	"github.com/ecotrackhq/ecotrack-backend/pkg/logger"
	"github.com/ecotrackhq/ecotrack-backend/pkg/shopify"
)

const testWebhookSecret = "whsec_test"

type stubWebhookService struct {
	err    error
	calls  int
	topics []string
}

func (s *stubWebhookService) Handle(_ context.Context, topic, _ string, _ []byte) error {
	s.calls++
	s.topics = append(s.topics, topic)
	return s.err
}

type stubGuard struct {
	seen     map[string]bool
	released []string
	err      error
}

func (s *stubGuard) CheckAndMark(_ context.Context, webhookID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[webhookID] {
		return true, nil
	}
	s.seen[webhookID] = true
	return false, nil
}

func (s *stubGuard) Release(_ context.Context, webhookID string) error {
	s.released = append(s.released, webhookID)
	delete(s.seen, webhookID)
	return nil
}

func testWebhookLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "webhook-test", Output: &bytes.Buffer{}})
}

func signBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func webhookRequest(t *testing.T, body []byte, signature string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/shopify", bytes.NewReader(body))
	req.Header.Set(shopify.WebhookHMACHeader, signature)
	req.Header.Set(shopify.WebhookTopicHeader, shopify.TopicProductsUpdate)
	req.Header.Set(shopify.WebhookShopHeader, "eco.myshopify.com")
	req.Header.Set(shopify.WebhookIDHeader, "wh-1")
	return req
}

func TestShopifyWebhook_DispatchesSignedDelivery(t *testing.T) {
	svc := &stubWebhookService{}
	guard := &stubGuard{}
	handler := ShopifyWebhook(svc, config.ShopifyConfig{WebhookSecret: testWebhookSecret}, guard, testWebhookLogger())

	body := []byte(`{"id":1001,"title":"Tote"}`)
	rec := httptest.NewRecorder()
	handler(rec, webhookRequest(t, body, signBody(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.calls != 1 {
		t.Fatalf("expected 1 dispatch, got %d", svc.calls)
	}
	if svc.topics[0] != shopify.TopicProductsUpdate {
		t.Fatalf("unexpected topic %q", svc.topics[0])
	}
}

func TestShopifyWebhook_RejectsBadSignature(t *testing.T) {
	svc := &stubWebhookService{}
	handler := ShopifyWebhook(svc, config.ShopifyConfig{WebhookSecret: testWebhookSecret}, &stubGuard{}, testWebhookLogger())

	body := []byte(`{"id":1001}`)
	rec := httptest.NewRecorder()
	handler(rec, webhookRequest(t, body, "not-a-signature"))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if svc.calls != 0 {
		t.Fatalf("expected no dispatch on bad signature, got %d", svc.calls)
	}
}

func TestShopifyWebhook_AcksDuplicateWithoutDispatch(t *testing.T) {
	svc := &stubWebhookService{}
	guard := &stubGuard{}
	handler := ShopifyWebhook(svc, config.ShopifyConfig{WebhookSecret: testWebhookSecret}, guard, testWebhookLogger())

	body := []byte(`{"id":1001}`)
	sig := signBody(body)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler(rec, webhookRequest(t, body, sig))
		if rec.Code != http.StatusOK {
			t.Fatalf("delivery %d: expected 200, got %d", i, rec.Code)
		}
	}
	if svc.calls != 1 {
		t.Fatalf("expected duplicate to be deduped, got %d dispatches", svc.calls)
	}
}

func TestShopifyWebhook_RetryableFailureReleasesKey(t *testing.T) {
	svc := &stubWebhookService{err: pkgerrors.New(pkgerrors.CodePersistence, "db down")}
	guard := &stubGuard{}
	handler := ShopifyWebhook(svc, config.ShopifyConfig{WebhookSecret: testWebhookSecret}, guard, testWebhookLogger())

	body := []byte(`{"id":1001}`)
	rec := httptest.NewRecorder()
	handler(rec, webhookRequest(t, body, signBody(body)))

	if rec.Code < 500 {
		t.Fatalf("expected 5xx so the platform redelivers, got %d", rec.Code)
	}
	if len(guard.released) != 1 || guard.released[0] != "wh-1" {
		t.Fatalf("expected idempotency key released, got %v", guard.released)
	}
}

func TestShopifyWebhook_AcksUnprocessableDelivery(t *testing.T) {
	svc := &stubWebhookService{err: pkgerrors.New(pkgerrors.CodeIncomplete, "payload missing product id")}
	guard := &stubGuard{}
	handler := ShopifyWebhook(svc, config.ShopifyConfig{WebhookSecret: testWebhookSecret}, guard, testWebhookLogger())

	body := []byte(`{}`)
	rec := httptest.NewRecorder()
	handler(rec, webhookRequest(t, body, signBody(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected unprocessable delivery to be acked, got %d", rec.Code)
	}
	if len(guard.released) != 0 {
		t.Fatalf("expected key kept so redeliveries stay deduped, got %v", guard.released)
	}
}
