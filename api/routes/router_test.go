package routes

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ecotrackhq/ecotrack-backend/pkg/config"
	"github.com/ecotrackhq/ecotrack-backend/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: &bytes.Buffer{}})
	return NewRouter(cfg, logg, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, prometheus.NewRegistry())
}

func TestHealthLiveRoute(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-EcoTrack-Env") != "test" {
		t.Fatalf("expected env header, got %q", rec.Header().Get("X-EcoTrack-Env"))
	}
}

func TestMetricsRoute(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestEmbeddedRoutesRequireSessionToken(t *testing.T) {
	router := testRouter(t)

	for _, path := range []string{"/api/v1/products", "/api/v1/sync/status", "/api/v1/report"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s, got %d", path, rec.Code)
		}
	}
}
