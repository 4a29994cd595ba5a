package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ecotrackhq/ecotrack-backend/api/controllers"
	webhookcontrollers "github.com/ecotrackhq/ecotrack-backend/api/controllers/webhooks"
	"github.com/ecotrackhq/ecotrack-backend/api/middleware"
	"github.com/ecotrackhq/ecotrack-backend/internal/importer"
	order "github.com/ecotrackhq/ecotrack-backend/internal/orders"
	product "github.com/ecotrackhq/ecotrack-backend/internal/products"
	reconcilesvc "github.com/ecotrackhq/ecotrack-backend/internal/reconcile"
	report "github.com/ecotrackhq/ecotrack-backend/internal/reports"
	store "github.com/ecotrackhq/ecotrack-backend/internal/stores"
	shopifywebhook "github.com/ecotrackhq/ecotrack-backend/internal/webhooks/shopify"
	"github.com/ecotrackhq/ecotrack-backend/pkg/config"
	"github.com/ecotrackhq/ecotrack-backend/pkg/db"
	"github.com/ecotrackhq/ecotrack-backend/pkg/logger"
	"github.com/ecotrackhq/ecotrack-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	storeService store.Service,
	productService product.Service,
	orderService order.Service,
	importService *importer.Importer,
	reconcileEngine *reconcilesvc.Engine,
	reportService *report.Service,
	webhookService *shopifywebhook.Service,
	webhookGuard *shopifywebhook.IdempotencyGuard,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, controllers.ReadyDeps(dbP, redisClient, nil)))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/shopify", webhookcontrollers.ShopifyWebhook(webhookService, cfg.Shopify, webhookGuard, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SessionAuth(cfg.Shopify, storeService, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(productService, logg))
			r.Post("/import", controllers.ProductImport(importService, logg))
			r.Get("/{externalId}", controllers.ProductDetail(productService, logg))
			r.Put("/{externalId}/metrics", controllers.ProductUpdateMetrics(productService, logg))
		})

		r.Route("/sync", func(r chi.Router) {
			r.Post("/", controllers.SyncRun(reconcileEngine, logg))
			r.Get("/status", controllers.SyncRun(reconcileEngine, logg))
		})

		r.Post("/orders/refresh", controllers.OrdersRefresh(orderService, logg))
		r.Get("/report", controllers.Report(reportService, logg))
	})

	return r
}
