package main

import (
	"context"
	"net/http"
	"os"

	"github.com/ecotrackhq/ecotrack-backend/api/routes"
	"github.com/ecotrackhq/ecotrack-backend/internal/importer"
	order "github.com/ecotrackhq/ecotrack-backend/internal/orders"
	product "github.com/ecotrackhq/ecotrack-backend/internal/products"
	"github.com/ecotrackhq/ecotrack-backend/internal/reconcile"
	report "github.com/ecotrackhq/ecotrack-backend/internal/reports"
	store "github.com/ecotrackhq/ecotrack-backend/internal/stores"
	"github.com/ecotrackhq/ecotrack-backend/internal/tracking"
	shopifywebhook "github.com/ecotrackhq/ecotrack-backend/internal/webhooks/shopify"
	"github.com/ecotrackhq/ecotrack-backend/pkg/config"
	"github.com/ecotrackhq/ecotrack-backend/pkg/db"
	"github.com/ecotrackhq/ecotrack-backend/pkg/logger"
	"github.com/ecotrackhq/ecotrack-backend/pkg/metrics"
	"github.com/ecotrackhq/ecotrack-backend/pkg/migrate"
	"github.com/ecotrackhq/ecotrack-backend/pkg/redis"
	"github.com/ecotrackhq/ecotrack-backend/pkg/shopify"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	shopifyClient, err := shopify.NewClient(cfg.Shopify)
	if err != nil {
		logg.Error(context.Background(), "failed to create shopify client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	sink := metrics.NewSustainabilitySink(registry)

	storeRepo := store.NewRepository(dbClient.DB())
	productRepo := product.NewRepository(dbClient.DB())
	historyRepo := tracking.NewRepository(dbClient.DB())
	orderRepo := order.NewRepository(dbClient.DB())

	aggregator, err := store.NewAggregator(storeRepo, productRepo, sink, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create aggregator", err)
		os.Exit(1)
	}
	recorder, err := tracking.NewRecorder(historyRepo, sink, aggregator, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create metrics recorder", err)
		os.Exit(1)
	}
	storeService, err := store.NewService(storeRepo, shopifyClient, cfg.Geo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create store service", err)
		os.Exit(1)
	}
	productService, err := product.NewService(productRepo, recorder, aggregator, shopifyClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}
	orderService, err := order.NewService(orderRepo, shopifyClient, storeRepo, aggregator, cfg.Sync, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}
	importService, err := importer.NewImporter(productService, cfg.Sync, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create importer", err)
		os.Exit(1)
	}
	reconcileEngine, err := reconcile.NewEngine(productRepo, shopifyClient, recorder, aggregator, cfg.Sync, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create reconcile engine", err)
		os.Exit(1)
	}
	reportService, err := report.NewService(productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create report service", err)
		os.Exit(1)
	}
	webhookService, err := shopifywebhook.NewService(shopifywebhook.ServiceParams{
		Stores:   storeService,
		Products: productService,
		Orders:   orderService,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}
	webhookGuard, err := shopifywebhook.NewIdempotencyGuard(redisClient, shopifywebhook.DefaultIdempotencyTTL, "webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			storeService,
			productService,
			orderService,
			importService,
			reconcileEngine,
			reportService,
			webhookService,
			webhookGuard,
			registry,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
