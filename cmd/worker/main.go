package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	webhookconsumer "github.com/ecotrackhq/ecotrack-backend/internal/consumers/webhooks"
	order "github.com/ecotrackhq/ecotrack-backend/internal/orders"
	product "github.com/ecotrackhq/ecotrack-backend/internal/products"
	store "github.com/ecotrackhq/ecotrack-backend/internal/stores"
	"github.com/ecotrackhq/ecotrack-backend/internal/tracking"
	shopifywebhook "github.com/ecotrackhq/ecotrack-backend/internal/webhooks/shopify"
	"github.com/ecotrackhq/ecotrack-backend/pkg/config"
	"github.com/ecotrackhq/ecotrack-backend/pkg/db"
	"github.com/ecotrackhq/ecotrack-backend/pkg/instance"
	"github.com/ecotrackhq/ecotrack-backend/pkg/logger"
	"github.com/ecotrackhq/ecotrack-backend/pkg/metrics"
	"github.com/ecotrackhq/ecotrack-backend/pkg/pubsub"
	"github.com/ecotrackhq/ecotrack-backend/pkg/redis"
	"github.com/ecotrackhq/ecotrack-backend/pkg/shopify"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

// The worker drains Shopify webhook deliveries routed through Google Pub/Sub
// and feeds them to the same dispatch service the HTTP endpoint uses.
func main() {
	logg := logger.New(logger.Options{ServiceName: "worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "error closing pubsub", err)
		}
	}()

	shopifyClient, err := shopify.NewClient(cfg.Shopify)
	if err != nil {
		logg.Error(ctx, "failed to create shopify client", err)
		os.Exit(1)
	}

	sink := metrics.NewSustainabilitySink(prometheus.NewRegistry())

	storeRepo := store.NewRepository(dbClient.DB())
	productRepo := product.NewRepository(dbClient.DB())
	historyRepo := tracking.NewRepository(dbClient.DB())
	orderRepo := order.NewRepository(dbClient.DB())

	aggregator, err := store.NewAggregator(storeRepo, productRepo, sink, logg)
	if err != nil {
		logg.Error(ctx, "failed to create aggregator", err)
		os.Exit(1)
	}
	recorder, err := tracking.NewRecorder(historyRepo, sink, aggregator, logg)
	if err != nil {
		logg.Error(ctx, "failed to create metrics recorder", err)
		os.Exit(1)
	}
	storeService, err := store.NewService(storeRepo, shopifyClient, cfg.Geo, logg)
	if err != nil {
		logg.Error(ctx, "failed to create store service", err)
		os.Exit(1)
	}
	productService, err := product.NewService(productRepo, recorder, aggregator, shopifyClient)
	if err != nil {
		logg.Error(ctx, "failed to create product service", err)
		os.Exit(1)
	}
	orderService, err := order.NewService(orderRepo, shopifyClient, storeRepo, aggregator, cfg.Sync, logg)
	if err != nil {
		logg.Error(ctx, "failed to create order service", err)
		os.Exit(1)
	}
	webhookService, err := shopifywebhook.NewService(shopifywebhook.ServiceParams{
		Stores:   storeService,
		Products: productService,
		Orders:   orderService,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create webhook service", err)
		os.Exit(1)
	}
	webhookGuard, err := shopifywebhook.NewIdempotencyGuard(redisClient, shopifywebhook.DefaultIdempotencyTTL, "webhook")
	if err != nil {
		logg.Error(ctx, "failed to create webhook guard", err)
		os.Exit(1)
	}

	consumer, err := webhookconsumer.NewConsumer(pubsubClient.WebhookSubscription(), webhookService, webhookGuard, logg)
	if err != nil {
		logg.Error(ctx, "failed to create webhook consumer", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"instance":     instance.GetID(),
		"subscription": cfg.PubSub.WebhookSubscription,
	})
	logg.Info(ctx, "starting webhook consumer")

	if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
		logg.Error(ctx, "webhook consumer stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "worker shutting down gracefully")
}
