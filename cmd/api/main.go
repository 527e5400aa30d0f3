package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/goldjewelmy/goldstore-backend/api/routes"
	"github.com/goldjewelmy/goldstore-backend/internal/cart"
	"github.com/goldjewelmy/goldstore-backend/internal/catalog"
	"github.com/goldjewelmy/goldstore-backend/internal/checkout"
	"github.com/goldjewelmy/goldstore-backend/internal/goldprice"
	"github.com/goldjewelmy/goldstore-backend/internal/orders"
	"github.com/goldjewelmy/goldstore-backend/internal/payments"
	"github.com/goldjewelmy/goldstore-backend/internal/pricing"
	"github.com/goldjewelmy/goldstore-backend/internal/setup"
	chipwebhook "github.com/goldjewelmy/goldstore-backend/internal/webhooks/chip"
	"github.com/goldjewelmy/goldstore-backend/pkg/chip"
	"github.com/goldjewelmy/goldstore-backend/pkg/config"
	"github.com/goldjewelmy/goldstore-backend/pkg/db"
	"github.com/goldjewelmy/goldstore-backend/pkg/db/schema"
	"github.com/goldjewelmy/goldstore-backend/pkg/instance"
	"github.com/goldjewelmy/goldstore-backend/pkg/logger"
	"github.com/goldjewelmy/goldstore-backend/pkg/metrics"
	"github.com/goldjewelmy/goldstore-backend/pkg/migrate"
	"github.com/goldjewelmy/goldstore-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	deps, err := buildDeps(cfg, logg, dbClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"driver":   cfg.DB.Driver,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	closeErr := multierr.Combine(
		server.Shutdown(shutdownCtx),
		redisClient.Close(),
		dbClient.Close(),
	)
	if closeErr != nil {
		logg.Error(ctx, "error during shutdown", closeErr)
		exitCode = 1
	}
	logg.Info(ctx, "api server stopped")
	os.Exit(exitCode)
}

func buildDeps(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (routes.Deps, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	catalogSvc, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		return routes.Deps{}, err
	}

	goldPriceSvc, err := goldprice.NewService(
		goldprice.NewRepository(dbClient.DB()),
		pricing.NewSimulator(nil, pricing.DefaultMaxDeltaPercent),
		logg,
	)
	if err != nil {
		return routes.Deps{}, err
	}

	ordersSvc, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		dbClient,
		orders.NewRandomNumberGenerator(rand.NewSource(time.Now().UnixNano())),
		logg,
	)
	if err != nil {
		return routes.Deps{}, err
	}

	chipClient, err := chip.NewClient(cfg.Chip.SecretKey,
		chip.WithBaseURL(cfg.Chip.BaseURL),
		chip.WithTimeout(cfg.Chip.Timeout),
	)
	if err != nil {
		return routes.Deps{}, err
	}

	paymentsSvc, err := payments.NewService(chipClient, ordersSvc, cfg.Storefront.PublicOrigin, logg)
	if err != nil {
		return routes.Deps{}, err
	}

	checkoutSvc, err := checkout.NewService(ordersSvc, paymentsSvc, logg)
	if err != nil {
		return routes.Deps{}, err
	}

	sessions, err := cart.NewSessionIssuer(cfg.Cart)
	if err != nil {
		return routes.Deps{}, err
	}

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return routes.Deps{}, err
	}
	setupSvc, err := setup.NewService(sqlDB, dbClient.DB(), schema.For(cfg.DB.Driver), logg)
	if err != nil {
		return routes.Deps{}, err
	}

	webhookSvc, err := chipwebhook.NewService(ordersSvc, logg)
	if err != nil {
		return routes.Deps{}, err
	}
	webhookGuard, err := chipwebhook.NewIdempotencyGuard(redisClient, cfg.Chip.WebhookTTL)
	if err != nil {
		return routes.Deps{}, err
	}

	return routes.Deps{
		DB:           dbClient,
		Cache:        redisClient,
		Metrics:      httpMetrics,
		Gatherer:     registry,
		CartSessions: sessions,
		Carts:        cart.NewRedisStore(redisClient, cfg.Cart.StorageTTL, logg),
		Catalog:      catalogSvc,
		GoldPrice:    goldPriceSvc,
		Orders:       ordersSvc,
		Payments:     paymentsSvc,
		Checkout:     checkoutSvc,
		Setup:        setupSvc,
		Webhook:      webhookSvc,
		WebhookGuard: webhookGuard,
	}, nil
}
