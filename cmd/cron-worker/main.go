package main

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/goldjewelmy/goldstore-backend/internal/cron"
	"github.com/goldjewelmy/goldstore-backend/internal/goldprice"
	"github.com/goldjewelmy/goldstore-backend/internal/orders"
	"github.com/goldjewelmy/goldstore-backend/internal/pricing"
	"github.com/goldjewelmy/goldstore-backend/pkg/chip"
	"github.com/goldjewelmy/goldstore-backend/pkg/config"
	"github.com/goldjewelmy/goldstore-backend/pkg/db"
	"github.com/goldjewelmy/goldstore-backend/pkg/instance"
	"github.com/goldjewelmy/goldstore-backend/pkg/logger"
	"github.com/goldjewelmy/goldstore-backend/pkg/metrics"
	"github.com/goldjewelmy/goldstore-backend/pkg/migrate"
	"github.com/goldjewelmy/goldstore-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	service, err := buildService(cfg, logg, dbClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"interval": service.Interval().String(),
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting cron worker")

	exitCode := 0
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		exitCode = 1
	}

	if err := multierr.Combine(redisClient.Close(), dbClient.Close()); err != nil {
		logg.Error(ctx, "error closing connections", err)
		exitCode = 1
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
	os.Exit(exitCode)
}

func buildService(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (*cron.Service, error) {
	ordersSvc, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		dbClient,
		orders.NewRandomNumberGenerator(rand.NewSource(time.Now().UnixNano())),
		logg,
	)
	if err != nil {
		return nil, err
	}

	registry := cron.NewRegistry()

	if cfg.Cron.PriceSampler {
		goldPriceSvc, err := goldprice.NewService(
			goldprice.NewRepository(dbClient.DB()),
			pricing.NewSimulator(nil, pricing.DefaultMaxDeltaPercent),
			logg,
		)
		if err != nil {
			return nil, err
		}
		job, err := cron.NewGoldPriceJob(logg, goldPriceSvc)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(job); err != nil {
			return nil, err
		}
	}

	if cfg.Cron.PaymentReconcile {
		chipClient, err := chip.NewClient(cfg.Chip.SecretKey,
			chip.WithBaseURL(cfg.Chip.BaseURL),
			chip.WithTimeout(cfg.Chip.Timeout),
		)
		if err != nil {
			return nil, err
		}
		job, err := cron.NewPaymentReconcileJob(cron.PaymentReconcileJobParams{
			Logger:  logg,
			Orders:  ordersSvc,
			Gateway: chipClient,
			After:   cfg.Cron.ReconcileAfter,
			Window:  cfg.Cron.ReconcileWindow,
			Limit:   cfg.Cron.ReconcileLimit,
		})
		if err != nil {
			return nil, err
		}
		if err := registry.Register(job); err != nil {
			return nil, err
		}
	}

	// the lock outlives one interval so a slow cycle is never overlapped
	lock, err := cron.NewRedisLock(redisClient, cron.LockName, 2*cfg.Cron.Interval)
	if err != nil {
		return nil, err
	}

	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
}
