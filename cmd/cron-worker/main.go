package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/estatehub/estatehub-backend/internal/cron"
	"github.com/estatehub/estatehub-backend/internal/images"
	"github.com/estatehub/estatehub-backend/internal/properties"
	"github.com/estatehub/estatehub-backend/pkg/config"
	"github.com/estatehub/estatehub-backend/pkg/db"
	"github.com/estatehub/estatehub-backend/pkg/instance"
	"github.com/estatehub/estatehub-backend/pkg/logger"
	"github.com/estatehub/estatehub-backend/pkg/metrics"
	"github.com/estatehub/estatehub-backend/pkg/migrate"
	"github.com/estatehub/estatehub-backend/pkg/redis"
	"github.com/estatehub/estatehub-backend/pkg/search"
	"github.com/estatehub/estatehub-backend/pkg/storage/provider"
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

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Environment: cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
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

	if err := migrate.RequireCurrent(context.Background(), dbClient); err != nil {
		logg.Error(context.Background(), "database schema is not current", err)
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

	store, err := provider.Open(context.Background(), cfg.Storage, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to open image storage", err)
		os.Exit(1)
	}

	reconcileJob, err := cron.NewImageReconcileJob(cron.ImageReconcileJobParams{
		Logger:  logg,
		Store:   store,
		Images:  images.NewRepository(dbClient.DB()),
		Metrics: metrics.NewImageMetrics(prometheus.DefaultRegisterer),
		Grace:   cfg.Cron.ReconcileGrace,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create image reconcile job", err)
		os.Exit(1)
	}
	registry := cron.NewRegistry(reconcileJob)

	if cfg.Search.Enabled() {
		searchClient, err := search.New(cfg.Search)
		if err != nil {
			logg.Error(context.Background(), "failed to create search client", err)
			os.Exit(1)
		}
		reindexJob, err := cron.NewPropertyReindexJob(cron.PropertyReindexJobParams{
			Logger:     logg,
			Properties: properties.NewRepository(dbClient.DB()),
			Index:      searchClient,
			BatchSize:  cfg.Cron.ReindexBatch,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create property reindex job", err)
			os.Exit(1)
		}
		registry.Register(reindexJob)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron-worker"), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
		Schedule: cfg.Cron.Schedule,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.ID(),
		"jobs":        registry.Names(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
