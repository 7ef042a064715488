package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/estatehub/estatehub-backend/api/controllers"
	"github.com/estatehub/estatehub-backend/api/routes"
	"github.com/estatehub/estatehub-backend/internal/catalog"
	"github.com/estatehub/estatehub-backend/internal/images"
	"github.com/estatehub/estatehub-backend/internal/properties"
	"github.com/estatehub/estatehub-backend/internal/saved"
	"github.com/estatehub/estatehub-backend/pkg/config"
	"github.com/estatehub/estatehub-backend/pkg/db"
	"github.com/estatehub/estatehub-backend/pkg/logger"
	"github.com/estatehub/estatehub-backend/pkg/maps"
	"github.com/estatehub/estatehub-backend/pkg/metrics"
	"github.com/estatehub/estatehub-backend/pkg/migrate"
	"github.com/estatehub/estatehub-backend/pkg/redis"
	"github.com/estatehub/estatehub-backend/pkg/search"
	"github.com/estatehub/estatehub-backend/pkg/storage/local"
	"github.com/estatehub/estatehub-backend/pkg/storage/provider"
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
		Environment: cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	bootCtx := context.Background()

	dbClient, err := db.New(bootCtx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(bootCtx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(bootCtx, cfg, logg, dbClient); err != nil {
		return err
	}
	if err := migrate.RequireCurrent(bootCtx, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(bootCtx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(bootCtx, "error closing redis", err)
		}
	}()

	store, err := provider.Open(bootCtx, cfg.Storage, logg)
	if err != nil {
		return err
	}

	imageMetrics := metrics.NewImageMetrics(prometheus.DefaultRegisterer)
	resolver := images.NewResolver(images.ResolverConfig{
		PublicBaseURL:    cfg.Images.PublicBaseURL,
		FallbackEndpoint: cfg.Blob.FallbackEndpoint,
		FallbackToken:    cfg.Blob.APIToken,
		FallbackTimeout:  cfg.Blob.Timeout,
		CacheTTL:         cfg.Images.ResolveCacheTTL,
	}, store, redisClient, imageMetrics, logg)

	imageService, err := images.NewService(images.ServiceParams{
		Repo:           images.NewRepository(dbClient.DB()),
		DB:             dbClient,
		Store:          store,
		Resolver:       resolver,
		Metrics:        imageMetrics,
		Logger:         logg,
		MaxUploadBytes: cfg.Images.MaxUploadBytes(),
	})
	if err != nil {
		return err
	}

	propertyParams := properties.ServiceParams{
		Repo:   properties.NewRepository(dbClient.DB()),
		DB:     dbClient,
		Images: imageService,
		Logger: logg,
	}
	pingers := map[string]controllers.Pinger{
		"db":      dbClient,
		"redis":   redisClient,
		"storage": store,
		"search":  nil,
	}
	if cfg.Search.Enabled() {
		searchClient, err := search.New(cfg.Search)
		if err != nil {
			return err
		}
		if err := searchClient.EnsureIndex(bootCtx); err != nil {
			logg.Error(bootCtx, "search.ensure_index_failed", err)
		}
		propertyParams.Search = searchClient
		pingers["search"] = searchClient
	}
	if cfg.GoogleMaps.APIKey != "" {
		mapsClient, err := maps.NewClient(cfg.GoogleMaps.APIKey)
		if err != nil {
			return err
		}
		propertyParams.Geocoder = mapsClient
	}
	propertyService, err := properties.NewService(propertyParams)
	if err != nil {
		return err
	}

	savedService, err := saved.NewService(saved.ServiceParams{
		Repo:   saved.NewRepository(dbClient.DB()),
		Covers: imageService,
	})
	if err != nil {
		return err
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		return err
	}

	deps := routes.Dependencies{
		Pingers:    pingers,
		Limiter:    redisClient,
		Resolver:   resolver,
		Images:     imageService,
		Properties: propertyService,
		Saved:      savedService,
		Catalog:    catalogService,
		Metrics:    promhttp.Handler(),
	}
	if localStore, ok := store.(*local.Store); ok {
		deps.Uploads = http.FileServer(http.Dir(localStore.Root()))
		deps.UploadsPrefix = localStore.PublicPrefix()
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(bootCtx, map[string]any{
		"addr":           addr,
		"storage_driver": cfg.Storage.Driver,
		"search_enabled": cfg.Search.Enabled(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(bootCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-sigCtx.Done():
	}

	logg.Info(ctx, "api server shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(bootCtx, shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
