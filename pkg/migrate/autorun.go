package migrate

import (
	"context"
	"fmt"

	"github.com/estatehub/estatehub-backend/pkg/config"
	"github.com/estatehub/estatehub-backend/pkg/db"
	"github.com/estatehub/estatehub-backend/pkg/logger"
)

// MaybeRunDev applies migrations on boot when running in dev with the auto-migrate flag on.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.SQLDB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	latest, err := LatestVersion()
	if err != nil {
		return err
	}
	ctx = logg.WithField(ctx, "target_version", latest)
	logg.Info(ctx, "migrate.dev_autorun.start")

	if err := Run(ctx, sqlDB, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "migrate.dev_autorun.complete")
	return nil
}

// RequireCurrent is the boot guard shared by the api and cron-worker binaries.
func RequireCurrent(ctx context.Context, client *db.Client) error {
	sqlDB, err := client.SQLDB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	return EnsureCurrent(ctx, sqlDB)
}
