// Package provider opens the storage backend selected by configuration.
package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/estatehub/estatehub-backend/pkg/config"
	"github.com/estatehub/estatehub-backend/pkg/logger"
	"github.com/estatehub/estatehub-backend/pkg/storage"
	"github.com/estatehub/estatehub-backend/pkg/storage/local"
	"github.com/estatehub/estatehub-backend/pkg/storage/objectstore"
)

func Open(ctx context.Context, cfg config.StorageConfig, logg *logger.Logger) (storage.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case config.StorageDriverMinio:
		return objectstore.New(ctx, cfg, logg)
	case config.StorageDriverLocal, "":
		return local.New(cfg.LocalDir, cfg.LocalPublicPrefix)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
