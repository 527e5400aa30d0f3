package migrate

import (
	"context"
	"fmt"

	"github.com/goldjewelmy/goldstore-backend/pkg/config"
	"github.com/goldjewelmy/goldstore-backend/pkg/db"
	"github.com/goldjewelmy/goldstore-backend/pkg/logger"
)

// MaybeRunDev applies pending migrations at api startup in dev when
// GOLDSTORE_AUTO_MIGRATE is set. SQLite databases are bootstrapped by the
// setup service instead, since the migrations are Postgres SQL.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	if cfg.DB.Driver == config.DriverSQLite {
		logg.Info(ctx, "skipping goose auto-migrate for sqlite")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "running goose migrations (dev auto-run)")
	if err := Run(ctx, sqlDB, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	logg.Info(ctx, "goose migrations completed")
	return nil
}
