package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/trailteams-backend/pkg/config"
	"github.com/angelmondragon/trailteams-backend/pkg/db"
	"github.com/angelmondragon/trailteams-backend/pkg/logger"
)

// MaybeRunDev applies the schema on startup when running in dev mode with the
// auto-migrate flag on. SQLite databases are synced from the models.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dialect": client.Dialect()})

	if client.Dialect() == config.DriverSQLite {
		logg.Info(ctx, "syncing sqlite schema from models (dev auto-run)")
		return SyncModels(client.DB())
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	runner, err := NewRunner(sqlDB, EmbeddedDir, client.Dialect(), logg)
	if err != nil {
		return err
	}
	logg.Info(ctx, "running goose migrations (dev auto-run)")
	if err := runner.Run(ctx, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
