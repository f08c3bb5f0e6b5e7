package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/feedmill-backend/pkg/config"
	"github.com/angelmondragon/feedmill-backend/pkg/db"
	"github.com/angelmondragon/feedmill-backend/pkg/logger"
)

// MaybeRunDev migrates at process start. The sqlite mode always applies its
// embedded schema; postgres only migrates in dev with FEEDMILL_AUTO_MIGRATE set.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	sqliteMode := cfg.DB.Driver == config.DBDriverSQLite
	if !sqliteMode && !(cfg.App.IsDev() && cfg.FeatureFlags.AutoMigrate) {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	m, err := For(cfg.DB.Driver, sqlDB, DefaultDir, logg)
	if err != nil {
		return err
	}

	ctx = logg.WithFields(ctx, map[string]any{"driver": cfg.DB.Driver, "env": cfg.App.Env})
	pending, err := m.Pending(ctx)
	if err != nil {
		return fmt.Errorf("check pending migrations: %w", err)
	}
	if !pending {
		logg.Debug(ctx, "schema up to date")
		return nil
	}
	logg.Info(ctx, "applying pending migrations")
	return m.Up(ctx)
}
