package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"stocksim/internal/config"
)

// Open returns the store selected by cfg.Driver. Postgres schemas are
// migrated before the store is returned.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Driver {
	case config.DriverMemory, "":
		logger.Info("using in-memory store")
		return NewMemoryStore(), nil
	case config.DriverPostgres:
		db, err := NewDatabase(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		applied, err := db.Migrate(ctx)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("connected to postgres",
			zap.String("host", cfg.Postgres.Host),
			zap.String("database", cfg.Postgres.Name),
			zap.Strings("migrations", applied),
		)
		return db, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}
