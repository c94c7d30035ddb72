package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/insurance-quote-service/internal/platform/config"
	"github.com/jsamuelsen/insurance-quote-service/internal/platform/database"
)

// Open resolves cfg, connects, and returns a migrated Store together with
// the final database target. Close the store when done.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Store, database.Target, error) {
	target, err := database.Resolve(cfg)
	if err != nil {
		return nil, target, fmt.Errorf("resolving database url: %w", err)
	}

	db, target, err := database.Open(ctx, target, cfg, logger)
	if err != nil {
		return nil, target, err
	}

	store := New(db, target.Dialect, WithLogger(logger))

	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, target, err
	}

	return store, target, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
