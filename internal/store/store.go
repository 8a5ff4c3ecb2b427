package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rickgao/hitstreak/internal/config"
	"github.com/rickgao/hitstreak/internal/database"
	"github.com/rickgao/hitstreak/internal/model"
)

// ErrNotFound is returned when no snapshot has been stored yet.
var ErrNotFound = errors.New("snapshot not found")

// SnapshotStore saves and loads snapshots.
type SnapshotStore interface {
	// Save persists a snapshot. Saving the same snapshot ID twice is a no-op.
	Save(ctx context.Context, snap model.Snapshot) error

	// Latest returns the most recently fetched snapshot, or ErrNotFound.
	Latest(ctx context.Context) (model.Snapshot, error)

	// List returns up to limit snapshot headers, newest first.
	List(ctx context.Context, limit int) ([]model.SnapshotInfo, error)

	Close() error
}

// Open creates the store selected by cfg.Driver.
// It returns a nil store for the "none" driver.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (SnapshotStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Driver {
	case config.DriverNone, "":
		return nil, nil

	case config.DriverSQLite:
		s, err := OpenSQLite(ctx, cfg.SQLitePath, cfg.Keep)
		if err != nil {
			return nil, err
		}
		logger.Info("sqlite snapshot store opened", "path", cfg.SQLitePath, "keep", cfg.Keep)
		return s, nil

	case config.DriverPostgres:
		pool, err := database.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s := NewPostgres(pool)
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("postgres snapshot store opened",
			"host", cfg.Postgres.Host,
			"database", cfg.Postgres.Name,
		)
		return s, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
