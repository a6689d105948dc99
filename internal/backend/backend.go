// Package backend opens the dependency store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/raphaelgruber/deptrack/internal/config"
	"github.com/raphaelgruber/deptrack/internal/db"
	"github.com/raphaelgruber/deptrack/internal/sqlite"
	"github.com/raphaelgruber/deptrack/internal/store"
)

// Open connects to the configured store and makes sure its schema exists.
// The caller closes the returned store.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		logger.Info("using in-memory store")
		return store.NewMemory(), nil

	case config.StoreSQLite:
		logger.Info("opening sqlite store", "path", cfg.SQLitePath)
		st, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return st, nil

	case config.StoreSurrealDB:
		client, err := db.NewClient(ctx, db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to surrealdb: %w", err)
		}
		if err := client.InitSchema(ctx); err != nil {
			_ = client.Close(ctx)
			return nil, fmt.Errorf("initialize schema: %w", err)
		}
		return db.NewStore(client), nil

	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
