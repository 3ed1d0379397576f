package store

import (
	"context"
	"strings"

	"github.com/twiced-technology-gmbh/lumina/internal/clierr"
	"github.com/twiced-technology-gmbh/lumina/internal/config"
)

// Open returns the backend selected by cfg.Store.Driver.
func Open(ctx context.Context, cfg *config.Config, opts ...FileOption) (Store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		return NewMemoryStore(), nil
	case config.StoreDriverPostgres:
		url := cfg.DatabaseURL()
		if strings.TrimSpace(url) == "" {
			return nil, clierr.Newf(clierr.StoreUnavailable,
				"store.driver is postgres but no database URL is set (store.database_url or %s)",
				config.DatabaseURLEnv)
		}
		s, err := NewPostgresStore(ctx, url)
		if err != nil {
			return nil, clierr.New(clierr.StoreUnavailable, err.Error())
		}
		return s, nil
	default:
		return NewFileStore(cfg.TasksPath(), cfg.LockPath(), opts...), nil
	}
}

// Mode names the backend for health output.
func Mode(s Store) string {
	switch s.(type) {
	case *MemoryStore:
		return config.StoreDriverMemory
	case *PostgresStore:
		return config.StoreDriverPostgres
	case *FileStore:
		return config.StoreDriverFile
	default:
		return "unknown"
	}
}
