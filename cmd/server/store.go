package main

import (
	"context"
	"fmt"
	"log/slog"

	"expenses/internal/docstore"
	docbolt "expenses/internal/docstore/bolt"
	"expenses/internal/docstore/memory"
	docpostgres "expenses/internal/docstore/postgres"
	docredis "expenses/internal/docstore/redis"
	"expenses/internal/platform/config"
	"expenses/internal/platform/postgres"
	"expenses/internal/platform/redis"
)

// openContainer builds the configured document container. The returned close
// func releases the backend connection.
func openContainer(ctx context.Context, cfg config.Config, log *slog.Logger) (docstore.Container, func() error, error) {
	name := cfg.Store.Container
	switch cfg.Store.Backend {
	case config.BackendMemory:
		log.Warn("using in-memory document store; data is lost on restart")
		return memory.New(), func() error { return nil }, nil

	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		c := docpostgres.New(db, name)
		if err := c.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return c, db.Close, nil

	case config.BackendRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return docredis.New(client.Client, name), client.Close, nil

	case config.BackendBolt:
		c, err := docbolt.Open(cfg.Store.BoltPath, name)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
