// Package storage opens the relationship store selected by configuration.
package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/driftapp/drift/backend/internal/config"
	"github.com/driftapp/drift/backend/internal/domain/store"
	"github.com/driftapp/drift/backend/internal/repo/memory"
	pgrepo "github.com/driftapp/drift/backend/internal/repo/postgres"
)

type Backend struct {
	Driver string
	Store  store.Store
	Outbox store.Outbox
	pool   *pgxpool.Pool
}

func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (*Backend, error) {
	if log == nil {
		log = zap.NewNop()
	}

	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		log.Warn("using in-memory relationship store, state is lost on restart")
		st := memory.NewStore()
		return &Backend{Driver: cfg.Storage.Driver, Store: st, Outbox: st}, nil

	case config.StorageDriverPostgres:
		pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		if cfg.Postgres.AutoMigrate {
			if err := pgrepo.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrate postgres: %w", err)
			}
		}
		st := pgrepo.NewStore(pool)
		return &Backend{Driver: cfg.Storage.Driver, Store: st, Outbox: st, pool: pool}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// InProcess reports whether the store lives inside this process, in which
// case no other process can relay its outbox.
func (b *Backend) InProcess() bool {
	return b.Driver == config.StorageDriverMemory
}

func (b *Backend) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
}
