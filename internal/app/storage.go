package app

import (
	"context"
	"fmt"

	"github.com/metalagman/triage/internal/config"
	"github.com/metalagman/triage/internal/db"
	"github.com/metalagman/triage/internal/task"
)

// OpenRepository opens the task store selected by cfg. The returned func
// releases it.
func OpenRepository(ctx context.Context, cfg config.StorageConfig) (task.Repository, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := db.OpenPostgres(ctx, cfg.DSN, cfg.ConnectTimeout)
		if err != nil {
			return nil, nil, err
		}
		return task.NewPGStore(pool), pool.Close, nil
	case config.DriverSQLite, "":
		conn, err := db.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return task.NewStore(conn), func() { _ = conn.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
