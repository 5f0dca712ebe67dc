package db

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
)

// DefaultConnectTimeout bounds how long OpenPostgres waits for the server.
const DefaultConnectTimeout = 10 * time.Second

// OpenPostgres creates a connection pool, waits for the server to accept
// connections and applies migrations.
func OpenPostgres(ctx context.Context, dsn string, connectTimeout time.Duration) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	ping := func() (struct{}, error) {
		return struct{}{}, pool.Ping(ctx)
	}
	_, err = backoff.Retry(ctx, ping,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(connectTimeout),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn().Err(err).Dur("retry_in", next).Msg("postgres not ready")
		}),
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer func() { _ = sqlDB.Close() }()
	if err := migrate(sqlDB, "postgres", "migrations/postgres"); err != nil {
		pool.Close()
		return nil, err
	}
	log.Debug().Msg("postgres storage ready")
	return pool, nil
}
