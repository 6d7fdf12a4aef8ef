package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiwari-pos/cafeteria/internal/enum"
)

// Options carries the connection settings for every driver; only the fields
// the chosen driver needs are read.
type Options struct {
	DataDir     string
	RedisURL    string
	DatabaseURL string
}

// Open builds the configured backend. The returned close func releases any
// connection pool and is never nil.
func Open(ctx context.Context, driver string, opts Options) (Storage, func(), error) {
	noop := func() {}

	switch driver {
	case enum.StorageDriverMemory:
		return NewMemory(), noop, nil

	case enum.StorageDriverFile:
		f, err := NewFile(opts.DataDir)
		if err != nil {
			return nil, noop, err
		}
		return f, noop, nil

	case enum.StorageDriverRedis:
		rdb, err := DialRedis(ctx, opts.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		return NewRedis(rdb, "cafeteria:"), func() { rdb.Close() }, nil

	case enum.StorageDriverPostgres:
		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("ping postgres: %w", err)
		}
		pg := NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return pg, pool.Close, nil
	}

	return nil, noop, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}
