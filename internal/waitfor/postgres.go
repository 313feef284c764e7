package waitfor

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// probePostgres opens a short-lived pool and pings it. A plain TCP dial is
// not enough for postgres: the port accepts connections while the server is
// still recovering and rejecting queries.
func probePostgres(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("parse postgres dsn: %w", err)
	}
	defer pool.Close()

	return pool.Ping(ctx)
}
