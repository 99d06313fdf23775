package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnectPostgres opens a pgx pool and confirms the database answers.
// The caller owns the pool and releases it with Close.
func ConnectPostgres(ctx context.Context, url string) (*pgxpool.Pool, error) {
	// validate the DSN before burning retry attempts on it
	if _, err := pgxpool.ParseConfig(url); err != nil {
		return nil, fmt.Errorf("postgres config: %w", err)
	}
	var pool *pgxpool.Pool
	err := dialWithRetry(ctx, "postgres", func() error {
		p, err := pgxpool.New(ctx, url)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	})
	return pool, err
}
