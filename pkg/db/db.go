// Package db wires a tuned pgxpool.Pool from a DSN, the one connection path
// shared by anything in this tree that touches Postgres (pkg/settlementstore).
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pool against dsn with fixed tuning. Callers that can
// recover from a bad DSN (the sequencer daemon's settlement store is
// optional) get an error back instead of a panic.
func Connect(dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	return pgxpool.NewWithConfig(context.Background(), cfg)
}

func MustConnect(dsn string) *pgxpool.Pool {
	pool, err := Connect(dsn)
	if err != nil {
		panic(err)
	}
	return pool
}
