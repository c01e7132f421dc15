// Package database provides PostgreSQL connection management and schema
// bootstrap using pgx.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nycd79/borough-bash/internal/config"
)

// NewPool creates and validates a pgxpool connection pool.
// It retries up to 5 times to accommodate containers starting up.
func NewPool(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	// Sensible pool defaults for a small service.
	poolCfg.MaxConns = 20
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			pingErr := pool.Ping(ctx)
			if pingErr == nil {
				return pool, nil
			}
			pool.Close()
			err = pingErr
		}
		if attempt < 5 {
			time.Sleep(2 * time.Second)
		}
	}
	return nil, fmt.Errorf("connect to postgres: %w", err)
}

// Migrate creates the schema if it does not exist. Safe to run on every
// start. Region seed rows are handled by the capacity repository's
// EnsureRegions, not here.
//
// The capacity table is the ledger the claim/release primitives run against;
// the CHECK constraints back up the invariants the conditional updates
// maintain (count never negative, never above max). The unique index on
// lower(email) makes one-registration-per-person a storage-level guarantee
// rather than an application-level check.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS capacity (
			region          TEXT PRIMARY KEY,
			confirmed_count INT NOT NULL DEFAULT 0,
			max_capacity    INT NOT NULL,
			CONSTRAINT capacity_count_floor CHECK (confirmed_count >= 0),
			CONSTRAINT capacity_count_bound CHECK (confirmed_count <= max_capacity),
			CONSTRAINT capacity_max_floor   CHECK (max_capacity >= 0)
		)`,
		`CREATE TABLE IF NOT EXISTS registrations (
			id         UUID PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name  TEXT NOT NULL,
			title      TEXT NOT NULL,
			program    TEXT NOT NULL,
			email      TEXT NOT NULL,
			region     TEXT NOT NULL REFERENCES capacity(region),
			status     TEXT NOT NULL CHECK (status IN ('confirmed', 'waiting_list')),
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS registrations_email_unique
			ON registrations (lower(email))`,
		`CREATE INDEX IF NOT EXISTS registrations_region_status
			ON registrations (region, status)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
