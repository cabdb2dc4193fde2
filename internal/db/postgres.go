// Package db provides database connection helpers and the schema
// migration for the jobs store.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgresPool creates and verifies a pgxpool connection pool.
func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return pool, nil
}

// Migrate creates the job_status enum and jobs table when absent.
// Owner accounts live in the external auth service; jobs reference them
// by opaque user_id only.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
DO $$ BEGIN
	CREATE TYPE job_status AS ENUM
		('interesting', 'applied', 'interview', 'offer', 'rejected');
EXCEPTION WHEN duplicate_object THEN NULL;
END $$;

CREATE TABLE IF NOT EXISTS jobs (
	id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	user_id          TEXT NOT NULL,
	company          TEXT NOT NULL,
	position         TEXT NOT NULL,
	location         TEXT,
	salary           TEXT,
	description      TEXT,
	application_date TEXT,
	contact_person   TEXT,
	contact_email    TEXT,
	notes            TEXT,
	current_status   job_status NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_jobs_user ON jobs(user_id);
`)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
