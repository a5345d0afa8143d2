package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// EnsureSchema bootstraps the two tables this service owns. Projects are
// keyed (owner_id, project_id); the nested photo map lives in a JSONB
// column so a photo reference is one upsert, not a row per shot.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			email          TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL UNIQUE,
			name           TEXT NOT NULL,
			password_hash  TEXT NOT NULL,
			company        TEXT,
			phone          TEXT,
			created_at     TIMESTAMPTZ NOT NULL,
			updated_at     TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS projects (
			owner_id      TEXT NOT NULL,
			project_id    TEXT NOT NULL,
			project_name  TEXT NOT NULL,
			location      TEXT NOT NULL,
			area          TEXT NOT NULL DEFAULT '',
			rooms         TEXT NOT NULL DEFAULT '',
			bathrooms     TEXT NOT NULL DEFAULT '',
			status        TEXT NOT NULL DEFAULT 'planning',
			photos        JSONB NOT NULL DEFAULT '{}'::jsonb,
			styling       JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at    TIMESTAMPTZ NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (owner_id, project_id)
		);

		CREATE INDEX IF NOT EXISTS idx_projects_owner_created
			ON projects (owner_id, created_at DESC);
	`)
	return err
}
