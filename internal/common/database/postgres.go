// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"leadflow-workers/internal/common/config"
)

// PostgresClient owns the pool shared by the campaign store and the audience source.
type PostgresClient struct {
	DB *sql.DB
}

func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS broadcast_campaigns (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL DEFAULT '',
		industry      TEXT NOT NULL,
		type          TEXT NOT NULL,
		audience      JSONB NOT NULL DEFAULT '{}',
		content       JSONB NOT NULL DEFAULT '{}',
		channels      JSONB NOT NULL DEFAULT '[]',
		scheduled_for TIMESTAMPTZ,
		status        TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		sent_at       TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS broadcast_campaigns_due_idx
		ON broadcast_campaigns (status, scheduled_for)`,
	`CREATE TABLE IF NOT EXISTS leads (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL DEFAULT '',
		email         TEXT NOT NULL DEFAULT '',
		phone         TEXT NOT NULL DEFAULT '',
		industry      TEXT NOT NULL,
		segment       TEXT NOT NULL DEFAULT '',
		score         DOUBLE PRECISION NOT NULL DEFAULT 0,
		last_activity TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS leads_industry_idx ON leads (industry)`,
}

// Migrate creates the campaign and lead tables when they are missing.
func (c *PostgresClient) Migrate(ctx context.Context) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}
