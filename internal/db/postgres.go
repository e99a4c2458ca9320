package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/config"
)

// Postgres wraps a pgx connection pool.
type Postgres struct {
	Pool *pgxpool.Pool
}

// New creates and verifies a pgx pool connection.
func New(ctx context.Context, cfg config.Config) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolCfg.MaxConns = 4
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return &Postgres{Pool: pool}, nil
}

func (p *Postgres) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
}

// Health checks the database connectivity.
func (p *Postgres) Health(ctx context.Context) error {
	return p.Pool.Ping(ctx)
}

// Migrate creates the catalog tables when they are missing.
func (p *Postgres) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := p.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS catalogs (
		name        text PRIMARY KEY,
		saved_at    timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS catalog_entities (
		catalog     text NOT NULL REFERENCES catalogs(name) ON DELETE CASCADE,
		kind        text NOT NULL,
		id          integer NOT NULL,
		name        text NOT NULL,
		payload     jsonb NOT NULL,
		PRIMARY KEY (catalog, kind, id)
	)`,
	`CREATE TABLE IF NOT EXISTS catalog_changes (
		id          bigserial PRIMARY KEY,
		catalog     text NOT NULL,
		item_id     integer NOT NULL,
		field       text NOT NULL,
		before      text NOT NULL,
		after       text NOT NULL,
		committed_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS catalog_changes_catalog_idx ON catalog_changes (catalog, committed_at DESC)`,
	`CREATE TABLE IF NOT EXISTS editor_preferences (
		catalog     text PRIMARY KEY,
		line_ending text NOT NULL DEFAULT 'lf',
		last_import text NOT NULL DEFAULT '',
		last_export text NOT NULL DEFAULT '',
		rule_dir    text NOT NULL DEFAULT '',
		updated_at  timestamptz NOT NULL DEFAULT now()
	)`,
}
