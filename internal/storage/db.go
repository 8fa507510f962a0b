// Package storage persists processed reports: a local SQLite archive,
// a PostgreSQL NOTAM store and ClickHouse parse analytics.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Config holds connection settings for every backend. Empty settings leave
// that backend closed.
type Config struct {
	SQLitePath  string
	PostgresURL string
	ClickHouse  ClickHouseConfig
}

// DB wraps whichever backends are configured. Unconfigured fields are nil.
type DB struct {
	Local *LocalStore   // SQLite archive of processed reports.
	PG    *PostgresDB   // PostgreSQL for the current NOTAM set.
	CH    *ClickHouseDB // ClickHouse for parse analytics.
}

// Open opens the configured backends. On error every backend opened so far
// is closed again.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	db := &DB{}

	if cfg.SQLitePath != "" {
		local, err := OpenLocal(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		db.Local = local
	}

	if cfg.PostgresURL != "" {
		pg, err := OpenPostgres(ctx, cfg.PostgresURL)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("postgres: %w", err)
		}
		db.PG = pg
	}

	if cfg.ClickHouse.Addr != "" {
		ch, err := OpenClickHouse(ctx, cfg.ClickHouse)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("clickhouse: %w", err)
		}
		db.CH = ch
	}

	return db, nil
}

// Close closes every open backend and returns the first error.
func (d *DB) Close() error {
	var errs []error
	if d.Local != nil {
		if err := d.Local.Close(); err != nil {
			errs = append(errs, fmt.Errorf("sqlite: %w", err))
		}
	}
	if d.CH != nil {
		if err := d.CH.Close(); err != nil {
			errs = append(errs, fmt.Errorf("clickhouse: %w", err))
		}
	}
	if d.PG != nil {
		d.PG.Close()
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// CreateSchemas creates the server-side schemas. The SQLite schema is
// created on open.
func (d *DB) CreateSchemas(ctx context.Context) error {
	if d.PG != nil {
		if err := d.PG.CreateSchema(ctx); err != nil {
			return fmt.Errorf("postgres schema: %w", err)
		}
	}
	if d.CH != nil {
		if err := d.CH.CreateSchema(ctx); err != nil {
			return fmt.Errorf("clickhouse schema: %w", err)
		}
	}
	return nil
}
