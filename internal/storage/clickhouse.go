package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Addr     string // host:port
	Database string
	User     string
	Password string
}

// ClickHouseDB records one analytics row per parsed report.
type ClickHouseDB struct {
	conn driver.Conn
}

// Conn returns the underlying ClickHouse connection for direct queries.
func (d *ClickHouseDB) Conn() driver.Conn {
	return d.conn
}

// OpenClickHouse opens a connection to ClickHouse.
func OpenClickHouse(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	// Test the connection.
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Close closes the ClickHouse connection.
func (d *ClickHouseDB) Close() error {
	return d.conn.Close()
}

// CreateSchema creates the ClickHouse tables.
func (d *ClickHouseDB) CreateSchema(ctx context.Context) error {
	err := d.conn.Exec(ctx, `CREATE TABLE IF NOT EXISTS parse_events (
			id              UUID,
			message_id      Int64,
			timestamp       DateTime64(3),
			kind            LowCardinality(String),
			severity        LowCardinality(String),
			category        LowCardinality(String),
			airport         LowCardinality(String),
			source          LowCardinality(String),
			degraded        UInt8,
			created_at      DateTime64(3) DEFAULT now64(3)
		)
		ENGINE = MergeTree()
		PARTITION BY toYYYYMM(timestamp)
		ORDER BY (kind, timestamp, id)
		SETTINGS index_granularity = 8192`)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// InsertEvents stores events in one batch.
func (d *ClickHouseDB) InsertEvents(ctx context.Context, events []ParseEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := d.conn.PrepareBatch(ctx, `
		INSERT INTO parse_events (id, message_id, timestamp, kind, severity, category, airport, source, degraded)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, e := range events {
		var degraded uint8
		if e.Degraded {
			degraded = 1
		}
		err := batch.Append(e.ID, e.MessageID, e.Timestamp, e.Kind, e.Severity, e.Category, e.Airport, e.Source, degraded)
		if err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// countBy returns event counts grouped by column since the given time.
// column is one of a fixed set of names, never user input.
func (d *ClickHouseDB) countBy(ctx context.Context, column string, since time.Time) (map[string]uint64, error) {
	counts := make(map[string]uint64)
	rows, err := d.conn.Query(ctx,
		fmt.Sprintf("SELECT %s, count() FROM parse_events WHERE timestamp >= ? GROUP BY %s", column, column), since)
	if err != nil {
		return nil, fmt.Errorf("count by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count uint64
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("scan count by %s: %w", column, err)
		}
		counts[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate count by %s: %w", column, err)
	}
	return counts, nil
}

// SeverityCounts returns event counts per severity since the given time.
func (d *ClickHouseDB) SeverityCounts(ctx context.Context, since time.Time) (map[string]uint64, error) {
	return d.countBy(ctx, "severity", since)
}

// KindCounts returns event counts per report kind since the given time.
func (d *ClickHouseDB) KindCounts(ctx context.Context, since time.Time) (map[string]uint64, error) {
	return d.countBy(ctx, "kind", since)
}

// DegradedCount returns how many degraded records were seen since the
// given time.
func (d *ClickHouseDB) DegradedCount(ctx context.Context, since time.Time) (uint64, error) {
	var count uint64
	row := d.conn.QueryRow(ctx, "SELECT count() FROM parse_events WHERE degraded = 1 AND timestamp >= ?", since)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count degraded: %w", err)
	}
	return count, nil
}
