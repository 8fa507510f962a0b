package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"aviation_briefing/internal/notam"
)

// PostgresDB holds the current NOTAM set, one row per NOTAM ID and airport.
type PostgresDB struct {
	pool *pgxpool.Pool
}

// OpenPostgres opens a connection pool to PostgreSQL.
func OpenPostgres(ctx context.Context, connStr string) (*PostgresDB, error) {
	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	// Test the connection.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

// Close closes the PostgreSQL connection pool.
func (d *PostgresDB) Close() {
	d.pool.Close()
}

// Pool returns the underlying connection pool.
func (d *PostgresDB) Pool() *pgxpool.Pool {
	return d.pool
}

// CreateSchema creates the PostgreSQL tables.
func (d *PostgresDB) CreateSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS notams (
		id              UUID PRIMARY KEY,
		notam_id        TEXT NOT NULL,
		airport         TEXT NOT NULL DEFAULT '',
		severity        TEXT NOT NULL,
		category        TEXT NOT NULL,
		impact_type     TEXT,
		effective_from  TIMESTAMPTZ,
		effective_until TIMESTAMPTZ,
		is_permanent    BOOLEAN NOT NULL DEFAULT FALSE,
		raw_text        TEXT NOT NULL,
		record          JSONB NOT NULL,
		parsed_at       TIMESTAMPTZ NOT NULL,
		first_seen      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_seen       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		seen_count      INTEGER NOT NULL DEFAULT 1,
		UNIQUE(notam_id, airport)
	);

	CREATE INDEX IF NOT EXISTS idx_notams_airport ON notams(airport);
	CREATE INDEX IF NOT EXISTS idx_notams_severity ON notams(severity);
	CREATE INDEX IF NOT EXISTS idx_notams_until ON notams(effective_until);
	`

	if _, err := d.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func parseTimestamp(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil
	}
	return &t
}

// UpsertNotam stores n, replacing any earlier record with the same NOTAM ID
// and airport. Records without an ID never collide; each gets a unique key.
// It returns the row ID.
func (d *PostgresDB) UpsertNotam(ctx context.Context, n *notam.ParsedNotam) (string, error) {
	record, err := json.Marshal(n)
	if err != nil {
		return "", fmt.Errorf("marshal notam: %w", err)
	}

	id := uuid.New()
	notamID := n.ID()
	if notamID == "" {
		notamID = "anon:" + id.String()
	}

	var rowID string
	err = d.pool.QueryRow(ctx, `
		INSERT INTO notams (id, notam_id, airport, severity, category, impact_type,
			effective_from, effective_until, is_permanent, raw_text, record, parsed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (notam_id, airport) DO UPDATE SET
			severity = EXCLUDED.severity,
			category = EXCLUDED.category,
			impact_type = EXCLUDED.impact_type,
			effective_from = EXCLUDED.effective_from,
			effective_until = EXCLUDED.effective_until,
			is_permanent = EXCLUDED.is_permanent,
			raw_text = EXCLUDED.raw_text,
			record = EXCLUDED.record,
			parsed_at = EXCLUDED.parsed_at,
			last_seen = NOW(),
			seen_count = notams.seen_count + 1
		RETURNING id
	`, id.String(), notamID, strings.ToUpper(n.Airport()), string(n.Severity), string(n.Category), string(n.Impact.Type),
		parseTimestamp(n.TimeInfo.EffectiveFrom), parseTimestamp(n.TimeInfo.EffectiveUntil), n.TimeInfo.IsPermanent,
		n.RawText, record, n.ParsedAt).Scan(&rowID)
	if err != nil {
		return "", fmt.Errorf("upsert notam: %w", err)
	}
	return rowID, nil
}

// NotamFilter selects stored NOTAMs.
type NotamFilter struct {
	Airport  string
	Severity notam.Severity
	ActiveAt time.Time // Exclude NOTAMs that ended before ActiveAt.
	Limit    int       // Default 100.
}

// ListNotams returns matching NOTAMs, most severe first.
func (d *PostgresDB) ListNotams(ctx context.Context, f NotamFilter) ([]notam.ParsedNotam, error) {
	var conditions []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Airport != "" {
		conditions = append(conditions, "airport = "+arg(strings.ToUpper(f.Airport)))
	}
	if f.Severity != "" {
		conditions = append(conditions, "severity = "+arg(string(f.Severity)))
	}
	if !f.ActiveAt.IsZero() {
		conditions = append(conditions, "(effective_until IS NULL OR effective_until >= "+arg(f.ActiveAt)+")")
	}

	query := "SELECT record FROM notams"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	limit := 100
	if f.Limit > 0 {
		limit = f.Limit
	}
	query += ` ORDER BY CASE severity WHEN 'high' THEN 0 WHEN 'medium' THEN 1 WHEN 'low' THEN 2 ELSE 3 END,
		last_seen DESC LIMIT ` + arg(limit)

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notams: %w", err)
	}
	defer rows.Close()

	var out []notam.ParsedNotam
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan notam: %w", err)
		}
		var n notam.ParsedNotam
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("decode notam: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// GetNotam returns the NOTAM stored under notamID and airport.
func (d *PostgresDB) GetNotam(ctx context.Context, notamID, airport string) (*notam.ParsedNotam, error) {
	var raw []byte
	err := d.pool.QueryRow(ctx, `SELECT record FROM notams WHERE notam_id = $1 AND airport = $2`,
		notamID, strings.ToUpper(airport)).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notam: %w", err)
	}

	var n notam.ParsedNotam
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("decode notam: %w", err)
	}
	return &n, nil
}

// DeleteExpired removes NOTAMs whose validity ended before cutoff and
// returns how many were removed.
func (d *PostgresDB) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := d.pool.Exec(ctx, `DELETE FROM notams WHERE effective_until IS NOT NULL AND effective_until < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired: %w", err)
	}
	return tag.RowsAffected(), nil
}
