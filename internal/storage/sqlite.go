package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"aviation_briefing/internal/report"
)

// LocalStore is the SQLite archive of processed reports.
type LocalStore struct {
	db *sql.DB
}

// OpenLocal opens or creates a SQLite archive at path.
func OpenLocal(path string) (*LocalStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := createLocalSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &LocalStore{db: db}, nil
}

// Close closes the database connection.
func (s *LocalStore) Close() error {
	return s.db.Close()
}

func createLocalSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		message_id INTEGER NOT NULL DEFAULT 0,
		kind TEXT NOT NULL,
		airport TEXT,
		severity TEXT,
		category TEXT,
		degraded INTEGER NOT NULL DEFAULT 0,
		source TEXT,
		raw_text TEXT NOT NULL,
		parsed_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_kind ON reports(kind);
	CREATE INDEX IF NOT EXISTS idx_reports_airport ON reports(airport);
	CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at);

	-- FTS5 virtual table for full-text search on raw report text.
	CREATE VIRTUAL TABLE IF NOT EXISTS reports_fts USING fts5(
		raw_text,
		content='reports'
	);

	CREATE TRIGGER IF NOT EXISTS reports_ai AFTER INSERT ON reports BEGIN
		INSERT INTO reports_fts(rowid, raw_text) VALUES (new.rowid, new.raw_text);
	END;

	CREATE TRIGGER IF NOT EXISTS reports_ad AFTER DELETE ON reports BEGIN
		INSERT INTO reports_fts(reports_fts, rowid, raw_text) VALUES('delete', old.rowid, old.raw_text);
	END;
	`

	_, err := db.Exec(schema)
	return err
}

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000Z"

const insertReport = `
	INSERT INTO reports (id, message_id, kind, airport, severity, category, degraded, source, raw_text, parsed_json, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func insertArgs(r Record) []any {
	return []any{r.ID, r.MessageID, string(r.Kind), r.Airport, r.Severity, r.Category,
		boolInt(r.Degraded), r.Source, r.RawText, r.ParsedJSON, r.CreatedAt.UTC().Format(timeLayout)}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Insert stores one record.
func (s *LocalStore) Insert(ctx context.Context, r Record) error {
	if _, err := s.db.ExecContext(ctx, insertReport, insertArgs(r)...); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// InsertBatch stores records in a single transaction.
func (s *LocalStore) InsertBatch(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertReport)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, insertArgs(r)...); err != nil {
			return fmt.Errorf("insert report %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// QueryParams filters archived records.
type QueryParams struct {
	Kind     report.Kind // Exact match.
	Airport  string      // Exact match, case-insensitive.
	Severity string      // Exact match.
	FullText string      // FTS5 search on raw_text.
	Since    time.Time   // Only records created at or after Since.
	Limit    int         // Max results (default 100).
	Offset   int         // Pagination offset.
}

const selectColumns = `r.id, r.message_id, r.kind, r.airport, r.severity, r.category, r.degraded, r.source, r.raw_text, r.parsed_json, r.created_at`

// Query returns matching records, newest first.
func (s *LocalStore) Query(ctx context.Context, p QueryParams) ([]Record, error) {
	var conditions []string
	var args []any

	query := "SELECT " + selectColumns + " FROM reports r"
	if p.FullText != "" {
		query += " JOIN reports_fts ON r.rowid = reports_fts.rowid"
		conditions = append(conditions, "reports_fts MATCH ?")
		args = append(args, p.FullText)
	}
	if p.Kind != report.KindUnknown {
		conditions = append(conditions, "r.kind = ?")
		args = append(args, string(p.Kind))
	}
	if p.Airport != "" {
		conditions = append(conditions, "r.airport = ?")
		args = append(args, strings.ToUpper(p.Airport))
	}
	if p.Severity != "" {
		conditions = append(conditions, "r.severity = ?")
		args = append(args, p.Severity)
	}
	if !p.Since.IsZero() {
		conditions = append(conditions, "r.created_at >= ?")
		args = append(args, p.Since.UTC().Format(timeLayout))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	limit := 100
	if p.Limit > 0 {
		limit = p.Limit
	}
	query += fmt.Sprintf(" ORDER BY r.created_at DESC, r.rowid DESC LIMIT %d OFFSET %d", limit, p.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var r Record
	var kind, created string
	var airport, severity, category, source sql.NullString
	var degraded int

	err := row.Scan(&r.ID, &r.MessageID, &kind, &airport, &severity, &category, &degraded,
		&source, &r.RawText, &r.ParsedJSON, &created)
	if err != nil {
		return Record{}, err
	}

	r.Kind = report.Kind(kind)
	r.Airport = airport.String
	r.Severity = severity.String
	r.Category = category.String
	r.Source = source.String
	r.Degraded = degraded == 1
	r.CreatedAt, _ = time.Parse(timeLayout, created)
	return r, nil
}

// Get returns the record with the given ID.
func (s *LocalStore) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM reports r WHERE r.id = ?", id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	return &r, nil
}

// Stats summarises the archive.
type Stats struct {
	Total      int            `json:"total"`
	Degraded   int            `json:"degraded"`
	ByKind     map[string]int `json:"by_kind"`
	BySeverity map[string]int `json:"by_severity"`
}

// Stats returns aggregate counts over the archive.
func (s *LocalStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByKind:     make(map[string]int),
		BySeverity: make(map[string]int),
	}

	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*), COALESCE(SUM(degraded), 0) FROM reports").
		Scan(&stats.Total, &stats.Degraded)
	if err != nil {
		return nil, fmt.Errorf("count reports: %w", err)
	}

	if err := s.countBy(ctx, "kind", stats.ByKind); err != nil {
		return nil, err
	}
	if err := s.countBy(ctx, "severity", stats.BySeverity); err != nil {
		return nil, err
	}
	return stats, nil
}

// countBy fills counts with row counts grouped by column. column is one of
// a fixed set of names, never user input.
func (s *LocalStore) countBy(ctx context.Context, column string, counts map[string]int) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT %s, COUNT(*) FROM reports WHERE %s IS NOT NULL AND %s != '' GROUP BY %s", column, column, column, column))
	if err != nil {
		return fmt.Errorf("count by %s: %w", column, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("scan %s count: %w", column, err)
		}
		counts[key] = n
	}
	return rows.Err()
}
