package feed

import (
	"context"
	"errors"
	"fmt"

	"aviation_briefing/internal/parsers/notam"
	"aviation_briefing/internal/storage"
)

// LocalSink archives every processed report in SQLite.
type LocalSink struct {
	Store *storage.LocalStore
}

func (s LocalSink) Name() string { return "sqlite" }

func (s LocalSink) Write(ctx context.Context, batch []Processed) error {
	records := make([]storage.Record, len(batch))
	for i, p := range batch {
		records[i] = p.Record
	}
	return s.Store.InsertBatch(ctx, records)
}

// NotamSink keeps the current NOTAM set in PostgreSQL. Other kinds are
// ignored.
type NotamSink struct {
	DB *storage.PostgresDB
}

func (s NotamSink) Name() string { return "postgres" }

func (s NotamSink) Write(ctx context.Context, batch []Processed) error {
	var errs []error
	for _, p := range batch {
		res, ok := p.Result.(*notam.Result)
		if !ok {
			continue
		}
		if _, err := s.DB.UpsertNotam(ctx, &res.ParsedNotam); err != nil {
			errs = append(errs, fmt.Errorf("record %s: %w", p.Record.ID, err))
		}
	}
	return errors.Join(errs...)
}

// EventSink writes one analytics row per report to ClickHouse.
type EventSink struct {
	DB *storage.ClickHouseDB
}

func (s EventSink) Name() string { return "clickhouse" }

func (s EventSink) Write(ctx context.Context, batch []Processed) error {
	events := make([]storage.ParseEvent, len(batch))
	for i, p := range batch {
		events[i] = p.Record.Event()
	}
	return s.DB.InsertEvents(ctx, events)
}
