package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestClickHouse(t *testing.T) *ClickHouseDB {
	t.Helper()

	addr := os.Getenv("TEST_CLICKHOUSE_ADDR")
	if addr == "" {
		t.Skip("TEST_CLICKHOUSE_ADDR not set")
	}

	ctx := context.Background()
	ch, err := OpenClickHouse(ctx, ClickHouseConfig{Addr: addr, Database: "default", User: "default"})
	if err != nil {
		t.Skipf("No ClickHouse connection available: %v", err)
	}
	t.Cleanup(func() { _ = ch.Close() })

	require.NoError(t, ch.CreateSchema(ctx))
	require.NoError(t, ch.Conn().Exec(ctx, "TRUNCATE TABLE parse_events"))
	return ch
}

func TestClickHouseEvents(t *testing.T) {
	ch := setupTestClickHouse(t)
	ctx := context.Background()
	now := time.Now().UTC()

	events := []ParseEvent{
		{ID: uuid.New(), MessageID: 1, Timestamp: now, Kind: "notam", Severity: "high", Category: "runway", Airport: "KORD"},
		{ID: uuid.New(), MessageID: 2, Timestamp: now, Kind: "notam", Severity: "high", Category: "approach", Airport: "KJFK"},
		{ID: uuid.New(), MessageID: 3, Timestamp: now, Kind: "notam", Severity: "unknown", Category: "unknown", Degraded: true},
		{ID: uuid.New(), MessageID: 4, Timestamp: now, Kind: "metar", Severity: "Clear", Category: "VFR", Airport: "KORD"},
	}
	require.NoError(t, ch.InsertEvents(ctx, events))

	since := now.Add(-time.Minute)
	severities, err := ch.SeverityCounts(ctx, since)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), severities["high"])

	kinds, err := ch.KindCounts(ctx, since)
	require.NoError(t, err)
	assert.Equal(t, map[string]uint64{"notam": 3, "metar": 1}, kinds)

	degraded, err := ch.DegradedCount(ctx, since)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), degraded)
}
