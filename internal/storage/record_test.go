package storage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aviation_briefing/internal/registry"
	"aviation_briefing/internal/report"
)

type fakeResult struct {
	ID    int64  `json:"message_id"`
	Value string `json:"value"`
	attrs registry.Attributes
}

func (r *fakeResult) Kind() report.Kind               { return report.KindNOTAM }
func (r *fakeResult) MessageID() int64                { return r.ID }
func (r *fakeResult) Attributes() registry.Attributes { return r.attrs }

func TestNewRecord(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 30, 0, 0, time.FixedZone("CST", -6*3600))
	msg := &report.Message{ID: 9, Text: "RWY 04 CLSD", Source: "faa", Airport: "kmdw"}
	res := &fakeResult{ID: 9, Value: "x", attrs: registry.Attributes{Severity: "high", Category: "runway", Degraded: true}}

	rec, err := NewRecord(msg, res, now)
	require.NoError(t, err)

	_, err = uuid.Parse(rec.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(9), rec.MessageID)
	assert.Equal(t, report.KindNOTAM, rec.Kind)
	assert.Equal(t, "KMDW", rec.Airport, "falls back to the message hint")
	assert.Equal(t, "high", rec.Severity)
	assert.True(t, rec.Degraded)
	assert.Equal(t, time.UTC, rec.CreatedAt.Location())

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(rec.ParsedJSON), &parsed))
	assert.Equal(t, "x", parsed["value"])

	event := rec.Event()
	assert.Equal(t, rec.ID, event.ID.String())
	assert.Equal(t, "notam", event.Kind)
	assert.Equal(t, "runway", event.Category)
	assert.True(t, event.Degraded)
}
