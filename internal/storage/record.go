package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"aviation_briefing/internal/registry"
	"aviation_briefing/internal/report"
)

// Record is one processed report as archived locally.
type Record struct {
	ID         string      `json:"id"`
	MessageID  int64       `json:"message_id"`
	Kind       report.Kind `json:"kind"`
	Airport    string      `json:"airport,omitempty"`
	Severity   string      `json:"severity,omitempty"`
	Category   string      `json:"category,omitempty"`
	Degraded   bool        `json:"degraded"`
	Source     string      `json:"source,omitempty"`
	RawText    string      `json:"raw_text"`
	ParsedJSON string      `json:"parsed_json"`
	CreatedAt  time.Time   `json:"created_at"`
}

// NewRecord builds a Record for a parse result with a fresh ID.
func NewRecord(msg *report.Message, res registry.Result, now time.Time) (Record, error) {
	parsed, err := json.Marshal(res)
	if err != nil {
		return Record{}, fmt.Errorf("marshal parsed data: %w", err)
	}
	attrs := registry.AttributesOf(res)
	airport := attrs.Airport
	if airport == "" {
		airport = strings.ToUpper(msg.Airport)
	}

	return Record{
		ID:         uuid.NewString(),
		MessageID:  res.MessageID(),
		Kind:       res.Kind(),
		Airport:    airport,
		Severity:   attrs.Severity,
		Category:   attrs.Category,
		Degraded:   attrs.Degraded,
		Source:     msg.Source,
		RawText:    msg.Text,
		ParsedJSON: string(parsed),
		CreatedAt:  now.UTC(),
	}, nil
}

// ParseEvent is one row of ClickHouse parse analytics.
type ParseEvent struct {
	ID        uuid.UUID
	MessageID int64
	Timestamp time.Time
	Kind      string
	Severity  string
	Category  string
	Airport   string
	Source    string
	Degraded  bool
}

// Event derives the analytics row for r.
func (r Record) Event() ParseEvent {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		id = uuid.New()
	}
	return ParseEvent{
		ID:        id,
		MessageID: r.MessageID,
		Timestamp: r.CreatedAt,
		Kind:      r.Kind.String(),
		Severity:  r.Severity,
		Category:  r.Category,
		Airport:   r.Airport,
		Source:    r.Source,
		Degraded:  r.Degraded,
	}
}
