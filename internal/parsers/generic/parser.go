// Package generic is the catch-all parser for reports no typed parser
// understood. It keeps the raw text and attaches a rule-based summary.
package generic

import (
	"strings"

	"aviation_briefing/internal/registry"
	"aviation_briefing/internal/report"
	"aviation_briefing/internal/summary"
)

// Result is an unparsed report.
type Result struct {
	MsgID     int64       `json:"message_id"`
	Timestamp string      `json:"timestamp,omitempty"`
	Source    string      `json:"source,omitempty"`
	Detected  report.Kind `json:"detected_kind,omitempty"`
	Summary   string      `json:"summary"`
	Text      string      `json:"text"`
}

func (r *Result) Kind() report.Kind { return report.KindUnknown }
func (r *Result) MessageID() int64  { return r.MsgID }

func (r *Result) Attributes() registry.Attributes {
	return registry.Attributes{Category: "unparsed"}
}

// Parser captures any non-blank report.
type Parser struct{}

func (p *Parser) Name() string                { return "generic" }
func (p *Parser) Kinds() []report.Kind        { return nil }
func (p *Parser) Priority() int               { return 1000 }
func (p *Parser) QuickCheck(text string) bool { return strings.TrimSpace(text) != "" }

func (p *Parser) Parse(msg *report.Message) registry.Result {
	if !p.QuickCheck(msg.Text) {
		return nil
	}
	kind := msg.ResolvedKind()
	return &Result{
		MsgID:     int64(msg.ID),
		Timestamp: msg.Timestamp,
		Source:    msg.Source,
		Detected:  kind,
		Summary:   summary.Fallback(kind, msg.Text),
		Text:      msg.Text,
	}
}
