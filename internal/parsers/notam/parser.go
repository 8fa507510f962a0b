// Package notam adapts the NOTAM extractor to the parser registry.
package notam

import (
	"strings"

	"aviation_briefing/internal/notam"
	"aviation_briefing/internal/patterns"
	"aviation_briefing/internal/registry"
	"aviation_briefing/internal/report"
)

// Result is one extracted NOTAM. Degraded records are still results; their
// Error field says why extraction failed.
type Result struct {
	MsgID     int64  `json:"message_id"`
	Timestamp string `json:"timestamp,omitempty"`
	Source    string `json:"source,omitempty"`
	notam.ParsedNotam
}

func (r *Result) Kind() report.Kind { return report.KindNOTAM }
func (r *Result) MessageID() int64  { return r.MsgID }

func (r *Result) Attributes() registry.Attributes {
	return registry.Attributes{
		Airport:  r.Airport(),
		Severity: string(r.Severity),
		Category: string(r.Category),
		Degraded: r.Degraded(),
	}
}

// Parser extracts NOTAMs.
type Parser struct {
	extractor *notam.Extractor
}

// New returns a Parser backed by extractor.
func New(extractor *notam.Extractor) *Parser {
	return &Parser{extractor: extractor}
}

func (p *Parser) Name() string         { return "notam" }
func (p *Parser) Kinds() []report.Kind { return []report.Kind{report.KindNOTAM} }
func (p *Parser) Priority() int        { return 10 }

// QuickCheck accepts any non-blank text.
func (p *Parser) QuickCheck(text string) bool { return strings.TrimSpace(text) != "" }

func (p *Parser) Parse(msg *report.Message) registry.Result {
	return &Result{
		MsgID:       int64(msg.ID),
		Timestamp:   msg.Timestamp,
		Source:      msg.Source,
		ParsedNotam: p.extractor.Extract(msg.Text, msg.Airport),
	}
}

// ParseWithTrace implements registry.Traceable. Formats lists every location
// and altitude format tried, prefixed with its compiler name.
func (p *Parser) ParseWithTrace(msg *report.Message) *registry.TraceResult {
	trace := &registry.TraceResult{ParserName: p.Name()}

	if !p.QuickCheck(msg.Text) {
		trace.QuickCheck = &registry.QuickCheck{Passed: false, Reason: "empty text"}
		return trace
	}
	trace.QuickCheck = &registry.QuickCheck{Passed: true}

	tables := p.extractor.Tables()
	for _, c := range []struct {
		name     string
		compiler *patterns.Compiler
	}{
		{"coordinates", tables.Coordinates},
		{"radius", tables.Radius},
		{"altitudes", tables.Altitudes},
	} {
		for _, ft := range c.compiler.ParseWithTrace(msg.Text).Formats {
			trace.Formats = append(trace.Formats, registry.FormatTrace{
				Name:     c.name + "/" + ft.Name,
				Matched:  ft.Matched,
				Pattern:  ft.Pattern,
				Captures: ft.Captures,
			})
		}
	}

	n := p.extractor.Extract(msg.Text, msg.Airport)
	for _, e := range []registry.Extractor{
		{Name: "notam_id", Value: n.ID()},
		{Name: "airport", Value: n.Airport()},
		{Name: "severity", Value: string(n.Severity)},
		{Name: "category", Value: string(n.Category)},
		{Name: "impact", Value: string(n.Impact.Type)},
	} {
		e.Matched = e.Value != ""
		trace.Extractors = append(trace.Extractors, e)
	}
	trace.Matched = !n.Degraded()
	return trace
}
