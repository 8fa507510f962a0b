// Package pirep parses pilot reports (UA and urgent UUA).
package pirep

import (
	"fmt"
	"strings"

	"aviation_briefing/internal/registry"
	"aviation_briefing/internal/report"
	"aviation_briefing/internal/weather"
)

// Result is a decoded pilot report with its hazard intensities.
type Result struct {
	MsgID      int64               `json:"message_id"`
	Timestamp  string              `json:"timestamp,omitempty"`
	Source     string              `json:"source,omitempty"`
	Report     weather.PilotReport `json:"report"`
	Turbulence string              `json:"turbulence_intensity,omitempty"` // SEV, MOD or LGT
	Icing      string              `json:"icing_intensity,omitempty"`
}

func (r *Result) Kind() report.Kind { return report.KindPIREP }
func (r *Result) MessageID() int64  { return r.MsgID }

// Attributes reports the stronger of the turbulence and icing intensities
// as the severity.
func (r *Result) Attributes() registry.Attributes {
	severity := r.Turbulence
	if rank[r.Icing] > rank[severity] {
		severity = r.Icing
	}
	category := "routine"
	if r.Report.Urgent {
		category = "urgent"
	}
	return registry.Attributes{Severity: severity, Category: category}
}

var rank = map[string]int{"LGT": 1, "MOD": 2, "SEV": 3}

// Parser parses pilot reports.
type Parser struct{}

func (p *Parser) Name() string         { return "pirep" }
func (p *Parser) Kinds() []report.Kind { return []report.Kind{report.KindPIREP} }
func (p *Parser) Priority() int        { return 10 }

// QuickCheck looks for the slash groups every PIREP carries.
func (p *Parser) QuickCheck(text string) bool {
	upper := strings.ToUpper(text)
	return strings.Contains(upper, "/OV") || strings.Contains(upper, "/TB") || strings.Contains(upper, "/IC")
}

func (p *Parser) Parse(msg *report.Message) registry.Result {
	r := weather.DecodePIREP(msg.Text)
	if r.Location == "" && r.AltitudeFt == nil && r.Turbulence == "" && r.Icing == "" {
		return nil
	}

	return &Result{
		MsgID:      int64(msg.ID),
		Timestamp:  msg.Timestamp,
		Source:     msg.Source,
		Report:     r,
		Turbulence: weather.Intensity(r.Turbulence),
		Icing:      weather.Intensity(r.Icing),
	}
}

// ParseWithTrace implements registry.Traceable.
func (p *Parser) ParseWithTrace(msg *report.Message) *registry.TraceResult {
	trace := &registry.TraceResult{ParserName: p.Name()}

	if !p.QuickCheck(msg.Text) {
		trace.QuickCheck = &registry.QuickCheck{Passed: false, Reason: "no /OV, /TB or /IC group"}
		return trace
	}
	trace.QuickCheck = &registry.QuickCheck{Passed: true}

	r := weather.DecodePIREP(msg.Text)
	var altitude string
	if r.AltitudeFt != nil {
		altitude = fmt.Sprintf("%dft", *r.AltitudeFt)
	}
	kind := "UA"
	if r.Urgent {
		kind = "UUA"
	}

	for _, e := range []registry.Extractor{
		{Name: "type", Value: kind},
		{Name: "location", Value: r.Location},
		{Name: "time", Value: r.Time},
		{Name: "altitude", Value: altitude},
		{Name: "aircraft", Value: r.AircraftType},
		{Name: "turbulence", Value: r.Turbulence},
		{Name: "icing", Value: r.Icing},
	} {
		e.Matched = e.Value != ""
		trace.Extractors = append(trace.Extractors, e)
	}
	trace.Matched = p.Parse(msg) != nil
	return trace
}
