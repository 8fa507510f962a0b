package registry

import "aviation_briefing/internal/report"

// TraceResult contains trace information from a parser's attempt to parse a message.
type TraceResult struct {
	ParserName string        `json:"parser"`
	QuickCheck *QuickCheck   `json:"quick_check,omitempty"`
	Formats    []FormatTrace `json:"formats,omitempty"`    // Pattern match attempts.
	Extractors []Extractor   `json:"extractors,omitempty"` // Post-processing extractor results.
	Matched    bool          `json:"matched"`
}

// QuickCheck contains the result of a parser's quick check.
type QuickCheck struct {
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"`
}

// FormatTrace contains debug information about a format/pattern match attempt.
type FormatTrace struct {
	Name     string            `json:"name"`
	Matched  bool              `json:"matched"`
	Pattern  string            `json:"pattern"`
	Captures map[string]string `json:"captures,omitempty"`
}

// Extractor contains debug information about a field extractor.
type Extractor struct {
	Name    string `json:"name"` // e.g. "notam_id", "station"
	Matched bool   `json:"matched"`
	Value   string `json:"value,omitempty"`
}

// Traceable is implemented by parsers that support debug tracing.
type Traceable interface {
	ParseWithTrace(msg *report.Message) *TraceResult
}

// Trace runs every traceable parser that would see msg and returns their
// traces in dispatch order.
func (r *Registry) Trace(msg *report.Message) []*TraceResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var traces []*TraceResult
	for _, p := range append(r.candidates(msg), r.catchAll...) {
		if t, ok := p.(Traceable); ok {
			traces = append(traces, t.ParseWithTrace(msg))
		}
	}
	return traces
}
