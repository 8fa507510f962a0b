package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"aviation_briefing/internal/notam"
	"aviation_briefing/internal/observability"
	"aviation_briefing/internal/report"
)

// DefaultTimeout bounds a single backend call.
const DefaultTimeout = 30 * time.Second

// ErrNoBackend is returned by backends that are not configured.
var ErrNoBackend = errors.New("no summarizer backend configured")

// Backend is a generative text summarizer. Complete returns the generated
// text for prompt; maxLen and minLen are hints in tokens.
type Backend interface {
	Name() string
	Complete(ctx context.Context, prompt string, maxLen, minLen int) (string, error)
}

// Request asks for a summary of one report, or of a list of reports of the
// same kind when Texts is set. A NOTAM may be passed as an extracted record
// instead of text.
type Request struct {
	Kind      report.Kind        `json:"type"`
	Text      string             `json:"text,omitempty"`
	Texts     []string           `json:"texts,omitempty"`
	Notam     *notam.ParsedNotam `json:"notam,omitempty"`
	MaxLength int                `json:"max_length,omitempty"`
	MinLength int                `json:"min_length,omitempty"`
}

// Summarizer summarises reports with an optional backend, falling back to
// the rule-based summaries on any backend failure.
type Summarizer struct {
	backend Backend
	timeout time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithBackend sets the generative backend. A nil backend disables it.
func WithBackend(b Backend) Option { return func(s *Summarizer) { s.backend = b } }

// WithTimeout sets the per-call backend timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Summarizer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock sets the clock used for briefing timestamps and call timing.
func WithClock(c clockwork.Clock) Option { return func(s *Summarizer) { s.clock = c } }

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option { return func(s *Summarizer) { s.metrics = m } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(s *Summarizer) { s.logger = l } }

// New creates a Summarizer. Without WithBackend it only produces rule-based
// summaries.
func New(opts ...Option) *Summarizer {
	s := &Summarizer{
		timeout: DefaultTimeout,
		clock:   clockwork.NewRealClock(),
		logger:  observability.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HasBackend reports whether a generative backend is configured.
func (s *Summarizer) HasBackend() bool {
	return s.backend != nil
}

type kindPrompt struct {
	template  string // %s is the report text
	prefix    string // prepended to a backend answer
	maxLength int
}

var prompts = map[report.Kind]kindPrompt{
	report.KindMETAR: {
		template: "Provide a comprehensive pilot briefing for this METAR in 7-8 lines covering:\n" +
			"1. Flight category (VFR/MVFR/IFR/LIFR)\n" +
			"2. Current visibility and ceiling conditions\n" +
			"3. Wind direction, speed, and gusts (crosswind concerns)\n" +
			"4. Weather phenomena and precipitation\n" +
			"5. Temperature and altimeter setting\n" +
			"6. Flight safety considerations\n" +
			"7. Operational recommendations\n" +
			"METAR: %s",
		maxLength: 400,
	},
	report.KindTAF: {
		template:  "Summarize this TAF forecast for flight planning, highlighting changing conditions, trends, and timing: %s",
		prefix:    "TAF Summary: ",
		maxLength: 250,
	},
	report.KindPIREP: {
		template:  "Summarize this pilot report focusing on flight hazards, turbulence, icing, and visibility: %s",
		prefix:    "PIREP: ",
		maxLength: 150,
	},
	report.KindSIGMET: {
		template:  "Summarize this SIGMET focusing on flight hazards, affected areas, and validity times: %s",
		prefix:    "⚠️ SIGMET: ",
		maxLength: 200,
	},
	report.KindAIRMET: {
		template:  "Summarize this AIRMET focusing on weather conditions and flight impacts: %s",
		prefix:    "📋 AIRMET: ",
		maxLength: 200,
	},
	report.KindNOTAM: {
		template:  "%s",
		maxLength: 200,
	},
}

const (
	defaultMaxLength = 300
	defaultMinLength = 50
)

// Summarize returns a summary for req. With a backend configured it asks
// the backend first; an error, a timeout or an empty answer falls through
// to Fallback. Summarize always returns a non-empty string.
func (s *Summarizer) Summarize(ctx context.Context, req Request) string {
	text := req.Text
	switch {
	case req.Notam != nil:
		text = FormatNotam(req.Notam)
	case req.Texts != nil:
		// Lists other than a single SIGMET or AIRMET are summarised locally.
		single := len(req.Texts) == 1 && (req.Kind == report.KindSIGMET || req.Kind == report.KindAIRMET)
		if !single {
			return FallbackMany(req.Kind, req.Texts)
		}
		text = req.Texts[0]
	}

	p, ok := prompts[req.Kind]
	if !ok {
		p = kindPrompt{template: "%s", maxLength: defaultMaxLength}
	}
	maxLen := req.MaxLength
	if maxLen <= 0 {
		maxLen = p.maxLength
	}
	minLen := req.MinLength
	if minLen <= 0 {
		minLen = defaultMinLength
	}

	if out, ok := s.complete(ctx, fmt.Sprintf(p.template, text), maxLen, minLen); ok {
		return p.prefix + out
	}
	return Fallback(req.Kind, text)
}

// complete calls the backend under the configured timeout. ok is false when
// there is no backend or it produced nothing usable.
func (s *Summarizer) complete(ctx context.Context, prompt string, maxLen, minLen int) (string, bool) {
	if s.backend == nil {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := s.clock.Now()
	out, err := s.backend.Complete(ctx, prompt, maxLen, minLen)
	elapsed := s.clock.Since(start)
	out = strings.TrimSpace(out)

	outcome := "success"
	switch {
	case err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded):
		outcome = "timeout"
	case err != nil:
		outcome = "error"
	case out == "":
		outcome = "empty"
	}

	if s.metrics != nil {
		s.metrics.BackendRequests.WithLabelValues(outcome).Inc()
		s.metrics.BackendDuration.Observe(elapsed.Seconds())
	}

	if outcome != "success" {
		s.logger.Warn("summarizer backend failed, using rule-based summary",
			"backend", s.backend.Name(),
			"outcome", outcome,
			"error", err,
			"duration", elapsed,
		)
		return "", false
	}
	return out, true
}
