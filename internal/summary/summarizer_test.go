package summary

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aviation_briefing/internal/notam"
	"aviation_briefing/internal/observability"
	"aviation_briefing/internal/report"
)

// --- fake backend ---

type call struct {
	prompt         string
	maxLen, minLen int
}

type fakeBackend struct {
	mu    sync.Mutex
	out   string
	err   error
	delay time.Duration
	calls []call
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Complete(ctx context.Context, prompt string, maxLen, minLen int) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{prompt, maxLen, minLen})
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.out, f.err
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, c.Write(&out))
	return out.GetCounter().GetValue()
}

const tafText = "TAF KORD 151720Z 1518/1624 27012KT P6SM SCT050 TEMPO 1520/1522 -RA BKN030"

// --- Summarize ---

func TestSummarize_NoBackendUsesFallback(t *testing.T) {
	s := New()

	assert.False(t, s.HasBackend())
	assert.Equal(t, Fallback(report.KindTAF, tafText), s.Summarize(context.Background(), Request{Kind: report.KindTAF, Text: tafText}))
}

func TestSummarize_BackendPrefixes(t *testing.T) {
	tests := []struct {
		kind report.Kind
		want string
	}{
		{report.KindMETAR, "all good"},
		{report.KindTAF, "TAF Summary: all good"},
		{report.KindPIREP, "PIREP: all good"},
		{report.KindSIGMET, "⚠️ SIGMET: all good"},
		{report.KindAIRMET, "📋 AIRMET: all good"},
		{report.KindNOTAM, "all good"},
		{report.KindUnknown, "all good"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.kind.String(), func(t *testing.T) {
			s := New(WithBackend(&fakeBackend{out: "  all good\n"}))
			assert.Equal(t, tt.want, s.Summarize(context.Background(), Request{Kind: tt.kind, Text: "x"}))
		})
	}
}

func TestSummarize_PromptAndLengths(t *testing.T) {
	fb := &fakeBackend{out: "ok"}
	s := New(WithBackend(fb))

	s.Summarize(context.Background(), Request{Kind: report.KindPIREP, Text: "UA /OV ORD"})
	s.Summarize(context.Background(), Request{Kind: report.KindTAF, Text: tafText, MaxLength: 90, MinLength: 10})

	require.Len(t, fb.calls, 2)
	assert.Equal(t, "Summarize this pilot report focusing on flight hazards, turbulence, icing, and visibility: UA /OV ORD", fb.calls[0].prompt)
	assert.Equal(t, 150, fb.calls[0].maxLen)
	assert.Equal(t, 50, fb.calls[0].minLen)
	assert.Equal(t, 90, fb.calls[1].maxLen)
	assert.Equal(t, 10, fb.calls[1].minLen)
}

func TestSummarize_BackendFailures(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
		timeout time.Duration
		outcome string
	}{
		{"error", &fakeBackend{err: errors.New("boom")}, time.Second, "error"},
		{"empty", &fakeBackend{out: "   "}, time.Second, "empty"},
		{"timeout", &fakeBackend{out: "late", delay: 2 * time.Second}, 20 * time.Millisecond, "timeout"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			m := observability.NewMetricsForTesting()
			s := New(WithBackend(tt.backend), WithTimeout(tt.timeout), WithMetrics(m))

			got := s.Summarize(context.Background(), Request{Kind: report.KindTAF, Text: tafText})

			assert.Equal(t, Fallback(report.KindTAF, tafText), got)
			assert.Equal(t, 1.0, counterValue(t, m.BackendRequests.WithLabelValues(tt.outcome)))
			assert.Equal(t, 0.0, counterValue(t, m.BackendRequests.WithLabelValues("success")))
		})
	}
}

func TestSummarize_Notam(t *testing.T) {
	fb := &fakeBackend{err: errors.New("down")}
	s := New(WithBackend(fb))
	n := testNotam(notam.SeverityHigh)

	got := s.Summarize(context.Background(), Request{Kind: report.KindNOTAM, Notam: n})

	assert.Equal(t, "NOTAM: Runway closure, [HIGH IMPACT]", got)
	require.Len(t, fb.calls, 1)
	assert.Equal(t, FormatNotam(n), fb.calls[0].prompt)
}

func TestSummarize_Lists(t *testing.T) {
	fb := &fakeBackend{out: "ok"}
	s := New(WithBackend(fb))
	ctx := context.Background()

	got := s.Summarize(ctx, Request{Kind: report.KindSIGMET, Texts: []string{"a", "b"}})
	assert.Contains(t, got, "2 Active SIGMETs")
	assert.Equal(t, "No pilot reports available", s.Summarize(ctx, Request{Kind: report.KindPIREP, Texts: []string{}}))
	assert.Empty(t, fb.calls)

	// A single advisory is summarised like a lone report.
	assert.Equal(t, "📋 AIRMET: ok", s.Summarize(ctx, Request{Kind: report.KindAIRMET, Texts: []string{"AIRMET ZULU"}}))
	assert.Len(t, fb.calls, 1)
}
