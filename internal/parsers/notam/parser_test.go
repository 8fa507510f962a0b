package notam

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aviation_briefing/internal/notam"
	"aviation_briefing/internal/patterns"
	"aviation_briefing/internal/report"
)

const runwayClosure = "A1234/21 NOTAMN Q)KORD/.../4155N08748W005 A)KORD B)2110011200 C)2110012359 E)RWY 10L/28R CLSD"

func newParser() *Parser {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC))
	return New(notam.NewExtractor(patterns.NewTables(), clock))
}

func TestParse(t *testing.T) {
	p := newParser()
	res := p.Parse(&report.Message{ID: 11, Kind: report.KindNOTAM, Text: runwayClosure, Source: "faa"})

	result, ok := res.(*Result)
	require.True(t, ok, "expected *Result, got %T", res)
	assert.Equal(t, report.KindNOTAM, result.Kind())
	assert.Equal(t, int64(11), result.MessageID())
	assert.Equal(t, "faa", result.Source)
	assert.Equal(t, "A1234/21", result.ID())
	assert.Equal(t, "KORD", result.Airport())
	assert.Equal(t, notam.SeverityHigh, result.Severity)
	assert.Equal(t, notam.CategoryRunway, result.Category)
}

func TestParseUsesAirportHint(t *testing.T) {
	p := newParser()
	result := p.Parse(&report.Message{Text: "TWY B CLSD", Airport: "KJFK"}).(*Result)

	assert.Equal(t, "KJFK", result.Airport())
	assert.False(t, result.Degraded())
}

func TestQuickCheck(t *testing.T) {
	p := newParser()
	assert.True(t, p.QuickCheck("RWY 04 CLSD"))
	assert.False(t, p.QuickCheck(" \n\t"))
}

func TestParseWithTrace(t *testing.T) {
	p := newParser()
	trace := p.ParseWithTrace(&report.Message{Text: runwayClosure})

	require.True(t, trace.QuickCheck.Passed)
	assert.True(t, trace.Matched)

	matched := map[string]bool{}
	for _, f := range trace.Formats {
		if f.Matched {
			matched[f.Name] = true
		}
	}
	assert.True(t, matched["radius/qline"], "q-line radius should match")

	values := map[string]string{}
	for _, e := range trace.Extractors {
		values[e.Name] = e.Value
	}
	assert.Equal(t, "A1234/21", values["notam_id"])
	assert.Equal(t, "KORD", values["airport"])
	assert.Equal(t, "high", values["severity"])
	assert.Equal(t, "runway", values["category"])
	assert.Equal(t, "closure", values["impact"])
}

func TestParseWithTraceEmpty(t *testing.T) {
	trace := newParser().ParseWithTrace(&report.Message{Text: ""})
	assert.False(t, trace.QuickCheck.Passed)
	assert.False(t, trace.Matched)
	assert.Empty(t, trace.Formats)
}
