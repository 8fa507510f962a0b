package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aviation_briefing/internal/notam"
	"aviation_briefing/internal/parsers"
	"aviation_briefing/internal/patterns"
	"aviation_briefing/internal/registry"
	"aviation_briefing/internal/report"
	"aviation_briefing/internal/storage"
)

const runwayNotam = "A1234/21 NOTAMN Q)KORD/.../4155N08748W005 A)KORD B)2110011200 C)2110012359 E)RWY 10L/28R CLSD"

func TestSplitNotams(t *testing.T) {
	input := "\n\nA1234/21 NOTAMN\nE)RWY 10L/28R CLSD\n\n\n  TWY A CLSD  \n"

	got, err := splitNotams(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"A1234/21 NOTAMN E)RWY 10L/28R CLSD", "TWY A CLSD"}, got)
}

func TestReadNotamCSV(t *testing.T) {
	input := "text,airport\n\"RWY 04L/22R CLSD, WIP\",KJFK\nTWY A CLSD,\n"

	rows, err := readNotamCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, notamInput{Text: "RWY 04L/22R CLSD, WIP", Airport: "KJFK"}, rows[0])
	assert.Equal(t, "TWY A CLSD", rows[1].Text)
	assert.Empty(t, rows[1].Airport)
}

func TestNotamRows(t *testing.T) {
	e := notam.NewExtractor(patterns.NewTables(), nil)
	parsed := []notam.ParsedNotam{e.Extract(runwayNotam, "")}

	rows := notamRows(parsed)
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, 1, row.Seq)
	assert.Equal(t, "A1234/21", row.NotamID)
	assert.Equal(t, "KORD", row.Airport)
	assert.Equal(t, "high", row.Severity)
	assert.Equal(t, "runway", row.Category)
	assert.True(t, row.GoNoGo)
	assert.Equal(t, "2021-10-01T12:00:00Z", row.EffectiveFrom)
	assert.Equal(t, "2021-10-01T23:59:00Z", row.EffectiveUntil)
	assert.Empty(t, row.Error)

	b, err := csvutil.Marshal(rows)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "seq,notam_id,airport,severity,category,"))
	assert.True(t, strings.HasPrefix(lines[1], "1,A1234/21,KORD,high,runway,"))
}

func TestStatRows(t *testing.T) {
	e := notam.NewExtractor(patterns.NewTables(), nil)
	stats := notam.Statistics([]notam.ParsedNotam{e.Extract(runwayNotam, "")})

	rows := statRows(stats)
	assert.Contains(t, rows, statRow{Group: "total", Key: "total", Count: 1})
	assert.Contains(t, rows, statRow{Group: "severity", Key: "high", Count: 1})
	assert.Contains(t, rows, statRow{Group: "severity", Key: "low", Count: 0})
	assert.Contains(t, rows, statRow{Group: "category", Key: "runway", Count: 1})
}

func TestProcessor(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)
	archive, err := storage.OpenLocal(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	defer archive.Close()

	p := &processor{
		reg:     parsers.NewRegistry(parsers.Deps{}),
		archive: archive,
		now:     func() time.Time { return now },
	}

	t.Run("detects kind and dispatches", func(t *testing.T) {
		msg := &report.Message{ID: 1, Text: "METAR KORD 151751Z 27015G25KT 10SM FEW050 BKN250 M02/M11 A3012"}
		outs, matched := p.process(msg)
		assert.True(t, matched)
		require.Len(t, outs, 1)
		assert.Equal(t, report.KindMETAR, outs[0].Kind)
		assert.Equal(t, int64(1), outs[0].MessageID)
		assert.Equal(t, now, outs[0].ProcessedAt)
	})

	t.Run("skips unmatched unless all", func(t *testing.T) {
		outs, matched := p.process(&report.Message{ID: 2, Text: "HELLO WORLD"})
		assert.False(t, matched)
		assert.Empty(t, outs)

		p.includeAll = true
		defer func() { p.includeAll = false }()
		outs, matched = p.process(&report.Message{ID: 3, Text: "HELLO WORLD"})
		assert.False(t, matched)
		assert.Len(t, outs, 1)
	})

	t.Run("archives on flush", func(t *testing.T) {
		ctx := context.Background()
		p.flush(ctx)
		assert.Empty(t, p.records)

		records, err := archive.Query(ctx, storage.QueryParams{Limit: 10})
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})
}

type namedResult struct {
	Parser string `json:"parser"`
	ID     int64  `json:"id"`
}

func (r *namedResult) Kind() report.Kind { return report.KindMETAR }
func (r *namedResult) MessageID() int64  { return r.ID }

type namedParser struct {
	name     string
	priority int
}

func (p *namedParser) Name() string           { return p.name }
func (p *namedParser) Kinds() []report.Kind   { return []report.Kind{report.KindMETAR} }
func (p *namedParser) QuickCheck(string) bool { return true }
func (p *namedParser) Priority() int          { return p.priority }
func (p *namedParser) Parse(msg *report.Message) registry.Result {
	return &namedResult{Parser: p.name, ID: int64(msg.ID)}
}

func TestProcessorFirst(t *testing.T) {
	reg := registry.New()
	reg.Register(&namedParser{name: "fallback", priority: 50})
	reg.Register(&namedParser{name: "primary", priority: 10})
	reg.Sort()

	p := &processor{reg: reg, now: time.Now}
	newMsg := func() *report.Message {
		return &report.Message{ID: 9, Kind: report.KindMETAR, Text: "METAR KORD 151751Z"}
	}

	outs, matched := p.process(newMsg())
	assert.True(t, matched)
	assert.Len(t, outs, 2)

	p.first = true
	outs, matched = p.process(newMsg())
	assert.True(t, matched)
	require.Len(t, outs, 1)
	assert.Equal(t, "primary", outs[0].Result.(*namedResult).Parser)
	assert.Equal(t, int64(9), outs[0].MessageID)
}
