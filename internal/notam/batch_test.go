package notam

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBatch_IsolatesFailures(t *testing.T) {
	e := newTestExtractor()
	results := e.ParseBatch([]string{
		"A)KORD E)RWY 10L/28R CLSD",
		"",
		"A)KJFK E)TWY B CLSD",
	})

	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, i+1, r.SequenceNumber)
	}

	assert.Empty(t, results[0].Error)
	assert.Equal(t, "KORD", results[0].Airport())

	assert.Equal(t, "empty NOTAM text", results[1].Error)
	assert.Equal(t, SeverityUnknown, results[1].Severity)

	assert.Empty(t, results[2].Error)
	assert.Equal(t, "KJFK", results[2].Airport())
}

func TestParseBatch_Empty(t *testing.T) {
	e := newTestExtractor()
	assert.Empty(t, e.ParseBatch(nil))
}

func TestParseBatchConcurrent_KeepsOrder(t *testing.T) {
	e := newTestExtractor()

	texts := make([]string, 50)
	for i := range texts {
		texts[i] = fmt.Sprintf("A%04d/24 A)KORD E)TWY B CLSD", i)
	}
	texts[17] = "   "

	results := e.ParseBatchConcurrent(context.Background(), texts, 4)

	require.Len(t, results, len(texts))
	for i, r := range results {
		i, r := i, r
		assert.Equal(t, i+1, r.SequenceNumber)
		if i == 17 {
			assert.True(t, r.Degraded())
			continue
		}
		assert.Equal(t, fmt.Sprintf("A%04d/24", i), r.ID())
	}
}

func TestParseBatchConcurrent_Cancelled(t *testing.T) {
	e := newTestExtractor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := e.ParseBatchConcurrent(ctx, []string{"RWY 09 CLSD", "TWY A CLSD"}, 2)

	require.Len(t, results, 2)
	for i, r := range results {
		assert.Equal(t, i+1, r.SequenceNumber)
		assert.Contains(t, r.Error, "batch cancelled")
	}
}

func TestBatchError_TruncatesRawText(t *testing.T) {
	e := newTestExtractor()
	rec := e.batchError(4, strings.Repeat("Z", 250), "boom")

	assert.Equal(t, 5, rec.SequenceNumber)
	assert.Equal(t, "boom", rec.Error)
	assert.Equal(t, strings.Repeat("Z", 100)+"...", rec.RawText)
}

func TestStatistics(t *testing.T) {
	e := newTestExtractor()
	parsed := e.ParseBatch([]string{
		"A)KORD E)RWY 10L/28R CLSD",
		"A)KJFK E)RWY 04L CLSD",
		"A)KORD E)BIRD ACTIVITY IN VICINITY",
		"",
	})

	stats := Statistics(parsed)

	assert.Empty(t, stats.Error)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.BySeverity[SeverityHigh])
	assert.Equal(t, 1, stats.BySeverity[SeverityMedium])
	assert.Equal(t, 0, stats.BySeverity[SeverityLow])
	assert.Equal(t, 0, stats.BySeverity[SeverityUnknown])
	assert.Equal(t, 2, stats.ByCategory[CategoryRunway])
	assert.Equal(t, 1, stats.ByCategory[CategoryOther])
	assert.Equal(t, 2, stats.HighImpactCount)
	assert.Equal(t, 2, stats.GoNoGoFactors)
	assert.Equal(t, []string{"KJFK", "KORD"}, stats.AirportsAffected)

	require.NotEmpty(t, stats.TopKeywords)
	assert.Equal(t, KeywordCount{Keyword: "closed", Count: 2}, stats.TopKeywords[0])
	assert.Equal(t, KeywordCount{Keyword: "runway", Count: 2}, stats.TopKeywords[1])
	assert.Equal(t, KeywordCount{Keyword: "runway_04l", Count: 1}, stats.TopKeywords[2])
}

func TestStatistics_TopKeywordsCapped(t *testing.T) {
	parsed := []ParsedNotam{{
		Severity: SeverityLow,
		Category: CategoryOther,
		Keywords: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"},
	}}

	stats := Statistics(parsed)
	require.Len(t, stats.TopKeywords, 10)
	assert.Equal(t, "a", stats.TopKeywords[0].Keyword)
	assert.Equal(t, "j", stats.TopKeywords[9].Keyword)
}

func TestStatistics_Empty(t *testing.T) {
	stats := Statistics(nil)
	assert.Equal(t, "No NOTAMs provided", stats.Error)
	assert.Zero(t, stats.Total)
}
