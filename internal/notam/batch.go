package notam

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"aviation_briefing/internal/patterns"
)

const batchRawLimit = 100

// ParseBatch extracts every text in order. Sequence numbers start at 1. A
// failed item is returned as a degraded record carrying its sequence number
// and never stops the rest of the batch.
func (e *Extractor) ParseBatch(texts []string) []ParsedNotam {
	results := make([]ParsedNotam, len(texts))
	for i, text := range texts {
		results[i] = e.parseItem(i, text)
	}
	return results
}

// ParseBatchConcurrent is ParseBatch spread over up to workers goroutines.
// Results keep input order. Items not yet started when ctx is cancelled are
// returned degraded.
func (e *Extractor) ParseBatchConcurrent(ctx context.Context, texts []string, workers int) []ParsedNotam {
	if workers < 1 {
		workers = 1
	}
	results := make([]ParsedNotam, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, text := range texts {
		i, text := i, text
		if err := gctx.Err(); err != nil {
			results[i] = e.batchError(i, text, fmt.Sprintf("batch cancelled: %v", err))
			continue
		}
		g.Go(func() error {
			results[i] = e.parseItem(i, text)
			return nil
		})
	}
	_ = g.Wait() // Workers never return errors.

	return results
}

func (e *Extractor) parseItem(i int, text string) ParsedNotam {
	parsed := e.Extract(text, "")
	if parsed.Degraded() {
		return e.batchError(i, text, parsed.Error)
	}
	parsed.SequenceNumber = i + 1
	return parsed
}

func (e *Extractor) batchError(i int, text, reason string) ParsedNotam {
	rec := degraded(patterns.Truncate(text, batchRawLimit), reason, e.clock.Now().UTC())
	rec.SequenceNumber = i + 1
	return rec
}

// KeywordCount is one entry of Stats.TopKeywords.
type KeywordCount struct {
	Keyword string `json:"keyword" csv:"keyword"`
	Count   int    `json:"count" csv:"count"`
}

// Stats aggregates a set of parsed NOTAMs.
type Stats struct {
	Total            int              `json:"total"`
	BySeverity       map[Severity]int `json:"by_severity"`
	ByCategory       map[Category]int `json:"by_category"`
	HighImpactCount  int              `json:"high_impact_count"`
	GoNoGoFactors    int              `json:"go_no_go_factors"`
	AirportsAffected []string         `json:"airports_affected"`
	TopKeywords      []KeywordCount   `json:"top_keywords"`
	Error            string           `json:"error,omitempty"`
}

const topKeywordLimit = 10

// Statistics summarises parsed records. Total counts every record; degraded
// records are otherwise skipped.
func Statistics(parsed []ParsedNotam) Stats {
	if len(parsed) == 0 {
		return Stats{Error: "No NOTAMs provided"}
	}

	stats := Stats{
		Total: len(parsed),
		BySeverity: map[Severity]int{
			SeverityHigh: 0, SeverityMedium: 0, SeverityLow: 0, SeverityUnknown: 0,
		},
		ByCategory:       map[Category]int{},
		AirportsAffected: []string{},
		TopKeywords:      []KeywordCount{},
	}

	airports := map[string]bool{}
	keywords := map[string]int{}

	for i := range parsed {
		p := &parsed[i]
		if p.Degraded() {
			continue
		}
		stats.BySeverity[p.Severity]++
		stats.ByCategory[p.Category]++
		if p.FlightImpact.OverallImpact == SeverityHigh {
			stats.HighImpactCount++
		}
		if p.FlightImpact.GoNoGoFactor {
			stats.GoNoGoFactors++
		}
		if code := p.Airport(); code != "" {
			airports[code] = true
		}
		for _, kw := range p.Keywords {
			keywords[kw]++
		}
	}

	for code := range airports {
		stats.AirportsAffected = append(stats.AirportsAffected, code)
	}
	sort.Strings(stats.AirportsAffected)

	for kw, n := range keywords {
		stats.TopKeywords = append(stats.TopKeywords, KeywordCount{Keyword: kw, Count: n})
	}
	sort.Slice(stats.TopKeywords, func(i, j int) bool {
		a, b := stats.TopKeywords[i], stats.TopKeywords[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Keyword < b.Keyword
	})
	if len(stats.TopKeywords) > topKeywordLimit {
		stats.TopKeywords = stats.TopKeywords[:topKeywordLimit]
	}

	return stats
}
