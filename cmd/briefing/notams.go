package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/jszwec/csvutil"

	"aviation_briefing/internal/notam"
	"aviation_briefing/internal/patterns"
)

// notamInput is one CSV input row.
type notamInput struct {
	Text    string `csv:"text"`
	Airport string `csv:"airport,omitempty"`
}

// notamRow is the flat CSV form of a parsed NOTAM.
type notamRow struct {
	Seq            int    `csv:"seq"`
	NotamID        string `csv:"notam_id"`
	Airport        string `csv:"airport"`
	Severity       string `csv:"severity"`
	Category       string `csv:"category"`
	ImpactType     string `csv:"impact_type"`
	SeverityScore  int    `csv:"severity_score"`
	GoNoGo         bool   `csv:"go_no_go"`
	EffectiveFrom  string `csv:"effective_from"`
	EffectiveUntil string `csv:"effective_until"`
	Permanent      bool   `csv:"permanent"`
	Keywords       string `csv:"keywords"`
	Description    string `csv:"description"`
	Error          string `csv:"error"`
}

// statRow is one bucket of notam.Stats in CSV form.
type statRow struct {
	Group string `csv:"group"`
	Key   string `csv:"key"`
	Count int    `csv:"count"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toRow(i int, p *notam.ParsedNotam) notamRow {
	seq := p.SequenceNumber
	if seq == 0 {
		seq = i + 1
	}
	return notamRow{
		Seq:            seq,
		NotamID:        p.ID(),
		Airport:        p.Airport(),
		Severity:       string(p.Severity),
		Category:       string(p.Category),
		ImpactType:     string(p.Impact.Type),
		SeverityScore:  p.Impact.SeverityScore,
		GoNoGo:         p.FlightImpact.GoNoGoFactor,
		EffectiveFrom:  deref(p.TimeInfo.EffectiveFrom),
		EffectiveUntil: deref(p.TimeInfo.EffectiveUntil),
		Permanent:      p.TimeInfo.IsPermanent,
		Keywords:       strings.Join(p.Keywords, ";"),
		Description:    p.Description,
		Error:          p.Error,
	}
}

func notamRows(parsed []notam.ParsedNotam) []notamRow {
	rows := make([]notamRow, 0, len(parsed))
	for i := range parsed {
		rows = append(rows, toRow(i, &parsed[i]))
	}
	return rows
}

func statRows(s notam.Stats) []statRow {
	rows := []statRow{
		{Group: "total", Key: "total", Count: s.Total},
		{Group: "total", Key: "high_impact", Count: s.HighImpactCount},
		{Group: "total", Key: "go_no_go", Count: s.GoNoGoFactors},
		{Group: "total", Key: "airports", Count: len(s.AirportsAffected)},
	}
	for _, sev := range []notam.Severity{notam.SeverityHigh, notam.SeverityMedium, notam.SeverityLow, notam.SeverityUnknown} {
		rows = append(rows, statRow{Group: "severity", Key: string(sev), Count: s.BySeverity[sev]})
	}

	cats := make([]string, 0, len(s.ByCategory))
	for c := range s.ByCategory {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)
	for _, c := range cats {
		rows = append(rows, statRow{Group: "category", Key: c, Count: s.ByCategory[notam.Category(c)]})
	}
	for _, kw := range s.TopKeywords {
		rows = append(rows, statRow{Group: "keyword", Key: kw.Keyword, Count: kw.Count})
	}
	return rows
}

// splitNotams splits text on blank lines. Lines inside a NOTAM are joined
// with a single space.
func splitNotams(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var out []string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.Join(cur, " "))
			cur = cur[:0]
		}
	}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return out, scanner.Err()
}

func readNotamCSV(r io.Reader) ([]notamInput, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("create CSV decoder: %w", err)
	}
	var rows []notamInput
	if err := dec.Decode(&rows); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode NOTAM CSV: %w", err)
	}
	return rows, nil
}

// readNotams reads NOTAM inputs from path (or stdin). An airport hint
// applies to every row that has none of its own.
func readNotams(path string, isCSV bool, airport string) []notamInput {
	r, done := openInput(path)
	defer done()

	var inputs []notamInput
	if isCSV {
		rows, err := readNotamCSV(r)
		if err != nil {
			fatalf("Failed to read CSV: %v", err)
		}
		inputs = rows
	} else {
		texts, err := splitNotams(r)
		if err != nil {
			fatalf("Failed to read input: %v", err)
		}
		for _, t := range texts {
			inputs = append(inputs, notamInput{Text: t})
		}
	}

	for i := range inputs {
		if inputs[i].Airport == "" {
			inputs[i].Airport = airport
		}
	}
	return inputs
}

func writeNotams(path, format string, parsed []notam.ParsedNotam, pretty bool) {
	switch format {
	case "csv":
		b, err := csvutil.Marshal(notamRows(parsed))
		if err != nil {
			fatalf("CSV marshal error: %v", err)
		}
		writeOutput(path, b)
	case "json", "":
		writeJSON(path, parsed, pretty)
	default:
		fatalf("Unknown format: %s", format)
	}
}

func runExtract(args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	inPath := fs.String("input", "", "Input file (default: stdin)")
	outPath := fs.String("output", "", "Output file (default: stdout)")
	isCSV := fs.Bool("csv", false, "Input is CSV with text and airport columns")
	airport := fs.String("airport", "", "Airport hint for NOTAMs without one")
	format := fs.String("format", "json", "Output format: json or csv")
	pretty := fs.Bool("pretty", false, "Pretty-print JSON output")
	_ = fs.Parse(args)

	inputs := readNotams(*inPath, *isCSV, strings.ToUpper(*airport))
	extractor := notam.NewExtractor(patterns.NewTables(), nil)

	parsed := make([]notam.ParsedNotam, 0, len(inputs))
	for i, in := range inputs {
		p := extractor.Extract(in.Text, in.Airport)
		p.SequenceNumber = i + 1
		parsed = append(parsed, p)
	}
	writeNotams(*outPath, *format, parsed, *pretty)
}

func runBatch(args []string) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	inPath := fs.String("input", "", "Input file (default: stdin)")
	outPath := fs.String("output", "", "Output file (default: stdout)")
	isCSV := fs.Bool("csv", false, "Input is CSV with a text column")
	workers := fs.Int("workers", 4, "Concurrent workers")
	format := fs.String("format", "json", "Output format: json or csv")
	pretty := fs.Bool("pretty", false, "Pretty-print JSON output")
	showStats := fs.Bool("stats", false, "Print statistics to stderr")
	_ = fs.Parse(args)

	inputs := readNotams(*inPath, *isCSV, "")
	texts := make([]string, len(inputs))
	for i, in := range inputs {
		texts[i] = in.Text
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	extractor := notam.NewExtractor(patterns.NewTables(), nil)
	parsed := extractor.ParseBatchConcurrent(ctx, texts, *workers)
	writeNotams(*outPath, *format, parsed, *pretty)

	if *showStats {
		s := notam.Statistics(parsed)
		degraded := 0
		for i := range parsed {
			if parsed[i].Degraded() {
				degraded++
			}
		}
		fmt.Fprintf(os.Stderr, "total=%d high=%d medium=%d low=%d degraded=%d go_no_go=%d\n",
			s.Total, s.BySeverity[notam.SeverityHigh], s.BySeverity[notam.SeverityMedium],
			s.BySeverity[notam.SeverityLow], degraded, s.GoNoGoFactors)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	inPath := fs.String("input", "", "Input file (default: stdin)")
	outPath := fs.String("output", "", "Output file (default: stdout)")
	isCSV := fs.Bool("csv", false, "Input is CSV with text and airport columns")
	format := fs.String("format", "json", "Output format: json or csv")
	pretty := fs.Bool("pretty", false, "Pretty-print JSON output")
	_ = fs.Parse(args)

	inputs := readNotams(*inPath, *isCSV, "")
	extractor := notam.NewExtractor(patterns.NewTables(), nil)
	parsed := make([]notam.ParsedNotam, 0, len(inputs))
	for _, in := range inputs {
		parsed = append(parsed, extractor.Extract(in.Text, in.Airport))
	}
	stats := notam.Statistics(parsed)

	switch *format {
	case "csv":
		b, err := csvutil.Marshal(statRows(stats))
		if err != nil {
			fatalf("CSV marshal error: %v", err)
		}
		writeOutput(*outPath, b)
	case "json", "":
		writeJSON(*outPath, stats, *pretty)
	default:
		fatalf("Unknown format: %s", *format)
	}
}
