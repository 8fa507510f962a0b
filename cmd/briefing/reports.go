package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"aviation_briefing/internal/config"
	"aviation_briefing/internal/feed"
	"aviation_briefing/internal/parsers"
	"aviation_briefing/internal/registry"
	"aviation_briefing/internal/report"
	"aviation_briefing/internal/storage"
	"aviation_briefing/internal/weatherapi"
)

// ParseStats are the counters printed by parse -stats.
type ParseStats struct {
	Lines    int
	Invalid  int
	Messages int
	Emitted  int
	Matched  int
}

// processor dispatches messages and optionally archives the records.
type processor struct {
	reg        *registry.Registry
	archive    *storage.LocalStore
	includeAll bool
	first      bool // Keep only the highest-priority result per message.
	now        func() time.Time

	records []storage.Record
}

// process returns the outputs for msg and whether any parser matched.
func (p *processor) process(msg *report.Message) ([]feed.Output, bool) {
	if msg.Kind == report.KindUnknown {
		msg.Kind = report.Detect(msg.Text)
	}

	var results []registry.Result
	if p.first {
		if res := p.reg.DispatchFirst(msg); res != nil {
			results = append(results, res)
		}
	} else {
		results = p.reg.Dispatch(msg)
	}
	matched := !(len(results) == 1 && results[0].Kind() == report.KindUnknown)
	if !matched && !p.includeAll {
		return nil, false
	}

	var outs []feed.Output
	for _, res := range results {
		rec, err := storage.NewRecord(msg, res, p.now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skipping result for message %d: %v\n", int64(msg.ID), err)
			continue
		}
		p.records = append(p.records, rec)
		outs = append(outs, feed.Processed{Message: msg, Result: res, Record: rec}.Output())
	}
	return outs, matched
}

func (p *processor) flush(ctx context.Context) {
	if p.archive == nil || len(p.records) == 0 {
		return
	}
	if err := p.archive.InsertBatch(ctx, p.records); err != nil {
		fatalf("Failed to archive reports: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Archived %d reports\n", len(p.records))
	p.records = p.records[:0]
}

func openArchive(path string) *storage.LocalStore {
	if path == "" {
		return nil
	}
	store, err := storage.OpenLocal(path)
	if err != nil {
		fatalf("Failed to open archive: %v", err)
	}
	return store
}

func runParse(args []string) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	inPath := fs.String("input", "", "Input JSONL file (default: stdin)")
	outPath := fs.String("output", "", "Output JSON file (default: stdout)")
	pretty := fs.Bool("pretty", false, "Pretty-print JSON output")
	includeAll := fs.Bool("all", false, "Include messages even if no parser matched")
	first := fs.Bool("first", false, "Emit only the first matching result per message")
	showStats := fs.Bool("stats", false, "Print basic counters to stderr")
	dbPath := fs.String("db", "", "Archive results to this SQLite file")
	_ = fs.Parse(args)

	archive := openArchive(*dbPath)
	if archive != nil {
		defer archive.Close()
	}
	p := &processor{
		reg:        parsers.NewRegistry(parsers.Deps{}),
		archive:    archive,
		includeAll: *includeAll,
		first:      *first,
		now:        time.Now,
	}

	r, done := openInput(*inPath)
	defer done()

	scanner := bufio.NewScanner(r)
	// JSON lines can be long; bump buffer.
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	out := make([]feed.Output, 0, 1024)
	st := &ParseStats{}
	for scanner.Scan() {
		st.Lines++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		msg, err := report.DecodeMessage([]byte(line))
		if err != nil || strings.TrimSpace(msg.Text) == "" {
			st.Invalid++
			continue
		}
		st.Messages++

		outs, matched := p.process(msg)
		if matched {
			st.Matched++
		}
		st.Emitted += len(outs)
		out = append(out, outs...)
	}
	if err := scanner.Err(); err != nil {
		fatalf("Read error: %v", err)
	}

	p.flush(context.Background())
	writeJSON(*outPath, out, *pretty)

	if *showStats {
		fmt.Fprintf(os.Stderr, "lines=%d messages=%d invalid=%d matched=%d emitted=%d\n",
			st.Lines, st.Messages, st.Invalid, st.Matched, st.Emitted)
	}
}

func runTrace(args []string) {
	fs := flag.NewFlagSet("trace", flag.ExitOnError)
	inPath := fs.String("input", "", "Input file (default: stdin)")
	kind := fs.String("type", "", "Report type (detected when empty)")
	airport := fs.String("airport", "", "Airport hint")
	_ = fs.Parse(args)

	text := textInput(fs.Args(), *inPath)
	if text == "" {
		fatalf("No text provided")
	}

	msg := &report.Message{
		Kind:    report.ParseKind(*kind),
		Text:    text,
		Airport: strings.ToUpper(*airport),
	}
	if msg.Kind == report.KindUnknown {
		msg.Kind = report.Detect(text)
	}

	reg := parsers.NewRegistry(parsers.Deps{})
	writeJSON("", map[string]any{
		"kind":   msg.Kind.String(),
		"traces": reg.Trace(msg),
	}, true)
}

func runFetch(args []string) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	configPath := fs.String("config", os.Getenv("BRIEFING_CONFIG"), "YAML config file")
	stations := fs.String("stations", "", "Comma-separated station IDs")
	parse := fs.Bool("parse", false, "Parse the fetched reports")
	dbPath := fs.String("db", "", "Archive parsed reports to this SQLite file (implies -parse)")
	outPath := fs.String("output", "", "Output JSON file (default: stdout)")
	pretty := fs.Bool("pretty", false, "Pretty-print JSON output")
	_ = fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := weatherapi.New(cfg.WeatherAPI.BaseURL, cfg.WeatherAPI.Timeout)
	bundle := client.Comprehensive(ctx, strings.Split(*stations, ","))
	for kind, msg := range bundle.Errors {
		fmt.Fprintf(os.Stderr, "Fetch %s failed: %s\n", kind, msg)
	}

	if !*parse && *dbPath == "" {
		writeJSON(*outPath, bundle, *pretty)
		return
	}

	archive := openArchive(*dbPath)
	if archive != nil {
		defer archive.Close()
	}
	p := &processor{
		reg:        parsers.NewRegistry(parsers.Deps{}),
		archive:    archive,
		includeAll: true,
		now:        time.Now,
	}
	out := make([]feed.Output, 0)
	for _, msg := range bundle.Messages() {
		outs, _ := p.process(msg)
		out = append(out, outs...)
	}
	p.flush(ctx)
	writeJSON(*outPath, out, *pretty)
}
