package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"aviation_briefing/internal/config"
	"aviation_briefing/internal/report"
	"aviation_briefing/internal/route"
	"aviation_briefing/internal/summary"
	"aviation_briefing/internal/weather"
)

func runCategorize(args []string) {
	fs := flag.NewFlagSet("categorize", flag.ExitOnError)
	inPath := fs.String("input", "", "Input file (default: stdin)")
	explain := fs.Bool("explain", false, "Include a plain-language explanation")
	pretty := fs.Bool("pretty", false, "Pretty-print JSON output")
	_ = fs.Parse(args)

	text := textInput(fs.Args(), *inPath)
	if text == "" {
		fatalf("No METAR provided")
	}

	out := map[string]any{
		"categorization":  weather.Categorize(text),
		"flight_category": weather.FlightCategory(text),
	}
	if *explain {
		out["explanation"] = summary.ExplainMETAR(text)
	}
	writeJSON("", out, *pretty)
}

// assessInput is the JSON read by the assess command.
type assessInput struct {
	Stations map[string]string `json:"stations"`
	SIGMETs  []string          `json:"sigmets,omitempty"`
	AIRMETs  []string          `json:"airmets,omitempty"`
}

func runAssess(args []string) {
	fs := flag.NewFlagSet("assess", flag.ExitOnError)
	inPath := fs.String("input", "", "JSON file with stations, sigmets and airmets (default: stdin)")
	dep := fs.String("dep", "", "Departure airport for a route summary")
	arr := fs.String("arr", "", "Arrival airport for a route summary")
	alt := fs.String("alt", "", "Cruise altitude for a route summary")
	pretty := fs.Bool("pretty", false, "Pretty-print JSON output")
	_ = fs.Parse(args)

	r, done := openInput(*inPath)
	defer done()
	var in assessInput
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		fatalf("Failed to decode input: %v", err)
	}

	out := map[string]any{
		"assessment": route.Assess(in.Stations, route.Hazards{SIGMETs: in.SIGMETs, AIRMETs: in.AIRMETs}),
	}
	if *dep != "" && *arr != "" {
		d, a := strings.ToUpper(*dep), strings.ToUpper(*arr)
		out["summary"] = route.Summarize(d, a, *alt, in.Stations[d], in.Stations[a])
	}
	writeJSON("", out, *pretty)
}

func runSummarize(args []string) {
	fs := flag.NewFlagSet("summarize", flag.ExitOnError)
	configPath := fs.String("config", os.Getenv("BRIEFING_CONFIG"), "YAML config file")
	inPath := fs.String("input", "", "Input file (default: stdin)")
	kind := fs.String("type", "", "Report type (detected when empty)")
	offline := fs.Bool("offline", false, "Use the rule-based summaries only")
	_ = fs.Parse(args)

	text := textInput(fs.Args(), *inPath)
	if text == "" {
		fatalf("No text provided")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	// Stdout carries the summary.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	opts := []summary.Option{summary.WithTimeout(cfg.Summarizer.Timeout), summary.WithLogger(logger)}
	if !*offline {
		backend, err := summary.NewBackend(cfg.Summarizer.Provider, cfg.Summarizer.Token,
			cfg.Summarizer.Model, cfg.Summarizer.URL, cfg.Summarizer.Timeout)
		if err != nil {
			fatalf("Invalid summarizer config: %v", err)
		}
		if backend != nil {
			opts = append(opts, summary.WithBackend(backend))
		}
	}

	k := report.ParseKind(*kind)
	if k == report.KindUnknown {
		k = report.Detect(text)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := summary.New(opts...)
	writeOutput("", []byte(s.Summarize(ctx, summary.Request{Kind: k, Text: text})))
}
