// Package main runs the briefing HTTP API.
//
// Usage:
//
//	briefing-api [options]
//
// Options:
//
//	-config PATH     YAML config file (env: BRIEFING_CONFIG)
//	-addr ADDR       Listen address (default: :8080, env: HTTP_ADDR)
//	-auth            Enable API key authentication
//	-api-keys KEYS   Comma-separated list of valid API keys (env: API_KEY)
//
// Storage is optional. SQLITE_PATH enables the report history routes,
// POSTGRES_URL enables GET /api/v1/notams and NOTAM persistence, and
// CLICKHOUSE_ADDR enables GET /api/v1/analytics.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"aviation_briefing/internal/api"
	"aviation_briefing/internal/config"
	"aviation_briefing/internal/notam"
	"aviation_briefing/internal/observability"
	"aviation_briefing/internal/parsers"
	"aviation_briefing/internal/patterns"
	"aviation_briefing/internal/storage"
	"aviation_briefing/internal/summary"
)

func main() {
	configPath := flag.String("config", os.Getenv("BRIEFING_CONFIG"), "YAML config file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	authEnabled := flag.Bool("auth", false, "Enable API key authentication")
	apiKeys := flag.String("api-keys", "", "Comma-separated list of valid API keys (when auth enabled)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}

	logger := observability.NewLogger(cfg.Log.Level, cfg.Log.Format)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(ctx, cfg.StorageBackends())
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()
	if err := db.CreateSchemas(ctx); err != nil {
		logger.Error("failed to create schemas", "error", err)
		os.Exit(1)
	}

	backend, err := summary.NewBackend(cfg.Summarizer.Provider, cfg.Summarizer.Token,
		cfg.Summarizer.Model, cfg.Summarizer.URL, cfg.Summarizer.Timeout)
	if err != nil {
		logger.Error("invalid summarizer config", "error", err)
		os.Exit(1)
	}
	summarizerOpts := []summary.Option{
		summary.WithTimeout(cfg.Summarizer.Timeout),
		summary.WithMetrics(metrics),
		summary.WithLogger(logger),
	}
	if backend != nil {
		summarizerOpts = append(summarizerOpts, summary.WithBackend(backend))
		logger.Info("summarizer backend enabled", "backend", backend.Name())
	}

	extractor := notam.NewExtractor(patterns.NewTables(), nil)
	deps := api.Deps{
		Extractor:  extractor,
		Registry:   parsers.NewRegistry(parsers.Deps{Extractor: extractor}),
		Summarizer: summary.New(summarizerOpts...),
		Metrics:    metrics,
		Logger:     logger,
	}
	if db.PG != nil {
		deps.Notams = db.PG
	}
	if db.Local != nil {
		deps.Archive = db.Local
	}
	if db.CH != nil {
		deps.Analytics = db.CH
	}

	keys := splitKeys(*apiKeys)
	if len(keys) == 0 && cfg.HTTP.APIKey != "" {
		keys = splitKeys(cfg.HTTP.APIKey)
	}
	server := api.NewServer(deps, api.Config{
		AuthEnabled: *authEnabled || len(keys) > 0,
		APIKeys:     keys,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("briefing api starting", "addr", cfg.HTTP.Addr, "auth", len(keys) > 0)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}

func splitKeys(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
