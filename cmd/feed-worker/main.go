// Package main runs the report feed worker. It consumes raw reports from
// NATS, parses them and writes the results to every configured sink:
//
//   - NATS (NATS_OUTPUT_SUBJECT) for downstream consumers
//   - Kafka (KAFKA_BROKERS, KAFKA_TOPIC)
//   - SQLite archive (SQLITE_PATH)
//   - PostgreSQL NOTAM store (POSTGRES_URL), pruned of expired NOTAMs
//     every NOTAM_PRUNE_INTERVAL
//   - ClickHouse parse analytics (CLICKHOUSE_ADDR)
//
// A small HTTP server exposes /healthz, /readyz and /metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aviation_briefing/internal/config"
	"aviation_briefing/internal/feed"
	"aviation_briefing/internal/notam"
	"aviation_briefing/internal/observability"
	"aviation_briefing/internal/parsers"
	"aviation_briefing/internal/patterns"
	"aviation_briefing/internal/storage"
)

func main() {
	configPath := flag.String("config", os.Getenv("BRIEFING_CONFIG"), "YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err == nil {
		err = cfg.ValidateFeedWorker()
	}
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
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

	nc, err := feed.DialNATS(cfg.NATS.URL, "briefing-feed-worker", logger)
	if err != nil {
		logger.Error("failed to connect to nats", "error", err)
		os.Exit(1)
	}
	defer nc.Close()

	var sinks []feed.Sink
	if cfg.NATS.OutputSubject != "" {
		sinks = append(sinks, feed.NATSSink{Conn: nc, Subject: cfg.NATS.OutputSubject})
	}
	var kafkaSink *feed.KafkaSink
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink = feed.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		sinks = append(sinks, kafkaSink)
	}
	if db.Local != nil {
		sinks = append(sinks, feed.LocalSink{Store: db.Local})
	}
	if db.PG != nil {
		sinks = append(sinks, feed.NotamSink{DB: db.PG})
	}
	if db.CH != nil {
		sinks = append(sinks, feed.EventSink{DB: db.CH})
	}
	if len(sinks) == 0 {
		logger.Warn("no sinks configured; parsed reports will only be counted")
	}

	extractor := notam.NewExtractor(patterns.NewTables(), nil)
	source := &feed.NATSSource{Conn: nc, Subject: cfg.NATS.Subject, Queue: cfg.NATS.Queue}
	p := feed.New(source, parsers.NewRegistry(parsers.Deps{Extractor: extractor}), sinks,
		feed.Config{BatchSize: cfg.Feed.BatchSize, FlushInterval: cfg.Feed.FlushInterval},
		nil, logger, metrics)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           healthRouter(p),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	if db.PG != nil && cfg.Feed.PruneInterval > 0 {
		go feed.PruneExpired(ctx, db.PG, cfg.Feed.PruneInterval, nil, logger)
	}

	logger.Info("feed worker started", "subject", cfg.NATS.Subject, "queue", cfg.NATS.Queue, "sinks", len(sinks))
	if err := p.Run(ctx); err != nil {
		logger.Error("pipeline error", "error", err)
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := nc.Drain(); err != nil {
		logger.Error("nats drain error", "error", err)
	}
	if kafkaSink != nil {
		if err := kafkaSink.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	logger.Info("shutdown complete")
}

func healthRouter(p *feed.Pipeline) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := p.CheckReadiness(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
