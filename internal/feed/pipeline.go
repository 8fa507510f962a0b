// Package feed runs the report pipeline: raw messages from a source are
// dispatched through the parser registry and written in batches to sinks.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"aviation_briefing/internal/observability"
	"aviation_briefing/internal/registry"
	"aviation_briefing/internal/report"
	"aviation_briefing/internal/storage"
)

// Feed message outcomes.
const (
	OutcomeParsed    = "parsed"
	OutcomeUnparsed  = "unparsed"
	OutcomeInvalid   = "invalid"
	OutcomeSinkError = "sink_error"
)

// Source delivers raw message payloads. The channel is closed when the
// source is exhausted or ctx is cancelled.
type Source interface {
	Messages(ctx context.Context) (<-chan []byte, error)
}

// Sink receives batches of processed reports.
type Sink interface {
	Name() string
	Write(ctx context.Context, batch []Processed) error
}

// Processed is one parse result together with its message and archive
// record.
type Processed struct {
	Message *report.Message
	Result  registry.Result
	Record  storage.Record
}

// Output is the published form of a processed report.
type Output struct {
	ID          string              `json:"id"`
	MessageID   int64               `json:"message_id"`
	Kind        report.Kind         `json:"kind"`
	Source      string              `json:"source,omitempty"`
	Attributes  registry.Attributes `json:"attributes"`
	ProcessedAt time.Time           `json:"processed_at"`
	Result      registry.Result     `json:"result"`
}

// Output returns the published form of p.
func (p Processed) Output() Output {
	return Output{
		ID:          p.Record.ID,
		MessageID:   p.Record.MessageID,
		Kind:        p.Record.Kind,
		Source:      p.Record.Source,
		Attributes:  registry.AttributesOf(p.Result),
		ProcessedAt: p.Record.CreatedAt,
		Result:      p.Result,
	}
}

func (p Processed) marshal() ([]byte, error) {
	return json.Marshal(p.Output())
}

// Config tunes batching.
type Config struct {
	BatchSize     int           // Flush after this many results. Default 100.
	FlushInterval time.Duration // Flush a partial batch after this long. Default 2s.
}

// Pipeline consumes a source, parses every message and writes batches to
// every sink concurrently.
type Pipeline struct {
	source   Source
	registry *registry.Registry
	sinks    []Sink
	cfg      Config
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
	flushed  atomic.Bool
	ready    atomic.Bool // Last flush reached every sink.
}

// New creates a Pipeline. A nil clock uses the real clock.
func New(source Source, reg *registry.Registry, sinks []Sink, cfg Config, clock clockwork.Clock,
	logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 2 * time.Second
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		source:   source,
		registry: reg,
		sinks:    sinks,
		cfg:      cfg,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil when the most recent flush reached every sink.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.flushed.Load() {
		return errors.New("pipeline has not processed any messages yet")
	}
	if !p.ready.Load() {
		return errors.New("last flush failed on at least one sink")
	}
	return nil
}

// Run processes messages until the source closes or ctx is cancelled. The
// pending batch is flushed before returning.
func (p *Pipeline) Run(ctx context.Context) error {
	msgs, err := p.source.Messages(ctx)
	if err != nil {
		return err
	}
	p.logger.Info("pipeline started", "batch_size", p.cfg.BatchSize, "sinks", len(p.sinks))

	ticker := p.clock.NewTicker(p.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]Processed, 0, p.cfg.BatchSize)
	flush := func(ctx context.Context) {
		if len(batch) == 0 {
			return
		}
		p.flush(ctx, batch)
		batch = make([]Processed, 0, p.cfg.BatchSize)
	}

	for {
		select {
		case <-ctx.Done():
			// Give the final flush its own deadline; ctx is already done.
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			flush(flushCtx)
			cancel()
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil

		case <-ticker.Chan():
			flush(ctx)

		case data, ok := <-msgs:
			if !ok {
				flush(ctx)
				p.logger.Info("source closed")
				return nil
			}
			batch = append(batch, p.process(data)...)
			if len(batch) >= p.cfg.BatchSize {
				flush(ctx)
			}
		}
	}
}

// process decodes and dispatches one payload.
func (p *Pipeline) process(data []byte) []Processed {
	msg, err := report.DecodeMessage(data)
	if err == nil && strings.TrimSpace(msg.Text) == "" {
		err = errors.New("empty report text")
	}
	if err != nil {
		p.logger.Warn("invalid feed message, skipping", "error", err, "bytes", len(data))
		p.count(OutcomeInvalid)
		return nil
	}

	results := p.registry.Dispatch(msg)
	if len(results) == 0 {
		p.count(OutcomeUnparsed)
		return nil
	}

	now := p.clock.Now()
	out := make([]Processed, 0, len(results))
	for _, res := range results {
		rec, err := storage.NewRecord(msg, res, now)
		if err != nil {
			p.logger.Warn("build record failed", "error", err, "message_id", int64(msg.ID))
			continue
		}
		out = append(out, Processed{Message: msg, Result: res, Record: rec})
		p.observe(rec)
	}

	if len(out) == 1 && out[0].Record.Kind == report.KindUnknown {
		p.count(OutcomeUnparsed)
	} else {
		p.count(OutcomeParsed)
	}
	return out
}

func (p *Pipeline) count(outcome string) {
	if p.metrics != nil {
		p.metrics.FeedMessages.WithLabelValues(outcome).Inc()
	}
}

func (p *Pipeline) observe(rec storage.Record) {
	if p.metrics == nil {
		return
	}
	p.metrics.ReportsProcessed.WithLabelValues(rec.Kind.String()).Inc()
	if rec.Kind == report.KindNOTAM {
		p.metrics.NotamsExtracted.WithLabelValues(rec.Severity).Inc()
	}
	if rec.Degraded {
		p.metrics.DegradedRecords.Inc()
	}
}

// flush writes batch to every sink in parallel. A failing sink is logged
// and counted; it does not stop the others.
func (p *Pipeline) flush(ctx context.Context, batch []Processed) {
	start := p.clock.Now()

	var failed atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	for _, sink := range p.sinks {
		sink := sink
		g.Go(func() error {
			if err := sink.Write(gctx, batch); err != nil {
				p.logger.Error("sink write failed", "sink", sink.Name(), "error", err, "batch_size", len(batch))
				p.count(OutcomeSinkError)
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	p.ready.Store(failed.Load() == 0)
	p.flushed.Store(true)
	p.logger.Debug("batch flushed", "batch_size", len(batch), "failed_sinks", failed.Load(),
		"duration", p.clock.Since(start))
}
