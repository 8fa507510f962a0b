// Package api exposes the briefing engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aviation_briefing/internal/notam"
	"aviation_briefing/internal/observability"
	"aviation_briefing/internal/registry"
	"aviation_briefing/internal/storage"
	"aviation_briefing/internal/summary"
)

const maxBodyBytes = 1 << 20

// NotamStore is the persisted NOTAM set.
type NotamStore interface {
	UpsertNotam(ctx context.Context, n *notam.ParsedNotam) (string, error)
	ListNotams(ctx context.Context, f storage.NotamFilter) ([]notam.ParsedNotam, error)
	GetNotam(ctx context.Context, notamID, airport string) (*notam.ParsedNotam, error)
}

// ReportArchive is the local history of parsed reports.
type ReportArchive interface {
	InsertBatch(ctx context.Context, records []storage.Record) error
	Query(ctx context.Context, p storage.QueryParams) ([]storage.Record, error)
	Get(ctx context.Context, id string) (*storage.Record, error)
	Stats(ctx context.Context) (*storage.Stats, error)
}

// Analytics answers aggregate queries over parse events.
type Analytics interface {
	SeverityCounts(ctx context.Context, since time.Time) (map[string]uint64, error)
	KindCounts(ctx context.Context, since time.Time) (map[string]uint64, error)
	DegradedCount(ctx context.Context, since time.Time) (uint64, error)
}

// Deps are the components the handlers call. Extractor, Registry and
// Summarizer are required; Notams, Archive and Analytics are optional and
// their routes answer 503 when unset.
type Deps struct {
	Extractor  *notam.Extractor
	Registry   *registry.Registry
	Summarizer *summary.Summarizer
	Notams     NotamStore
	Archive    ReportArchive
	Analytics  Analytics
	Metrics    *observability.Metrics
	Logger     *slog.Logger
	Clock      clockwork.Clock
}

// Config holds HTTP settings.
type Config struct {
	AuthEnabled    bool
	APIKeys        []string      // Valid API keys when auth is enabled.
	RequestTimeout time.Duration // Default 30s.
	BatchWorkers   int           // Goroutines for NOTAM batches. Default 4.
}

// Server serves the /api/v1 routes.
type Server struct {
	Deps
	cfg     Config
	apiKeys map[string]bool
}

// NewServer creates a Server.
func NewServer(deps Deps, cfg Config) *Server {
	if deps.Logger == nil {
		deps.Logger = observability.DiscardLogger()
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.BatchWorkers <= 0 {
		cfg.BatchWorkers = 4
	}

	keys := make(map[string]bool)
	for _, k := range cfg.APIKeys {
		if k != "" {
			keys[k] = true
		}
	}
	return &Server{Deps: deps, cfg: cfg, apiKeys: keys}
}

// Router returns the full handler: middleware, /api/v1 and /metrics.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	r.Use(corsMiddleware)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required).
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			if s.cfg.AuthEnabled {
				r.Use(s.authMiddleware)
			}

			r.Get("/notams", s.handleListNotams)
			r.Get("/notams/{airport}/*", s.handleGetNotam)
			r.Post("/notams/parse", s.handleParseNotam)
			r.Post("/notams/batch", s.handleBatchNotams)
			r.Post("/notams/statistics", s.handleNotamStatistics)

			r.Post("/weather/categorize", s.handleCategorize)
			r.Post("/weather/flight-category", s.handleFlightCategory)
			r.Post("/weather/explain", s.handleExplain)

			r.Post("/route/assess", s.handleRouteAssess)
			r.Post("/route/summary", s.handleRouteSummary)

			r.Post("/summarize", s.handleSummarize)
			r.Post("/briefing", s.handleBriefing)

			r.Post("/reports/parse", s.handleParseReports)
			r.Get("/reports/history", s.handleReportHistory)
			r.Get("/reports/stats", s.handleReportStats)
			r.Get("/reports/{id}", s.handleGetReport)

			r.Get("/analytics", s.handleAnalytics)
		})
	})

	return r
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// authMiddleware validates API key authentication.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get("X-API-Key")

		// Fall back to Authorization: Bearer <key>.
		if apiKey == "" {
			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				apiKey = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		if apiKey == "" {
			writeError(w, http.StatusUnauthorized, "API key required")
			return
		}
		if !s.apiKeys[apiKey] {
			writeError(w, http.StatusForbidden, "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestLogger logs each request and counts it by route pattern.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := s.Clock.Now()

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if s.Metrics != nil {
			s.Metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		}
		s.Logger.Info("http request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", s.Clock.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   s.Clock.Now().UTC().Format(time.RFC3339),
		"features": map[string]bool{
			"summarizer_backend": s.Summarizer.HasBackend(),
			"notam_store":        s.Notams != nil,
			"report_archive":     s.Archive != nil,
			"analytics":          s.Analytics != nil,
		},
	})
}

// decodeJSON reads a size-limited JSON body into dst. On failure it writes
// a 400 and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return n, nil
}
