package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"aviation_briefing/internal/feed"
	"aviation_briefing/internal/report"
	"aviation_briefing/internal/storage"
)

const maxParseMessages = 200

// ParseReportsRequest is the body of POST /reports/parse.
type ParseReportsRequest struct {
	Messages []report.Message `json:"messages"`
	Archive  bool             `json:"archive,omitempty"` // Store results in the report archive.
}

func (s *Server) handleParseReports(w http.ResponseWriter, r *http.Request) {
	var req ParseReportsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "No messages provided")
		return
	}
	if len(req.Messages) > maxParseMessages {
		writeError(w, http.StatusBadRequest, "Maximum 200 messages per request")
		return
	}
	if req.Archive && s.Archive == nil {
		writeError(w, http.StatusServiceUnavailable, "Report archive not configured")
		return
	}

	now := s.Clock.Now()
	outputs := make([]feed.Output, 0, len(req.Messages))
	records := make([]storage.Record, 0, len(req.Messages))
	for i := range req.Messages {
		msg := &req.Messages[i]
		for _, res := range s.Registry.Dispatch(msg) {
			rec, err := storage.NewRecord(msg, res, now)
			if err != nil {
				s.Logger.Warn("build record failed", "error", err, "message_id", res.MessageID())
				continue
			}
			if s.Metrics != nil {
				s.Metrics.ReportsProcessed.WithLabelValues(rec.Kind.String()).Inc()
			}
			records = append(records, rec)
			outputs = append(outputs, feed.Processed{Message: msg, Result: res, Record: rec}.Output())
		}
	}

	if req.Archive {
		if err := s.Archive.InsertBatch(r.Context(), records); err != nil {
			s.Logger.Error("archive reports failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to archive reports")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": outputs, "count": len(outputs)})
}

func (s *Server) handleReportHistory(w http.ResponseWriter, r *http.Request) {
	if s.Archive == nil {
		writeError(w, http.StatusServiceUnavailable, "Report archive not configured")
		return
	}

	limit, err := queryInt(r, "limit", 100)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	params := storage.QueryParams{
		Kind:     report.ParseKind(q.Get("kind")),
		Airport:  strings.ToUpper(q.Get("airport")),
		Severity: strings.ToLower(q.Get("severity")),
		FullText: q.Get("q"),
		Limit:    limit,
		Offset:   offset,
	}
	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid since (use RFC3339)")
			return
		}
		params.Since = since
	}

	records, err := s.Archive.Query(r.Context(), params)
	if err != nil {
		s.Logger.Error("query reports failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to query reports")
		return
	}
	if records == nil {
		records = []storage.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": records, "count": len(records)})
}

func (s *Server) handleReportStats(w http.ResponseWriter, r *http.Request) {
	if s.Archive == nil {
		writeError(w, http.StatusServiceUnavailable, "Report archive not configured")
		return
	}
	stats, err := s.Archive.Stats(r.Context())
	if err != nil {
		s.Logger.Error("report stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to compute statistics")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.Archive == nil {
		writeError(w, http.StatusServiceUnavailable, "Report archive not configured")
		return
	}
	id := chi.URLParam(r, "id")
	rec, err := s.Archive.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Report not found")
		return
	}
	if err != nil {
		s.Logger.Error("get report failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to get report")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// AnalyticsResponse is the body of GET /analytics.
type AnalyticsResponse struct {
	Since      time.Time         `json:"since"`
	BySeverity map[string]uint64 `json:"by_severity"`
	ByKind     map[string]uint64 `json:"by_kind"`
	Degraded   uint64            `json:"degraded"`
}

// handleAnalytics reports parse event counts over a trailing window
// (?window=24h by default).
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if s.Analytics == nil {
		writeError(w, http.StatusServiceUnavailable, "Analytics not configured")
		return
	}

	window := 24 * time.Hour
	if v := r.URL.Query().Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid window (use a duration such as 6h)")
			return
		}
		window = d
	}

	resp := AnalyticsResponse{Since: s.Clock.Now().UTC().Add(-window)}
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		resp.BySeverity, err = s.Analytics.SeverityCounts(ctx, resp.Since)
		return err
	})
	g.Go(func() (err error) {
		resp.ByKind, err = s.Analytics.KindCounts(ctx, resp.Since)
		return err
	})
	g.Go(func() (err error) {
		resp.Degraded, err = s.Analytics.DegradedCount(ctx, resp.Since)
		return err
	})
	if err := g.Wait(); err != nil {
		s.Logger.Error("analytics query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to query analytics")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
