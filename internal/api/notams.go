package api

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"aviation_briefing/internal/notam"
	"aviation_briefing/internal/storage"
	"aviation_briefing/internal/summary"
)

const maxBatchNotams = 500

// ParseNotamRequest is the body of POST /notams/parse.
type ParseNotamRequest struct {
	Text    string `json:"text"`
	Airport string `json:"airport,omitempty"`
	Store   bool   `json:"store,omitempty"` // Persist the record when a NOTAM store is configured.
}

// ParseNotamResponse wraps one extracted NOTAM.
type ParseNotamResponse struct {
	Notam   notam.ParsedNotam `json:"notam"`
	Summary string            `json:"summary"`
	StoreID string            `json:"store_id,omitempty"`
}

func (s *Server) handleParseNotam(w http.ResponseWriter, r *http.Request) {
	var req ParseNotamRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	parsed := s.Extractor.Extract(req.Text, req.Airport)
	resp := ParseNotamResponse{Notam: parsed, Summary: summary.FallbackNotam(&parsed)}
	s.observeNotams([]notam.ParsedNotam{parsed})

	if req.Store && !parsed.Degraded() {
		if s.Notams == nil {
			writeError(w, http.StatusServiceUnavailable, "NOTAM store not configured")
			return
		}
		id, err := s.Notams.UpsertNotam(r.Context(), &parsed)
		if err != nil {
			s.Logger.Error("store notam failed", "error", err, "notam_id", parsed.ID())
			writeError(w, http.StatusInternalServerError, "Failed to store NOTAM")
			return
		}
		resp.StoreID = id
	}

	writeJSON(w, http.StatusOK, resp)
}

// BatchNotamRequest is the body of POST /notams/batch and
// POST /notams/statistics.
type BatchNotamRequest struct {
	Notams []string `json:"notams"`
}

// BatchNotamResponse is the result of a batch parse.
type BatchNotamResponse struct {
	Results    []notam.ParsedNotam `json:"results"`
	Count      int                 `json:"count"`
	Degraded   int                 `json:"degraded"`
	Statistics notam.Stats         `json:"statistics"`
}

func (s *Server) decodeBatch(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var req BatchNotamRequest
	if !decodeJSON(w, r, &req) {
		return nil, false
	}
	if len(req.Notams) == 0 {
		writeError(w, http.StatusBadRequest, "No NOTAMs provided")
		return nil, false
	}
	if len(req.Notams) > maxBatchNotams {
		writeError(w, http.StatusBadRequest, "Maximum 500 NOTAMs per batch request")
		return nil, false
	}
	return req.Notams, true
}

func (s *Server) handleBatchNotams(w http.ResponseWriter, r *http.Request) {
	texts, ok := s.decodeBatch(w, r)
	if !ok {
		return
	}

	results := s.Extractor.ParseBatchConcurrent(r.Context(), texts, s.cfg.BatchWorkers)
	s.observeNotams(results)

	resp := BatchNotamResponse{
		Results:    results,
		Count:      len(results),
		Statistics: notam.Statistics(results),
	}
	for i := range results {
		if results[i].Degraded() {
			resp.Degraded++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNotamStatistics(w http.ResponseWriter, r *http.Request) {
	texts, ok := s.decodeBatch(w, r)
	if !ok {
		return
	}
	results := s.Extractor.ParseBatchConcurrent(r.Context(), texts, s.cfg.BatchWorkers)
	writeJSON(w, http.StatusOK, notam.Statistics(results))
}

func (s *Server) handleListNotams(w http.ResponseWriter, r *http.Request) {
	if s.Notams == nil {
		writeError(w, http.StatusServiceUnavailable, "NOTAM store not configured")
		return
	}

	limit, err := queryInt(r, "limit", 100)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q := r.URL.Query()
	filter := storage.NotamFilter{
		Airport:  strings.ToUpper(q.Get("airport")),
		Severity: notam.Severity(strings.ToLower(q.Get("severity"))),
		Limit:    limit,
	}
	if q.Get("active") == "true" {
		filter.ActiveAt = s.Clock.Now().UTC()
	}

	notams, err := s.Notams.ListNotams(r.Context(), filter)
	if err != nil {
		s.Logger.Error("list notams failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list NOTAMs")
		return
	}
	if notams == nil {
		notams = []notam.ParsedNotam{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notams": notams, "count": len(notams)})
}

// handleGetNotam serves GET /notams/{airport}/{id}. The NOTAM ID keeps its
// slash (A1234/21) and may also arrive escaped as A1234%2F21.
func (s *Server) handleGetNotam(w http.ResponseWriter, r *http.Request) {
	if s.Notams == nil {
		writeError(w, http.StatusServiceUnavailable, "NOTAM store not configured")
		return
	}

	id, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil || id == "" {
		writeError(w, http.StatusBadRequest, "Invalid NOTAM ID")
		return
	}
	airport := strings.ToUpper(chi.URLParam(r, "airport"))

	n, err := s.Notams.GetNotam(r.Context(), strings.ToUpper(id), airport)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOTAM not found")
		return
	}
	if err != nil {
		s.Logger.Error("get notam failed", "error", err, "notam_id", id, "airport", airport)
		writeError(w, http.StatusInternalServerError, "Failed to get NOTAM")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notam": n, "summary": summary.FallbackNotam(n)})
}

func (s *Server) observeNotams(parsed []notam.ParsedNotam) {
	if s.Metrics == nil {
		return
	}
	for i := range parsed {
		if parsed[i].Degraded() {
			s.Metrics.DegradedRecords.Inc()
			continue
		}
		s.Metrics.NotamsExtracted.WithLabelValues(string(parsed[i].Severity)).Inc()
	}
}
