package api

import (
	"net/http"
	"strings"

	"aviation_briefing/internal/report"
	"aviation_briefing/internal/route"
	"aviation_briefing/internal/summary"
	"aviation_briefing/internal/weather"
)

// MetarRequest is the body of the /weather routes.
type MetarRequest struct {
	METAR string `json:"metar"`
}

func (s *Server) decodeMETAR(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req MetarRequest
	if !decodeJSON(w, r, &req) {
		return "", false
	}
	text := strings.TrimSpace(req.METAR)
	if text == "" {
		writeError(w, http.StatusBadRequest, "metar is required")
		return "", false
	}
	return text, true
}

func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request) {
	text, ok := s.decodeMETAR(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, weather.Categorize(text))
}

func (s *Server) handleFlightCategory(w http.ResponseWriter, r *http.Request) {
	text, ok := s.decodeMETAR(w, r)
	if !ok {
		return
	}
	obs := weather.Decode(text)
	writeJSON(w, http.StatusOK, map[string]string{
		"station":         obs.Station,
		"flight_category": string(obs.FlightCategory()),
	})
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	text, ok := s.decodeMETAR(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"explanation": s.Summarizer.Explain(r.Context(), text),
	})
}

// RouteAssessRequest is the body of POST /route/assess. Stations maps
// airport IDs to their METARs.
type RouteAssessRequest struct {
	Stations map[string]string `json:"stations"`
	SIGMETs  []string          `json:"sigmets,omitempty"`
	AIRMETs  []string          `json:"airmets,omitempty"`
}

func (s *Server) handleRouteAssess(w http.ResponseWriter, r *http.Request) {
	var req RouteAssessRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, route.Assess(req.Stations, route.Hazards{SIGMETs: req.SIGMETs, AIRMETs: req.AIRMETs}))
}

// RouteSummaryRequest is the body of POST /route/summary.
type RouteSummaryRequest struct {
	Departure      string `json:"departure"`
	Arrival        string `json:"arrival"`
	Altitude       string `json:"altitude,omitempty"`
	DepartureMETAR string `json:"departure_metar,omitempty"`
	ArrivalMETAR   string `json:"arrival_metar,omitempty"`
}

func (s *Server) handleRouteSummary(w http.ResponseWriter, r *http.Request) {
	var req RouteSummaryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Departure == "" || req.Arrival == "" {
		writeError(w, http.StatusBadRequest, "departure and arrival are required")
		return
	}
	writeJSON(w, http.StatusOK, route.Summarize(strings.ToUpper(req.Departure), strings.ToUpper(req.Arrival),
		req.Altitude, req.DepartureMETAR, req.ArrivalMETAR))
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summary.Request
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" && len(req.Texts) == 0 && req.Notam == nil {
		writeError(w, http.StatusBadRequest, "text, texts or notam is required")
		return
	}
	if req.Kind == report.KindUnknown && req.Text != "" {
		req.Kind = report.Detect(req.Text)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"type":    req.Kind.String(),
		"summary": s.Summarizer.Summarize(r.Context(), req),
	})
}

func (s *Server) handleBriefing(w http.ResponseWriter, r *http.Request) {
	var in summary.BriefingInput
	if !decodeJSON(w, r, &in) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"briefing":     s.Summarizer.Briefing(r.Context(), in),
		"generated_at": s.Clock.Now().UTC().Format("2006-01-02T15:04:05Z"),
	})
}
