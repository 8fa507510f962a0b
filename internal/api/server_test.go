package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aviation_briefing/internal/notam"
	"aviation_briefing/internal/observability"
	"aviation_briefing/internal/parsers"
	"aviation_briefing/internal/patterns"
	"aviation_briefing/internal/storage"
	"aviation_briefing/internal/summary"
)

const (
	runwayNotam = "A1234/21 NOTAMN Q)KORD/.../4155N08748W005 A)KORD B)2110011200 C)2110012359 E)RWY 10L/28R CLSD"
	kordMetar   = "METAR KORD 151751Z 27015G25KT 10SM FEW050 BKN250 M02/M11 A3012"
)

var fixedNow = time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)

type fakeNotamStore struct {
	stored []notam.ParsedNotam
	filter storage.NotamFilter
	err    error
}

func (f *fakeNotamStore) UpsertNotam(_ context.Context, n *notam.ParsedNotam) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.stored = append(f.stored, *n)
	return "row-1", nil
}

func (f *fakeNotamStore) ListNotams(_ context.Context, filter storage.NotamFilter) ([]notam.ParsedNotam, error) {
	f.filter = filter
	return f.stored, f.err
}

func (f *fakeNotamStore) GetNotam(_ context.Context, notamID, airport string) (*notam.ParsedNotam, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.stored {
		if f.stored[i].ID() == notamID && f.stored[i].Airport() == airport {
			return &f.stored[i], nil
		}
	}
	return nil, storage.ErrNotFound
}

type fakeAnalytics struct {
	since time.Time
	err   error
}

func (f *fakeAnalytics) SeverityCounts(_ context.Context, since time.Time) (map[string]uint64, error) {
	f.since = since
	return map[string]uint64{"high": 3, "low": 1}, f.err
}

func (f *fakeAnalytics) KindCounts(_ context.Context, _ time.Time) (map[string]uint64, error) {
	return map[string]uint64{"metar": 4}, nil
}

func (f *fakeAnalytics) DegradedCount(_ context.Context, _ time.Time) (uint64, error) {
	return 2, nil
}

type testEnv struct {
	server    *Server
	router    http.Handler
	notams    *fakeNotamStore
	archive   *storage.LocalStore
	analytics *fakeAnalytics
	metrics   *observability.Metrics
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()
	clock := clockwork.NewFakeClockAt(fixedNow)
	extractor := notam.NewExtractor(patterns.NewTables(), clock)

	archive, err := storage.OpenLocal(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = archive.Close() })

	env := &testEnv{
		notams:    &fakeNotamStore{},
		archive:   archive,
		analytics: &fakeAnalytics{},
		metrics:   observability.NewMetricsForTesting(),
	}
	env.server = NewServer(Deps{
		Extractor:  extractor,
		Registry:   parsers.NewRegistry(parsers.Deps{Extractor: extractor}),
		Summarizer: summary.New(summary.WithClock(clock)),
		Notams:     env.notams,
		Archive:    archive,
		Analytics:  env.analytics,
		Metrics:    env.metrics,
		Clock:      clock,
	}, cfg)
	env.router = env.server.Router()
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, Config{})
	rec := env.do(t, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "2024-03-15T18:00:00Z", resp["time"])
	features := resp["features"].(map[string]any)
	assert.Equal(t, false, features["summarizer_backend"])
	assert.Equal(t, true, features["notam_store"])
}

func TestAuthMiddleware(t *testing.T) {
	env := newTestEnv(t, Config{AuthEnabled: true, APIKeys: []string{"test-key-123", ""}})

	tests := []struct {
		name       string
		header     string
		value      string
		wantStatus int
	}{
		{"no key", "", "", http.StatusUnauthorized},
		{"wrong key", "X-API-Key", "nope", http.StatusForbidden},
		{"header key", "X-API-Key", "test-key-123", http.StatusOK},
		{"bearer key", "Authorization", "Bearer test-key-123", http.StatusOK},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/weather/flight-category",
				strings.NewReader(`{"metar": "`+kordMetar+`"}`))
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			env.router.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}

	t.Run("health skips auth", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/health", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, Config{AuthEnabled: true, APIKeys: []string{"k"}})
	rec := env.do(t, http.MethodOptions, "/api/v1/notams/parse", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestParseNotam(t *testing.T) {
	env := newTestEnv(t, Config{})

	rec := env.do(t, http.MethodPost, "/api/v1/notams/parse", ParseNotamRequest{Text: runwayNotam, Store: true})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[ParseNotamResponse](t, rec)
	assert.Equal(t, "A1234/21", resp.Notam.ID())
	assert.Equal(t, notam.SeverityHigh, resp.Notam.Severity)
	assert.NotEmpty(t, resp.Summary)
	assert.Equal(t, "row-1", resp.StoreID)
	require.Len(t, env.notams.stored, 1)
	assert.Equal(t, "KORD", env.notams.stored[0].Airport())
}

func TestParseNotam_Errors(t *testing.T) {
	env := newTestEnv(t, Config{})

	rec := env.do(t, http.MethodPost, "/api/v1/notams/parse", ParseNotamRequest{Text: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notams/parse", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid JSON")

	env.notams.err = errors.New("db down")
	rec = env.do(t, http.MethodPost, "/api/v1/notams/parse", ParseNotamRequest{Text: runwayNotam, Store: true})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestBatchNotams(t *testing.T) {
	env := newTestEnv(t, Config{})

	rec := env.do(t, http.MethodPost, "/api/v1/notams/batch", BatchNotamRequest{
		Notams: []string{runwayNotam, "BIRD ACTIVITY IN VICINITY OF AERODROME"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[BatchNotamResponse](t, rec)
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, 1, resp.Results[0].SequenceNumber)
	assert.Equal(t, 2, resp.Results[1].SequenceNumber)
	assert.Equal(t, 2, resp.Statistics.Total)
	assert.Equal(t, 1, resp.Statistics.BySeverity[notam.SeverityHigh])

	rec = env.do(t, http.MethodPost, "/api/v1/notams/batch", BatchNotamRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotamStatistics(t *testing.T) {
	env := newTestEnv(t, Config{})
	rec := env.do(t, http.MethodPost, "/api/v1/notams/statistics", BatchNotamRequest{Notams: []string{runwayNotam}})
	require.Equal(t, http.StatusOK, rec.Code)

	stats := decode[notam.Stats](t, rec)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, []string{"KORD"}, stats.AirportsAffected)
}

func TestListNotams(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.do(t, http.MethodPost, "/api/v1/notams/parse", ParseNotamRequest{Text: runwayNotam, Store: true})

	rec := env.do(t, http.MethodGet, "/api/v1/notams?airport=kord&severity=HIGH&active=true&limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "KORD", env.notams.filter.Airport)
	assert.Equal(t, notam.SeverityHigh, env.notams.filter.Severity)
	assert.Equal(t, 5, env.notams.filter.Limit)
	assert.Equal(t, fixedNow, env.notams.filter.ActiveAt)

	resp := decode[map[string]any](t, rec)
	assert.EqualValues(t, 1, resp["count"])

	rec = env.do(t, http.MethodGet, "/api/v1/notams?limit=lots", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListNotams_NoStore(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.server.Notams = nil
	rec := env.do(t, http.MethodGet, "/api/v1/notams", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetNotam(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.do(t, http.MethodPost, "/api/v1/notams/parse", ParseNotamRequest{Text: runwayNotam, Store: true})

	for _, path := range []string{"/api/v1/notams/kord/A1234/21", "/api/v1/notams/KORD/A1234%2F21"} {
		rec := env.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		var resp struct {
			Notam   notam.ParsedNotam `json:"notam"`
			Summary string            `json:"summary"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "A1234/21", resp.Notam.ID())
		assert.NotEmpty(t, resp.Summary)
	}

	rec := env.do(t, http.MethodGet, "/api/v1/notams/KJFK/A1234/21", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	env.notams.err = errors.New("db down")
	rec = env.do(t, http.MethodGet, "/api/v1/notams/KORD/A1234/21", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	env.server.Notams = nil
	rec = env.do(t, http.MethodGet, "/api/v1/notams/KORD/A1234/21", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAnalytics(t *testing.T) {
	env := newTestEnv(t, Config{})

	rec := env.do(t, http.MethodGet, "/api/v1/analytics?window=6h", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[AnalyticsResponse](t, rec)
	assert.Equal(t, fixedNow.Add(-6*time.Hour), resp.Since)
	assert.Equal(t, fixedNow.Add(-6*time.Hour), env.analytics.since)
	assert.Equal(t, uint64(3), resp.BySeverity["high"])
	assert.Equal(t, uint64(4), resp.ByKind["metar"])
	assert.Equal(t, uint64(2), resp.Degraded)

	rec = env.do(t, http.MethodGet, "/api/v1/analytics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fixedNow.Add(-24*time.Hour), env.analytics.since)

	rec = env.do(t, http.MethodGet, "/api/v1/analytics?window=-1h", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.analytics.err = errors.New("clickhouse down")
	rec = env.do(t, http.MethodGet, "/api/v1/analytics", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	env.server.Analytics = nil
	rec = env.do(t, http.MethodGet, "/api/v1/analytics", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWeatherEndpoints(t *testing.T) {
	env := newTestEnv(t, Config{})

	rec := env.do(t, http.MethodPost, "/api/v1/weather/flight-category", MetarRequest{METAR: kordMetar})
	require.Equal(t, http.StatusOK, rec.Code)
	fc := decode[map[string]string](t, rec)
	assert.Equal(t, "KORD", fc["station"])
	assert.Equal(t, "VFR", fc["flight_category"])

	rec = env.do(t, http.MethodPost, "/api/v1/weather/categorize", MetarRequest{METAR: kordMetar})
	require.Equal(t, http.StatusOK, rec.Code)
	cat := decode[map[string]any](t, rec)
	assert.Equal(t, kordMetar, cat["raw_metar"])
	assert.NotEmpty(t, cat["category"])

	rec = env.do(t, http.MethodPost, "/api/v1/weather/explain", MetarRequest{METAR: kordMetar})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[map[string]string](t, rec)["explanation"])

	rec = env.do(t, http.MethodPost, "/api/v1/weather/categorize", MetarRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouteEndpoints(t *testing.T) {
	env := newTestEnv(t, Config{})

	rec := env.do(t, http.MethodPost, "/api/v1/route/assess", RouteAssessRequest{
		Stations: map[string]string{"KORD": kordMetar},
		SIGMETs:  []string{"SIGMET ALFA 1 VALID 151800/152200 EMBD TS"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assess := decode[map[string]any](t, rec)
	assert.NotEmpty(t, assess["overall_status"])

	rec = env.do(t, http.MethodPost, "/api/v1/route/summary", RouteSummaryRequest{
		Departure: "kord", Arrival: "kjfk", Altitude: "FL350", DepartureMETAR: kordMetar,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[map[string]any](t, rec)
	assert.Equal(t, "KORD → KJFK", sum["route"])

	rec = env.do(t, http.MethodPost, "/api/v1/route/summary", RouteSummaryRequest{Departure: "KORD"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummarizeAndBriefing(t *testing.T) {
	env := newTestEnv(t, Config{})

	rec := env.do(t, http.MethodPost, "/api/v1/summarize", map[string]any{"text": kordMetar})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[map[string]string](t, rec)
	assert.Equal(t, "metar", resp["type"])
	assert.NotEmpty(t, resp["summary"])

	rec = env.do(t, http.MethodPost, "/api/v1/summarize", map[string]any{"type": "metar"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/briefing", summary.BriefingInput{
		Departure: "KORD",
		Arrival:   "KJFK",
		METARs:    map[string]string{"KORD": kordMetar},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	brief := decode[map[string]string](t, rec)
	assert.Contains(t, brief["briefing"], "KORD")
	assert.Equal(t, "2024-03-15T18:00:00Z", brief["generated_at"])
}

func TestParseReportsAndHistory(t *testing.T) {
	env := newTestEnv(t, Config{})

	rec := env.do(t, http.MethodPost, "/api/v1/reports/parse", map[string]any{
		"archive": true,
		"messages": []map[string]any{
			{"id": 1, "text": kordMetar},
			{"id": "2", "kind": "notam", "text": runwayNotam},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	parsed := decode[map[string]any](t, rec)
	assert.EqualValues(t, 2, parsed["count"])

	rec = env.do(t, http.MethodGet, "/api/v1/reports/history?kind=notam", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history struct {
		Reports []storage.Record `json:"reports"`
		Count   int              `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&history))
	require.Equal(t, 1, history.Count)
	assert.Equal(t, "KORD", history.Reports[0].Airport)
	assert.Equal(t, "high", history.Reports[0].Severity)

	rec = env.do(t, http.MethodGet, "/api/v1/reports/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[storage.Stats](t, rec)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ByKind["metar"])

	rec = env.do(t, http.MethodGet, "/api/v1/reports/"+history.Reports[0].ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[storage.Record](t, rec)
	assert.Equal(t, history.Reports[0].ID, got.ID)
	assert.Equal(t, runwayNotam, got.RawText)

	rec = env.do(t, http.MethodGet, "/api/v1/reports/no-such-id", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/reports/history?since=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestMetrics(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.do(t, http.MethodGet, "/api/v1/health", nil)
	env.do(t, http.MethodGet, "/api/v1/health", nil)

	assert.Equal(t, 2.0, counterValue(t, env.metrics, "/api/v1/health", "200"))
}

func counterValue(t *testing.T, m *observability.Metrics, route, status string) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.HTTPRequests.WithLabelValues(route, status).Write(&out))
	return out.GetCounter().GetValue()
}
