// Package weatherapi fetches raw reports from the aviationweather.gov Data
// API.
package weatherapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"aviation_briefing/internal/observability"
	"aviation_briefing/internal/report"
)

const (
	DefaultBaseURL = "https://aviationweather.gov/api/data"
	DefaultTimeout = 30 * time.Second
)

// conusBBox is the continental US, used for PIREPs when no stations are
// given.
const conusBBox = "25,-125,50,-65"

// Client calls the Data API.
type Client struct {
	baseURL string
	http    *http.Client
	clock   clockwork.Clock
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(c *http.Client) Option { return func(cl *Client) { cl.http = c } }
func WithClock(c clockwork.Clock) Option   { return func(cl *Client) { cl.clock = c } }
func WithLogger(l *slog.Logger) Option     { return func(cl *Client) { cl.logger = l } }

// New returns a client for baseURL. An empty baseURL uses DefaultBaseURL and
// a non-positive timeout uses DefaultTimeout.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		clock:   clockwork.NewRealClock(),
		logger:  observability.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Item is one decoded element of an API response array.
type Item map[string]any

// rawTextFields lists the fields that carry report text, most specific
// first.
var rawTextFields = []string{
	"rawOb", "rawTaf", "rawText", "reportText", "rawSigmet", "rawAirmet", "notamText", "text", "raw",
}

// RawText returns the report text of an item, or "" when it has none.
func RawText(item Item) string {
	for _, field := range rawTextFields {
		if s, ok := item[field].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// get fetches path with params and decodes a JSON array. 204 No Content is
// an empty result.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]Item, error) {
	params.Set("format", "json")
	u := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s API error: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var items []Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}
	c.logger.Debug("weather api fetch", "path", path, "items", len(items))
	return items, nil
}

func (c *Client) texts(ctx context.Context, path string, params url.Values) ([]string, error) {
	items, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := RawText(item); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func stationParams(stations []string, hours int) url.Values {
	params := url.Values{}
	ids := make([]string, 0, len(stations))
	for _, s := range stations {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			ids = append(ids, s)
		}
	}
	params.Set("ids", strings.Join(ids, ","))
	if hours > 0 {
		params.Set("hours", strconv.Itoa(hours))
	}
	return params
}

// METARs returns raw METARs for stations over the last hours.
func (c *Client) METARs(ctx context.Context, stations []string, hours int) ([]string, error) {
	return c.texts(ctx, "/metar", stationParams(stations, hours))
}

// TAFs returns raw TAFs for stations.
func (c *Client) TAFs(ctx context.Context, stations []string) ([]string, error) {
	return c.texts(ctx, "/taf", stationParams(stations, 0))
}

// PIREPs returns pilot reports within radiusNM of stations. With no
// stations it covers the continental US.
func (c *Client) PIREPs(ctx context.Context, stations []string, radiusNM, ageHours int) ([]string, error) {
	params := url.Values{}
	if len(stations) > 0 {
		params = stationParams(stations, 0)
		params.Set("distance", strconv.Itoa(radiusNM))
	} else {
		params.Set("bbox", conusBBox)
	}
	if ageHours > 0 {
		params.Set("age", strconv.Itoa(ageHours))
	}
	return c.texts(ctx, "/pirep", params)
}

// SIGMETs returns international SIGMETs, optionally filtered by hazard.
func (c *Client) SIGMETs(ctx context.Context, hazard string) ([]string, error) {
	params := url.Values{}
	if hazard != "" {
		params.Set("hazard", hazard)
	}
	return c.texts(ctx, "/isigmet", params)
}

// AIRMETs returns domestic AIRMETs, optionally filtered by hazard.
func (c *Client) AIRMETs(ctx context.Context, hazard string) ([]string, error) {
	params := url.Values{}
	if hazard != "" {
		params.Set("hazard", hazard)
	}
	return c.texts(ctx, "/airmet", params)
}

// Bundle is every report kind fetched for a set of stations. A kind whose
// fetch failed is empty and its error is listed in Errors.
type Bundle struct {
	Stations  []string          `json:"stations"`
	METARs    []string          `json:"metars"`
	TAFs      []string          `json:"tafs"`
	PIREPs    []string          `json:"pireps"`
	SIGMETs   []string          `json:"sigmets"`
	AIRMETs   []string          `json:"airmets"`
	Errors    map[string]string `json:"errors,omitempty"`
	FetchedAt time.Time         `json:"fetched_at"`
}

// Comprehensive fetches all kinds for stations concurrently. Individual
// failures are recorded in the bundle rather than returned.
func (c *Client) Comprehensive(ctx context.Context, stations []string) *Bundle {
	b := &Bundle{Stations: dedupeStations(stations)}

	var mu sync.Mutex
	fail := func(kind string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if b.Errors == nil {
			b.Errors = make(map[string]string)
		}
		b.Errors[kind] = err.Error()
		c.logger.Warn("weather api fetch failed", "kind", kind, "error", err)
	}

	fetches := []struct {
		kind string
		dst  *[]string
		fn   func() ([]string, error)
	}{
		{"metar", &b.METARs, func() ([]string, error) { return c.METARs(ctx, b.Stations, 3) }},
		{"taf", &b.TAFs, func() ([]string, error) { return c.TAFs(ctx, b.Stations) }},
		{"pirep", &b.PIREPs, func() ([]string, error) { return c.PIREPs(ctx, b.Stations, 100, 6) }},
		{"sigmet", &b.SIGMETs, func() ([]string, error) { return c.SIGMETs(ctx, "") }},
		{"airmet", &b.AIRMETs, func() ([]string, error) { return c.AIRMETs(ctx, "") }},
	}

	var g errgroup.Group
	for _, f := range fetches {
		f := f
		g.Go(func() error {
			texts, err := f.fn()
			if err != nil {
				fail(f.kind, err)
				return nil
			}
			*f.dst = texts
			return nil
		})
	}
	_ = g.Wait()

	b.FetchedAt = c.clock.Now().UTC()
	return b
}

// Messages converts the bundle into tagged report messages.
func (b *Bundle) Messages() []*report.Message {
	var out []*report.Message
	add := func(kind report.Kind, texts []string) {
		for _, t := range texts {
			out = append(out, &report.Message{
				ID:        report.FlexInt64(len(out) + 1),
				Kind:      kind,
				Text:      t,
				Source:    "aviationweather.gov",
				Timestamp: b.FetchedAt.Format(time.RFC3339),
			})
		}
	}
	add(report.KindMETAR, b.METARs)
	add(report.KindTAF, b.TAFs)
	add(report.KindPIREP, b.PIREPs)
	add(report.KindSIGMET, b.SIGMETs)
	add(report.KindAIRMET, b.AIRMETs)
	return out
}

func dedupeStations(stations []string) []string {
	seen := make(map[string]bool, len(stations))
	out := make([]string, 0, len(stations))
	for _, s := range stations {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
