// Package weather parses METAR, TAF, SIGMET and AIRMET reports into decoded
// records with their flight category and hazard assessment.
package weather

import (
	"fmt"
	"strings"

	"aviation_briefing/internal/registry"
	"aviation_briefing/internal/report"
	wx "aviation_briefing/internal/weather"
)

// MetarResult is a decoded METAR with its flight category and weather
// classification.
type MetarResult struct {
	MsgID          int64             `json:"message_id"`
	Timestamp      string            `json:"timestamp,omitempty"`
	Source         string            `json:"source,omitempty"`
	Observation    wx.Observation    `json:"observation"`
	FlightCategory wx.Category       `json:"flight_category"`
	Assessment     wx.CategoryResult `json:"assessment"`
}

func (r *MetarResult) Kind() report.Kind { return report.KindMETAR }
func (r *MetarResult) MessageID() int64  { return r.MsgID }

func (r *MetarResult) Attributes() registry.Attributes {
	return registry.Attributes{
		Airport:  r.Observation.Station,
		Severity: string(r.Assessment.Category),
		Category: string(r.FlightCategory),
	}
}

// TafResult is a decoded TAF.
type TafResult struct {
	MsgID     int64  `json:"message_id"`
	Timestamp string `json:"timestamp,omitempty"`
	Source    string `json:"source,omitempty"`
	Forecast  wx.TAF `json:"forecast"`
}

func (r *TafResult) Kind() report.Kind { return report.KindTAF }
func (r *TafResult) MessageID() int64  { return r.MsgID }

func (r *TafResult) Attributes() registry.Attributes {
	return registry.Attributes{Airport: r.Forecast.Station}
}

// AdvisoryResult is a decoded SIGMET or AIRMET.
type AdvisoryResult struct {
	MsgID     int64       `json:"message_id"`
	Timestamp string      `json:"timestamp,omitempty"`
	Source    string      `json:"source,omitempty"`
	Advisory  wx.Advisory `json:"advisory"`
}

func (r *AdvisoryResult) Kind() report.Kind {
	if r.Advisory.Kind == wx.KindAIRMET {
		return report.KindAIRMET
	}
	return report.KindSIGMET
}
func (r *AdvisoryResult) MessageID() int64 { return r.MsgID }

func (r *AdvisoryResult) Attributes() registry.Attributes {
	return registry.Attributes{
		Airport:  r.Advisory.Originator,
		Category: strings.Join(r.Advisory.Hazards, ","),
	}
}

func notBlank(text string) bool { return strings.TrimSpace(text) != "" }

func quickCheck(text string) *registry.QuickCheck {
	if notBlank(text) {
		return &registry.QuickCheck{Passed: true}
	}
	return &registry.QuickCheck{Passed: false, Reason: "empty text"}
}

func extractor(name, value string) registry.Extractor {
	return registry.Extractor{Name: name, Matched: value != "", Value: value}
}

// MetarParser parses METAR and SPECI observations.
type MetarParser struct{}

func (p *MetarParser) Name() string         { return "metar" }
func (p *MetarParser) Kinds() []report.Kind { return []report.Kind{report.KindMETAR} }
func (p *MetarParser) Priority() int        { return 10 }

// QuickCheck accepts any non-blank text; tagging already selected the kind.
func (p *MetarParser) QuickCheck(text string) bool { return notBlank(text) }

func (p *MetarParser) Parse(msg *report.Message) registry.Result {
	obs := wx.Decode(msg.Text)
	if obs.Station == "" && obs.Wind == nil && obs.VisibilitySM == nil && len(obs.Clouds) == 0 {
		return nil
	}
	if obs.Station == "" && msg.Airport != "" {
		obs.Station = strings.ToUpper(msg.Airport)
	}

	return &MetarResult{
		MsgID:          int64(msg.ID),
		Timestamp:      msg.Timestamp,
		Source:         msg.Source,
		Observation:    obs,
		FlightCategory: obs.FlightCategory(),
		Assessment:     wx.CategorizeObservation(&obs, msg.Text),
	}
}

// ParseWithTrace implements registry.Traceable.
func (p *MetarParser) ParseWithTrace(msg *report.Message) *registry.TraceResult {
	trace := &registry.TraceResult{ParserName: p.Name(), QuickCheck: quickCheck(msg.Text)}
	if !trace.QuickCheck.Passed {
		return trace
	}

	obs := wx.Decode(msg.Text)
	var wind, vis, ceiling, temp, pressure string
	if obs.Wind != nil {
		wind = fmt.Sprintf("%03d/%d%s", obs.Wind.Direction, obs.Wind.Speed, obs.Wind.Unit)
	}
	if obs.VisibilitySM != nil {
		vis = fmt.Sprintf("%.2fSM", *obs.VisibilitySM)
	}
	if c, ok := obs.CeilingFt(); ok {
		ceiling = fmt.Sprintf("%dft", c)
	}
	if obs.TemperatureC != nil {
		temp = fmt.Sprintf("%dC", *obs.TemperatureC)
	}
	switch {
	case obs.AltimeterInHg != nil:
		pressure = fmt.Sprintf("%.2finHg", *obs.AltimeterInHg)
	case obs.QNH != nil:
		pressure = fmt.Sprintf("%dhPa", *obs.QNH)
	}

	trace.Extractors = []registry.Extractor{
		extractor("station", obs.Station),
		extractor("time", obs.Time),
		extractor("wind", wind),
		extractor("visibility", vis),
		extractor("ceiling", ceiling),
		extractor("temperature", temp),
		extractor("pressure", pressure),
	}
	trace.Matched = p.Parse(msg) != nil
	return trace
}

// TafParser parses terminal aerodrome forecasts.
type TafParser struct{}

func (p *TafParser) Name() string                { return "taf" }
func (p *TafParser) Kinds() []report.Kind        { return []report.Kind{report.KindTAF} }
func (p *TafParser) Priority() int               { return 10 }
func (p *TafParser) QuickCheck(text string) bool { return notBlank(text) }

func (p *TafParser) Parse(msg *report.Message) registry.Result {
	taf := wx.DecodeTAF(msg.Text)
	if taf.Station == "" && len(taf.Groups) == 0 {
		return nil
	}
	if taf.Station == "" && msg.Airport != "" {
		taf.Station = strings.ToUpper(msg.Airport)
	}

	return &TafResult{
		MsgID:     int64(msg.ID),
		Timestamp: msg.Timestamp,
		Source:    msg.Source,
		Forecast:  taf,
	}
}

// ParseWithTrace implements registry.Traceable.
func (p *TafParser) ParseWithTrace(msg *report.Message) *registry.TraceResult {
	trace := &registry.TraceResult{ParserName: p.Name(), QuickCheck: quickCheck(msg.Text)}
	if !trace.QuickCheck.Passed {
		return trace
	}

	taf := wx.DecodeTAF(msg.Text)
	var changes []string
	for _, g := range taf.Groups {
		changes = append(changes, g.Change)
	}
	trace.Extractors = []registry.Extractor{
		extractor("station", taf.Station),
		extractor("issued", taf.Issued),
		extractor("valid", taf.Valid),
		extractor("groups", strings.Join(changes, ",")),
	}
	trace.Matched = p.Parse(msg) != nil
	return trace
}

// AdvisoryParser parses SIGMETs, convective SIGMETs and AIRMETs.
type AdvisoryParser struct{}

func (p *AdvisoryParser) Name() string { return "advisory" }
func (p *AdvisoryParser) Kinds() []report.Kind {
	return []report.Kind{report.KindSIGMET, report.KindAIRMET}
}
func (p *AdvisoryParser) Priority() int               { return 10 }
func (p *AdvisoryParser) QuickCheck(text string) bool { return notBlank(text) }

func (p *AdvisoryParser) decode(msg *report.Message) wx.Advisory {
	if msg.ResolvedKind() == report.KindAIRMET {
		return wx.DecodeAIRMET(msg.Text)
	}
	return wx.DecodeSIGMET(msg.Text)
}

func (p *AdvisoryParser) Parse(msg *report.Message) registry.Result {
	adv := p.decode(msg)
	if adv.ID == "" && adv.ValidTo == "" && len(adv.Hazards) == 0 {
		return nil
	}

	return &AdvisoryResult{
		MsgID:     int64(msg.ID),
		Timestamp: msg.Timestamp,
		Source:    msg.Source,
		Advisory:  adv,
	}
}

// ParseWithTrace implements registry.Traceable.
func (p *AdvisoryParser) ParseWithTrace(msg *report.Message) *registry.TraceResult {
	trace := &registry.TraceResult{ParserName: p.Name(), QuickCheck: quickCheck(msg.Text)}
	if !trace.QuickCheck.Passed {
		return trace
	}

	adv := p.decode(msg)
	var levels string
	if adv.TopFt != nil {
		base := "?"
		if adv.BaseFt != nil {
			base = fmt.Sprint(*adv.BaseFt)
		}
		levels = fmt.Sprintf("%s-%d", base, *adv.TopFt)
	}
	valid := adv.ValidTo
	if adv.ValidFrom != "" {
		valid = adv.ValidFrom + "/" + adv.ValidTo
	}

	trace.Extractors = []registry.Extractor{
		extractor("kind", adv.Kind),
		extractor("id", adv.ID),
		extractor("series", adv.Series),
		extractor("valid", valid),
		extractor("fir", adv.FIR),
		extractor("hazards", strings.Join(adv.Hazards, ",")),
		extractor("levels", levels),
		extractor("movement", adv.Movement),
	}
	trace.Matched = p.Parse(msg) != nil
	return trace
}
