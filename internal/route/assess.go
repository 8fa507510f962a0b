// Package route turns per-station observations and active hazards into a
// go/no-go recommendation.
package route

import (
	"fmt"
	"sort"

	"aviation_briefing/internal/weather"
)

// Status is the overall go/no-go outcome.
type Status string

const (
	StatusGo      Status = "GO"
	StatusCaution Status = "CAUTION"
	StatusNoGo    Status = "NO-GO"
	StatusUnknown Status = "UNKNOWN"
)

// Confidence qualifies a Status.
type Confidence string

const (
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

// Hazards holds the raw advisories active along the route. Only whether
// each list is empty affects the score.
type Hazards struct {
	SIGMETs []string `json:"sigmets"`
	AIRMETs []string `json:"airmets"`
}

// Assessment is the go/no-go recommendation for a route.
type Assessment struct {
	OverallStatus   Status     `json:"overall_status"`
	Confidence      Confidence `json:"confidence"`
	RiskFactors     []string   `json:"risk_factors"`
	Recommendations []string   `json:"recommendations"`
	SeverityScore   int        `json:"severity_score"`
}

// Score weights.
const (
	severeWeatherPoints = 3
	ifrPoints           = 1
	strongWindPoints    = 2
	sigmetPoints        = 2
	airmetPoints        = 1
)

func severeWeather(o *weather.Observation) bool {
	if o.Thunderstorm() {
		return true
	}
	for _, wx := range o.Weather {
		if wx.Descriptor == "FZ" && wx.Has("RA") {
			return true
		}
		if wx.Intensity == "+" && wx.Has("SN") {
			return true
		}
	}
	return false
}

func ifrConditions(o *weather.Observation) bool {
	if o.VisibilitySM != nil && *o.VisibilitySM < 3 {
		return true
	}
	ceiling, ok := o.CeilingFt()
	return ok && ceiling < 1000
}

func strongWinds(o *weather.Observation) bool {
	return o.Wind != nil && (o.Wind.SpeedKT() > 25 || o.Wind.GustKT() > 35)
}

// Assess scores each station's METAR and the active hazards. Stations are
// visited in sorted ID order so the risk factors are deterministic. Assess
// never panics; an internal failure yields an UNKNOWN assessment that asks
// for a manual review.
func Assess(stations map[string]string, hazards Hazards) (a Assessment) {
	defer func() {
		if r := recover(); r != nil {
			a = Assessment{
				OverallStatus:   StatusUnknown,
				Confidence:      ConfidenceLow,
				RiskFactors:     []string{"Assessment error"},
				Recommendations: []string{"Manual weather review required"},
				SeverityScore:   5,
			}
		}
	}()

	a = Assessment{RiskFactors: []string{}, Recommendations: []string{}}

	ids := make([]string, 0, len(stations))
	for id := range stations {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		obs := weather.Decode(stations[id])

		if severeWeather(&obs) {
			a.RiskFactors = append(a.RiskFactors, fmt.Sprintf("%s: Severe weather", id))
			a.SeverityScore += severeWeatherPoints
		}
		if ifrConditions(&obs) {
			a.RiskFactors = append(a.RiskFactors, fmt.Sprintf("%s: IFR conditions", id))
			a.SeverityScore += ifrPoints
		}
		if strongWinds(&obs) {
			a.RiskFactors = append(a.RiskFactors, fmt.Sprintf("%s: Strong winds", id))
			a.SeverityScore += strongWindPoints
		}
	}

	if len(hazards.SIGMETs) > 0 {
		a.RiskFactors = append(a.RiskFactors, "Active SIGMETs")
		a.SeverityScore += sigmetPoints
	}
	if len(hazards.AIRMETs) > 0 {
		a.RiskFactors = append(a.RiskFactors, "Active AIRMETs")
		a.SeverityScore += airmetPoints
	}

	switch {
	case a.SeverityScore >= 7:
		a.OverallStatus, a.Confidence = StatusNoGo, ConfidenceHigh
		a.Recommendations = append(a.Recommendations, "Do not attempt flight - severe conditions")
	case a.SeverityScore >= 4:
		a.OverallStatus, a.Confidence = StatusCaution, ConfidenceMedium
		a.Recommendations = append(a.Recommendations, "Exercise extreme caution - consider alternate plans")
	case a.SeverityScore >= 2:
		a.OverallStatus, a.Confidence = StatusGo, ConfidenceMedium
		a.Recommendations = append(a.Recommendations, "Proceed with caution - monitor conditions")
	default:
		a.OverallStatus, a.Confidence = StatusGo, ConfidenceHigh
		a.Recommendations = append(a.Recommendations, "Good conditions for flight")
	}

	return a
}
