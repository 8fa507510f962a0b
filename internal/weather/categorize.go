package weather

import (
	"fmt"
	"strings"

	"aviation_briefing/internal/patterns"
)

// Category is a flight category derived from visibility and ceiling.
type Category string

const (
	VFR             Category = "VFR"
	MVFR            Category = "MVFR"
	IFR             Category = "IFR"
	LIFR            Category = "LIFR"
	CategoryUnknown Category = "Unknown"
)

// Condition is the overall weather classification.
type Condition string

const (
	ConditionClear       Condition = "Clear"
	ConditionSignificant Condition = "Significant"
	ConditionSevere      Condition = "Severe"
	ConditionUnknown     Condition = "Unknown"
)

// Impact is the flight-impact tier paired with a Condition.
type Impact string

const (
	ImpactMinimal  Impact = "Minimal"
	ImpactModerate Impact = "Moderate"
	ImpactCritical Impact = "Critical"
	ImpactUnknown  Impact = "Unknown"
)

// CategoryResult is the outcome of Categorize. ConditionsPresent and
// SeverityFactors are parallel lists in checklist order.
type CategoryResult struct {
	Category          Condition `json:"category"`
	Explanation       string    `json:"explanation"`
	FlightImpact      Impact    `json:"flight_impact"`
	SeverityFactors   []string  `json:"severity_factors"`
	ConditionsPresent []string  `json:"conditions_present"`
	RawMETAR          string    `json:"raw_metar"`
}

const clearExplanation = "CLEAR weather conditions - no significant weather phenomena affecting flight operations. VFR conditions with good visibility and manageable winds."

// check is one checklist entry. condition is evaluated only when hit
// reports true.
type check struct {
	hit       func(o *Observation) bool
	condition func(o *Observation) string
	factor    string
}

func fixed(s string) func(*Observation) string {
	return func(*Observation) string { return s }
}

func gustKT(o *Observation) int {
	if o.Wind == nil {
		return 0
	}
	return o.Wind.GustKT()
}

func speedKT(o *Observation) int {
	if o.Wind == nil {
		return 0
	}
	return o.Wind.SpeedKT()
}

func visibilityIn(o *Observation, lo, hi float64) bool {
	return o.VisibilitySM != nil && *o.VisibilitySM >= lo && *o.VisibilitySM <= hi
}

var icingTokens = map[string]bool{"ICE": true, "ICG": true, "ICING": true}

func hasIcingToken(o *Observation) bool {
	for _, tok := range patterns.Tokenize(strings.ToUpper(o.Raw)) {
		if tok == "RMK" {
			break
		}
		if icingTokens[tok] {
			return true
		}
	}
	return o.Freezing() && o.HasPhenomenon("FG")
}

var severeChecks = []check{
	{
		hit:       func(o *Observation) bool { return o.Thunderstorm() },
		condition: fixed("Thunderstorms present"),
		factor:    "Electrical activity and severe turbulence risk",
	},
	{
		hit:       func(o *Observation) bool { return gustKT(o) >= 30 },
		condition: fixed("Strong gusting winds (30+ knots)"),
		factor:    "Severe wind gusts affecting aircraft control",
	},
	{
		hit:       func(o *Observation) bool { return o.VisibilitySM != nil && *o.VisibilitySM < 1 },
		condition: fixed("Extremely low visibility (< 1 mile)"),
		factor:    "Visibility below safe minimums for most operations",
	},
	{
		hit: func(o *Observation) bool {
			for _, l := range o.Clouds {
				if (l.Cover == "BKN" || l.Cover == "OVC") && !l.HeightUnknown && l.HeightFt < 300 {
					return true
				}
			}
			return false
		},
		condition: fixed("Extremely low ceiling (< 300 feet)"),
		factor:    "Ceiling below approach minimums",
	},
	{
		hit:       func(o *Observation) bool { return o.Freezing() },
		condition: fixed("Freezing precipitation"),
		factor:    "Severe aircraft icing conditions",
	},
	{
		hit:       func(o *Observation) bool { return o.HasHeavy() },
		condition: fixed("Heavy precipitation"),
		factor:    "Reduced visibility and aircraft performance impact",
	},
	{
		hit:       hasIcingToken,
		condition: fixed("Severe icing conditions"),
		factor:    "Critical aircraft icing hazard",
	},
}

var significantChecks = []check{
	{
		hit:       func(o *Observation) bool { g := gustKT(o); return g >= 20 && g < 30 },
		condition: fixed("Moderate wind gusts (20-29 knots)"),
		factor:    "Increased difficulty in aircraft handling",
	},
	{
		hit:       func(o *Observation) bool { return visibilityIn(o, 1, 3) },
		condition: fixed("Reduced visibility (1-3 miles)"),
		factor:    "IFR conditions requiring instrument approach",
	},
	{
		hit: func(o *Observation) bool {
			c, ok := o.CeilingFt()
			return ok && c >= 300 && c <= 2000
		},
		condition: fixed("Low ceiling (300-2000 feet)"),
		factor:    "Restricted VFR operations",
	},
	{
		hit: func(o *Observation) bool {
			for _, wx := range o.Weather {
				if wx.Intensity == "+" {
					continue
				}
				if wx.Has("RA") || wx.Has("SN") || wx.Has("DZ") || wx.Descriptor == "SH" {
					return true
				}
			}
			return false
		},
		condition: fixed("Light to moderate precipitation"),
		factor:    "Potential visibility reduction",
	},
	{
		hit: func(o *Observation) bool {
			return o.HasPhenomenon("BR") || o.HasPhenomenon("FG") || o.HasPhenomenon("HZ")
		},
		condition: fixed("Visibility restrictions (mist/fog/haze)"),
		factor:    "Reduced visibility conditions",
	},
	{
		hit:       func(o *Observation) bool { return speedKT(o) >= 15 },
		condition: func(o *Observation) string { return fmt.Sprintf("Strong winds (%d knots)", speedKT(o)) },
		factor:    "Challenging crosswind conditions",
	},
}

func runChecks(o *Observation, checks []check) (conditions, factors []string) {
	for _, c := range checks {
		if c.hit(o) {
			conditions = append(conditions, c.condition(o))
			factors = append(factors, c.factor)
		}
	}
	return conditions, factors
}

// Categorize classifies a METAR as Clear, Significant or Severe. The severe
// checklist runs first; any severe hit skips the significant checklist
// entirely. Categorize never panics.
func Categorize(text string) (result CategoryResult) {
	defer func() {
		if r := recover(); r != nil {
			result = CategoryResult{
				Category:          ConditionUnknown,
				Explanation:       fmt.Sprintf("Weather categorization failed: %v", r),
				FlightImpact:      ImpactUnknown,
				SeverityFactors:   []string{"Processing error"},
				ConditionsPresent: []string{},
				RawMETAR:          text,
			}
		}
	}()

	obs := Decode(text)
	return CategorizeObservation(&obs, text)
}

// CategorizeObservation classifies an already decoded observation. raw is
// echoed back as RawMETAR.
func CategorizeObservation(o *Observation, raw string) CategoryResult {
	result := CategoryResult{
		Category:          ConditionClear,
		Explanation:       clearExplanation,
		FlightImpact:      ImpactMinimal,
		SeverityFactors:   []string{},
		ConditionsPresent: []string{},
		RawMETAR:          raw,
	}

	if conds, factors := runChecks(o, severeChecks); len(conds) > 0 {
		result.Category = ConditionSevere
		result.FlightImpact = ImpactCritical
		result.ConditionsPresent = conds
		result.SeverityFactors = factors
		result.Explanation = fmt.Sprintf("SEVERE weather conditions present: %s. Reasons for severe classification: %s.",
			strings.Join(conds, ", "), strings.Join(factors, "; "))
		return result
	}

	if conds, factors := runChecks(o, significantChecks); len(conds) > 0 {
		result.Category = ConditionSignificant
		result.FlightImpact = ImpactModerate
		result.ConditionsPresent = conds
		result.SeverityFactors = factors
		result.Explanation = fmt.Sprintf("SIGNIFICANT weather conditions present: %s. Reasons for significant classification: %s.",
			strings.Join(conds, ", "), strings.Join(factors, "; "))
	}

	return result
}
