package route

import (
	"strconv"
	"strings"

	"aviation_briefing/internal/weather"
)

// DefaultAltitudeFt is used when a cruise altitude cannot be parsed.
const DefaultAltitudeFt = 10000

// AirportAnalysis is the categorised weather at one end of the route.
type AirportAnalysis struct {
	Airport      string            `json:"airport"`
	Category     weather.Condition `json:"category"`
	Explanation  string            `json:"explanation"`
	FlightImpact weather.Impact    `json:"flight_impact"`
	METARSummary string            `json:"metar_summary,omitempty"`
}

// AltitudeBand describes what to watch for at a cruise altitude.
type AltitudeBand struct {
	Level          string   `json:"level"`
	Considerations []string `json:"considerations"`
	WeatherFactors []string `json:"weather_factors"`
	FlightImpact   string   `json:"flight_impact"`
}

// Overall is the worst-case roll-up of departure and arrival.
type Overall struct {
	Category        string `json:"category"`
	Impact          string `json:"impact"`
	DepartureStatus string `json:"departure_status"`
	ArrivalStatus   string `json:"arrival_status"`
	RouteStatus     string `json:"route_status"`
}

// RouteSummary is the departure/arrival/altitude weather summary.
type RouteSummary struct {
	Route                 string          `json:"route"`
	Altitude              string          `json:"altitude"`
	Departure             AirportAnalysis `json:"departure_analysis"`
	Arrival               AirportAnalysis `json:"arrival_analysis"`
	AltitudeInfo          AltitudeBand    `json:"altitude_info"`
	EnrouteConsiderations string          `json:"enroute_considerations"`
	Overall               Overall         `json:"overall_assessment"`
	Recommendations       []string        `json:"recommendations"`
}

var (
	highAltitude = AltitudeBand{
		Level: "High Altitude",
		Considerations: []string{
			"Monitor jet stream winds and clear air turbulence",
			"Potential for severe turbulence in jet stream areas",
			"Temperature inversions and wind shear possible",
			"Reduced oxygen - pressurization critical",
		},
		WeatherFactors: []string{"Jet stream effects", "CAT risk", "Wind patterns"},
		FlightImpact:   "Monitor winds aloft forecasts and turbulence reports",
	}
	mediumAltitude = AltitudeBand{
		Level: "Medium Altitude",
		Considerations: []string{
			"Transition between surface and high-level weather systems",
			"Potential for moderate turbulence",
			"Cloud layers and icing conditions possible",
			"Weather system interactions",
		},
		WeatherFactors: []string{"Cloud layers", "Moderate turbulence", "Icing potential"},
		FlightImpact:   "Monitor pireps and weather system movement",
	}
	lowAltitude = AltitudeBand{
		Level: "Low Altitude",
		Considerations: []string{
			"Surface weather strongly influences flight conditions",
			"Terrain effects on winds and weather",
			"Local weather phenomena impact",
			"Visibility and ceiling restrictions critical",
		},
		WeatherFactors: []string{"Surface weather", "Terrain effects", "Local phenomena"},
		FlightImpact:   "Surface weather conditions are primary concern",
	}
)

// BandFor returns the altitude band for a cruise altitude in feet.
func BandFor(feet int) AltitudeBand {
	switch {
	case feet >= 18000:
		return highAltitude
	case feet >= 10000:
		return mediumAltitude
	default:
		return lowAltitude
	}
}

// ParseAltitude accepts "FL350", "35000FT" or "8500" and returns feet.
// Anything else yields DefaultAltitudeFt.
func ParseAltitude(s string) int {
	s = strings.ToUpper(strings.ReplaceAll(s, " ", ""))

	var digits string
	var scale int
	switch {
	case strings.HasPrefix(s, "FL"):
		digits, scale = s[2:], 100
	case strings.HasSuffix(s, "FT"):
		digits, scale = s[:len(s)-2], 1
	default:
		digits, scale = s, 1
	}

	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return DefaultAltitudeFt
	}
	return n * scale
}

func analyse(airport, metar, missing string) AirportAnalysis {
	if strings.TrimSpace(metar) == "" {
		return AirportAnalysis{
			Airport:      airport,
			Category:     weather.ConditionUnknown,
			Explanation:  missing,
			FlightImpact: weather.ImpactUnknown,
		}
	}
	result := weather.Categorize(metar)
	return AirportAnalysis{
		Airport:      airport,
		Category:     result.Category,
		Explanation:  result.Explanation,
		FlightImpact: result.FlightImpact,
		METARSummary: weather.Brief(metar),
	}
}

// Summarize categorises departure and arrival weather, analyses the cruise
// altitude band and rolls everything up to the worst case.
func Summarize(departure, arrival, altitude, depMETAR, arrMETAR string) RouteSummary {
	s := RouteSummary{
		Route:     departure + " → " + arrival,
		Altitude:  altitude,
		Departure: analyse(departure, depMETAR, "Current weather data required for analysis"),
		Arrival:   analyse(arrival, arrMETAR, "Forecast weather data recommended for analysis"),
	}

	band := BandFor(ParseAltitude(altitude))
	s.AltitudeInfo = band
	s.EnrouteConsiderations = "Flight at " + altitude + " (" + band.Level + ")"

	dep, arr := s.Departure.Category, s.Arrival.Category
	var category, impact string
	switch {
	case dep == weather.ConditionSevere || arr == weather.ConditionSevere:
		category, impact = "Severe", "Critical - Flight operations significantly impacted"
	case dep == weather.ConditionSignificant || arr == weather.ConditionSignificant:
		category, impact = "Significant", "Moderate - Enhanced planning and monitoring required"
	case dep == weather.ConditionClear && arr == weather.ConditionClear:
		category, impact = "Clear", "Minimal - Standard flight operations"
	default:
		category, impact = "Assessment Required", "Weather data needed for proper assessment"
	}
	s.Overall = Overall{
		Category:        category,
		Impact:          impact,
		DepartureStatus: departure + ": " + string(dep),
		ArrivalStatus:   arrival + ": " + string(arr),
		RouteStatus:     "Altitude: " + altitude + " - " + band.Level,
	}

	switch category {
	case "Severe":
		s.Recommendations = []string{
			"Consider delaying or canceling flight due to severe weather conditions",
			"If proceeding, ensure alternate airports and extra fuel",
			"Monitor weather updates continuously",
			"Brief passengers on potential severe turbulence",
		}
	case "Significant":
		s.Recommendations = []string{
			"File IFR flight plan as backup even for VFR flight",
			"Monitor weather conditions and have alternate plans",
			"Brief crew and passengers on weather conditions",
			"Ensure adequate fuel for possible diversions",
		}
	default:
		s.Recommendations = []string{
			"Standard flight planning procedures apply",
			"Monitor routine weather updates",
			"Standard fuel and alternate planning",
		}
	}
	s.Recommendations = append(s.Recommendations, band.Considerations[:2]...)

	return s
}
