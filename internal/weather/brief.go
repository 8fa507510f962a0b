package weather

import (
	"fmt"
	"strings"
)

// weatherNames lists the codes Brief reports, in output order.
var weatherNames = []struct{ code, name string }{
	{"RA", "Rain"},
	{"SN", "Snow"},
	{"FG", "Fog"},
	{"BR", "Mist"},
	{"TS", "Thunderstorms"},
	{"DZ", "Drizzle"},
	{"SH", "Showers"},
	{"FZ", "Freezing conditions"},
	{"BL", "Blowing"},
	{"GR", "Hail"},
}

func (c *Conditions) hasCode(code string) bool {
	return c.HasDescriptor(code) || c.HasPhenomenon(code)
}

// Names returns the plain-English names of the reported weather codes.
func (c *Conditions) Names() []string {
	var names []string
	for _, w := range weatherNames {
		if c.hasCode(w.code) {
			names = append(names, w.name)
		}
	}
	return names
}

func describeWind(w *Wind) string {
	switch {
	case w.Calm():
		return "CALM"
	case w.Variable:
		return fmt.Sprintf("Variable at %dkt", w.SpeedKT())
	}
	s := fmt.Sprintf("%03d° at %dkt", w.Direction, w.SpeedKT())
	if w.Gust > 0 {
		s += fmt.Sprintf(" gusting %dkt", w.GustKT())
	}
	return s
}

// Brief renders a METAR as the eight-line pilot summary: station, flight
// category, visibility and ceiling, winds, weather, temperature and
// pressure, cautions and a recommendation.
func Brief(text string) string {
	obs := Decode(text)
	var lines []string

	if obs.Station != "" && len(obs.Time) == 7 {
		lines = append(lines, fmt.Sprintf("STATION: %s at %s:%sZ", obs.Station, obs.Time[2:4], obs.Time[4:6]))
	}

	category := obs.FlightCategory()
	lines = append(lines, "FLIGHT CATEGORY: "+string(category))

	vis, ceil := "Unknown", "Unlimited/High"
	if obs.VisibilitySM != nil {
		vis = fmt.Sprintf("%.0fSM", *obs.VisibilitySM)
	}
	ceiling, hasCeiling := obs.CeilingFt()
	if hasCeiling {
		ceil = fmt.Sprintf("%dft", ceiling)
	}
	lines = append(lines, fmt.Sprintf("VISIBILITY: %s | CEILING: %s", vis, ceil))

	if obs.Wind != nil {
		lines = append(lines, "WINDS: "+describeWind(obs.Wind))
	}

	if names := obs.Names(); len(names) > 0 {
		lines = append(lines, "WEATHER: "+strings.Join(names, ", "))
	} else {
		lines = append(lines, "WEATHER: Clear of significant phenomena")
	}

	if obs.TemperatureC != nil {
		line := fmt.Sprintf("TEMP: %d°C", *obs.TemperatureC)
		if obs.DewpointC != nil {
			line += fmt.Sprintf(" | DEWPOINT: %d°C", *obs.DewpointC)
		}
		switch {
		case obs.AltimeterInHg != nil:
			line += fmt.Sprintf(" | ALTIMETER: %.2f inHg", *obs.AltimeterInHg)
		case obs.QNH != nil:
			line += fmt.Sprintf(" | QNH: %d hPa", *obs.QNH)
		}
		lines = append(lines, line)
	}

	var cautions []string
	if category == IFR || category == LIFR {
		cautions = append(cautions, "Instrument conditions")
	}
	if obs.VisibilitySM != nil && *obs.VisibilitySM < 3 {
		cautions = append(cautions, "Reduced visibility")
	}
	if hasCeiling && ceiling < 1000 {
		cautions = append(cautions, "Low ceiling")
	}
	if obs.Wind != nil && (obs.Wind.SpeedKT() > 15 || obs.Wind.Gust > 0) {
		cautions = append(cautions, "Strong/gusty winds")
	}
	if obs.Thunderstorm() || obs.HasPhenomenon("FG") || obs.HasPhenomenon("SN") || obs.Freezing() {
		cautions = append(cautions, "Adverse weather")
	}
	if len(cautions) > 0 {
		lines = append(lines, "CAUTIONS: "+strings.Join(cautions, ", "))
	} else {
		lines = append(lines, "ASSESSMENT: Favorable flying conditions")
	}

	switch category {
	case VFR:
		lines = append(lines, "RECOMMENDATION: VFR flight operations suitable")
	case MVFR:
		lines = append(lines, "RECOMMENDATION: Monitor conditions, consider IFR procedures")
	case IFR, LIFR:
		lines = append(lines, "RECOMMENDATION: IFR procedures required, consider delays")
	default:
		lines = append(lines, "RECOMMENDATION: Review current conditions carefully")
	}

	return strings.Join(lines, "\n")
}
