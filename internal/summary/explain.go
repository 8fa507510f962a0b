package summary

import (
	"context"
	"fmt"
	"strings"

	"aviation_briefing/internal/patterns"
	"aviation_briefing/internal/weather"
)

var coverNames = map[string]string{
	"FEW": "Few clouds",
	"SCT": "Scattered clouds",
	"BKN": "Broken clouds",
	"OVC": "Overcast",
	"VV":  "Vertical visibility",
}

var explainWeather = []struct{ code, name string }{
	{"RA", "rain"},
	{"SN", "snow"},
	{"FG", "fog"},
	{"BR", "mist"},
	{"TS", "thunderstorms"},
	{"DZ", "drizzle"},
	{"FZ", "freezing"},
	{"SH", "showers"},
	{"BL", "blowing"},
	{"DR", "drifting"},
}

func hasToken(text, want string) bool {
	for _, tok := range patterns.Tokenize(strings.ToUpper(text)) {
		if tok == want {
			return true
		}
	}
	return false
}

func formatMiles(v float64) string {
	if v == float64(int(v)) {
		return fmt.Sprintf("%d", int(v))
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

// ExplainMETAR renders a METAR as plain-English sentences.
func ExplainMETAR(text string) string {
	obs := weather.Decode(text)
	var parts []string

	if obs.Station != "" {
		parts = append(parts, "Weather report for "+obs.Station)
	}
	if len(obs.Time) == 7 {
		parts = append(parts, fmt.Sprintf("observed on day %s at %s:%s UTC", obs.Time[:2], obs.Time[2:4], obs.Time[4:6]))
	}

	if w := obs.Wind; w != nil {
		switch {
		case w.Calm():
			parts = append(parts, "Calm winds")
		case w.Variable:
			parts = append(parts, fmt.Sprintf("Variable winds at %d knots", w.SpeedKT()))
		default:
			desc := fmt.Sprintf("Wind from %03d° at %d knots", w.Direction, w.SpeedKT())
			if w.Gust > 0 {
				desc += fmt.Sprintf(", gusting to %d knots", w.GustKT())
			}
			parts = append(parts, desc)
		}
	}

	if obs.VisibilitySM != nil {
		if obs.CAVOK || hasToken(text, "P6SM") || hasToken(text, "9999") {
			parts = append(parts, "Visibility greater than 6 miles")
		} else {
			parts = append(parts, "Visibility "+formatMiles(*obs.VisibilitySM)+" miles")
		}
	}

	var clouds []string
	for _, l := range obs.Clouds {
		name, ok := coverNames[l.Cover]
		if !ok {
			clouds = append(clouds, "Clear skies")
			continue
		}
		if l.HeightFt > 0 {
			name += fmt.Sprintf(" at %d feet", l.HeightFt)
		}
		clouds = append(clouds, name)
	}
	if len(clouds) > 0 {
		parts = append(parts, strings.Join(dedupe(clouds), ", "))
	}

	if t := obs.TemperatureC; t != nil {
		if d := obs.DewpointC; d != nil {
			parts = append(parts, fmt.Sprintf("Temperature %d°C, dewpoint %d°C", *t, *d))
		} else {
			parts = append(parts, fmt.Sprintf("Temperature %d°C", *t))
		}
	}

	switch {
	case obs.AltimeterInHg != nil:
		parts = append(parts, fmt.Sprintf("Barometric pressure %.2f inHg", *obs.AltimeterInHg))
	case obs.QNH != nil:
		parts = append(parts, fmt.Sprintf("Barometric pressure %d hPa", *obs.QNH))
	}

	for _, w := range explainWeather {
		if hasWeatherCode(obs.Weather, w.code) {
			parts = append(parts, "Current weather: "+w.name)
			break
		}
	}

	if len(parts) == 0 {
		return "Raw METAR: " + text
	}
	return strings.Join(parts, ". ") + "."
}

// Explain is ExplainMETAR with a backend-written overview placed in front
// of the detailed explanation when a backend is available.
func (s *Summarizer) Explain(ctx context.Context, text string) string {
	full := ExplainMETAR(text)
	if strings.HasPrefix(full, "Raw METAR: ") {
		return full
	}
	if ai, ok := s.complete(ctx, "Weather report: "+full+" Summarize flight conditions.", 150, 30); ok {
		return ai + "\n\nDetailed: " + full
	}
	return full
}
