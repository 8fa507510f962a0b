// Package summary produces short human-readable summaries of aviation
// reports. A deterministic rule-based summary is always available; a
// generative backend can replace it when one is configured and answers in
// time.
package summary

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"aviation_briefing/internal/notam"
	"aviation_briefing/internal/report"
	"aviation_briefing/internal/weather"
)

// Separator joins the phrases of a single-line summary.
const Separator = " • "

// Fallback returns the rule-based summary of text for kind. It never fails
// and never blocks.
func Fallback(kind report.Kind, text string) string {
	switch kind {
	case report.KindMETAR:
		return weather.Brief(text)
	case report.KindTAF:
		return fallbackTAF(text)
	case report.KindPIREP:
		return fallbackPIREP(text)
	case report.KindSIGMET:
		return fallbackSIGMET(text)
	case report.KindAIRMET:
		return fallbackAIRMET(text)
	case report.KindNOTAM:
		return fallbackNOTAM(text)
	case report.KindUnknown:
		return fallbackGeneric(text)
	}
	return fallbackGeneric(text)
}

// FallbackNotam summarises an extracted NOTAM record.
func FallbackNotam(n *notam.ParsedNotam) string {
	return fallbackNOTAM(FormatNotam(n))
}

// FallbackMany summarises a list of reports of one kind. PIREPs are listed
// individually (up to three); SIGMETs and AIRMETs are counted when there is
// more than one. Other kinds summarise the first report.
func FallbackMany(kind report.Kind, texts []string) string {
	switch kind {
	case report.KindPIREP:
		if len(texts) == 0 {
			return "No pilot reports available"
		}
		lines := make([]string, 0, 3)
		for i, t := range texts {
			if i == 3 {
				break
			}
			lines = append(lines, fmt.Sprintf("PIREP %d: %s", i+1, fallbackPIREP(t)))
		}
		return strings.Join(lines, "\n")
	case report.KindSIGMET:
		switch len(texts) {
		case 0:
			return "No SIGMETs active"
		case 1:
			return fallbackSIGMET(texts[0])
		}
		return fmt.Sprintf("⚠️ %d Active SIGMETs - Significant weather hazards present. Review individual reports for details.", len(texts))
	case report.KindAIRMET:
		switch len(texts) {
		case 0:
			return "No AIRMETs active"
		case 1:
			return fallbackAIRMET(texts[0])
		}
		return fmt.Sprintf("📋 %d Active AIRMETs - Moderate weather conditions. Check individual reports for affected areas.", len(texts))
	case report.KindMETAR:
		if len(texts) == 0 {
			return "No METAR data available"
		}
	case report.KindTAF:
		if len(texts) == 0 {
			return "No TAF data available"
		}
	}
	if len(texts) == 0 {
		return "No reports available"
	}
	return Fallback(kind, texts[0])
}

// TAF.

func fallbackTAF(text string) string {
	taf := weather.DecodeTAF(text)

	parts := []string{"TAF:"}
	if taf.Station != "" {
		parts[0] = "TAF " + taf.Station + ":"
	}

	var tempo, becmg, from bool
	var all weather.Conditions
	for _, g := range taf.Groups {
		switch {
		case strings.HasSuffix(g.Change, weather.ChangeTempo):
			tempo = true
		case g.Change == weather.ChangeBecmg:
			becmg = true
		case g.Change == weather.ChangeFrom:
			from = true
		}
		all.Weather = append(all.Weather, g.Weather...)
		all.Clouds = append(all.Clouds, g.Clouds...)
	}

	if tempo {
		parts = append(parts, "temporary conditions expected")
	}
	if becmg {
		parts = append(parts, "conditions becoming")
	}
	if from {
		parts = append(parts, "changing conditions")
	}
	if all.Thunderstorm() {
		parts = append(parts, "thunderstorms forecast")
	}
	if rain := rainIntensity(all.Weather); rain != "" {
		parts = append(parts, rain)
	}
	if all.HasPhenomenon("SN") {
		parts = append(parts, "snow forecast")
	}
	if all.HasPhenomenon("FG") || all.HasPhenomenon("BR") {
		parts = append(parts, "visibility restrictions")
	}
	switch {
	case hasCover(all.Clouds, "OVC"):
		parts = append(parts, "overcast periods")
	case hasCover(all.Clouds, "BKN"):
		parts = append(parts, "broken cloud layers")
	}

	if len(parts) == 1 {
		return "Forecast conditions available"
	}
	return strings.Join(parts, Separator)
}

// rainIntensity prefers light over heavy when both appear.
func rainIntensity(wx []weather.WeatherToken) string {
	var light, heavy, rain bool
	for _, w := range wx {
		if !w.Has("RA") {
			continue
		}
		rain = true
		switch w.Intensity {
		case "-":
			light = true
		case "+":
			heavy = true
		}
	}
	switch {
	case light:
		return "light rain"
	case heavy:
		return "heavy rain"
	case rain:
		return "rain forecast"
	}
	return ""
}

func hasCover(layers []weather.CloudLayer, cover string) bool {
	for _, l := range layers {
		if l.Cover == cover {
			return true
		}
	}
	return false
}

// PIREP.

func fallbackPIREP(text string) string {
	upper := strings.ToUpper(text)
	r := weather.DecodePIREP(text)

	var parts []string

	turb := r.Turbulence
	if turb == "" && strings.Contains(upper, "TURB") {
		turb = upper
	}
	if turb != "" && !strings.HasPrefix(turb, "NEG") && !strings.Contains(turb, "SMTH") {
		switch weather.Intensity(turb) {
		case "SEV":
			parts = append(parts, "severe turbulence reported")
		case "MOD":
			parts = append(parts, "moderate turbulence")
		default:
			parts = append(parts, "turbulence reported")
		}
	}

	ice := r.Icing
	if ice == "" && (strings.Contains(upper, "ICE") || strings.Contains(upper, "ICING")) {
		ice = upper
	}
	if ice != "" && !strings.HasPrefix(ice, "NEG") {
		switch weather.Intensity(ice) {
		case "SEV":
			parts = append(parts, "severe icing")
		case "MOD":
			parts = append(parts, "moderate icing")
		default:
			parts = append(parts, "icing conditions")
		}
	}

	if strings.Contains(upper, "TOP") || strings.Contains(upper, "BASE") {
		parts = append(parts, "cloud layer info")
	}
	if strings.Contains(upper, "VIS") {
		parts = append(parts, "visibility report")
	}
	if strings.Contains(upper, "SMOOTH") || strings.Contains(upper, "SMTH") || strings.Contains(upper, "NO TURB") || strings.HasPrefix(r.Turbulence, "NEG") {
		parts = append(parts, "smooth flight conditions")
	}
	if r.AltitudeFt != nil {
		parts = append(parts, fmt.Sprintf("at %dft", *r.AltitudeFt))
	}

	if len(parts) == 0 {
		return "Pilot report: " + clip(text, 80) + "..."
	}
	return "Pilot reports: " + strings.Join(parts, Separator)
}

// SIGMET and AIRMET.

func fallbackSIGMET(text string) string {
	a := weather.DecodeSIGMET(text)

	parts := []string{"⚠️ SIGMET"}
	if a.Kind == weather.KindConvectiveSIGMET {
		parts[0] = "⚠️ Convective SIGMET"
	}
	if len(a.Hazards) > 0 {
		parts = append(parts, "Hazards: "+strings.Join(a.Hazards, ", "))
	}
	if a.ValidFrom != "" && a.ValidTo != "" {
		parts = append(parts, fmt.Sprintf("Valid %s-%sZ", a.ValidFrom, a.ValidTo))
	}
	return strings.Join(parts, Separator)
}

var airmetSeries = map[string]string{
	"Sierra": "📋 AIRMET Sierra (IFR/Mountain Obscuration)",
	"Tango":  "📋 AIRMET Tango (Turbulence)",
	"Zulu":   "📋 AIRMET Zulu (Icing)",
}

var airmetConditions = map[string]string{
	"IFR":                  "reduced visibility",
	"turbulence":           "moderate turbulence",
	"severe turbulence":    "moderate turbulence",
	"icing":                "icing conditions",
	"surface winds":        "surface winds",
	"mountain obscuration": "mountain obscuration",
}

func fallbackAIRMET(text string) string {
	a := weather.DecodeAIRMET(text)

	header, ok := airmetSeries[a.Series]
	if !ok {
		header = "📋 AIRMET"
	}
	parts := []string{header}

	var conds []string
	for _, h := range a.Hazards {
		if c, ok := airmetConditions[h]; ok {
			conds = append(conds, c)
		}
	}
	if len(conds) > 0 {
		parts = append(parts, "Conditions: "+strings.Join(conds, ", "))
	}
	if a.BaseFt != nil && a.TopFt != nil {
		parts = append(parts, fmt.Sprintf("%d-%dft", *a.BaseFt, *a.TopFt))
	}
	return strings.Join(parts, Separator)
}

// NOTAM.

// FormatNotam renders an extracted record as the sentence form the NOTAM
// summary works from.
func FormatNotam(n *notam.ParsedNotam) string {
	var parts []string
	if n.Severity != "" {
		parts = append(parts, "Severity: "+string(n.Severity))
	}
	if n.Category != "" {
		parts = append(parts, "Category: "+string(n.Category))
	}
	if n.Description != "" {
		parts = append(parts, "Description: "+n.Description)
	}
	if len(n.AffectedFacilities) > 0 {
		facilities := make([]string, len(n.AffectedFacilities))
		for i, f := range n.AffectedFacilities {
			facilities[i] = f.Type + " " + f.Identifier
		}
		parts = append(parts, "Affected: "+strings.Join(facilities, ", "))
	}
	if n.Impact.Type != "" {
		parts = append(parts, "Impact: "+string(n.Impact.Type))
	}
	return strings.Join(parts, ". ")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func fallbackNOTAM(text string) string {
	lower := strings.ToLower(text)
	var parts []string

	if containsAny(lower, "runway", "rwy") {
		switch {
		case strings.Contains(lower, "closed") || strings.Contains(lower, "clsd"):
			parts = append(parts, "Runway closure")
		case strings.Contains(lower, "construction"):
			parts = append(parts, "Runway construction")
		default:
			parts = append(parts, "Runway NOTAM")
		}
	}
	if containsAny(lower, "taxiway", "twy") {
		parts = append(parts, "Taxiway restrictions")
	}
	if containsAny(lower, "approach", "ils", "vor") {
		parts = append(parts, "Navigation/approach changes")
	}
	if containsAny(lower, "lighting", "lgt") {
		parts = append(parts, "Lighting issues")
	}
	if containsAny(lower, "fuel", "service") {
		parts = append(parts, "Service limitations")
	}
	if containsAny(lower, "frequency", "freq") {
		parts = append(parts, "Frequency changes")
	}

	switch {
	case containsAny(lower, "closed", "clsd", "unavailable", "u/s", "emergency"):
		parts = append(parts, "[HIGH IMPACT]")
	case containsAny(lower, "restricted", "caution", "limited"):
		parts = append(parts, "[MODERATE IMPACT]")
	}

	if len(parts) > 0 {
		return "NOTAM: " + strings.Join(parts, ", ")
	}

	for _, sentence := range strings.Split(text, ".") {
		if s := strings.TrimSpace(sentence); len(s) > 20 {
			return "NOTAM: " + clip(s, 100) + "..."
		}
	}
	return "NOTAM requires pilot review: " + clip(text, 50) + "..."
}

// Generic.

var phenomenonNames = []struct{ code, name string }{
	{"RA", "rain"},
	{"SN", "snow"},
	{"FG", "fog"},
	{"TS", "thunderstorms"},
	{"BR", "mist"},
	{"DZ", "drizzle"},
	{"FZ", "freezing conditions"},
	{"VC", "in the vicinity"},
	{"SH", "showers"},
	{"DR", "drifting"},
	{"BL", "blowing"},
	{"SQ", "squalls"},
	{"PO", "dust/sand whirls"},
	{"SS", "sandstorm"},
	{"DS", "duststorm"},
	{"GR", "hail"},
	{"GS", "small hail/snow pellets"},
	{"UP", "unknown precipitation"},
	{"VA", "volcanic ash"},
}

func hasWeatherCode(wx []weather.WeatherToken, code string) bool {
	for _, w := range wx {
		if w.Intensity == code || w.Descriptor == code || w.Has(code) {
			return true
		}
	}
	return false
}

// roughCategory is the flight category with a missing ceiling read as
// unlimited, so a clear-sky report still rates VFR.
func roughCategory(o *weather.Observation) string {
	if o.VisibilitySM == nil {
		return ""
	}
	vis := *o.VisibilitySM
	ceiling, ok := o.CeilingFt()
	if !ok {
		ceiling = 99999
	}
	switch {
	case vis >= 5 && ceiling >= 3000:
		return "VFR conditions"
	case vis >= 3 && ceiling >= 1000:
		return "MVFR conditions"
	}
	return "IFR conditions"
}

func fallbackGeneric(text string) string {
	obs := weather.Decode(text)
	var points []string

	if c := roughCategory(&obs); c != "" {
		points = append(points, c)
	}
	for _, p := range phenomenonNames {
		if hasWeatherCode(obs.Weather, p.code) {
			points = append(points, p.name)
		}
	}

	if w := obs.Wind; w != nil {
		speed, gust := w.SpeedKT(), w.GustKT()
		switch {
		case speed > 20 || gust > 25:
			points = append(points, "strong winds")
		case speed > 10:
			points = append(points, "moderate winds")
		}
		switch {
		case w.Calm():
			points = append(points, "Calm winds")
		case w.Variable:
			points = append(points, fmt.Sprintf("Variable winds at %d knots", speed))
		default:
			desc := fmt.Sprintf("Wind from %03d° at %d knots", w.Direction, speed)
			if w.Gust > 0 {
				desc += fmt.Sprintf(", gusting to %d knots", gust)
			}
			points = append(points, desc)
		}
	}

	if obs.TemperatureC != nil {
		points = append(points, fmt.Sprintf("Temp %d°C", *obs.TemperatureC))
	}

	if len(points) == 0 {
		return "Weather conditions require pilot review"
	}
	return "Weather: " + strings.Join(dedupe(points), ", ")
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// clip cuts s to at most n bytes without splitting a rune.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
