package weather

import (
	"regexp"
	"strconv"
	"strings"

	"aviation_briefing/internal/patterns"
)

// Observation is a decoded METAR or SPECI.
type Observation struct {
	Station string `json:"station,omitempty"`
	Time    string `json:"time,omitempty"`
	Conditions
	TemperatureC  *int     `json:"temperature_c,omitempty"`
	DewpointC     *int     `json:"dewpoint_c,omitempty"`
	AltimeterInHg *float64 `json:"altimeter_inhg,omitempty"`
	QNH           *int     `json:"qnh_hpa,omitempty"`
	Remarks       string   `json:"remarks,omitempty"`
	Raw           string   `json:"raw"`
}

var (
	stationRe   = regexp.MustCompile(`^[A-Z][A-Z0-9]{3}$`)
	obsTimeRe   = regexp.MustCompile(`^\d{6}Z$`)
	tempRe      = regexp.MustCompile(`^(M?\d{2})/(M?\d{2})?$`)
	altimeterRe = regexp.MustCompile(`^([QA])(\d{4})$`)
)

var reportKeywords = map[string]bool{
	"METAR": true, "SPECI": true, "COR": true, "AUTO": true, "NIL": true,
}

// Decode decodes a METAR token by token. Unrecognised tokens are skipped
// and decoding stops at RMK. Decode never fails; fields it cannot find are
// left nil or empty.
func Decode(text string) Observation {
	obs := Observation{Raw: strings.TrimSpace(text)}
	tokens := patterns.Tokenize(strings.ToUpper(text))

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		if tok == "RMK" {
			obs.Remarks = strings.Join(tokens[i+1:], " ")
			break
		}
		if reportKeywords[tok] {
			continue
		}

		// Station: a four-character location indicator directly before the
		// observation time, or directly after the report type.
		if obs.Station == "" && obs.Time == "" && stationRe.MatchString(tok) &&
			((i+1 < len(tokens) && obsTimeRe.MatchString(tokens[i+1])) ||
				(i > 0 && (tokens[i-1] == "METAR" || tokens[i-1] == "SPECI"))) {
			obs.Station = tok
			continue
		}
		if obs.Time == "" && obsTimeRe.MatchString(tok) {
			obs.Time = tok
			continue
		}

		if n := obs.decodeToken(tokens, i); n > 0 {
			i += n - 1
			continue
		}

		// Temperature/dewpoint.
		if m := tempRe.FindStringSubmatch(tok); m != nil && obs.TemperatureC == nil {
			t := parseTemp(m[1])
			obs.TemperatureC = &t
			if m[2] != "" {
				d := parseTemp(m[2])
				obs.DewpointC = &d
			}
			continue
		}

		// Altimeter.
		if m := altimeterRe.FindStringSubmatch(tok); m != nil {
			n, _ := strconv.Atoi(m[2])
			if m[1] == "A" {
				inHg := float64(n) / 100
				obs.AltimeterInHg = &inHg
			} else {
				obs.QNH = &n
			}
		}
	}

	return obs
}

// parseTemp converts a temperature group (e.g. "M05" or "12") to an int.
func parseTemp(s string) int {
	neg := strings.HasPrefix(s, "M")
	val, _ := strconv.Atoi(strings.TrimPrefix(s, "M"))
	if neg {
		val = -val
	}
	return val
}

// FlightCategory decodes text and returns its flight category.
func FlightCategory(text string) Category {
	obs := Decode(text)
	return obs.FlightCategory()
}
