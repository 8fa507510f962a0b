package weather

import (
	"regexp"
	"strconv"
	"strings"
)

// PilotReport is a decoded PIREP. Fields hold the text of their slash group.
type PilotReport struct {
	Urgent       bool   `json:"urgent,omitempty"`
	Location     string `json:"location,omitempty"`
	Time         string `json:"time,omitempty"`
	AltitudeFt   *int   `json:"altitude_ft,omitempty"`
	AircraftType string `json:"aircraft_type,omitempty"`
	Sky          string `json:"sky,omitempty"`
	Weather      string `json:"weather,omitempty"`
	TemperatureC *int   `json:"temperature_c,omitempty"`
	Wind         string `json:"wind,omitempty"`
	Turbulence   string `json:"turbulence,omitempty"`
	Icing        string `json:"icing,omitempty"`
	Remarks      string `json:"remarks,omitempty"`
	Raw          string `json:"raw"`
}

var (
	pirepGroupRe = regexp.MustCompile(`/(OV|TM|FL|TP|SK|WX|TA|WV|TB|IC|RM)\s*`)
	pirepTypeRe  = regexp.MustCompile(`\b(UUA|UA)\b`)
	pirepFLRe    = regexp.MustCompile(`^(\d{3})`)
	pirepTempRe  = regexp.MustCompile(`^(M|-)?(\d{1,2})\b`)
)

// DecodePIREP splits a PIREP into its slash groups. Unknown or missing
// groups are left empty.
func DecodePIREP(text string) PilotReport {
	upper := strings.ToUpper(text)
	r := PilotReport{Raw: strings.TrimSpace(text)}

	if m := pirepTypeRe.FindStringSubmatch(upper); m != nil {
		r.Urgent = m[1] == "UUA"
	}

	locs := pirepGroupRe.FindAllStringSubmatchIndex(upper, -1)
	for i, loc := range locs {
		end := len(upper)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		value := strings.TrimSpace(upper[loc[1]:end])

		switch upper[loc[2]:loc[3]] {
		case "OV":
			r.Location = value
		case "TM":
			r.Time = value
		case "FL":
			if m := pirepFLRe.FindStringSubmatch(value); m != nil {
				r.AltitudeFt = feet(m[1])
			}
		case "TP":
			r.AircraftType = value
		case "SK":
			r.Sky = value
		case "WX":
			r.Weather = value
		case "TA":
			if m := pirepTempRe.FindStringSubmatch(value); m != nil {
				t, _ := strconv.Atoi(m[2])
				if m[1] != "" {
					t = -t
				}
				r.TemperatureC = &t
			}
		case "WV":
			r.Wind = value
		case "TB":
			r.Turbulence = value
		case "IC":
			r.Icing = value
		case "RM":
			r.Remarks = value
		}
	}

	return r
}

// Intensity returns the strongest SEV/MOD/LGT qualifier in s, or "".
func Intensity(s string) string {
	switch {
	case strings.Contains(s, "SEV") || strings.Contains(s, "EXTRM"):
		return "SEV"
	case strings.Contains(s, "MOD"):
		return "MOD"
	case strings.Contains(s, "LGT") || strings.Contains(s, "LIGHT"):
		return "LGT"
	}
	return ""
}
