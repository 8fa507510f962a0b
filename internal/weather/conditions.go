// Package weather decodes METAR, TAF, SIGMET and AIRMET text and classifies
// the observed conditions for flight planning.
package weather

import (
	"regexp"
	"strconv"
)

const metresPerStatuteMile = 1609.0

// Wind is a decoded surface wind group. Speed and Gust are in Unit.
type Wind struct {
	Direction int    `json:"direction"`
	Variable  bool   `json:"variable,omitempty"`
	Speed     int    `json:"speed"`
	Gust      int    `json:"gust,omitempty"`
	Unit      string `json:"unit"`
}

func toKnots(v int, unit string) int {
	switch unit {
	case "MPS":
		return int(float64(v) * 1.944)
	case "KMH":
		return int(float64(v) / 1.852)
	}
	return v
}

// SpeedKT returns the sustained speed in knots.
func (w *Wind) SpeedKT() int { return toKnots(w.Speed, w.Unit) }

// GustKT returns the gust speed in knots, or 0 when no gust was reported.
func (w *Wind) GustKT() int { return toKnots(w.Gust, w.Unit) }

// Calm reports a 00000KT wind.
func (w *Wind) Calm() bool { return w.Speed == 0 && w.Gust == 0 }

// WeatherToken is one present-weather group such as +TSRA or VCSH.
type WeatherToken struct {
	Raw        string   `json:"raw"`
	Intensity  string   `json:"intensity,omitempty"` // "-", "+" or "VC"
	Descriptor string   `json:"descriptor,omitempty"`
	Phenomena  []string `json:"phenomena,omitempty"`
}

// Has reports whether the token carries the given phenomenon code.
func (t WeatherToken) Has(code string) bool {
	for _, p := range t.Phenomena {
		if p == code {
			return true
		}
	}
	return false
}

// CloudLayer is one sky-condition group. HeightFt is zero for SKC-style
// groups. A layer reported as /// has HeightUnknown set and never counts
// as a ceiling.
type CloudLayer struct {
	Cover         string `json:"cover"`
	HeightFt      int    `json:"height_ft,omitempty"`
	HeightUnknown bool   `json:"height_unknown,omitempty"`
	Type          string `json:"type,omitempty"` // CB or TCU
}

// IsCeiling reports whether l is a broken, overcast or vertical-visibility
// layer with a reported height.
func (l CloudLayer) IsCeiling() bool {
	switch l.Cover {
	case "BKN", "OVC", "VV":
		return !l.HeightUnknown
	}
	return false
}

// Conditions is the wind, visibility, weather and sky content shared by
// METAR observations and TAF change groups.
type Conditions struct {
	Wind         *Wind          `json:"wind,omitempty"`
	VisibilitySM *float64       `json:"visibility_sm,omitempty"`
	CAVOK        bool           `json:"cavok,omitempty"`
	Weather      []WeatherToken `json:"weather,omitempty"`
	Clouds       []CloudLayer   `json:"clouds,omitempty"`
}

// Token patterns. These are matched against single whitespace-separated
// tokens, so they are anchored.
var (
	windRe      = regexp.MustCompile(`^(\d{3}|VRB)(\d{2,3})(?:G(\d{2,3}))?(KT|MPS|KMH)$`)
	windVarRe   = regexp.MustCompile(`^\d{3}V\d{3}$`)
	visSMRe     = regexp.MustCompile(`^([MP])?(\d{1,2})SM$`)
	visFracRe   = regexp.MustCompile(`^([MP])?(\d)/(\d{1,2})SM$`)
	visWholeRe  = regexp.MustCompile(`^\d$`)
	visMetresRe = regexp.MustCompile(`^(\d{4})(?:NDV)?$`)
	cloudRe     = regexp.MustCompile(`^(FEW|SCT|BKN|OVC|VV)(\d{3}|///)(CB|TCU|///)?$`)
	clearSkyRe  = regexp.MustCompile(`^(SKC|CLR|NCD|NSC)$`)
	presentWxRe = regexp.MustCompile(`^([-+]|VC)?(MI|BC|PR|DR|BL|SH|TS|FZ)?((?:DZ|RA|SN|SG|IC|PL|GR|GS|UP|BR|FG|FU|VA|DU|SA|HZ|PY|PO|SQ|FC|SS|DS)*)$`)
)

func floatPtr(f float64) *float64 { return &f }

// decodeToken consumes the token at tokens[i] (and, for split visibility
// such as "1 1/2SM", the one after it) into c. It returns the number of
// tokens consumed, or 0 if the token is not a condition group.
func (c *Conditions) decodeToken(tokens []string, i int) int {
	tok := tokens[i]

	// Wind.
	if m := windRe.FindStringSubmatch(tok); m != nil && c.Wind == nil {
		w := &Wind{Unit: m[4]}
		if m[1] == "VRB" {
			w.Variable = true
		} else {
			w.Direction, _ = strconv.Atoi(m[1])
		}
		w.Speed, _ = strconv.Atoi(m[2])
		if m[3] != "" {
			w.Gust, _ = strconv.Atoi(m[3])
		}
		c.Wind = w
		return 1
	}
	if windVarRe.MatchString(tok) {
		return 1
	}

	if tok == "CAVOK" {
		c.CAVOK = true
		c.VisibilitySM = floatPtr(10000 / metresPerStatuteMile)
		return 1
	}

	// Visibility.
	if c.VisibilitySM == nil {
		if n := c.decodeVisibility(tokens, i); n > 0 {
			return n
		}
	}

	// Clouds.
	if m := cloudRe.FindStringSubmatch(tok); m != nil {
		layer := CloudLayer{Cover: m[1]}
		if m[2] == "///" {
			layer.HeightUnknown = true
		} else {
			h, _ := strconv.Atoi(m[2])
			layer.HeightFt = h * 100
		}
		if m[3] != "///" {
			layer.Type = m[3]
		}
		c.Clouds = append(c.Clouds, layer)
		return 1
	}
	if clearSkyRe.MatchString(tok) {
		c.Clouds = append(c.Clouds, CloudLayer{Cover: tok})
		return 1
	}

	// Present weather.
	if wx, ok := parseWeatherToken(tok); ok {
		c.Weather = append(c.Weather, wx)
		return 1
	}

	return 0
}

func (c *Conditions) decodeVisibility(tokens []string, i int) int {
	tok := tokens[i]

	if m := visSMRe.FindStringSubmatch(tok); m != nil {
		v, _ := strconv.ParseFloat(m[2], 64)
		c.VisibilitySM = floatPtr(v)
		return 1
	}
	if v, ok := parseFraction(tok); ok {
		c.VisibilitySM = floatPtr(v)
		return 1
	}
	if visWholeRe.MatchString(tok) && i+1 < len(tokens) {
		if frac, ok := parseFraction(tokens[i+1]); ok {
			whole, _ := strconv.ParseFloat(tok, 64)
			c.VisibilitySM = floatPtr(whole + frac)
			return 2
		}
	}
	if m := visMetresRe.FindStringSubmatch(tok); m != nil {
		metres, _ := strconv.ParseFloat(m[1], 64)
		c.VisibilitySM = floatPtr(metres / metresPerStatuteMile)
		return 1
	}
	return 0
}

func parseFraction(tok string) (float64, bool) {
	m := visFracRe.FindStringSubmatch(tok)
	if m == nil {
		return 0, false
	}
	num, _ := strconv.ParseFloat(m[2], 64)
	den, _ := strconv.ParseFloat(m[3], 64)
	if den == 0 {
		return 0, false
	}
	return num / den, true
}

func parseWeatherToken(tok string) (WeatherToken, bool) {
	m := presentWxRe.FindStringSubmatch(tok)
	if m == nil || (m[2] == "" && m[3] == "") {
		return WeatherToken{}, false
	}
	wx := WeatherToken{Raw: tok, Intensity: m[1], Descriptor: m[2]}
	for p := m[3]; len(p) >= 2; p = p[2:] {
		wx.Phenomena = append(wx.Phenomena, p[:2])
	}
	return wx, true
}

// CeilingFt returns the height of the lowest broken, overcast or
// vertical-visibility layer. Layers without a reported height are skipped.
func (c *Conditions) CeilingFt() (int, bool) {
	ceiling, found := 0, false
	for _, l := range c.Clouds {
		if !l.IsCeiling() {
			continue
		}
		if !found || l.HeightFt < ceiling {
			ceiling, found = l.HeightFt, true
		}
	}
	return ceiling, found
}

// HasDescriptor reports whether any weather token carries descriptor d.
func (c *Conditions) HasDescriptor(d string) bool {
	for _, wx := range c.Weather {
		if wx.Descriptor == d {
			return true
		}
	}
	return false
}

// HasPhenomenon reports whether any weather token carries phenomenon p.
func (c *Conditions) HasPhenomenon(p string) bool {
	for _, wx := range c.Weather {
		if wx.Has(p) {
			return true
		}
	}
	return false
}

// HasHeavy reports whether any weather token carries the "+" intensity.
func (c *Conditions) HasHeavy() bool {
	for _, wx := range c.Weather {
		if wx.Intensity == "+" {
			return true
		}
	}
	return false
}

// Freezing reports freezing rain, drizzle or fog.
func (c *Conditions) Freezing() bool {
	for _, wx := range c.Weather {
		if wx.Descriptor == "FZ" && (wx.Has("RA") || wx.Has("DZ") || wx.Has("FG")) {
			return true
		}
	}
	return false
}

// Thunderstorm reports any TS group, including VCTS.
func (c *Conditions) Thunderstorm() bool {
	return c.HasDescriptor("TS")
}

// FlightCategory derives the flight category from visibility and ceiling.
// Either value missing gives CategoryUnknown.
func (c *Conditions) FlightCategory() Category {
	ceiling, ok := c.CeilingFt()
	if !ok || c.VisibilitySM == nil {
		return CategoryUnknown
	}
	vis := *c.VisibilitySM

	switch {
	case vis >= 5 && ceiling >= 3000:
		return VFR
	case vis >= 3 && ceiling >= 1000:
		return MVFR
	case vis >= 1 && ceiling >= 500:
		return IFR
	default:
		return LIFR
	}
}
