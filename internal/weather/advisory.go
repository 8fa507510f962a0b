package weather

import (
	"regexp"
	"strconv"
	"strings"
)

// Advisory kinds.
const (
	KindSIGMET           = "SIGMET"
	KindConvectiveSIGMET = "CONVECTIVE SIGMET"
	KindAIRMET           = "AIRMET"
)

// Advisory is a decoded SIGMET or AIRMET. Levels are in feet; a surface
// base is 0.
type Advisory struct {
	Kind       string   `json:"kind"`
	ID         string   `json:"id,omitempty"`
	Series     string   `json:"series,omitempty"` // AIRMET Sierra, Tango or Zulu
	ValidFrom  string   `json:"valid_from,omitempty"`
	ValidTo    string   `json:"valid_to,omitempty"`
	Originator string   `json:"originator,omitempty"`
	FIR        string   `json:"fir,omitempty"`
	Hazards    []string `json:"hazards"`
	BaseFt     *int     `json:"base_ft,omitempty"`
	TopFt      *int     `json:"top_ft,omitempty"`
	Movement   string   `json:"movement,omitempty"`
	Raw        string   `json:"raw"`
}

var (
	sigmetIDRe   = regexp.MustCompile(`\bSIGMET\s+((?:[A-Z]+\s+)?\d+[A-Z]?|[A-Z]\d{1,2})\b`)
	airmetIDRe   = regexp.MustCompile(`\bAIRMET\s+(?:(?:SIERRA|TANGO|ZULU)\s+)?(?:UPDT\s+)?(\d+|[A-Z]\d{1,2})\b`)
	validRangeRe = regexp.MustCompile(`\bVALID\s+(\d{6})/(\d{6})\b`)
	validUntilRe = regexp.MustCompile(`\bVALID\s+(?:UNTIL|TIL|TO)\s+(\d{4,6}Z?)`)
	firRe        = regexp.MustCompile(`\b([A-Z]{4})-\s*([A-Z]{4})\s+([A-Z]+(?:\s+[A-Z]+)?)\s+(?:FIR/UIR|FIR|UIR)\b`)
	seriesRe     = regexp.MustCompile(`\b(SIERRA|TANGO|ZULU)\b`)
	levelRangeRe = regexp.MustCompile(`\bFL(\d{3})/(\d{3})\b`)
	levelSfcRe   = regexp.MustCompile(`\bSFC/FL(\d{3})\b`)
	levelTopRe   = regexp.MustCompile(`\bTOPS?\s+(?:ABV\s+|TO\s+)?FL(\d{3})\b`)
	levelBtnRe   = regexp.MustCompile(`\bBTN\s+(?:FL)?(\d{3})\s+AND\s+(?:FL)?(\d{3})\b`)
	levelDashRe  = regexp.MustCompile(`\b(\d{3})-(\d{3})\b`)
	levelBlwRe   = regexp.MustCompile(`\bBLW\s+(?:FL)?(\d{3})\b`)
	movementRe   = regexp.MustCompile(`\b(STNR|MOV\s+(?:FROM\s+\d{5}KT|[NESW]{1,3}\s+\d+\s*KT|LTL))\b`)
	convectiveRe = regexp.MustCompile(`\bCONVECTIVE\b|\bCONVECTV\b`)
	severeTurbRe = regexp.MustCompile(`\bSEV(?:ERE)?\s+TURB`)
)

// hazardRules are checked in order; each contributes at most one hazard.
var hazardRules = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"thunderstorms", regexp.MustCompile(`\b(?:TSTMS?|TS|THUNDERSTORMS?|EMBD\s+TS|CB)\b`)},
	{"turbulence", regexp.MustCompile(`\bTURB(?:ULENCE)?\b`)},
	{"icing", regexp.MustCompile(`\b(?:ICE|ICG|ICING)\b`)},
	{"mountain wave", regexp.MustCompile(`\bMTW\b`)},
	{"wind shear", regexp.MustCompile(`\b(?:LLWS|WIND\s+SHEAR)\b`)},
	{"surface winds", regexp.MustCompile(`\b(?:STG\s+)?SFC\s+(?:WND|WIND)S?\b`)},
	{"dust/sand", regexp.MustCompile(`\b(?:DS|SS|DUST|SAND)\b`)},
	{"volcanic ash", regexp.MustCompile(`\b(?:VA|ASH)\b`)},
	{"IFR", regexp.MustCompile(`\bIFR\b`)},
	{"mountain obscuration", regexp.MustCompile(`\bMTN\s+OBSCN\b`)},
}

// DecodeSIGMET decodes a SIGMET or convective SIGMET.
func DecodeSIGMET(text string) Advisory {
	upper := strings.ToUpper(text)
	kind := KindSIGMET
	if convectiveRe.MatchString(upper) {
		kind = KindConvectiveSIGMET
	}
	a := decodeAdvisory(kind, text, upper)
	if m := sigmetIDRe.FindStringSubmatch(upper); m != nil && !strings.HasPrefix(m[1], "VALID") {
		a.ID = m[1]
	}
	for i, h := range a.Hazards {
		if h == "turbulence" && severeTurbRe.MatchString(upper) {
			a.Hazards[i] = "severe turbulence"
		}
	}
	return a
}

// DecodeAIRMET decodes an AIRMET, including its Sierra/Tango/Zulu series.
func DecodeAIRMET(text string) Advisory {
	upper := strings.ToUpper(text)
	a := decodeAdvisory(KindAIRMET, text, upper)
	if m := seriesRe.FindStringSubmatch(upper); m != nil {
		a.Series = strings.ToUpper(m[1][:1]) + strings.ToLower(m[1][1:])
	}
	if m := airmetIDRe.FindStringSubmatch(upper); m != nil {
		a.ID = m[1]
	}
	return a
}

func feet(fl string) *int {
	n, err := strconv.Atoi(fl)
	if err != nil {
		return nil
	}
	ft := n * 100
	return &ft
}

func decodeAdvisory(kind, text, upper string) Advisory {
	a := Advisory{Kind: kind, Hazards: []string{}, Raw: strings.TrimSpace(text)}

	// Validity.
	if m := validRangeRe.FindStringSubmatch(upper); m != nil {
		a.ValidFrom, a.ValidTo = m[1], m[2]
	} else if m := validUntilRe.FindStringSubmatch(upper); m != nil {
		a.ValidTo = m[1]
	}

	// Originator and FIR.
	if m := firRe.FindStringSubmatch(upper); m != nil {
		a.Originator = m[1]
		a.FIR = m[2] + " " + m[3]
	}

	for _, rule := range hazardRules {
		if rule.pattern.MatchString(upper) {
			a.Hazards = append(a.Hazards, rule.name)
		}
	}

	// Vertical extent.
	zero := 0
	switch {
	case levelRangeRe.MatchString(upper):
		m := levelRangeRe.FindStringSubmatch(upper)
		a.BaseFt, a.TopFt = feet(m[1]), feet(m[2])
	case levelSfcRe.MatchString(upper):
		m := levelSfcRe.FindStringSubmatch(upper)
		a.BaseFt, a.TopFt = &zero, feet(m[1])
	case levelBtnRe.MatchString(upper):
		m := levelBtnRe.FindStringSubmatch(upper)
		a.BaseFt, a.TopFt = feet(m[1]), feet(m[2])
	case levelTopRe.MatchString(upper):
		a.TopFt = feet(levelTopRe.FindStringSubmatch(upper)[1])
	case levelDashRe.MatchString(upper):
		m := levelDashRe.FindStringSubmatch(upper)
		a.BaseFt, a.TopFt = feet(m[1]), feet(m[2])
	case levelBlwRe.MatchString(upper):
		a.BaseFt, a.TopFt = &zero, feet(levelBlwRe.FindStringSubmatch(upper)[1])
	}

	// Movement.
	if m := movementRe.FindString(upper); m != "" {
		a.Movement = m
	}

	return a
}
