package report

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Kind discriminates the report types the system understands.
type Kind string

const (
	KindUnknown Kind = ""
	KindNOTAM   Kind = "notam"
	KindMETAR   Kind = "metar"
	KindTAF     Kind = "taf"
	KindPIREP   Kind = "pirep"
	KindSIGMET  Kind = "sigmet"
	KindAIRMET  Kind = "airmet"
)

// Kinds lists every known kind in a stable order.
var Kinds = []Kind{KindNOTAM, KindMETAR, KindTAF, KindPIREP, KindSIGMET, KindAIRMET}

// ParseKind maps a free-form type name to a Kind. Unrecognised names map to
// KindUnknown.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "notam", "notams":
		return KindNOTAM
	case "metar", "metars", "speci":
		return KindMETAR
	case "taf", "tafs":
		return KindTAF
	case "pirep", "pireps", "aircraftreport":
		return KindPIREP
	case "sigmet", "sigmets", "isigmet", "airsigmet":
		return KindSIGMET
	case "airmet", "airmets", "gairmet":
		return KindAIRMET
	}
	return KindUnknown
}

func (k Kind) String() string {
	if k == KindUnknown {
		return "unknown"
	}
	return string(k)
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// UnmarshalJSON accepts the same aliases as ParseKind.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*k = KindUnknown
		return nil
	}
	*k = ParseKind(s)
	return nil
}

var (
	metarHeadRe  = regexp.MustCompile(`^(?:METAR|SPECI)\b`)
	metarBodyRe  = regexp.MustCompile(`^[A-Z]{4}\s+\d{6}Z\s+(?:AUTO\s+)?(?:\d{3}|VRB)\d{2,3}(?:G\d{2,3})?(?:KT|MPS)\b`)
	tafHeadRe    = regexp.MustCompile(`^TAF\b`)
	pirepHeadRe  = regexp.MustCompile(`^(?:[A-Z]{3,4}\s+)?U?UA\s*/OV\b|/OV\s+\S+.*/TM\s+\d{4}`)
	sigmetRe     = regexp.MustCompile(`\bSIGMET\b|\bCONVECTIVE\s+SIGMET\b`)
	airmetRe     = regexp.MustCompile(`\bAIRMET\b`)
	notamFieldRe = regexp.MustCompile(`(?s)\bA\)\s*[A-Z]{4}\b.*\bE\)`)
	notamHeadRe  = regexp.MustCompile(`\bNOTAM[NRC]?\b|\b[A-Z]\d{4}/\d{2}\b|^!`)
)

// Detect classifies untagged report text by its header shape.
func Detect(text string) Kind {
	upper := strings.ToUpper(strings.TrimSpace(text))
	if upper == "" {
		return KindUnknown
	}

	switch {
	case metarHeadRe.MatchString(upper), metarBodyRe.MatchString(upper):
		return KindMETAR
	case tafHeadRe.MatchString(upper):
		return KindTAF
	case pirepHeadRe.MatchString(upper):
		return KindPIREP
	case airmetRe.MatchString(upper):
		return KindAIRMET
	case sigmetRe.MatchString(upper):
		return KindSIGMET
	case notamFieldRe.MatchString(upper), notamHeadRe.MatchString(upper):
		return KindNOTAM
	}
	return KindUnknown
}
