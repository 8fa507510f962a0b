package weather

import (
	"regexp"
	"strings"

	"aviation_briefing/internal/patterns"
)

// Change indicators that open a TAF group.
const (
	ChangeBase  = "BASE"
	ChangeFrom  = "FM"
	ChangeBecmg = "BECMG"
	ChangeTempo = "TEMPO"
)

// ForecastGroup is one TAF change group. Period is "DDhh/DDhh" for
// BECMG/TEMPO/PROB groups and "DDhhmm" for FM groups.
type ForecastGroup struct {
	Change string `json:"change"`
	Period string `json:"period,omitempty"`
	Conditions
}

func (g *ForecastGroup) empty() bool {
	return g.Wind == nil && g.VisibilitySM == nil && !g.CAVOK && len(g.Weather) == 0 && len(g.Clouds) == 0
}

// TAF is a decoded terminal aerodrome forecast.
type TAF struct {
	Station string          `json:"station,omitempty"`
	Issued  string          `json:"issued,omitempty"`
	Valid   string          `json:"valid,omitempty"`
	Amended bool            `json:"amended,omitempty"`
	Groups  []ForecastGroup `json:"groups"`
	Raw     string          `json:"raw"`
}

var (
	tafPeriodRe = regexp.MustCompile(`^\d{4}/\d{4}$`)
	tafFromRe   = regexp.MustCompile(`^FM(\d{6})$`)
	tafProbRe   = regexp.MustCompile(`^PROB\d{2}$`)
)

// DecodeTAF splits a TAF into its base forecast and change groups. Like
// Decode it never fails.
func DecodeTAF(text string) TAF {
	taf := TAF{Raw: strings.TrimSpace(text)}
	tokens := patterns.Tokenize(strings.ToUpper(text))

	var cur *ForecastGroup
	open := func(change, period string) {
		taf.Groups = append(taf.Groups, ForecastGroup{Change: change, Period: period})
		cur = &taf.Groups[len(taf.Groups)-1]
	}

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		// Header.
		if cur == nil {
			switch {
			case tok == "TAF" || tok == "COR":
				continue
			case tok == "AMD":
				taf.Amended = true
				continue
			case taf.Station == "" && stationRe.MatchString(tok):
				taf.Station = tok
				continue
			case taf.Issued == "" && obsTimeRe.MatchString(tok):
				taf.Issued = tok
				continue
			case taf.Valid == "" && tafPeriodRe.MatchString(tok):
				taf.Valid = tok
				open(ChangeBase, tok)
				continue
			}
			open(ChangeBase, "")
		}

		// Change indicators.
		if m := tafFromRe.FindStringSubmatch(tok); m != nil {
			open(ChangeFrom, m[1])
			continue
		}
		switch {
		case tok == ChangeBecmg:
			open(ChangeBecmg, "")
			continue
		case tok == ChangeTempo:
			// PROB30 TEMPO is a single group.
			if strings.HasPrefix(cur.Change, "PROB") && cur.Period == "" && cur.empty() {
				cur.Change += " " + ChangeTempo
			} else {
				open(ChangeTempo, "")
			}
			continue
		case tafProbRe.MatchString(tok):
			open(tok, "")
			continue
		case tafPeriodRe.MatchString(tok) && cur.Period == "":
			cur.Period = tok
			continue
		}

		if n := cur.decodeToken(tokens, i); n > 0 {
			i += n - 1
		}
	}

	if taf.Groups == nil {
		taf.Groups = []ForecastGroup{}
	}
	return taf
}
