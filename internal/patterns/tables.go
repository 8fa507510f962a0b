// This file contains the NOTAM classification tables.

package patterns

import (
	"regexp"
)

// Severity tier names, highest priority first.
const (
	TierHigh   = "high"
	TierMedium = "medium"
	TierLow    = "low"
)

// Tier is one severity level and the patterns that select it.
type Tier struct {
	Level    string
	Patterns []*regexp.Regexp
}

// Rule pairs a name with one compiled pattern.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// RuleSet pairs a name with an ordered list of patterns.
type RuleSet struct {
	Name     string
	Patterns []*regexp.Regexp
}

// PhaseRule maps a keyword family to the flight phases it affects.
type PhaseRule struct {
	Phases  []string
	Pattern *regexp.Regexp
}

// TimeRules holds the ordered patterns for each time role. Effective and
// Until capture one YYMMDDhhmm group; Daily captures two hhmm groups.
type TimeRules struct {
	Effective []*regexp.Regexp
	Until     []*regexp.Regexp
	Daily     []*regexp.Regexp
	Permanent *regexp.Regexp
}

// Tables is the full set of NOTAM classification patterns. Build it once with
// NewTables and share it; nothing mutates it afterwards, so any number of
// goroutines may read it concurrently.
type Tables struct {
	Severity   []Tier    // high, medium, low
	Categories []Rule    // first match wins
	Facilities []RuleSet // one capture group per pattern
	Times      TimeRules
	Impacts    []RuleSet // closure, restriction, information
	HighTerms  []Rule    // +3 each when present
	MedTerms   []Rule    // +1 each when present
	Phases     []PhaseRule
	Keywords   []Rule
	Closure    *regexp.Regexp

	NotamIDs       []*regexp.Regexp
	AirportMarkers []*regexp.Regexp
	DescHeader     *regexp.Regexp

	Coordinates *Compiler
	Radius      *Compiler
	Altitudes   *Compiler

	NavaidBlocklist map[string]bool
}

// compileAll expands {PLACEHOLDER} references and compiles each expression.
func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(Expand(e))
	}
	return out
}

// NewTables compiles every table. It panics only on a programming error in
// the patterns themselves.
func NewTables() *Tables {
	return &Tables{
		Severity: []Tier{
			{Level: TierHigh, Patterns: compileAll(
				`\b(?:RUNWAY|RWY)\b.*\b(?:CLOSED|CLSD)\b`,
				`\b(?:AIRPORT|AERODROME|AD)\b.*\b(?:CLOSED|CLSD)\b`,
				`\bAPPROACH\b.*\bNOT\b.*\bAVAILABLE\b`,
				`\bILS\b.*(?:\bOUT\b.*\bOF\b.*\bSERVICE\b|\bU/S\b|\bUNSERVICEABLE\b)`,
				`\bTOWER\b.*\b(?:CLOSED|CLSD)\b`,
				`\bFUEL\b.*(?:\bNOT\b.*\bAVAILABLE\b|\bUNAVBL\b)`,
				`\bEMERGENCY\b.*\bONLY\b`,
				`\bMILITARY\b.*\bOPERATIONS?\b`,
				`\bDANGER\b.*\bAREA\b.*\bACTIVE\b`,
				`\bRESTRICTED\b.*\bAREA\b.*\bACTIVE\b`,
			)},
			{Level: TierMedium, Patterns: compileAll(
				`\b(?:TAXIWAY|TWY)\b.*\b(?:CLOSED|CLSD)\b`,
				`\bPARKING\b.*\bRESTRICTED\b`,
				`\b(?:LIGHTING|LGT)\b.*(?:\bOUT\b.*\bOF\b.*\bSERVICE\b|\bU/S\b)`,
				`\bNAVAID\b.*\bUNRELIABLE\b`,
				`\bFREQUENCY\b.*\bCHANGE`,
				`\bCONSTRUCTION\b.*\bWORK`,
				`\bOBSTACLE\b.*\bINSTALLED\b`,
				`\bBIRD\b.*\bACTIVITY\b`,
			)},
			{Level: TierLow, Patterns: compileAll(
				`\bCHART\b.*\bCHANGE`,
				`\bAERODROME\b.*\bINFORMATION\b`,
				`\bPILOTS\b.*\bADVISED\b`,
				`\bINFORMATION\b.*\bONLY\b`,
				`\bFREQUENCY\b.*\bAVAILABLE\b`,
				`\bCONTACT\b.*\bINFORMATION\b`,
			)},
		},

		Categories: []Rule{
			{Name: "runway", Pattern: regexp.MustCompile(`\b(?:RUNWAY|RWY)`)},
			{Name: "taxiway", Pattern: regexp.MustCompile(`\b(?:TAXIWAY|TWY)`)},
			{Name: "approach", Pattern: regexp.MustCompile(`\b(?:APPROACH|APP\b|APCH|ILS|VOR|RNAV)`)},
			{Name: "navigation", Pattern: regexp.MustCompile(`\b(?:NAVAID|VOR|NDB|DME|VORTAC)`)},
			{Name: "lighting", Pattern: regexp.MustCompile(`\b(?:LIGHT|LGT|BEACON)`)},
			{Name: "airspace", Pattern: regexp.MustCompile(`\b(?:AIRSPACE|RESTRICTED|DANGER|PROHIBITED)`)},
			{Name: "obstacle", Pattern: regexp.MustCompile(`\b(?:OBSTACLE|OBSTRUCTION|OBST|CRANE|TOWER)`)},
			{Name: "service", Pattern: regexp.MustCompile(`\b(?:FUEL|SERVICE|MAINTENANCE|CLOSED|CLSD)`)},
			{Name: "frequency", Pattern: regexp.MustCompile(`\b(?:FREQUENCY|FREQ|RADIO)`)},
		},

		Facilities: []RuleSet{
			{Name: "runway", Patterns: compileAll(
				`\bRWY\s*({RUNWAY})\b`,
				`\bRUNWAY\s*({RUNWAY})\b`,
				`\b(\d{2}[LRC])\b`,
			)},
			{Name: "taxiway", Patterns: compileAll(
				`\bTWY\s*({TAXIWAY})\b`,
				`\bTAXIWAY\s*({TAXIWAY})\b`,
				`\bTAXILANE\s*({TAXIWAY})\b`,
			)},
			{Name: "approach", Patterns: compileAll(
				`\bILS\s*RWY\s*({RUNWAY})\b`,
				`\bVOR\s*RWY\s*({RUNWAY})\b`,
				`\bRNAV\s*(?:\(GPS\)\s*)?RWY\s*({RUNWAY})\b`,
				`\bAPP\s*RWY\s*({RUNWAY})\b`,
			)},
			{Name: "navaid", Patterns: compileAll(
				`\bVOR\s+({NAVAID})\b`,
				`\bVORTAC\s+({NAVAID})\b`,
				`\bNDB\s+({NAVAID})\b`,
				`\bDME\s+({NAVAID})\b`,
			)},
			{Name: "frequency", Patterns: compileAll(
				`\bFREQ\s*({FREQ})`,
				`\bFREQUENCY\s*({FREQ})`,
				`\b({FREQ})\s*MHZ\b`,
			)},
		},

		Times: TimeRules{
			Effective: compileAll(
				`\bB\)\s*({DTG10})\b`,
				`\bFM\s*({DTG10})\b`,
				`\bEFFECTIVE\s*({DTG10})\b`,
				`\b({DTG10})\s*UTC\b`,
			),
			Until: compileAll(
				`\bC\)\s*({DTG10})\b`,
				`\bTIL\s*({DTG10})\b`,
				`\bUNTIL\s*({DTG10})\b`,
				`\b({DTG10})\s*EST\b`,
			),
			Daily: compileAll(
				`\bDAILY\s*({HHMM})-({HHMM})\b`,
				`\b({HHMM})-({HHMM})\s*DAILY\b`,
			),
			Permanent: regexp.MustCompile(`\bPERM(?:ANENT)?\b`),
		},

		Impacts: []RuleSet{
			{Name: "closure", Patterns: compileAll(
				`\bCLOSED\b`, `\bCLSD\b`, `\bNOT\b.*\bAVAILABLE\b`,
				`\bOUT\b.*\bOF\b.*\bSERVICE\b`, `\bUNAVBL\b`, `\bU/S\b`,
			)},
			{Name: "restriction", Patterns: compileAll(
				`\bRESTRICTED\b`, `\bLIMITED\b`, `\bCAUTION\b`, `\bAVOID\b`, `\bDISPLACED\b`,
			)},
			{Name: "information", Patterns: compileAll(
				`\bADVISE`, `\bINFORMATION\b`, `\bNOTE\b`, `\bPILOTS\b.*\bADVISED\b`, `\bCOORD`,
			)},
		},

		HighTerms: []Rule{
			{Name: "closed", Pattern: regexp.MustCompile(`\b(?:CLOSED|CLSD)\b`)},
			{Name: "unavailable", Pattern: regexp.MustCompile(`\b(?:UNAVAILABLE|UNAVBL)\b`)},
			{Name: "emergency", Pattern: regexp.MustCompile(`\bEMERGENCY\b`)},
			{Name: "danger", Pattern: regexp.MustCompile(`\bDANGER\b`)},
		},
		MedTerms: []Rule{
			{Name: "restricted", Pattern: regexp.MustCompile(`\bRESTRICTED\b`)},
			{Name: "caution", Pattern: regexp.MustCompile(`\bCAUTION\b`)},
			{Name: "displaced", Pattern: regexp.MustCompile(`\bDISPLACED\b`)},
			{Name: "limited", Pattern: regexp.MustCompile(`\bLIMITED\b`)},
		},

		Phases: []PhaseRule{
			{Phases: []string{"takeoff", "landing"}, Pattern: regexp.MustCompile(`\b(?:RUNWAY|RWY|TAKEOFF|TAKE-OFF|LANDING)`)},
			{Phases: []string{"taxi"}, Pattern: regexp.MustCompile(`\b(?:TAXIWAY|TWY|TAXI|GROUND)`)},
			{Phases: []string{"approach"}, Pattern: regexp.MustCompile(`\b(?:APPROACH|APCH|ILS|VOR)`)},
			{Phases: []string{"en-route"}, Pattern: regexp.MustCompile(`\b(?:AIRSPACE|NAVIGATION|EN-ROUTE|ENROUTE)`)},
		},

		Keywords: []Rule{
			{Name: "runway", Pattern: regexp.MustCompile(`\b(?:RUNWAY|RWY)`)},
			{Name: "taxiway", Pattern: regexp.MustCompile(`\b(?:TAXIWAY|TWY)`)},
			{Name: "approach", Pattern: regexp.MustCompile(`\b(?:APPROACH|APCH)`)},
			{Name: "ils", Pattern: regexp.MustCompile(`\bILS\b`)},
			{Name: "vor", Pattern: regexp.MustCompile(`\bVOR`)},
			{Name: "ndb", Pattern: regexp.MustCompile(`\bNDB\b`)},
			{Name: "dme", Pattern: regexp.MustCompile(`\bDME\b`)},
			{Name: "closed", Pattern: regexp.MustCompile(`\b(?:CLOSED|CLSD)\b`)},
			{Name: "restricted", Pattern: regexp.MustCompile(`\bRESTRICTED\b`)},
			{Name: "unavailable", Pattern: regexp.MustCompile(`\b(?:UNAVAILABLE|UNAVBL)\b`)},
			{Name: "maintenance", Pattern: regexp.MustCompile(`\b(?:MAINTENANCE|MAINT)\b`)},
			{Name: "construction", Pattern: regexp.MustCompile(`\bCONSTRUCTION\b`)},
			{Name: "lighting", Pattern: regexp.MustCompile(`\b(?:LIGHTING|LGT)\b`)},
			{Name: "fuel", Pattern: regexp.MustCompile(`\bFUEL\b`)},
			{Name: "frequency", Pattern: regexp.MustCompile(`\b(?:FREQUENCY|FREQ)\b`)},
			{Name: "navaid", Pattern: regexp.MustCompile(`\bNAVAIDS?\b`)},
			{Name: "obstacle", Pattern: regexp.MustCompile(`\b(?:OBSTACLE|OBST)\b`)},
			{Name: "crane", Pattern: regexp.MustCompile(`\bCRANES?\b`)},
		},

		Closure: regexp.MustCompile(`\b(?:CLOSED|CLSD)\b`),

		NotamIDs: compileAll(
			`\bNOTAM[NRC]?\s*({NOTAMID})\b`,
			`\b({NOTAMID})\b`,
			`\bNOTAM[NRC]?\s*([A-Z]{4}\d{4})\b`,
			`\b([A-Z]{4}\d{4})\b`,
		),
		AirportMarkers: compileAll(
			`\bA\)\s*({ICAO})\b`,
			`\bQ\)\s*({ICAO})\b`,
		),
		DescHeader: regexp.MustCompile(`(?i)^NOTAM\s+[A-Z]\d+/\d+\s*`),

		Coordinates: MustCompile([]Format{
			{
				Name:    "dms_compact",
				Pattern: `\b(?P<lat>{LAT_6D})(?P<latdir>{LAT_DIR})\s*(?P<lon>{LON_7D})(?P<londir>{LON_DIR})`,
				Fields:  []string{"lat", "latdir", "lon", "londir"},
			},
			{
				Name:    "dms_spaced",
				Pattern: `\b(?P<latdeg>{LAT_DEG})\s+(?P<latmin>{MINSEC})\s+(?P<latsec>{MINSEC})\s*(?P<latdir>{LAT_DIR})\s*(?P<londeg>{LON_DEG})\s+(?P<lonmin>{MINSEC})\s+(?P<lonsec>{MINSEC})\s*(?P<londir>{LON_DIR})`,
				Fields:  []string{"latdeg", "latmin", "latsec", "latdir", "londeg", "lonmin", "lonsec", "londir"},
			},
			{
				Name:    "dm_compact",
				Pattern: `\b(?P<lat>{LAT_4D})(?P<latdir>{LAT_DIR})\s*(?P<lon>{LON_5D})(?P<londir>{LON_DIR})`,
				Fields:  []string{"lat", "latdir", "lon", "londir"},
			},
		}, nil),

		Radius: MustCompile([]Format{
			{Name: "nm_radius", Pattern: `\b(?P<radius>\d+)\s*NM\b.*\bRADIUS\b`, Fields: []string{"radius"}},
			{Name: "within_nm", Pattern: `\bWITHIN\s*(?P<radius>\d+)\s*NM\b`, Fields: []string{"radius"}},
			{Name: "radius_nm", Pattern: `\bRADIUS\s*(?P<radius>\d+)\s*NM\b`, Fields: []string{"radius"}},
			{Name: "qline", Pattern: `\b{LAT_4D}{LAT_DIR}{LON_5D}{LON_DIR}(?P<radius>\d{3})\b`, Fields: []string{"radius"}},
		}, nil),

		Altitudes: MustCompile([]Format{
			{Name: "surface_to_fl", Pattern: `\b(?:SFC|SURFACE|GND)\b.*?\bFL\s?(?P<fl>{FL})\b`, Fields: []string{"fl"}},
			{Name: "flight_level", Pattern: `\bFL\s?(?P<fl>{FL})\b`, Fields: []string{"fl"}},
			{Name: "surface_to_ft", Pattern: `\b(?:SFC|SURFACE|GND)\b.*?\b(?P<feet>{FEET})\s*FT\b`, Fields: []string{"feet"}},
			{Name: "feet_reference", Pattern: `\b(?P<feet>{FEET})\s*FT\s*(?P<ref>AMSL|MSL|AGL)\b`, Fields: []string{"feet", "ref"}},
		}, nil),

		NavaidBlocklist: map[string]bool{
			"RWY": true, "APP": true, "OUT": true, "NOT": true, "AND": true,
			"FOR": true, "THE": true, "OTS": true, "UNS": true, "DME": true,
			"NDB": true, "VOR": true, "ILS": true, "TWY": true, "AVB": true,
		},
	}
}
