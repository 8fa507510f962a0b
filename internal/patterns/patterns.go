package patterns

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ICAOPattern matches 4-letter ICAO location indicators with valid prefixes.
var ICAOPattern = regexp.MustCompile(`\b([KCELPYZRVOSWUABDFGHMNT][A-Z]{3})\b`)

// ICAOBlocklist contains words and contractions that look like ICAO location
// indicators but aren't. NOTAM and weather text is dense with them.
var ICAOBlocklist = map[string]bool{
	// Common words.
	"WHEN": true, "WITH": true, "WILL": true, "WERE": true, "WHAT": true,
	"ONLY": true, "OVER": true, "EACH": true, "ELSE": true, "LEFT": true,
	"ZERO": true, "ZONE": true, "VERY": true, "SAME": true, "NEAR": true,
	"TIME": true, "TEST": true, "THEN": true, "TILL": true, "FROM": true,
	"NEXT": true, "NONE": true, "HOLD": true, "HIGH": true, "AREA": true,
	"BACK": true, "BASE": true, "DOWN": true, "WIND": true, "WIDE": true,
	"TAXI": true, "TURN": true, "PLAN": true, "DATE": true, "DATA": true,
	"LAND": true, "WORK": true, "PART": true, "SIDE": true, "MOVE": true,
	// NOTAM contractions.
	"CLSD": true, "AVBL": true, "ACFT": true, "APCH": true, "FREQ": true,
	"OBST": true, "LGTD": true, "PERM": true, "RWYS": true, "TWYS": true,
	"INTL": true, "CONC": true, "TORA": true, "TODA": true, "ASDA": true,
	"PAPI": true, "VASI": true, "ALSF": true, "MALS": true, "ATIS": true,
	"AFTN": true, "EXCP": true, "SKED": true, "SUPP": true, "PROC": true,
	"DEST": true, "GATE": true, "STAR": true, "MNTN": true, "ARPT": true,
	// Weather groups.
	"AUTO": true, "SNOW": true, "RAIN": true, "MIST": true, "DUST": true,
	"SAND": true, "TURB": true, "ICNG": true, "PROB": true,
	// FIR/oceanic control centres (not aerodromes).
	"EGGX": true, "CZQX": true, "BIRD": true, "KZNY": true, "KZAK": true,
	"PAZA": true, "YBBB": true,
}

// validICAOPrefixes contains valid ICAO regional prefixes.
// K (USA) is handled separately as a single-letter prefix.
var validICAOPrefixes = map[string]bool{
	// A - South Pacific (limited).
	"AG": true, "AN": true, "AY": true,
	// B - Greenland, Iceland, Kosovo.
	"BG": true, "BI": true, "BK": true,
	// C - Canada.
	"CY": true, "CZ": true,
	// D - West Africa (DI = Ivory Coast).
	"DA": true, "DB": true, "DF": true, "DG": true, "DI": true, "DN": true, "DR": true, "DT": true, "DX": true,
	// E - Northern Europe.
	"EB": true, "ED": true, "EE": true, "EF": true, "EG": true, "EH": true, "EI": true, "EK": true, "EL": true, "EN": true, "EP": true, "ES": true, "ET": true, "EV": true, "EY": true,
	// F - Central/Southern Africa, Indian Ocean.
	"FA": true, "FB": true, "FC": true, "FD": true, "FE": true, "FG": true, "FH": true, "FI": true, "FJ": true, "FK": true, "FL": true, "FM": true, "FN": true, "FO": true, "FP": true, "FQ": true, "FS": true, "FT": true, "FV": true, "FW": true, "FX": true, "FY": true, "FZ": true,
	// G - Western Africa, Maghreb.
	"GA": true, "GB": true, "GC": true, "GE": true, "GF": true, "GG": true, "GL": true, "GM": true, "GO": true, "GQ": true, "GS": true, "GU": true, "GV": true,
	// H - East Africa.
	"HA": true, "HB": true, "HC": true, "HD": true, "HE": true, "HH": true, "HK": true, "HL": true, "HR": true, "HS": true, "HT": true, "HU": true,
	// L - Southern Europe (including LS Switzerland, LL Israel, LM Malta).
	"LA": true, "LB": true, "LC": true, "LD": true, "LE": true, "LF": true, "LG": true, "LH": true, "LI": true, "LJ": true, "LK": true, "LL": true, "LM": true, "LN": true, "LO": true, "LP": true, "LQ": true, "LR": true, "LS": true, "LT": true, "LU": true, "LV": true, "LW": true, "LX": true, "LY": true, "LZ": true,
	// M - Central America, Mexico, Caribbean.
	"MB": true, "MD": true, "MG": true, "MH": true, "MK": true, "MM": true, "MN": true, "MP": true, "MR": true, "MS": true, "MT": true, "MU": true, "MW": true, "MY": true, "MZ": true,
	// N - Pacific.
	"NC": true, "NF": true, "NG": true, "NI": true, "NL": true, "NS": true, "NT": true, "NV": true, "NW": true, "NZ": true,
	// O - Middle East.
	"OA": true, "OB": true, "OE": true, "OI": true, "OJ": true, "OK": true, "OL": true, "OM": true, "OO": true, "OP": true, "OR": true, "OS": true, "OT": true, "OY": true,
	// P - Pacific, Alaska, Hawaii.
	"PA": true, "PB": true, "PC": true, "PF": true, "PG": true, "PH": true, "PJ": true, "PK": true, "PL": true, "PM": true, "PO": true, "PP": true, "PT": true, "PW": true,
	// R - Far East (RO = Japan Ryukyu/Okinawa).
	"RC": true, "RJ": true, "RK": true, "RO": true, "RP": true,
	// S - South America.
	"SA": true, "SB": true, "SC": true, "SD": true, "SE": true, "SF": true, "SG": true, "SK": true, "SL": true, "SM": true, "SN": true, "SO": true, "SP": true, "SS": true, "SU": true, "SV": true, "SW": true, "SY": true,
	// T - Caribbean (TB = Barbados, TF = French Caribbean, TI = US Virgin Islands).
	"TA": true, "TB": true, "TC": true, "TD": true, "TF": true, "TG": true, "TI": true, "TJ": true, "TK": true, "TL": true, "TN": true, "TQ": true, "TR": true, "TT": true, "TU": true, "TV": true, "TX": true,
	// U - Russia, former USSR.
	"UA": true, "UB": true, "UC": true, "UD": true, "UE": true, "UG": true, "UH": true, "UI": true, "UK": true, "UL": true, "UM": true, "UN": true, "UO": true, "UR": true, "US": true, "UT": true, "UU": true, "UW": true,
	// V - South/Southeast Asia (VA/VI = India, VC = Sri Lanka, VD = Cambodia, VM = Vietnam/Macau).
	"VA": true, "VC": true, "VD": true, "VE": true, "VG": true, "VH": true, "VI": true, "VL": true, "VM": true, "VN": true, "VO": true, "VQ": true, "VR": true, "VT": true, "VV": true, "VY": true,
	// W - Indonesia, Malaysia.
	"WA": true, "WB": true, "WI": true, "WM": true, "WP": true, "WR": true, "WS": true,
	// Y - Australia.
	"YA": true, "YB": true, "YC": true, "YD": true, "YF": true, "YG": true, "YH": true, "YI": true, "YL": true, "YM": true, "YN": true, "YO": true, "YP": true, "YR": true, "YS": true, "YT": true, "YU": true, "YV": true, "YW": true, "YY": true,
	// Z - China.
	"ZA": true, "ZB": true, "ZG": true, "ZH": true, "ZJ": true, "ZK": true, "ZL": true, "ZM": true, "ZP": true, "ZS": true, "ZU": true, "ZW": true, "ZY": true,
}

// hasValidICAOPrefix checks if a code starts with a valid regional prefix.
func hasValidICAOPrefix(code string) bool {
	if len(code) < 2 {
		return false
	}
	// K is a single-letter prefix for USA.
	if code[0] == 'K' {
		return true
	}
	return validICAOPrefixes[code[:2]]
}

// IsValidICAO checks if a potential ICAO code is likely valid.
// Validates length, character set, regional prefix, and blocklist.
func IsValidICAO(code string) bool {
	if len(code) != 4 {
		return false
	}
	if ICAOBlocklist[code] {
		return false
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return hasValidICAOPrefix(code)
}

// FindValidICAO finds the first valid ICAO code in text.
func FindValidICAO(text string) string {
	for _, m := range ICAOPattern.FindAllString(text, -1) {
		if IsValidICAO(m) {
			return m
		}
	}
	return ""
}

// IATAToICAO maps common IATA codes to ICAO codes.
var IATAToICAO = map[string]string{
	"SFO": "KSFO", "LAX": "KLAX", "JFK": "KJFK", "ORD": "KORD",
	"DFW": "KDFW", "ATL": "KATL", "DEN": "KDEN", "SEA": "KSEA",
	"CLT": "KCLT", "PHX": "KPHX", "MIA": "KMIA", "BOS": "KBOS",
	"MSP": "KMSP", "DTW": "KDTW", "EWR": "KEWR", "LGA": "KLGA",
	"IAH": "KIAH", "ANC": "PANC", "HNL": "PHNL",
}

// NormalizeAirport upper-cases an airport hint and maps well-known IATA
// codes to their ICAO equivalent. Anything else is returned trimmed.
func NormalizeAirport(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if icao, ok := IATAToICAO[code]; ok {
		return icao
	}
	return code
}

// tokenReplacer is used by Tokenize for efficient single-pass replacement.
var tokenReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\t", " ", "=", " ")

// Tokenize splits report text into upper-case whitespace-separated groups.
// A trailing "=" end-of-report marker is dropped.
func Tokenize(text string) []string {
	fields := strings.Fields(tokenReplacer.Replace(text))
	tokens := make([]string, len(fields))
	for i, f := range fields {
		tokens[i] = strings.ToUpper(f)
	}
	return tokens
}

var spaceRe = regexp.MustCompile(`\s+`)

// CollapseSpace trims text and replaces runs of whitespace with one space.
func CollapseSpace(text string) string {
	return spaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
}

// Window returns text[start-radius : end+radius] clamped to the string and
// to rune boundaries, trimmed of surrounding whitespace.
func Window(text string, start, end, radius int) string {
	lo := max(start-radius, 0)
	hi := min(end+radius, len(text))
	for lo > 0 && !utf8.RuneStart(text[lo]) {
		lo--
	}
	for hi < len(text) && !utf8.RuneStart(text[hi]) {
		hi++
	}
	return strings.TrimSpace(text[lo:hi])
}

// Truncate cuts text to limit bytes on a rune boundary and appends "..."
// when anything was removed.
func Truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
