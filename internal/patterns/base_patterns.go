// This file contains grok-style base patterns for use with the Compiler.

package patterns

// BasePatterns defines reusable regex components referenced from formats
// with {PATTERN_NAME} syntax.
var BasePatterns = map[string]string{
	// Location identifiers.
	"ICAO":   `[A-Z]{4}`,
	"NAVAID": `[A-Z]{3}`,

	// NOTAM identifiers: series letter, number, year (A1234/21).
	"NOTAMID": `[A-Z]\d{4}/\d{2}`,

	// Date-time groups.
	"DTG10": `\d{10}`, // YYMMDDhhmm
	"HHMM":  `\d{4}`,  // hhmm

	// Coordinates - latitude formats.
	"LAT_DIR": `[NS]`,
	"LAT_4D":  `\d{4}`, // DDMM
	"LAT_6D":  `\d{6}`, // DDMMSS
	"LAT_DEG": `\d{2}`,

	// Coordinates - longitude formats.
	"LON_DIR": `[EW]`,
	"LON_5D":  `\d{5}`, // DDDMM
	"LON_7D":  `\d{7}`, // DDDMMSS
	"LON_DEG": `\d{3}`,

	"MINSEC": `\d{2}`,

	// Altitude and flight level.
	"FL":   `\d{3}`,
	"FEET": `\d{1,2},?\d{3}`,

	// Aerodrome facilities.
	"RUNWAY":  `\d{2}[LRC]?`,
	"TAXIWAY": `[A-Z]\d?`,
	"FREQ":    `\d{3}\.\d{1,3}`,
}
