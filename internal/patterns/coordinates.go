// This file contains coordinate conversion utilities.

package patterns

import (
	"strconv"
	"strings"
)

// ParseDMSCoord parses a packed degrees/minutes/seconds value and returns
// decimal degrees. Supported forms:
//   - DDMM (e.g., 4155 = 41°55')
//   - DDDMM (e.g., 08748 = 87°48')
//   - DDMMSS (e.g., 415530 = 41°55'30")
//   - DDDMMSS (e.g., 0874830 = 87°48'30")
//   - DDMMD / DDDMMD (tenths of minutes, e.g., 34138 = 34°13.8')
//   - DDMM.M / DDDMM.M (decimal minutes)
//
// degDigits is 2 for latitude and 3 for longitude. A dir of S or W makes the
// result negative. Unparseable input returns 0.
func ParseDMSCoord(s string, degDigits int, dir string) float64 {
	if s == "" || len(s) < degDigits {
		return 0
	}

	var deg, min float64

	if whole, frac, ok := strings.Cut(s, "."); ok {
		if len(whole) < degDigits {
			return 0
		}
		d, err := strconv.Atoi(whole[:degDigits])
		if err != nil {
			return 0
		}
		m, err := strconv.ParseFloat(whole[degDigits:]+"."+frac, 64)
		if err != nil {
			return 0
		}
		deg, min = float64(d), m
	} else {
		d, err := strconv.Atoi(s[:degDigits])
		if err != nil {
			return 0
		}
		deg = float64(d)
		rest := s[degDigits:]

		switch len(rest) {
		case 2: // DDMM / DDDMM.
			m, err := strconv.Atoi(rest)
			if err != nil {
				return 0
			}
			min = float64(m)

		case 3: // Minutes plus tenths.
			m, err := strconv.Atoi(rest[:2])
			if err != nil {
				return 0
			}
			tenths, err := strconv.Atoi(rest[2:])
			if err != nil {
				return 0
			}
			min = float64(m) + float64(tenths)/10.0

		case 4: // Minutes plus seconds.
			m, err := strconv.Atoi(rest[:2])
			if err != nil {
				return 0
			}
			sec, err := strconv.Atoi(rest[2:])
			if err != nil {
				return 0
			}
			min = float64(m) + float64(sec)/60.0

		default:
			return 0
		}
	}

	result := deg + min/60.0
	if dir == "S" || dir == "W" {
		result = -result
	}
	return result
}

// ParseLatitude parses a latitude value with direction.
func ParseLatitude(value, dir string) float64 {
	return ParseDMSCoord(value, 2, dir)
}

// ParseLongitude parses a longitude value with direction.
func ParseLongitude(value, dir string) float64 {
	return ParseDMSCoord(value, 3, dir)
}

// SpanHemispheres reports the hemisphere letters for a matched coordinate
// span. The sign is taken from the presence of S or W anywhere in the span,
// not from the letter that follows each component.
func SpanHemispheres(span string) (latDir, lonDir string) {
	latDir, lonDir = "N", "E"
	if strings.ContainsRune(span, 'S') {
		latDir = "S"
	}
	if strings.ContainsRune(span, 'W') {
		lonDir = "W"
	}
	return latDir, lonDir
}
