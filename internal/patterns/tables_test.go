package patterns

import (
	"regexp"
	"strings"
	"testing"
)

func TestNewTablesShape(t *testing.T) {
	tables := NewTables()

	levels := make([]string, len(tables.Severity))
	for i, tier := range tables.Severity {
		levels[i] = tier.Level
	}
	if len(levels) != 3 || levels[0] != TierHigh || levels[1] != TierMedium || levels[2] != TierLow {
		t.Errorf("severity tiers = %v, want [high medium low]", levels)
	}

	wantCategories := []string{"runway", "taxiway", "approach", "navigation", "lighting", "airspace", "obstacle", "service", "frequency"}
	if len(tables.Categories) != len(wantCategories) {
		t.Fatalf("got %d categories, want %d", len(tables.Categories), len(wantCategories))
	}
	for i, rule := range tables.Categories {
		if rule.Name != wantCategories[i] {
			t.Errorf("category %d = %q, want %q", i, rule.Name, wantCategories[i])
		}
	}

	wantImpacts := []string{"closure", "restriction", "information"}
	for i, set := range tables.Impacts {
		if set.Name != wantImpacts[i] {
			t.Errorf("impact %d = %q, want %q", i, set.Name, wantImpacts[i])
		}
	}
}

func TestFacilityPatternsCaptureIdentifier(t *testing.T) {
	tables := NewTables()

	tests := []struct {
		facility string
		text     string
		want     string
	}{
		{"runway", "RWY 10L/28R CLSD", "10L"},
		{"taxiway", "TWY B2 CLSD", "B2"},
		{"approach", "ILS RWY 27 U/S", "27"},
		{"navaid", "VOR ORD OTS", "ORD"},
		{"frequency", "TWR FREQ 118.1 AVBL", "118.1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.facility, func(t *testing.T) {
			var found string
			for _, set := range tables.Facilities {
				if set.Name != tt.facility {
					continue
				}
				for _, re := range set.Patterns {
					if m := re.FindStringSubmatch(tt.text); m != nil {
						found = m[1]
						break
					}
				}
			}
			if found != tt.want {
				t.Errorf("%s identifier = %q, want %q", tt.facility, found, tt.want)
			}
		})
	}
}

func TestCoordinateFormats(t *testing.T) {
	tables := NewTables()

	tests := []struct {
		text       string
		wantFormat string
	}{
		{"OBST CRANE 415530N0874830W 650FT AMSL", "dms_compact"},
		{"AREA CENTRED 41 55 30N 087 48 30W", "dms_spaced"},
		{"Q)KZAU/QMRLC/IV/NBO/A/000/999/4155N08748W005", "dm_compact"},
	}

	for _, tt := range tests {
		m := tables.Coordinates.Parse(tt.text)
		if m == nil {
			t.Errorf("no coordinate match in %q", tt.text)
			continue
		}
		if m.FormatName != tt.wantFormat {
			t.Errorf("format = %q, want %q", m.FormatName, tt.wantFormat)
		}
	}
}

func TestExpand(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`RWY\s*({RUNWAY})`, `RWY\s*(\d{2}[LRC]?)`},
		{`B\)\s*({DTG10})\b`, `B\)\s*(\d{10})\b`},
		{`{ICAO}/{NOTAMID}`, `[A-Z]{4}/[A-Z]\d{4}/\d{2}`},
		{`{UNKNOWN} \d{2}`, `{UNKNOWN} \d{2}`},
	}

	for _, tt := range tests {
		if got := Expand(tt.in); got != tt.want {
			t.Errorf("Expand(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTablesExpandPlaceholders(t *testing.T) {
	tables := NewTables()

	var sets [][]*regexp.Regexp
	for _, set := range tables.Facilities {
		sets = append(sets, set.Patterns)
	}
	sets = append(sets, tables.Times.Effective, tables.Times.Until, tables.Times.Daily, tables.NotamIDs, tables.AirportMarkers)
	for _, set := range sets {
		for _, re := range set {
			if placeholderRe.MatchString(re.String()) {
				t.Errorf("unexpanded placeholder in %q", re.String())
			}
		}
	}

	tests := []struct {
		name string
		res  []*regexp.Regexp
		text string
		want []string
	}{
		{"effective", tables.Times.Effective, "B)2110011200 C)2110012359", []string{"2110011200"}},
		{"until", tables.Times.Until, "B)2110011200 C)2110012359", []string{"2110012359"}},
		{"daily", tables.Times.Daily, "TWY A CLSD DAILY 2200-0600", []string{"2200", "0600"}},
		{"notam id", tables.NotamIDs, "NOTAMN A1234/21 E)RWY 10L CLSD", []string{"A1234/21"}},
		{"airport", tables.AirportMarkers, "Q)KORD/QMRLC A)KJFK", []string{"KJFK"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, re := range tt.res {
				if m := re.FindStringSubmatch(tt.text); m != nil {
					got = m[1:]
					break
				}
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("captures = %v, want %v", got, tt.want)
			}
		})
	}
}

var placeholderRe = regexp.MustCompile(`\{[A-Z][A-Z0-9_]*\}`)
