package notam

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"aviation_briefing/internal/patterns"
)

const (
	contextRadius     = 20
	descriptionLimit  = 300
	degradedDescLimit = 200
)

// Extractor classifies NOTAM text against a shared set of pattern tables.
// It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	tables *patterns.Tables
	clock  clockwork.Clock
}

// NewExtractor returns an Extractor over tables. A nil clock uses the real
// clock.
func NewExtractor(tables *patterns.Tables, clock clockwork.Clock) *Extractor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Extractor{tables: tables, clock: clock}
}

// Tables returns the tables the extractor classifies with.
func (e *Extractor) Tables() *patterns.Tables {
	return e.tables
}

// Extract parses one NOTAM. It never panics and never fails: empty input
// yields a degraded record with Error set, and a step that panics leaves
// only its own fields empty.
func (e *Extractor) Extract(text, airportHint string) (result ParsedNotam) {
	now := e.clock.Now().UTC()

	defer func() {
		if r := recover(); r != nil {
			result = degraded(text, fmt.Sprintf("extraction failed: %v", r), now)
		}
	}()

	if strings.TrimSpace(text) == "" {
		return degraded(text, "empty NOTAM text", now)
	}

	src := strings.ToValidUTF8(text, "?")
	upper := strings.ToUpper(src)
	description := step(patterns.Truncate(patterns.CollapseSpace(text), descriptionLimit),
		func() string { return e.cleanDescription(text) })

	severity := step(SeverityUnknown, func() Severity { return e.severity(upper) })
	category := step(CategoryUnknown, func() Category { return e.category(upper) })
	facilities := step([]Facility{}, func() []Facility { return e.facilities(src, upper) })
	impact := step(Impact{Type: ImpactUnknown, AffectedPhases: []string{}}, func() Impact { return e.impact(upper) })
	closure := step(false, func() bool { return e.tables.Closure.MatchString(strings.ToUpper(description)) })
	var noID *string
	altitudes := step(Altitudes{FlightLevels: []int{}, Restrictions: []AltitudeRestriction{}},
		func() Altitudes { return e.altitudes(upper) })

	return ParsedNotam{
		RawText:            text,
		NotamID:            step(noID, func() *string { return e.notamID(upper) }),
		AirportCode:        step(noID, func() *string { return e.airport(upper, airportHint) }),
		Severity:           severity,
		Category:           category,
		AffectedFacilities: facilities,
		TimeInfo:           step(TimeInfo{}, func() TimeInfo { return e.timeInfo(upper) }),
		Location:           step(Location{}, func() Location { return e.location(upper) }),
		Altitudes:          altitudes,
		Impact:             impact,
		Keywords:           step([]string{}, func() []string { return e.keywords(upper, facilities) }),
		Description:        description,
		FlightImpact:       AssessFlightImpact(severity, category, impact, closure),
		ParsedAt:           now,
	}
}

// step runs one extraction step, returning empty if it panics.
func step[T any](empty T, fn func() T) (v T) {
	defer func() {
		if r := recover(); r != nil {
			v = empty
		}
	}()
	return fn()
}

func degraded(text, reason string, now time.Time) ParsedNotam {
	return ParsedNotam{
		RawText:            text,
		Severity:           SeverityUnknown,
		Category:           CategoryUnknown,
		AffectedFacilities: []Facility{},
		Altitudes:          Altitudes{FlightLevels: []int{}, Restrictions: []AltitudeRestriction{}},
		Impact:             Impact{Type: ImpactUnknown, AffectedPhases: []string{}},
		Keywords:           []string{},
		Description:        patterns.Truncate(text, degradedDescLimit),
		FlightImpact:       FlightImpactAssessment{OverallImpact: SeverityLow, AffectedOperations: []string{}},
		ParsedAt:           now,
		Error:              reason,
	}
}

func strPtr(s string) *string { return &s }

func (e *Extractor) airport(upper, hint string) *string {
	if code := patterns.NormalizeAirport(hint); code != "" {
		return strPtr(code)
	}
	for _, re := range e.tables.AirportMarkers {
		if m := re.FindStringSubmatch(upper); m != nil {
			return strPtr(m[1])
		}
	}
	if code := patterns.FindValidICAO(upper); code != "" {
		return strPtr(code)
	}
	return nil
}

func (e *Extractor) notamID(upper string) *string {
	for _, re := range e.tables.NotamIDs {
		if m := re.FindStringSubmatch(upper); m != nil {
			return strPtr(m[1])
		}
	}
	return nil
}

// severity picks the highest tier with at least one match. Unmatched text
// defaults to medium so unclassifiable notices are never silently downgraded.
func (e *Extractor) severity(upper string) Severity {
	for _, tier := range e.tables.Severity {
		for _, re := range tier.Patterns {
			if re.MatchString(upper) {
				return Severity(tier.Level)
			}
		}
	}
	return SeverityMedium
}

func (e *Extractor) category(upper string) Category {
	for _, rule := range e.tables.Categories {
		if rule.Pattern.MatchString(upper) {
			return Category(rule.Name)
		}
	}
	return CategoryOther
}

// facilities matches against upper and cuts each context from src, which
// keeps the NOTAM's own casing. src and upper share byte offsets unless
// upper-casing changed the length.
func (e *Extractor) facilities(src, upper string) []Facility {
	if len(src) != len(upper) {
		src = upper
	}

	out := []Facility{}
	for _, set := range e.tables.Facilities {
		for _, re := range set.Patterns {
			for _, loc := range re.FindAllStringSubmatchIndex(upper, -1) {
				id := upper[loc[2]:loc[3]]
				if set.Name == "navaid" && e.tables.NavaidBlocklist[id] {
					continue
				}
				out = append(out, Facility{
					Type:       set.Name,
					Identifier: id,
					Context:    patterns.Window(src, loc[2], loc[3], contextRadius),
				})
			}
		}
	}
	return out
}

// ParseDTG converts a YYMMDDhhmm group to an ISO-8601 UTC timestamp. Years
// are taken as 20YY. Values that do not form a real calendar time return nil.
func ParseDTG(s string) *string {
	if len(s) != 10 {
		return nil
	}
	var parts [5]int
	for i := range parts {
		n, err := strconv.Atoi(s[2*i : 2*i+2])
		if err != nil {
			return nil
		}
		parts[i] = n
	}
	year, month, day, hour, minute := 2000+parts[0], parts[1], parts[2], parts[3], parts[4]

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	// time.Date normalises out-of-range fields; a round trip catches them.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day || t.Hour() != hour || t.Minute() != minute {
		return nil
	}
	return strPtr(t.Format("2006-01-02T15:04:05Z"))
}

func (e *Extractor) timeInfo(upper string) TimeInfo {
	info := TimeInfo{IsTemporary: true}

	if e.tables.Times.Permanent.MatchString(upper) {
		info.IsPermanent = true
		info.IsTemporary = false
	}
	// First matching pattern wins per role; an invalid date leaves the field
	// nil rather than trying the next pattern.
	for _, re := range e.tables.Times.Effective {
		if m := re.FindStringSubmatch(upper); m != nil {
			info.EffectiveFrom = ParseDTG(m[1])
			break
		}
	}
	for _, re := range e.tables.Times.Until {
		if m := re.FindStringSubmatch(upper); m != nil {
			info.EffectiveUntil = ParseDTG(m[1])
			break
		}
	}
	for _, re := range e.tables.Times.Daily {
		if m := re.FindStringSubmatch(upper); m != nil {
			info.DailyTimes = &DailyWindow{Start: m[1], End: m[2]}
			break
		}
	}
	return info
}

func (e *Extractor) location(upper string) Location {
	var loc Location

	if m := e.tables.Coordinates.Parse(upper); m != nil {
		lat := m.GetCapture("lat", m.Captures["latdeg"]+m.Captures["latmin"]+m.Captures["latsec"])
		lon := m.GetCapture("lon", m.Captures["londeg"]+m.Captures["lonmin"]+m.Captures["lonsec"])
		latDir, lonDir := patterns.SpanHemispheres(m.Text)
		loc.Coordinates = &Coordinates{
			Latitude:  patterns.ParseLatitude(lat, latDir),
			Longitude: patterns.ParseLongitude(lon, lonDir),
			Raw:       m.Text,
			Format:    m.FormatName,
		}
	}

	if m := e.tables.Radius.Parse(upper); m != nil {
		if n, err := strconv.Atoi(m.Captures["radius"]); err == nil {
			loc.RadiusNM = &n
		}
	}
	return loc
}

func parseFeet(s string) (int, bool) {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	return n, err == nil
}

func (e *Extractor) altitudes(upper string) Altitudes {
	alt := Altitudes{FlightLevels: []int{}, Restrictions: []AltitudeRestriction{}}
	c := e.tables.Altitudes

	if ms := c.FindAllMatches(upper, "surface_to_fl"); len(ms) > 0 {
		if fl, err := strconv.Atoi(ms[0].Captures["fl"]); err == nil {
			ft := fl * 100
			alt.SurfaceTo = &ft
		}
	}

	seen := map[int]bool{}
	for _, m := range c.FindAllMatches(upper, "flight_level") {
		fl, err := strconv.Atoi(m.Captures["fl"])
		if err != nil || seen[fl] {
			continue
		}
		seen[fl] = true
		alt.FlightLevels = append(alt.FlightLevels, fl*100)
	}

	for _, m := range c.FindAllMatches(upper, "surface_to_ft") {
		if ft, ok := parseFeet(m.Captures["feet"]); ok {
			alt.Restrictions = append(alt.Restrictions, AltitudeRestriction{Feet: ft, Reference: "SFC", Text: m.Text})
		}
	}
	for _, m := range c.FindAllMatches(upper, "feet_reference") {
		if ft, ok := parseFeet(m.Captures["feet"]); ok {
			alt.Restrictions = append(alt.Restrictions, AltitudeRestriction{Feet: ft, Reference: m.Captures["ref"], Text: m.Text})
		}
	}
	return alt
}

func (e *Extractor) impact(upper string) Impact {
	impact := Impact{Type: ImpactUnknown, AffectedPhases: []string{}}

typeLoop:
	for _, set := range e.tables.Impacts {
		for _, re := range set.Patterns {
			if re.MatchString(upper) {
				impact.Type = ImpactType(set.Name)
				break typeLoop
			}
		}
	}

	// Term families are scored independently, so a text can collect both.
	for _, term := range e.tables.HighTerms {
		if term.Pattern.MatchString(upper) {
			impact.SeverityScore += 3
		}
	}
	for _, term := range e.tables.MedTerms {
		if term.Pattern.MatchString(upper) {
			impact.SeverityScore++
		}
	}

	for _, rule := range e.tables.Phases {
		if rule.Pattern.MatchString(upper) {
			impact.AffectedPhases = append(impact.AffectedPhases, rule.Phases...)
		}
	}
	return impact
}

func (e *Extractor) cleanDescription(text string) string {
	cleaned := patterns.CollapseSpace(text)
	cleaned = e.tables.DescHeader.ReplaceAllString(cleaned, "")
	return patterns.Truncate(cleaned, descriptionLimit)
}

func (e *Extractor) keywords(upper string, facilities []Facility) []string {
	set := map[string]bool{}
	for _, rule := range e.tables.Keywords {
		if rule.Pattern.MatchString(upper) {
			set[rule.Name] = true
		}
	}
	for _, f := range facilities {
		switch f.Type {
		case "runway", "taxiway":
			set[f.Type+"_"+strings.ToLower(f.Identifier)] = true
		}
	}

	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
