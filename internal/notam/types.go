// Package notam turns free-text NOTAMs into classified, structured records.
package notam

import (
	"time"
)

// Severity is the operational severity tier of a NOTAM.
type Severity string

const (
	SeverityHigh    Severity = "high"
	SeverityMedium  Severity = "medium"
	SeverityLow     Severity = "low"
	SeverityUnknown Severity = "unknown" // Only on degraded records.
)

// Category is the facility area a NOTAM concerns.
type Category string

const (
	CategoryRunway     Category = "runway"
	CategoryTaxiway    Category = "taxiway"
	CategoryApproach   Category = "approach"
	CategoryNavigation Category = "navigation"
	CategoryLighting   Category = "lighting"
	CategoryAirspace   Category = "airspace"
	CategoryObstacle   Category = "obstacle"
	CategoryService    Category = "service"
	CategoryFrequency  Category = "frequency"
	CategoryOther      Category = "other"
	CategoryUnknown    Category = "unknown" // Only on degraded records.
)

// ImpactType tags the kind of change a NOTAM announces.
type ImpactType string

const (
	ImpactClosure     ImpactType = "closure"
	ImpactRestriction ImpactType = "restriction"
	ImpactInformation ImpactType = "information"
	ImpactUnknown     ImpactType = "unknown"
)

// Operations named in FlightImpactAssessment.AffectedOperations.
const (
	OpTakeoff          = "takeoff"
	OpLanding          = "landing"
	OpTaxi             = "taxi"
	OpApproach         = "approach"
	OpNavigation       = "navigation"
	OpGroundOperations = "ground_operations"
)

// Facility is one facility hit. The same identifier may appear more than once
// when several patterns match it.
type Facility struct {
	Type       string `json:"type" csv:"type"`
	Identifier string `json:"identifier" csv:"identifier"`
	Context    string `json:"context" csv:"context"`
}

// DailyWindow is a recurring hhmm-hhmm activity window.
type DailyWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// TimeInfo holds the validity of a NOTAM. Timestamps are ISO-8601 UTC.
type TimeInfo struct {
	EffectiveFrom  *string      `json:"effective_from"`
	EffectiveUntil *string      `json:"effective_until"`
	DailyTimes     *DailyWindow `json:"daily_times"`
	IsPermanent    bool         `json:"is_permanent"`
	IsTemporary    bool         `json:"is_temporary"`
}

// Coordinates is a decimal-degree position and the text it came from.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Raw       string  `json:"raw"`
	Format    string  `json:"format"`
}

// Location is the optional position and radius of the affected area.
type Location struct {
	Coordinates *Coordinates `json:"coordinates"`
	RadiusNM    *int         `json:"radius_nm"`
}

// AltitudeRestriction is a foot-denominated limit found in the text.
type AltitudeRestriction struct {
	Feet      int    `json:"feet"`
	Reference string `json:"reference,omitempty"` // AMSL, MSL, AGL or SFC.
	Text      string `json:"text"`
}

// Altitudes holds flight levels (in feet) and explicit foot restrictions.
type Altitudes struct {
	SurfaceTo    *int                  `json:"surface_to"`
	FlightLevels []int                 `json:"flight_levels"`
	Restrictions []AltitudeRestriction `json:"restrictions"`
}

// Impact is the announced change and its heuristic severity score.
type Impact struct {
	Type           ImpactType `json:"type"`
	SeverityScore  int        `json:"severity_score"`
	AffectedPhases []string   `json:"affected_phases"`
}

// FlightImpactAssessment is derived from severity, category and impact.
type FlightImpactAssessment struct {
	OverallImpact       Severity `json:"overall_impact"`
	AffectedOperations  []string `json:"affected_operations"`
	PilotActionRequired bool     `json:"pilot_action_required"`
	AlternateProcedures bool     `json:"alternate_procedures"`
	GoNoGoFactor        bool     `json:"go_no_go_factor"`
}

// ParsedNotam is the structured form of one NOTAM. Records are built once per
// Extract call and never updated; re-parsing yields a new record.
//
// A degraded record has Error set and Severity/Category set to unknown.
type ParsedNotam struct {
	RawText            string                 `json:"raw_text"`
	NotamID            *string                `json:"notam_id"`
	AirportCode        *string                `json:"airport_code"`
	Severity           Severity               `json:"severity"`
	Category           Category               `json:"category"`
	AffectedFacilities []Facility             `json:"affected_facilities"`
	TimeInfo           TimeInfo               `json:"time_info"`
	Location           Location               `json:"location"`
	Altitudes          Altitudes              `json:"altitudes"`
	Impact             Impact                 `json:"impact"`
	Keywords           []string               `json:"keywords"`
	Description        string                 `json:"description"`
	FlightImpact       FlightImpactAssessment `json:"flight_impact"`
	ParsedAt           time.Time              `json:"parsed_at"`
	Error              string                 `json:"error,omitempty"`
	SequenceNumber     int                    `json:"sequence_number,omitempty"`
}

// Degraded reports whether extraction failed for this record.
func (p *ParsedNotam) Degraded() bool {
	return p.Error != ""
}

// ID returns the NOTAM ID or "".
func (p *ParsedNotam) ID() string {
	if p.NotamID == nil {
		return ""
	}
	return *p.NotamID
}

// Airport returns the airport code or "".
func (p *ParsedNotam) Airport() string {
	if p.AirportCode == nil {
		return ""
	}
	return *p.AirportCode
}
