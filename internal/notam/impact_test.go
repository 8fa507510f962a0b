package notam

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssessFlightImpact(t *testing.T) {
	tests := []struct {
		name     string
		severity Severity
		category Category
		score    int
		closure  bool
		want     FlightImpactAssessment
	}{
		{
			name:     "high severity",
			severity: SeverityHigh,
			category: CategoryService,
			want: FlightImpactAssessment{
				OverallImpact: SeverityHigh, GoNoGoFactor: true, PilotActionRequired: true,
				AffectedOperations: []string{},
			},
		},
		{
			name:     "approach category",
			severity: SeverityLow,
			category: CategoryApproach,
			want: FlightImpactAssessment{
				OverallImpact: SeverityHigh, GoNoGoFactor: true, PilotActionRequired: true,
				AffectedOperations: []string{OpApproach, OpLanding},
			},
		},
		{
			name:     "closure in description",
			severity: SeverityLow,
			category: CategoryOther,
			closure:  true,
			want: FlightImpactAssessment{
				OverallImpact: SeverityHigh, GoNoGoFactor: true, PilotActionRequired: true,
				AffectedOperations: []string{},
			},
		},
		{
			name:     "taxiway",
			severity: SeverityLow,
			category: CategoryTaxiway,
			want: FlightImpactAssessment{
				OverallImpact: SeverityMedium, AlternateProcedures: true, PilotActionRequired: true,
				AffectedOperations: []string{OpGroundOperations},
			},
		},
		{
			name:     "score threshold",
			severity: SeverityLow,
			category: CategoryOther,
			score:    3,
			want: FlightImpactAssessment{
				OverallImpact: SeverityMedium, AlternateProcedures: true, PilotActionRequired: true,
				AffectedOperations: []string{},
			},
		},
		{
			name:     "navigation",
			severity: SeverityLow,
			category: CategoryNavigation,
			want: FlightImpactAssessment{
				OverallImpact: SeverityMedium, AlternateProcedures: true, PilotActionRequired: true,
				AffectedOperations: []string{OpNavigation},
			},
		},
		{
			name:     "nothing notable",
			severity: SeverityLow,
			category: CategoryFrequency,
			score:    2,
			want: FlightImpactAssessment{
				OverallImpact: SeverityLow, AffectedOperations: []string{},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := AssessFlightImpact(tt.severity, tt.category, Impact{SeverityScore: tt.score}, tt.closure)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAssessFlightImpact_DoesNotShareOperations(t *testing.T) {
	a := AssessFlightImpact(SeverityLow, CategoryRunway, Impact{}, false)
	a.AffectedOperations[0] = "mutated"

	b := AssessFlightImpact(SeverityLow, CategoryRunway, Impact{}, false)
	assert.Equal(t, OpTakeoff, b.AffectedOperations[0])
}
