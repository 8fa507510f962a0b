package notam

// operationsByCategory lists the operations each category affects.
// Categories not listed affect none.
var operationsByCategory = map[Category][]string{
	CategoryRunway:     {OpTakeoff, OpLanding},
	CategoryTaxiway:    {OpGroundOperations},
	CategoryApproach:   {OpApproach, OpLanding},
	CategoryNavigation: {OpNavigation},
}

// AssessFlightImpact derives the operational judgment for a NOTAM.
// closureInDescription reports whether the cleaned description contains a
// closure term (CLOSED or CLSD).
func AssessFlightImpact(severity Severity, category Category, impact Impact, closureInDescription bool) FlightImpactAssessment {
	a := FlightImpactAssessment{
		OverallImpact:      SeverityLow,
		AffectedOperations: append([]string{}, operationsByCategory[category]...),
	}

	switch {
	case severity == SeverityHigh,
		category == CategoryRunway,
		category == CategoryApproach,
		closureInDescription:
		a.OverallImpact = SeverityHigh
		a.GoNoGoFactor = true
		a.PilotActionRequired = true

	case severity == SeverityMedium,
		category == CategoryTaxiway,
		category == CategoryNavigation,
		category == CategoryLighting,
		impact.SeverityScore >= 3:
		a.OverallImpact = SeverityMedium
		a.AlternateProcedures = true
		a.PilotActionRequired = true
	}

	return a
}
