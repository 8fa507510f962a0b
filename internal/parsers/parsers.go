// Package parsers builds the registry holding every report parser.
package parsers

import (
	"aviation_briefing/internal/notam"
	"aviation_briefing/internal/parsers/generic"
	notamparser "aviation_briefing/internal/parsers/notam"
	"aviation_briefing/internal/parsers/pirep"
	"aviation_briefing/internal/parsers/weather"
	"aviation_briefing/internal/patterns"
	"aviation_briefing/internal/registry"
)

// Deps are the shared components parsers are built from.
type Deps struct {
	// Extractor classifies NOTAMs. Nil builds one over the default tables
	// with the real clock.
	Extractor *notam.Extractor
}

// NewRegistry returns a sorted registry with every parser registered.
func NewRegistry(deps Deps) *registry.Registry {
	if deps.Extractor == nil {
		deps.Extractor = notam.NewExtractor(patterns.NewTables(), nil)
	}

	r := registry.New()
	r.Register(notamparser.New(deps.Extractor))
	r.Register(&weather.MetarParser{})
	r.Register(&weather.TafParser{})
	r.Register(&weather.AdvisoryParser{})
	r.Register(&pirep.Parser{})
	r.RegisterCatchAll(&generic.Parser{})
	r.Sort()
	return r
}
