package summary

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"aviation_briefing/internal/notam"
	"aviation_briefing/internal/report"
	"aviation_briefing/internal/route"
)

// BriefingInput is everything a comprehensive briefing covers. METARs and
// TAFs are keyed by airport.
type BriefingInput struct {
	Departure string              `json:"departure,omitempty"`
	Arrival   string              `json:"arrival,omitempty"`
	METARs    map[string]string   `json:"metars,omitempty"`
	TAFs      map[string]string   `json:"tafs,omitempty"`
	PIREPs    []string            `json:"pireps,omitempty"`
	SIGMETs   []string            `json:"sigmets,omitempty"`
	AIRMETs   []string            `json:"airmets,omitempty"`
	NOTAMs    []notam.ParsedNotam `json:"notams,omitempty"`
}

const maxPriorityNotams = 3

var (
	heavyRule = strings.Repeat("=", 60)
	lightRule = strings.Repeat("-", 40)
)

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Briefing assembles the comprehensive weather briefing: a header, one
// section per report type present, and a go/no-go recommendation. With a
// backend it is prefixed by an executive summary.
func (s *Summarizer) Briefing(ctx context.Context, in BriefingInput) string {
	var lines []string

	if in.Departure != "" || in.Arrival != "" {
		dep, arr := in.Departure, in.Arrival
		if dep == "" {
			dep = "N/A"
		}
		if arr == "" {
			arr = "N/A"
		}
		lines = append(lines, "COMPREHENSIVE WEATHER BRIEFING", "Route: "+dep+" → "+arr)
	} else {
		lines = append(lines, "WEATHER BRIEFING")
	}
	lines = append(lines,
		"Generated: "+s.clock.Now().UTC().Format("2006-01-02 15:04 UTC"),
		heavyRule,
	)

	if len(in.METARs) > 0 {
		lines = append(lines, "\n🌤️  CURRENT CONDITIONS (METARs)", lightRule)
		for _, airport := range sortedKeys(in.METARs) {
			sum := s.Summarize(ctx, Request{Kind: report.KindMETAR, Text: in.METARs[airport]})
			lines = append(lines, airport+": "+sum)
		}
	}

	if len(in.TAFs) > 0 {
		lines = append(lines, "\n🔮 TERMINAL FORECASTS (TAFs)", lightRule)
		for _, airport := range sortedKeys(in.TAFs) {
			sum := s.Summarize(ctx, Request{Kind: report.KindTAF, Text: in.TAFs[airport]})
			lines = append(lines, airport+": "+sum)
		}
	}

	if len(in.PIREPs) > 0 {
		lines = append(lines, "\n✈️  PILOT REPORTS (PIREPs)", lightRule,
			s.Summarize(ctx, Request{Kind: report.KindPIREP, Texts: in.PIREPs}))
	}

	if len(in.SIGMETs) > 0 {
		lines = append(lines, "\n⚠️  SIGNIFICANT WEATHER (SIGMETs)", lightRule,
			s.Summarize(ctx, Request{Kind: report.KindSIGMET, Texts: in.SIGMETs}))
	}

	if len(in.AIRMETs) > 0 {
		lines = append(lines, "\n📋 AIRMEN'S WEATHER (AIRMETs)", lightRule,
			s.Summarize(ctx, Request{Kind: report.KindAIRMET, Texts: in.AIRMETs}))
	}

	if len(in.NOTAMs) > 0 {
		lines = append(lines, "\n📢 NOTICES TO AIRMEN (NOTAMs)", lightRule)

		var high []*notam.ParsedNotam
		for i := range in.NOTAMs {
			if in.NOTAMs[i].Severity == notam.SeverityHigh {
				high = append(high, &in.NOTAMs[i])
			}
		}
		if len(high) > 0 {
			lines = append(lines, fmt.Sprintf("🔴 %d High-Priority NOTAMs:", len(high)))
			for i, n := range high {
				if i == maxPriorityNotams {
					break
				}
				lines = append(lines, "• "+s.Summarize(ctx, Request{Kind: report.KindNOTAM, Notam: n}))
			}
		}
		if rest := len(in.NOTAMs) - len(high); rest > 0 {
			lines = append(lines, fmt.Sprintf("📝 %d Additional NOTAMs (review individually)", rest))
		}
	}

	a := route.Assess(in.METARs, route.Hazards{SIGMETs: in.SIGMETs, AIRMETs: in.AIRMETs})
	lines = append(lines, "\n🎯 FLIGHT RECOMMENDATION", lightRule,
		"Overall Status: "+string(a.OverallStatus),
		"Confidence: "+string(a.Confidence),
	)
	if len(a.RiskFactors) > 0 {
		lines = append(lines, "Risk Factors: "+strings.Join(a.RiskFactors, ", "))
	}
	if len(a.Recommendations) > 0 {
		lines = append(lines, "Recommendation: "+a.Recommendations[0])
	}

	full := strings.Join(lines, "\n")

	prompt := "Create an executive summary of this flight weather briefing focusing on key decisions and safety factors: " + full
	if exec, ok := s.complete(ctx, prompt, 200, defaultMinLength); ok {
		return "EXECUTIVE SUMMARY:\n" + exec + "\n\n" + full
	}
	return full
}
