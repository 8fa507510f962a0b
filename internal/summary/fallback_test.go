package summary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aviation_briefing/internal/notam"
	"aviation_briefing/internal/report"
	"aviation_briefing/internal/weather"
)

func TestFallback_METARUsesBrief(t *testing.T) {
	metar := "METAR KORD 151651Z 27008KT 10SM FEW250 18/06 A3010"
	assert.Equal(t, weather.Brief(metar), Fallback(report.KindMETAR, metar))
}

func TestFallback_TAF(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "tempo and from groups",
			text: "TAF KORD 151720Z 1518/1624 27012KT P6SM SCT050 TEMPO 1520/1522 -RA BKN030 FM160200 30008KT P6SM BKN040",
			want: "TAF KORD: • temporary conditions expected • changing conditions • light rain • broken cloud layers",
		},
		{
			name: "thunderstorms and heavy rain",
			text: "TAF KMIA 151720Z 1518/1624 09010KT P6SM VCTS SCT030CB BECMG 1600/1602 +TSRA OVC020",
			want: "TAF KMIA: • conditions becoming • thunderstorms forecast • heavy rain • overcast periods",
		},
		{
			name: "nothing notable",
			text: "TAF KXYZ 151720Z 1518/1624 27012KT P6SM SKC",
			want: "Forecast conditions available",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fallback(report.KindTAF, tt.text))
		})
	}
}

func TestFallback_PIREP(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "moderate chop",
			text: "ORD UA /OV ORD270015/TM 1530/FL350/TP B738/TB MOD CHOP/RM SMOOTH ABOVE FL370",
			want: "Pilot reports: moderate turbulence • smooth flight conditions • at 35000ft",
		},
		{
			name: "severe icing",
			text: "DEN UUA /OV DEN/TM 2210/FL080/TP PC12/IC SEV RIME",
			want: "Pilot reports: severe icing • at 8000ft",
		},
		{
			name: "free text",
			text: "nothing useful here",
			want: "Pilot report: nothing useful here...",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fallback(report.KindPIREP, tt.text))
		})
	}
}

func TestFallback_Advisories(t *testing.T) {
	tests := []struct {
		name string
		kind report.Kind
		text string
		want string
	}{
		{
			name: "convective sigmet",
			kind: report.KindSIGMET,
			text: "CONVECTIVE SIGMET 45C VALID UNTIL 2055Z KS OK FROM 30SW ICT-40NE OKC AREA EMBD TS MOV FROM 24025KT. TOPS ABV FL450.",
			want: "⚠️ Convective SIGMET • Hazards: thunderstorms",
		},
		{
			name: "turbulence sigmet",
			kind: report.KindSIGMET,
			text: "SIGMET 3 VALID 151800/152200 KKCI- SEV TURB BTN FL280 AND FL370",
			want: "⚠️ SIGMET • Hazards: severe turbulence • Valid 151800-152200Z",
		},
		{
			name: "airmet tango",
			kind: report.KindAIRMET,
			text: "AIRMET TANGO UPDT 2 FOR TURB VALID UNTIL 152100 MOD TURB BTN FL240 AND FL380",
			want: "📋 AIRMET Tango (Turbulence) • Conditions: moderate turbulence • 24000-38000ft",
		},
		{
			name: "airmet sierra",
			kind: report.KindAIRMET,
			text: "AIRMET SIERRA FOR IFR AND MTN OBSCN VALID UNTIL 152100 MTN OBSCN BY CLDS/PCPN/BR.",
			want: "📋 AIRMET Sierra (IFR/Mountain Obscuration) • Conditions: reduced visibility, mountain obscuration",
		},
		{
			name: "airmet zulu",
			kind: report.KindAIRMET,
			text: "AIRMET ZULU FOR ICE AND FRZLVL VALID UNTIL 152100 MOD ICE BTN FRZLVL AND FL220",
			want: "📋 AIRMET Zulu (Icing) • Conditions: icing conditions",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fallback(tt.kind, tt.text))
		})
	}
}

func TestFallback_NOTAM(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"runway closed", "RWY 10L/28R CLSD DUE TO MAINT", "NOTAM: Runway closure, [HIGH IMPACT]"},
		{"taxiway lighting", "TWY B LIGHTING U/S", "NOTAM: Taxiway restrictions, Lighting issues, [HIGH IMPACT]"},
		{"approach limited", "ILS RWY 04 APCH PROCEDURES LIMITED", "NOTAM: Runway NOTAM, Navigation/approach changes, [MODERATE IMPACT]"},
		{
			"first sentence",
			"BIRD ACTIVITY REPORTED IN THE VICINITY OF THE AERODROME. EXERCISE VIGILANCE.",
			"NOTAM: BIRD ACTIVITY REPORTED IN THE VICINITY OF THE AERODROME...",
		},
		{"too short", "OBST ERECTED", "NOTAM requires pilot review: OBST ERECTED..."},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fallback(report.KindNOTAM, tt.text))
		})
	}
}

func testNotam(severity notam.Severity) *notam.ParsedNotam {
	return &notam.ParsedNotam{
		Severity:    severity,
		Category:    notam.CategoryRunway,
		Description: "RWY 10L/28R CLSD",
		AffectedFacilities: []notam.Facility{
			{Type: "runway", Identifier: "10L"},
			{Type: "runway", Identifier: "28R"},
		},
		Impact: notam.Impact{Type: notam.ImpactClosure},
	}
}

func TestFormatNotam(t *testing.T) {
	n := testNotam(notam.SeverityHigh)

	assert.Equal(t,
		"Severity: high. Category: runway. Description: RWY 10L/28R CLSD. Affected: runway 10L, runway 28R. Impact: closure",
		FormatNotam(n))
	assert.Equal(t, "NOTAM: Runway closure, [HIGH IMPACT]", FallbackNotam(n))
}

func TestFallback_Generic(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "ifr with gusts",
			text: "15010G28KT 2SM -RA BR OVC008 12/11",
			want: "Weather: IFR conditions, rain, mist, strong winds, Wind from 150° at 10 knots, gusting to 28 knots, Temp 12°C",
		},
		{
			name: "calm and clear",
			text: "00000KT 10SM SKC 20/10",
			want: "Weather: VFR conditions, Calm winds, Temp 20°C",
		},
		{
			name: "nothing recognisable",
			text: "hello",
			want: "Weather conditions require pilot review",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fallback(report.KindUnknown, tt.text))
		})
	}
}

func TestFallbackMany(t *testing.T) {
	pirep := "ORD UA /OV ORD/TM 1530/FL350/TP B738/TB MOD"

	assert.Equal(t, "No pilot reports available", FallbackMany(report.KindPIREP, nil))
	lines := strings.Split(FallbackMany(report.KindPIREP, []string{pirep, pirep, pirep, pirep}), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "PIREP 1: Pilot reports: moderate turbulence • at 35000ft", lines[0])
	assert.True(t, strings.HasPrefix(lines[2], "PIREP 3: "))

	assert.Equal(t, "No SIGMETs active", FallbackMany(report.KindSIGMET, []string{}))
	assert.Equal(t, "⚠️ SIGMET • Hazards: icing", FallbackMany(report.KindSIGMET, []string{"SIGMET 1 SEV ICE"}))
	assert.Equal(t,
		"⚠️ 2 Active SIGMETs - Significant weather hazards present. Review individual reports for details.",
		FallbackMany(report.KindSIGMET, []string{"a", "b"}))

	assert.Equal(t, "No AIRMETs active", FallbackMany(report.KindAIRMET, nil))
	assert.Equal(t,
		"📋 3 Active AIRMETs - Moderate weather conditions. Check individual reports for affected areas.",
		FallbackMany(report.KindAIRMET, []string{"a", "b", "c"}))

	assert.Equal(t, "No METAR data available", FallbackMany(report.KindMETAR, nil))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "abc", clip("abc", 10))
	assert.Equal(t, "ab", clip("abcdef", 2))
	// "é" is two bytes; cutting inside it backs off to the rune start.
	assert.Equal(t, "a", clip("aé", 2))
}
