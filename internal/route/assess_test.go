package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	clearMETAR  = "METAR KORD 151651Z 27008KT 10SM FEW250 18/06 A3010"
	stormMETAR  = "METAR KMDW 151651Z 24028G40KT 1/2SM +TSRA OVC008CB 22/20 A2972"
	ifrMETAR    = "METAR KJFK 151651Z 18010KT 2SM BR OVC008 12/11 A2990"
	windyMETAR  = "METAR KDEN 151651Z 27030KT 10SM SCT080 10/M05 A2998"
	freezeMETAR = "METAR KBOS 151651Z 05012KT 3SM FZRA OVC015 M01/M02 A2985"
)

func TestAssess_Clear(t *testing.T) {
	a := Assess(map[string]string{"KORD": clearMETAR}, Hazards{})

	assert.Equal(t, StatusGo, a.OverallStatus)
	assert.Equal(t, ConfidenceHigh, a.Confidence)
	assert.Equal(t, 0, a.SeverityScore)
	assert.Empty(t, a.RiskFactors)
	assert.Equal(t, []string{"Good conditions for flight"}, a.Recommendations)
}

func TestAssess_StormIsNoGo(t *testing.T) {
	// Severe 3, IFR 1, winds 2, SIGMETs 2.
	a := Assess(map[string]string{"KMDW": stormMETAR}, Hazards{SIGMETs: []string{"CONVECTIVE SIGMET 12C"}})

	assert.Equal(t, 8, a.SeverityScore)
	assert.Equal(t, StatusNoGo, a.OverallStatus)
	assert.Equal(t, ConfidenceHigh, a.Confidence)
	assert.Equal(t, []string{
		"KMDW: Severe weather",
		"KMDW: IFR conditions",
		"KMDW: Strong winds",
		"Active SIGMETs",
	}, a.RiskFactors)
	assert.Equal(t, []string{"Do not attempt flight - severe conditions"}, a.Recommendations)
}

func TestAssess_Tiers(t *testing.T) {
	tests := []struct {
		name       string
		stations   map[string]string
		hazards    Hazards
		score      int
		status     Status
		confidence Confidence
	}{
		{"ifr only", map[string]string{"KJFK": ifrMETAR}, Hazards{}, 1, StatusGo, ConfidenceHigh},
		{"strong wind", map[string]string{"KDEN": windyMETAR}, Hazards{}, 2, StatusGo, ConfidenceMedium},
		{"freezing rain", map[string]string{"KBOS": freezeMETAR}, Hazards{}, 3, StatusGo, ConfidenceMedium},
		{"freezing rain and airmet", map[string]string{"KBOS": freezeMETAR}, Hazards{AIRMETs: []string{"x"}}, 4, StatusCaution, ConfidenceMedium},
		{"two advisories", map[string]string{"KORD": clearMETAR}, Hazards{SIGMETs: []string{"x"}, AIRMETs: []string{"y"}}, 3, StatusGo, ConfidenceMedium},
		{"ifr and wind and sigmet", map[string]string{"KJFK": ifrMETAR, "KDEN": windyMETAR}, Hazards{SIGMETs: []string{"x"}}, 5, StatusCaution, ConfidenceMedium},
		{"nothing", nil, Hazards{}, 0, StatusGo, ConfidenceHigh},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			a := Assess(tt.stations, tt.hazards)
			assert.Equal(t, tt.score, a.SeverityScore)
			assert.Equal(t, tt.status, a.OverallStatus)
			assert.Equal(t, tt.confidence, a.Confidence)
			assert.Len(t, a.Recommendations, 1)
		})
	}
}

func TestAssess_StationOrder(t *testing.T) {
	a := Assess(map[string]string{"KJFK": ifrMETAR, "KDEN": windyMETAR, "KBOS": freezeMETAR}, Hazards{})

	require.Len(t, a.RiskFactors, 3)
	assert.Equal(t, "KBOS: Severe weather", a.RiskFactors[0])
	assert.Equal(t, "KDEN: Strong winds", a.RiskFactors[1])
	assert.Equal(t, "KJFK: IFR conditions", a.RiskFactors[2])
}

func TestAssess_Monotonic(t *testing.T) {
	stations := map[string]string{"KJFK": ifrMETAR}
	base := Assess(stations, Hazards{})
	withAirmet := Assess(stations, Hazards{AIRMETs: []string{"x"}})
	withBoth := Assess(stations, Hazards{AIRMETs: []string{"x"}, SIGMETs: []string{"y"}})

	assert.Less(t, base.SeverityScore, withAirmet.SeverityScore)
	assert.Less(t, withAirmet.SeverityScore, withBoth.SeverityScore)

	stations["KMDW"] = stormMETAR
	assert.Greater(t, Assess(stations, Hazards{}).SeverityScore, base.SeverityScore)
}

func TestAssess_GarbageIsHarmless(t *testing.T) {
	a := Assess(map[string]string{"XXXX": "not a metar at all", "YYYY": ""}, Hazards{})

	assert.Equal(t, StatusGo, a.OverallStatus)
	assert.Equal(t, 0, a.SeverityScore)
}

func TestAssess_UnreportedCloudHeightIsNotIFR(t *testing.T) {
	a := Assess(map[string]string{"KXYZ": "METAR KXYZ 011251Z AUTO 27008KT 10SM BKN/// 15/10 A3001"}, Hazards{})

	assert.Equal(t, StatusGo, a.OverallStatus)
	assert.Equal(t, 0, a.SeverityScore)
	assert.Empty(t, a.RiskFactors)
}
