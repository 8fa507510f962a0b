package weather

import (
	"testing"

	"aviation_briefing/internal/report"
	wx "aviation_briefing/internal/weather"
)

func TestMetarParse(t *testing.T) {
	parser := &MetarParser{}
	msg := &report.Message{ID: 42, Kind: report.KindMETAR, Text: "METAR KJFK 151651Z 18012KT 2SM BR OVC008 12/11 A2992"}

	res := parser.Parse(msg)
	result, ok := res.(*MetarResult)
	if !ok {
		t.Fatalf("Expected *MetarResult, got %T", res)
	}
	if result.MessageID() != 42 {
		t.Errorf("Expected message ID 42, got %d", result.MessageID())
	}
	if result.Observation.Station != "KJFK" {
		t.Errorf("Expected station KJFK, got %s", result.Observation.Station)
	}
	if result.FlightCategory != wx.IFR {
		t.Errorf("Expected IFR, got %s", result.FlightCategory)
	}
	if result.Assessment.Category != wx.ConditionSignificant {
		t.Errorf("Expected significant conditions, got %s", result.Assessment.Category)
	}
}

func TestMetarParseAirportHint(t *testing.T) {
	parser := &MetarParser{}
	msg := &report.Message{Kind: report.KindMETAR, Airport: "kbos", Text: "27015KT 10SM BKN050"}

	result, ok := parser.Parse(msg).(*MetarResult)
	if !ok {
		t.Fatal("Expected a result for a station-less METAR body")
	}
	if result.Observation.Station != "KBOS" {
		t.Errorf("Expected hinted station KBOS, got %s", result.Observation.Station)
	}
	if result.FlightCategory != wx.VFR {
		t.Errorf("Expected VFR, got %s", result.FlightCategory)
	}
}

func TestMetarParseRejectsGarbage(t *testing.T) {
	parser := &MetarParser{}
	if res := parser.Parse(&report.Message{Text: "hello world"}); res != nil {
		t.Errorf("Expected nil, got %+v", res)
	}
	if parser.QuickCheck("   ") {
		t.Error("QuickCheck should reject blank text")
	}
}

func TestMetarTrace(t *testing.T) {
	parser := &MetarParser{}
	trace := parser.ParseWithTrace(&report.Message{Text: "METAR KJFK 151651Z 18012KT 2SM BR OVC008 12/11 A2992"})

	if !trace.Matched {
		t.Fatal("Expected trace to match")
	}
	values := map[string]string{}
	for _, e := range trace.Extractors {
		values[e.Name] = e.Value
	}
	if values["station"] != "KJFK" {
		t.Errorf("Expected station extractor KJFK, got %q", values["station"])
	}
	if values["ceiling"] != "800ft" {
		t.Errorf("Expected ceiling 800ft, got %q", values["ceiling"])
	}
	if values["pressure"] != "29.92inHg" {
		t.Errorf("Expected pressure 29.92inHg, got %q", values["pressure"])
	}

	blank := parser.ParseWithTrace(&report.Message{Text: ""})
	if blank.QuickCheck.Passed || blank.Matched {
		t.Error("Expected blank trace to fail the quick check")
	}
}

func TestTafParse(t *testing.T) {
	parser := &TafParser{}
	msg := &report.Message{ID: 7, Kind: report.KindTAF, Text: "TAF KJFK 151130Z 1512/1618 18010KT P6SM SCT040 FM151800 20015G25KT 5SM -RA BKN030"}

	result, ok := parser.Parse(msg).(*TafResult)
	if !ok {
		t.Fatal("Expected *TafResult")
	}
	if result.Kind() != report.KindTAF {
		t.Errorf("Expected taf kind, got %s", result.Kind())
	}
	if result.Forecast.Station != "KJFK" {
		t.Errorf("Expected station KJFK, got %s", result.Forecast.Station)
	}
	if result.Forecast.Valid != "1512/1618" {
		t.Errorf("Expected valid 1512/1618, got %s", result.Forecast.Valid)
	}
	if len(result.Forecast.Groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(result.Forecast.Groups))
	}
	if result.Forecast.Groups[1].Change != wx.ChangeFrom {
		t.Errorf("Expected FM group, got %s", result.Forecast.Groups[1].Change)
	}
}

func TestAdvisoryParseSIGMET(t *testing.T) {
	parser := &AdvisoryParser{}
	msg := &report.Message{Kind: report.KindSIGMET, Text: "SIGMET 7 VALID 040330/040730 SBAO- SBAO ATLANTICO FIR SEV TURB FCST FL300/380 STNR NC"}

	result, ok := parser.Parse(msg).(*AdvisoryResult)
	if !ok {
		t.Fatal("Expected *AdvisoryResult")
	}
	if result.Kind() != report.KindSIGMET {
		t.Errorf("Expected sigmet kind, got %s", result.Kind())
	}
	adv := result.Advisory
	if adv.ID != "7" {
		t.Errorf("Expected ID 7, got %s", adv.ID)
	}
	if adv.ValidFrom != "040330" || adv.ValidTo != "040730" {
		t.Errorf("Unexpected validity %s/%s", adv.ValidFrom, adv.ValidTo)
	}
	if len(adv.Hazards) != 1 || adv.Hazards[0] != "severe turbulence" {
		t.Errorf("Expected [severe turbulence], got %v", adv.Hazards)
	}
	if adv.BaseFt == nil || *adv.BaseFt != 30000 || adv.TopFt == nil || *adv.TopFt != 38000 {
		t.Errorf("Expected FL300-FL380, got %v-%v", adv.BaseFt, adv.TopFt)
	}
}

func TestAdvisoryParseAIRMET(t *testing.T) {
	parser := &AdvisoryParser{}
	msg := &report.Message{Kind: report.KindAIRMET, Text: "AIRMET TANGO UPDT 2 FOR TURB VALID UNTIL 152100"}

	result, ok := parser.Parse(msg).(*AdvisoryResult)
	if !ok {
		t.Fatal("Expected *AdvisoryResult")
	}
	if result.Kind() != report.KindAIRMET {
		t.Errorf("Expected airmet kind, got %s", result.Kind())
	}
	if result.Advisory.Series != "Tango" {
		t.Errorf("Expected Tango series, got %s", result.Advisory.Series)
	}
	if result.Advisory.ID != "2" {
		t.Errorf("Expected ID 2, got %s", result.Advisory.ID)
	}
}
