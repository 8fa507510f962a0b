package summary

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExplainMETAR(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "snow and broken layers",
			text: "METAR KORD 151651Z 27008G18KT 3SM -SN BKN015 OVC030 M02/M08 A2992",
			want: "Weather report for KORD. observed on day 15 at 16:51 UTC. Wind from 270° at 8 knots, gusting to 18 knots. " +
				"Visibility 3 miles. Broken clouds at 1500 feet, Overcast at 3000 feet. Temperature -2°C, dewpoint -8°C. " +
				"Barometric pressure 29.92 inHg. Current weather: snow.",
		},
		{
			name: "cavok with qnh",
			text: "METAR EGLL 151650Z 24010KT CAVOK 15/08 Q1018",
			want: "Weather report for EGLL. observed on day 15 at 16:50 UTC. Wind from 240° at 10 knots. " +
				"Visibility greater than 6 miles. Temperature 15°C, dewpoint 8°C. Barometric pressure 1018 hPa.",
		},
		{
			name: "calm fog",
			text: "METAR KSFO 151656Z 00000KT 1/2SM FG VV002 10/10 A3001",
			want: "Weather report for KSFO. observed on day 15 at 16:56 UTC. Calm winds. Visibility 0.5 miles. " +
				"Vertical visibility at 200 feet. Temperature 10°C, dewpoint 10°C. Barometric pressure 30.01 inHg. Current weather: fog.",
		},
		{
			name: "unreadable",
			text: "hello",
			want: "Raw METAR: hello",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExplainMETAR(tt.text))
		})
	}
}

func TestSummarizer_Explain(t *testing.T) {
	metar := "METAR EGLL 151650Z 24010KT CAVOK 15/08 Q1018"
	full := ExplainMETAR(metar)

	s := New(WithBackend(&fakeBackend{out: "Fine day."}))
	assert.Equal(t, "Fine day.\n\nDetailed: "+full, s.Explain(context.Background(), metar))

	s = New(WithBackend(&fakeBackend{err: errors.New("down")}))
	assert.Equal(t, full, s.Explain(context.Background(), metar))

	assert.Equal(t, "Raw METAR: hello", s.Explain(context.Background(), "hello"))
}
