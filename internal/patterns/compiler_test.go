package patterns

import (
	"testing"
)

func TestCompilerParsePriority(t *testing.T) {
	c := MustCompile([]Format{
		{Name: "with_notam", Pattern: `NOTAM\s*(?P<id>{NOTAMID})`},
		{Name: "bare", Pattern: `\b(?P<id>{NOTAMID})\b`},
	}, nil)

	m := c.Parse("notam b0042/22 rwy 09 clsd")
	if m == nil {
		t.Fatal("expected match")
	}
	if m.FormatName != "with_notam" {
		t.Errorf("FormatName = %q, want with_notam", m.FormatName)
	}
	if got := m.GetCapture("id", ""); got != "B0042/22" {
		t.Errorf("id = %q, want B0042/22", got)
	}
	if m.Text != "NOTAM B0042/22" {
		t.Errorf("Text = %q", m.Text)
	}

	m = c.Parse("A1234/21 RWY 10L CLSD")
	if m == nil || m.FormatName != "bare" {
		t.Fatalf("expected bare match, got %+v", m)
	}
	if m.Start != 0 || m.End != 8 {
		t.Errorf("span = %d-%d, want 0-8", m.Start, m.End)
	}

	if c.Parse("nothing here") != nil {
		t.Error("expected nil match")
	}
}

func TestCompilerFindAllMatches(t *testing.T) {
	c := MustCompile([]Format{
		{Name: "fl", Pattern: `\bFL(?P<fl>{FL})\b`},
	}, nil)

	matches := c.FindAllMatches("SFC-FL180 AND FL240-FL350", "fl")
	want := []string{"180", "240", "350"}
	if len(matches) != len(want) {
		t.Fatalf("got %d matches, want %d", len(matches), len(want))
	}
	for i, m := range matches {
		if m.Captures["fl"] != want[i] {
			t.Errorf("match %d = %q, want %q", i, m.Captures["fl"], want[i])
		}
	}
	if c.FindAllMatches("FL180", "missing") != nil {
		t.Error("unknown format should return nil")
	}
}

func TestCompilerLocalOverride(t *testing.T) {
	c := MustCompile([]Format{
		{Name: "rwy", Pattern: `RWY\s*(?P<rwy>{RUNWAY})`},
	}, map[string]string{"RUNWAY": `\d{2}`})

	m := c.Parse("RWY 10L")
	if got := m.GetCapture("rwy", ""); got != "10" {
		t.Errorf("rwy = %q, want 10", got)
	}
}

func TestCompilerParseWithTrace(t *testing.T) {
	c := MustCompile([]Format{
		{Name: "metar", Pattern: `^METAR\s+(?P<station>{ICAO})`},
		{Name: "wind", Pattern: `(?P<wind>{WIND})`},
	}, nil)

	trace := c.ParseWithTrace("KORD 011200Z 18010KT")
	if len(trace.Formats) != 2 {
		t.Fatalf("got %d format traces, want 2", len(trace.Formats))
	}
	if trace.Formats[0].Matched {
		t.Error("metar format should not match")
	}
	if !trace.Formats[1].Matched || trace.Formats[1].Captures["wind"] != "18010KT" {
		t.Errorf("wind trace = %+v", trace.Formats[1])
	}
	if trace.Match == nil || trace.Match.FormatName != "wind" {
		t.Errorf("trace.Match = %+v", trace.Match)
	}
}

func TestCompileError(t *testing.T) {
	c := NewCompiler([]Format{{Name: "bad", Pattern: `(`}}, nil)
	if err := c.Compile(); err == nil {
		t.Error("expected compile error")
	}
}
