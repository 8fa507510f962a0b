// Package patterns holds the pattern tables and text helpers shared by the
// report decoders. This file contains the grok-style pattern compiler.

package patterns

import (
	"regexp"
	"strings"
)

// Format is one named pattern with {PLACEHOLDER} references.
type Format struct {
	Name     string         // Format name for identification
	Pattern  string         // Pattern with {PLACEHOLDER} syntax
	Compiled *regexp.Regexp // Compiled regex (populated by Compile)
	Fields   []string       // Field names in capture order (for documentation)
}

// Compiler expands and compiles an ordered list of formats. Formats are
// tried in the order given, so earlier formats take priority.
type Compiler struct {
	basePatterns map[string]string
	formats      []Format
}

// NewCompiler creates a compiler over formats. Local patterns are overlaid on
// BasePatterns and may replace them.
func NewCompiler(formats []Format, localPatterns map[string]string) *Compiler {
	c := &Compiler{
		basePatterns: make(map[string]string, len(BasePatterns)+len(localPatterns)),
		formats:      make([]Format, len(formats)),
	}
	for k, v := range BasePatterns {
		c.basePatterns[k] = v
	}
	for k, v := range localPatterns {
		c.basePatterns[k] = v
	}
	copy(c.formats, formats)
	return c
}

// MustCompile is like Compile but panics on an invalid pattern. Intended for
// tables built once at process start.
func MustCompile(formats []Format, localPatterns map[string]string) *Compiler {
	c := NewCompiler(formats, localPatterns)
	if err := c.Compile(); err != nil {
		panic("patterns: " + err.Error())
	}
	return c
}

// Compile expands all {PLACEHOLDER} references and compiles regexes.
func (c *Compiler) Compile() error {
	for i := range c.formats {
		re, err := regexp.Compile(c.expand(c.formats[i].Pattern))
		if err != nil {
			return err
		}
		c.formats[i].Compiled = re
	}
	return nil
}

// expand replaces {PLACEHOLDER} with actual regex patterns.
func (c *Compiler) expand(pattern string) string {
	return expandWith(pattern, c.basePatterns)
}

// Expand replaces {PLACEHOLDER} references to BasePatterns in pattern.
func Expand(pattern string) string {
	return expandWith(pattern, BasePatterns)
}

func expandWith(pattern string, base map[string]string) string {
	result := pattern
	for name, regex := range base {
		result = strings.ReplaceAll(result, "{"+name+"}", regex)
	}
	return result
}

// Match is a successful format match. Start and End index the upper-cased
// input; Text is the full matched span.
type Match struct {
	FormatName string
	Captures   map[string]string
	Text       string
	Start      int
	End        int
}

func newMatch(format Format, upperText string, loc []int) *Match {
	m := &Match{
		FormatName: format.Name,
		Captures:   make(map[string]string),
		Text:       upperText[loc[0]:loc[1]],
		Start:      loc[0],
		End:        loc[1],
	}
	for i, name := range format.Compiled.SubexpNames() {
		if i == 0 || name == "" || loc[2*i] < 0 {
			continue
		}
		m.Captures[name] = upperText[loc[2*i]:loc[2*i+1]]
	}
	return m
}

// Parse returns the first match of the first format that matches, or nil.
func (c *Compiler) Parse(text string) *Match {
	upperText := strings.ToUpper(text)
	for _, format := range c.formats {
		if format.Compiled == nil {
			continue
		}
		if loc := format.Compiled.FindStringSubmatchIndex(upperText); loc != nil {
			return newMatch(format, upperText, loc)
		}
	}
	return nil
}

// FindAllMatches returns every occurrence of the named format.
func (c *Compiler) FindAllMatches(text string, formatName string) []*Match {
	upperText := strings.ToUpper(text)
	for _, format := range c.formats {
		if format.Name != formatName || format.Compiled == nil {
			continue
		}
		var results []*Match
		for _, loc := range format.Compiled.FindAllStringSubmatchIndex(upperText, -1) {
			results = append(results, newMatch(format, upperText, loc))
		}
		return results
	}
	return nil
}

// FormatNames lists the formats in priority order.
func (c *Compiler) FormatNames() []string {
	names := make([]string, len(c.formats))
	for i, f := range c.formats {
		names[i] = f.Name
	}
	return names
}

// GetCapture is a helper to safely get a capture value with a default.
func (m *Match) GetCapture(name string, defaultVal string) string {
	if m == nil {
		return defaultVal
	}
	if val, ok := m.Captures[name]; ok && val != "" {
		return val
	}
	return defaultVal
}

// FormatTrace contains debug information about a format match attempt.
type FormatTrace struct {
	Name     string            `json:"name"`
	Matched  bool              `json:"matched"`
	Pattern  string            `json:"pattern"`
	Captures map[string]string `json:"captures,omitempty"`
}

// ParseTrace contains complete trace information for a parse attempt.
type ParseTrace struct {
	Formats []FormatTrace `json:"formats"`
	Match   *Match        `json:"match,omitempty"`
}

// ParseWithTrace tries every format and records which ones matched. Match is
// the same result Parse would return.
func (c *Compiler) ParseWithTrace(text string) *ParseTrace {
	upperText := strings.ToUpper(text)
	trace := &ParseTrace{Formats: make([]FormatTrace, 0, len(c.formats))}

	for _, format := range c.formats {
		ft := FormatTrace{Name: format.Name, Pattern: c.expand(format.Pattern)}
		if format.Compiled != nil {
			if loc := format.Compiled.FindStringSubmatchIndex(upperText); loc != nil {
				m := newMatch(format, upperText, loc)
				ft.Matched = true
				ft.Captures = m.Captures
				if trace.Match == nil {
					trace.Match = m
				}
			}
		}
		trace.Formats = append(trace.Formats, ft)
	}
	return trace
}
