// Package registry dispatches raw reports to the parsers registered for
// their kind.
package registry

import (
	"sort"
	"sync"

	"aviation_briefing/internal/report"
)

// Result is the common interface for all parse results.
type Result interface {
	Kind() report.Kind // e.g. notam, metar, pirep
	MessageID() int64  // The original message ID
}

// Attributes are the indexable fields of a result, used by stores and sinks.
type Attributes struct {
	Airport  string `json:"airport,omitempty"`
	Severity string `json:"severity,omitempty"`
	Category string `json:"category,omitempty"`
	Degraded bool   `json:"degraded,omitempty"`
}

// Describer is implemented by results that carry Attributes.
type Describer interface {
	Attributes() Attributes
}

// AttributesOf returns r's attributes, or the zero value when r does not
// describe itself.
func AttributesOf(r Result) Attributes {
	if d, ok := r.(Describer); ok {
		return d.Attributes()
	}
	return Attributes{}
}

// Parser is implemented by each report parser.
type Parser interface {
	// Name returns the parser's unique identifier.
	Name() string

	// Kinds returns which report kinds this parser handles.
	// Empty slice means "all kinds" (content-based parser).
	Kinds() []report.Kind

	// QuickCheck performs a fast string check before expensive regex.
	// Returns true if the message MIGHT be parseable (false = definitely skip).
	QuickCheck(text string) bool

	// Priority determines order when multiple parsers handle the same kind.
	// Lower number = checked first.
	Priority() int

	// Parse attempts to parse the message, returns nil if not applicable.
	Parse(msg *report.Message) Result
}

// Registry holds the registered parsers organised for dispatch.
type Registry struct {
	mu sync.RWMutex

	// byKind maps kinds to parser slices, sorted by Priority (ascending)
	byKind map[report.Kind][]Parser

	// global holds parsers that check all messages (content-based)
	global []Parser

	// catchAll holds parsers that run only when nothing else matched
	catchAll []Parser

	sorted bool
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		byKind: make(map[report.Kind][]Parser),
	}
}

// Register adds a parser to the registry.
func (r *Registry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kinds := p.Kinds()
	if len(kinds) == 0 {
		r.global = append(r.global, p)
	} else {
		for _, k := range kinds {
			r.byKind[k] = append(r.byKind[k], p)
		}
	}
	r.sorted = false
}

// RegisterCatchAll adds a parser that runs only when nothing else matched.
func (r *Registry) RegisterCatchAll(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catchAll = append(r.catchAll, p)
	r.sorted = false
}

// Sort sorts all parser slices by priority. Call before dispatching.
func (r *Registry) Sort() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sorted {
		return
	}

	byPriority := func(ps []Parser) {
		sort.SliceStable(ps, func(i, j int) bool {
			return ps[i].Priority() < ps[j].Priority()
		})
	}
	for _, parsers := range r.byKind {
		byPriority(parsers)
	}
	byPriority(r.global)
	byPriority(r.catchAll)

	r.sorted = true
}

// candidates returns the kind-specific and global parsers for msg, in
// dispatch order. Untagged messages are classified by content first.
func (r *Registry) candidates(msg *report.Message) []Parser {
	kind := msg.ResolvedKind()
	out := make([]Parser, 0, len(r.byKind[kind])+len(r.global))
	out = append(out, r.byKind[kind]...)
	return append(out, r.global...)
}

// Dispatch routes a message to the parsers for its kind and returns all
// results. If none matched, the catch-all parsers run.
func (r *Registry) Dispatch(msg *report.Message) []Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []Result
	for _, p := range r.candidates(msg) {
		if !p.QuickCheck(msg.Text) {
			continue
		}
		if result := p.Parse(msg); result != nil {
			results = append(results, result)
		}
	}

	if len(results) == 0 {
		for _, p := range r.catchAll {
			if result := p.Parse(msg); result != nil {
				results = append(results, result)
			}
		}
	}

	return results
}

// DispatchFirst returns only the first successful parse result, or nil.
func (r *Registry) DispatchFirst(msg *report.Message) Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.candidates(msg) {
		if !p.QuickCheck(msg.Text) {
			continue
		}
		if result := p.Parse(msg); result != nil {
			return result
		}
	}

	for _, p := range r.catchAll {
		if result := p.Parse(msg); result != nil {
			return result
		}
	}

	return nil
}

// RegisteredKinds returns all kinds that have parsers registered.
func (r *Registry) RegisteredKinds() []report.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]report.Kind, 0, len(r.byKind))
	for k := range r.byKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// AllParsers returns every registered parser once, global parsers first,
// then kind-specific parsers by kind, then catch-alls.
func (r *Registry) AllParsers() []Parser {
	kinds := r.RegisteredKinds()

	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var result []Parser
	add := func(ps []Parser) {
		for _, p := range ps {
			if !seen[p.Name()] {
				seen[p.Name()] = true
				result = append(result, p)
			}
		}
	}

	add(r.global)
	for _, k := range kinds {
		add(r.byKind[k])
	}
	add(r.catchAll)

	return result
}

// ParserCount returns the number of unique registered parsers.
func (r *Registry) ParserCount() int {
	return len(r.AllParsers())
}
