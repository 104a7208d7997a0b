// Package placeholder detects {{...}} placeholders in request values and
// resolves generator placeholders ({{$guid}}, {{$randomInt}}) to concrete
// values. Plain variables ({{token}}) belong to an environment this tool
// never sees, so they are reported instead of resolved.
package placeholder

import (
	"fmt"
	"maps"
	"math/rand/v2"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"
)

// Config holds placeholder engine configuration.
type Config struct {
	Prefix string `json:"prefix" yaml:"prefix"`
	Suffix string `json:"suffix" yaml:"suffix"`
	Sigil  string `json:"sigil" yaml:"sigil"` // marks generator tokens
}

// DefaultConfig returns the Postman placeholder syntax.
func DefaultConfig() *Config {
	return &Config{
		Prefix: "{{",
		Suffix: "}}",
		Sigil:  "$",
	}
}

// Outcome says what Resolve did with a value.
type Outcome int

const (
	// Unchanged means the value held no placeholder.
	Unchanged Outcome = iota
	// Resolved means every placeholder was a known generator and was
	// replaced.
	Resolved
	// Skip means the value cannot be resolved locally.
	Skip
)

func (o Outcome) String() string {
	switch o {
	case Resolved:
		return "resolved"
	case Skip:
		return "skip"
	default:
		return "unchanged"
	}
}

// Skip reasons.
const (
	ReasonUserVariable     = "user variable"
	ReasonUnknownGenerator = "unknown generator"
)

// Resolution is the result of Resolve.
type Resolution struct {
	Value   string
	Outcome Outcome
	Reason  string // set when Outcome is Skip
	Token   string // the placeholder that caused the skip
}

// Skipped reports whether the caller should leave the value alone.
func (r Resolution) Skipped() bool { return r.Outcome == Skip }

// Generator produces a value for one generator token.
type Generator struct {
	Name        string // token without sigil, e.g. "randomInt"
	Description string
	Generate    func(src *Source) string
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand makes generated values reproducible.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.src.rnd = r }
}

// WithClock replaces time.Now for timestamp generators.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.src.now = now }
}

// Engine resolves placeholders. It is safe for concurrent use.
type Engine struct {
	config     *Config
	regex      *regexp.Regexp
	generators map[string]Generator

	mu  sync.Mutex
	src *Source
}

// NewEngine creates a new placeholder engine with the builtin generator
// catalogue registered.
func NewEngine(config *Config, opts ...Option) *Engine {
	if config == nil {
		config = DefaultConfig()
	}

	pattern := regexp.QuoteMeta(config.Prefix) + `\s*(.+?)\s*` + regexp.QuoteMeta(config.Suffix)
	e := &Engine{
		config:     config,
		regex:      regexp.MustCompile(pattern),
		generators: make(map[string]Generator),
		src: &Source{
			rnd: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
			now: time.Now,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	for _, g := range builtins() {
		e.Register(g)
	}
	return e
}

// Register adds or replaces a generator.
func (e *Engine) Register(g Generator) {
	e.generators[g.Name] = g
}

// Get returns a generator by token name (with or without sigil).
func (e *Engine) Get(name string) (Generator, bool) {
	g, ok := e.generators[strings.TrimPrefix(name, e.config.Sigil)]
	return g, ok
}

// List returns all registered generators sorted by name.
func (e *Engine) List() []Generator {
	names := slices.Sorted(maps.Keys(e.generators))
	out := make([]Generator, 0, len(names))
	for _, name := range names {
		out = append(out, e.generators[name])
	}
	return out
}

// Token returns the placeholder text for a generator name.
func (e *Engine) Token(name string) string {
	return e.config.Prefix + e.config.Sigil + name + e.config.Suffix
}

// Extract returns the distinct placeholder names in s, in order of first
// appearance.
func (e *Engine) Extract(s string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, match := range e.regex.FindAllStringSubmatch(s, -1) {
		if !seen[match[1]] {
			names = append(names, match[1])
			seen[match[1]] = true
		}
	}
	return names
}

// HasPlaceholders checks if s contains placeholders.
func (e *Engine) HasPlaceholders(s string) bool {
	return e.regex.MatchString(s)
}

// Resolve replaces every generator placeholder in value. A value holding
// a plain variable or an unregistered generator is skipped as a whole;
// nothing is replaced in that case.
func (e *Engine) Resolve(value string) Resolution {
	names := e.Extract(value)
	if len(names) == 0 {
		return Resolution{Value: value, Outcome: Unchanged}
	}

	for _, name := range names {
		token := e.config.Prefix + name + e.config.Suffix
		if !strings.HasPrefix(name, e.config.Sigil) {
			return Resolution{Value: value, Outcome: Skip, Reason: ReasonUserVariable, Token: token}
		}
		if _, ok := e.Get(name); !ok {
			return Resolution{Value: value, Outcome: Skip, Reason: ReasonUnknownGenerator, Token: token}
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.regex.ReplaceAllStringFunc(value, func(match string) string {
		name := e.regex.FindStringSubmatch(match)[1]
		g, _ := e.Get(name)
		return g.Generate(e.src)
	})
	return Resolution{Value: out, Outcome: Resolved}
}

// Source is the randomness and clock handed to generators.
type Source struct {
	rnd *rand.Rand
	now func() time.Time
}

// Intn returns a number in [0, n).
func (s *Source) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return s.rnd.IntN(n)
}

// Pick returns a random element of list.
func (s *Source) Pick(list []string) string {
	return list[s.Intn(len(list))]
}

// Now returns the current time of the engine clock.
func (s *Source) Now() time.Time {
	return s.now()
}

// Read fills p with random bytes. It never fails.
func (s *Source) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(s.rnd.Uint32())
	}
	return len(p), nil
}

// String returns n characters drawn from alphabet.
func (s *Source) String(alphabet string, n int) string {
	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(alphabet[s.Intn(len(alphabet))])
	}
	return b.String()
}

func (g Generator) String() string {
	return fmt.Sprintf("%s: %s", g.Name, g.Description)
}
