// Package variation models variation configurations: named sets of
// overwrite instructions plus the fuzzing rules that generate more of
// them. It also loads the variation test file that binds configurations
// to OpenAPI operations.
package variation

import (
	"maps"
	"slices"

	"github.com/waftester/schemafuzz/pkg/openapi"
)

// Config is one variation: a name, the overwrites applied to the cloned
// request, and the fuzzing rule sets that derive boundary variations
// from it.
type Config struct {
	Name       string           `json:"name" yaml:"name"`
	Overwrites []OverwriteGroup `json:"overwrites,omitempty" yaml:"overwrites,omitempty"`
	Fuzzing    []FuzzingSet     `json:"fuzzing,omitempty" yaml:"fuzzing,omitempty"`
}

// FuzzingSet groups rule sets by request target.
type FuzzingSet struct {
	RequestBody        []RuleSet `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	RequestQueryParams []RuleSet `json:"requestQueryParams,omitempty" yaml:"requestQueryParams,omitempty"`
}

// RuleSet switches categories on or off.
type RuleSet struct {
	RequiredFields      *Toggle `json:"requiredFields,omitempty" yaml:"requiredFields,omitempty"`
	MinimumNumberFields *Toggle `json:"minimumNumberFields,omitempty" yaml:"minimumNumberFields,omitempty"`
	MaximumNumberFields *Toggle `json:"maximumNumberFields,omitempty" yaml:"maximumNumberFields,omitempty"`
	MinLengthFields     *Toggle `json:"minLengthFields,omitempty" yaml:"minLengthFields,omitempty"`
	MaxLengthFields     *Toggle `json:"maxLengthFields,omitempty" yaml:"maxLengthFields,omitempty"`
}

// Toggle is an {"enabled": bool} switch.
type Toggle struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// Enabled reports whether the rule set switches c on.
func (r RuleSet) Enabled(c Category) bool {
	var t *Toggle
	switch c {
	case Required:
		t = r.RequiredFields
	case Minimum:
		t = r.MinimumNumberFields
	case Maximum:
		t = r.MaximumNumberFields
	case MinLength:
		t = r.MinLengthFields
	case MaxLength:
		t = r.MaxLengthFields
	}
	return t != nil && t.Enabled
}

// AllRules returns a rule set with every category enabled.
func AllRules() RuleSet {
	on := func() *Toggle { return &Toggle{Enabled: true} }
	return RuleSet{
		RequiredFields:      on(),
		MinimumNumberFields: on(),
		MaximumNumberFields: on(),
		MinLengthFields:     on(),
		MaxLengthFields:     on(),
	}
}

// Clone returns a deep copy of c. Instruction values are copied as JSON
// shaped trees (maps, slices, scalars).
func (c Config) Clone() Config {
	out := Config{Name: c.Name}
	if c.Overwrites != nil {
		out.Overwrites = make([]OverwriteGroup, len(c.Overwrites))
		for i, g := range c.Overwrites {
			out.Overwrites[i] = g.clone()
		}
	}
	if c.Fuzzing != nil {
		out.Fuzzing = make([]FuzzingSet, len(c.Fuzzing))
		for i, f := range c.Fuzzing {
			out.Fuzzing[i] = FuzzingSet{
				RequestBody:        cloneRules(f.RequestBody),
				RequestQueryParams: cloneRules(f.RequestQueryParams),
			}
		}
	}
	return out
}

// Group returns the overwrite group of kind.
func (c Config) Group(kind Kind) (OverwriteGroup, bool) {
	for _, g := range c.Overwrites {
		if g.Kind == kind {
			return g, true
		}
	}
	return OverwriteGroup{}, false
}

func cloneRules(rules []RuleSet) []RuleSet {
	if rules == nil {
		return nil
	}
	out := make([]RuleSet, len(rules))
	for i, r := range rules {
		out[i] = RuleSet{
			RequiredFields:      cloneToggle(r.RequiredFields),
			MinimumNumberFields: cloneToggle(r.MinimumNumberFields),
			MaximumNumberFields: cloneToggle(r.MaximumNumberFields),
			MinLengthFields:     cloneToggle(r.MinLengthFields),
			MaxLengthFields:     cloneToggle(r.MaxLengthFields),
		}
	}
	return out
}

func cloneToggle(t *Toggle) *Toggle {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// cloneValue deep-copies JSON shaped values. Other types are returned
// as is.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for _, k := range slices.Sorted(maps.Keys(t)) {
			out[k] = cloneValue(t[k])
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Test binds variations to the operations it targets. It travels with
// every generated variation as its metadata.
type Test struct {
	OpenAPIOperation    string   `json:"openApiOperation,omitempty" yaml:"openApiOperation,omitempty"`
	OpenAPIOperationID  string   `json:"openApiOperationId,omitempty" yaml:"openApiOperationId,omitempty"`
	OpenAPIOperationIDs []string `json:"openApiOperationIds,omitempty" yaml:"openApiOperationIds,omitempty"`
	Variations          []Config `json:"variations" yaml:"variations"`
}

// Targets reports whether the test applies to op.
func (t *Test) Targets(op *openapi.MappedOperation) bool {
	if op == nil {
		return false
	}
	if t.OpenAPIOperation != "" && op.MatchesTarget(t.OpenAPIOperation) {
		return true
	}
	if op.OperationID == "" {
		return false
	}
	if t.OpenAPIOperationID == op.OperationID {
		return true
	}
	return slices.Contains(t.OpenAPIOperationIDs, op.OperationID)
}
