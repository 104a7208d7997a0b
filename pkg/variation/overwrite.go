package variation

import (
	"fmt"
	"maps"
	"slices"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/waftester/schemafuzz/pkg/jsonutil"
	"gopkg.in/yaml.v3"
)

// Kind is the request part an overwrite group targets.
type Kind int

const (
	KindRequestBody Kind = iota
	KindRequestQueryParams
	KindRequestHeaders
)

var kindKeys = map[Kind]string{
	KindRequestBody:        "overwriteRequestBody",
	KindRequestQueryParams: "overwriteRequestQueryParams",
	KindRequestHeaders:     "overwriteRequestHeaders",
}

// Key returns the configuration key of the group kind.
func (k Kind) Key() string { return kindKeys[k] }

func (k Kind) String() string {
	switch k {
	case KindRequestBody:
		return "body"
	case KindRequestQueryParams:
		return "query"
	case KindRequestHeaders:
		return "header"
	default:
		return "unknown"
	}
}

func kindFromKey(key string) (Kind, bool) {
	for k, v := range kindKeys {
		if v == key {
			return k, true
		}
	}
	return 0, false
}

// Instruction is one field level change. Exactly one of Remove and
// Overwrite is set; remove instructions carry no value.
type Instruction struct {
	Key       string `json:"key" yaml:"key"`
	Value     any    `json:"value,omitzero" yaml:"value,omitempty"`
	Overwrite bool   `json:"overwrite,omitzero" yaml:"overwrite,omitempty"`
	Remove    bool   `json:"remove,omitzero" yaml:"remove,omitempty"`
}

// RemoveInstruction drops the field at key.
func RemoveInstruction(key string) Instruction {
	return Instruction{Key: key, Remove: true}
}

// OverwriteInstruction replaces (or adds) the field at key with value.
func OverwriteInstruction(key string, value any) Instruction {
	return Instruction{Key: key, Value: value, Overwrite: true}
}

// Validate checks the remove/overwrite exclusivity.
func (i Instruction) Validate() error {
	switch {
	case i.Key == "":
		return fmt.Errorf("%w: missing key", ErrInvalidInstruction)
	case i.Remove && i.Overwrite:
		return fmt.Errorf("%w: %s sets both remove and overwrite", ErrInvalidInstruction, i.Key)
	case i.Remove && i.Value != nil:
		return fmt.Errorf("%w: remove %s carries a value", ErrInvalidInstruction, i.Key)
	}
	return nil
}

// OverwriteGroup holds the instructions for one request part, in the
// order they were added.
type OverwriteGroup struct {
	Kind         Kind
	Instructions []Instruction
}

func (g OverwriteGroup) clone() OverwriteGroup {
	out := OverwriteGroup{Kind: g.Kind, Instructions: make([]Instruction, len(g.Instructions))}
	for i, ins := range g.Instructions {
		ins.Value = cloneValue(ins.Value)
		out.Instructions[i] = ins
	}
	return out
}

// AddBodyOverwrite returns a copy of cfg with ins appended to its request
// body group.
func AddBodyOverwrite(cfg Config, ins Instruction) Config {
	return AddOverwrite(cfg, KindRequestBody, ins)
}

// AddQueryOverwrite returns a copy of cfg with ins appended to its query
// parameter group.
func AddQueryOverwrite(cfg Config, ins Instruction) Config {
	return AddOverwrite(cfg, KindRequestQueryParams, ins)
}

// AddOverwrite returns a copy of cfg with ins appended to the group of
// kind. The group is created at the end of the overwrite list when cfg
// has none, so a config never holds two groups of the same kind. cfg
// itself is left untouched.
func AddOverwrite(cfg Config, kind Kind, ins Instruction) Config {
	out := cfg.Clone()
	ins.Value = cloneValue(ins.Value)
	for i := range out.Overwrites {
		if out.Overwrites[i].Kind == kind {
			out.Overwrites[i].Instructions = append(out.Overwrites[i].Instructions, ins)
			return out
		}
	}
	out.Overwrites = append(out.Overwrites, OverwriteGroup{Kind: kind, Instructions: []Instruction{ins}})
	return out
}

// MarshalJSON writes the group as {"overwriteRequestBody": [...]}.
func (g OverwriteGroup) MarshalJSON() ([]byte, error) {
	key := g.Kind.Key()
	if key == "" {
		return nil, fmt.Errorf("%w: kind %d", ErrUnsupportedOverwrite, g.Kind)
	}
	instructions := g.Instructions
	if instructions == nil {
		instructions = []Instruction{}
	}
	return jsonutil.Marshal(map[string][]Instruction{key: instructions})
}

// UnmarshalJSON reads a single-key group object.
func (g *OverwriteGroup) UnmarshalJSON(data []byte) error {
	var raw map[string]jsontext.Value
	if err := jsonutil.Unmarshal(data, &raw); err != nil {
		return err
	}
	key, err := singleKey(raw)
	if err != nil {
		return err
	}
	kind, ok := kindFromKey(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedOverwrite, key)
	}
	var instructions []Instruction
	if err := jsonutil.Unmarshal(raw[key], &instructions); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*g = OverwriteGroup{Kind: kind, Instructions: instructions}
	return nil
}

// UnmarshalYAML reads a single-key group mapping.
func (g *OverwriteGroup) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string][]Instruction
	if err := node.Decode(&raw); err != nil {
		return err
	}
	key, err := singleKey(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	kind, ok := kindFromKey(key)
	if !ok {
		return fmt.Errorf("line %d: %w: %s", node.Line, ErrUnsupportedOverwrite, key)
	}
	*g = OverwriteGroup{Kind: kind, Instructions: raw[key]}
	return nil
}

func singleKey[V any](m map[string]V) (string, error) {
	if len(m) != 1 {
		return "", fmt.Errorf("%w: overwrite entry must have exactly one key, got %v",
			ErrInvalidConfig, slices.Sorted(maps.Keys(m)))
	}
	for k := range m {
		return k, nil
	}
	return "", nil
}
