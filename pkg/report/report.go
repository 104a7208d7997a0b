// Package report summarizes a generation run: the variations written to
// the output collection and the fields the fuzzer had to skip.
//
// Summaries render as plain text, Markdown, JSON, or through a custom
// text/template file with Sprig functions available.
package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/waftester/schemafuzz/pkg/defaults"
	"github.com/waftester/schemafuzz/pkg/fuzzer"
	"github.com/waftester/schemafuzz/pkg/variation"
	"github.com/waftester/schemafuzz/pkg/writer"
)

// Summary is the data handed to every renderer.
type Summary struct {
	Tool        string      `json:"tool"`
	Version     string      `json:"version"`
	GeneratedAt time.Time   `json:"generatedAt"`
	Operations  int         `json:"operations"`
	Variations  []Variation `json:"variations"`
	Skipped     []Skip      `json:"skipped"`
}

// Variation describes one written request.
type Variation struct {
	Name         string        `json:"name"`
	ID           string        `json:"id"`
	Operation    string        `json:"operation,omitempty"`
	Test         string        `json:"test,omitempty"`
	Instructions []Instruction `json:"instructions"`
	Error        string        `json:"error,omitempty"`
}

// Instruction is a flattened overwrite instruction.
type Instruction struct {
	Target string `json:"target"`
	Key    string `json:"key"`
	Action string `json:"action"`
	Value  any    `json:"value,omitzero"`
}

// Skip describes a field that produced no variation.
type Skip struct {
	Name     string `json:"name"`
	Target   string `json:"target"`
	Category string `json:"category"`
	Field    string `json:"field"`
	Reason   string `json:"reason"`
}

// CategoryCount is a per-category tally.
type CategoryCount struct {
	Category string
	Count    int
}

// Build assembles a Summary from writer entries and skipped outcomes.
// Entries keep their write order; skips are sorted by name.
func Build(entries []writer.Entry, skipped []fuzzer.Outcome, operations int) *Summary {
	s := &Summary{
		Tool:        defaults.ToolName,
		Version:     defaults.Version,
		GeneratedAt: time.Now().UTC(),
		Operations:  operations,
		Variations:  make([]Variation, 0, len(entries)),
		Skipped:     make([]Skip, 0, len(skipped)),
	}
	for _, e := range entries {
		s.Variations = append(s.Variations, fromEntry(e))
	}
	for _, o := range skipped {
		if !o.Skipped() {
			continue
		}
		s.Skipped = append(s.Skipped, Skip{
			Name:     o.Name,
			Target:   o.Target,
			Category: o.Category.String(),
			Field:    o.Field.Path,
			Reason:   string(o.Reason),
		})
	}
	slices.SortStableFunc(s.Skipped, func(a, b Skip) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return s
}

func fromEntry(e writer.Entry) Variation {
	v := Variation{Instructions: []Instruction{}}
	if e.Operation != nil && e.Operation.Item != nil {
		v.Name = e.Operation.Name()
		v.ID = e.Operation.ID()
	}
	if e.Source != nil {
		v.Operation = e.Source.PathRef()
	}
	if e.Test != nil {
		v.Test = testTarget(e.Test)
	}
	if e.Err != nil {
		v.Error = e.Err.Error()
	}
	for _, g := range e.Config.Overwrites {
		for _, ins := range g.Instructions {
			action, value := "overwrite", ins.Value
			if ins.Remove {
				action, value = "remove", nil
			}
			v.Instructions = append(v.Instructions, Instruction{
				Target: g.Kind.String(),
				Key:    ins.Key,
				Action: action,
				Value:  value,
			})
		}
	}
	return v
}

func testTarget(t *variation.Test) string {
	switch {
	case t.OpenAPIOperation != "":
		return t.OpenAPIOperation
	case t.OpenAPIOperationID != "":
		return t.OpenAPIOperationID
	case len(t.OpenAPIOperationIDs) > 0:
		return t.OpenAPIOperationIDs[0]
	}
	return ""
}

// Failed counts variations whose overwrites were not fully applied.
func (s *Summary) Failed() int {
	n := 0
	for _, v := range s.Variations {
		if v.Error != "" {
			n++
		}
	}
	return n
}

// SkipsByCategory tallies skipped fields per category, in category order.
func (s *Summary) SkipsByCategory() []CategoryCount {
	var out []CategoryCount
	for _, c := range variation.Categories() {
		n := 0
		for _, sk := range s.Skipped {
			if sk.Category == c.String() {
				n++
			}
		}
		if n > 0 {
			out = append(out, CategoryCount{Category: c.String(), Count: n})
		}
	}
	return out
}
