package openapi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/waftester/schemafuzz/pkg/strutil"
	"gopkg.in/yaml.v3"
)

// Bound is a numeric schema keyword (minimum, maximum, minLength,
// maxLength). Hand-written documents sometimes quote these values, so a
// Bound remembers whether it was declared as text.
type Bound struct {
	Number float64
	Text   string
	IsText bool
}

// NumberBound returns a Bound declared as a JSON number.
func NumberBound(v float64) *Bound {
	return &Bound{Number: v}
}

// TextBound returns a Bound declared as a string.
func TextBound(s string) *Bound {
	return &Bound{Text: s, IsText: true}
}

// Value returns the bound as a number. Text bounds contribute their
// leading integer only, so "10.5" and "10px" both read as 10. The second
// result is false when no number can be read.
func (b Bound) Value() (float64, bool) {
	if !b.IsText {
		return b.Number, true
	}
	n, ok := leadingInt(b.Text)
	return float64(n), ok
}

// Length returns the bound as a character count. Only non-negative
// integral numbers qualify.
func (b Bound) Length() (int, bool) {
	if b.IsText || b.Number < 0 || b.Number != float64(int(b.Number)) {
		return 0, false
	}
	return int(b.Number), true
}

func (b Bound) String() string {
	if b.IsText {
		return b.Text
	}
	return strconv.FormatFloat(b.Number, 'f', -1, 64)
}

// UnmarshalJSON accepts a JSON number or a JSON string.
func (b *Bound) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = Bound{Text: s, IsText: true}
		return nil
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fmt.Errorf("bound %q is neither number nor string", trimmed)
	}
	*b = Bound{Number: n}
	return nil
}

// MarshalJSON writes the bound back the way it was declared.
func (b Bound) MarshalJSON() ([]byte, error) {
	if b.IsText {
		return json.Marshal(b.Text)
	}
	return []byte(b.String()), nil
}

// UnmarshalYAML accepts a YAML scalar. Quoted scalars stay text.
func (b *Bound) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: bound must be a scalar", node.Line)
	}
	if node.ShortTag() == "!!str" {
		*b = Bound{Text: node.Value, IsText: true}
		return nil
	}
	n, err := strconv.ParseFloat(node.Value, 64)
	if err != nil {
		return fmt.Errorf("line %d: bound %q is not a number", node.Line, node.Value)
	}
	*b = Bound{Number: n}
	return nil
}

func leadingInt(s string) (int64, bool) {
	digits, ok := strutil.LeadingInteger(s)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
