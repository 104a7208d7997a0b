package openapi

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-json-experiment/json"
	"gopkg.in/yaml.v3"
)

// SchemaType holds the "type" keyword. OpenAPI 3.0 declares a single name,
// 3.1 allows a list such as ["string", "null"].
type SchemaType []string

// Is reports whether name is one of the declared types.
func (t SchemaType) Is(name string) bool {
	return slices.Contains(t, name)
}

func (t SchemaType) String() string {
	return strings.Join(t, "|")
}

// UnmarshalJSON accepts a string or an array of strings.
func (t *SchemaType) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*t = SchemaType{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("schema type must be a string or list of strings: %w", err)
	}
	*t = many
	return nil
}

// MarshalJSON writes a single type as a plain string.
func (t SchemaType) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

// UnmarshalYAML accepts a scalar or a sequence.
func (t *SchemaType) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*t = SchemaType{node.Value}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := node.Decode(&many); err != nil {
			return err
		}
		*t = many
		return nil
	default:
		return fmt.Errorf("line %d: schema type must be a string or list", node.Line)
	}
}
