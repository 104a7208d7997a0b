// Package fuzzer derives boundary and negative variations of a request
// from the constraints its schema declares. Each variation violates
// exactly one constraint: a required field, a numeric minimum or
// maximum, or a minLength/maxLength.
//
// The engine never fails. Fields it cannot fuzz are recorded as skipped
// outcomes with a reason, and generation continues with the next field.
package fuzzer

import (
	"slices"

	"github.com/waftester/schemafuzz/pkg/openapi"
	"github.com/waftester/schemafuzz/pkg/variation"
)

// Field is one constrained field of a catalogue.
type Field struct {
	Path  string         // data path inside the request, e.g. "address.street"
	Field string         // leaf name used in variation names
	Value *openapi.Bound // declared bound; nil for required fields
}

// Catalogue lists the fuzzable constraints of one request target. The
// zero value is an empty catalogue without a target. Catalogues are
// immutable; accessors return copies.
type Catalogue struct {
	target    Target
	required  []string
	minimum   []Field
	maximum   []Field
	minLength []Field
	maxLength []Field
}

// Target returns the request part the catalogue describes.
func (c Catalogue) Target() Target { return c.target }

// RequiredFields returns the required field names in declaration order.
func (c Catalogue) RequiredFields() []string { return slices.Clone(c.required) }

func (c Catalogue) MinimumFields() []Field   { return slices.Clone(c.minimum) }
func (c Catalogue) MaximumFields() []Field   { return slices.Clone(c.maximum) }
func (c Catalogue) MinLengthFields() []Field { return slices.Clone(c.minLength) }
func (c Catalogue) MaxLengthFields() []Field { return slices.Clone(c.maxLength) }

// Fields returns the entries of category cat. Required fields come back
// with Path and Field both set to the name.
func (c Catalogue) Fields(cat variation.Category) []Field {
	switch cat {
	case variation.Required:
		out := make([]Field, len(c.required))
		for i, name := range c.required {
			out[i] = Field{Path: name, Field: name}
		}
		return out
	case variation.Minimum:
		return c.MinimumFields()
	case variation.Maximum:
		return c.MaximumFields()
	case variation.MinLength:
		return c.MinLengthFields()
	case variation.MaxLength:
		return c.MaxLengthFields()
	}
	return nil
}

// Len returns the number of entries across all categories.
func (c Catalogue) Len() int {
	return len(c.required) + len(c.minimum) + len(c.maximum) + len(c.minLength) + len(c.maxLength)
}

// Empty reports whether the catalogue holds no constraint.
func (c Catalogue) Empty() bool { return c.Len() == 0 }

func (c *Catalogue) addRequired(names ...string) {
	for _, name := range names {
		if name != "" && !slices.Contains(c.required, name) {
			c.required = append(c.required, name)
		}
	}
}

// addBounds appends every bound s declares.
func (c *Catalogue) addBounds(s *openapi.Schema, path, field string) {
	if s.Minimum != nil {
		c.minimum = append(c.minimum, Field{Path: path, Field: field, Value: s.Minimum})
	}
	if s.Maximum != nil {
		c.maximum = append(c.maximum, Field{Path: path, Field: field, Value: s.Maximum})
	}
	if s.MinLength != nil {
		c.minLength = append(c.minLength, Field{Path: path, Field: field, Value: s.MinLength})
	}
	if s.MaxLength != nil {
		c.maxLength = append(c.maxLength, Field{Path: path, Field: field, Value: s.MaxLength})
	}
}
