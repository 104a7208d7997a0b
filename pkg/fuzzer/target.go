package fuzzer

import (
	"errors"
	"strconv"

	"github.com/waftester/schemafuzz/pkg/jsonpath"
	"github.com/waftester/schemafuzz/pkg/postman"
	"github.com/waftester/schemafuzz/pkg/variation"
)

// Target is the request part a catalogue describes. The set is closed:
// BodyTarget and QueryTarget are the only implementations.
type Target interface {
	// Kind is the overwrite group that receives the target's mutations.
	Kind() variation.Kind
	String() string

	// current reads the baseline value of f from op. The value is a
	// string or a float64.
	current(op *postman.Operation, f Field) (any, SkipReason)
	// encode converts a mutated value to its wire form.
	encode(v any) any
}

// BodyTarget addresses fields of a JSON request body by data path.
type BodyTarget struct{}

func (BodyTarget) Kind() variation.Kind { return variation.KindRequestBody }
func (BodyTarget) String() string       { return "requestBody" }

func (BodyTarget) current(op *postman.Operation, f Field) (any, SkipReason) {
	raw, ok := op.BodyRaw()
	if !ok {
		return nil, ReasonMissingValue
	}
	v, err := jsonpath.Lookup(raw, f.Path)
	switch {
	case errors.Is(err, jsonpath.ErrMalformedDocument):
		return nil, ReasonMalformedBody
	case err != nil:
		return nil, ReasonMissingValue
	}
	switch v.Kind {
	case jsonpath.String:
		return v.Str, ""
	case jsonpath.Number:
		return v.Num, ""
	}
	return nil, ReasonUnsupportedType
}

func (BodyTarget) encode(v any) any { return v }

// QueryTarget addresses query parameters by name.
type QueryTarget struct{}

func (QueryTarget) Kind() variation.Kind { return variation.KindRequestQueryParams }
func (QueryTarget) String() string       { return "requestQueryParams" }

func (QueryTarget) current(op *postman.Operation, f Field) (any, SkipReason) {
	p, ok := op.QueryParam(f.Field)
	if !ok {
		return nil, ReasonMissingValue
	}
	return p.Value, ""
}

// encode renders query values as text.
func (QueryTarget) encode(v any) any {
	switch t := v.(type) {
	case float64:
		return formatNumber(t)
	case string:
		return t
	}
	return v
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
