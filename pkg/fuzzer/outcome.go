package fuzzer

import (
	"github.com/waftester/schemafuzz/pkg/postman"
	"github.com/waftester/schemafuzz/pkg/variation"
)

// SkipReason says why a field produced no variation.
type SkipReason string

const (
	ReasonUserVariable     SkipReason = "user variable"
	ReasonUnknownGenerator SkipReason = "unknown generator"
	ReasonMissingValue     SkipReason = "value not found"
	ReasonMalformedBody    SkipReason = "malformed body"
	ReasonUnsupportedType  SkipReason = "unsupported value type"
	ReasonInvalidBound     SkipReason = "invalid bound"
	ReasonUnviolatable     SkipReason = "bound cannot be violated"
	ReasonEmptyValue       SkipReason = "empty value"
	ReasonTooLarge         SkipReason = "padding too large"
)

// Outcome is the result of fuzzing one field for one category: either a
// generated variation or a skip with its reason.
type Outcome struct {
	Target      string
	Category    variation.Category
	Field       Field
	Name        string
	Operation   *postman.Operation    // nil when skipped
	Instruction variation.Instruction // zero when skipped
	Reason      SkipReason
}

// Skipped reports whether the field was abandoned.
func (o Outcome) Skipped() bool { return o.Reason != "" }
