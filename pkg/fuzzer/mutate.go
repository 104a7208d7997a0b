package fuzzer

import (
	"strconv"

	"github.com/waftester/schemafuzz/pkg/defaults"
	"github.com/waftester/schemafuzz/pkg/placeholder"
	"github.com/waftester/schemafuzz/pkg/postman"
	"github.com/waftester/schemafuzz/pkg/strutil"
	"github.com/waftester/schemafuzz/pkg/variation"
)

// derive builds the instruction that makes field violate cat.
func (f *Fuzzer) derive(op *postman.Operation, target Target, cat variation.Category, field Field) (variation.Instruction, SkipReason) {
	if cat == variation.Required {
		return variation.RemoveInstruction(field.Path), ""
	}
	if field.Value == nil {
		return variation.Instruction{}, ReasonInvalidBound
	}

	var (
		value  any
		reason SkipReason
	)
	switch cat {
	case variation.Minimum, variation.Maximum:
		bound, ok := field.Value.Value()
		if !ok {
			return variation.Instruction{}, ReasonInvalidBound
		}
		if cat == variation.Minimum {
			value = bound - 1
		} else {
			value = bound + 1
		}

	case variation.MinLength:
		n, ok := field.Value.Length()
		if !ok {
			return variation.Instruction{}, ReasonInvalidBound
		}
		if n <= 0 {
			return variation.Instruction{}, ReasonUnviolatable
		}
		cur, r := f.current(op, target, field)
		if r != "" {
			return variation.Instruction{}, r
		}
		value, reason = truncate(cur, n-1)

	case variation.MaxLength:
		n, ok := field.Value.Length()
		if !ok {
			return variation.Instruction{}, ReasonInvalidBound
		}
		if n+1 > defaults.MaxPadLength {
			return variation.Instruction{}, ReasonTooLarge
		}
		cur, r := f.current(op, target, field)
		if r != "" {
			return variation.Instruction{}, r
		}
		value, reason = pad(cur, n+1)
	}
	if reason != "" {
		return variation.Instruction{}, reason
	}
	return variation.OverwriteInstruction(field.Path, target.encode(value)), ""
}

// current reads the baseline value of field and resolves generator
// placeholders in it.
func (f *Fuzzer) current(op *postman.Operation, target Target, field Field) (any, SkipReason) {
	cur, reason := target.current(op, field)
	if reason != "" {
		return nil, reason
	}
	s, ok := cur.(string)
	if !ok {
		return cur, ""
	}
	res := f.resolver.Resolve(s)
	if res.Skipped() {
		if res.Reason == placeholder.ReasonUnknownGenerator {
			return nil, ReasonUnknownGenerator
		}
		return nil, ReasonUserVariable
	}
	return res.Value, ""
}

// truncate shortens v to n characters. Numbers are cut in their decimal
// form and read back as an integer; nothing readable gives 0.
func truncate(v any, n int) (any, SkipReason) {
	switch t := v.(type) {
	case string:
		return strutil.Prefix(t, n), ""
	case float64:
		num, ok := leadingNumber(strutil.Prefix(formatNumber(t), n))
		if !ok {
			return float64(0), ""
		}
		return num, ""
	}
	return nil, ReasonUnsupportedType
}

// pad lengthens v to n characters. Strings repeat their first character,
// numbers are padded with zeros and read back as an integer.
func pad(v any, n int) (any, SkipReason) {
	switch t := v.(type) {
	case string:
		first, ok := strutil.FirstRune(t)
		if !ok {
			return nil, ReasonEmptyValue
		}
		return strutil.PadRight(t, n, first), ""
	case float64:
		if t == 0 {
			return nil, ReasonEmptyValue
		}
		num, ok := leadingNumber(strutil.PadRight(formatNumber(t), n, '0'))
		if !ok || num == 0 {
			return t, ""
		}
		return num, ""
	}
	return nil, ReasonUnsupportedType
}

// leadingNumber reads the leading integer of s as a float64 so long
// digit runs do not overflow.
func leadingNumber(s string) (float64, bool) {
	digits, ok := strutil.LeadingInteger(s)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
