package variation

// Category is a constraint kind a variation can violate.
type Category int

const (
	Required Category = iota
	Minimum
	Maximum
	MinLength
	MaxLength
)

// Categories lists every category in generation order.
func Categories() []Category {
	return []Category{Required, Minimum, Maximum, MinLength, MaxLength}
}

// String returns the short name used in metrics and reports.
func (c Category) String() string {
	switch c {
	case Required:
		return "required"
	case Minimum:
		return "minimum"
	case Maximum:
		return "maximum"
	case MinLength:
		return "minLength"
	case MaxLength:
		return "maxLength"
	default:
		return "unknown"
	}
}

// Label returns the rule description embedded in variation names.
func (c Category) Label() string {
	switch c {
	case Required:
		return "required"
	case Minimum:
		return "minimum number value"
	case Maximum:
		return "maximum number value"
	case MinLength:
		return "minimum length"
	case MaxLength:
		return "maximum length"
	default:
		return "unknown"
	}
}
