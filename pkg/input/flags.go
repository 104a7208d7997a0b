// Package input gathers repeated command line values and operation
// selectors.
package input

import "strings"

// StringSliceFlag implements flag.Value for repeated/comma-separated string flags
type StringSliceFlag []string

func (s *StringSliceFlag) String() string {
	if s == nil {
		return ""
	}
	return strings.Join(*s, ",")
}

// Set splits value on commas and appends each non-empty part.
func (s *StringSliceFlag) Set(value string) error {
	for _, v := range strings.Split(value, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			*s = append(*s, v)
		}
	}
	return nil
}
