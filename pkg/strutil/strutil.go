// Package strutil provides rune-aware string helpers shared by the
// generator and the report renderers.
package strutil

import (
	"strings"
	"unicode/utf8"
)

// Truncate returns s cut to maxLen runes. If truncated, a "..." suffix
// is appended (included in maxLen). Returns s unchanged if
// utf8.RuneCountInString(s) <= maxLen.
// Safe for maxLen <= 0 (returns empty string).
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runeCount := utf8.RuneCountInString(s)
	if runeCount <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string([]rune(s)[:maxLen])
	}
	return string([]rune(s)[:maxLen-3]) + "..."
}

// Prefix returns the first n runes of s without any marker.
// n <= 0 yields "", n beyond the length yields s.
func Prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// PadRight right-pads s with pad until it is n runes long.
// Strings already n runes or longer are returned unchanged.
func PadRight(s string, n int, pad rune) string {
	missing := n - utf8.RuneCountInString(s)
	if missing <= 0 {
		return s
	}
	return s + strings.Repeat(string(pad), missing)
}

// FirstRune returns the first rune of s and false for an empty string.
func FirstRune(s string) (rune, bool) {
	if s == "" {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, true
}

// LeadingInteger returns the optionally signed run of decimal digits at
// the start of s, after leading whitespace. "12.5" yields "12", "-3px"
// yields "-3". The second result is false when s has no leading digits.
func LeadingInteger(s string) (string, bool) {
	s = strings.TrimLeft(s, " \t\r\n")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return "", false
	}
	return s[:end], true
}
