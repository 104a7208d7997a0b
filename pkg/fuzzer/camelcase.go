package fuzzer

import (
	"strings"

	"github.com/waftester/schemafuzz/pkg/regexcache"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CamelCase turns a variation name into an item identifier:
// "Create pet[Bad][required name]" becomes "createPetBadRequiredName".
// Words split on any non alphanumeric character and on case changes.
// Words after the first that start with a digit get a "_" prefix so
// adjacent numbers stay apart ("v 1 2" becomes "v_1_2").
func CamelCase(s string) string {
	s = regexcache.MustGet(`([a-z0-9])([A-Z])`).ReplaceAllString(s, "$1 $2")
	s = regexcache.MustGet(`([A-Z])([A-Z][a-z])`).ReplaceAllString(s, "$1 $2")
	words := strings.Fields(regexcache.MustGet(`[^A-Za-z0-9]+`).ReplaceAllString(s, " "))

	lower := cases.Lower(language.Und)
	title := cases.Title(language.Und)
	var b strings.Builder
	for i, w := range words {
		switch {
		case i == 0:
			b.WriteString(lower.String(w))
		case w[0] >= '0' && w[0] <= '9':
			b.WriteString("_" + lower.String(w))
		default:
			b.WriteString(title.String(w))
		}
	}
	return b.String()
}
