// Package templates embeds the bundled report layouts and the starter
// variation file, so they ship inside the binary.
//
// Usage:
//
//	data, _ := templates.FS.ReadFile("report/markdown.tmpl")
package templates

import "embed"

// FS holds report/*.tmpl (text/template + sprig report layouts) and
// variations/*.yaml (starter variation files written by init).
//
//go:embed report/*.tmpl variations/*.yaml
var FS embed.FS

// StarterVariations is the path of the starter variation file in FS.
const StarterVariations = "variations/fuzzing.yaml"

// Report returns the built-in report layout for format.
func Report(format string) (string, bool) {
	data, err := FS.ReadFile("report/" + format + ".tmpl")
	if err != nil {
		return "", false
	}
	return string(data), true
}
