package input

import (
	"bufio"
	"os"
	"strings"
)

// OperationSource consolidates operation selectors from flags and a list
// file. Selectors are either METHOD::/path patterns or operationIds.
type OperationSource struct {
	Flags    []string // From -operation flags
	ListFile string   // One selector per line, # comments allowed
}

// Selectors returns the deduplicated, normalized selector list. An empty
// result means "every operation".
func (s *OperationSource) Selectors() ([]string, error) {
	var out []string
	seen := make(map[string]bool)

	add := func(sel string) {
		sel = Normalize(sel)
		if sel == "" || strings.HasPrefix(sel, "#") {
			return
		}
		if !seen[sel] {
			seen[sel] = true
			out = append(out, sel)
		}
	}

	for _, sel := range s.Flags {
		add(sel)
	}

	if s.ListFile != "" {
		lines, err := readLines(s.ListFile)
		if err != nil {
			return nil, err
		}
		for _, line := range lines {
			add(line)
		}
	}
	return out, nil
}

// Normalize trims sel and upper-cases the method of a METHOD::/path
// selector.
func Normalize(sel string) string {
	sel = strings.TrimSpace(sel)
	if method, path, ok := strings.Cut(sel, "::"); ok {
		return strings.ToUpper(strings.TrimSpace(method)) + "::" + strings.TrimSpace(path)
	}
	return sel
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
