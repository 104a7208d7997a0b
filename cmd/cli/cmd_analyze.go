package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/waftester/schemafuzz/pkg/config"
	"github.com/waftester/schemafuzz/pkg/defaults"
	"github.com/waftester/schemafuzz/pkg/fuzzer"
	"github.com/waftester/schemafuzz/pkg/input"
	"github.com/waftester/schemafuzz/pkg/jsonutil"
	"github.com/waftester/schemafuzz/pkg/openapi"
	"github.com/waftester/schemafuzz/pkg/suite"
	"github.com/waftester/schemafuzz/pkg/ui"
	"github.com/waftester/schemafuzz/pkg/variation"
)

const analyzeUsage = defaults.ToolName + " analyze -spec <openapi> [-operation METHOD::/path] [-json]"

// constraint is one catalogue entry as printed by analyze.
type constraint struct {
	Operation   string `json:"operation"`
	OperationID string `json:"operationId,omitzero"`
	Target      string `json:"target"`
	Category    string `json:"category"`
	Path        string `json:"path"`
	Bound       string `json:"bound,omitzero"`
}

func runAnalyze(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var (
		spec     string
		asJSON   bool
		noColor  bool
		selected input.StringSliceFlag
	)
	fs.StringVar(&spec, "spec", "", "OpenAPI document (JSON or YAML)")
	fs.StringVar(&spec, "s", "", "OpenAPI document (alias)")
	fs.Var(&selected, "operation", "Only analyze METHOD::/path or operationId (repeatable)")
	fs.BoolVar(&asJSON, "json", false, "Print constraints as JSON")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored output")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return defaults.ExitSuccess
		}
		return defaults.ExitUserError
	}
	if spec == "" {
		return failUsage(fmt.Errorf("%w: -spec", config.ErrMissingRequired).Error(), analyzeUsage)
	}
	ui.SetNoColor(noColor)

	sel, err := (&input.OperationSource{Flags: selected}).Selectors()
	if err != nil {
		return fail(err)
	}

	parser := openapi.NewParser()
	doc, err := parser.ParseFile(spec)
	if err != nil {
		return fail(fmt.Errorf("%s: %w", spec, err))
	}

	var rows []constraint
	for _, op := range parser.MappedOperations(doc) {
		if len(sel) > 0 && !selectsAny(sel, op) {
			continue
		}
		rows = append(rows, constraints(op)...)
	}

	if asJSON {
		if rows == nil {
			rows = []constraint{}
		}
		data, err := jsonutil.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fail(err)
		}
		fmt.Fprintf(stdout, "%s\n", data)
		return defaults.ExitSuccess
	}
	printConstraints(stdout, rows)
	return defaults.ExitSuccess
}

func selectsAny(sel []string, op *openapi.MappedOperation) bool {
	for _, s := range sel {
		if suite.Selects(s, op) {
			return true
		}
	}
	return false
}

// constraints flattens the body and query catalogues of op.
func constraints(op *openapi.MappedOperation) []constraint {
	cats := []fuzzer.Catalogue{fuzzer.AnalyzeBody(op.RequestBody)}
	for i := range op.QueryParams {
		cats = append(cats, fuzzer.AnalyzeQueryParam(&op.QueryParams[i]))
	}

	var rows []constraint
	for _, cat := range cats {
		if cat.Empty() {
			continue
		}
		for _, c := range variation.Categories() {
			for _, f := range cat.Fields(c) {
				row := constraint{
					Operation:   op.PathRef(),
					OperationID: op.OperationID,
					Target:      cat.Target().String(),
					Category:    c.String(),
					Path:        f.Path,
				}
				if f.Value != nil {
					row.Bound = f.Value.String()
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}

func printConstraints(w io.Writer, rows []constraint) {
	if len(rows) == 0 {
		fmt.Fprintln(w, ui.HelpStyle.Render("no fuzzable constraints"))
		return
	}
	last := ""
	for _, r := range rows {
		if r.Operation != last {
			if last != "" {
				fmt.Fprintln(w)
			}
			title := r.Operation
			if r.OperationID != "" {
				title += " (" + r.OperationID + ")"
			}
			fmt.Fprintln(w, ui.SectionStyle.Render(title))
			last = r.Operation
		}
		line := fmt.Sprintf("  %s %s %s",
			ui.TargetStyle(r.Target).Width(18).Render(r.Target),
			ui.CategoryStyle(r.Category).Width(10).Render(r.Category),
			r.Path)
		if r.Bound != "" {
			line += " " + ui.StatValueStyle.Render(r.Bound)
		}
		fmt.Fprintln(w, line)
	}
}
