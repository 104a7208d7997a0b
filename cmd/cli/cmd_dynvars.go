package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/waftester/schemafuzz/pkg/defaults"
	"github.com/waftester/schemafuzz/pkg/jsonutil"
	"github.com/waftester/schemafuzz/pkg/placeholder"
	"github.com/waftester/schemafuzz/pkg/ui"
)

type dynvar struct {
	Token       string `json:"token"`
	Description string `json:"description"`
}

func runDynvars(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("dynvars", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print generators as JSON")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return defaults.ExitSuccess
		}
		return defaults.ExitUserError
	}

	engine := placeholder.NewEngine(nil)
	var vars []dynvar
	width := 0
	for _, g := range engine.List() {
		v := dynvar{Token: engine.Token(g.Name), Description: g.Description}
		width = max(width, len(v.Token))
		vars = append(vars, v)
	}

	if *asJSON {
		data, err := jsonutil.MarshalIndent(vars, "", "  ")
		if err != nil {
			return fail(err)
		}
		fmt.Fprintf(stdout, "%s\n", data)
		return defaults.ExitSuccess
	}
	for _, v := range vars {
		fmt.Fprintf(stdout, "  %s  %s\n", ui.StatValueStyle.Width(width).Render(v.Token), v.Description)
	}
	return defaults.ExitSuccess
}
