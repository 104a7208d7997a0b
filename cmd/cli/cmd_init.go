package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/natefinch/atomic"

	"github.com/waftester/schemafuzz/pkg/config"
	"github.com/waftester/schemafuzz/pkg/defaults"
	"github.com/waftester/schemafuzz/pkg/ui"
	"github.com/waftester/schemafuzz/templates"
)

// runInit writes the starter variation file.
func runInit(args []string, stdout io.Writer) int {
	flags := flag.NewFlagSet("init", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)
	path := flags.String("o", "fuzz.yaml", "Where to write the variation file (- for stdout)")
	force := flags.Bool("force", false, "Overwrite an existing file")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return defaults.ExitSuccess
		}
		return defaults.ExitUserError
	}

	data, err := templates.FS.ReadFile(templates.StarterVariations)
	if err != nil {
		return fail(err)
	}
	if *path == "-" {
		_, err := stdout.Write(data)
		if err != nil {
			return fail(err)
		}
		return defaults.ExitSuccess
	}

	if _, err := os.Stat(*path); err == nil && !*force {
		return fail(fmt.Errorf("%w: %s exists (use -force to replace it)", config.ErrInvalidConfig, *path))
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fail(err)
	}
	if err := atomic.WriteFile(*path, bytes.NewReader(data)); err != nil {
		return fail(err)
	}
	ui.PrintSuccess("Variation file written to " + *path)
	ui.PrintHelp(fmt.Sprintf("Next: %s generate -spec <openapi> -collection <postman> -config %s", defaults.ToolName, *path))
	return defaults.ExitSuccess
}
