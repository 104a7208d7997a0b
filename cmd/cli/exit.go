package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"

	"github.com/waftester/schemafuzz/pkg/config"
	"github.com/waftester/schemafuzz/pkg/defaults"
	"github.com/waftester/schemafuzz/pkg/iohelper"
	"github.com/waftester/schemafuzz/pkg/openapi"
	"github.com/waftester/schemafuzz/pkg/postman"
	"github.com/waftester/schemafuzz/pkg/suite"
	"github.com/waftester/schemafuzz/pkg/ui"
	"github.com/waftester/schemafuzz/pkg/variation"
)

// fail prints err and maps it to an exit code.
func fail(err error) int {
	ui.PrintError(err.Error())
	return exitCode(err)
}

// failUsage prints msg followed by a usage hint.
func failUsage(msg, usage string) int {
	ui.PrintError(msg)
	ui.PrintHelp("Usage: " + usage)
	return defaults.ExitUserError
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return defaults.ExitSuccess
	case errors.Is(err, flag.ErrHelp):
		return defaults.ExitSuccess
	case errors.Is(err, context.Canceled):
		return defaults.ExitInterrupted
	case errors.Is(err, config.ErrMissingRequired),
		errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, variation.ErrInvalidConfig):
		return defaults.ExitUserError
	case errors.Is(err, fs.ErrNotExist),
		errors.Is(err, iohelper.ErrTooLarge),
		errors.Is(err, openapi.ErrInvalidDocument),
		errors.Is(err, openapi.ErrEmptyDocument),
		errors.Is(err, openapi.ErrUnsupportedVersion),
		errors.Is(err, postman.ErrInvalidCollection),
		errors.Is(err, suite.ErrNoOperations):
		return defaults.ExitInputError
	default:
		return defaults.ExitInternalError
	}
}
