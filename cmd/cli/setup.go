package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// newLogger builds the run logger. Logs go to w (stderr) so that a report
// written to stdout stays parseable.
func newLogger(w io.Writer, verbose, jsonLogs bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelWarn}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if jsonLogs {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// envLookup returns the ${VAR} resolver for the variation file. Values in
// the dotenv file take precedence over the process environment.
func envLookup(path string) (func(string) (string, bool), error) {
	if path == "" {
		return os.LookupEnv, nil
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, err
	}
	return func(key string) (string, bool) {
		if v, ok := vars[key]; ok {
			return v, true
		}
		return os.LookupEnv(key)
	}, nil
}
