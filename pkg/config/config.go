// Package config holds the command line configuration of the generate
// and analyze commands.
package config

import (
	"flag"
	"fmt"
	"slices"
	"time"

	"github.com/waftester/schemafuzz/pkg/defaults"
	"github.com/waftester/schemafuzz/pkg/duration"
	"github.com/waftester/schemafuzz/pkg/input"
)

// Config holds all CLI configuration options
type Config struct {
	// Input settings
	SpecFile       string                // OpenAPI document (JSON or YAML)
	CollectionFile string                // Postman collection generated from the document
	VariationFile  string                // variation tests (JSON, JSONC or YAML)
	EnvFile        string                // dotenv file feeding ${VAR} references
	Operations     input.StringSliceFlag // METHOD::/path or operationId filters
	OperationsFile string                // one selector per line

	// Generation settings
	Timeout time.Duration // whole-run deadline

	// Output settings
	OutputFile     string // generated collection
	ReportFile     string // summary destination ("-" = stdout, empty = none)
	ReportFormat   string // text, markdown, json
	ReportTemplate string // custom text/template file
	MetricsFile    string // Prometheus textfile output

	// Telemetry settings
	OTelEndpoint string // OTLP gRPC endpoint (empty = disabled)
	OTelInsecure bool   // plaintext gRPC

	// Console settings
	Verbose  bool
	JSONLogs bool
	Silent   bool
	NoColor  bool
}

// ReportFormats lists the accepted -format values.
var ReportFormats = []string{"text", "markdown", "json"}

// DefaultConfig returns the configuration before any flag is applied.
func DefaultConfig() *Config {
	return &Config{
		Timeout:      duration.Generation,
		OutputFile:   defaults.OutputFile,
		ReportFile:   "-",
		ReportFormat: defaults.ReportFormat,
	}
}

// RegisterFlags binds cfg to fs. Aliases share the destination of their
// long form.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	// === INPUT ===
	fs.StringVar(&c.SpecFile, "spec", c.SpecFile, "OpenAPI document (JSON or YAML)")
	fs.StringVar(&c.SpecFile, "s", c.SpecFile, "OpenAPI document (alias)")
	fs.StringVar(&c.CollectionFile, "collection", c.CollectionFile, "Postman collection to derive variations from")
	fs.StringVar(&c.CollectionFile, "c", c.CollectionFile, "Postman collection (alias)")
	fs.StringVar(&c.VariationFile, "config", c.VariationFile, "Variation test file (JSON, JSONC or YAML)")
	fs.StringVar(&c.EnvFile, "env-file", c.EnvFile, "dotenv file for ${VAR} references in the variation file")
	fs.Var(&c.Operations, "operation", "Only these operations (METHOD::/path or operationId), repeated or comma-separated")
	fs.StringVar(&c.OperationsFile, "operations-file", c.OperationsFile, "File with one operation selector per line")

	// === GENERATION ===
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "Abort generation after this long")

	// === OUTPUT ===
	fs.StringVar(&c.OutputFile, "output", c.OutputFile, "Output collection path")
	fs.StringVar(&c.OutputFile, "o", c.OutputFile, "Output collection (alias)")
	fs.StringVar(&c.ReportFile, "report", c.ReportFile, "Summary file (- for stdout, empty to disable)")
	fs.StringVar(&c.ReportFormat, "format", c.ReportFormat, "Summary format: text, markdown, json")
	fs.StringVar(&c.ReportTemplate, "template", c.ReportTemplate, "Custom summary template (text/template + sprig)")
	fs.StringVar(&c.MetricsFile, "metrics", c.MetricsFile, "Write Prometheus metrics to this textfile")

	// === TELEMETRY ===
	fs.StringVar(&c.OTelEndpoint, "otel-endpoint", c.OTelEndpoint, "OTLP gRPC endpoint for traces")
	fs.BoolVar(&c.OTelInsecure, "otel-insecure", c.OTelInsecure, "Use plaintext gRPC for the OTLP exporter")

	// === CONSOLE ===
	fs.BoolVar(&c.Verbose, "verbose", c.Verbose, "Debug logging")
	fs.BoolVar(&c.Verbose, "v", c.Verbose, "Verbose (alias)")
	fs.BoolVar(&c.JSONLogs, "json-logs", c.JSONLogs, "Log as JSON lines")
	fs.BoolVar(&c.Silent, "silent", c.Silent, "No banner or progress")
	fs.BoolVar(&c.NoColor, "no-color", c.NoColor, "Disable colored output")
	fs.BoolVar(&c.NoColor, "nc", c.NoColor, "No color (alias)")
}

// ParseFlags parses args into a fresh configuration and validates it.
func ParseFlags(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OperationSelectors merges -operation and -operations-file.
func (c *Config) OperationSelectors() ([]string, error) {
	src := &input.OperationSource{Flags: c.Operations, ListFile: c.OperationsFile}
	sel, err := src.Selectors()
	if err != nil {
		return nil, fmt.Errorf("%w: operations file: %w", ErrInvalidConfig, err)
	}
	return sel, nil
}

// Validate checks the options needed to generate a collection.
func (c *Config) Validate() error {
	switch {
	case c.SpecFile == "":
		return fmt.Errorf("%w: -spec", ErrMissingRequired)
	case c.CollectionFile == "":
		return fmt.Errorf("%w: -collection", ErrMissingRequired)
	case c.VariationFile == "":
		return fmt.Errorf("%w: -config", ErrMissingRequired)
	case c.OutputFile == "":
		return fmt.Errorf("%w: -output", ErrMissingRequired)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidConfig, c.Timeout)
	}
	if c.ReportTemplate == "" && !slices.Contains(ReportFormats, c.ReportFormat) {
		return fmt.Errorf("%w: unknown report format %q", ErrInvalidConfig, c.ReportFormat)
	}
	if c.OutputFile == c.CollectionFile {
		return fmt.Errorf("%w: output would overwrite the input collection", ErrInvalidConfig)
	}
	return nil
}
