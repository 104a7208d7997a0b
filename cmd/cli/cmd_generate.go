package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/waftester/schemafuzz/pkg/cli"
	"github.com/waftester/schemafuzz/pkg/config"
	"github.com/waftester/schemafuzz/pkg/defaults"
	"github.com/waftester/schemafuzz/pkg/duration"
	"github.com/waftester/schemafuzz/pkg/fuzzer"
	"github.com/waftester/schemafuzz/pkg/metrics"
	"github.com/waftester/schemafuzz/pkg/placeholder"
	"github.com/waftester/schemafuzz/pkg/postman"
	"github.com/waftester/schemafuzz/pkg/report"
	"github.com/waftester/schemafuzz/pkg/suite"
	"github.com/waftester/schemafuzz/pkg/telemetry"
	"github.com/waftester/schemafuzz/pkg/ui"
	"github.com/waftester/schemafuzz/pkg/variation"
)

const generateUsage = defaults.ToolName + " generate -spec <openapi> -collection <postman> -config <variations> [-output <file>]"

func runGenerate(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	cfg, err := config.ParseFlags(fs, args)
	switch {
	case errors.Is(err, flag.ErrHelp):
		return defaults.ExitSuccess
	case errors.Is(err, config.ErrMissingRequired), errors.Is(err, config.ErrInvalidConfig):
		return failUsage(err.Error(), generateUsage)
	case err != nil:
		// flag has already printed the problem and the defaults.
		return defaults.ExitUserError
	}

	ui.SetSilent(cfg.Silent)
	ui.SetNoColor(cfg.NoColor)
	logger := newLogger(os.Stderr, cfg.Verbose, cfg.JSONLogs)

	selectors, err := cfg.OperationSelectors()
	if err != nil {
		return fail(err)
	}
	lookup, err := envLookup(cfg.EnvFile)
	if err != nil {
		return fail(fmt.Errorf("%w: env file: %w", config.ErrInvalidConfig, err))
	}

	// Parse the report template before doing any work so a broken
	// template fails fast.
	var renderer *report.Renderer
	if cfg.ReportFile != "" {
		renderer, err = report.NewRenderer(report.Config{
			Format:       report.Format(cfg.ReportFormat),
			TemplatePath: cfg.ReportTemplate,
		})
		if err != nil {
			return fail(fmt.Errorf("%w: %w", config.ErrInvalidConfig, err))
		}
	}

	ui.PrintBanner()
	ui.PrintConfig(
		ui.ConfigLine{Key: "OpenAPI", Value: cfg.SpecFile},
		ui.ConfigLine{Key: "Collection", Value: cfg.CollectionFile},
		ui.ConfigLine{Key: "Variations", Value: cfg.VariationFile},
		ui.ConfigLine{Key: "Operations", Value: strings.Join(selectors, ", ")},
		ui.ConfigLine{Key: "Output", Value: cfg.OutputFile},
		ui.ConfigLine{Key: "Tracing", Value: cfg.OTelEndpoint},
	)

	ctx, cancel := cli.SignalContext(context.Background(), duration.InterruptGrace)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, cfg.Timeout)
	defer cancelTimeout()

	tel, err := telemetry.Setup(ctx, telemetry.Options{
		Endpoint:    cfg.OTelEndpoint,
		ServiceName: defaults.ToolName,
		Insecure:    cfg.OTelInsecure,
	})
	if err != nil {
		ui.PrintWarning(fmt.Sprintf("tracing disabled: %v", err))
		tel = telemetry.Disabled()
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			logger.Warn("flushing spans failed", slog.String("error", err.Error()))
		}
	}()

	rec, err := metrics.NewRecorder()
	if err != nil {
		return fail(err)
	}

	in, err := suite.Load(suite.Sources{
		Spec:       cfg.SpecFile,
		Collection: cfg.CollectionFile,
		Variations: cfg.VariationFile,
		Lookup:     lookup,
	})
	if err != nil {
		return fail(err)
	}

	runner := &suite.Runner{
		Selectors: selectors,
		Logger:    logger,
		Tracer:    tel.Tracer(),
		Recorder:  rec,
		Resolver:  placeholder.NewEngine(nil),
	}
	if cfg.Verbose {
		runner.OnOperationComplete = func(p suite.Pair, n int) {
			ui.PrintBracketedInfo(fmt.Sprintf("%d variations", n),
				ui.MutedBracket(p.OpenAPI.PathRef()))
		}
	}

	res, err := runner.Run(ctx, in)
	if err != nil {
		// A partial collection would silently miss operations.
		return fail(err)
	}

	if in.BaseURL != "" && !hasVariable(res.Collection, "baseUrl") {
		res.Collection.SetVariable("baseUrl", in.BaseURL)
	}
	if err := res.Collection.WriteFile(cfg.OutputFile); err != nil {
		return fail(err)
	}

	if cfg.Verbose {
		for _, o := range res.Skipped {
			ui.PrintBracketedInfo(fmt.Sprintf("%s: %s", o.Field.Path, o.Reason),
				ui.TargetBracket(o.Target),
				ui.CategoryBracket(o.Category.String()))
		}
	}

	summary := report.Build(res.Variations, res.Skipped, res.Operations)
	if renderer != nil {
		if cfg.ReportFile == "-" {
			err = renderer.Render(stdout, summary)
		} else {
			err = renderer.RenderFile(cfg.ReportFile, summary)
		}
		if err != nil {
			return fail(err)
		}
	}
	if cfg.MetricsFile != "" {
		if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
			return fail(err)
		}
	}

	ui.PrintSummary(ui.RunStats{
		Operations: res.Operations,
		Unmatched:  res.Unmatched,
		Variations: len(res.Variations),
		Failed:     summary.Failed(),
		Skipped:    len(res.Skipped),
		ByCategory: categoryStats(res.Outcomes),
		Output:     cfg.OutputFile,
		Duration:   res.Duration,
	})

	if len(res.Variations) == 0 {
		return defaults.ExitNoVariations
	}
	return defaults.ExitSuccess
}

func hasVariable(c *postman.Collection, key string) bool {
	for _, v := range c.Variable {
		if v.Key == key {
			return true
		}
	}
	return false
}

// categoryStats counts generated and skipped fields per category,
// leaving out categories that never came up.
func categoryStats(outcomes []fuzzer.Outcome) []ui.CategoryStat {
	counts := make(map[variation.Category]*ui.CategoryStat)
	for _, o := range outcomes {
		s, ok := counts[o.Category]
		if !ok {
			s = &ui.CategoryStat{Category: o.Category.String()}
			counts[o.Category] = s
		}
		if o.Skipped() {
			s.Skipped++
		} else {
			s.Variations++
		}
	}
	var stats []ui.CategoryStat
	for _, c := range variation.Categories() {
		if s, ok := counts[c]; ok {
			stats = append(stats, *s)
		}
	}
	return stats
}
