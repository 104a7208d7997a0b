// Package suite drives a generation run: it pairs the requests of a
// Postman collection with the operations of an OpenAPI document, runs
// every matching variation test through the fuzzer and collects the
// results into a new collection.
package suite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/waftester/schemafuzz/pkg/fuzzer"
	"github.com/waftester/schemafuzz/pkg/metrics"
	"github.com/waftester/schemafuzz/pkg/openapi"
	"github.com/waftester/schemafuzz/pkg/placeholder"
	"github.com/waftester/schemafuzz/pkg/postman"
	"github.com/waftester/schemafuzz/pkg/telemetry"
	"github.com/waftester/schemafuzz/pkg/variation"
	"github.com/waftester/schemafuzz/pkg/writer"
)

// Recorder receives run level counters on top of the per-field ones.
// Implemented by *metrics.Recorder.
type Recorder interface {
	fuzzer.Recorder
	RecordOperation(outcome string)
	ObserveDuration(d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordVariation(string, string)    {}
func (nopRecorder) RecordSkip(string, string, string) {}
func (nopRecorder) RecordOperation(string)            {}
func (nopRecorder) ObserveDuration(time.Duration)     {}

// Pair is a collection request together with the OpenAPI operation it
// was generated from. OpenAPI is nil for unmatched requests.
type Pair struct {
	Postman *postman.Operation
	OpenAPI *openapi.MappedOperation
}

// Result is the outcome of a run.
type Result struct {
	RunID      string
	Operations int // paired operations that were processed
	Unmatched  int // requests without an OpenAPI operation
	Variations []writer.Entry
	Outcomes   []fuzzer.Outcome // every fuzzed field, generated or skipped
	Skipped    []fuzzer.Outcome
	Collection *postman.Collection
	Duration   time.Duration
}

// Runner runs variation tests over paired operations. The zero value is
// usable; every field is optional.
type Runner struct {
	// Selectors restrict the run to operations matching any selector,
	// either METHOD::/path (with * wildcards) or an operationId.
	Selectors []string

	Logger   *slog.Logger
	Tracer   trace.Tracer
	Recorder Recorder
	Resolver *placeholder.Engine

	// OnOperationStart is called before an operation is processed.
	OnOperationStart func(p Pair)

	// OnOperationComplete is called with the number of variations the
	// operation produced.
	OnOperationComplete func(p Pair, variations int)
}

// Run processes every pair and returns the result. When ctx is cancelled
// the run stops between operations and returns what was generated so
// far together with the context error.
func (r *Runner) Run(ctx context.Context, in *Inputs) (*Result, error) {
	start := time.Now()
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := r.Tracer
	if tracer == nil {
		tracer = telemetry.Disabled().Tracer()
	}
	var rec Recorder = nopRecorder{}
	if r.Recorder != nil {
		rec = r.Recorder
	}

	res := &Result{RunID: uuid.New().String()}
	logger = logger.With(slog.String("run", res.RunID))

	w := writer.New(writer.WithLogger(logger))
	for _, op := range postman.Operations(in.Collection) {
		w.Reserve(op.ID())
	}
	fopts := []fuzzer.Option{fuzzer.WithLogger(logger), fuzzer.WithRecorder(rec)}
	if r.Resolver != nil {
		fopts = append(fopts, fuzzer.WithResolver(r.Resolver))
	}
	fz := fuzzer.New(w, fopts...)

	ctx, runSpan := tracer.Start(ctx, "schemafuzz.generate")
	defer runSpan.End()

	var runErr error
	for _, p := range Pairs(in.Operations, postman.Operations(in.Collection)) {
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("suite: run cancelled: %w", err)
			break
		}
		if p.OpenAPI == nil {
			res.Unmatched++
			rec.RecordOperation(metrics.OutcomeUnmatched)
			logger.Debug("request without operation",
				slog.String("request", p.Postman.Name()),
				slog.String("method", p.Postman.Method),
				slog.String("path", p.Postman.Path))
			continue
		}
		if !r.selected(p.OpenAPI) {
			continue
		}
		res.Operations++
		if r.OnOperationStart != nil {
			r.OnOperationStart(p)
		}
		n := r.runOperation(ctx, tracer, logger, w, fz, in.Tests, p)
		if n > 0 {
			rec.RecordOperation(metrics.OutcomeFuzzed)
		} else {
			rec.RecordOperation(metrics.OutcomeEmpty)
		}
		if r.OnOperationComplete != nil {
			r.OnOperationComplete(p, n)
		}
	}

	res.Variations = w.Entries()
	res.Outcomes = fz.Outcomes()
	res.Skipped = fz.Skipped()
	res.Collection = w.Collection(in.Collection)
	res.Duration = time.Since(start)
	rec.ObserveDuration(res.Duration)

	runSpan.SetAttributes(
		attribute.Int("schemafuzz.operations", res.Operations),
		attribute.Int("schemafuzz.variations", len(res.Variations)),
		attribute.Int("schemafuzz.skipped", len(res.Skipped)),
	)
	if runErr != nil {
		runSpan.RecordError(runErr)
		runSpan.SetStatus(codes.Error, runErr.Error())
	}

	logger.Info("generation finished",
		slog.Int("operations", res.Operations),
		slog.Int("variations", len(res.Variations)),
		slog.Int("skipped", len(res.Skipped)),
		slog.Duration("duration", res.Duration))
	return res, runErr
}

// runOperation writes the plain variations of every matching test and
// the fuzzed ones derived from them. It returns the number written.
func (r *Runner) runOperation(ctx context.Context, tracer trace.Tracer, logger *slog.Logger, w *writer.Writer, fz *fuzzer.Fuzzer, tests *variation.File, p Pair) int {
	_, span := tracer.Start(ctx, "schemafuzz.operation", trace.WithAttributes(
		attribute.String("http.request.method", p.OpenAPI.Method),
		attribute.String("url.template", p.OpenAPI.Path),
		attribute.String("schemafuzz.operation_id", p.OpenAPI.OperationID),
	))
	defer span.End()

	before := w.Len()
	var matching []*variation.Test
	if tests != nil {
		matching = tests.Matching(func(t *variation.Test) bool { return t.Targets(p.OpenAPI) })
	}
	for _, t := range matching {
		for _, v := range t.Variations {
			if len(v.Overwrites) > 0 {
				name := fmt.Sprintf("%s[%s]", p.Postman.Name(), v.Name)
				plain := p.Postman.Clone(postman.CloneOptions{NewID: fuzzer.CamelCase(name), Name: name})
				w.InjectVariation(plain, p.OpenAPI, v, t)
			}
			fz.InjectRequestBodyVariations(p.Postman, p.OpenAPI, v, t)
			fz.InjectRequestQueryParamsVariations(p.Postman, p.OpenAPI, v, t)
		}
	}
	n := w.Len() - before

	span.SetAttributes(
		attribute.Int("schemafuzz.tests", len(matching)),
		attribute.Int("schemafuzz.variations", n),
	)
	logger.Info("operation processed",
		slog.String("operation", p.OpenAPI.PathRef()),
		slog.String("request", p.Postman.Name()),
		slog.Int("tests", len(matching)),
		slog.Int("variations", n))
	return n
}

func (r *Runner) selected(op *openapi.MappedOperation) bool {
	if len(r.Selectors) == 0 {
		return true
	}
	for _, sel := range r.Selectors {
		if Selects(sel, op) {
			return true
		}
	}
	return false
}

// Selects reports whether sel picks op. Selectors containing "::" are
// METHOD::/path patterns; anything else is an operationId.
func Selects(sel string, op *openapi.MappedOperation) bool {
	if strings.Contains(sel, "::") {
		return op.MatchesTarget(sel)
	}
	return op.OperationID != "" && op.OperationID == sel
}

// Pairs matches every request to the OpenAPI operation with the same
// method and path template. An exact path match wins over a suffix match
// against a request URL that carries a base path.
func Pairs(mapped []*openapi.MappedOperation, ops []*postman.Operation) []Pair {
	pairs := make([]Pair, 0, len(ops))
	for _, op := range ops {
		p := Pair{Postman: op}
		for _, m := range mapped {
			if !op.MatchesPath(m.Method, m.Path) {
				continue
			}
			if p.OpenAPI == nil || m.Path == op.Path {
				p.OpenAPI = m
			}
			if m.Path == op.Path {
				break
			}
		}
		pairs = append(pairs, p)
	}
	return pairs
}
