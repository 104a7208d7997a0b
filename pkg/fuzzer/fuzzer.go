package fuzzer

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/waftester/schemafuzz/pkg/openapi"
	"github.com/waftester/schemafuzz/pkg/placeholder"
	"github.com/waftester/schemafuzz/pkg/postman"
	"github.com/waftester/schemafuzz/pkg/variation"
)

// Injector receives every generated variation: the cloned operation, the
// OpenAPI operation it belongs to, the configuration carrying the
// mutation and the test that requested it. Its work is not inspected.
type Injector interface {
	InjectVariation(op *postman.Operation, oa *openapi.MappedOperation, cfg variation.Config, meta *variation.Test)
}

// InjectorFunc adapts a function to Injector.
type InjectorFunc func(op *postman.Operation, oa *openapi.MappedOperation, cfg variation.Config, meta *variation.Test)

func (fn InjectorFunc) InjectVariation(op *postman.Operation, oa *openapi.MappedOperation, cfg variation.Config, meta *variation.Test) {
	fn(op, oa, cfg, meta)
}

// Recorder counts generated and skipped fields.
type Recorder interface {
	RecordVariation(target, category string)
	RecordSkip(target, category, reason string)
}

type nopRecorder struct{}

func (nopRecorder) RecordVariation(string, string)    {}
func (nopRecorder) RecordSkip(string, string, string) {}

// Option configures a Fuzzer.
type Option func(*Fuzzer)

// WithLogger sets a custom structured logger for the fuzzer.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fuzzer) { f.logger = l }
}

// WithResolver sets the placeholder engine used on current values.
func WithResolver(e *placeholder.Engine) Option {
	return func(f *Fuzzer) { f.resolver = e }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(f *Fuzzer) { f.recorder = r }
}

// Fuzzer generates boundary variations and hands them to an Injector.
// It keeps every generated operation and every outcome for reporting.
// A Fuzzer is not safe for concurrent use.
type Fuzzer struct {
	injector Injector
	resolver *placeholder.Engine
	recorder Recorder
	logger   *slog.Logger

	variations []*postman.Operation
	outcomes   []Outcome
}

// New creates a Fuzzer that sends variations to injector.
func New(injector Injector, opts ...Option) *Fuzzer {
	f := &Fuzzer{
		injector: injector,
		recorder: nopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.resolver == nil {
		f.resolver = placeholder.NewEngine(nil)
	}
	if f.injector == nil {
		f.injector = InjectorFunc(func(*postman.Operation, *openapi.MappedOperation, variation.Config, *variation.Test) {})
	}
	return f
}

// Variations returns the generated operations in generation order.
func (f *Fuzzer) Variations() []*postman.Operation {
	return slices.Clone(f.variations)
}

// Outcomes returns one entry per fuzzed field, generated or skipped.
func (f *Fuzzer) Outcomes() []Outcome {
	return slices.Clone(f.outcomes)
}

// Skipped returns the outcomes of abandoned fields.
func (f *Fuzzer) Skipped() []Outcome {
	var out []Outcome
	for _, o := range f.outcomes {
		if o.Skipped() {
			out = append(out, o)
		}
	}
	return out
}

// InjectRequestBodyVariations runs every body rule set of v against the
// request body schema of oa.
func (f *Fuzzer) InjectRequestBodyVariations(op *postman.Operation, oa *openapi.MappedOperation, v variation.Config, meta *variation.Test) {
	if len(v.Fuzzing) == 0 || oa == nil || oa.RequestBody == nil {
		return
	}
	cat := AnalyzeBody(oa.RequestBody)
	for _, set := range v.Fuzzing {
		for _, rules := range set.RequestBody {
			f.applyRules(op, oa, v, meta, cat, rules)
		}
	}
}

// InjectRequestQueryParamsVariations runs every query rule set of v
// against each query parameter of oa.
func (f *Fuzzer) InjectRequestQueryParamsVariations(op *postman.Operation, oa *openapi.MappedOperation, v variation.Config, meta *variation.Test) {
	if len(v.Fuzzing) == 0 || oa == nil || len(oa.QueryParams) == 0 {
		return
	}
	for i := range oa.QueryParams {
		cat := AnalyzeQueryParam(&oa.QueryParams[i])
		for _, set := range v.Fuzzing {
			for _, rules := range set.RequestQueryParams {
				f.applyRules(op, oa, v, meta, cat, rules)
			}
		}
	}
}

func (f *Fuzzer) applyRules(op *postman.Operation, oa *openapi.MappedOperation, v variation.Config, meta *variation.Test, cat Catalogue, rules variation.RuleSet) {
	for _, c := range variation.Categories() {
		if rules.Enabled(c) {
			f.inject(op, oa, v, meta, cat, c)
		}
	}
}

// InjectRequiredVariation emits one variation per required field, each
// removing that field.
func (f *Fuzzer) InjectRequiredVariation(op *postman.Operation, oa *openapi.MappedOperation, v variation.Config, meta *variation.Test, cat Catalogue) {
	f.inject(op, oa, v, meta, cat, variation.Required)
}

// InjectMinimumVariation emits one variation per minimum, set to one
// below it.
func (f *Fuzzer) InjectMinimumVariation(op *postman.Operation, oa *openapi.MappedOperation, v variation.Config, meta *variation.Test, cat Catalogue) {
	f.inject(op, oa, v, meta, cat, variation.Minimum)
}

// InjectMaximumVariation emits one variation per maximum, set to one
// above it.
func (f *Fuzzer) InjectMaximumVariation(op *postman.Operation, oa *openapi.MappedOperation, v variation.Config, meta *variation.Test, cat Catalogue) {
	f.inject(op, oa, v, meta, cat, variation.Maximum)
}

// InjectMinLengthVariation emits one variation per minLength, with the
// baseline value cut one character short of it.
func (f *Fuzzer) InjectMinLengthVariation(op *postman.Operation, oa *openapi.MappedOperation, v variation.Config, meta *variation.Test, cat Catalogue) {
	f.inject(op, oa, v, meta, cat, variation.MinLength)
}

// InjectMaxLengthVariation emits one variation per maxLength, with the
// baseline value padded one character past it.
func (f *Fuzzer) InjectMaxLengthVariation(op *postman.Operation, oa *openapi.MappedOperation, v variation.Config, meta *variation.Test, cat Catalogue) {
	f.inject(op, oa, v, meta, cat, variation.MaxLength)
}

func (f *Fuzzer) inject(op *postman.Operation, oa *openapi.MappedOperation, v variation.Config, meta *variation.Test, cat Catalogue, c variation.Category) {
	target := cat.Target()
	fields := cat.Fields(c)
	if len(fields) == 0 || target == nil || op == nil || op.Item == nil {
		return
	}

	template := v.Clone()
	for _, field := range fields {
		name := Name(op.Name(), v.Name, c, field.Field)
		out := Outcome{Target: target.String(), Category: c, Field: field, Name: name}

		ins, reason := f.derive(op, target, c, field)
		if reason != "" {
			out.Reason = reason
			f.outcomes = append(f.outcomes, out)
			f.recorder.RecordSkip(out.Target, c.String(), string(reason))
			f.logger.Debug("field skipped",
				slog.String("variation", name),
				slog.String("target", out.Target),
				slog.String("path", field.Path),
				slog.String("reason", string(reason)))
			continue
		}

		clone := op.Clone(postman.CloneOptions{NewID: CamelCase(name), Name: name})
		cfg := variation.AddOverwrite(template, target.Kind(), ins)
		f.injector.InjectVariation(clone, oa, cfg, meta)

		out.Operation = clone
		out.Instruction = ins
		f.variations = append(f.variations, clone)
		f.outcomes = append(f.outcomes, out)
		f.recorder.RecordVariation(out.Target, c.String())
	}
}

// Name builds the variation name: base[variation][label field].
func Name(base, variationName string, c variation.Category, field string) string {
	return fmt.Sprintf("%s[%s][%s %s]", base, variationName, c.Label(), field)
}
