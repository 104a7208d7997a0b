// Package metrics counts variation generation with Prometheus
// collectors:
//   - schemafuzz_variations_total{target,category}
//   - schemafuzz_fields_skipped_total{target,category,reason}
//   - schemafuzz_operations_total{outcome}
//   - schemafuzz_generation_duration_seconds
//
// Collectors live on a private registry and can be written to a
// node_exporter textfile after a run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/waftester/schemafuzz/pkg/defaults"
)

// Operation outcomes.
const (
	OutcomeFuzzed    = "fuzzed"    // at least one variation generated
	OutcomeEmpty     = "empty"     // matched, nothing to generate
	OutcomeUnmatched = "unmatched" // no OpenAPI operation for the request
)

// Recorder holds the generation collectors. It is safe for concurrent
// use.
type Recorder struct {
	registry *prometheus.Registry

	variationsTotal *prometheus.CounterVec
	skippedTotal    *prometheus.CounterVec
	operationsTotal *prometheus.CounterVec
	durationSeconds prometheus.Gauge
}

// NewRecorder creates a Recorder on its own registry.
func NewRecorder() (*Recorder, error) {
	r := &Recorder{registry: prometheus.NewRegistry()}
	if err := r.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	return r, nil
}

func (r *Recorder) initMetrics() error {
	r.variationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: defaults.MetricsPrefix + "variations_total",
			Help: "Total number of generated variations",
		},
		[]string{"target", "category"},
	)

	r.skippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: defaults.MetricsPrefix + "fields_skipped_total",
			Help: "Total number of constrained fields that produced no variation",
		},
		[]string{"target", "category", "reason"},
	)

	r.operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: defaults.MetricsPrefix + "operations_total",
			Help: "Total number of collection requests processed",
		},
		[]string{"outcome"},
	)

	r.durationSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: defaults.MetricsPrefix + "generation_duration_seconds",
			Help: "Duration of the last generation run in seconds",
		},
	)

	collectors := []prometheus.Collector{
		r.variationsTotal,
		r.skippedTotal,
		r.operationsTotal,
		r.durationSeconds,
	}
	for _, c := range collectors {
		if err := r.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RecordVariation counts one generated variation.
func (r *Recorder) RecordVariation(target, category string) {
	r.variationsTotal.WithLabelValues(target, category).Inc()
}

// RecordSkip counts one abandoned field.
func (r *Recorder) RecordSkip(target, category, reason string) {
	r.skippedTotal.WithLabelValues(target, category, reason).Inc()
}

// RecordOperation counts one processed request by outcome.
func (r *Recorder) RecordOperation(outcome string) {
	r.operationsTotal.WithLabelValues(outcome).Inc()
}

// ObserveDuration records the wall time of a run.
func (r *Recorder) ObserveDuration(d time.Duration) {
	r.durationSeconds.Set(d.Seconds())
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes every collector to path in the text exposition
// format. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
