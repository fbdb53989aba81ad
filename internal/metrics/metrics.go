// Package metrics counts what compilations produce and exports the counts
// as a Prometheus textfile, for node_exporter's textfile collector or for
// inspection after a batch compile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/folio/internal/compiler"
)

const namespace = "folio"

// Outcome labels for the compilations counter.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Metrics holds the compilation collectors on a private registry, so
// several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	compilations      *prometheus.CounterVec
	works             prometheus.Counter
	sections          prometheus.Counter
	skippedLines      prometheus.Counter
	orphans           prometheus.Counter
	detachedSequences prometheus.Counter
	personsCreated    prometheus.Counter
	duration          prometheus.Histogram
}

// New creates and registers the compilation collectors.
func New() *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		compilations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compilations_total",
			Help:      "Compilations by outcome.",
		}, []string{"outcome"}),
		works:             counter("works_total", "Works created from headings."),
		sections:          counter("sections_total", "Section headings skipped."),
		skippedLines:      counter("skipped_lines_total", "Non-heading lines skipped."),
		orphans:           counter("orphans_total", "Headings left unreachable from the root."),
		detachedSequences: counter("detached_sequences_total", "Sequence edges omitted between non-siblings."),
		personsCreated:    counter("persons_created_total", "Persons created by identity resolution."),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compile_duration_seconds",
			Help:      "Wall time of one compilation including persistence.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}

	m.registry.MustRegister(
		m.compilations,
		m.works,
		m.sections,
		m.skippedLines,
		m.orphans,
		m.detachedSequences,
		m.personsCreated,
		m.duration,
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe records a successful compilation.
func (m *Metrics) Observe(res *compiler.Result, elapsed time.Duration) {
	m.compilations.WithLabelValues(OutcomeOK).Inc()
	m.works.Add(float64(res.Works))
	m.sections.Add(float64(res.Sections))
	m.skippedLines.Add(float64(len(res.SkippedLines)))
	m.orphans.Add(float64(len(res.Orphans)))
	m.detachedSequences.Add(float64(res.DetachedSequences))
	m.personsCreated.Add(float64(res.PersonsCreated))
	m.duration.Observe(elapsed.Seconds())
}

// ObserveFailure records a compilation that was rolled back.
func (m *Metrics) ObserveFailure(elapsed time.Duration) {
	m.compilations.WithLabelValues(OutcomeFailed).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// WriteTextfile writes every collector to path in the Prometheus text
// format. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
