// Package metrics records chunking runs as Prometheus metrics.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/coolbeans/lexchunk/pkg/statute"
)

const namespace = "lexchunk"

// Recorder owns a private registry so repeated runs in one process, and
// tests, never collide on the global one.
type Recorder struct {
	registry   *prometheus.Registry
	runs       *prometheus.CounterVec
	chunks     *prometheus.CounterVec
	sections   *prometheus.CounterVec
	chapters   prometheus.Counter
	duplicates prometheus.Counter
	inputBytes prometheus.Counter
	duration   prometheus.Histogram
}

// NewRecorder creates a Recorder with every metric registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Chunking runs by profile and result.",
		}, []string{"profile", "result"}),
		chunks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_total",
			Help:      "Chunks emitted by section type.",
		}, []string{"section_type"}),
		sections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sections_total",
			Help:      "Sections split by the boundary that opened them.",
		}, []string{"kind"}),
		chapters: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chapters_total",
			Help:      "Chapter headings found.",
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_ids_total",
			Help:      "Identifiers renamed to stay unique.",
		}),
		inputBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_bytes_total",
			Help:      "Bytes of input text chunked.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a chunking run.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
	r.registry.MustRegister(r.runs, r.chunks, r.sections, r.chapters, r.duplicates, r.inputBytes, r.duration)
	return r
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveRun records one completed run.
func (r *Recorder) ObserveRun(profile string, inputBytes int, stats statute.Stats, elapsed time.Duration) {
	r.runs.WithLabelValues(profile, "success").Inc()
	for sectionType, n := range stats.SectionTypes {
		r.chunks.WithLabelValues(sectionType).Add(float64(n))
	}
	for kind, n := range stats.SectionKinds {
		r.sections.WithLabelValues(kind).Add(float64(n))
	}
	r.chapters.Add(float64(stats.Chapters))
	r.duplicates.Add(float64(stats.Duplicates))
	r.inputBytes.Add(float64(inputBytes))
	r.duration.Observe(elapsed.Seconds())
}

// ObserveFailure records a run that ended in an error.
func (r *Recorder) ObserveFailure(profile string) {
	r.runs.WithLabelValues(profile, "failure").Inc()
}

// WriteTextfile dumps the metrics in text exposition format for the
// node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
