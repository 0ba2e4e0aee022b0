package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives counters from a cleaning pass.
type Recorder interface {
	AddObjectsScanned(n int)
	AddObjectsDeleted(n int, dryRun bool)
	IncArtifacts(outcome string)
	ObserveRun(status string, durationSeconds float64)
}

// Noop implements Recorder without emitting anything.
type Noop struct{}

func (Noop) AddObjectsScanned(int)       {}
func (Noop) AddObjectsDeleted(int, bool) {}
func (Noop) IncArtifacts(string)         {}
func (Noop) ObserveRun(string, float64)  {}

// Prom implements Recorder backed by Prometheus collectors.
type Prom struct {
	registry       *prometheus.Registry
	objectsScanned prometheus.Counter
	objectsDeleted *prometheus.CounterVec
	artifacts      *prometheus.CounterVec
	runs           *prometheus.CounterVec
	runDuration    prometheus.Histogram
}

// NewProm registers the cleaner collectors on a private registry.
func NewProm(namespace string) *Prom {
	p := &Prom{
		registry: prometheus.NewRegistry(),
		objectsScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "objects_scanned_total",
			Help:      "Objects listed while collecting metadata",
		}),
		objectsDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "objects_deleted_total",
			Help:      "Objects deleted, or selected for deletion in dry-run mode",
		}, []string{"mode"}),
		artifacts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_total",
			Help:      "Artifacts processed by outcome",
		}, []string{"outcome"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Cleaning passes by status",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Cleaning pass duration",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
	}
	p.registry.MustRegister(p.objectsScanned, p.objectsDeleted, p.artifacts, p.runs, p.runDuration)
	return p
}

func (p *Prom) AddObjectsScanned(n int) {
	p.objectsScanned.Add(float64(n))
}

func (p *Prom) AddObjectsDeleted(n int, dryRun bool) {
	mode := "delete"
	if dryRun {
		mode = "dry_run"
	}
	p.objectsDeleted.WithLabelValues(mode).Add(float64(n))
}

func (p *Prom) IncArtifacts(outcome string) {
	p.artifacts.WithLabelValues(outcome).Inc()
}

func (p *Prom) ObserveRun(status string, durationSeconds float64) {
	p.runs.WithLabelValues(status).Inc()
	p.runDuration.Observe(durationSeconds)
}

// Registry exposes the registry for gathering in tests.
func (p *Prom) Registry() *prometheus.Registry {
	return p.registry
}

// Handler returns an HTTP handler serving this recorder's collectors.
func (p *Prom) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
