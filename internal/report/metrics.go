package report

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are boring counters derived from Results only.
type Metrics struct {
	registry *prometheus.Registry

	runsStarted    prometheus.Counter
	runsTotal      *prometheus.CounterVec
	runsSuppressed prometheus.Counter
	runsOverrun    prometheus.Counter
	runDuration    prometheus.Histogram
}

var globalMetrics = NewMetrics()

// Global returns the process-wide metrics instance
func Global() *Metrics {
	return globalMetrics
}

// NewMetrics creates metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loadtime_runs_started_total",
			Help: "Timed runs started",
		}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loadtime_runs_total",
			Help: "Timed runs finished, by outcome",
		}, []string{"outcome"}),
		runsSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loadtime_runs_suppressed_total",
			Help: "Finished runs whose progress output was suppressed",
		}),
		runsOverrun: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loadtime_runs_overrun_total",
			Help: "Completed runs that took longer than their recorded estimate",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "loadtime_run_duration_seconds",
			Help:    "Duration of completed runs",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
	}

	m.registry.MustRegister(m.runsStarted, m.runsTotal, m.runsSuppressed, m.runsOverrun, m.runDuration)
	return m
}

// IncrStarted increments runs started counter
func (m *Metrics) IncrStarted() {
	m.runsStarted.Inc()
}

// RecordResult updates all counters from a single Result.
func (m *Metrics) RecordResult(r *Result) {
	m.runsTotal.WithLabelValues(string(r.Outcome)).Inc()

	if r.Suppressed {
		m.runsSuppressed.Inc()
	}
	if r.Outcome == OutcomeCompleted {
		m.runDuration.Observe(r.Duration.Seconds())
	}
	if r.Overran() {
		m.runsOverrun.Inc()
	}
}
