package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkloadMetrics exposes the Prometheus series spec.md §4.12 assigns the
// workload harness: per-step outcome counts and the invariant monitor's
// probe failure/duration series.
type WorkloadMetrics struct {
	stepOutcomes  *prometheus.CounterVec
	probeFailures *prometheus.CounterVec
	probeDuration *prometheus.HistogramVec
}

var (
	workloadOnce     sync.Once
	workloadRegistry *WorkloadMetrics
)

// Workload returns the process-wide workload metrics registry, grounded on
// the teacher's sync.Once-guarded Potso() singleton.
func Workload() *WorkloadMetrics {
	workloadOnce.Do(func() {
		workloadRegistry = &WorkloadMetrics{
			stepOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "step_outcomes_total",
				Help: "Count of workload iteration outcomes by step and outcome bucket.",
			}, []string{"step", "outcome"}),
			probeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "invariant_probe_failures_total",
				Help: "Count of failed invariant monitor probes by probe name.",
			}, []string{"probe"}),
			probeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "invariant_probe_duration_seconds",
				Help:    "Invariant monitor probe check duration by probe name.",
				Buckets: prometheus.DefBuckets,
			}, []string{"probe"}),
		}
		prometheus.MustRegister(
			workloadRegistry.stepOutcomes,
			workloadRegistry.probeFailures,
			workloadRegistry.probeDuration,
		)
	})
	return workloadRegistry
}

// ObserveStepOutcome increments the per-(step,outcome) counter.
func (m *WorkloadMetrics) ObserveStepOutcome(step, outcome string) {
	if m == nil {
		return
	}
	m.stepOutcomes.WithLabelValues(step, outcome).Inc()
}

// ObserveProbeFailure increments the failure counter for probe.
func (m *WorkloadMetrics) ObserveProbeFailure(probe string) {
	if m == nil {
		return
	}
	m.probeFailures.WithLabelValues(probe).Inc()
}

// ObserveProbeDuration records how long a probe check took, in seconds.
func (m *WorkloadMetrics) ObserveProbeDuration(probe string, seconds float64) {
	if m == nil {
		return
	}
	m.probeDuration.WithLabelValues(probe).Observe(seconds)
}
