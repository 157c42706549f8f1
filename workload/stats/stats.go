// Package stats implements the harness's result classification and
// reporting layer (spec.md §4.9, §9): per-step outcome counters, detail
// logs keyed by a fresh step id, a worker-termination summary, and the
// Prometheus export both the execution pipeline and invariant monitor feed.
package stats

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"namada-resilience-test/internal/classify"
	"namada-resilience-test/observability/metrics"
)

// Counters tallies one step type's outcomes across a worker's lifetime,
// per spec.md §4.9's five-way bucketing.
type Counters struct {
	Success    uint64
	Skip       uint64
	Fatal      uint64
	Acceptable uint64
	Unexpected uint64
}

func (c *Counters) add(bucket classify.Bucket) {
	switch bucket {
	case classify.BucketSuccess:
		c.Success++
	case classify.BucketSkip:
		c.Skip++
	case classify.BucketFatal:
		c.Fatal++
	case classify.BucketAcceptable:
		c.Acceptable++
	default:
		c.Unexpected++
	}
}

// Stats accumulates every iteration's classified outcome, keyed by step
// name, and every invariant probe's failures, keyed by probe name.
type Stats struct {
	mu          sync.Mutex
	perStep     map[string]*Counters
	probeFatals uint64

	Log     *slog.Logger
	Metrics *metrics.WorkloadMetrics
}

// New builds a Stats reporting to log and the process-wide metrics
// registry.
func New(log *slog.Logger) *Stats {
	return &Stats{
		perStep: make(map[string]*Counters),
		Log:     log,
		Metrics: metrics.Workload(),
	}
}

// Record folds one pipeline iteration's outcome into the per-step counters
// and emits a detail log keyed by a fresh (step_id, step_type) pair, per
// spec.md §4.9. acceptable distinguishes the expected IbcTransfer/
// InvalidShielded race failures from genuinely unexpected ones, mirroring
// workload/pipeline.classifyTaskErr's Details["acceptable"].
func (s *Stats) Record(outcome classify.Outcome, acceptable bool) {
	bucket := outcome.Bucket(acceptable)
	stepID := uuid.New()

	s.mu.Lock()
	c, ok := s.perStep[outcome.Step]
	if !ok {
		c = &Counters{}
		s.perStep[outcome.Step] = c
	}
	c.add(bucket)
	s.mu.Unlock()

	s.Metrics.ObserveStepOutcome(outcome.Step, bucket.String())

	if s.Log != nil {
		s.Log.Info("step outcome",
			slog.String("step_id", stepID.String()),
			slog.String("step_type", outcome.Step),
			slog.String("outcome", bucket.String()),
			slog.Any("err", outcome.Err),
			slog.Any("details", outcome.Details),
		)
	}
}

// RecordProbeOutcome implements workload/monitor.Reporter, feeding an
// invariant probe's result into the Prometheus failure counter/duration
// histogram and into the worker-termination fatal tally.
func (s *Stats) RecordProbeOutcome(probe string, outcome *classify.Outcome, duration time.Duration) {
	s.Metrics.ObserveProbeDuration(probe, duration.Seconds())
	if outcome == nil {
		return
	}
	s.Metrics.ObserveProbeFailure(probe)

	s.mu.Lock()
	s.probeFatals++
	s.mu.Unlock()

	if s.Log != nil {
		s.Log.Error("invariant probe failed",
			slog.String("probe", probe),
			slog.Any("err", outcome.Err),
			slog.Any("details", outcome.Details),
		)
	}
}

// HasProbeFailures reports whether any invariant probe has failed so far.
func (s *Stats) HasProbeFailures() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.probeFatals > 0
}

// Totals sums every step's counters.
func (s *Stats) Totals() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total Counters
	for _, c := range s.perStep {
		total.Success += c.Success
		total.Skip += c.Skip
		total.Fatal += c.Fatal
		total.Acceptable += c.Acceptable
		total.Unexpected += c.Unexpected
	}
	return total
}

// Summary produces the exact worker-termination message spec.md §4.9
// specifies.
func (s *Stats) Summary() string {
	total := s.Totals()
	s.mu.Lock()
	probeFatals := s.probeFatals
	s.mu.Unlock()

	switch {
	case total.Fatal > 0 || probeFatals > 0:
		return "Fatal failures happened"
	case total.Unexpected > 0:
		return "Non-fatal failures happened"
	case total.Success == 0:
		return "No successful transaction"
	default:
		return "Done successfully"
	}
}
