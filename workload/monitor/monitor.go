// Package monitor implements the invariant monitor (spec.md §4.8): a set of
// independent periodic probes against a live chain, each with its own
// cadence, sharing no mutable state with the execution pipeline. The
// per-probe ticker loop mirrors the teacher's oracle.Manager.Run/Tick shape
// (services/swapd/oracle/manager.go), generalized to many independent
// cadences instead of one.
package monitor

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"namada-resilience-test/internal/classify"
	"namada-resilience-test/internal/retry"
	"namada-resilience-test/workload/query"
)

// Env bundles the collaborators every probe needs. Probes read only chain
// state, never the workload model (spec.md §5 "probes read only chain
// state").
type Env struct {
	Chain          query.ChainQuerier
	MaspIndexerURL string
	HTTPClient     *http.Client
	// Retry is the per-probe query retry policy; spec.md §4.8 defaults this
	// to 3 attempts with a 1s sleep between.
	Retry retry.Policy
	Log   *slog.Logger
}

func defaultRetry() retry.Policy {
	return retry.Policy{MaxAttempts: 3, InitialDelay: time.Second, MaxDelay: time.Second}
}

func (e *Env) retry(ctx context.Context, op string, fn func(context.Context) error) error {
	p := e.Retry
	if p.MaxAttempts == 0 {
		p = defaultRetry()
	}
	return retry.Do(ctx, e.Log, op, p, fn)
}

func (e *Env) httpClient() *http.Client {
	if e.HTTPClient != nil {
		return e.HTTPClient
	}
	return http.DefaultClient
}

// Probe is one independent invariant check with its own cadence.
type Probe interface {
	Name() string
	Cadence() time.Duration
	// Check runs one probe cycle and returns a *classify.Outcome describing
	// a failed invariant, or nil on success.
	Check(ctx context.Context, env *Env) (*classify.Outcome, error)
}

// Reporter receives a probe's outcome. workload/stats (C9) implements this
// to fold probe failures into the worker's termination summary.
type Reporter interface {
	RecordProbeOutcome(probe string, outcome *classify.Outcome, duration time.Duration)
}

// Monitor runs every configured Probe on its own rate-limited cadence until
// ctx is canceled.
type Monitor struct {
	Env      *Env
	Probes   []Probe
	Reporter Reporter
}

// Run blocks until ctx is canceled, running each probe cooperatively: each
// probe gets its own goroutine and its own golang.org/x/time/rate.Limiter
// gating its cadence, so a slow probe never delays another's clock
// (spec.md §4.8 "no global lock on the model").
func (m *Monitor) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, p := range m.Probes {
		wg.Add(1)
		go func(p Probe) {
			defer wg.Done()
			m.runProbe(ctx, p)
		}(p)
	}
	wg.Wait()
}

func (m *Monitor) runProbe(ctx context.Context, p Probe) {
	limiter := rate.NewLimiter(rate.Every(p.Cadence()), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		start := time.Now()
		outcome, err := p.Check(ctx, m.Env)
		elapsed := time.Since(start)
		if err != nil {
			if m.Env.Log != nil {
				m.Env.Log.Warn("invariant probe query failed", slog.String("probe", p.Name()), slog.Any("err", err))
			}
			continue
		}
		if outcome != nil && m.Env.Log != nil {
			m.Env.Log.Error("invariant probe failed", slog.String("probe", p.Name()), slog.Any("details", outcome.Details), slog.Any("err", outcome.Err))
		}
		if m.Reporter != nil {
			m.Reporter.RecordProbeOutcome(p.Name(), outcome, elapsed)
		}
	}
}
