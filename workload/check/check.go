// Package check implements the postcondition predicates (spec.md §4.6) the
// execution pipeline runs after a task's transaction has settled. Every
// Check bakes in the pre-execution value its task observed and compares it
// against a freshly queried post-value, under the same retry policy queries
// use everywhere else in this harness.
package check

import (
	"context"
	"log/slog"

	"namada-resilience-test/internal/retry"
	"namada-resilience-test/workload/model"
	"namada-resilience-test/workload/query"
)

// Env bundles the collaborators a Check needs to issue its queries. It is
// deliberately narrower than task.Env: checks never sign or submit, they
// only read.
type Env struct {
	Chain    query.ChainQuerier
	Cosmos   query.CosmosQuerier
	Shielded *query.ShieldedSource
	// Resolve maps a model.Alias to the on-chain address string the query
	// layer expects.
	Resolve func(model.Alias) string
	Retry   retry.Policy
	Log     *slog.Logger
}

func (e *Env) retry(ctx context.Context, op string, fn func(context.Context) error) error {
	return retry.Do(ctx, e.Log, op, e.Retry, fn)
}

// Info carries the execution and check heights a Check needs, per spec.md
// §9's resolution of the older/newer Check-shape ambiguity: every Check's Do
// takes this plus a fees map, never an embedded State payload.
type Info struct {
	ExecutionHeight uint64
	CheckHeight     uint64
}

// StateError is returned when the chain's observed state contradicts the
// model's prediction: a Fatal outcome (spec.md §7 "Check::State fails the
// iteration as Fatal"). Details is forwarded to the fault framework as the
// JSON blob spec.md §7 describes.
type StateError struct {
	Msg     string
	Details map[string]any
}

func (e *StateError) Error() string { return "check: " + e.Msg }

// Check is a single postcondition predicate (spec.md §4.6).
type Check interface {
	// Name identifies the check for logging, e.g. "BalanceSource(alice)".
	Name() string
	// Do runs the check's query(ies) and returns nil on success, a
	// *StateError on a genuine state divergence, or a wrapped query.Error on
	// a retry-exhausted read failure.
	Do(ctx context.Context, env *Env, info Info, fees map[model.Alias]uint64) error
}
