// Package step implements the Step tagged variants (spec.md §4.5): each
// knows its own precondition, draws parameters from a worker's model and
// RNG, and builds the Task(s) the pipeline should run next.
package step

import (
	"context"

	"namada-resilience-test/internal/classify"
	"namada-resilience-test/workload/model"
	"namada-resilience-test/workload/task"
)

// AssertKind classifies how a step expects an outcome to occur, for the
// fault framework's always/sometimes/unreachable assertions keyed by step
// name (spec.md §4.5, §7).
type AssertKind int

const (
	// AssertAlways means this outcome should occur on every successful run.
	AssertAlways AssertKind = iota
	// AssertSometimes means this outcome is a legitimate, occasional result.
	AssertSometimes
	// AssertUnreachable means this outcome should never occur; seeing it is
	// itself a bug report.
	AssertUnreachable
)

func (a AssertKind) String() string {
	switch a {
	case AssertAlways:
		return "always"
	case AssertSometimes:
		return "sometimes"
	default:
		return "unreachable"
	}
}

// Step is the tagged-variant contract spec.md §4.5 names.
type Step interface {
	Name() string
	IsValid(state *model.State) bool
	BuildTask(ctx context.Context, state *model.State) ([]task.Task, error)
	Assert(outcome classify.Kind) AssertKind
}

// Error wraps a step-layer failure per spec.md §7's step error hierarchy
// (Wallet, BuildTask, Query).
type Error struct {
	Kind string
	Err  error
}

func (e *Error) Error() string { return "step(" + e.Kind + "): " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// defaultAssert is the assertion classification shared by every ordinary
// (non-composite) step: success is expected on every run, execution-shaped
// failures are occasional and legitimate, anything Fatal or worse should
// never happen.
func defaultAssert(outcome classify.Kind) AssertKind {
	switch outcome {
	case classify.Success, classify.Skip, classify.InvalidStep, classify.NoTask:
		return AssertAlways
	case classify.Fatal, classify.StateFatal, classify.InitFatal:
		return AssertUnreachable
	default:
		return AssertSometimes
	}
}
