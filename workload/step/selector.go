package step

import (
	"namada-resilience-test/internal/walker"
	"namada-resilience-test/workload/model"
)

// MaxStepRedraws bounds how many times the selector retries IsValid before
// giving up and reporting an invalid draw (spec.md §4.5.1).
const MaxStepRedraws = 8

// Selector draws a Step using Walker's alias method over a fixed weight
// table, matching spec.md §8's convergence property: empirical draw
// frequency should approach each step's configured weight as draws grow.
type Selector struct {
	steps []Step
	table *walker.Table
}

// NewSelector builds a Selector over steps with parallel per-step weights.
// len(weights) must equal len(steps).
func NewSelector(steps []Step, weights []float64) *Selector {
	return &Selector{steps: steps, table: walker.New(weights)}
}

// Draw samples a step, re-drawing up to MaxStepRedraws times when the draw
// fails IsValid against state. ok is false when every attempt was invalid.
func (sel *Selector) Draw(state *model.State) (Step, bool) {
	for i := 0; i < MaxStepRedraws; i++ {
		idx := sel.table.Draw(state.Rand())
		s := sel.steps[idx]
		if s.IsValid(state) {
			return s, true
		}
	}
	return nil, false
}
