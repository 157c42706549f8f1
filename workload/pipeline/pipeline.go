// Package pipeline implements the execution pipeline (spec.md §4.7): per
// iteration it samples a step, builds its task(s) and pre-checks, executes
// them, waits for settlement, runs the post-checks, and only then folds the
// result back into the worker's model.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"namada-resilience-test/internal/classify"
	"namada-resilience-test/workload/check"
	"namada-resilience-test/workload/model"
	"namada-resilience-test/workload/step"
	"namada-resilience-test/workload/task"
)

// Pipeline bundles the collaborators one worker's iteration loop needs.
type Pipeline struct {
	Env       *task.Env
	CheckEnv  *check.Env
	Selector  *step.Selector
	Log       *slog.Logger
	NoCheck   bool
	// PollInterval governs how often settlement polling re-queries block
	// height; defaults to one second if zero.
	PollInterval time.Duration
}

func (p *Pipeline) pollInterval() time.Duration {
	if p.PollInterval <= 0 {
		return time.Second
	}
	return p.PollInterval
}

// RunIteration executes spec.md §4.7's seven steps once and returns the
// classified outcome. It never returns an error: every failure mode is
// folded into the returned Outcome, per spec.md §7's "every iteration
// concludes with a classified result" design.
func (p *Pipeline) RunIteration(ctx context.Context, state *model.State) classify.Outcome {
	s, ok := p.Selector.Draw(state)
	if !ok {
		return classify.Outcome{Kind: classify.InvalidStep, Step: "selector"}
	}
	name := s.Name()

	tasks, err := s.BuildTask(ctx, state)
	if err != nil {
		return classify.Outcome{Kind: classify.BuildFailure, Step: name, Err: err}
	}
	if len(tasks) == 0 {
		return classify.Outcome{Kind: classify.NoTask, Step: name}
	}
	return p.RunTasks(ctx, state, name, tasks)
}

// RunTasks drives an already-built task list through build-checks, execute,
// settle, check, update-state — the bulk of spec.md §4.7's steps 3-7. Both
// RunIteration (ordinary sampled steps) and the workload binary's bootstrap
// operations (initialize, fund-all, which have no Step to sample from) share
// this path.
func (p *Pipeline) RunTasks(ctx context.Context, state *model.State, name string, tasks []task.Task) classify.Outcome {
	var checks []check.Check
	if !p.NoCheck {
		for _, t := range tasks {
			cs, err := t.BuildChecks(ctx, p.Env)
			if err != nil {
				return classify.Outcome{Kind: classify.BuildFailure, Step: name, Err: err}
			}
			checks = append(checks, cs...)
		}
	}

	heights := make([]uint64, 0, len(tasks))
	for _, t := range tasks {
		tx, err := t.BuildTx(ctx, p.Env)
		if err != nil {
			return classify.Outcome{Kind: classify.BuildFailure, Step: name, Err: err}
		}
		res, err := t.Execute(ctx, p.Env, tx)
		if err != nil {
			return classifyTaskErr(name, err)
		}
		heights = append(heights, res.Height)
	}

	execHeight := maxHeight(heights)
	checkHeight, err := p.waitForSettlement(ctx, execHeight)
	if err != nil {
		return classify.Outcome{Kind: classify.StateFatal, Step: name, Err: err}
	}

	if !p.NoCheck {
		info := check.Info{ExecutionHeight: execHeight, CheckHeight: checkHeight}
		fees := feesFor(tasks)
		for _, c := range checks {
			if err := c.Do(ctx, p.CheckEnv, info, fees); err != nil {
				var stateErr *check.StateError
				details := map[string]any{"check": c.Name()}
				if errors.As(err, &stateErr) {
					for k, v := range stateErr.Details {
						details[k] = v
					}
				}
				return classify.Outcome{Kind: classify.Fatal, Step: name, Err: err, Details: details}
			}
		}
	}

	for _, t := range tasks {
		t.UpdateState(state)
	}
	return classify.Outcome{Kind: classify.Success, Step: name}
}

// waitForSettlement polls block height until it reaches execHeight+1, per
// spec.md §4.7 step 5.
func (p *Pipeline) waitForSettlement(ctx context.Context, execHeight uint64) (uint64, error) {
	ticker := time.NewTicker(p.pollInterval())
	defer ticker.Stop()
	for {
		h, err := p.Env.Chain.BlockHeight(ctx)
		if err == nil && h >= execHeight+1 {
			return h, nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ticker.C:
		}
	}
}

// classifyTaskErr maps a task-layer error into the pipeline's outcome
// taxonomy, carrying forward whether the task package pre-categorized it as
// an acceptable race (spec.md §4.9, §7).
func classifyTaskErr(step string, err error) classify.Outcome {
	var taskErr *task.Error
	if !errors.As(err, &taskErr) {
		return classify.Outcome{Kind: classify.Other, Step: step, Err: err}
	}
	details := map[string]any{"acceptable": taskErr.Acceptable()}
	switch taskErr.Kind {
	case task.KindWallet, task.KindBuildTx, task.KindBuildCheck:
		return classify.Outcome{Kind: classify.BuildFailure, Step: step, Err: err, Details: details}
	case task.KindBroadcast:
		return classify.Outcome{Kind: classify.Broadcast, Step: step, Err: err, Details: details}
	default:
		return classify.Outcome{Kind: classify.Execution, Step: step, Err: err, Details: details}
	}
}

func maxHeight(hs []uint64) uint64 {
	var m uint64
	for _, h := range hs {
		if h > m {
			m = h
		}
	}
	return m
}

// feesFor builds the combined Alias->fee map every task's checks expect,
// merging each task's own FeesMap (spec.md §4.6).
func feesFor(tasks []task.Task) map[model.Alias]uint64 {
	fees := map[model.Alias]uint64{}
	for _, t := range tasks {
		s := t.Settings()
		if s == nil {
			continue
		}
		for alias, amt := range task.FeesMap(s.GasPayer) {
			fees[alias] += amt
		}
	}
	return fees
}

