package step

import (
	"context"

	"namada-resilience-test/internal/classify"
	"namada-resilience-test/internal/rng"
	"namada-resilience-test/workload/model"
	"namada-resilience-test/workload/task"
)

// BatchBondStep draws up to model.MaxBatchTxNum independent Bond tasks
// against distinct source accounts and merges them into one task.Batch
// (spec.md §4.4.1). Building against a cloned model lets each later draw
// see the balance/bond effect of the ones drawn before it; the clone is
// discarded once BuildTask returns, since the pipeline commits the real
// model only from the returned task.Batch's own UpdateState.
type BatchBondStep struct{}

func (BatchBondStep) Name() string                   { return "batch-bond" }
func (BatchBondStep) IsValid(state *model.State) bool { return (BondStep{}).IsValid(state) }

// Assert overrides the default: an empty batch (no inner task could be
// built) is an occasional, legitimate outcome for a composite step, not a
// sign of a bug.
func (BatchBondStep) Assert(o classify.Kind) AssertKind {
	if o == classify.EmptyBatch {
		return AssertSometimes
	}
	return defaultAssert(o)
}

func (BatchBondStep) BuildTask(ctx context.Context, state *model.State) ([]task.Task, error) {
	scratch := state.Clone()
	used := map[model.Alias]bool{}
	var inner []task.Task
	for i := 0; i < model.MaxBatchTxNum; i++ {
		if !(BondStep{}).IsValid(scratch) {
			break
		}
		tasks, err := (BondStep{}).BuildTask(ctx, scratch)
		if err != nil {
			return nil, err
		}
		if len(tasks) == 0 {
			break
		}
		bond := tasks[0].(*task.Bond)
		if used[bond.Source] {
			continue
		}
		used[bond.Source] = true
		bond.UpdateState(scratch)
		inner = append(inner, bond)
	}
	if len(inner) == 0 {
		return nil, nil
	}
	payers := make([]model.Alias, 0, len(inner))
	for a := range used {
		payers = append(payers, a)
	}
	payer := chooseGasPayer(state, payers)
	return []task.Task{&task.Batch{Tasks: inner, Set: task.Settings{GasPayer: payer, GasLimit: model.DefaultGasLimit * uint64(len(inner))}}}, nil
}

// batchRandomDraw is one of the task shapes BatchRandom may draw, matching
// spec.md §4.4.1's inner-task set.
var batchRandomDraw = []Step{
	TransparentTransferStep{},
	BondStep{},
	RedelegateStep{},
	UnbondStep{},
	ShieldingStep{},
	UnshieldingStep{},
}

// BatchRandomStep draws up to model.MaxBatchTxNum tasks uniformly from the
// transfer/staking/shielded surface and merges them into one task.Batch.
type BatchRandomStep struct{}

func (BatchRandomStep) Name() string { return "batch-random" }
func (BatchRandomStep) IsValid(state *model.State) bool {
	for _, s := range batchRandomDraw {
		if s.IsValid(state) {
			return true
		}
	}
	return false
}

func (BatchRandomStep) Assert(o classify.Kind) AssertKind {
	if o == classify.EmptyBatch {
		return AssertSometimes
	}
	return defaultAssert(o)
}

func (BatchRandomStep) BuildTask(ctx context.Context, state *model.State) ([]task.Task, error) {
	scratch := state.Clone()
	var inner []task.Task
	gasPayers := map[model.Alias]bool{}
	for i := 0; i < model.MaxBatchTxNum; i++ {
		draw := batchRandomDraw[rng.Between(scratch.Rand(), 0, int64(len(batchRandomDraw)-1))]
		if !draw.IsValid(scratch) {
			continue
		}
		tasks, err := draw.BuildTask(ctx, scratch)
		if err != nil {
			return nil, err
		}
		if len(tasks) == 0 {
			continue
		}
		t := tasks[0]
		t.UpdateState(scratch)
		inner = append(inner, t)
		if s := t.Settings(); s != nil {
			gasPayers[s.GasPayer] = true
		}
	}
	if len(inner) == 0 {
		return nil, nil
	}
	payers := make([]model.Alias, 0, len(gasPayers))
	for a := range gasPayers {
		payers = append(payers, a)
	}
	payer := chooseGasPayer(state, payers)
	return []task.Task{&task.Batch{Tasks: inner, Set: task.Settings{GasPayer: payer, GasLimit: model.DefaultGasLimit * uint64(len(inner))}}}, nil
}
