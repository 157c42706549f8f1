package step

import (
	"context"

	"namada-resilience-test/internal/classify"
	"namada-resilience-test/internal/rng"
	"namada-resilience-test/workload/model"
	"namada-resilience-test/workload/task"
)

// FaucetTransferStep funds a random known account from the faucet.
type FaucetTransferStep struct{}

func (FaucetTransferStep) Name() string                     { return "faucet-transfer" }
func (FaucetTransferStep) IsValid(state *model.State) bool   { return state.AnyAccount() }
func (FaucetTransferStep) Assert(o classify.Kind) AssertKind { return defaultAssert(o) }

func (FaucetTransferStep) BuildTask(ctx context.Context, state *model.State) ([]task.Task, error) {
	r := state.Rand()
	target, ok := pickAlias(state, r, func(model.Alias) bool { return true })
	if !ok {
		return nil, nil
	}
	amount := uint64(rng.Between(r, int64(model.NativeScale), int64(model.FaucetAmount/100)))
	return []task.Task{&task.FaucetTransfer{
		Target: target,
		Amount: amount,
		Set:    task.Settings{GasPayer: model.FaucetAlias, GasLimit: model.DefaultGasLimit},
	}}, nil
}

// TransparentTransferStep moves a native or foreign denom between two
// distinct transparent accounts.
type TransparentTransferStep struct{}

func (TransparentTransferStep) Name() string { return "transparent-transfer" }
func (TransparentTransferStep) IsValid(state *model.State) bool {
	return state.AnyAccountCanMakeTransfer()
}
func (TransparentTransferStep) Assert(o classify.Kind) AssertKind { return defaultAssert(o) }

func (TransparentTransferStep) BuildTask(ctx context.Context, state *model.State) ([]task.Task, error) {
	r := state.Rand()
	source, target, ok := pickTwoDistinctAliases(state, r, hasMinBalance(state, model.MinTransferBalance))
	if !ok {
		return nil, nil
	}
	payer := chooseGasPayer(state, []model.Alias{source, target})
	amount := randomAmount(r, state.Balance(source)-model.DefaultFee)
	return []task.Task{&task.TransparentTransfer{
		Source: source, Target: target, Denom: model.NativeDenom, Amount: amount,
		Set: task.Settings{Signers: []model.Alias{source}, GasPayer: payer, GasLimit: model.DefaultGasLimit},
	}}, nil
}
