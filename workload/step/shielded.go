package step

import (
	"context"

	"namada-resilience-test/internal/classify"
	"namada-resilience-test/workload/model"
	"namada-resilience-test/workload/task"
)

func hasMinShieldedBalance(state *model.State, b uint64) func(model.Alias) bool {
	return func(a model.Alias) bool { return state.ShieldedBalance(a) >= b }
}

// ShieldedTransferStep moves tokens between two shielded identities.
type ShieldedTransferStep struct{}

func (ShieldedTransferStep) Name() string { return "shielded-transfer" }
func (ShieldedTransferStep) IsValid(state *model.State) bool {
	if !state.AtLeastAccounts(2) {
		return false
	}
	_, ok := pickAlias(state, state.Rand(), hasMinShieldedBalance(state, model.NativeScale))
	return ok
}
func (ShieldedTransferStep) Assert(o classify.Kind) AssertKind { return defaultAssert(o) }

func (ShieldedTransferStep) BuildTask(ctx context.Context, state *model.State) ([]task.Task, error) {
	r := state.Rand()
	source, ok := pickAlias(state, r, hasMinShieldedBalance(state, model.NativeScale))
	if !ok {
		return nil, nil
	}
	target, ok := pickAlias(state, r, func(a model.Alias) bool { return a != source })
	if !ok {
		return nil, nil
	}
	payer := chooseGasPayer(state, []model.Alias{source, target})
	amount := randomAmount(r, state.ShieldedBalance(source))
	return []task.Task{&task.ShieldedTransfer{
		Source: source, Target: target, Amount: amount,
		Set: task.Settings{Signers: []model.Alias{source}, GasPayer: payer, GasLimit: model.DefaultGasLimit},
	}}, nil
}

// ShieldingStep moves tokens from a transparent account into a shielded one.
type ShieldingStep struct{}

func (ShieldingStep) Name() string                   { return "shielding" }
func (ShieldingStep) IsValid(state *model.State) bool { return state.AnyAccountCanMakeTransfer() }
func (ShieldingStep) Assert(o classify.Kind) AssertKind { return defaultAssert(o) }

func (ShieldingStep) BuildTask(ctx context.Context, state *model.State) ([]task.Task, error) {
	r := state.Rand()
	source, ok := pickAlias(state, r, hasMinBalance(state, model.MinTransferBalance))
	if !ok {
		return nil, nil
	}
	target, ok := pickAlias(state, r, func(model.Alias) bool { return true })
	if !ok {
		return nil, nil
	}
	payer := chooseGasPayer(state, []model.Alias{source})
	amount := randomAmount(r, state.Balance(source)-model.DefaultFee)
	return []task.Task{&task.Shielding{
		Source: source, Target: target, Amount: amount,
		Set: task.Settings{Signers: []model.Alias{source}, GasPayer: payer, GasLimit: model.DefaultGasLimit},
	}}, nil
}

// UnshieldingStep moves tokens from a shielded account back to a
// transparent one.
type UnshieldingStep struct{}

func (UnshieldingStep) Name() string { return "unshielding" }
func (UnshieldingStep) IsValid(state *model.State) bool {
	_, ok := pickAlias(state, state.Rand(), hasMinShieldedBalance(state, model.NativeScale))
	return ok && state.AnyAccountCanPayFees()
}
func (UnshieldingStep) Assert(o classify.Kind) AssertKind { return defaultAssert(o) }

func (UnshieldingStep) BuildTask(ctx context.Context, state *model.State) ([]task.Task, error) {
	r := state.Rand()
	source, ok := pickAlias(state, r, hasMinShieldedBalance(state, model.NativeScale))
	if !ok {
		return nil, nil
	}
	target, ok := pickAlias(state, r, func(model.Alias) bool { return true })
	if !ok {
		return nil, nil
	}
	payer := chooseGasPayer(state, []model.Alias{target})
	amount := randomAmount(r, state.ShieldedBalance(source))
	return []task.Task{&task.Unshielding{
		Source: source, Target: target, Amount: amount,
		Set: task.Settings{Signers: []model.Alias{source}, GasPayer: payer, GasLimit: model.DefaultGasLimit},
	}}, nil
}
