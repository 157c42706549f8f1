package step

import (
	"context"

	"namada-resilience-test/internal/classify"
	"namada-resilience-test/workload/model"
	"namada-resilience-test/workload/task"
)

// BondStep delegates native tokens from a funded account to a validator.
type BondStep struct{}

func (BondStep) Name() string { return "bond" }
func (BondStep) IsValid(state *model.State) bool {
	return state.MinNValidators(1) && state.AnyAccountCanMakeTransfer()
}
func (BondStep) Assert(o classify.Kind) AssertKind { return defaultAssert(o) }

func (BondStep) BuildTask(ctx context.Context, state *model.State) ([]task.Task, error) {
	r := state.Rand()
	source, ok := pickAlias(state, r, hasMinBalance(state, model.MinTransferBalance))
	if !ok {
		return nil, nil
	}
	validator, ok := anyValidator(state, r)
	if !ok {
		return nil, nil
	}
	amount := randomAmount(r, state.Balance(source)-model.DefaultFee)
	return []task.Task{&task.Bond{
		Source: source, Validator: string(validator), Amount: amount,
		Set: task.Settings{Signers: []model.Alias{source}, GasPayer: source, GasLimit: model.DefaultGasLimit},
	}}, nil
}

// UnbondStep withdraws part of an existing bond back into the unbonding
// queue.
type UnbondStep struct{}

func (UnbondStep) Name() string                   { return "unbond" }
func (UnbondStep) IsValid(state *model.State) bool { return state.AnyBond() && state.AnyAccountCanPayFees() }
func (UnbondStep) Assert(o classify.Kind) AssertKind { return defaultAssert(o) }

func (UnbondStep) BuildTask(ctx context.Context, state *model.State) ([]task.Task, error) {
	r := state.Rand()
	pair, ok := anyBondedPair(state, r)
	if !ok {
		return nil, nil
	}
	payer := chooseGasPayer(state, []model.Alias{pair.Source})
	amount := randomAmount(r, state.Bond(pair.Source, pair.Validator))
	return []task.Task{&task.Unbond{
		Source: pair.Source, Validator: pair.Validator, Amount: amount,
		Set: task.Settings{Signers: []model.Alias{pair.Source}, GasPayer: payer, GasLimit: model.DefaultGasLimit},
	}}, nil
}

// RedelegateStep moves a bonded amount from one validator to another
// without passing through the unbonding queue.
type RedelegateStep struct{}

func (RedelegateStep) Name() string { return "redelegate" }
func (RedelegateStep) IsValid(state *model.State) bool {
	return state.AnyBond() && state.MinNValidators(2) && state.AnyAccountCanPayFees()
}
func (RedelegateStep) Assert(o classify.Kind) AssertKind { return defaultAssert(o) }

func (RedelegateStep) BuildTask(ctx context.Context, state *model.State) ([]task.Task, error) {
	r := state.Rand()
	pair, ok := anyBondedPair(state, r)
	if !ok {
		return nil, nil
	}
	dst, ok := pickAlias(state, r, func(a model.Alias) bool {
		acc, found := state.Account(a)
		return found && acc.Kind == model.Validator && string(a) != pair.Validator
	})
	if !ok {
		return nil, nil
	}
	payer := chooseGasPayer(state, []model.Alias{pair.Source})
	amount := randomAmount(r, state.Bond(pair.Source, pair.Validator))
	return []task.Task{&task.Redelegate{
		Source: pair.Source, SrcValidator: pair.Validator, DstValidator: string(dst), Amount: amount,
		Set: task.Settings{Signers: []model.Alias{pair.Source}, GasPayer: payer, GasLimit: model.DefaultGasLimit},
	}}, nil
}

// ClaimRewardsStep withdraws accrued staking rewards to the delegator's
// transparent balance.
type ClaimRewardsStep struct{}

func (ClaimRewardsStep) Name() string                   { return "claim-rewards" }
func (ClaimRewardsStep) IsValid(state *model.State) bool { return state.AnyBond() && state.AnyAccountCanPayFees() }
func (ClaimRewardsStep) Assert(o classify.Kind) AssertKind { return defaultAssert(o) }

func (ClaimRewardsStep) BuildTask(ctx context.Context, state *model.State) ([]task.Task, error) {
	r := state.Rand()
	pair, ok := anyBondedPair(state, r)
	if !ok {
		return nil, nil
	}
	payer := chooseGasPayer(state, []model.Alias{pair.Source})
	return []task.Task{&task.ClaimRewards{
		Source: pair.Source, Validator: pair.Validator,
		Set: task.Settings{Signers: []model.Alias{pair.Source}, GasPayer: payer, GasLimit: model.DefaultGasLimit},
	}}, nil
}
