package step

import (
	"context"

	"namada-resilience-test/internal/classify"
	"namada-resilience-test/internal/rng"
	"namada-resilience-test/workload/model"
	"namada-resilience-test/workload/task"
)

// NewWalletKeyPairStep generates a fresh implicit account locally; it has
// no precondition since it touches no chain state.
type NewWalletKeyPairStep struct{}

func (NewWalletKeyPairStep) Name() string                     { return "new-wallet-key-pair" }
func (NewWalletKeyPairStep) IsValid(state *model.State) bool   { return true }
func (NewWalletKeyPairStep) Assert(o classify.Kind) AssertKind { return defaultAssert(o) }

func (NewWalletKeyPairStep) BuildTask(ctx context.Context, state *model.State) ([]task.Task, error) {
	alias := model.Alias(rng.RandomAlias(state.Rand()))
	return []task.Task{&task.NewWalletKeyPair{Alias: alias}}, nil
}

// InitAccountStep establishes a fresh account with threshold 1 from one
// existing implicit account's public key.
type InitAccountStep struct{}

func (InitAccountStep) Name() string { return "init-account" }
func (InitAccountStep) IsValid(state *model.State) bool {
	return state.MinNImplicitAccounts(1) && state.AnyAccountCanPayFees()
}
func (InitAccountStep) Assert(o classify.Kind) AssertKind { return defaultAssert(o) }

func (InitAccountStep) BuildTask(ctx context.Context, state *model.State) ([]task.Task, error) {
	r := state.Rand()
	source, ok := pickAlias(state, r, func(a model.Alias) bool {
		acc, found := state.Account(a)
		return found && acc.Kind == model.Implicit
	})
	if !ok {
		return nil, nil
	}
	payer := chooseGasPayer(state, []model.Alias{source})
	alias := model.Alias(rng.RandomAlias(r))
	return []task.Task{&task.InitAccount{
		Alias:      alias,
		PublicKeys: []model.Alias{source},
		Threshold:  1,
		Set:        task.Settings{Signers: []model.Alias{source}, GasPayer: payer, GasLimit: model.DefaultGasLimit},
	}}, nil
}

// UpdateAccountStep replaces an established account's signer set.
type UpdateAccountStep struct{}

func (UpdateAccountStep) Name() string { return "update-account" }
func (UpdateAccountStep) IsValid(state *model.State) bool {
	return state.AtLeastAccounts(1) && state.AnyAccountCanPayFees()
}
func (UpdateAccountStep) Assert(o classify.Kind) AssertKind { return defaultAssert(o) }

func (UpdateAccountStep) BuildTask(ctx context.Context, state *model.State) ([]task.Task, error) {
	r := state.Rand()
	target, ok := pickAlias(state, r, func(a model.Alias) bool {
		acc, found := state.Account(a)
		return found && acc.Kind == model.Established
	})
	if !ok {
		return nil, nil
	}
	source, ok := pickAlias(state, r, func(a model.Alias) bool {
		acc, found := state.Account(a)
		return found && acc.Kind == model.Implicit
	})
	if !ok {
		return nil, nil
	}
	payer := chooseGasPayer(state, []model.Alias{target, source})
	return []task.Task{&task.UpdateAccount{
		Alias:      target,
		PublicKeys: []model.Alias{source},
		Threshold:  1,
		Set:        task.Settings{Signers: []model.Alias{target}, GasPayer: payer, GasLimit: model.DefaultGasLimit},
	}}, nil
}

// BecomeValidatorStep promotes an established account to a validator.
type BecomeValidatorStep struct{}

func (BecomeValidatorStep) Name() string { return "become-validator" }
func (BecomeValidatorStep) IsValid(state *model.State) bool {
	_, ok := pickAlias(state, state.Rand(), func(a model.Alias) bool {
		acc, found := state.Account(a)
		return found && acc.Kind == model.Established
	})
	return ok && state.AnyAccountCanPayFees()
}
func (BecomeValidatorStep) Assert(o classify.Kind) AssertKind { return defaultAssert(o) }

func (BecomeValidatorStep) BuildTask(ctx context.Context, state *model.State) ([]task.Task, error) {
	r := state.Rand()
	alias, ok := pickAlias(state, r, func(a model.Alias) bool {
		acc, found := state.Account(a)
		return found && acc.Kind == model.Established
	})
	if !ok {
		return nil, nil
	}
	payer := chooseGasPayer(state, []model.Alias{alias})
	return []task.Task{&task.BecomeValidator{
		Alias: alias,
		Set:   task.Settings{Signers: []model.Alias{alias}, GasPayer: payer, GasLimit: model.DefaultGasLimit},
	}}, nil
}

// ChangeMetadataStep updates a validator's off-chain metadata.
type ChangeMetadataStep struct{}

func (ChangeMetadataStep) Name() string { return "change-metadata" }
func (ChangeMetadataStep) IsValid(state *model.State) bool {
	return state.MinNValidators(1) && state.AnyAccountCanPayFees()
}
func (ChangeMetadataStep) Assert(o classify.Kind) AssertKind { return defaultAssert(o) }

func (ChangeMetadataStep) BuildTask(ctx context.Context, state *model.State) ([]task.Task, error) {
	r := state.Rand()
	alias, ok := anyValidator(state, r)
	if !ok {
		return nil, nil
	}
	payer := chooseGasPayer(state, []model.Alias{alias})
	return []task.Task{&task.ChangeMetadata{
		Alias: alias,
		Set:   task.Settings{Signers: []model.Alias{alias}, GasPayer: payer, GasLimit: model.DefaultGasLimit},
	}}, nil
}

// ChangeConsensusKeyStep rotates a validator's consensus key.
type ChangeConsensusKeyStep struct{}

func (ChangeConsensusKeyStep) Name() string { return "change-consensus-key" }
func (ChangeConsensusKeyStep) IsValid(state *model.State) bool {
	return state.MinNValidators(1) && state.AnyAccountCanPayFees()
}
func (ChangeConsensusKeyStep) Assert(o classify.Kind) AssertKind { return defaultAssert(o) }

func (ChangeConsensusKeyStep) BuildTask(ctx context.Context, state *model.State) ([]task.Task, error) {
	r := state.Rand()
	alias, ok := anyValidator(state, r)
	if !ok {
		return nil, nil
	}
	payer := chooseGasPayer(state, []model.Alias{alias})
	return []task.Task{&task.ChangeConsensusKey{
		Alias: alias,
		Set:   task.Settings{Signers: []model.Alias{alias}, GasPayer: payer, GasLimit: model.DefaultGasLimit},
	}}, nil
}

// DeactivateValidatorStep marks an active validator deactivated.
type DeactivateValidatorStep struct{}

func (DeactivateValidatorStep) Name() string { return "deactivate-validator" }
func (DeactivateValidatorStep) IsValid(state *model.State) bool {
	return state.MinNValidators(2) && state.AnyAccountCanPayFees()
}
func (DeactivateValidatorStep) Assert(o classify.Kind) AssertKind { return defaultAssert(o) }

func (DeactivateValidatorStep) BuildTask(ctx context.Context, state *model.State) ([]task.Task, error) {
	r := state.Rand()
	alias, ok := anyValidator(state, r)
	if !ok {
		return nil, nil
	}
	payer := chooseGasPayer(state, []model.Alias{alias})
	return []task.Task{&task.DeactivateValidator{
		Alias: alias,
		Set:   task.Settings{Signers: []model.Alias{alias}, GasPayer: payer, GasLimit: model.DefaultGasLimit},
	}}, nil
}

// ReactivateValidatorStep marks a deactivated validator active again.
type ReactivateValidatorStep struct{}

func (ReactivateValidatorStep) Name() string { return "reactivate-validator" }
func (ReactivateValidatorStep) IsValid(state *model.State) bool {
	_, ok := pickAlias(state, state.Rand(), func(a model.Alias) bool {
		acc, found := state.Account(a)
		return found && acc.Kind == model.DeactivatedValidator
	})
	return ok && state.AnyAccountCanPayFees()
}
func (ReactivateValidatorStep) Assert(o classify.Kind) AssertKind { return defaultAssert(o) }

func (ReactivateValidatorStep) BuildTask(ctx context.Context, state *model.State) ([]task.Task, error) {
	r := state.Rand()
	alias, ok := pickAlias(state, r, func(a model.Alias) bool {
		acc, found := state.Account(a)
		return found && acc.Kind == model.DeactivatedValidator
	})
	if !ok {
		return nil, nil
	}
	payer := chooseGasPayer(state, []model.Alias{alias})
	return []task.Task{&task.ReactivateValidator{
		Alias: alias,
		Set:   task.Settings{Signers: []model.Alias{alias}, GasPayer: payer, GasLimit: model.DefaultGasLimit},
	}}, nil
}
