package task

import (
	"context"
	"fmt"

	"namada-resilience-test/workload/check"
	"namada-resilience-test/workload/model"
)

// Bond moves native tokens from source into a bond with validator.
type Bond struct {
	Source    model.Alias
	Validator string
	Amount    uint64
	Set       Settings
}

func (t *Bond) Name() string    { return "bond" }
func (t *Bond) Summary() string { return fmt.Sprintf("bond %d %s -> %s", t.Amount, t.Source, t.Validator) }
func (t *Bond) Settings() *Settings { return &t.Set }

func (t *Bond) BuildTx(ctx context.Context, env *Env) (*SignedTx, error) {
	return sign(ctx, env, t.Name(), t, t.Set)
}

func (t *Bond) Execute(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error) {
	return execute(ctx, env, tx)
}

func (t *Bond) BuildChecks(ctx context.Context, env *Env) ([]check.Check, error) {
	epoch, err := env.Chain.Epoch(ctx)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	preBond, err := queryBond(ctx, env, t.Source, t.Validator, epoch+model.PipelineLen)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	preBalance, err := queryBalance(ctx, env, t.Source, model.NativeDenom)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	return []check.Check{
		&check.BalanceSourceCheck{Alias: t.Source, Pre: preBalance, Denom: model.NativeDenom, Amount: t.Amount},
		&check.BondIncreaseCheck{Alias: t.Source, Validator: t.Validator, PreBond: preBond, Epoch: epoch, Amount: t.Amount},
	}, nil
}

func (t *Bond) UpdateState(state *model.State) {
	state.ModifyBalanceFee(t.Set.GasPayer, t.Set.GasLimit)
	state.DecreaseBalance(t.Source, t.Amount)
	state.ModifyBond(t.Source, t.Validator, int64(t.Amount))
}

// Unbond withdraws a bonded amount back to an unbonding queue, releasable
// UnbondingLen epochs after it clears the pipeline (spec.md §4.4).
type Unbond struct {
	Source    model.Alias
	Validator string
	Amount    uint64
	Set       Settings
}

func (t *Unbond) Name() string { return "unbond" }
func (t *Unbond) Summary() string {
	return fmt.Sprintf("unbond %d %s <- %s", t.Amount, t.Source, t.Validator)
}
func (t *Unbond) Settings() *Settings { return &t.Set }

func (t *Unbond) BuildTx(ctx context.Context, env *Env) (*SignedTx, error) {
	return sign(ctx, env, t.Name(), t, t.Set)
}

func (t *Unbond) Execute(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error) {
	return execute(ctx, env, tx)
}

func (t *Unbond) BuildChecks(ctx context.Context, env *Env) ([]check.Check, error) {
	epoch, err := env.Chain.Epoch(ctx)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	preBond, err := queryBond(ctx, env, t.Source, t.Validator, epoch+model.PipelineLen)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	preBalance, err := queryBalance(ctx, env, t.Source, model.NativeDenom)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	return []check.Check{
		&check.BalanceSourceCheck{Alias: t.Source, Pre: preBalance, Denom: model.NativeDenom, Amount: 0},
		&check.BondDecreaseCheck{Alias: t.Source, Validator: t.Validator, PreBond: preBond, Epoch: epoch, Amount: t.Amount},
	}, nil
}

func (t *Unbond) UpdateState(state *model.State) {
	state.ModifyBalanceFee(t.Set.GasPayer, t.Set.GasLimit)
	state.ModifyBond(t.Source, t.Validator, -int64(t.Amount))
}

// Redelegate moves a bonded amount from one validator to another without
// passing through the unbonding queue.
type Redelegate struct {
	Source      model.Alias
	SrcValidator string
	DstValidator string
	Amount       uint64
	Set          Settings
}

func (t *Redelegate) Name() string { return "redelegate" }
func (t *Redelegate) Summary() string {
	return fmt.Sprintf("redelegate %d %s: %s -> %s", t.Amount, t.Source, t.SrcValidator, t.DstValidator)
}
func (t *Redelegate) Settings() *Settings { return &t.Set }

func (t *Redelegate) BuildTx(ctx context.Context, env *Env) (*SignedTx, error) {
	return sign(ctx, env, t.Name(), t, t.Set)
}

func (t *Redelegate) Execute(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error) {
	return execute(ctx, env, tx)
}

func (t *Redelegate) BuildChecks(ctx context.Context, env *Env) ([]check.Check, error) {
	epoch, err := env.Chain.Epoch(ctx)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	preSrcBond, err := queryBond(ctx, env, t.Source, t.SrcValidator, epoch+model.PipelineLen)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	preDstBond, err := queryBond(ctx, env, t.Source, t.DstValidator, epoch+model.PipelineLen)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	preBalance, err := queryBalance(ctx, env, t.Source, model.NativeDenom)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	return []check.Check{
		&check.BalanceSourceCheck{Alias: t.Source, Pre: preBalance, Denom: model.NativeDenom, Amount: 0},
		&check.BondDecreaseCheck{Alias: t.Source, Validator: t.SrcValidator, PreBond: preSrcBond, Epoch: epoch, Amount: t.Amount},
		&check.BondIncreaseCheck{Alias: t.Source, Validator: t.DstValidator, PreBond: preDstBond, Epoch: epoch, Amount: t.Amount},
	}, nil
}

func (t *Redelegate) UpdateState(state *model.State) {
	state.ModifyBalanceFee(t.Set.GasPayer, t.Set.GasLimit)
	state.ModifyBond(t.Source, t.SrcValidator, -int64(t.Amount))
	state.ModifyBond(t.Source, t.DstValidator, int64(t.Amount))
}

// ClaimRewards withdraws accrued staking rewards to the delegator's
// transparent balance. The reward amount is unknowable ahead of execution,
// so its check is the one variant allowed AllowGreater (SPEC_FULL.md §9).
type ClaimRewards struct {
	Source    model.Alias
	Validator string
	Set       Settings
}

func (t *ClaimRewards) Name() string    { return "claim-rewards" }
func (t *ClaimRewards) Summary() string { return fmt.Sprintf("claim-rewards %s from %s", t.Source, t.Validator) }
func (t *ClaimRewards) Settings() *Settings { return &t.Set }

func (t *ClaimRewards) BuildTx(ctx context.Context, env *Env) (*SignedTx, error) {
	return sign(ctx, env, t.Name(), t, t.Set)
}

func (t *ClaimRewards) Execute(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error) {
	return execute(ctx, env, tx)
}

func (t *ClaimRewards) BuildChecks(ctx context.Context, env *Env) ([]check.Check, error) {
	preBalance, err := queryBalance(ctx, env, t.Source, model.NativeDenom)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	return []check.Check{
		&check.BalanceTargetCheck{Alias: t.Source, Pre: preBalance, Denom: model.NativeDenom, Amount: 0, AllowGreater: true},
	}, nil
}

func (t *ClaimRewards) UpdateState(state *model.State) {
	state.ModifyBalanceFee(t.Set.GasPayer, t.Set.GasLimit)
}
