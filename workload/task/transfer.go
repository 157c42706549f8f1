package task

import (
	"context"
	"fmt"

	"namada-resilience-test/workload/check"
	"namada-resilience-test/workload/model"
)

// FaucetTransfer draws native tokens from the reserved faucet identity to
// fund a fresh account. The faucet is never debited and pays no fee
// (spec.md §3, §4.3).
type FaucetTransfer struct {
	Target model.Alias
	Amount uint64
	Set    Settings
}

func (t *FaucetTransfer) Name() string        { return "faucet-transfer" }
func (t *FaucetTransfer) Summary() string     { return fmt.Sprintf("faucet-transfer %d -> %s", t.Amount, t.Target) }
func (t *FaucetTransfer) Settings() *Settings { return &t.Set }

func (t *FaucetTransfer) BuildTx(ctx context.Context, env *Env) (*SignedTx, error) {
	return sign(ctx, env, t.Name(), t, t.Set)
}

func (t *FaucetTransfer) Execute(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error) {
	return execute(ctx, env, tx)
}

func (t *FaucetTransfer) BuildChecks(ctx context.Context, env *Env) ([]check.Check, error) {
	preTarget, err := queryBalance(ctx, env, t.Target, model.NativeDenom)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	return []check.Check{
		&check.BalanceTargetCheck{Alias: t.Target, Pre: preTarget, Denom: model.NativeDenom, Amount: t.Amount},
	}, nil
}

func (t *FaucetTransfer) UpdateState(state *model.State) {
	state.IncreaseBalance(t.Target, t.Amount)
}

// TransparentTransfer moves a native-token amount between two transparent
// accounts, debiting the flat fee from the gas payer unless it is the
// faucet (spec.md §4.4).
type TransparentTransfer struct {
	Source model.Alias
	Target model.Alias
	Denom  model.Alias
	Amount uint64
	Set    Settings
}

func (t *TransparentTransfer) Name() string { return "transparent-transfer" }
func (t *TransparentTransfer) Summary() string {
	return fmt.Sprintf("transfer %d %s: %s -> %s", t.Amount, t.Denom, t.Source, t.Target)
}
func (t *TransparentTransfer) Settings() *Settings { return &t.Set }

func (t *TransparentTransfer) BuildTx(ctx context.Context, env *Env) (*SignedTx, error) {
	return sign(ctx, env, t.Name(), t, t.Set)
}

func (t *TransparentTransfer) Execute(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error) {
	return execute(ctx, env, tx)
}

func (t *TransparentTransfer) BuildChecks(ctx context.Context, env *Env) ([]check.Check, error) {
	preSource, err := queryBalance(ctx, env, t.Source, t.Denom)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	preTarget, err := queryBalance(ctx, env, t.Target, t.Denom)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	checks := []check.Check{
		&check.BalanceSourceCheck{Alias: t.Source, Pre: preSource, Denom: t.Denom, Amount: t.Amount},
		&check.BalanceTargetCheck{Alias: t.Target, Pre: preTarget, Denom: t.Denom, Amount: t.Amount},
	}
	if t.Denom == model.NativeDenom && t.Set.GasPayer != t.Source && t.Set.GasPayer != t.Target {
		prePayer, err := queryBalance(ctx, env, t.Set.GasPayer, model.NativeDenom)
		if err != nil {
			return nil, &Error{Kind: KindBuildCheck, Err: err}
		}
		checks = append(checks, &check.BalanceSourceCheck{Alias: t.Set.GasPayer, Pre: prePayer, Denom: model.NativeDenom, Amount: 0})
	}
	return checks, nil
}

func (t *TransparentTransfer) UpdateState(state *model.State) {
	state.ModifyBalanceFee(t.Set.GasPayer, t.Set.GasLimit)
	state.DecreaseBalance(t.Source, t.Amount)
	state.IncreaseBalance(t.Target, t.Amount)
}
