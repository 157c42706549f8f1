package task

import (
	"context"
	"fmt"

	"namada-resilience-test/workload/check"
	"namada-resilience-test/workload/model"
)

// ShieldedTransfer moves tokens between two shielded identities. It uses
// executeShielded since an epoch boundary crossed mid-flight is a
// pre-categorized race, not a bug (spec.md §4.4, §4.9).
type ShieldedTransfer struct {
	Source model.Alias
	Target model.Alias
	Amount uint64
	Set    Settings
}

func (t *ShieldedTransfer) Name() string { return "shielded-transfer" }
func (t *ShieldedTransfer) Summary() string {
	return fmt.Sprintf("shielded-transfer %d: %s -> %s", t.Amount, t.Source, t.Target)
}
func (t *ShieldedTransfer) Settings() *Settings { return &t.Set }

func (t *ShieldedTransfer) BuildTx(ctx context.Context, env *Env) (*SignedTx, error) {
	return sign(ctx, env, t.Name(), t, t.Set)
}

func (t *ShieldedTransfer) Execute(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error) {
	feePaid := !t.Set.GasPayer.IsFaucet()
	return executeShielded(ctx, env, tx, feePaid)
}

func (t *ShieldedTransfer) BuildChecks(ctx context.Context, env *Env) ([]check.Check, error) {
	preSource, err := queryShieldedBalance(ctx, env, t.Source)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	preTarget, err := queryShieldedBalance(ctx, env, t.Target)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	checks := []check.Check{
		&check.BalanceShieldedSourceCheck{Alias: t.Source, Pre: preSource, Amount: t.Amount},
		&check.BalanceShieldedTargetCheck{Alias: t.Target, Pre: preTarget, Amount: t.Amount},
	}
	if t.Set.GasPayer != t.Source && t.Set.GasPayer != t.Target {
		prePayer, err := queryBalance(ctx, env, t.Set.GasPayer, model.NativeDenom)
		if err != nil {
			return nil, &Error{Kind: KindBuildCheck, Err: err}
		}
		checks = append(checks, &check.BalanceSourceCheck{Alias: t.Set.GasPayer, Pre: prePayer, Denom: model.NativeDenom, Amount: 0})
	}
	return checks, nil
}

func (t *ShieldedTransfer) UpdateState(state *model.State) {
	state.ModifyBalanceFee(t.Set.GasPayer, t.Set.GasLimit)
	state.ModifyShieldedTransfer(t.Source, -int64(t.Amount))
	state.ModifyShieldedTransfer(t.Target, int64(t.Amount))
}

// Shielding moves tokens from a transparent account into a shielded one.
type Shielding struct {
	Source model.Alias
	Target model.Alias
	Amount uint64
	Set    Settings
}

func (t *Shielding) Name() string    { return "shielding" }
func (t *Shielding) Summary() string { return fmt.Sprintf("shielding %d: %s -> %s", t.Amount, t.Source, t.Target) }
func (t *Shielding) Settings() *Settings { return &t.Set }

func (t *Shielding) BuildTx(ctx context.Context, env *Env) (*SignedTx, error) {
	return sign(ctx, env, t.Name(), t, t.Set)
}

func (t *Shielding) Execute(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error) {
	feePaid := !t.Set.GasPayer.IsFaucet()
	return executeShielded(ctx, env, tx, feePaid)
}

func (t *Shielding) BuildChecks(ctx context.Context, env *Env) ([]check.Check, error) {
	preSource, err := queryBalance(ctx, env, t.Source, model.NativeDenom)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	preTarget, err := queryShieldedBalance(ctx, env, t.Target)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	return []check.Check{
		&check.BalanceSourceCheck{Alias: t.Source, Pre: preSource, Denom: model.NativeDenom, Amount: t.Amount},
		&check.BalanceShieldedTargetCheck{Alias: t.Target, Pre: preTarget, Amount: t.Amount},
	}, nil
}

func (t *Shielding) UpdateState(state *model.State) {
	state.ModifyBalanceFee(t.Set.GasPayer, t.Set.GasLimit)
	state.DecreaseBalance(t.Source, t.Amount)
	state.ModifyShieldedTransfer(t.Target, int64(t.Amount))
}

// Unshielding moves tokens from a shielded account back to a transparent
// one.
type Unshielding struct {
	Source model.Alias
	Target model.Alias
	Amount uint64
	Set    Settings
}

func (t *Unshielding) Name() string { return "unshielding" }
func (t *Unshielding) Summary() string {
	return fmt.Sprintf("unshielding %d: %s -> %s", t.Amount, t.Source, t.Target)
}
func (t *Unshielding) Settings() *Settings { return &t.Set }

func (t *Unshielding) BuildTx(ctx context.Context, env *Env) (*SignedTx, error) {
	return sign(ctx, env, t.Name(), t, t.Set)
}

func (t *Unshielding) Execute(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error) {
	feePaid := !t.Set.GasPayer.IsFaucet()
	return executeShielded(ctx, env, tx, feePaid)
}

func (t *Unshielding) BuildChecks(ctx context.Context, env *Env) ([]check.Check, error) {
	preSource, err := queryShieldedBalance(ctx, env, t.Source)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	preTarget, err := queryBalance(ctx, env, t.Target, model.NativeDenom)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	return []check.Check{
		&check.BalanceShieldedSourceCheck{Alias: t.Source, Pre: preSource, Amount: t.Amount},
		&check.BalanceTargetCheck{Alias: t.Target, Pre: preTarget, Denom: model.NativeDenom, Amount: t.Amount},
	}, nil
}

func (t *Unshielding) UpdateState(state *model.State) {
	state.ModifyBalanceFee(t.Set.GasPayer, t.Set.GasLimit)
	state.ModifyUnshielding(t.Source, t.Target, t.Amount)
}
