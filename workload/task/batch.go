package task

import (
	"context"
	"fmt"

	"namada-resilience-test/workload/check"
	"namada-resilience-test/workload/model"
)

// Batch merges several inner tasks into one atomic on-chain transaction
// (spec.md §4.4.1). Inner tasks are built and checked with_fee=false: the
// batch's own gas payer is debited exactly once, and overlapping per-alias
// or per-(alias,validator) checks collapse into a single net-effect check
// rather than running once per inner task.
type Batch struct {
	Tasks []Task
	Set   Settings
}

func (t *Batch) Name() string { return "batch" }
func (t *Batch) Summary() string {
	return fmt.Sprintf("batch of %d inner tasks", len(t.Tasks))
}
func (t *Batch) Settings() *Settings { return &t.Set }

// batchParams is what the signer sees: each inner task, keyed by its own
// name, alongside the batch's own settings.
type batchParams struct {
	Inner []Task
}

func (t *Batch) BuildTx(ctx context.Context, env *Env) (*SignedTx, error) {
	return sign(ctx, env, t.Name(), batchParams{Inner: t.Tasks}, t.Set)
}

func (t *Batch) Execute(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error) {
	return execute(ctx, env, tx)
}

// balanceKey groups balance checks by the identity and denom they move.
type balanceKey struct {
	Alias model.Alias
	Denom model.Alias
}

type balanceAccum struct {
	pre          uint64
	delta        int64
	allowGreater bool
}

type bondKey struct {
	Alias     model.Alias
	Validator string
}

type bondAccum struct {
	pre   uint64
	epoch uint64
	delta int64
}

type shieldedAccum struct {
	pre   uint64
	delta int64
}

// BuildChecks runs every inner task's own BuildChecks, then collapses
// per-alias balance, bond, and shielded checks into single net-effect
// checks (spec.md §4.4.1). Checks that don't move a quantity this collapse
// understands (account/validator/vote/ibc checks) pass through unchanged.
func (t *Batch) BuildChecks(ctx context.Context, env *Env) ([]check.Check, error) {
	balances := make(map[balanceKey]*balanceAccum)
	bonds := make(map[bondKey]*bondAccum)
	shielded := make(map[model.Alias]*shieldedAccum)
	var passthrough []check.Check

	for _, inner := range t.Tasks {
		checks, err := inner.BuildChecks(ctx, env)
		if err != nil {
			return nil, err
		}
		for _, c := range checks {
			switch v := c.(type) {
			case *check.BalanceSourceCheck:
				k := balanceKey{Alias: v.Alias, Denom: v.Denom}
				a := balances[k]
				if a == nil {
					a = &balanceAccum{pre: v.Pre}
					balances[k] = a
				}
				a.delta -= int64(v.Amount)
			case *check.BalanceTargetCheck:
				k := balanceKey{Alias: v.Alias, Denom: v.Denom}
				a := balances[k]
				if a == nil {
					a = &balanceAccum{pre: v.Pre}
					balances[k] = a
				}
				a.delta += int64(v.Amount)
				a.allowGreater = a.allowGreater || v.AllowGreater
			case *check.BondIncreaseCheck:
				k := bondKey{Alias: v.Alias, Validator: v.Validator}
				a := bonds[k]
				if a == nil {
					a = &bondAccum{pre: v.PreBond, epoch: v.Epoch}
					bonds[k] = a
				}
				a.delta += int64(v.Amount)
			case *check.BondDecreaseCheck:
				k := bondKey{Alias: v.Alias, Validator: v.Validator}
				a := bonds[k]
				if a == nil {
					a = &bondAccum{pre: v.PreBond, epoch: v.Epoch}
					bonds[k] = a
				}
				a.delta -= int64(v.Amount)
			case *check.BalanceShieldedSourceCheck:
				a := shielded[v.Alias]
				if a == nil {
					a = &shieldedAccum{pre: v.Pre}
					shielded[v.Alias] = a
				}
				a.delta -= int64(v.Amount)
			case *check.BalanceShieldedTargetCheck:
				a := shielded[v.Alias]
				if a == nil {
					a = &shieldedAccum{pre: v.Pre}
					shielded[v.Alias] = a
				}
				a.delta += int64(v.Amount)
			default:
				passthrough = append(passthrough, c)
			}
		}
	}

	result := make([]check.Check, 0, len(balances)+len(bonds)+len(shielded)+len(passthrough))
	for k, a := range balances {
		if a.delta == 0 {
			continue
		}
		if a.delta > 0 {
			result = append(result, &check.BalanceTargetCheck{Alias: k.Alias, Pre: a.pre, Denom: k.Denom, Amount: uint64(a.delta), AllowGreater: a.allowGreater})
		} else {
			result = append(result, &check.BalanceSourceCheck{Alias: k.Alias, Pre: a.pre, Denom: k.Denom, Amount: uint64(-a.delta)})
		}
	}
	for k, a := range bonds {
		if a.delta == 0 {
			continue
		}
		if a.delta > 0 {
			result = append(result, &check.BondIncreaseCheck{Alias: k.Alias, Validator: k.Validator, PreBond: a.pre, Epoch: a.epoch, Amount: uint64(a.delta)})
		} else {
			result = append(result, &check.BondDecreaseCheck{Alias: k.Alias, Validator: k.Validator, PreBond: a.pre, Epoch: a.epoch, Amount: uint64(-a.delta)})
		}
	}
	for alias, a := range shielded {
		if a.delta == 0 {
			continue
		}
		if a.delta > 0 {
			result = append(result, &check.BalanceShieldedTargetCheck{Alias: alias, Pre: a.pre, Amount: uint64(a.delta)})
		} else {
			result = append(result, &check.BalanceShieldedSourceCheck{Alias: alias, Pre: a.pre, Amount: uint64(-a.delta)})
		}
	}
	result = append(result, passthrough...)
	return result, nil
}

// UpdateState debits the batch's own fee once, then folds in every inner
// task's balance/bond/shielded effect without letting each one debit its
// own fee a second time (spec.md §4.4.1 with_fee=false).
func (t *Batch) UpdateState(state *model.State) {
	state.ModifyBalanceFee(t.Set.GasPayer, t.Set.GasLimit)
	for _, inner := range t.Tasks {
		applyFeelessEffect(inner, state)
	}
}

// applyFeelessEffect mirrors a task's UpdateState balance/bond/shielded
// mutation without its own ModifyBalanceFee call, for use inside a Batch.
func applyFeelessEffect(t Task, state *model.State) {
	switch v := t.(type) {
	case *FaucetTransfer:
		state.IncreaseBalance(v.Target, v.Amount)
	case *TransparentTransfer:
		state.DecreaseBalance(v.Source, v.Amount)
		state.IncreaseBalance(v.Target, v.Amount)
	case *Bond:
		state.DecreaseBalance(v.Source, v.Amount)
		state.ModifyBond(v.Source, v.Validator, int64(v.Amount))
	case *Unbond:
		state.ModifyBond(v.Source, v.Validator, -int64(v.Amount))
	case *Redelegate:
		state.ModifyBond(v.Source, v.SrcValidator, -int64(v.Amount))
		state.ModifyBond(v.Source, v.DstValidator, int64(v.Amount))
	case *ClaimRewards:
		// reward amount is unknown ahead of execution; nothing to predict.
	case *ShieldedTransfer:
		state.ModifyShieldedTransfer(v.Source, -int64(v.Amount))
		state.ModifyShieldedTransfer(v.Target, int64(v.Amount))
	case *Shielding:
		state.DecreaseBalance(v.Source, v.Amount)
		state.ModifyShieldedTransfer(v.Target, int64(v.Amount))
	case *Unshielding:
		state.ModifyUnshielding(v.Source, v.Target, v.Amount)
	default:
		t.UpdateState(state)
	}
}
