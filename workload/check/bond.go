package check

import (
	"context"
	"fmt"

	"namada-resilience-test/workload/model"
)

// BondIncreaseCheck asserts a bond at epoch+PipelineLen equals the
// pre-bond plus the moved amount (spec.md §4.6).
type BondIncreaseCheck struct {
	Alias     model.Alias
	Validator string
	PreBond   uint64
	Epoch     uint64
	Amount    uint64
}

func (c *BondIncreaseCheck) Name() string {
	return fmt.Sprintf("BondIncrease(%s,%s)", c.Alias, c.Validator)
}

func (c *BondIncreaseCheck) Do(ctx context.Context, env *Env, info Info, fees map[model.Alias]uint64) error {
	targetEpoch := c.Epoch + model.PipelineLen
	var current uint64
	err := env.retry(ctx, c.Name(), func(ctx context.Context) error {
		v, err := env.Chain.Bond(ctx, env.Resolve(c.Alias), c.Validator, targetEpoch)
		if err != nil {
			return err
		}
		current = v
		return nil
	})
	if err != nil {
		return fmt.Errorf("check %s: %w", c.Name(), err)
	}
	want := c.PreBond + c.Amount
	if current != want {
		return &StateError{
			Msg: fmt.Sprintf("%s: bond at epoch %d is %d, want %d", c.Name(), targetEpoch, current, want),
			Details: map[string]any{
				"alias": c.Alias, "validator": c.Validator, "pre_bond": c.PreBond, "amount": c.Amount,
				"epoch": targetEpoch, "post": current, "want": want,
				"execution_height": info.ExecutionHeight, "check_height": info.CheckHeight,
			},
		}
	}
	return nil
}

// BondDecreaseCheck asserts a bond at epoch+PipelineLen equals the pre-bond
// minus the moved amount (spec.md §4.6).
type BondDecreaseCheck struct {
	Alias     model.Alias
	Validator string
	PreBond   uint64
	Epoch     uint64
	Amount    uint64
}

func (c *BondDecreaseCheck) Name() string {
	return fmt.Sprintf("BondDecrease(%s,%s)", c.Alias, c.Validator)
}

func (c *BondDecreaseCheck) Do(ctx context.Context, env *Env, info Info, fees map[model.Alias]uint64) error {
	targetEpoch := c.Epoch + model.PipelineLen
	var current uint64
	err := env.retry(ctx, c.Name(), func(ctx context.Context) error {
		v, err := env.Chain.Bond(ctx, env.Resolve(c.Alias), c.Validator, targetEpoch)
		if err != nil {
			return err
		}
		current = v
		return nil
	})
	if err != nil {
		return fmt.Errorf("check %s: %w", c.Name(), err)
	}
	var want uint64
	if c.Amount < c.PreBond {
		want = c.PreBond - c.Amount
	}
	if current != want {
		return &StateError{
			Msg: fmt.Sprintf("%s: bond at epoch %d is %d, want %d", c.Name(), targetEpoch, current, want),
			Details: map[string]any{
				"alias": c.Alias, "validator": c.Validator, "pre_bond": c.PreBond, "amount": c.Amount,
				"epoch": targetEpoch, "post": current, "want": want,
				"execution_height": info.ExecutionHeight, "check_height": info.CheckHeight,
			},
		}
	}
	return nil
}
