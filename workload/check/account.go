package check

import (
	"context"
	"fmt"

	"namada-resilience-test/workload/model"
	"namada-resilience-test/workload/query"
)

// AccountExistCheck asserts an established account exists with the expected
// signer count and threshold (spec.md §4.6).
type AccountExistCheck struct {
	Alias     model.Alias
	Threshold uint64
	Sources   []model.Alias
}

func (c *AccountExistCheck) Name() string { return fmt.Sprintf("AccountExist(%s)", c.Alias) }

func (c *AccountExistCheck) Do(ctx context.Context, env *Env, info Info, fees map[model.Alias]uint64) error {
	var (
		acc   *query.Account
		found bool
	)
	err := env.retry(ctx, c.Name(), func(ctx context.Context) error {
		a, ok, err := env.Chain.AccountInfo(ctx, env.Resolve(c.Alias))
		if err != nil {
			return err
		}
		acc, found = a, ok
		return nil
	})
	if err != nil {
		return fmt.Errorf("check %s: %w", c.Name(), err)
	}
	details := map[string]any{"alias": c.Alias, "execution_height": info.ExecutionHeight, "check_height": info.CheckHeight}
	if !found {
		return &StateError{Msg: fmt.Sprintf("%s: account does not exist", c.Name()), Details: details}
	}
	if acc.Threshold != c.Threshold {
		details["threshold"], details["want_threshold"] = acc.Threshold, c.Threshold
		return &StateError{Msg: fmt.Sprintf("%s: threshold %d, want %d", c.Name(), acc.Threshold, c.Threshold), Details: details}
	}
	if len(acc.PublicKeys) != len(c.Sources) {
		details["public_keys"], details["want_sources"] = len(acc.PublicKeys), len(c.Sources)
		return &StateError{Msg: fmt.Sprintf("%s: %d public keys, want %d", c.Name(), len(acc.PublicKeys), len(c.Sources)), Details: details}
	}
	return nil
}

// IsValidatorAccountCheck asserts the target alias is a validator.
type IsValidatorAccountCheck struct {
	Alias model.Alias
}

func (c *IsValidatorAccountCheck) Name() string { return fmt.Sprintf("IsValidatorAccount(%s)", c.Alias) }

func (c *IsValidatorAccountCheck) Do(ctx context.Context, env *Env, info Info, fees map[model.Alias]uint64) error {
	var isVal bool
	err := env.retry(ctx, c.Name(), func(ctx context.Context) error {
		v, err := env.Chain.IsValidator(ctx, env.Resolve(c.Alias))
		if err != nil {
			return err
		}
		isVal = v
		return nil
	})
	if err != nil {
		return fmt.Errorf("check %s: %w", c.Name(), err)
	}
	if !isVal {
		return &StateError{
			Msg:     fmt.Sprintf("%s: alias is not a validator", c.Name()),
			Details: map[string]any{"alias": c.Alias, "execution_height": info.ExecutionHeight},
		}
	}
	return nil
}

// ValidatorStatusCheck asserts the validator's status at epoch+PipelineLen
// matches the expected one (spec.md §4.6).
type ValidatorStatusCheck struct {
	Alias  model.Alias
	Epoch  uint64
	Status query.ValidatorState
}

func (c *ValidatorStatusCheck) Name() string { return fmt.Sprintf("ValidatorStatus(%s)", c.Alias) }

func (c *ValidatorStatusCheck) Do(ctx context.Context, env *Env, info Info, fees map[model.Alias]uint64) error {
	targetEpoch := c.Epoch + model.PipelineLen
	var current query.ValidatorState
	err := env.retry(ctx, c.Name(), func(ctx context.Context) error {
		v, err := env.Chain.ValidatorState(ctx, env.Resolve(c.Alias), targetEpoch)
		if err != nil {
			return err
		}
		current = v
		return nil
	})
	if err != nil {
		return fmt.Errorf("check %s: %w", c.Name(), err)
	}
	if current != c.Status {
		return &StateError{
			Msg: fmt.Sprintf("%s: status at epoch %d is %d, want %d", c.Name(), targetEpoch, current, c.Status),
			Details: map[string]any{
				"alias": c.Alias, "epoch": targetEpoch, "status": current, "want_status": c.Status,
				"execution_height": info.ExecutionHeight, "check_height": info.CheckHeight,
			},
		}
	}
	return nil
}
