package task

import (
	"context"
	"fmt"

	"namada-resilience-test/workload/check"
	"namada-resilience-test/workload/model"
	"namada-resilience-test/workload/query"
)

// NewWalletKeyPair generates a fresh implicit account locally. It is the one
// variant with no TaskSettings and no on-chain transaction (spec.md §4.4):
// BuildTx only needs to mint the keypair in the wallet.
type NewWalletKeyPair struct {
	Alias model.Alias
}

func (t *NewWalletKeyPair) Name() string    { return "new-wallet-key-pair" }
func (t *NewWalletKeyPair) Summary() string { return fmt.Sprintf("generate keypair for %s", t.Alias) }
func (t *NewWalletKeyPair) Settings() *Settings { return nil }

func (t *NewWalletKeyPair) BuildTx(ctx context.Context, env *Env) (*SignedTx, error) {
	if _, err := env.Wallet.Address(string(t.Alias)); err != nil {
		return nil, &Error{Kind: KindWallet, Err: err}
	}
	return &SignedTx{}, nil
}

func (t *NewWalletKeyPair) Execute(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error) {
	return ExecResult{}, nil
}

func (t *NewWalletKeyPair) BuildChecks(ctx context.Context, env *Env) ([]check.Check, error) {
	return nil, nil
}

func (t *NewWalletKeyPair) UpdateState(state *model.State) {
	state.AddImplicitAccount(t.Alias)
}

// InitAccount establishes a new multisig account from a set of existing
// implicit accounts' public keys.
type InitAccount struct {
	Alias      model.Alias
	PublicKeys []model.Alias
	Threshold  uint64
	Set        Settings
}

func (t *InitAccount) Name() string        { return "init-account" }
func (t *InitAccount) Summary() string     { return fmt.Sprintf("init-account %s (threshold %d)", t.Alias, t.Threshold) }
func (t *InitAccount) Settings() *Settings { return &t.Set }

func (t *InitAccount) BuildTx(ctx context.Context, env *Env) (*SignedTx, error) {
	return sign(ctx, env, t.Name(), t, t.Set)
}

func (t *InitAccount) Execute(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error) {
	return execute(ctx, env, tx)
}

func (t *InitAccount) BuildChecks(ctx context.Context, env *Env) ([]check.Check, error) {
	preBalance, err := queryBalance(ctx, env, t.Set.GasPayer, model.NativeDenom)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	return []check.Check{
		&check.BalanceSourceCheck{Alias: t.Set.GasPayer, Pre: preBalance, Denom: model.NativeDenom, Amount: 0},
		&check.AccountExistCheck{Alias: t.Alias, Threshold: t.Threshold, Sources: t.PublicKeys},
	}, nil
}

func (t *InitAccount) UpdateState(state *model.State) {
	state.ModifyBalanceFee(t.Set.GasPayer, t.Set.GasLimit)
	state.AddEstablishedAccount(t.Alias, t.PublicKeys, t.Threshold)
}

// UpdateAccount replaces an established account's signer set and threshold.
type UpdateAccount struct {
	Alias      model.Alias
	PublicKeys []model.Alias
	Threshold  uint64
	Set        Settings
}

func (t *UpdateAccount) Name() string        { return "update-account" }
func (t *UpdateAccount) Summary() string     { return fmt.Sprintf("update-account %s", t.Alias) }
func (t *UpdateAccount) Settings() *Settings { return &t.Set }

func (t *UpdateAccount) BuildTx(ctx context.Context, env *Env) (*SignedTx, error) {
	return sign(ctx, env, t.Name(), t, t.Set)
}

func (t *UpdateAccount) Execute(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error) {
	return execute(ctx, env, tx)
}

func (t *UpdateAccount) BuildChecks(ctx context.Context, env *Env) ([]check.Check, error) {
	preBalance, err := queryBalance(ctx, env, t.Set.GasPayer, model.NativeDenom)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	return []check.Check{
		&check.BalanceSourceCheck{Alias: t.Set.GasPayer, Pre: preBalance, Denom: model.NativeDenom, Amount: 0},
		&check.AccountExistCheck{Alias: t.Alias, Threshold: t.Threshold, Sources: t.PublicKeys},
	}, nil
}

func (t *UpdateAccount) UpdateState(state *model.State) {
	state.ModifyBalanceFee(t.Set.GasPayer, t.Set.GasLimit)
	state.UpdateAccount(t.Alias, t.PublicKeys, t.Threshold)
}

// BecomeValidator promotes an established account to a validator.
type BecomeValidator struct {
	Alias model.Alias
	Set   Settings
}

func (t *BecomeValidator) Name() string        { return "become-validator" }
func (t *BecomeValidator) Summary() string     { return fmt.Sprintf("become-validator %s", t.Alias) }
func (t *BecomeValidator) Settings() *Settings { return &t.Set }

func (t *BecomeValidator) BuildTx(ctx context.Context, env *Env) (*SignedTx, error) {
	return sign(ctx, env, t.Name(), t, t.Set)
}

func (t *BecomeValidator) Execute(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error) {
	return execute(ctx, env, tx)
}

func (t *BecomeValidator) BuildChecks(ctx context.Context, env *Env) ([]check.Check, error) {
	preBalance, err := queryBalance(ctx, env, t.Set.GasPayer, model.NativeDenom)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	return []check.Check{
		&check.BalanceSourceCheck{Alias: t.Set.GasPayer, Pre: preBalance, Denom: model.NativeDenom, Amount: 0},
		&check.IsValidatorAccountCheck{Alias: t.Alias},
	}, nil
}

func (t *BecomeValidator) UpdateState(state *model.State) {
	state.ModifyBalanceFee(t.Set.GasPayer, t.Set.GasLimit)
	state.SetEstablishedAsValidator(t.Alias)
}

// ChangeMetadata updates a validator's off-chain metadata (moniker,
// website, ...). It moves no balances beyond the flat fee.
type ChangeMetadata struct {
	Alias model.Alias
	Set   Settings
}

func (t *ChangeMetadata) Name() string        { return "change-metadata" }
func (t *ChangeMetadata) Summary() string     { return fmt.Sprintf("change-metadata %s", t.Alias) }
func (t *ChangeMetadata) Settings() *Settings { return &t.Set }

func (t *ChangeMetadata) BuildTx(ctx context.Context, env *Env) (*SignedTx, error) {
	return sign(ctx, env, t.Name(), t, t.Set)
}

func (t *ChangeMetadata) Execute(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error) {
	return execute(ctx, env, tx)
}

func (t *ChangeMetadata) BuildChecks(ctx context.Context, env *Env) ([]check.Check, error) {
	preBalance, err := queryBalance(ctx, env, t.Set.GasPayer, model.NativeDenom)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	return []check.Check{
		&check.BalanceSourceCheck{Alias: t.Set.GasPayer, Pre: preBalance, Denom: model.NativeDenom, Amount: 0},
	}, nil
}

func (t *ChangeMetadata) UpdateState(state *model.State) {
	state.ModifyBalanceFee(t.Set.GasPayer, t.Set.GasLimit)
}

// ChangeConsensusKey rotates a validator's consensus key.
type ChangeConsensusKey struct {
	Alias model.Alias
	Set   Settings
}

func (t *ChangeConsensusKey) Name() string    { return "change-consensus-key" }
func (t *ChangeConsensusKey) Summary() string { return fmt.Sprintf("change-consensus-key %s", t.Alias) }
func (t *ChangeConsensusKey) Settings() *Settings { return &t.Set }

func (t *ChangeConsensusKey) BuildTx(ctx context.Context, env *Env) (*SignedTx, error) {
	return sign(ctx, env, t.Name(), t, t.Set)
}

func (t *ChangeConsensusKey) Execute(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error) {
	return execute(ctx, env, tx)
}

func (t *ChangeConsensusKey) BuildChecks(ctx context.Context, env *Env) ([]check.Check, error) {
	preBalance, err := queryBalance(ctx, env, t.Set.GasPayer, model.NativeDenom)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	return []check.Check{
		&check.BalanceSourceCheck{Alias: t.Set.GasPayer, Pre: preBalance, Denom: model.NativeDenom, Amount: 0},
	}, nil
}

func (t *ChangeConsensusKey) UpdateState(state *model.State) {
	state.ModifyBalanceFee(t.Set.GasPayer, t.Set.GasLimit)
}

// DeactivateValidator marks an active validator deactivated.
type DeactivateValidator struct {
	Alias model.Alias
	Set   Settings
}

func (t *DeactivateValidator) Name() string    { return "deactivate-validator" }
func (t *DeactivateValidator) Summary() string { return fmt.Sprintf("deactivate-validator %s", t.Alias) }
func (t *DeactivateValidator) Settings() *Settings { return &t.Set }

func (t *DeactivateValidator) BuildTx(ctx context.Context, env *Env) (*SignedTx, error) {
	return sign(ctx, env, t.Name(), t, t.Set)
}

func (t *DeactivateValidator) Execute(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error) {
	return execute(ctx, env, tx)
}

func (t *DeactivateValidator) BuildChecks(ctx context.Context, env *Env) ([]check.Check, error) {
	epoch, err := env.Chain.Epoch(ctx)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	preBalance, err := queryBalance(ctx, env, t.Set.GasPayer, model.NativeDenom)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	return []check.Check{
		&check.BalanceSourceCheck{Alias: t.Set.GasPayer, Pre: preBalance, Denom: model.NativeDenom, Amount: 0},
		&check.ValidatorStatusCheck{Alias: t.Alias, Epoch: epoch, Status: query.ValidatorInactive},
	}, nil
}

func (t *DeactivateValidator) UpdateState(state *model.State) {
	state.ModifyBalanceFee(t.Set.GasPayer, t.Set.GasLimit)
	state.SetValidatorAsDeactivated(t.Alias)
}

// ReactivateValidator marks a deactivated validator active again.
type ReactivateValidator struct {
	Alias model.Alias
	Set   Settings
}

func (t *ReactivateValidator) Name() string    { return "reactivate-validator" }
func (t *ReactivateValidator) Summary() string { return fmt.Sprintf("reactivate-validator %s", t.Alias) }
func (t *ReactivateValidator) Settings() *Settings { return &t.Set }

func (t *ReactivateValidator) BuildTx(ctx context.Context, env *Env) (*SignedTx, error) {
	return sign(ctx, env, t.Name(), t, t.Set)
}

func (t *ReactivateValidator) Execute(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error) {
	return execute(ctx, env, tx)
}

func (t *ReactivateValidator) BuildChecks(ctx context.Context, env *Env) ([]check.Check, error) {
	epoch, err := env.Chain.Epoch(ctx)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	preBalance, err := queryBalance(ctx, env, t.Set.GasPayer, model.NativeDenom)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	return []check.Check{
		&check.BalanceSourceCheck{Alias: t.Set.GasPayer, Pre: preBalance, Denom: model.NativeDenom, Amount: 0},
		&check.ValidatorStatusCheck{Alias: t.Alias, Epoch: epoch, Status: query.ValidatorReactivating},
	}, nil
}

func (t *ReactivateValidator) UpdateState(state *model.State) {
	state.ModifyBalanceFee(t.Set.GasPayer, t.Set.GasLimit)
	state.ReactivateValidator(t.Alias)
}
