package task

import (
	"context"
	"errors"
	"fmt"

	"namada-resilience-test/workload/check"
	"namada-resilience-test/workload/model"
)

// executeIbc wraps execute for the IBC-transfer-shaped variants. A broadcast
// or execution failure here is usually the counterparty relay losing a race
// against this worker's timeout window rather than a real bug, so it is
// reclassified IbcTransfer (spec.md §4.9, §7) and treated as acceptable.
// InsufficientGas is left alone since it is never a relay race.
func executeIbc(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error) {
	res, err := execute(ctx, env, tx)
	if err == nil {
		return res, nil
	}
	var taskErr *Error
	if errors.As(err, &taskErr) && (taskErr.Kind == KindExecution || taskErr.Kind == KindBroadcast) {
		return res, &Error{Kind: KindIbcTransfer, Height: res.Height, Err: taskErr.Err}
	}
	return res, err
}

// IbcTransferSend sends tokens from a Namada account to a counterparty
// chain address over an IBC channel.
type IbcTransferSend struct {
	Sender     model.Alias
	Receiver   string
	SrcChannel string
	DstChannel string
	Denom      model.Alias
	Amount     uint64
	Set        Settings
}

func (t *IbcTransferSend) Name() string { return "ibc-transfer-send" }
func (t *IbcTransferSend) Summary() string {
	return fmt.Sprintf("ibc-transfer-send %d %s: %s -> %s", t.Amount, t.Denom, t.Sender, t.Receiver)
}
func (t *IbcTransferSend) Settings() *Settings { return &t.Set }

func (t *IbcTransferSend) BuildTx(ctx context.Context, env *Env) (*SignedTx, error) {
	return sign(ctx, env, t.Name(), t, t.Set)
}

func (t *IbcTransferSend) Execute(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error) {
	return executeIbc(ctx, env, tx)
}

func (t *IbcTransferSend) BuildChecks(ctx context.Context, env *Env) ([]check.Check, error) {
	preBalance, err := queryBalance(ctx, env, t.Sender, t.Denom)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	checks := []check.Check{
		&check.BalanceSourceCheck{Alias: t.Sender, Pre: preBalance, Denom: t.Denom, Amount: t.Amount},
		&check.AckIbcTransferCheck{Sender: t.Sender, Receiver: t.Receiver, SrcChannel: t.SrcChannel, DstChannel: t.DstChannel},
	}
	return checks, nil
}

func (t *IbcTransferSend) UpdateState(state *model.State) {
	state.ModifyBalanceFee(t.Set.GasPayer, t.Set.GasLimit)
	state.DecreaseBalance(t.Sender, t.Amount)
}

// IbcTransferRecv records tokens received over IBC from a counterparty
// chain address into a Namada account.
type IbcTransferRecv struct {
	Sender     string
	Target     model.Alias
	SrcChannel string
	DstChannel string
	Denom      string
	Amount     uint64
	Set        Settings
}

func (t *IbcTransferRecv) Name() string { return "ibc-transfer-recv" }
func (t *IbcTransferRecv) Summary() string {
	return fmt.Sprintf("ibc-transfer-recv %d %s: %s -> %s", t.Amount, t.Denom, t.Sender, t.Target)
}
func (t *IbcTransferRecv) Settings() *Settings { return &t.Set }

func (t *IbcTransferRecv) BuildTx(ctx context.Context, env *Env) (*SignedTx, error) {
	return sign(ctx, env, t.Name(), t, t.Set)
}

func (t *IbcTransferRecv) Execute(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error) {
	return executeIbc(ctx, env, tx)
}

func (t *IbcTransferRecv) BuildChecks(ctx context.Context, env *Env) ([]check.Check, error) {
	return []check.Check{
		&check.RecvIbcPacketCheck{Sender: t.Sender, Target: t.Target, SrcChannel: t.SrcChannel, DstChannel: t.DstChannel},
	}, nil
}

func (t *IbcTransferRecv) UpdateState(state *model.State) {
	state.IncreaseIBCBalance(t.Target, t.Denom, t.Amount)
}

// IbcShieldingTransfer sends tokens from Namada over IBC directly into a
// shielded account on the counterparty leg, combining the IBC relay race
// and the masp-epoch race into a single acceptable-failure surface.
type IbcShieldingTransfer struct {
	Sender     model.Alias
	Target     model.Alias
	Receiver   string
	SrcChannel string
	DstChannel string
	Amount     uint64
	Set        Settings
}

func (t *IbcShieldingTransfer) Name() string { return "ibc-shielding-transfer" }
func (t *IbcShieldingTransfer) Summary() string {
	return fmt.Sprintf("ibc-shielding-transfer %d: %s -> %s", t.Amount, t.Sender, t.Target)
}
func (t *IbcShieldingTransfer) Settings() *Settings { return &t.Set }

func (t *IbcShieldingTransfer) BuildTx(ctx context.Context, env *Env) (*SignedTx, error) {
	return sign(ctx, env, t.Name(), t, t.Set)
}

func (t *IbcShieldingTransfer) Execute(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error) {
	res, err := executeShielded(ctx, env, tx, !t.Set.GasPayer.IsFaucet())
	if err == nil {
		return res, nil
	}
	var taskErr *Error
	if errors.As(err, &taskErr) && taskErr.Kind == KindExecution {
		return res, &Error{Kind: KindIbcTransfer, Height: res.Height, Err: taskErr.Err}
	}
	return res, err
}

func (t *IbcShieldingTransfer) BuildChecks(ctx context.Context, env *Env) ([]check.Check, error) {
	preBalance, err := queryBalance(ctx, env, t.Sender, model.NativeDenom)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	preTarget, err := queryShieldedBalance(ctx, env, t.Target)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	return []check.Check{
		&check.BalanceSourceCheck{Alias: t.Sender, Pre: preBalance, Denom: model.NativeDenom, Amount: t.Amount},
		&check.BalanceShieldedTargetCheck{Alias: t.Target, Pre: preTarget, Amount: t.Amount},
		&check.AckIbcTransferCheck{Sender: t.Sender, Receiver: t.Receiver, SrcChannel: t.SrcChannel, DstChannel: t.DstChannel},
	}, nil
}

func (t *IbcShieldingTransfer) UpdateState(state *model.State) {
	state.ModifyBalanceFee(t.Set.GasPayer, t.Set.GasLimit)
	state.DecreaseBalance(t.Sender, t.Amount)
	state.ModifyShieldedTransfer(t.Target, int64(t.Amount))
}

// IbcUnshieldingTransfer sends tokens from a Namada shielded account out
// over IBC to a counterparty chain address.
type IbcUnshieldingTransfer struct {
	Source     model.Alias
	Receiver   string
	SrcChannel string
	DstChannel string
	Amount     uint64
	Set        Settings
}

func (t *IbcUnshieldingTransfer) Name() string { return "ibc-unshielding-transfer" }
func (t *IbcUnshieldingTransfer) Summary() string {
	return fmt.Sprintf("ibc-unshielding-transfer %d: %s -> %s", t.Amount, t.Source, t.Receiver)
}
func (t *IbcUnshieldingTransfer) Settings() *Settings { return &t.Set }

func (t *IbcUnshieldingTransfer) BuildTx(ctx context.Context, env *Env) (*SignedTx, error) {
	return sign(ctx, env, t.Name(), t, t.Set)
}

func (t *IbcUnshieldingTransfer) Execute(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error) {
	res, err := executeShielded(ctx, env, tx, !t.Set.GasPayer.IsFaucet())
	if err == nil {
		return res, nil
	}
	var taskErr *Error
	if errors.As(err, &taskErr) && taskErr.Kind == KindExecution {
		return res, &Error{Kind: KindIbcTransfer, Height: res.Height, Err: taskErr.Err}
	}
	return res, err
}

func (t *IbcUnshieldingTransfer) BuildChecks(ctx context.Context, env *Env) ([]check.Check, error) {
	preSource, err := queryShieldedBalance(ctx, env, t.Source)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	return []check.Check{
		&check.BalanceShieldedSourceCheck{Alias: t.Source, Pre: preSource, Amount: t.Amount},
		&check.AckIbcTransferCheck{Sender: t.Source, Receiver: t.Receiver, SrcChannel: t.SrcChannel, DstChannel: t.DstChannel},
	}, nil
}

func (t *IbcUnshieldingTransfer) UpdateState(state *model.State) {
	state.ModifyBalanceFee(t.Set.GasPayer, t.Set.GasLimit)
	state.ModifyShieldedTransfer(t.Source, -int64(t.Amount))
}
