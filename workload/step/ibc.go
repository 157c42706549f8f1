package step

import (
	"context"
	"math/rand"

	"namada-resilience-test/internal/classify"
	"namada-resilience-test/internal/rng"
	"namada-resilience-test/workload/model"
	"namada-resilience-test/workload/task"
)

// Channels carries the IBC channel pair a worker was configured with
// (SPEC_FULL.md §6 namada_channel_id/cosmos_channel_id), shared by every IBC
// step so it needn't be threaded through model.State.
type Channels struct {
	SrcChannel string
	DstChannel string
}

// randomCosmosAddress synthesizes a counterparty-chain bech32-shaped
// address for steps that simulate an inbound IBC transfer.
func randomCosmosAddress(r *rand.Rand) string {
	return "cosmos1" + rng.RandomString(r, 38)
}

// IbcTransferSendStep sends tokens from a Namada account to a counterparty
// chain address over the configured IBC channel.
type IbcTransferSendStep struct{ Channels Channels }

func (IbcTransferSendStep) Name() string                   { return "ibc-transfer-send" }
func (IbcTransferSendStep) IsValid(state *model.State) bool { return state.AnyAccountCanMakeTransfer() }
func (IbcTransferSendStep) Assert(o classify.Kind) AssertKind { return defaultAssert(o) }

func (s IbcTransferSendStep) BuildTask(ctx context.Context, state *model.State) ([]task.Task, error) {
	r := state.Rand()
	sender, ok := pickAlias(state, r, hasMinBalance(state, model.MinTransferBalance))
	if !ok {
		return nil, nil
	}
	amount := randomAmount(r, state.Balance(sender)-model.DefaultFee)
	return []task.Task{&task.IbcTransferSend{
		Sender: sender, Receiver: randomCosmosAddress(r),
		SrcChannel: s.Channels.SrcChannel, DstChannel: s.Channels.DstChannel,
		Denom: model.NativeDenom, Amount: amount,
		Set: task.Settings{Signers: []model.Alias{sender}, GasPayer: sender, GasLimit: model.DefaultGasLimit},
	}}, nil
}

// IbcTransferRecvStep simulates an inbound IBC transfer landing on a known
// Namada account, crediting its IBC-wrapped balance.
type IbcTransferRecvStep struct{ Channels Channels }

func (IbcTransferRecvStep) Name() string                   { return "ibc-transfer-recv" }
func (IbcTransferRecvStep) IsValid(state *model.State) bool { return state.AnyAccount() }
func (IbcTransferRecvStep) Assert(o classify.Kind) AssertKind { return defaultAssert(o) }

func (s IbcTransferRecvStep) BuildTask(ctx context.Context, state *model.State) ([]task.Task, error) {
	r := state.Rand()
	target, ok := pickAlias(state, r, func(model.Alias) bool { return true })
	if !ok {
		return nil, nil
	}
	amount := uint64(rng.Between(r, int64(model.NativeScale), int64(model.FaucetAmount/100)))
	return []task.Task{&task.IbcTransferRecv{
		Sender: randomCosmosAddress(r), Target: target,
		SrcChannel: s.Channels.SrcChannel, DstChannel: s.Channels.DstChannel,
		Denom: string(model.NativeDenom), Amount: amount,
	}}, nil
}

// IbcShieldingTransferStep sends tokens from Namada over IBC directly into
// a shielded account on the counterparty leg.
type IbcShieldingTransferStep struct{ Channels Channels }

func (IbcShieldingTransferStep) Name() string { return "ibc-shielding-transfer" }
func (IbcShieldingTransferStep) IsValid(state *model.State) bool {
	return state.AnyAccountCanMakeTransfer() && state.AtLeastAccounts(1)
}
func (IbcShieldingTransferStep) Assert(o classify.Kind) AssertKind { return defaultAssert(o) }

func (s IbcShieldingTransferStep) BuildTask(ctx context.Context, state *model.State) ([]task.Task, error) {
	r := state.Rand()
	sender, ok := pickAlias(state, r, hasMinBalance(state, model.MinTransferBalance))
	if !ok {
		return nil, nil
	}
	target, ok := pickAlias(state, r, func(model.Alias) bool { return true })
	if !ok {
		return nil, nil
	}
	amount := randomAmount(r, state.Balance(sender)-model.DefaultFee)
	return []task.Task{&task.IbcShieldingTransfer{
		Sender: sender, Target: target, Receiver: randomCosmosAddress(r),
		SrcChannel: s.Channels.SrcChannel, DstChannel: s.Channels.DstChannel,
		Amount: amount,
		Set:    task.Settings{Signers: []model.Alias{sender}, GasPayer: sender, GasLimit: model.DefaultGasLimit},
	}}, nil
}

// IbcUnshieldingTransferStep sends tokens from a Namada shielded account
// out over IBC to a counterparty chain address.
type IbcUnshieldingTransferStep struct{ Channels Channels }

func (IbcUnshieldingTransferStep) Name() string { return "ibc-unshielding-transfer" }
func (IbcUnshieldingTransferStep) IsValid(state *model.State) bool {
	_, ok := pickAlias(state, state.Rand(), hasMinShieldedBalance(state, model.NativeScale))
	return ok && state.AnyAccountCanPayFees()
}
func (IbcUnshieldingTransferStep) Assert(o classify.Kind) AssertKind { return defaultAssert(o) }

func (s IbcUnshieldingTransferStep) BuildTask(ctx context.Context, state *model.State) ([]task.Task, error) {
	r := state.Rand()
	source, ok := pickAlias(state, r, hasMinShieldedBalance(state, model.NativeScale))
	if !ok {
		return nil, nil
	}
	payer := chooseGasPayer(state, []model.Alias{source})
	amount := randomAmount(r, state.ShieldedBalance(source))
	return []task.Task{&task.IbcUnshieldingTransfer{
		Source: source, Receiver: randomCosmosAddress(r),
		SrcChannel: s.Channels.SrcChannel, DstChannel: s.Channels.DstChannel,
		Amount: amount,
		Set:    task.Settings{Signers: []model.Alias{source}, GasPayer: payer, GasLimit: model.DefaultGasLimit},
	}}, nil
}
