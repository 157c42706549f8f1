package check_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"namada-resilience-test/internal/retry"
	"namada-resilience-test/workload/check"
	"namada-resilience-test/workload/model"
	"namada-resilience-test/workload/querytest"
)

func fastEnv(fake *querytest.Fake) *check.Env {
	return &check.Env{
		Chain:   fake,
		Resolve: func(a model.Alias) string { return string(a) },
		Retry:   retry.Policy{InitialDelay: 0, MaxDelay: 0, MaxAttempts: 1},
	}
}

func TestBalanceSourceCheckSucceeds(t *testing.T) {
	fake := querytest.NewFake()
	fake.SetBalance("alice", "nam", 900_000_000-1_000_000)

	c := &check.BalanceSourceCheck{Alias: "alice", Pre: 900_000_000, Denom: model.NativeDenom, Amount: 0}
	fees := map[model.Alias]uint64{"alice": 1_000_000}
	err := c.Do(context.Background(), fastEnv(fake), check.Info{}, fees)
	require.NoError(t, err)
}

func TestBalanceSourceCheckFatalOnMismatch(t *testing.T) {
	fake := querytest.NewFake()
	fake.SetBalance("alice", "nam", 999_000_000) // chain disagrees with prediction

	c := &check.BalanceSourceCheck{Alias: "alice", Pre: 900_000_000, Denom: model.NativeDenom, Amount: 0}
	fees := map[model.Alias]uint64{"alice": 1_000_000}
	err := c.Do(context.Background(), fastEnv(fake), check.Info{}, fees)
	require.Error(t, err)
	var stateErr *check.StateError
	require.True(t, errors.As(err, &stateErr))
}

func TestBalanceTargetCheckAllowGreater(t *testing.T) {
	fake := querytest.NewFake()
	fake.SetBalance("bob", "nam", 1_200_000_000) // more than predicted, e.g. claim-rewards

	c := &check.BalanceTargetCheck{Alias: "bob", Pre: 1_000_000_000, Denom: model.NativeDenom, Amount: 100_000_000, AllowGreater: true}
	err := c.Do(context.Background(), fastEnv(fake), check.Info{}, nil)
	require.NoError(t, err)
}

func TestBondIncreaseCheckUsesPipelineLen(t *testing.T) {
	fake := querytest.NewFake()
	fake.SetBond("alice", "val1", 5+model.PipelineLen, 500_000_000)

	c := &check.BondIncreaseCheck{Alias: "alice", Validator: "val1", PreBond: 0, Epoch: 5, Amount: 500_000_000}
	err := c.Do(context.Background(), fastEnv(fake), check.Info{}, nil)
	require.NoError(t, err)
}

func TestBondDecreaseCheckClampsAtZero(t *testing.T) {
	fake := querytest.NewFake()
	fake.SetBond("alice", "val1", 2+model.PipelineLen, 0)

	c := &check.BondDecreaseCheck{Alias: "alice", Validator: "val1", PreBond: 100, Epoch: 2, Amount: 500}
	err := c.Do(context.Background(), fastEnv(fake), check.Info{}, nil)
	require.NoError(t, err)
}

func TestAckIbcTransferCheckRequiresSequence(t *testing.T) {
	fake := querytest.NewFake()
	c := &check.AckIbcTransferCheck{Sender: "alice", Receiver: "cosmos1abc", SrcChannel: "channel-0", DstChannel: "channel-0"}
	err := c.Do(context.Background(), fastEnv(fake), check.Info{ExecutionHeight: 10}, nil)
	require.Error(t, err)
}

func TestAckIbcTransferCheckSucceeds(t *testing.T) {
	fake := querytest.NewFake()
	fake.SetIBCSequence("alice", "cosmos1abc", 10, true, 7)
	fake.IBCAcks["channel-0/channel-0/7"] = true

	c := &check.AckIbcTransferCheck{Sender: "alice", Receiver: "cosmos1abc", SrcChannel: "channel-0", DstChannel: "channel-0"}
	err := c.Do(context.Background(), fastEnv(fake), check.Info{ExecutionHeight: 10}, nil)
	require.NoError(t, err)
}
