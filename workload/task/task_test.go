package task_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"namada-resilience-test/crypto"
	"namada-resilience-test/internal/retry"
	"namada-resilience-test/workload/check"
	"namada-resilience-test/workload/model"
	"namada-resilience-test/workload/query"
	"namada-resilience-test/workload/querytest"
	"namada-resilience-test/workload/task"
)

type fakeSigner struct{}

func (fakeSigner) Sign(ctx context.Context, name string, params any, settings task.Settings) (*task.SignedTx, error) {
	return &task.SignedTx{Bytes: []byte(name), Hash: name}, nil
}

type fakeBroadcaster struct {
	height      uint64
	innerErrors []string
	err         error
}

func (f fakeBroadcaster) Broadcast(ctx context.Context, tx *task.SignedTx) (bool, uint64, []string, error) {
	if f.err != nil {
		return false, 0, nil, f.err
	}
	return true, f.height, f.innerErrors, nil
}

func (f fakeBroadcaster) WaitByHash(ctx context.Context, hash string, deadline time.Duration) (uint64, error) {
	return f.height, nil
}

func newEnv(t *testing.T, fake *querytest.Fake, bc task.Broadcaster) *task.Env {
	dir := t.TempDir()
	wallet, err := crypto.OpenWallet(dir)
	require.NoError(t, err)
	return &task.Env{
		Chain:       fake,
		Shielded:    &query.ShieldedSource{Strategy: query.SyncSourceNode, Node: fake},
		Wallet:      wallet,
		Signer:      fakeSigner{},
		Broadcaster: bc,
		Retry:       retry.Policy{InitialDelay: 0, MaxDelay: 0, MaxAttempts: 1},
	}
}

func TestTransparentTransferBuildChecksAddsThirdPartyPayerCheck(t *testing.T) {
	fake := querytest.NewFake()
	env := newEnv(t, fake, fakeBroadcaster{height: 10})
	fake.SetBalance(env.Resolve("alice"), "nam", 500_000_000)
	fake.SetBalance(env.Resolve("bob"), "nam", 0)
	fake.SetBalance(env.Resolve("payer"), "nam", 100_000_000)

	tr := &task.TransparentTransfer{
		Source: "alice", Target: "bob", Denom: model.NativeDenom, Amount: 10_000_000,
		Set: task.Settings{GasPayer: "payer"},
	}
	checks, err := tr.BuildChecks(context.Background(), env)
	require.NoError(t, err)
	require.Len(t, checks, 3)
}

func TestTransparentTransferNoExtraCheckWhenPayerIsSource(t *testing.T) {
	fake := querytest.NewFake()
	env := newEnv(t, fake, fakeBroadcaster{height: 10})
	fake.SetBalance(env.Resolve("alice"), "nam", 500_000_000)
	fake.SetBalance(env.Resolve("bob"), "nam", 0)

	tr := &task.TransparentTransfer{
		Source: "alice", Target: "bob", Denom: model.NativeDenom, Amount: 10_000_000,
		Set: task.Settings{GasPayer: "alice"},
	}
	checks, err := tr.BuildChecks(context.Background(), env)
	require.NoError(t, err)
	require.Len(t, checks, 2)
}

func TestClaimRewardsAllowsGreaterBalance(t *testing.T) {
	fake := querytest.NewFake()
	env := newEnv(t, fake, fakeBroadcaster{height: 10})
	c := &task.ClaimRewards{Source: "alice", Validator: "val1", Set: task.Settings{GasPayer: "alice"}}
	checks, err := c.BuildChecks(context.Background(), env)
	require.NoError(t, err)
	require.Len(t, checks, 1)
	target, ok := checks[0].(*check.BalanceTargetCheck)
	require.True(t, ok)
	require.True(t, target.AllowGreater)
}

func TestShieldedTransferReclassifiesEpochBoundaryAsAcceptable(t *testing.T) {
	fake := querytest.NewFake()
	env := newEnv(t, fake, fakeBroadcaster{innerErrors: []string{"masp epoch boundary crossed mid-flight"}, height: 42})
	st := &task.ShieldedTransfer{Source: "alice", Target: "bob", Amount: 1_000, Set: task.Settings{GasPayer: "alice"}}
	tx, err := st.BuildTx(context.Background(), env)
	require.NoError(t, err)

	_, err = st.Execute(context.Background(), env, tx)
	require.Error(t, err)
	var taskErr *task.Error
	require.True(t, errors.As(err, &taskErr))
	require.Equal(t, task.KindInvalidShielded, taskErr.Kind)
	require.True(t, taskErr.Acceptable())
}

func TestIbcTransferSendReclassifiesExecutionFailureAsAcceptable(t *testing.T) {
	fake := querytest.NewFake()
	env := newEnv(t, fake, fakeBroadcaster{innerErrors: []string{"packet relay timed out"}, height: 7})
	send := &task.IbcTransferSend{
		Sender: "alice", Receiver: "cosmos1abc", SrcChannel: "channel-0", DstChannel: "channel-0",
		Denom: model.NativeDenom, Amount: 500, Set: task.Settings{GasPayer: "alice"},
	}
	tx, err := send.BuildTx(context.Background(), env)
	require.NoError(t, err)

	_, err = send.Execute(context.Background(), env, tx)
	require.Error(t, err)
	var taskErr *task.Error
	require.True(t, errors.As(err, &taskErr))
	require.Equal(t, task.KindIbcTransfer, taskErr.Kind)
	require.True(t, taskErr.Acceptable())
}

func TestExecuteReportsInsufficientGasSeparatelyFromExecution(t *testing.T) {
	fake := querytest.NewFake()
	env := newEnv(t, fake, fakeBroadcaster{innerErrors: []string{"out of gas"}, height: 3})
	tr := &task.TransparentTransfer{Source: "alice", Target: "bob", Denom: model.NativeDenom, Amount: 1, Set: task.Settings{GasPayer: "alice"}}
	tx, err := tr.BuildTx(context.Background(), env)
	require.NoError(t, err)

	_, err = tr.Execute(context.Background(), env, tx)
	require.Error(t, err)
	var taskErr *task.Error
	require.True(t, errors.As(err, &taskErr))
	require.Equal(t, task.KindInsufficientGas, taskErr.Kind)
	require.False(t, taskErr.Acceptable())
}

func TestBatchCollapsesNetBalanceAndBondChecks(t *testing.T) {
	fake := querytest.NewFake()
	env := newEnv(t, fake, fakeBroadcaster{height: 5})
	fake.SetBalance(env.Resolve("alice"), "nam", 1_000_000_000)
	fake.SetBalance(env.Resolve("bob"), "nam", 0)
	fake.SetBond(env.Resolve("alice"), "val1", model.PipelineLen, 0)

	b := &task.Batch{
		Set: task.Settings{GasPayer: "alice"},
		Tasks: []task.Task{
			&task.TransparentTransfer{Source: "alice", Target: "bob", Denom: model.NativeDenom, Amount: 100_000_000, Set: task.Settings{GasPayer: "alice"}},
			&task.Bond{Source: "alice", Validator: "val1", Amount: 200_000_000, Set: task.Settings{GasPayer: "alice"}},
		},
	}
	checks, err := b.BuildChecks(context.Background(), env)
	require.NoError(t, err)
	// alice: one net BalanceSourceCheck (transfer out + bond), bob: one
	// BalanceTargetCheck, plus one BondIncreaseCheck for alice/val1.
	require.Len(t, checks, 3)

	state := model.New(1)
	state.AddImplicitAccount("alice")
	state.AddImplicitAccount("bob")
	state.IncreaseBalance("alice", 1_000_000_000)
	b.UpdateState(state)
	require.Equal(t, uint64(100_000_000), state.Balance("bob"))
}
