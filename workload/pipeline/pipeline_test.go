package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"namada-resilience-test/crypto"
	"namada-resilience-test/internal/classify"
	"namada-resilience-test/internal/retry"
	"namada-resilience-test/workload/check"
	"namada-resilience-test/workload/model"
	"namada-resilience-test/workload/pipeline"
	"namada-resilience-test/workload/query"
	"namada-resilience-test/workload/querytest"
	"namada-resilience-test/workload/step"
	"namada-resilience-test/workload/task"
)

// fakeSigner stands in for the real transaction-builder SDK. Signing a
// FaucetTransfer also applies its balance effect to the fake chain, since
// nothing else in this test double simulates execution.
type fakeSigner struct {
	fake    *querytest.Fake
	resolve func(model.Alias) string
}

func (s fakeSigner) Sign(ctx context.Context, name string, params any, settings task.Settings) (*task.SignedTx, error) {
	if ft, ok := params.(*task.FaucetTransfer); ok {
		addr := s.resolve(ft.Target)
		pre, _ := s.fake.Balance(ctx, addr, string(model.NativeDenom))
		s.fake.SetBalance(addr, string(model.NativeDenom), pre+ft.Amount)
	}
	return &task.SignedTx{Bytes: []byte(name), Hash: name}, nil
}

type fakeBroadcaster struct{ height uint64 }

func (f fakeBroadcaster) Broadcast(ctx context.Context, tx *task.SignedTx) (bool, uint64, []string, error) {
	return true, f.height, nil, nil
}

func (f fakeBroadcaster) WaitByHash(ctx context.Context, hash string, deadline time.Duration) (uint64, error) {
	return f.height, nil
}

func newPipeline(t *testing.T, fake *querytest.Fake, sel *step.Selector) *pipeline.Pipeline {
	t.Helper()
	dir := t.TempDir()
	wallet, err := crypto.OpenWallet(dir)
	require.NoError(t, err)
	taskEnv := &task.Env{
		Chain:       fake,
		Shielded:    &query.ShieldedSource{Strategy: query.SyncSourceNode, Node: fake},
		Wallet:      wallet,
		Broadcaster: fakeBroadcaster{height: fake.BlockHeightVal},
		Retry:       retry.Policy{InitialDelay: 0, MaxDelay: 0, MaxAttempts: 1},
	}
	taskEnv.Signer = fakeSigner{fake: fake, resolve: taskEnv.Resolve}
	checkEnv := &check.Env{
		Chain:    fake,
		Shielded: taskEnv.Shielded,
		Resolve:  taskEnv.Resolve,
		Retry:    taskEnv.Retry,
	}
	return &pipeline.Pipeline{
		Env: taskEnv, CheckEnv: checkEnv, Selector: sel, PollInterval: time.Millisecond,
	}
}

func TestRunIterationSucceedsAndUpdatesModel(t *testing.T) {
	fake := querytest.NewFake()
	fake.BlockHeightVal = 10
	sel := step.NewSelector([]step.Step{step.FaucetTransferStep{}}, []float64{1})
	p := newPipeline(t, fake, sel)

	state := model.New(1)
	state.AddImplicitAccount("alice")

	go func() {
		time.Sleep(2 * time.Millisecond)
		fake.BlockHeightVal = 11
	}()

	outcome := p.RunIteration(context.Background(), state)
	require.Equal(t, classify.Success, outcome.Kind)
	require.Greater(t, state.Balance("alice"), uint64(0))
}

func TestRunIterationReportsInvalidStepWhenNothingQualifies(t *testing.T) {
	fake := querytest.NewFake()
	sel := step.NewSelector([]step.Step{step.BondStep{}}, []float64{1})
	p := newPipeline(t, fake, sel)

	state := model.New(2) // no accounts at all
	outcome := p.RunIteration(context.Background(), state)
	require.Equal(t, classify.InvalidStep, outcome.Kind)
}

func TestRunIterationNoCheckSkipsVerificationButStillUpdatesModel(t *testing.T) {
	fake := querytest.NewFake()
	fake.BlockHeightVal = 5
	sel := step.NewSelector([]step.Step{step.FaucetTransferStep{}}, []float64{1})
	p := newPipeline(t, fake, sel)
	p.NoCheck = true

	state := model.New(3)
	state.AddImplicitAccount("bob")

	go func() {
		time.Sleep(2 * time.Millisecond)
		fake.BlockHeightVal = 6
	}()

	outcome := p.RunIteration(context.Background(), state)
	require.Equal(t, classify.Success, outcome.Kind)
	require.Greater(t, state.Balance("bob"), uint64(0))
}
