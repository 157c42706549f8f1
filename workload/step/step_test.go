package step_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"namada-resilience-test/workload/model"
	"namada-resilience-test/workload/step"
	"namada-resilience-test/workload/task"
)

func newFundedState(t *testing.T) *model.State {
	t.Helper()
	s := model.New(1)
	s.AddImplicitAccount("alice")
	s.AddImplicitAccount("bob")
	s.IncreaseBalance("alice", 1_000_000_000)
	return s
}

func TestFaucetTransferStepFundsAnyAccount(t *testing.T) {
	s := model.New(2)
	s.AddImplicitAccount("alice")
	st := step.FaucetTransferStep{}
	require.True(t, st.IsValid(s))

	tasks, err := st.BuildTask(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	ft := tasks[0].(*task.FaucetTransfer)
	require.Equal(t, model.Alias("alice"), ft.Target)
	require.Greater(t, ft.Amount, uint64(0))
}

func TestTransparentTransferStepRequiresMinBalance(t *testing.T) {
	s := model.New(3)
	s.AddImplicitAccount("alice")
	s.AddImplicitAccount("bob")
	tr := step.TransparentTransferStep{}
	require.False(t, tr.IsValid(s))

	s.IncreaseBalance("alice", model.MinTransferBalance)
	require.True(t, tr.IsValid(s))

	tasks, err := tr.BuildTask(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	xfer := tasks[0].(*task.TransparentTransfer)
	require.NotEqual(t, xfer.Source, xfer.Target)
	require.Greater(t, xfer.Amount, uint64(0))
}

func TestBondStepBuildsAgainstKnownValidator(t *testing.T) {
	s := newFundedState(t)
	s.AddEstablishedAccount("val1", []model.Alias{"alice"}, 1)
	s.SetEstablishedAsValidator("val1")

	bs := step.BondStep{}
	require.True(t, bs.IsValid(s))
	tasks, err := bs.BuildTask(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	bond := tasks[0].(*task.Bond)
	require.Equal(t, "val1", bond.Validator)
	require.Greater(t, bond.Amount, uint64(0))
}

func TestClaimRewardsStepRequiresExistingBond(t *testing.T) {
	s := newFundedState(t)
	cr := step.ClaimRewardsStep{}
	require.False(t, cr.IsValid(s))

	s.ModifyBond("alice", "val1", 100_000_000)
	require.True(t, cr.IsValid(s))
}

func TestBatchBondStepDrawsDistinctSourcesAgainstScratchModel(t *testing.T) {
	s := model.New(4)
	for _, a := range []model.Alias{"a1", "a2", "a3"} {
		s.AddImplicitAccount(a)
		s.IncreaseBalance(a, 1_000_000_000)
	}
	s.AddEstablishedAccount("val1", []model.Alias{"a1"}, 1)
	s.SetEstablishedAsValidator("val1")

	bb := step.BatchBondStep{}
	require.True(t, bb.IsValid(s))
	tasks, err := bb.BuildTask(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	batch := tasks[0].(*task.Batch)
	require.LessOrEqual(t, len(batch.Tasks), model.MaxBatchTxNum)
	require.NotEmpty(t, batch.Tasks)

	seen := map[model.Alias]bool{}
	for _, inner := range batch.Tasks {
		bond := inner.(*task.Bond)
		require.False(t, seen[bond.Source], "batch-bond must not reuse a source account")
		seen[bond.Source] = true
	}

	// original model is untouched until the pipeline applies the batch's
	// own UpdateState.
	require.Equal(t, uint64(0), s.Bond("a1", "val1"))
}

func TestSelectorRedrawsOnInvalidStepAndGivesUpBounded(t *testing.T) {
	s := model.New(5) // no accounts: every ordinary step is invalid
	sel := step.NewSelector([]step.Step{step.BondStep{}, step.ClaimRewardsStep{}}, []float64{0.5, 0.5})
	_, ok := sel.Draw(s)
	require.False(t, ok)
}

func TestSelectorDrawsAValidStepWhenOneExists(t *testing.T) {
	s := newFundedState(t)
	sel := step.NewSelector([]step.Step{step.FaucetTransferStep{}}, []float64{1})
	drawn, ok := sel.Draw(s)
	require.True(t, ok)
	require.Equal(t, "faucet-transfer", drawn.Name())
}
