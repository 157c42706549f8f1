package monitor_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"namada-resilience-test/internal/classify"
	"namada-resilience-test/internal/retry"
	"namada-resilience-test/workload/model"
	"namada-resilience-test/workload/monitor"
	"namada-resilience-test/workload/query"
	"namada-resilience-test/workload/querytest"
)

func testEnv(fake *querytest.Fake) *monitor.Env {
	return &monitor.Env{
		Chain: fake,
		Retry: retry.Policy{InitialDelay: 0, MaxDelay: 0, MaxAttempts: 1},
	}
}

func TestHeightCheckFailsAfterMoreThanThreeStalledPolls(t *testing.T) {
	fake := querytest.NewFake()
	env := testEnv(fake)
	c := &monitor.HeightCheck{}

	fake.BlockHeightVal = 100
	_, err := c.Check(context.Background(), env) // first poll just seeds
	require.NoError(t, err)

	var last *classify.Outcome
	for i := 0; i < 4; i++ {
		out, err := c.Check(context.Background(), env)
		require.NoError(t, err)
		last = out
	}
	require.NotNil(t, last)
	require.Equal(t, classify.Fatal, last.Kind)
}

func TestHeightCheckResetsCounterOnAdvance(t *testing.T) {
	fake := querytest.NewFake()
	env := testEnv(fake)
	c := &monitor.HeightCheck{}

	fake.BlockHeightVal = 1
	_, err := c.Check(context.Background(), env)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		out, err := c.Check(context.Background(), env)
		require.NoError(t, err)
		require.Nil(t, out)
	}

	fake.BlockHeightVal = 2
	out, err := c.Check(context.Background(), env)
	require.NoError(t, err)
	require.Nil(t, out)
}

func TestEpochCheckFailsOnRegression(t *testing.T) {
	fake := querytest.NewFake()
	env := testEnv(fake)
	c := &monitor.EpochCheck{}

	fake.EpochVal = 5
	_, err := c.Check(context.Background(), env)
	require.NoError(t, err)

	fake.EpochVal = 4
	out, err := c.Check(context.Background(), env)
	require.NoError(t, err)
	require.NotNil(t, out)
	require.Equal(t, classify.Fatal, out.Kind)
}

func TestInflationCheckFailsWhenSupplyDropsBelowRejectionFloor(t *testing.T) {
	fake := querytest.NewFake()
	env := testEnv(fake)
	c := &monitor.InflationCheck{}

	fake.Proposals[1] = &query.ProposalInfo{ID: 1, Status: query.ProposalEnded, Result: query.ProposalRejected}
	fake.Supplies[string(model.NativeDenom)] = 10 * model.ProposalDeposit

	_, err := c.Check(context.Background(), env) // seeds lastSupply, retires proposal 1
	require.NoError(t, err)

	fake.Supplies[string(model.NativeDenom)] = 9*model.ProposalDeposit - 1
	out, err := c.Check(context.Background(), env)
	require.NoError(t, err)
	require.NotNil(t, out)
	require.Equal(t, classify.Fatal, out.Kind)
}

func TestInflationCheckAllowsSupplyDropWithinRejectionFloor(t *testing.T) {
	fake := querytest.NewFake()
	env := testEnv(fake)
	c := &monitor.InflationCheck{}

	fake.Proposals[1] = &query.ProposalInfo{ID: 1, Status: query.ProposalEnded, Result: query.ProposalRejected}
	fake.Supplies[string(model.NativeDenom)] = 10 * model.ProposalDeposit

	_, err := c.Check(context.Background(), env)
	require.NoError(t, err)

	fake.Supplies[string(model.NativeDenom)] = 9 * model.ProposalDeposit
	out, err := c.Check(context.Background(), env)
	require.NoError(t, err)
	require.Nil(t, out)
}

func TestMaspIndexerHeightCheckFailsOnRegression(t *testing.T) {
	height := uint64(10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/height", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]uint64{"block_height": height})
	}))
	defer srv.Close()

	env := &monitor.Env{
		MaspIndexerURL: srv.URL,
		Retry:          retry.Policy{InitialDelay: 0, MaxDelay: 0, MaxAttempts: 1},
		HTTPClient:     srv.Client(),
	}
	c := &monitor.MaspIndexerHeightCheck{}

	_, err := c.Check(context.Background(), env)
	require.NoError(t, err)

	height = 9
	out, err := c.Check(context.Background(), env)
	require.NoError(t, err)
	require.NotNil(t, out)
	require.Equal(t, classify.Fatal, out.Kind)
}

func TestMonitorRunStopsOnContextCancel(t *testing.T) {
	fake := querytest.NewFake()
	m := &monitor.Monitor{
		Env:    testEnv(fake),
		Probes: []monitor.Probe{&monitor.HeightCheck{}},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after context cancellation")
	}
}
