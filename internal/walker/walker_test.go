package walker

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDrawConvergesToWeights(t *testing.T) {
	weights := []float64{1, 2, 3, 4}
	table := New(weights)
	r := rand.New(rand.NewSource(42))

	const draws = 200000
	counts := make([]int, len(weights))
	for i := 0; i < draws; i++ {
		counts[table.Draw(r)]++
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}
	for i, w := range weights {
		want := w / total
		got := float64(counts[i]) / float64(draws)
		require.InDelta(t, want, got, 0.01, "weight index %d", i)
	}
}

func TestDrawHandlesDegenerateWeights(t *testing.T) {
	table := New([]float64{0, 0, 0})
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		idx := table.Draw(r)
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, 3)
	}
}

func TestDrawEmptyTable(t *testing.T) {
	table := New(nil)
	r := rand.New(rand.NewSource(1))
	require.Equal(t, -1, table.Draw(r))
}
