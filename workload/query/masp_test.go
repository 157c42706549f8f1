package query

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeChainQuerier struct {
	ChainQuerier
	maspEpoch uint64
	balance   uint64
}

func (f *fakeChainQuerier) MaspEpoch(ctx context.Context) (uint64, error) { return f.maspEpoch, nil }
func (f *fakeChainQuerier) Balance(ctx context.Context, address, denom string) (uint64, error) {
	return f.balance, nil
}

func TestShieldedSourceIndexerOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/height", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]uint64{"block_height": 42})
	}))
	defer srv.Close()

	src := &ShieldedSource{
		Strategy: SyncSourceIndexer,
		Indexer:  NewMaspIndexerClient(srv.URL),
		Node:     &fakeChainQuerier{maspEpoch: 1},
	}
	h, err := src.MaspEpoch(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(42), h)
}

func TestShieldedSourceFallsBackToNodeWhenIndexerDown(t *testing.T) {
	src := &ShieldedSource{
		Strategy: SyncSourceIndexerThenNode,
		Indexer:  NewMaspIndexerClient("http://127.0.0.1:1"), // nothing listening
		Node:     &fakeChainQuerier{maspEpoch: 7},
	}
	h, err := src.MaspEpoch(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(7), h)
}

func TestShieldedSourceNodeOnly(t *testing.T) {
	src := &ShieldedSource{
		Strategy: SyncSourceNode,
		Node:     &fakeChainQuerier{balance: 100},
	}
	bal, err := src.ShieldedBalance(context.Background(), "payment-addr", "nam")
	require.NoError(t, err)
	require.Equal(t, uint64(100), bal)
}

func TestMaspIndexerClientHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewMaspIndexerClient(srv.URL)
	require.True(t, c.Healthy(context.Background()))
}

func TestMaspIndexerClientUnhealthyOnUnreachable(t *testing.T) {
	c := NewMaspIndexerClient("http://127.0.0.1:1")
	require.False(t, c.Healthy(context.Background()))
}
