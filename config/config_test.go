package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workload.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "namada-resilience.local", cfg.ChainID)
	require.NotEmpty(t, cfg.FaucetSK)

	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.FaucetSK, reloaded.FaucetSK, "reload must not rotate an existing faucet key")
}

func TestLoadGeneratesMissingFaucetKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workload.toml")
	raw := `id = 7
chain_id = "test-chain"
rpc = "http://localhost:26657"
masp_indexer_url = "http://localhost:5000"
namada_channel_id = "channel-0"
cosmos_channel_id = "channel-0"
cosmos_rpc = "http://localhost:26658"
cosmos_grpc = "localhost:9090"
cosmos_base_dir = "./base"
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotEmpty(t, cfg.FaucetSK)
	require.EqualValues(t, 7, cfg.ID)
}

func TestValidateRejectsMissingFields(t *testing.T) {
	cfg := &Config{}
	require.Error(t, cfg.Validate())

	cfg = &Config{ChainID: "x", RPC: "y", MaspIndexerURL: "z", FaucetSK: "k"}
	require.NoError(t, cfg.Validate())
}
