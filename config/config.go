// Package config loads the workload worker's TOML configuration file, per spec.md §6.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"namada-resilience-test/crypto"
)

// Config is the TOML configuration for a single workload worker or invariant
// monitor instance.
type Config struct {
	ID               uint64 `toml:"id"`
	ChainID          string `toml:"chain_id"`
	RPC              string `toml:"rpc"`
	MaspIndexerURL   string `toml:"masp_indexer_url"`
	FaucetSK         string `toml:"faucet_sk"`
	NamadaChannelID  string `toml:"namada_channel_id"`
	CosmosChannelID  string `toml:"cosmos_channel_id"`
	CosmosRPC        string `toml:"cosmos_rpc"`
	CosmosGRPC       string `toml:"cosmos_grpc"`
	CosmosBaseDir    string `toml:"cosmos_base_dir"`
	Seed             uint64 `toml:"seed"`
}

// Load reads the configuration at path. If the file does not exist a default
// is generated and persisted, mirroring the teacher's Load/createDefault pair
// but scoped to the workload harness's fields.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if strings.TrimSpace(cfg.FaucetSK) == "" {
		key, err := crypto.GeneratePrivateKey()
		if err != nil {
			return nil, fmt.Errorf("config: generate faucet key: %w", err)
		}
		cfg.FaucetSK = hex.EncodeToString(key.Bytes())

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if err := toml.NewEncoder(f).Encode(cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// createDefault creates and persists a default configuration file at path.
func createDefault(path string) (*Config, error) {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("config: generate faucet key: %w", err)
	}

	cfg := &Config{
		ID:              1,
		ChainID:         "namada-resilience.local",
		RPC:             "http://127.0.0.1:26657",
		MaspIndexerURL:  "http://127.0.0.1:5000",
		FaucetSK:        hex.EncodeToString(key.Bytes()),
		NamadaChannelID: "channel-0",
		CosmosChannelID: "channel-0",
		CosmosRPC:       "http://127.0.0.1:26658",
		CosmosGRPC:      "127.0.0.1:9090",
		CosmosBaseDir:   "./cosmos-base",
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration carries the minimum fields required
// to run a workload worker against a live chain.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config: nil config")
	}
	if strings.TrimSpace(c.ChainID) == "" {
		return fmt.Errorf("config: chain_id required")
	}
	if strings.TrimSpace(c.RPC) == "" {
		return fmt.Errorf("config: rpc required")
	}
	if strings.TrimSpace(c.MaspIndexerURL) == "" {
		return fmt.Errorf("config: masp_indexer_url required")
	}
	if strings.TrimSpace(c.FaucetSK) == "" {
		return fmt.Errorf("config: faucet_sk required")
	}
	return nil
}
