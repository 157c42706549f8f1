package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"namada-resilience-test/internal/rng"
)

// snapshot is the on-disk JSON shape of a State, per spec.md §3 "State
// lifecycle" and SPEC_FULL.md §4.14. Fields are exported so the faithful
// zero-tolerance round-trip property (spec.md §8 item 3) holds under
// encoding/json.
type snapshot struct {
	Seed            uint64                       `json:"seed"`
	Draws           uint64                       `json:"draws"`
	Accounts        map[Alias]*Account           `json:"accounts"`
	Balances        map[Alias]uint64             `json:"balances"`
	IBCBalances     map[Alias]map[string]uint64  `json:"ibc_balances"`
	ForeignBalances map[Alias]uint64             `json:"foreign_balances"`
	Bonds           map[Alias]map[string]uint64  `json:"bonds"`
	Unbonds         []unbondEntry                `json:"unbonds"`
	Shielded        map[Alias]uint64             `json:"shielded"`
	Proposals       ProposalState                `json:"proposals"`
	IBCInFlight     []IBCPacket                  `json:"ibc_in_flight"`
}

type unbondEntry struct {
	Key    UnbondKey `json:"key"`
	Amount uint64    `json:"amount"`
}

func (s *State) toSnapshot() snapshot {
	unbonds := make([]unbondEntry, 0, len(s.unbonds))
	for k, v := range s.unbonds {
		unbonds = append(unbonds, unbondEntry{Key: k, Amount: v})
	}
	return snapshot{
		Seed:            s.seed,
		Draws:           rng.Draws(s.rand),
		Accounts:        s.accounts,
		Balances:        s.balances,
		IBCBalances:     s.ibcBalances,
		ForeignBalances: s.foreignBalances,
		Bonds:           s.bonds,
		Unbonds:         unbonds,
		Shielded:        s.shielded,
		Proposals:       s.proposals,
		IBCInFlight:      s.ibcInFlight,
	}
}

func fromSnapshot(snap snapshot) *State {
	s := New(snap.Seed)
	s.rand = rng.Restore(snap.Seed, snap.Draws)
	if snap.Accounts != nil {
		s.accounts = snap.Accounts
	}
	if snap.Balances != nil {
		s.balances = snap.Balances
	}
	if snap.IBCBalances != nil {
		s.ibcBalances = snap.IBCBalances
	}
	if snap.ForeignBalances != nil {
		s.foreignBalances = snap.ForeignBalances
	}
	if snap.Bonds != nil {
		s.bonds = snap.Bonds
	}
	for _, e := range snap.Unbonds {
		s.unbonds[e.Key] = e.Amount
	}
	if snap.Shielded != nil {
		s.shielded = snap.Shielded
	}
	if snap.Proposals.Ongoing != nil {
		s.proposals = snap.Proposals
	}
	s.ibcInFlight = snap.IBCInFlight
	return s
}

// Snapshot writes a pretty-printed JSON snapshot of s to path, via a
// temp-file-then-rename so a crash mid-write never leaves a truncated file
// behind (spec.md §3 "snapshotted to state-<id>.json at quiescent points",
// SPEC_FULL.md §4.14).
func (s *State) Snapshot(path string) error {
	data, err := json.MarshalIndent(s.toSnapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("model: marshal snapshot: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("model: write snapshot %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("model: rename snapshot into place %s: %w", path, err)
	}
	return nil
}

// Load reads a snapshot from path, falling back to a fresh State seeded with
// seed if the file is missing or corrupt, mirroring
// original_source/workload/src/state.rs's from_file (SPEC_FULL.md §4.14).
func Load(path string, seed uint64) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(seed), nil
		}
		return nil, fmt.Errorf("model: read snapshot %s: %w", path, err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return New(seed), nil
	}
	return fromSnapshot(snap), nil
}

// StatePath builds the conventional per-worker snapshot path, spec.md §5
// "the state path is state-<id>.json".
func StatePath(dir string, workerID uint64) string {
	return filepath.Join(dir, fmt.Sprintf("state-%d.json", workerID))
}
