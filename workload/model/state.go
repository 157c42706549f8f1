package model

import (
	"math/rand"

	"namada-resilience-test/internal/rng"
)

// State is the worker's predict-ahead replica of chain state (spec.md §3,
// §4.3). It is created once per worker, mutated only by its own methods
// after both execution and checks pass, and snapshotted to state-<id>.json
// at quiescent points.
type State struct {
	seed uint64
	rand *rand.Rand

	accounts map[Alias]*Account
	balances map[Alias]uint64
	// ibcBalances is Alias -> denom -> amount for IBC-wrapped tokens.
	ibcBalances map[Alias]map[string]uint64
	// foreignBalances tracks balances held on the counterparty chain, keyed
	// by the alias used there.
	foreignBalances map[Alias]uint64
	// bonds is Alias -> validator address -> amount.
	bonds map[Alias]map[string]uint64
	// unbonds is keyed by (alias, validator, unbond epoch).
	unbonds map[UnbondKey]uint64
	// shielded is keyed by the same identity Alias.Base() resolves to.
	shielded map[Alias]uint64

	proposals ProposalState
	ibcInFlight []IBCPacket
}

// New builds an empty State seeded from seed.
func New(seed uint64) *State {
	return &State{
		seed:            seed,
		rand:            rng.New(seed),
		accounts:        make(map[Alias]*Account),
		balances:        make(map[Alias]uint64),
		ibcBalances:     make(map[Alias]map[string]uint64),
		foreignBalances: make(map[Alias]uint64),
		bonds:           make(map[Alias]map[string]uint64),
		unbonds:         make(map[UnbondKey]uint64),
		shielded:        make(map[Alias]uint64),
		proposals:       newProposalState(),
	}
}

// Rand exposes the embedded RNG. Every sampler in this codebase routes
// through this single instance (spec.md §9 "Global mutable state") rather
// than a process-global source.
func (s *State) Rand() *rand.Rand {
	return s.rand
}

// Seed returns the originating seed value.
func (s *State) Seed() uint64 {
	return s.seed
}

// Clone produces a deep copy for composite steps to build against (spec.md
// §4.5 "A composite step builds against a cloned model"). The clone shares
// no backing maps and runs the same RNG stream so its future draws match
// what the original would have drawn next, without consuming the original's
// stream.
func (s *State) Clone() *State {
	out := New(s.seed)
	out.rand = rng.Restore(s.seed, rng.Draws(s.rand))

	for k, v := range s.accounts {
		cp := *v
		cp.PublicKeys = append([]Alias(nil), v.PublicKeys...)
		out.accounts[k] = &cp
	}
	for k, v := range s.balances {
		out.balances[k] = v
	}
	for k, m := range s.ibcBalances {
		cp := make(map[string]uint64, len(m))
		for d, a := range m {
			cp[d] = a
		}
		out.ibcBalances[k] = cp
	}
	for k, v := range s.foreignBalances {
		out.foreignBalances[k] = v
	}
	for k, m := range s.bonds {
		cp := make(map[string]uint64, len(m))
		for v, a := range m {
			cp[v] = a
		}
		out.bonds[k] = cp
	}
	for k, v := range s.unbonds {
		out.unbonds[k] = v
	}
	for k, v := range s.shielded {
		out.shielded[k] = v
	}
	out.proposals.Ongoing = make(map[uint64]*Proposal, len(s.proposals.Ongoing))
	for id, p := range s.proposals.Ongoing {
		cp := *p
		cp.Votes = make(map[Alias]string, len(p.Votes))
		for a, v := range p.Votes {
			cp.Votes[a] = v
		}
		out.proposals.Ongoing[id] = &cp
	}
	if s.proposals.LastProposalID != nil {
		id := *s.proposals.LastProposalID
		out.proposals.LastProposalID = &id
	}
	out.ibcInFlight = append([]IBCPacket(nil), s.ibcInFlight...)

	return out
}

// MergeFrom copies the accumulated mutations of a clone back into s: every
// delta applied to the clone, and its RNG position, replace s's own. The
// composite steps do not call it; they discard their clone.
func (s *State) MergeFrom(clone *State) {
	s.rand = clone.rand
	s.accounts = clone.accounts
	s.balances = clone.balances
	s.ibcBalances = clone.ibcBalances
	s.foreignBalances = clone.foreignBalances
	s.bonds = clone.bonds
	s.unbonds = clone.unbonds
	s.shielded = clone.shielded
	s.proposals = clone.proposals
	s.ibcInFlight = clone.ibcInFlight
}
