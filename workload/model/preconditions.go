package model

import "sort"

// AnyAccount reports whether at least one account exists.
func (s *State) AnyAccount() bool {
	return len(s.accounts) > 0
}

// AtLeastAccounts reports whether at least n accounts exist.
func (s *State) AtLeastAccounts(n int) bool {
	return len(s.accounts) >= n
}

// MinNImplicitAccounts reports whether at least n implicit accounts exist.
func (s *State) MinNImplicitAccounts(n int) bool {
	return len(s.implicitAccounts()) >= n
}

func (s *State) implicitAccounts() []Alias {
	var out []Alias
	for alias, acc := range s.accounts {
		if acc.Kind == Implicit {
			out = append(out, alias)
		}
	}
	return out
}

// AnyAccountWithMinBalance reports whether any account's native balance is
// at least b.
func (s *State) AnyAccountWithMinBalance(b uint64) bool {
	return len(s.accountsWithMinBalance(b)) > 0
}

// MinNAccountWithMinBalance reports whether at least n distinct accounts
// each hold a native balance of at least b.
func (s *State) MinNAccountWithMinBalance(n int, b uint64) bool {
	return len(s.accountsWithMinBalance(b)) >= n
}

func (s *State) accountsWithMinBalance(b uint64) []Alias {
	var out []Alias
	for alias := range s.accounts {
		if s.balances[alias] >= b {
			out = append(out, alias)
		}
	}
	return out
}

// AnyAccountCanPayFees reports whether any account holds enough native
// balance to cover DefaultFee.
func (s *State) AnyAccountCanPayFees() bool {
	return s.AnyAccountWithMinBalance(DefaultFee)
}

// AnyAccountCanMakeTransfer reports whether any account holds enough native
// balance to satisfy MinTransferBalance.
func (s *State) AnyAccountCanMakeTransfer() bool {
	return s.AnyAccountWithMinBalance(MinTransferBalance)
}

// AnyBond reports whether at least one bond exists.
func (s *State) AnyBond() bool {
	for _, byValidator := range s.bonds {
		for _, amt := range byValidator {
			if amt > 0 {
				return true
			}
		}
	}
	return false
}

// MinNValidators reports whether at least n accounts are active validators.
func (s *State) MinNValidators(n int) bool {
	count := 0
	for _, acc := range s.accounts {
		if acc.Kind == Validator {
			count++
		}
	}
	return count >= n
}

// Accounts returns all known aliases in deterministic order, for sampling
// and snapshot iteration.
func (s *State) Accounts() []Alias {
	out := make([]Alias, 0, len(s.accounts))
	for alias := range s.accounts {
		out = append(out, alias)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Account looks up an account by alias.
func (s *State) Account(alias Alias) (*Account, bool) {
	acc, ok := s.accounts[alias]
	return acc, ok
}

// Validators returns all accounts currently acting as validators.
func (s *State) Validators() []Alias {
	var out []Alias
	for alias, acc := range s.accounts {
		if acc.Kind == Validator {
			out = append(out, alias)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Balance returns the native balance for alias.
func (s *State) Balance(alias Alias) uint64 {
	return s.balances[alias.Base()]
}

// IBCBalance returns the IBC-wrapped balance for alias and denom.
func (s *State) IBCBalance(alias Alias, denom string) uint64 {
	return s.ibcBalances[alias.Base()][denom]
}

// ForeignBalance returns the counterparty-chain balance for alias.
func (s *State) ForeignBalance(alias Alias) uint64 {
	return s.foreignBalances[alias.Base()]
}

// Bond returns the bonded amount for (alias, validator).
func (s *State) Bond(alias Alias, validator string) uint64 {
	return s.bonds[alias.Base()][validator]
}

// ShieldedBalance returns the shielded balance for alias.
func (s *State) ShieldedBalance(alias Alias) uint64 {
	return s.shielded[alias.Base()]
}

// Proposals exposes the governance state for the invariant monitor.
func (s *State) Proposals() *ProposalState {
	return &s.proposals
}

// IBCInFlight returns the currently tracked in-flight packets.
func (s *State) IBCInFlight() []IBCPacket {
	return s.ibcInFlight
}
