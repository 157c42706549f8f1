package model

// Mutation methods are the only way to change model state (spec.md §4.3);
// each mirrors exactly one task kind and is applied from a Task's
// update_state equivalent only after both execution and checks pass.

// AddImplicitAccount registers a freshly generated implicit account. Its
// public-keys set contains exactly its own alias (spec.md §3).
func (s *State) AddImplicitAccount(alias Alias) {
	s.accounts[alias] = &Account{
		Alias:      alias,
		PublicKeys: []Alias{alias},
		Threshold:  1,
		Kind:       Implicit,
	}
}

// AddEstablishedAccount registers an established account created by
// InitAccount, with the given signer set and multisig threshold.
func (s *State) AddEstablishedAccount(alias Alias, publicKeys []Alias, threshold uint64) {
	s.accounts[alias] = &Account{
		Alias:      alias,
		PublicKeys: append([]Alias(nil), publicKeys...),
		Threshold:  threshold,
		Kind:       Established,
	}
}

// SetEstablishedAsValidator promotes an Established account to Validator.
func (s *State) SetEstablishedAsValidator(alias Alias) {
	if acc, ok := s.accounts[alias]; ok {
		acc.Kind = Validator
	}
}

// SetValidatorAsDeactivated marks a Validator as DeactivatedValidator.
func (s *State) SetValidatorAsDeactivated(alias Alias) {
	if acc, ok := s.accounts[alias]; ok {
		acc.Kind = DeactivatedValidator
	}
}

// ReactivateValidator marks a DeactivatedValidator as Validator again.
func (s *State) ReactivateValidator(alias Alias) {
	if acc, ok := s.accounts[alias]; ok {
		acc.Kind = Validator
	}
}

// RemoveDeactivatedValidator drops a deactivated validator's account record
// once it has fully exited.
func (s *State) RemoveDeactivatedValidator(alias Alias) {
	delete(s.accounts, alias)
}

// UpdateAccount replaces an established account's signer set and threshold.
func (s *State) UpdateAccount(alias Alias, publicKeys []Alias, threshold uint64) {
	if acc, ok := s.accounts[alias]; ok {
		acc.PublicKeys = append([]Alias(nil), publicKeys...)
		acc.Threshold = threshold
	}
}

// IncreaseBalance credits alias's native balance.
func (s *State) IncreaseBalance(alias Alias, amount uint64) {
	base := alias.Base()
	s.balances[base] += amount
}

// DecreaseBalance debits alias's native balance. The faucet is infinite by
// convention (spec.md §3 invariants) and is never debited.
func (s *State) DecreaseBalance(alias Alias, amount uint64) {
	if alias.IsFaucet() {
		return
	}
	base := alias.Base()
	if s.balances[base] < amount {
		s.balances[base] = 0
		return
	}
	s.balances[base] -= amount
}

// ModifyBalanceFee debits DefaultFee from payer unless payer is faucet. The
// gas limit affects on-chain consumption but never the model's debit, per
// spec.md §4.3's fee debit rule.
func (s *State) ModifyBalanceFee(payer Alias, gasLimit uint64) {
	_ = gasLimit
	s.DecreaseBalance(payer, DefaultFee)
}

// ModifyBond applies a signed delta to (alias, validator)'s bonded amount.
// A negative delta below zero clamps to zero rather than underflowing.
func (s *State) ModifyBond(alias Alias, validator string, delta int64) {
	base := alias.Base()
	byValidator, ok := s.bonds[base]
	if !ok {
		byValidator = make(map[string]uint64)
		s.bonds[base] = byValidator
	}
	current := byValidator[validator]
	if delta >= 0 {
		byValidator[validator] = current + uint64(delta)
		return
	}
	dec := uint64(-delta)
	if dec > current {
		byValidator[validator] = 0
		return
	}
	byValidator[validator] = current - dec
}

// ModifyUnbonds records a pending unbond withdrawal, keyed by
// (alias, validator, unbond_epoch).
func (s *State) ModifyUnbonds(alias Alias, validator string, unbondEpoch, amount uint64) {
	key := UnbondKey{Alias: alias.Base(), Validator: validator, UnbondEpoch: unbondEpoch}
	s.unbonds[key] += amount
}

// ModifyShieldedTransfer applies a signed delta to a shielded identity's
// balance (keyed the same way as Alias.Base()).
func (s *State) ModifyShieldedTransfer(alias Alias, delta int64) {
	base := alias.Base()
	current := s.shielded[base]
	if delta >= 0 {
		s.shielded[base] = current + uint64(delta)
		return
	}
	dec := uint64(-delta)
	if dec > current {
		s.shielded[base] = 0
		return
	}
	s.shielded[base] = current - dec
}

// ModifyUnshielding moves amount from a shielded balance to a transparent
// balance, as the Unshielding task does on the chain.
func (s *State) ModifyUnshielding(from, to Alias, amount uint64) {
	s.ModifyShieldedTransfer(from, -int64(amount))
	s.IncreaseBalance(to, amount)
}

// IncreaseForeignBalance credits a balance tracked on the counterparty chain.
func (s *State) IncreaseForeignBalance(alias Alias, amount uint64) {
	s.foreignBalances[alias.Base()] += amount
}

// DecreaseIBCBalance debits an IBC-wrapped token balance.
func (s *State) DecreaseIBCBalance(alias Alias, denom string, amount uint64) {
	base := alias.Base()
	m, ok := s.ibcBalances[base]
	if !ok {
		return
	}
	if m[denom] < amount {
		m[denom] = 0
		return
	}
	m[denom] -= amount
}

// IncreaseIBCBalance credits an IBC-wrapped token balance.
func (s *State) IncreaseIBCBalance(alias Alias, denom string, amount uint64) {
	base := alias.Base()
	m, ok := s.ibcBalances[base]
	if !ok {
		m = make(map[string]uint64)
		s.ibcBalances[base] = m
	}
	m[denom] += amount
}

// RecordIBCPacket tracks a newly sent IBC packet awaiting acknowledgement.
func (s *State) RecordIBCPacket(pkt IBCPacket) {
	s.ibcInFlight = append(s.ibcInFlight, pkt)
}

// ResolveIBCPacket drops a packet once it has been acknowledged or timed out.
func (s *State) ResolveIBCPacket(srcChannel, dstChannel string, sequence uint64) {
	out := s.ibcInFlight[:0]
	for _, pkt := range s.ibcInFlight {
		if pkt.SrcChannel == srcChannel && pkt.DstChannel == dstChannel && pkt.Sequence == sequence {
			continue
		}
		out = append(out, pkt)
	}
	s.ibcInFlight = out
}

// AddProposal registers a newly submitted governance proposal and advances
// last_proposal_id.
func (s *State) AddProposal(id uint64) {
	s.proposals.Ongoing[id] = &Proposal{ID: id, Status: ProposalPending, Votes: make(map[Alias]string)}
	last := id
	s.proposals.LastProposalID = &last
}

// RecordVote records voter's vote on proposalID.
func (s *State) RecordVote(proposalID uint64, voter Alias, vote string) {
	if p, ok := s.proposals.Ongoing[proposalID]; ok {
		p.Votes[voter] = vote
	}
}

// SetProposalStatus updates a proposal's lifecycle status.
func (s *State) SetProposalStatus(id uint64, status ProposalStatus) {
	if p, ok := s.proposals.Ongoing[id]; ok {
		p.Status = status
	}
}

// RetireProposal removes a concluded proposal from the ongoing set after
// recording its result. The inflation probe keeps its own ongoing set and
// does not call it.
func (s *State) RetireProposal(id uint64, result ProposalResult) {
	if p, ok := s.proposals.Ongoing[id]; ok {
		p.Status = ProposalEnded
		p.Result = result
	}
	delete(s.proposals.Ongoing, id)
}
