// Package querytest provides a fake chain-query double for table-driven
// tests against the check, task, step, and pipeline packages, per
// SPEC_FULL.md §8's "no real network" testing note. It is not used by
// production code.
package querytest

import (
	"context"
	"strconv"
	"sync"

	"namada-resilience-test/workload/query"
)

// Fake implements query.ChainQuerier entirely in memory.
type Fake struct {
	mu sync.Mutex

	BlockHeightVal uint64
	EpochVal       uint64
	MaspEpochVal   uint64
	Balances       map[string]uint64 // "address/denom" -> amount
	Bonds          map[string]uint64 // "source/validator/epoch" -> amount
	Accounts       map[string]*query.Account
	Validators     map[string]bool
	ValidatorStates map[string]query.ValidatorState
	RevealedKeys   map[string]bool
	Supplies       map[string]uint64
	Proposals      map[uint64]*query.ProposalInfo
	Votes          map[string]string // "voter/proposalID" -> vote
	IBCSequences   map[string]uint64 // "sender/receiver/height/fromNamada" -> sequence
	IBCAcks        map[string]bool   // "src/dst/sequence" -> success
	IBCRecvs       map[string]bool

	ValidatorPowersVal []query.ValidatorPower
	StatusVal          *query.NodeStatus

	Err error // if set, every call returns this error
}

// NewFake builds an empty Fake with all maps initialized.
func NewFake() *Fake {
	return &Fake{
		Balances:        make(map[string]uint64),
		Bonds:           make(map[string]uint64),
		Accounts:        make(map[string]*query.Account),
		Validators:      make(map[string]bool),
		ValidatorStates: make(map[string]query.ValidatorState),
		RevealedKeys:    make(map[string]bool),
		Supplies:        make(map[string]uint64),
		Proposals:       make(map[uint64]*query.ProposalInfo),
		Votes:           make(map[string]string),
		IBCSequences:    make(map[string]uint64),
		IBCAcks:         make(map[string]bool),
		IBCRecvs:        make(map[string]bool),
	}
}

func key(parts ...any) string {
	s := ""
	for i, p := range parts {
		if i > 0 {
			s += "/"
		}
		s += toStr(p)
	}
	return s
}

func toStr(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

func (f *Fake) BlockHeight(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.BlockHeightVal, f.Err
}

func (f *Fake) Epoch(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.EpochVal, f.Err
}

func (f *Fake) MaspEpoch(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.MaspEpochVal, f.Err
}

func (f *Fake) Balance(ctx context.Context, address, denom string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return 0, f.Err
	}
	return f.Balances[key(address, denom)], nil
}

// SetBalance is a test-setup helper.
func (f *Fake) SetBalance(address, denom string, amount uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Balances[key(address, denom)] = amount
}

func (f *Fake) Bond(ctx context.Context, source, validator string, atEpoch uint64) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return 0, f.Err
	}
	return f.Bonds[key(source, validator, fmtUint(atEpoch))], nil
}

// SetBond is a test-setup helper.
func (f *Fake) SetBond(source, validator string, atEpoch, amount uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Bonds[key(source, validator, fmtUint(atEpoch))] = amount
}

func (f *Fake) AccountInfo(ctx context.Context, address string) (*query.Account, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, false, f.Err
	}
	acc, ok := f.Accounts[address]
	return acc, ok, nil
}

func (f *Fake) IsValidator(ctx context.Context, address string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return false, f.Err
	}
	return f.Validators[address], nil
}

func (f *Fake) ValidatorState(ctx context.Context, address string, epoch uint64) (query.ValidatorState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return query.ValidatorUnknown, f.Err
	}
	return f.ValidatorStates[key(address, fmtUint(epoch))], nil
}

// SetValidatorState is a test-setup helper.
func (f *Fake) SetValidatorState(address string, epoch uint64, state query.ValidatorState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ValidatorStates[key(address, fmtUint(epoch))] = state
}

func (f *Fake) IsPKRevealed(ctx context.Context, address string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return false, f.Err
	}
	return f.RevealedKeys[address], nil
}

func (f *Fake) TotalSupply(ctx context.Context, denom string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return 0, f.Err
	}
	return f.Supplies[denom], nil
}

func (f *Fake) ProposalByID(ctx context.Context, id uint64) (*query.ProposalInfo, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, false, f.Err
	}
	p, ok := f.Proposals[id]
	return p, ok, nil
}

func (f *Fake) VoteResult(ctx context.Context, voter string, proposalID uint64) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", false, f.Err
	}
	v, ok := f.Votes[key(voter, fmtUint(proposalID))]
	return v, ok, nil
}

func (f *Fake) IBCPacketSequence(ctx context.Context, sender, receiver string, blockHeight uint64, fromNamada bool) (uint64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return 0, false, f.Err
	}
	seq, ok := f.IBCSequences[key(sender, receiver, fmtUint(blockHeight), fromNamada)]
	return seq, ok, nil
}

// SetIBCSequence is a test-setup helper.
func (f *Fake) SetIBCSequence(sender, receiver string, blockHeight uint64, fromNamada bool, sequence uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.IBCSequences[key(sender, receiver, fmtUint(blockHeight), fromNamada)] = sequence
}

func (f *Fake) IBCAckSuccess(ctx context.Context, srcChannel, dstChannel string, sequence uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return false, f.Err
	}
	return f.IBCAcks[key(srcChannel, dstChannel, fmtUint(sequence))], nil
}

func (f *Fake) IBCRecvSuccess(ctx context.Context, srcChannel, dstChannel string, sequence uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return false, f.Err
	}
	return f.IBCRecvs[key(srcChannel, dstChannel, fmtUint(sequence))], nil
}

func (f *Fake) ValidatorPowers(ctx context.Context) ([]query.ValidatorPower, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return f.ValidatorPowersVal, nil
}

func (f *Fake) Status(ctx context.Context) (*query.NodeStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if f.StatusVal == nil {
		return &query.NodeStatus{}, nil
	}
	return f.StatusVal, nil
}

func fmtUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}
