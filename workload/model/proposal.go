package model

// ProposalResult classifies a concluded governance proposal.
type ProposalResult int

const (
	ProposalResultNone ProposalResult = iota
	ProposalAccepted
	ProposalRejected
)

// ProposalStatus tracks a proposal's lifecycle stage.
type ProposalStatus int

const (
	ProposalPending ProposalStatus = iota
	ProposalVoting
	ProposalEnded
)

// Proposal is the model's view of a governance proposal, tracked from
// creation until State.RetireProposal removes it.
type Proposal struct {
	ID     uint64         `json:"id"`
	Status ProposalStatus `json:"status"`
	Result ProposalResult `json:"result"`
	Votes  map[Alias]string `json:"votes"`
}

// ProposalState is the model's governance bookkeeping (spec.md §3).
type ProposalState struct {
	Ongoing        map[uint64]*Proposal `json:"ongoing"`
	LastProposalID *uint64              `json:"last_proposal_id,omitempty"`
}

func newProposalState() ProposalState {
	return ProposalState{Ongoing: make(map[uint64]*Proposal)}
}
