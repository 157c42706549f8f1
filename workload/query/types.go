package query

// Account mirrors the subset of on-chain account state the harness model
// reasons about, per spec.md §3 "Account".
type Account struct {
	Address     string
	PublicKeys  []string
	Threshold   uint64
	IsValidator bool
}

// ValidatorState enumerates the validator lifecycle states spec.md §4.6
// checks against.
type ValidatorState int

const (
	ValidatorUnknown ValidatorState = iota
	ValidatorActive
	ValidatorInactive
	ValidatorReactivating
)

// ProposalStatus enumerates governance proposal lifecycle states per spec.md §3.
type ProposalStatus int

const (
	ProposalPending ProposalStatus = iota
	ProposalVoting
	ProposalEnded
)

// ProposalResult is the terminal classification of an Ended proposal.
type ProposalResult int

const (
	ProposalResultNone ProposalResult = iota
	ProposalAccepted
	ProposalRejected
)

// ProposalInfo is a minimal view of on-chain proposal state.
type ProposalInfo struct {
	ID     uint64
	Status ProposalStatus
	Result ProposalResult
}

// ValidatorPower names a validator's current voting power, used by the
// invariant monitor's VotingPowerCheck (spec.md §4.8).
type ValidatorPower struct {
	Address string
	Power   uint64
}

// NodeStatus mirrors the subset of a node's status endpoint the invariant
// monitor's StatusCheck logs (spec.md §4.8).
type NodeStatus struct {
	Moniker     string
	VotingPower uint64
	CatchingUp  bool
}
