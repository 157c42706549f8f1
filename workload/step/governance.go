package step

import (
	"context"
	"sort"

	"namada-resilience-test/internal/classify"
	"namada-resilience-test/internal/rng"
	"namada-resilience-test/workload/model"
	"namada-resilience-test/workload/task"
)

// voteOptions are the three governance vote choices a voter may cast.
var voteOptions = []string{"yes", "no", "abstain"}

// DefaultProposalStep submits a governance proposal, burning
// model.ProposalDeposit from the author's balance.
type DefaultProposalStep struct{}

func (DefaultProposalStep) Name() string { return "default-proposal" }
func (DefaultProposalStep) IsValid(state *model.State) bool {
	_, ok := pickAlias(state, state.Rand(), hasMinBalance(state, model.ProposalDeposit+model.DefaultFee))
	return ok
}
func (DefaultProposalStep) Assert(o classify.Kind) AssertKind { return defaultAssert(o) }

func (DefaultProposalStep) BuildTask(ctx context.Context, state *model.State) ([]task.Task, error) {
	r := state.Rand()
	author, ok := pickAlias(state, r, hasMinBalance(state, model.ProposalDeposit+model.DefaultFee))
	if !ok {
		return nil, nil
	}
	var nextID uint64
	if last := state.Proposals().LastProposalID; last != nil {
		nextID = *last + 1
	}
	return []task.Task{&task.DefaultProposal{
		Author: author, ProposalID: nextID,
		Set: task.Settings{Signers: []model.Alias{author}, GasPayer: author, GasLimit: model.DefaultGasLimit},
	}}, nil
}

// VoteStep casts a vote on an ongoing proposal from a funded account.
type VoteStep struct{}

func (VoteStep) Name() string { return "vote" }
func (VoteStep) IsValid(state *model.State) bool {
	return len(state.Proposals().Ongoing) > 0 && state.AnyAccountCanPayFees()
}
func (VoteStep) Assert(o classify.Kind) AssertKind { return defaultAssert(o) }

func (VoteStep) BuildTask(ctx context.Context, state *model.State) ([]task.Task, error) {
	r := state.Rand()
	ongoing := state.Proposals().Ongoing
	if len(ongoing) == 0 {
		return nil, nil
	}
	ids := make([]uint64, 0, len(ongoing))
	for id := range ongoing {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	proposalID := ids[rng.Between(r, 0, int64(len(ids)-1))]
	voter, ok := pickAlias(state, r, hasMinBalance(state, model.DefaultFee))
	if !ok {
		return nil, nil
	}
	vote := voteOptions[rng.Between(r, 0, int64(len(voteOptions)-1))]
	return []task.Task{&task.Vote{
		Voter: voter, ProposalID: proposalID, VoteOption: vote,
		Set: task.Settings{Signers: []model.Alias{voter}, GasPayer: voter, GasLimit: model.DefaultGasLimit},
	}}, nil
}
