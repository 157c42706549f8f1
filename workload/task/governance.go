package task

import (
	"context"
	"fmt"

	"namada-resilience-test/workload/check"
	"namada-resilience-test/workload/model"
)

// DefaultProposal submits a governance proposal, burning ProposalDeposit
// from the author's balance until the proposal is resolved. ProposalID is
// assigned by the caller from the model's next-available id (spec.md §4.4);
// the harness never learns a chain-assigned id out of band.
type DefaultProposal struct {
	Author     model.Alias
	ProposalID uint64
	Set        Settings
}

func (t *DefaultProposal) Name() string { return "default-proposal" }
func (t *DefaultProposal) Summary() string {
	return fmt.Sprintf("default-proposal %d by %s", t.ProposalID, t.Author)
}
func (t *DefaultProposal) Settings() *Settings { return &t.Set }

func (t *DefaultProposal) BuildTx(ctx context.Context, env *Env) (*SignedTx, error) {
	return sign(ctx, env, t.Name(), t, t.Set)
}

func (t *DefaultProposal) Execute(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error) {
	return execute(ctx, env, tx)
}

func (t *DefaultProposal) BuildChecks(ctx context.Context, env *Env) ([]check.Check, error) {
	preBalance, err := queryBalance(ctx, env, t.Author, model.NativeDenom)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	return []check.Check{
		&check.BalanceSourceCheck{Alias: t.Author, Pre: preBalance, Denom: model.NativeDenom, Amount: model.ProposalDeposit},
	}, nil
}

func (t *DefaultProposal) UpdateState(state *model.State) {
	state.ModifyBalanceFee(t.Set.GasPayer, t.Set.GasLimit)
	state.DecreaseBalance(t.Author, model.ProposalDeposit)
	state.AddProposal(t.ProposalID)
}

// Vote casts voter's vote on an ongoing proposal. It moves no balance
// beyond the flat fee.
type Vote struct {
	Voter      model.Alias
	ProposalID uint64
	VoteOption string
	Set        Settings
}

func (t *Vote) Name() string { return "vote" }
func (t *Vote) Summary() string {
	return fmt.Sprintf("vote %q on %d by %s", t.VoteOption, t.ProposalID, t.Voter)
}
func (t *Vote) Settings() *Settings { return &t.Set }

func (t *Vote) BuildTx(ctx context.Context, env *Env) (*SignedTx, error) {
	return sign(ctx, env, t.Name(), t, t.Set)
}

func (t *Vote) Execute(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error) {
	return execute(ctx, env, tx)
}

func (t *Vote) BuildChecks(ctx context.Context, env *Env) ([]check.Check, error) {
	preBalance, err := queryBalance(ctx, env, t.Voter, model.NativeDenom)
	if err != nil {
		return nil, &Error{Kind: KindBuildCheck, Err: err}
	}
	return []check.Check{
		&check.BalanceSourceCheck{Alias: t.Voter, Pre: preBalance, Denom: model.NativeDenom, Amount: 0},
		&check.VoteResultCheck{Voter: t.Voter, ProposalID: t.ProposalID, Vote: t.VoteOption},
	}, nil
}

func (t *Vote) UpdateState(state *model.State) {
	state.ModifyBalanceFee(t.Set.GasPayer, t.Set.GasLimit)
	state.RecordVote(t.ProposalID, t.Voter, t.VoteOption)
}
