package check

import (
	"context"
	"fmt"

	"namada-resilience-test/workload/model"
)

// VoteResultCheck asserts the chain records the expected vote for voter on
// proposalID (spec.md §4.6).
type VoteResultCheck struct {
	Voter      model.Alias
	ProposalID uint64
	Vote       string
}

func (c *VoteResultCheck) Name() string { return fmt.Sprintf("VoteResult(%s,%d)", c.Voter, c.ProposalID) }

func (c *VoteResultCheck) Do(ctx context.Context, env *Env, info Info, fees map[model.Alias]uint64) error {
	var (
		vote  string
		found bool
	)
	err := env.retry(ctx, c.Name(), func(ctx context.Context) error {
		v, ok, err := env.Chain.VoteResult(ctx, env.Resolve(c.Voter), c.ProposalID)
		if err != nil {
			return err
		}
		vote, found = v, ok
		return nil
	})
	if err != nil {
		return fmt.Errorf("check %s: %w", c.Name(), err)
	}
	details := map[string]any{
		"voter": c.Voter, "proposal_id": c.ProposalID, "want_vote": c.Vote,
		"execution_height": info.ExecutionHeight, "check_height": info.CheckHeight,
	}
	if !found {
		return &StateError{Msg: fmt.Sprintf("%s: no vote recorded", c.Name()), Details: details}
	}
	if vote != c.Vote {
		details["vote"] = vote
		return &StateError{Msg: fmt.Sprintf("%s: vote is %q, want %q", c.Name(), vote, c.Vote), Details: details}
	}
	return nil
}
