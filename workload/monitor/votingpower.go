package monitor

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"namada-resilience-test/internal/classify"
)

// VotingPowerCheck sums every validator's voting power, computes the
// two-thirds threshold, and records whether the top-power validator plus
// any single other validator would clear it (spec.md §4.8
// "two_nodes_have_two_third"). This is observational, not a failed
// invariant: a concentrated validator set is a liveness risk to note, not
// by itself a chain-state divergence.
type VotingPowerCheck struct{}

func (VotingPowerCheck) Name() string           { return "VotingPowerCheck" }
func (VotingPowerCheck) Cadence() time.Duration { return 20 * time.Second }

func (VotingPowerCheck) Check(ctx context.Context, env *Env) (*classify.Outcome, error) {
	var powers []uint64
	err := env.retry(ctx, "VotingPowerCheck", func(ctx context.Context) error {
		vs, err := env.Chain.ValidatorPowers(ctx)
		if err != nil {
			return err
		}
		powers = powers[:0]
		for _, v := range vs {
			powers = append(powers, v.Power)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(powers) == 0 {
		return nil, nil
	}

	sort.Slice(powers, func(i, j int) bool { return powers[i] > powers[j] })

	var total uint64
	for _, p := range powers {
		total += p
	}
	threshold := (total*2 + 2) / 3 // ceil(2*total/3)

	twoNodes := false
	if len(powers) >= 2 {
		for _, other := range powers[1:] {
			if powers[0]+other >= threshold {
				twoNodes = true
				break
			}
		}
	}

	if env.Log != nil {
		env.Log.Info("voting power distribution",
			slog.Uint64("total", total),
			slog.Uint64("threshold", threshold),
			slog.Bool("two_nodes_have_two_third", twoNodes),
		)
	}
	return nil, nil
}
