package monitor

import (
	"context"
	"log/slog"
	"time"

	"namada-resilience-test/internal/classify"
	"namada-resilience-test/workload/query"
)

// StatusCheck logs the node's moniker, voting power, and sync state every
// cadence; it is observational and never reports a failed invariant
// (spec.md §4.8).
type StatusCheck struct{}

func (StatusCheck) Name() string           { return "StatusCheck" }
func (StatusCheck) Cadence() time.Duration { return 20 * time.Second }

func (StatusCheck) Check(ctx context.Context, env *Env) (*classify.Outcome, error) {
	var status *query.NodeStatus
	err := env.retry(ctx, "StatusCheck", func(ctx context.Context) error {
		v, err := env.Chain.Status(ctx)
		if err != nil {
			return err
		}
		status = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	if env.Log != nil {
		env.Log.Info("node status",
			slog.String("moniker", status.Moniker),
			slog.Uint64("voting_power", status.VotingPower),
			slog.Bool("catching_up", status.CatchingUp),
		)
	}
	return nil, nil
}
