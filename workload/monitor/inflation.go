package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"namada-resilience-test/internal/classify"
	"namada-resilience-test/workload/model"
	"namada-resilience-test/workload/query"
)

// InflationCheck asserts the native-token supply never drops by more than
// what rejected governance proposals forfeit (spec.md §4.8). It walks
// proposal ids forward from the last one it has seen, tracking any still
// "ongoing" until they end, and retires each once it resolves.
type InflationCheck struct {
	mu             sync.Mutex
	lastProposalID uint64
	ongoing        map[uint64]bool
	lastSupply     uint64
	seenSupply     bool
}

func (c *InflationCheck) Name() string          { return "InflationCheck" }
func (c *InflationCheck) Cadence() time.Duration { return 20 * time.Second }

func (c *InflationCheck) Check(ctx context.Context, env *Env) (*classify.Outcome, error) {
	c.mu.Lock()
	if c.ongoing == nil {
		c.ongoing = make(map[uint64]bool)
	}
	c.mu.Unlock()

	if err := c.discoverProposals(ctx, env); err != nil {
		return nil, err
	}
	rejectedThisTick, err := c.retireEnded(ctx, env)
	if err != nil {
		return nil, err
	}

	var supply uint64
	err = env.retry(ctx, c.Name(), func(ctx context.Context) error {
		v, err := env.Chain.TotalSupply(ctx, string(model.NativeDenom))
		if err != nil {
			return err
		}
		supply = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.seenSupply {
		c.seenSupply = true
		c.lastSupply = supply
		return nil, nil
	}

	floor := int64(c.lastSupply) - int64(rejectedThisTick)*int64(model.ProposalDeposit)
	if floor < 0 {
		floor = 0
	}
	if int64(supply) < floor {
		out := &classify.Outcome{
			Kind: classify.Fatal, Step: c.Name(),
			Err: fmt.Errorf("supply %d fell below floor %d (last_supply=%d rejected_in_window=%d)",
				supply, floor, c.lastSupply, rejectedThisTick),
			Details: map[string]any{
				"supply": supply, "floor": floor, "last_supply": c.lastSupply, "rejected_in_window": rejectedThisTick,
			},
		}
		c.lastSupply = supply
		return out, nil
	}
	c.lastSupply = supply
	return nil, nil
}

// discoverProposals walks ids from lastProposalID+1 until a missing id is
// found, adding every existing id to the ongoing set.
func (c *InflationCheck) discoverProposals(ctx context.Context, env *Env) error {
	for {
		c.mu.Lock()
		next := c.lastProposalID + 1
		c.mu.Unlock()

		var info *query.ProposalInfo
		var found bool
		err := env.retry(ctx, c.Name(), func(ctx context.Context) error {
			v, ok, err := env.Chain.ProposalByID(ctx, next)
			if err != nil {
				return err
			}
			info, found = v, ok
			return nil
		})
		if err != nil {
			return err
		}
		if !found {
			return nil
		}

		c.mu.Lock()
		c.ongoing[info.ID] = true
		c.lastProposalID = next
		c.mu.Unlock()
	}
}

// retireEnded checks every ongoing proposal and drops the ones that have
// ended, returning how many of those ended Rejected in this tick alone. The
// count is local to the call, not a running lifetime total, so the floor in
// Check only ever discounts the rejections observed in the current window.
func (c *InflationCheck) retireEnded(ctx context.Context, env *Env) (uint64, error) {
	c.mu.Lock()
	ids := make([]uint64, 0, len(c.ongoing))
	for id := range c.ongoing {
		ids = append(ids, id)
	}
	c.mu.Unlock()

	var rejectedThisTick uint64
	for _, id := range ids {
		var info *query.ProposalInfo
		var found bool
		err := env.retry(ctx, c.Name(), func(ctx context.Context) error {
			v, ok, err := env.Chain.ProposalByID(ctx, id)
			if err != nil {
				return err
			}
			info, found = v, ok
			return nil
		})
		if err != nil {
			return 0, err
		}
		if !found || info.Status != query.ProposalEnded {
			continue
		}
		c.mu.Lock()
		if info.Result == query.ProposalRejected {
			rejectedThisTick++
		}
		delete(c.ongoing, id)
		c.mu.Unlock()
	}
	return rejectedThisTick, nil
}
