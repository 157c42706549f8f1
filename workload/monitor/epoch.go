package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"namada-resilience-test/internal/classify"
)

// EpochCheck asserts epoch never regresses (spec.md §4.8). Its cadence is
// configurable since the spec leaves the interval unspecified.
type EpochCheck struct {
	CadenceDur time.Duration

	mu        sync.Mutex
	lastEpoch uint64
	seen      bool
}

func (c *EpochCheck) Name() string { return "EpochCheck" }

func (c *EpochCheck) Cadence() time.Duration {
	if c.CadenceDur <= 0 {
		return 15 * time.Second
	}
	return c.CadenceDur
}

func (c *EpochCheck) Check(ctx context.Context, env *Env) (*classify.Outcome, error) {
	var e uint64
	err := env.retry(ctx, c.Name(), func(ctx context.Context) error {
		v, err := env.Chain.Epoch(ctx)
		if err != nil {
			return err
		}
		e = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.seen {
		c.seen = true
		c.lastEpoch = e
		return nil, nil
	}
	if e < c.lastEpoch {
		out := &classify.Outcome{
			Kind: classify.Fatal, Step: c.Name(),
			Err:     fmt.Errorf("epoch went backwards: %d -> %d", c.lastEpoch, e),
			Details: map[string]any{"last_epoch": c.lastEpoch, "epoch": e},
		}
		return out, nil
	}
	c.lastEpoch = e
	return nil, nil
}
