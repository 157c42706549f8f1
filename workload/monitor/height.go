package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"namada-resilience-test/internal/classify"
)

// HeightCheck asserts block height never stalls (spec.md §4.8). It fails
// once the height has held its prior value across more than three
// consecutive polls.
type HeightCheck struct {
	mu         sync.Mutex
	lastHeight uint64
	equalCount int
	seen       bool
}

func (c *HeightCheck) Name() string          { return "HeightCheck" }
func (c *HeightCheck) Cadence() time.Duration { return 10 * time.Second }

func (c *HeightCheck) Check(ctx context.Context, env *Env) (*classify.Outcome, error) {
	var h uint64
	err := env.retry(ctx, c.Name(), func(ctx context.Context) error {
		v, err := env.Chain.BlockHeight(ctx)
		if err != nil {
			return err
		}
		h = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.seen {
		c.seen = true
		c.lastHeight = h
		return nil, nil
	}
	if h < c.lastHeight {
		return &classify.Outcome{
			Kind: classify.Fatal, Step: c.Name(),
			Err:     fmt.Errorf("block height went backwards: %d -> %d", c.lastHeight, h),
			Details: map[string]any{"last_height": c.lastHeight, "height": h},
		}, nil
	}
	if h == c.lastHeight {
		c.equalCount++
		if c.equalCount > 3 {
			return &classify.Outcome{
				Kind: classify.Fatal, Step: c.Name(),
				Err:     errors.New("block height didn't change for 3 times"),
				Details: map[string]any{"height": h, "equal_polls": c.equalCount},
			}, nil
		}
		return nil, nil
	}
	c.equalCount = 0
	c.lastHeight = h
	return nil, nil
}
