package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"namada-resilience-test/internal/classify"
)

// MaspIndexerHeightCheck asserts the masp-indexer HTTP service's reported
// height never regresses (spec.md §4.8). Grounded on the teacher's plain
// net/http client idiom (integrations/webhooks/rewards.go) since the
// masp-indexer is an external collaborator service, not something this
// harness generates a client SDK for.
type MaspIndexerHeightCheck struct {
	mu         sync.Mutex
	lastHeight uint64
	seen       bool
}

func (c *MaspIndexerHeightCheck) Name() string          { return "MaspIndexerHeightCheck" }
func (c *MaspIndexerHeightCheck) Cadence() time.Duration { return 12 * time.Second }

type maspHeightResponse struct {
	BlockHeight uint64 `json:"block_height"`
}

func (c *MaspIndexerHeightCheck) Check(ctx context.Context, env *Env) (*classify.Outcome, error) {
	var height uint64
	err := env.retry(ctx, c.Name(), func(ctx context.Context) error {
		v, err := fetchMaspHeight(ctx, env)
		if err != nil {
			return err
		}
		height = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.seen {
		c.seen = true
		c.lastHeight = height
		return nil, nil
	}
	if height < c.lastHeight {
		out := &classify.Outcome{
			Kind: classify.Fatal, Step: c.Name(),
			Err:     fmt.Errorf("masp-indexer height went backwards: %d -> %d", c.lastHeight, height),
			Details: map[string]any{"last_height": c.lastHeight, "height": height},
		}
		c.lastHeight = height
		return out, nil
	}
	c.lastHeight = height
	return nil, nil
}

func fetchMaspHeight(ctx context.Context, env *Env) (uint64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, env.MaspIndexerURL+"/api/v1/height", nil)
	if err != nil {
		return 0, fmt.Errorf("masp-indexer: build request: %w", err)
	}
	resp, err := env.httpClient().Do(req)
	if err != nil {
		return 0, fmt.Errorf("masp-indexer: request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("masp-indexer: unexpected status %d", resp.StatusCode)
	}
	var body maspHeightResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("masp-indexer: decode response: %w", err)
	}
	return body.BlockHeight, nil
}
