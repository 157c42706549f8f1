// Package retry implements the capped exponential backoff policy (spec.md §4.1)
// that every chain query in the workload harness runs under.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Policy is a capped exponential backoff configuration. Do runs fn once,
// without retrying, under the zero value; Default returns the harness-wide
// policy.
type Policy struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	MaxAttempts  int
}

// Default returns the harness-wide retry policy: 1s initial delay, 10s cap,
// 4 attempts, per spec.md §4.1 and the MAX_RETRY_COUNT/INIT_DELAY_SEC/MAX_DELAY_SEC
// constants in §6.
func Default() Policy {
	return Policy{
		InitialDelay: time.Second,
		MaxDelay:     10 * time.Second,
		MaxAttempts:  4,
	}
}

// Do invokes fn up to p.MaxAttempts times, doubling the delay between attempts
// (capped at p.MaxDelay), logging each retry with the attempt number and the
// classified error. It returns the last error if every attempt failed, or nil
// as soon as fn succeeds. The context is checked between attempts so a
// shutdown signal unblocks a worker waiting on a retry sleep.
func Do(ctx context.Context, log *slog.Logger, op string, p Policy, fn func(ctx context.Context) error) error {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	delay := p.InitialDelay
	if delay <= 0 {
		delay = time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == p.MaxAttempts {
			break
		}
		if log != nil {
			log.Warn("retrying after failed query",
				slog.String("op", op),
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", p.MaxAttempts),
				slog.Duration("delay", delay),
				slog.String("error", lastErr.Error()),
			)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("retry %s: %w", op, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return fmt.Errorf("retry %s: exhausted %d attempts: %w", op, p.MaxAttempts, lastErr)
}
