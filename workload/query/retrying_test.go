package query

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"namada-resilience-test/internal/retry"
)

type flakyQuerier struct {
	fakeChainQuerier
	failures int
	calls    int
}

func (f *flakyQuerier) BlockHeight(ctx context.Context) (uint64, error) {
	f.calls++
	if f.calls <= f.failures {
		return 0, errors.New("not ready")
	}
	return 99, nil
}

func TestWithRetryRecoversFromTransientFailure(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	inner := &flakyQuerier{failures: 2}
	q := WithRetry(inner, retry.Policy{InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, MaxAttempts: 4}, log)

	h, err := q.BlockHeight(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(99), h)
	require.Equal(t, 3, inner.calls)
}

func TestWithRetryPropagatesExhaustedError(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	inner := &flakyQuerier{failures: 10}
	q := WithRetry(inner, retry.Policy{InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, MaxAttempts: 3}, log)

	_, err := q.BlockHeight(context.Background())
	require.Error(t, err)
	require.Equal(t, 3, inner.calls)
}
