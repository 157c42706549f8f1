package query

import (
	"context"
	"log/slog"

	"namada-resilience-test/internal/retry"
)

// retryingChainQuerier wraps a ChainQuerier so every method runs under the
// harness's capped exponential backoff policy (spec.md §4.1): "every query in
// C2 runs under this policy."
type retryingChainQuerier struct {
	inner  ChainQuerier
	policy retry.Policy
	log    *slog.Logger
}

// WithRetry decorates a ChainQuerier so all its reads retry under policy.
func WithRetry(inner ChainQuerier, policy retry.Policy, log *slog.Logger) ChainQuerier {
	return &retryingChainQuerier{inner: inner, policy: policy, log: log}
}

func (r *retryingChainQuerier) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, r.log, op, r.policy, fn)
}

func (r *retryingChainQuerier) BlockHeight(ctx context.Context) (uint64, error) {
	var out uint64
	err := r.do(ctx, "BlockHeight", func(ctx context.Context) (err error) {
		out, err = r.inner.BlockHeight(ctx)
		return err
	})
	return out, err
}

func (r *retryingChainQuerier) Epoch(ctx context.Context) (uint64, error) {
	var out uint64
	err := r.do(ctx, "Epoch", func(ctx context.Context) (err error) {
		out, err = r.inner.Epoch(ctx)
		return err
	})
	return out, err
}

func (r *retryingChainQuerier) MaspEpoch(ctx context.Context) (uint64, error) {
	var out uint64
	err := r.do(ctx, "MaspEpoch", func(ctx context.Context) (err error) {
		out, err = r.inner.MaspEpoch(ctx)
		return err
	})
	return out, err
}

func (r *retryingChainQuerier) Balance(ctx context.Context, address, denom string) (uint64, error) {
	var out uint64
	err := r.do(ctx, "Balance", func(ctx context.Context) (err error) {
		out, err = r.inner.Balance(ctx, address, denom)
		return err
	})
	return out, err
}

func (r *retryingChainQuerier) Bond(ctx context.Context, source, validator string, atEpoch uint64) (uint64, error) {
	var out uint64
	err := r.do(ctx, "Bond", func(ctx context.Context) (err error) {
		out, err = r.inner.Bond(ctx, source, validator, atEpoch)
		return err
	})
	return out, err
}

func (r *retryingChainQuerier) AccountInfo(ctx context.Context, address string) (*Account, bool, error) {
	var (
		acc *Account
		ok  bool
	)
	err := r.do(ctx, "AccountInfo", func(ctx context.Context) (err error) {
		acc, ok, err = r.inner.AccountInfo(ctx, address)
		return err
	})
	return acc, ok, err
}

func (r *retryingChainQuerier) IsValidator(ctx context.Context, address string) (bool, error) {
	var out bool
	err := r.do(ctx, "IsValidator", func(ctx context.Context) (err error) {
		out, err = r.inner.IsValidator(ctx, address)
		return err
	})
	return out, err
}

func (r *retryingChainQuerier) ValidatorState(ctx context.Context, address string, epoch uint64) (ValidatorState, error) {
	var out ValidatorState
	err := r.do(ctx, "ValidatorState", func(ctx context.Context) (err error) {
		out, err = r.inner.ValidatorState(ctx, address, epoch)
		return err
	})
	return out, err
}

func (r *retryingChainQuerier) IsPKRevealed(ctx context.Context, address string) (bool, error) {
	var out bool
	err := r.do(ctx, "IsPKRevealed", func(ctx context.Context) (err error) {
		out, err = r.inner.IsPKRevealed(ctx, address)
		return err
	})
	return out, err
}

func (r *retryingChainQuerier) TotalSupply(ctx context.Context, denom string) (uint64, error) {
	var out uint64
	err := r.do(ctx, "TotalSupply", func(ctx context.Context) (err error) {
		out, err = r.inner.TotalSupply(ctx, denom)
		return err
	})
	return out, err
}

func (r *retryingChainQuerier) ProposalByID(ctx context.Context, id uint64) (*ProposalInfo, bool, error) {
	var (
		info *ProposalInfo
		ok   bool
	)
	err := r.do(ctx, "ProposalByID", func(ctx context.Context) (err error) {
		info, ok, err = r.inner.ProposalByID(ctx, id)
		return err
	})
	return info, ok, err
}

func (r *retryingChainQuerier) VoteResult(ctx context.Context, voter string, proposalID uint64) (string, bool, error) {
	var (
		vote string
		ok   bool
	)
	err := r.do(ctx, "VoteResult", func(ctx context.Context) (err error) {
		vote, ok, err = r.inner.VoteResult(ctx, voter, proposalID)
		return err
	})
	return vote, ok, err
}

func (r *retryingChainQuerier) IBCPacketSequence(ctx context.Context, sender, receiver string, blockHeight uint64, fromNamada bool) (uint64, bool, error) {
	var (
		seq uint64
		ok  bool
	)
	err := r.do(ctx, "IBCPacketSequence", func(ctx context.Context) (err error) {
		seq, ok, err = r.inner.IBCPacketSequence(ctx, sender, receiver, blockHeight, fromNamada)
		return err
	})
	return seq, ok, err
}

func (r *retryingChainQuerier) IBCAckSuccess(ctx context.Context, srcChannel, dstChannel string, sequence uint64) (bool, error) {
	var out bool
	err := r.do(ctx, "IBCAckSuccess", func(ctx context.Context) (err error) {
		out, err = r.inner.IBCAckSuccess(ctx, srcChannel, dstChannel, sequence)
		return err
	})
	return out, err
}

func (r *retryingChainQuerier) IBCRecvSuccess(ctx context.Context, srcChannel, dstChannel string, sequence uint64) (bool, error) {
	var out bool
	err := r.do(ctx, "IBCRecvSuccess", func(ctx context.Context) (err error) {
		out, err = r.inner.IBCRecvSuccess(ctx, srcChannel, dstChannel, sequence)
		return err
	})
	return out, err
}

func (r *retryingChainQuerier) ValidatorPowers(ctx context.Context) (out []ValidatorPower, err error) {
	err = r.do(ctx, "ValidatorPowers", func(ctx context.Context) (err error) {
		out, err = r.inner.ValidatorPowers(ctx)
		return err
	})
	return out, err
}

func (r *retryingChainQuerier) Status(ctx context.Context) (out *NodeStatus, err error) {
	err = r.do(ctx, "Status", func(ctx context.Context) (err error) {
		out, err = r.inner.Status(ctx)
		return err
	})
	return out, err
}
