// Package task implements the tagged Task variants (spec.md §4.4): each
// knows how to build its signed transaction, predict its checks from
// pre-state, submit itself, and fold its effect back into the in-memory
// model. BuildTx and Execute depend only on small Signer/Broadcaster
// interfaces standing in for the out-of-scope transaction-builder SDK and
// chain node collaborators (spec.md §1).
package task

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"namada-resilience-test/crypto"
	"namada-resilience-test/internal/retry"
	"namada-resilience-test/workload/check"
	"namada-resilience-test/workload/model"
	"namada-resilience-test/workload/query"
)

// Settings carries the operation-specific signer set, gas payer, and gas
// limit every Task variant but NewWalletKeyPair declares (spec.md §4.4).
type Settings struct {
	Signers  []model.Alias
	GasPayer model.Alias
	GasLimit uint64
}

// SignedTx is the opaque output of the out-of-scope transaction-builder SDK:
// signed transaction bytes plus the bookkeeping the pipeline needs to
// broadcast and, if necessary, re-query it.
type SignedTx struct {
	Bytes       []byte
	Hash        string
	SigningData map[string]any
	Args        TxArgs
}

// TxArgs is the transaction-args bundle spec.md §4.4 build_tx produces
// alongside the signed bytes.
type TxArgs struct {
	Force    bool
	GasLimit uint64
	FeePayer string
}

// ExecResult is what a successful (or partially successful) Execute call
// reports back to the pipeline.
type ExecResult struct {
	Height uint64
	// Errors holds inner-tx failure messages for a partially-applied batch.
	Errors []string
}

// Signer is the out-of-scope transaction-builder SDK collaborator (spec.md
// §1): given a task's name, its typed parameters, and its Settings, it
// returns a signed transaction ready to submit.
type Signer interface {
	Sign(ctx context.Context, taskName string, params any, settings Settings) (*SignedTx, error)
}

// Broadcaster is the out-of-scope chain-node collaborator's submission
// surface (spec.md §1). Broadcast returns applied=true with a height on
// success; applied=false with a non-nil err on an outright submission
// failure; a non-empty innerErrors with applied=true on a tx that landed but
// whose wrapped operations failed (spec.md §4.4 Execute).
type Broadcaster interface {
	Broadcast(ctx context.Context, tx *SignedTx) (applied bool, height uint64, innerErrors []string, err error)
	// WaitByHash re-queries a submitted tx by hash once broadcast itself
	// timed out, per spec.md §4.4's 300s re-query deadline.
	WaitByHash(ctx context.Context, hash string, deadline time.Duration) (height uint64, err error)
}

// Env bundles every collaborator a Task needs across its four lifecycle
// methods.
type Env struct {
	Chain       query.ChainQuerier
	Cosmos      query.CosmosQuerier
	Shielded    *query.ShieldedSource
	Wallet      *crypto.Wallet
	Signer      Signer
	Broadcaster Broadcaster
	Retry       retry.Policy
	Log         *slog.Logger
}

// Resolve maps a model.Alias to its on-chain address string. Aliases are
// resolved lazily through the wallet, generating a fresh keypair the first
// time an alias is seen, per spec.md §9's "references by Alias, never by
// pointer".
func (e *Env) Resolve(alias model.Alias) string {
	addr, err := e.Wallet.Address(string(alias.Base()))
	if err != nil {
		// The wallet only fails to mint a key on a write-permission error;
		// callers treat an empty address as "unresolvable" and let the
		// downstream query fail naturally instead of panicking mid-pipeline.
		return ""
	}
	return addr.String()
}

// checkEnv adapts Env into the narrower check.Env the check package expects.
func (e *Env) checkEnv() *check.Env {
	return &check.Env{
		Chain:    e.Chain,
		Cosmos:   e.Cosmos,
		Shielded: e.Shielded,
		Resolve:  e.Resolve,
		Retry:    e.Retry,
		Log:      e.Log,
	}
}

// Task is the tagged-variant contract spec.md §4.4's TaskContext names.
type Task interface {
	Name() string
	Summary() string
	// Settings returns nil for NewWalletKeyPair, the one variant that never
	// touches the chain.
	Settings() *Settings
	BuildTx(ctx context.Context, env *Env) (*SignedTx, error)
	Execute(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error)
	BuildChecks(ctx context.Context, env *Env) ([]check.Check, error)
	UpdateState(state *model.State)
}

// sign is the shared BuildTx body every variant but NewWalletKeyPair uses:
// ask the Signer collaborator for a transaction built from this task's own
// parameters and settings.
func sign(ctx context.Context, env *Env, name string, params any, settings Settings) (*SignedTx, error) {
	tx, err := env.Signer.Sign(ctx, name, params, settings)
	if err != nil {
		return nil, &Error{Kind: KindBuildTx, Err: err}
	}
	return tx, nil
}

const broadcastTimeoutDeadline = 300 * time.Second

// execute is the shared Execute body for ordinary (non-shielded) tasks
// (spec.md §4.4): submit, reclassify a timeout via a bounded re-query, and
// distinguish InsufficientGas from other inner-tx execution failures.
func execute(ctx context.Context, env *Env, tx *SignedTx) (ExecResult, error) {
	applied, height, innerErrors, err := env.Broadcaster.Broadcast(ctx, tx)
	if err != nil {
		if isTimeout(err) {
			h, werr := env.Broadcaster.WaitByHash(ctx, tx.Hash, broadcastTimeoutDeadline)
			if werr != nil {
				return ExecResult{}, &Error{Kind: KindBroadcast, Err: werr}
			}
			return ExecResult{Height: h}, nil
		}
		return ExecResult{}, &Error{Kind: KindBroadcast, Err: err}
	}
	if !applied {
		return ExecResult{}, &Error{Kind: KindBroadcast, Err: errBroadcastNotApplied}
	}
	res := ExecResult{Height: height, Errors: innerErrors}
	if len(innerErrors) == 0 {
		return res, nil
	}
	if isInsufficientGas(innerErrors) {
		return res, &Error{Kind: KindInsufficientGas, Height: height, Err: joinErrors(innerErrors)}
	}
	return res, &Error{Kind: KindExecution, Height: height, Err: joinErrors(innerErrors)}
}

// executeShielded wraps execute for the five shielded-transfer-shaped
// variants, reclassifying an execution failure caused by an epoch-boundary
// crossing as InvalidShielded (spec.md §4.4), which §4.9/§7 treat as an
// acceptable, pre-categorized race rather than a bug.
func executeShielded(ctx context.Context, env *Env, tx *SignedTx, feePaidBeforeFailure bool) (ExecResult, error) {
	res, err := execute(ctx, env, tx)
	if err == nil {
		return res, nil
	}
	var taskErr *Error
	if errors.As(err, &taskErr) && taskErr.Kind == KindExecution && crossedEpochBoundary(taskErr.Err) {
		return res, &Error{Kind: KindInvalidShielded, Height: res.Height, WasFeePaid: feePaidBeforeFailure, Err: taskErr.Err}
	}
	return res, err
}
