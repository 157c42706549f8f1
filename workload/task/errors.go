package task

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a task-layer failure per spec.md §7's task error
// hierarchy.
type ErrorKind int

const (
	KindWallet ErrorKind = iota
	KindBuildTx
	KindBuildCheck
	KindBroadcast
	KindExecution
	KindTxResp
	KindInsufficientGas
	KindInvalidShielded
	KindQuery
	KindCosmosTx
	KindIbcTransfer
)

func (k ErrorKind) String() string {
	switch k {
	case KindWallet:
		return "wallet"
	case KindBuildTx:
		return "build_tx"
	case KindBuildCheck:
		return "build_check"
	case KindBroadcast:
		return "broadcast"
	case KindExecution:
		return "execution"
	case KindTxResp:
		return "tx_resp"
	case KindInsufficientGas:
		return "insufficient_gas"
	case KindInvalidShielded:
		return "invalid_shielded"
	case KindQuery:
		return "query"
	case KindCosmosTx:
		return "cosmos_tx"
	case KindIbcTransfer:
		return "ibc_transfer"
	default:
		return "unknown"
	}
}

// Error wraps a task-layer failure with the classification the pipeline and
// C9 stats dispatch on (spec.md §7).
type Error struct {
	Kind       ErrorKind
	Height     uint64
	WasFeePaid bool
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("task(%s): %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Acceptable reports whether this error kind is pre-categorized as an
// expected race condition rather than a real bug (spec.md §4.9, §7):
// IbcTransfer and InvalidShielded failures.
func (e *Error) Acceptable() bool {
	return e.Kind == KindIbcTransfer || e.Kind == KindInvalidShielded
}

var errBroadcastNotApplied = errors.New("broadcast: transaction was not applied")

// isTimeout reports whether err represents a broadcast-side timeout, which
// execute reclassifies via a bounded re-query by tx hash rather than
// failing the iteration outright (spec.md §4.4).
func isTimeout(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "timeout")
}

// isInsufficientGas scans inner-tx error strings for the chain's
// insufficient-gas rejection, distinguishing it from other execution
// failures per spec.md §4.4.
func isInsufficientGas(innerErrors []string) bool {
	for _, e := range innerErrors {
		if strings.Contains(strings.ToLower(e), "insufficient gas") ||
			strings.Contains(strings.ToLower(e), "out of gas") {
			return true
		}
	}
	return false
}

// crossedEpochBoundary reports whether an execution failure was caused by
// the masp epoch advancing mid-flight, the one case spec.md §4.4 asks
// Execute to distinguish for shielded transactions.
func crossedEpochBoundary(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "epoch")
}

func joinErrors(msgs []string) error {
	return errors.New(strings.Join(msgs, "; "))
}
