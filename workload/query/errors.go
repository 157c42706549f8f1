package query

import "fmt"

// ErrorKind classifies a query failure per spec.md §7's query error hierarchy.
type ErrorKind int

const (
	KindRpc ErrorKind = iota
	KindCosmosRpc
	KindGrpc
	KindShieldedSync
	KindShieldedContext
	KindConvert
	KindIbc
	KindWallet
)

func (k ErrorKind) String() string {
	switch k {
	case KindRpc:
		return "rpc"
	case KindCosmosRpc:
		return "cosmos_rpc"
	case KindGrpc:
		return "grpc"
	case KindShieldedSync:
		return "shielded_sync"
	case KindShieldedContext:
		return "shielded_context"
	case KindConvert:
		return "convert"
	case KindIbc:
		return "ibc"
	case KindWallet:
		return "wallet"
	default:
		return "unknown"
	}
}

// Error wraps a lower-level failure with the query-layer classification the
// rest of the harness dispatches on.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("query(%s) %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap constructs a classified query Error.
func Wrap(kind ErrorKind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
