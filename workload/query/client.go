// Package query implements the typed, retrying read layer (spec.md §4.2)
// that sits between the workload harness and the chain node, the cosmos-style
// IBC counterparty, and the masp-indexer HTTP service. All three are external
// collaborators (spec.md §1); this package depends on them only through the
// ChainQuerier/CosmosQuerier interfaces below, with one concrete
// implementation of each wired to the real transports (gRPC, HTTP) the rest
// of this corpus uses.
package query

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ChainQuerier is the external chain node collaborator, narrowed to exactly
// the operations spec.md §4.2 names.
type ChainQuerier interface {
	BlockHeight(ctx context.Context) (uint64, error)
	Epoch(ctx context.Context) (uint64, error)
	MaspEpoch(ctx context.Context) (uint64, error)
	Balance(ctx context.Context, address, denom string) (uint64, error)
	Bond(ctx context.Context, source, validator string, atEpoch uint64) (uint64, error)
	AccountInfo(ctx context.Context, address string) (*Account, bool, error)
	IsValidator(ctx context.Context, address string) (bool, error)
	ValidatorState(ctx context.Context, address string, epoch uint64) (ValidatorState, error)
	IsPKRevealed(ctx context.Context, address string) (bool, error)
	TotalSupply(ctx context.Context, denom string) (uint64, error)
	ProposalByID(ctx context.Context, id uint64) (*ProposalInfo, bool, error)
	VoteResult(ctx context.Context, voter string, proposalID uint64) (string, bool, error)
	IBCPacketSequence(ctx context.Context, sender, receiver string, blockHeight uint64, fromNamada bool) (uint64, bool, error)
	IBCAckSuccess(ctx context.Context, srcChannel, dstChannel string, sequence uint64) (bool, error)
	IBCRecvSuccess(ctx context.Context, srcChannel, dstChannel string, sequence uint64) (bool, error)
	ValidatorPowers(ctx context.Context) ([]ValidatorPower, error)
	Status(ctx context.Context) (*NodeStatus, error)
}

// Dial opens a gRPC connection to the chain node, instrumented with the same
// OpenTelemetry gRPC stats handler the teacher wires into cmd/consensusd.
func Dial(target string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		return nil, fmt.Errorf("query: dial chain rpc %s: %w", target, err)
	}
	return conn, nil
}
