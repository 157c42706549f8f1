package query

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// CosmosQuerier is the minimal read surface this harness needs from the IBC
// counterparty chain (spec.md §4.6, "cosmos_grpc"): enough to confirm a
// packet landed and to read the counterparty-side balance an IBC transfer
// moved. Anything beyond that is out of scope (spec.md §1, external
// collaborator).
type CosmosQuerier interface {
	BlockHeight(ctx context.Context) (uint64, error)
	Balance(ctx context.Context, address, denom string) (uint64, error)
	IBCRecvSuccess(ctx context.Context, srcChannel, dstChannel string, sequence uint64) (bool, error)
}

type grpcCosmosQuerier struct {
	conn *grpc.ClientConn
}

// DialCosmos opens a gRPC connection to the counterparty chain's endpoint
// (config's cosmos_grpc), instrumented the same way as the chain node dial.
func DialCosmos(target string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		return nil, fmt.Errorf("query: dial cosmos grpc %s: %w", target, err)
	}
	return conn, nil
}

// NewCosmosQuerier wraps an established gRPC connection to the counterparty.
func NewCosmosQuerier(conn *grpc.ClientConn) CosmosQuerier {
	return &grpcCosmosQuerier{conn: conn}
}

const cosmosServiceFQN = "/cosmos.base.tendermint.v1beta1.Service/"

func (g *grpcCosmosQuerier) BlockHeight(ctx context.Context) (uint64, error) {
	out := &wrapperspb.UInt64Value{}
	if err := g.conn.Invoke(ctx, cosmosServiceFQN+"GetLatestHeight", &emptypb.Empty{}, out); err != nil {
		return 0, Wrap(KindCosmosRpc, "BlockHeight", classifyGrpcErr(err))
	}
	return out.GetValue(), nil
}

type cosmosBalanceRequest struct {
	Address string `json:"address"`
	Denom   string `json:"denom"`
}

func (g *grpcCosmosQuerier) Balance(ctx context.Context, address, denom string) (uint64, error) {
	payload := cosmosBalanceRequest{Address: address, Denom: denom}
	in, err := marshalBytesValue(payload)
	if err != nil {
		return 0, Wrap(KindConvert, "Balance", err)
	}
	out := &wrapperspb.BytesValue{}
	if err := g.conn.Invoke(ctx, cosmosServiceFQN+"GetBalance", in, out); err != nil {
		return 0, Wrap(KindCosmosRpc, "Balance", classifyGrpcErr(err))
	}
	var resp struct {
		Amount uint64 `json:"amount"`
	}
	if err := unmarshalBytesValue(out, &resp); err != nil {
		return 0, Wrap(KindConvert, "Balance", err)
	}
	return resp.Amount, nil
}

func (g *grpcCosmosQuerier) IBCRecvSuccess(ctx context.Context, srcChannel, dstChannel string, sequence uint64) (bool, error) {
	req := ibcAckRequest{SrcChannel: srcChannel, DstChannel: dstChannel, Sequence: sequence}
	in, err := marshalBytesValue(req)
	if err != nil {
		return false, Wrap(KindConvert, "IBCRecvSuccess", err)
	}
	out := &wrapperspb.BytesValue{}
	if err := g.conn.Invoke(ctx, cosmosServiceFQN+"GetIbcRecvAck", in, out); err != nil {
		return false, Wrap(KindCosmosRpc, "IBCRecvSuccess", classifyGrpcErr(err))
	}
	var resp struct {
		Success bool `json:"success"`
	}
	if err := unmarshalBytesValue(out, &resp); err != nil {
		return false, Wrap(KindConvert, "IBCRecvSuccess", err)
	}
	return resp.Success, nil
}
