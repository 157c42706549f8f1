package task

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"namada-resilience-test/crypto"
)

// grpcSigner stands in for the out-of-scope transaction-builder SDK
// collaborator (spec.md §1): it serializes a task's own typed parameters,
// signs the digest with the first configured signer's key, and returns the
// bytes the Broadcaster will submit. The real SDK's wire format is not this
// harness's concern; what matters is that every BuildTx call produces a
// distinct, genuinely-signed payload the fake/real chain node can accept.
type grpcSigner struct {
	Wallet *crypto.Wallet
}

// NewSigner builds the Signer collaborator used by cmd/workload.
func NewSigner(wallet *crypto.Wallet) Signer {
	return &grpcSigner{Wallet: wallet}
}

func (s *grpcSigner) Sign(ctx context.Context, taskName string, params any, settings Settings) (*SignedTx, error) {
	payload, err := json.Marshal(struct {
		Task   string   `json:"task"`
		Params any      `json:"params"`
		Payer  string   `json:"gas_payer"`
		Limit  uint64   `json:"gas_limit"`
	}{Task: taskName, Params: params, Payer: string(settings.GasPayer), Limit: settings.GasLimit})
	if err != nil {
		return nil, fmt.Errorf("sdk: marshal tx params: %w", err)
	}
	digest := sha256.Sum256(payload)

	signerAlias := settings.GasPayer
	if len(settings.Signers) > 0 {
		signerAlias = settings.Signers[0]
	}
	key, ok := s.Wallet.Get(string(signerAlias))
	if !ok {
		generated, err := crypto.GeneratePrivateKey()
		if err != nil {
			return nil, fmt.Errorf("sdk: generate signer key for %s: %w", signerAlias, err)
		}
		if err := s.Wallet.Put(string(signerAlias), generated); err != nil {
			return nil, fmt.Errorf("sdk: persist signer key for %s: %w", signerAlias, err)
		}
		key = generated
	}
	sig, err := key.Sign(digest)
	if err != nil {
		return nil, fmt.Errorf("sdk: sign %s: %w", taskName, err)
	}

	return &SignedTx{
		Bytes:       append(payload, sig...),
		Hash:        fmt.Sprintf("%x", digest),
		SigningData: map[string]any{"signer": string(signerAlias)},
		Args: TxArgs{
			Force:    false,
			GasLimit: settings.GasLimit,
			FeePayer: string(settings.GasPayer),
		},
	}, nil
}

// grpcBroadcaster submits signed transactions to the chain node over the
// same gRPC transport query.ChainQuerier dials, per SPEC_FULL.md §6
// "Chain query transport".
type grpcBroadcaster struct {
	conn *grpc.ClientConn
}

// NewBroadcaster wraps an established gRPC connection to the chain node.
func NewBroadcaster(conn *grpc.ClientConn) Broadcaster {
	return &grpcBroadcaster{conn: conn}
}

const txServiceFQN = "/namada.chain.v1.ChainService/"

type broadcastRequest struct {
	Tx    []byte `json:"tx"`
	Force bool   `json:"force"`
}

type broadcastResponse struct {
	Applied     bool     `json:"applied"`
	Height      uint64   `json:"height"`
	InnerErrors []string `json:"inner_errors"`
}

var errBroadcastTimeout = errors.New("sdk: broadcast timeout waiting for inclusion")

func (b *grpcBroadcaster) Broadcast(ctx context.Context, tx *SignedTx) (bool, uint64, []string, error) {
	payload, err := json.Marshal(broadcastRequest{Tx: tx.Bytes, Force: tx.Args.Force})
	if err != nil {
		return false, 0, nil, fmt.Errorf("sdk: marshal broadcast request: %w", err)
	}
	out := &wrapperspb.BytesValue{}
	if err := b.conn.Invoke(ctx, txServiceFQN+"BroadcastTx", &wrapperspb.BytesValue{Value: payload}, out); err != nil {
		if ctx.Err() != nil {
			return false, 0, nil, errBroadcastTimeout
		}
		return false, 0, nil, fmt.Errorf("sdk: broadcast tx: %w", err)
	}
	var resp broadcastResponse
	if err := json.Unmarshal(out.GetValue(), &resp); err != nil {
		return false, 0, nil, fmt.Errorf("sdk: decode broadcast response: %w", err)
	}
	return resp.Applied, resp.Height, resp.InnerErrors, nil
}

func (b *grpcBroadcaster) WaitByHash(ctx context.Context, hash string, deadline time.Duration) (uint64, error) {
	waitCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()
	out := &wrapperspb.UInt64Value{}
	if err := b.conn.Invoke(waitCtx, txServiceFQN+"GetTxHeightByHash", wrapperspb.String(hash), out); err != nil {
		return 0, fmt.Errorf("sdk: wait for tx %s: %w", hash, err)
	}
	return out.GetValue(), nil
}
