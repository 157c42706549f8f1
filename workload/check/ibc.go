package check

import (
	"context"
	"fmt"

	"namada-resilience-test/workload/model"
)

// AckIbcTransferCheck asserts an IBC packet sent from Namada was discovered
// in the execution block's send_packet events and later acknowledged as a
// success (spec.md §4.2, §4.6).
type AckIbcTransferCheck struct {
	Sender     model.Alias
	Receiver   string
	SrcChannel string
	DstChannel string
}

func (c *AckIbcTransferCheck) Name() string {
	return fmt.Sprintf("AckIbcTransfer(%s->%s)", c.Sender, c.Receiver)
}

func (c *AckIbcTransferCheck) Do(ctx context.Context, env *Env, info Info, fees map[model.Alias]uint64) error {
	var (
		sequence uint64
		found    bool
	)
	err := env.retry(ctx, c.Name()+":sequence", func(ctx context.Context) error {
		seq, ok, err := env.Chain.IBCPacketSequence(ctx, env.Resolve(c.Sender), c.Receiver, info.ExecutionHeight, true)
		if err != nil {
			return err
		}
		sequence, found = seq, ok
		return nil
	})
	if err != nil {
		return fmt.Errorf("check %s: %w", c.Name(), err)
	}
	details := map[string]any{
		"sender": c.Sender, "receiver": c.Receiver, "src_channel": c.SrcChannel, "dst_channel": c.DstChannel,
		"execution_height": info.ExecutionHeight, "check_height": info.CheckHeight,
	}
	if !found {
		return &StateError{Msg: fmt.Sprintf("%s: no send_packet event found at height %d", c.Name(), info.ExecutionHeight), Details: details}
	}
	details["sequence"] = sequence

	var ok bool
	err = env.retry(ctx, c.Name()+":ack", func(ctx context.Context) error {
		v, err := env.Chain.IBCAckSuccess(ctx, c.SrcChannel, c.DstChannel, sequence)
		if err != nil {
			return err
		}
		ok = v
		return nil
	})
	if err != nil {
		return fmt.Errorf("check %s: %w", c.Name(), err)
	}
	if !ok {
		return &StateError{Msg: fmt.Sprintf("%s: acknowledgement was not success", c.Name()), Details: details}
	}
	return nil
}

// RecvIbcPacketCheck asserts a packet sent from the counterparty chain was
// received and acknowledged (write_acknowledgement) as a success on Namada
// (spec.md §4.6).
type RecvIbcPacketCheck struct {
	Sender     string
	Target     model.Alias
	SrcChannel string
	DstChannel string
}

func (c *RecvIbcPacketCheck) Name() string {
	return fmt.Sprintf("RecvIbcPacket(%s->%s)", c.Sender, c.Target)
}

func (c *RecvIbcPacketCheck) Do(ctx context.Context, env *Env, info Info, fees map[model.Alias]uint64) error {
	var (
		sequence uint64
		found    bool
	)
	err := env.retry(ctx, c.Name()+":sequence", func(ctx context.Context) error {
		seq, ok, err := env.Chain.IBCPacketSequence(ctx, c.Sender, env.Resolve(c.Target), info.ExecutionHeight, false)
		if err != nil {
			return err
		}
		sequence, found = seq, ok
		return nil
	})
	if err != nil {
		return fmt.Errorf("check %s: %w", c.Name(), err)
	}
	details := map[string]any{
		"sender": c.Sender, "target": c.Target, "src_channel": c.SrcChannel, "dst_channel": c.DstChannel,
		"execution_height": info.ExecutionHeight, "check_height": info.CheckHeight,
	}
	if !found {
		return &StateError{Msg: fmt.Sprintf("%s: no recv_packet event found at height %d", c.Name(), info.ExecutionHeight), Details: details}
	}
	details["sequence"] = sequence

	var ok bool
	err = env.retry(ctx, c.Name()+":write_ack", func(ctx context.Context) error {
		v, err := env.Chain.IBCRecvSuccess(ctx, c.SrcChannel, c.DstChannel, sequence)
		if err != nil {
			return err
		}
		ok = v
		return nil
	})
	if err != nil {
		return fmt.Errorf("check %s: %w", c.Name(), err)
	}
	if !ok {
		return &StateError{Msg: fmt.Sprintf("%s: write_acknowledgement was not success", c.Name()), Details: details}
	}
	return nil
}
