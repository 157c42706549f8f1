package model

// IBCPacket records a sent IBC packet this worker is still waiting on an
// acknowledgement for (spec.md §3 "IBC-in-flight").
type IBCPacket struct {
	SrcChannel    string `json:"src_channel"`
	DstChannel    string `json:"dst_channel"`
	Sequence      uint64 `json:"sequence"`
	Sender        Alias  `json:"sender"`
	Receiver      string `json:"receiver"`
	Amount        uint64 `json:"amount"`
	Denom         string `json:"denom"`
	TimeoutHeight uint64 `json:"timeout_height"`
}

// UnbondKey identifies a pending unbond withdrawal.
type UnbondKey struct {
	Alias       Alias  `json:"alias"`
	Validator   string `json:"validator"`
	UnbondEpoch uint64 `json:"unbond_epoch"`
}
