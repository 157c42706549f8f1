// Package model holds the predict-ahead in-memory replica of chain state
// (spec.md §3, §4.3): accounts, balances, bonds, shielded balances, proposals
// and in-flight IBC packets, mutated only through its own methods.
package model

// NativeScale is the number of base units per whole native token.
const NativeScale = 1_000_000

// FaucetAmount is the amount a single FaucetTransfer moves.
const FaucetAmount = 1_000_000 * NativeScale

// DefaultGasPrice is the configured gas price, in native-token whole units.
const DefaultGasPrice = 0.000001

// sdkDefaultGasLimit mirrors the external transaction-builder SDK's own
// default gas limit; DefaultGasLimit multiplies it by 3 per spec.md §6.
const sdkDefaultGasLimit = 25_000

// DefaultGasLimit is the gas limit used for ordinary (non-batch) tasks.
const DefaultGasLimit = 3 * sdkDefaultGasLimit

// DefaultFee is the flat fee the model debits from a non-faucet gas payer.
const DefaultFee = uint64(float64(DefaultGasLimit) * DefaultGasPrice * NativeScale)

// MaxBatchTxNum bounds how many inner tasks a composite step may draw.
const MaxBatchTxNum = 3

// MinTransferBalance is the minimum source balance a transfer-shaped task
// requires, leaving room for MaxBatchTxNum whole tokens plus one fee.
const MinTransferBalance = MaxBatchTxNum*NativeScale + DefaultFee

// ProposalDeposit is burned when a governance proposal is rejected.
const ProposalDeposit = 50 * NativeScale

// PipelineLen is the chain-time offset (in epochs) predictive bond and
// validator-state checks apply, per spec.md §9's open-question resolution:
// every site that needs "the epoch a bond/validator-state change lands in"
// uses this one symbol rather than a literal +2.
const PipelineLen = 2

// UnbondingLen is the number of epochs after an unbond before withdrawal.
const UnbondingLen = 3

// InitImplicitAddrNum is how many implicit accounts a fresh worker seeds.
const InitImplicitAddrNum = 10

// InitEstablishedAddrNum is how many established accounts a fresh worker seeds.
const InitEstablishedAddrNum = 5

// Cosmos counterparty constants (spec.md §6).
const (
	CosmosChainID          = "gaia-0"
	CosmosToken            = "samoleans"
	CosmosFeeToken         = "stake"
	CosmosFeeAmount        = 50_000
	CosmosGasLimit         = 200_000
	IBCTimeoutHeightOffset = 1000
)
