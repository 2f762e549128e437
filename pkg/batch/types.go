package batch

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Transaction is one sub-call of a batch: a destination, the native value
// forwarded to it and the call payload (empty for plain transfers).
type Transaction struct {
	To    common.Address
	Value *big.Int
	Data  []byte
}

// Tier names a point on the gas price curve.
type Tier string

const (
	TierSlow    Tier = "slow"
	TierAverage Tier = "average"
	TierFast    Tier = "fast"
)

// CongestionLevel is the load classification of the latest block.
type CongestionLevel string

const (
	CongestionLow    CongestionLevel = "low"
	CongestionMedium CongestionLevel = "medium"
	CongestionHigh   CongestionLevel = "high"
)

// GasQuote holds the tiered gas prices in wei.
type GasQuote struct {
	Slow    *big.Int
	Average *big.Int
	Fast    *big.Int
}

// Price returns the quote's price for the given tier.
func (q *GasQuote) Price(tier Tier) *big.Int {
	switch tier {
	case TierSlow:
		return q.Slow
	case TierFast:
		return q.Fast
	default:
		return q.Average
	}
}

// TierEstimate is the price of one tier and the resulting cost of the batch,
// formatted in native units (e.g. "0.00042").
type TierEstimate struct {
	Price *big.Int
	Cost  string
}

// GasEstimatePreview combines a gas estimate for the batch with the cost of
// executing it at each price tier.
type GasEstimatePreview struct {
	EstimatedGas uint64
	Slow         TierEstimate
	Average      TierEstimate
	Fast         TierEstimate
}

// Tier returns the preview entry for the given tier.
func (p *GasEstimatePreview) Tier(tier Tier) TierEstimate {
	switch tier {
	case TierSlow:
		return p.Slow
	case TierFast:
		return p.Fast
	default:
		return p.Average
	}
}

// GasSettings are the gas parameters used to submit a batch.
type GasSettings struct {
	// GasLimit is the estimate plus a 20% safety margin
	GasLimit uint64

	// GasPrice is the price of the chosen tier in wei
	GasPrice *big.Int

	// EstimatedCost is the chosen tier's cost in native units
	EstimatedCost string

	// Tier is the tier picked from network congestion
	Tier Tier
}

// ExecutionStatus is the outcome reported by the confirmation receipt.
type ExecutionStatus string

const (
	StatusSuccess ExecutionStatus = "Success"
	StatusFailed  ExecutionStatus = "Failed"
)

// ExecutionResult summarizes a confirmed batch transaction.
type ExecutionResult struct {
	TransactionHash   common.Hash
	GasUsed           uint64
	EffectiveGasPrice *big.Int
	Status            ExecutionStatus
}

// CallRequest describes a contract call to be signed and submitted.
type CallRequest struct {
	To       common.Address
	Data     []byte
	Value    *big.Int
	GasLimit uint64
	GasPrice *big.Int
}

// ChainReader is the read-only part of the chain collaborator. It is satisfied
// by *ethclient.Client.
type ChainReader interface {
	// HeaderByNumber returns the block header; a nil number selects the latest block
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)

	// SuggestGasPrice returns the network's current average gas price
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

// Signer is the chain collaborator able to simulate and submit calls on behalf
// of an account.
type Signer interface {
	ChainReader

	// Address is the account the signer submits from
	Address() common.Address

	// EstimateGas simulates the call and returns the gas it would consume
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)

	// SubmitAndWait signs and submits the call and blocks until it has one
	// confirmation, returning the receipt
	SubmitAndWait(ctx context.Context, call CallRequest) (*types.Receipt, error)
}

// ExecutionRecord is handed to a Recorder after a batch is confirmed.
type ExecutionRecord struct {
	Proxy        common.Address
	From         common.Address
	Transactions []Transaction
	TotalValue   *big.Int
	Settings     GasSettings
	Result       ExecutionResult
}

// Recorder persists executed batches.
type Recorder interface {
	RecordExecution(ctx context.Context, record ExecutionRecord) error
}
