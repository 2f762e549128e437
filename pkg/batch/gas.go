package batch

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/sirupsen/logrus"
)

const (
	// slowPricePercent and fastPricePercent place the slow and fast tiers
	// around the network's average price
	slowPricePercent = 90
	fastPricePercent = 110

	// gasLimitBufferPercent is applied to the raw estimate (a 20% margin)
	gasLimitBufferPercent = 120

	// Block utilization thresholds in percent. Only the latest block is
	// sampled; there is no averaging over history.
	mediumCongestionThreshold = 50
	highCongestionThreshold   = 80
)

// EstimateGas simulates the multi-send call for the current queue from the
// signer's account and returns the gas it would use. The queue is not modified.
//
// Returns a SimulationFailed error wrapping the provider's error when the call
// would revert, e.g. because of an insufficient balance or an under-funded proxy.
func (b *Batch) EstimateGas(ctx context.Context, signer Signer) (uint64, error) {
	calldata, err := PackMultiSendCall(b.Encode())
	if err != nil {
		return 0, err
	}

	proxy := b.proxy
	msg := ethereum.CallMsg{
		From:  signer.Address(),
		To:    &proxy,
		Data:  calldata,
		Value: b.TotalValue(),
	}

	estimatedGas, err := signer.EstimateGas(ctx, msg)
	if err != nil {
		b.log.WithFields(logrus.Fields{
			"proxy": b.proxy.Hex(),
			"count": b.Count(),
			"error": err,
		}).Error("Gas estimation failed")
		return 0, NewBatchError(ErrCodeSimulationFailed, "failed to estimate multiSend gas", err)
	}

	b.log.WithFields(logrus.Fields{
		"proxy":         b.proxy.Hex(),
		"count":         b.Count(),
		"estimated_gas": estimatedGas,
	}).Debug("Estimated batch gas")

	return estimatedGas, nil
}

// GetGasPrices returns the tiered gas quote derived from the network's average
// price: slow is 90% of it and fast 110%.
func (b *Batch) GetGasPrices(ctx context.Context, chain ChainReader) (*GasQuote, error) {
	average, err := chain.SuggestGasPrice(ctx)
	if err != nil {
		return nil, NewBatchError(ErrCodeCollaborator, "failed to get gas price", err)
	}
	return QuoteFromAverage(average), nil
}

// QuoteFromAverage builds the tiered quote around an average price.
func QuoteFromAverage(average *big.Int) *GasQuote {
	return &GasQuote{
		Slow:    percentOf(average, slowPricePercent),
		Average: new(big.Int).Set(average),
		Fast:    percentOf(average, fastPricePercent),
	}
}

// GetGasEstimatePreview estimates the batch and prices it at every tier.
func (b *Batch) GetGasEstimatePreview(ctx context.Context, signer Signer) (*GasEstimatePreview, error) {
	estimatedGas, err := b.EstimateGas(ctx, signer)
	if err != nil {
		return nil, err
	}

	quote, err := b.GetGasPrices(ctx, signer)
	if err != nil {
		return nil, err
	}

	return NewGasEstimatePreview(estimatedGas, quote), nil
}

// NewGasEstimatePreview prices estimatedGas at each tier of quote.
func NewGasEstimatePreview(estimatedGas uint64, quote *GasQuote) *GasEstimatePreview {
	tier := func(price *big.Int) TierEstimate {
		cost := new(big.Int).Mul(new(big.Int).SetUint64(estimatedGas), price)
		return TierEstimate{Price: new(big.Int).Set(price), Cost: FormatEther(cost)}
	}

	return &GasEstimatePreview{
		EstimatedGas: estimatedGas,
		Slow:         tier(quote.Slow),
		Average:      tier(quote.Average),
		Fast:         tier(quote.Fast),
	}
}

// GetNetworkCongestion classifies the load of the latest block from its gas
// utilization.
func GetNetworkCongestion(ctx context.Context, chain ChainReader) (CongestionLevel, error) {
	header, err := chain.HeaderByNumber(ctx, nil)
	if err != nil {
		return "", NewBatchError(ErrCodeCollaborator, "failed to get latest block", err)
	}
	if header.GasLimit == 0 {
		return "", NewBatchError(ErrCodeCollaborator,
			fmt.Sprintf("latest block %v reports a zero gas limit", header.Number), nil)
	}
	return ClassifyUtilization(header.GasUsed, header.GasLimit), nil
}

// ClassifyUtilization maps gasUsed/gasLimit to a congestion level using the
// truncated integer percentage: below 50 is low, below 80 medium, otherwise high.
func ClassifyUtilization(gasUsed, gasLimit uint64) CongestionLevel {
	if gasLimit == 0 {
		return CongestionHigh
	}

	ratio := new(big.Int).Mul(new(big.Int).SetUint64(gasUsed), big.NewInt(100))
	ratio.Quo(ratio, new(big.Int).SetUint64(gasLimit))

	switch {
	case ratio.Cmp(big.NewInt(mediumCongestionThreshold)) < 0:
		return CongestionLow
	case ratio.Cmp(big.NewInt(highCongestionThreshold)) < 0:
		return CongestionMedium
	default:
		return CongestionHigh
	}
}

// TierForCongestion picks the price tier for a congestion level.
func TierForCongestion(level CongestionLevel) Tier {
	switch level {
	case CongestionLow:
		return TierSlow
	case CongestionMedium:
		return TierAverage
	default:
		return TierFast
	}
}

// BufferedGasLimit adds the 20% safety margin to a raw estimate, rounding down.
func BufferedGasLimit(estimatedGas uint64) uint64 {
	limit := new(big.Int).SetUint64(estimatedGas)
	limit.Mul(limit, big.NewInt(gasLimitBufferPercent))
	limit.Quo(limit, big.NewInt(100))
	if !limit.IsUint64() {
		return ^uint64(0)
	}
	return limit.Uint64()
}

// SuggestOptimalGasSettings prices the batch for current network conditions:
// a quiet network gets the slow tier, a busy one the average tier and a
// congested one the fast tier. The gas limit carries a 20% margin over the
// estimate. Errors from estimation or the provider are returned unchanged.
func (b *Batch) SuggestOptimalGasSettings(ctx context.Context, signer Signer) (*GasSettings, error) {
	preview, err := b.GetGasEstimatePreview(ctx, signer)
	if err != nil {
		return nil, err
	}

	congestion, err := GetNetworkCongestion(ctx, signer)
	if err != nil {
		return nil, err
	}

	tier := TierForCongestion(congestion)
	chosen := preview.Tier(tier)

	settings := &GasSettings{
		GasLimit:      BufferedGasLimit(preview.EstimatedGas),
		GasPrice:      new(big.Int).Set(chosen.Price),
		EstimatedCost: chosen.Cost,
		Tier:          tier,
	}

	b.log.WithFields(logrus.Fields{
		"congestion":     congestion,
		"tier":           tier,
		"estimated_gas":  preview.EstimatedGas,
		"gas_limit":      settings.GasLimit,
		"gas_price":      settings.GasPrice.String(),
		"estimated_cost": settings.EstimatedCost,
	}).Debug("Suggested gas settings")

	return settings, nil
}

func percentOf(v *big.Int, percent int64) *big.Int {
	out := new(big.Int).Mul(v, big.NewInt(percent))
	return out.Quo(out, big.NewInt(100))
}
