package batch

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
)

// ExecuteBatch submits the queued transactions as one multi-send call and waits
// for one confirmation.
//
// When settings is nil the gas parameters come from SuggestOptimalGasSettings.
// The queue is read at call time and cleared only once the call is confirmed
// successfully. On any failure the queue is left as it was, so the same batch
// can be retried, and a TransactionFailed error wraps the cause.
//
// Parameters:
//   - ctx: Context for the provider calls and the confirmation wait
//   - signer: Account that pays for the call and its value
//   - settings: Gas parameters to use, or nil to derive them
//
// Returns:
//   - *ExecutionResult: Hash, gas used, effective gas price and status
//   - error: TransactionFailed error if the batch was not executed
//
// Example:
//
//	result, err := b.ExecuteBatch(ctx, signer, nil)
//	if batch.IsBatchError(err, batch.ErrCodeTransactionFailed) {
//	    // queue is intact, retry later
//	}
func (b *Batch) ExecuteBatch(ctx context.Context, signer Signer, settings *GasSettings) (*ExecutionResult, error) {
	if settings == nil {
		suggested, err := b.SuggestOptimalGasSettings(ctx, signer)
		if err != nil {
			return nil, NewBatchError(ErrCodeTransactionFailed, "failed to determine gas settings", err)
		}
		settings = suggested
	}

	txs := b.Transactions()
	total := b.TotalValue()

	calldata, err := PackMultiSendCall(EncodeMultiSend(txs))
	if err != nil {
		return nil, NewBatchError(ErrCodeTransactionFailed, "failed to encode batch", err)
	}

	logger := b.log.WithFields(logrus.Fields{
		"proxy":     b.proxy.Hex(),
		"from":      signer.Address().Hex(),
		"count":     len(txs),
		"value":     total.String(),
		"gas_limit": settings.GasLimit,
		"gas_price": bigString(settings.GasPrice),
		"tier":      settings.Tier,
	})
	logger.Info("Submitting batch")

	receipt, err := signer.SubmitAndWait(ctx, CallRequest{
		To:       b.proxy,
		Data:     calldata,
		Value:    total,
		GasLimit: settings.GasLimit,
		GasPrice: settings.GasPrice,
	})
	if err != nil {
		logger.WithError(err).Error("Batch execution failed")
		return nil, NewBatchError(ErrCodeTransactionFailed, "failed to execute batch", err)
	}
	if receipt == nil {
		return nil, NewBatchError(ErrCodeTransactionFailed, "signer returned no receipt", nil)
	}

	result := resultFromReceipt(receipt)
	if result.Status != StatusSuccess {
		logger.WithField("tx_hash", result.TransactionHash.Hex()).Error("Batch reverted")
		return nil, NewBatchError(ErrCodeTransactionFailed,
			fmt.Sprintf("batch transaction %s reverted", result.TransactionHash.Hex()), nil)
	}

	b.Clear()

	logger.WithFields(logrus.Fields{
		"tx_hash":             result.TransactionHash.Hex(),
		"gas_used":            result.GasUsed,
		"effective_gas_price": bigString(result.EffectiveGasPrice),
	}).Info("Batch confirmed")

	if b.recorder != nil {
		record := ExecutionRecord{
			Proxy:        b.proxy,
			From:         signer.Address(),
			Transactions: txs,
			TotalValue:   total,
			Settings:     *settings,
			Result:       *result,
		}
		if err := b.recorder.RecordExecution(ctx, record); err != nil {
			logger.WithError(err).Warn("Failed to record executed batch")
		}
	}

	return result, nil
}

func resultFromReceipt(receipt *types.Receipt) *ExecutionResult {
	status := StatusFailed
	if receipt.Status == types.ReceiptStatusSuccessful {
		status = StatusSuccess
	}

	price := new(big.Int)
	if receipt.EffectiveGasPrice != nil {
		price.Set(receipt.EffectiveGasPrice)
	}

	return &ExecutionResult{
		TransactionHash:   receipt.TxHash,
		GasUsed:           receipt.GasUsed,
		EffectiveGasPrice: price,
		Status:            status,
	}
}

func bigString(v *big.Int) string {
	if v == nil {
		return "<nil>"
	}
	return v.String()
}
