package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
)

// WaitForReceipt polls for the receipt of hash until the transaction has the
// configured number of confirmations, counting the block that includes it.
// A reverted transaction is returned like any other; callers inspect
// receipt.Status.
//
// Example:
//
//	receipt, err := signer.WaitForReceipt(ctx, txHash)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Transaction mined in block %s\n", receipt.BlockNumber)
func (s *Signer) WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	timeout := time.After(s.config.ReceiptTimeout)

	for {
		receipt, done, err := s.pollReceipt(ctx, hash)
		if err != nil {
			return nil, err
		}
		if done {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, NewWalletError(ErrCodeTimeout, "context cancelled while waiting for receipt", ctx.Err(), s.config.ChainID)
		case <-timeout:
			return nil, NewWalletError(ErrCodeTimeout, "timeout waiting for receipt of "+hash.Hex(), nil, s.config.ChainID)
		case <-ticker.C:
		}
	}
}

// pollReceipt checks once for a sufficiently confirmed receipt.
func (s *Signer) pollReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, bool, error) {
	if err := s.wait(ctx); err != nil {
		return nil, false, err
	}
	receipt, err := s.backend.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, NewWalletError(ErrCodeRPCError, "failed to get transaction receipt", err, s.config.ChainID)
	}

	if err := s.wait(ctx); err != nil {
		return nil, false, err
	}
	currentBlock, err := s.backend.BlockNumber(ctx)
	if err != nil {
		return nil, false, NewWalletError(ErrCodeRPCError, "failed to get current block number", err, s.config.ChainID)
	}

	confirmations := confirmationsAt(currentBlock, receipt.BlockNumber.Uint64())
	if confirmations < s.config.Confirmations {
		s.log.WithFields(logrus.Fields{
			"tx_hash":       hash.Hex(),
			"confirmations": confirmations,
			"required":      s.config.Confirmations,
		}).Debug("Waiting for confirmations")
		return nil, false, nil
	}

	s.log.WithFields(logrus.Fields{
		"tx_hash":       hash.Hex(),
		"block_number":  receipt.BlockNumber.String(),
		"status":        receipt.Status,
		"gas_used":      receipt.GasUsed,
		"confirmations": confirmations,
	}).Info("Transaction confirmed")

	return receipt, true, nil
}

// confirmationsAt counts the inclusion block itself as the first confirmation.
func confirmationsAt(currentBlock, receiptBlock uint64) uint64 {
	if currentBlock < receiptBlock {
		return 0
	}
	return currentBlock - receiptBlock + 1
}
