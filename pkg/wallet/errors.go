// Package wallet implements the chain collaborator for batches: an account
// backed by a go-ethereum RPC client that reads chain state, simulates calls,
// and signs and submits transactions.
package wallet

import (
	"errors"
	"fmt"
)

// Error codes for various wallet operations
const (
	// ErrCodeInvalidConfig indicates a missing or malformed configuration value
	ErrCodeInvalidConfig = "INVALID_CONFIG"
	// ErrCodeInvalidAddress indicates an invalid blockchain address format
	ErrCodeInvalidAddress = "INVALID_ADDRESS"
	// ErrCodeInvalidPrivateKey indicates an invalid or malformed private key
	ErrCodeInvalidPrivateKey = "INVALID_PRIVATE_KEY"
	// ErrCodeTransactionFailed indicates a transaction could not be signed or sent
	ErrCodeTransactionFailed = "TRANSACTION_FAILED"
	// ErrCodeGasEstimationFailed indicates gas estimation failed
	ErrCodeGasEstimationFailed = "GAS_ESTIMATION_FAILED"
	// ErrCodeRPCError indicates an RPC connection or call failed
	ErrCodeRPCError = "RPC_ERROR"
	// ErrCodeTimeout indicates operation timed out
	ErrCodeTimeout = "TIMEOUT"
	// ErrCodeContractError indicates contract interaction failed
	ErrCodeContractError = "CONTRACT_ERROR"
	// ErrCodeChainMismatch indicates the node reports a different chain ID than configured
	ErrCodeChainMismatch = "CHAIN_MISMATCH"
	// ErrCodeGasPrice indicates gas price exceeds maximum allowed
	ErrCodeGasPrice = "GAS_PRICE_TOO_HIGH"
)

// WalletError represents a wallet-specific error with additional context
// about the error type, message, underlying error and chain.
type WalletError struct {
	Code    string // Error code identifying the type of error
	Message string // Human readable error message
	Err     error  // Underlying error if any
	ChainID int64  // Chain where the error occurred, 0 if unknown
}

// Error implements the error interface for WalletError.
// It formats the error message including the code, message, chain (if known)
// and underlying error.
func (e *WalletError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.ChainID != 0 {
		msg = fmt.Sprintf("%s on chain %d", msg, e.ChainID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
// This implements the errors.Unwrap interface for error wrapping.
func (e *WalletError) Unwrap() error {
	return e.Err
}

// NewWalletError creates a new WalletError with the given parameters.
//
// Parameters:
//   - code: Error code identifying the type of error
//   - message: Human readable error message
//   - err: Underlying error if any
//   - chainID: Chain where the error occurred, 0 if unknown
//
// Returns:
//   - *WalletError: A new wallet error instance
func NewWalletError(code string, message string, err error, chainID int64) *WalletError {
	return &WalletError{
		Code:    code,
		Message: message,
		Err:     err,
		ChainID: chainID,
	}
}

// IsWalletError checks if an error is, or wraps, a WalletError with the given code.
//
// Parameters:
//   - err: Error to check
//   - code: Error code to match against
//
// Returns:
//   - bool: true if err is a WalletError with matching code, false otherwise
func IsWalletError(err error, code string) bool {
	var e *WalletError
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
