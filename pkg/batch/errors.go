// Package batch queues native-currency and token transfers and executes them as a
// single transaction through a multi-send proxy contract.
package batch

import (
	"errors"
	"fmt"
)

// Error codes for batch operations
const (
	// ErrCodeInvalidAmount indicates a negative, missing or out-of-range transfer amount
	ErrCodeInvalidAmount = "INVALID_AMOUNT"
	// ErrCodeSimulationFailed indicates the multi-send call would revert or could not be simulated
	ErrCodeSimulationFailed = "SIMULATION_FAILED"
	// ErrCodeTransactionFailed indicates submission or confirmation of the batch failed
	ErrCodeTransactionFailed = "TRANSACTION_FAILED"
	// ErrCodeCollaborator indicates the chain provider failed to answer a query
	ErrCodeCollaborator = "COLLABORATOR_ERROR"
	// ErrCodeEncodingFailed indicates the batch could not be ABI-encoded or decoded
	ErrCodeEncodingFailed = "ENCODING_FAILED"
)

// BatchError represents a batch-specific error with a code, a human readable
// message and the underlying cause.
type BatchError struct {
	Code    string // Error code identifying the type of error
	Message string // Human readable error message
	Err     error  // Underlying error if any
}

// Error implements the error interface for BatchError.
func (e *BatchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
}

// Unwrap returns the underlying error.
func (e *BatchError) Unwrap() error {
	return e.Err
}

// NewBatchError creates a new BatchError with the given code, message and cause.
func NewBatchError(code string, message string, err error) *BatchError {
	return &BatchError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsBatchError reports whether err, or any error in its chain, is a BatchError
// with the given code.
func IsBatchError(err error, code string) bool {
	for err != nil {
		var e *BatchError
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Err
	}
	return false
}
