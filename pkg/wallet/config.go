package wallet

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Default configuration values
const (
	// DefaultMaxRetries is how many times dialing the RPC endpoint is retried
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the pause between dial attempts
	DefaultRetryDelay = time.Second
	// DefaultRequestsPerSecond caps the RPC request rate; 0 disables the limiter
	DefaultRequestsPerSecond = 10
	// DefaultReceiptTimeout is how long to wait for a transaction receipt
	DefaultReceiptTimeout = 5 * time.Minute
	// DefaultPollInterval is how often to check for a receipt
	DefaultPollInterval = 2 * time.Second
	// DefaultConfirmations is the number of blocks, including the one holding the
	// transaction, required before a receipt is returned
	DefaultConfirmations = 1
)

// NetworkConfig holds network-specific configuration parameters for blockchain interactions.
// Environment variables:
//   - RPC_URL: HTTP(S) or WS endpoint of the node (required)
//   - CHAIN_ID: expected chain ID; 0 accepts whatever the node reports (default: 0)
//   - RPC_MAX_RETRIES: dial attempts after the first (default: 3)
//   - RPC_RETRY_DELAY: pause between dial attempts, Go duration (default: 1s)
//   - RPC_REQUESTS_PER_SECOND: RPC rate limit, 0 for unlimited (default: 10)
//   - RECEIPT_TIMEOUT: how long to wait for a receipt (default: 5m)
//   - RECEIPT_POLL_INTERVAL: receipt polling interval (default: 2s)
//   - RECEIPT_CONFIRMATIONS: blocks required including the inclusion block (default: 1)
//   - MAX_GAS_PRICE_WEI: refuse to submit above this price, empty for no cap
type NetworkConfig struct {
	// RPCURL is the endpoint for connecting to the network
	RPCURL string

	// ChainID is the expected chain identifier; 0 skips the check
	ChainID int64

	// MaxRetries specifies how many times to retry dialing the endpoint
	MaxRetries int

	// RetryDelay is the duration to wait between dial attempts
	RetryDelay time.Duration

	// RequestsPerSecond limits the rate of RPC calls made by a signer
	RequestsPerSecond float64

	// ReceiptTimeout bounds the wait for a confirmation receipt
	ReceiptTimeout time.Duration

	// PollInterval is how often the receipt is polled
	PollInterval time.Duration

	// Confirmations is the number of blocks, counting the inclusion block,
	// required before a transaction is considered confirmed
	Confirmations uint64

	// MaxGasPrice sets an upper bound on gas price to prevent overpaying.
	// Transactions will not be sent if gas price exceeds this value.
	MaxGasPrice *big.Int
}

// DefaultNetworkConfig returns a configuration for rpcURL with default settings.
func DefaultNetworkConfig(rpcURL string) NetworkConfig {
	return NetworkConfig{
		RPCURL:            rpcURL,
		MaxRetries:        DefaultMaxRetries,
		RetryDelay:        DefaultRetryDelay,
		RequestsPerSecond: DefaultRequestsPerSecond,
		ReceiptTimeout:    DefaultReceiptTimeout,
		PollInterval:      DefaultPollInterval,
		Confirmations:     DefaultConfirmations,
	}
}

// NewNetworkConfigFromEnv builds a NetworkConfig from environment variables.
// The .env file is loaded if present, but its absence is not an error.
func NewNetworkConfigFromEnv() (NetworkConfig, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return NetworkConfig{}, fmt.Errorf("error loading .env file: %w", err)
		}
		logrus.Debug(".env file not found, continuing with environment variables")
	}

	config := DefaultNetworkConfig(os.Getenv("RPC_URL"))

	var err error
	if config.ChainID, err = envInt64("CHAIN_ID", 0); err != nil {
		return NetworkConfig{}, err
	}
	maxRetries, err := envInt64("RPC_MAX_RETRIES", DefaultMaxRetries)
	if err != nil {
		return NetworkConfig{}, err
	}
	config.MaxRetries = int(maxRetries)
	if config.RetryDelay, err = envDuration("RPC_RETRY_DELAY", DefaultRetryDelay); err != nil {
		return NetworkConfig{}, err
	}
	if config.ReceiptTimeout, err = envDuration("RECEIPT_TIMEOUT", DefaultReceiptTimeout); err != nil {
		return NetworkConfig{}, err
	}
	if config.PollInterval, err = envDuration("RECEIPT_POLL_INTERVAL", DefaultPollInterval); err != nil {
		return NetworkConfig{}, err
	}
	if config.Confirmations, err = envUint64("RECEIPT_CONFIRMATIONS", DefaultConfirmations); err != nil {
		return NetworkConfig{}, err
	}

	if v := os.Getenv("RPC_REQUESTS_PER_SECOND"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return NetworkConfig{}, NewWalletError(ErrCodeInvalidConfig, "invalid RPC_REQUESTS_PER_SECOND", err, 0)
		}
		config.RequestsPerSecond = rps
	}

	if v := os.Getenv("MAX_GAS_PRICE_WEI"); v != "" {
		price, ok := new(big.Int).SetString(v, 10)
		if !ok {
			return NetworkConfig{}, NewWalletError(ErrCodeInvalidConfig, fmt.Sprintf("invalid MAX_GAS_PRICE_WEI %q", v), nil, 0)
		}
		config.MaxGasPrice = price
	}

	logrus.WithFields(logrus.Fields{
		"rpc_url":             config.RPCURL,
		"chain_id":            config.ChainID,
		"requests_per_second": config.RequestsPerSecond,
		"receipt_timeout":     config.ReceiptTimeout.String(),
		"confirmations":       config.Confirmations,
	}).Debug("Loaded network config")

	if err := config.Validate(); err != nil {
		return NetworkConfig{}, err
	}
	return config, nil
}

// Validate checks if the configuration is valid according to the following rules:
//   - RPCURL must not be empty
//   - ChainID and MaxRetries must not be negative
//   - ReceiptTimeout and PollInterval must be positive
//   - Confirmations must be at least 1
//   - MaxGasPrice, when set, must be positive
func (c NetworkConfig) Validate() error {
	switch {
	case c.RPCURL == "":
		return NewWalletError(ErrCodeInvalidConfig, "RPC URL is required", nil, c.ChainID)
	case c.ChainID < 0:
		return NewWalletError(ErrCodeInvalidConfig, fmt.Sprintf("chain ID must not be negative, got %d", c.ChainID), nil, 0)
	case c.MaxRetries < 0:
		return NewWalletError(ErrCodeInvalidConfig, fmt.Sprintf("max retries must not be negative, got %d", c.MaxRetries), nil, c.ChainID)
	case c.RequestsPerSecond < 0:
		return NewWalletError(ErrCodeInvalidConfig, fmt.Sprintf("requests per second must not be negative, got %v", c.RequestsPerSecond), nil, c.ChainID)
	case c.ReceiptTimeout <= 0:
		return NewWalletError(ErrCodeInvalidConfig, fmt.Sprintf("receipt timeout must be positive, got %v", c.ReceiptTimeout), nil, c.ChainID)
	case c.PollInterval <= 0:
		return NewWalletError(ErrCodeInvalidConfig, fmt.Sprintf("poll interval must be positive, got %v", c.PollInterval), nil, c.ChainID)
	case c.Confirmations < 1:
		return NewWalletError(ErrCodeInvalidConfig, "at least one confirmation is required", nil, c.ChainID)
	case c.MaxGasPrice != nil && c.MaxGasPrice.Sign() <= 0:
		return NewWalletError(ErrCodeInvalidConfig, "max gas price must be positive", nil, c.ChainID)
	}
	return nil
}

func envInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, NewWalletError(ErrCodeInvalidConfig, fmt.Sprintf("invalid %s", key), err, 0)
	}
	return n, nil
}

func envUint64(key string, def uint64) (uint64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, NewWalletError(ErrCodeInvalidConfig, fmt.Sprintf("invalid %s", key), err, 0)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, NewWalletError(ErrCodeInvalidConfig, fmt.Sprintf("invalid %s", key), err, 0)
	}
	return d, nil
}
