package wallet

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/shivamsri07/mutisend-sdk/pkg/batch"
)

// Backend is the node API a Signer needs. It is satisfied by *ethclient.Client
// and by the simulated backend's client.
type Backend interface {
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

var _ batch.Signer = (*Signer)(nil)

// Signer is an account on one network. It implements batch.Signer: it reads
// chain state, simulates calls from its address, and signs, submits and
// confirms transactions. All node calls share one rate limiter.
type Signer struct {
	backend Backend
	config  NetworkConfig
	keys    *KeyManager
	nonces  *NonceManager
	limiter *rate.Limiter
	log     *logrus.Logger
}

// NewSigner dials the configured endpoint and returns a signer for privateKey.
//
// Parameters:
//   - ctx: Context for dialing and the chain ID check
//   - log: Logger instance for signer operations
//   - config: Network configuration
//   - privateKey: Hex-encoded private key of the sending account
//
// Example:
//
//	config, err := wallet.NewNetworkConfigFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	signer, err := wallet.NewSigner(ctx, logger, config, os.Getenv("PRIVATE_KEY"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer signer.Close()
func NewSigner(ctx context.Context, log *logrus.Logger, config NetworkConfig, privateKey string) (*Signer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	keys, err := NewKeyManager(privateKey)
	if err != nil {
		return nil, err
	}

	client, err := dialWithRetry(ctx, log, config)
	if err != nil {
		return nil, NewWalletError(ErrCodeRPCError, "failed to connect to network", err, config.ChainID)
	}

	signer, err := NewSignerWithBackend(log, config, client, keys)
	if err != nil {
		client.Close()
		return nil, err
	}
	if err := signer.checkChainID(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return signer, nil
}

// NewSignerWithBackend builds a signer on an existing backend connection. The
// config must pass Validate; receipt polling relies on a positive poll interval
// and timeout.
func NewSignerWithBackend(log *logrus.Logger, config NetworkConfig, backend Backend, keys *KeyManager) (*Signer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if backend == nil || keys == nil {
		return nil, NewWalletError(ErrCodeInvalidConfig, "backend and keys are required", nil, config.ChainID)
	}
	if log == nil {
		log = logrus.New()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}

	return &Signer{
		backend: backend,
		config:  config,
		keys:    keys,
		nonces:  newNonceManager(keys.Address()),
		limiter: limiter,
		log:     log,
	}, nil
}

// Address returns the account the signer submits from.
func (s *Signer) Address() common.Address {
	return s.keys.Address()
}

// HeaderByNumber returns a block header; nil selects the latest block.
func (s *Signer) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	header, err := s.backend.HeaderByNumber(ctx, number)
	if err != nil {
		return nil, NewWalletError(ErrCodeRPCError, "failed to get block header", err, s.config.ChainID)
	}
	return header, nil
}

// SuggestGasPrice returns the node's current gas price.
func (s *Signer) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	price, err := s.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, NewWalletError(ErrCodeRPCError, "failed to get gas price", err, s.config.ChainID)
	}
	return price, nil
}

// EstimateGas simulates msg and returns the gas it would use. The sender is
// always the signer's address.
func (s *Signer) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	if err := s.wait(ctx); err != nil {
		return 0, err
	}

	msg.From = s.Address()
	gas, err := s.backend.EstimateGas(ctx, msg)
	if err != nil {
		return 0, NewWalletError(ErrCodeGasEstimationFailed, "failed to estimate gas", err, s.config.ChainID)
	}
	return gas, nil
}

// Balance returns the native balance of account at the latest block.
func (s *Signer) Balance(ctx context.Context, account common.Address) (*big.Int, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	balance, err := s.backend.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, NewWalletError(ErrCodeRPCError, "failed to get balance", err, s.config.ChainID)
	}

	s.log.WithFields(logrus.Fields{
		"address": account.Hex(),
		"balance": balance.String(),
	}).Debug("Retrieved balance")

	return balance, nil
}

// SubmitAndWait signs call as a legacy transaction with the next free nonce,
// sends it and waits for the configured number of confirmations.
//
// Returns a GAS_PRICE_TOO_HIGH error without sending anything when the call's
// gas price exceeds the configured maximum.
func (s *Signer) SubmitAndWait(ctx context.Context, call batch.CallRequest) (*types.Receipt, error) {
	if call.GasPrice == nil {
		return nil, NewWalletError(ErrCodeTransactionFailed, "gas price is required", nil, s.config.ChainID)
	}
	if s.config.MaxGasPrice != nil && call.GasPrice.Cmp(s.config.MaxGasPrice) > 0 {
		return nil, NewWalletError(ErrCodeGasPrice,
			fmt.Sprintf("gas price %s exceeds maximum %s", call.GasPrice, s.config.MaxGasPrice), nil, s.config.ChainID)
	}

	chainID, err := s.chainID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	nonce, err := s.nonces.GetNonce(ctx, s.backend)
	if err != nil {
		return nil, err
	}
	defer s.nonces.ReleaseNonce(nonce)

	value := call.Value
	if value == nil {
		value = new(big.Int)
	}
	to := call.To
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      call.GasLimit,
		GasPrice: call.GasPrice,
		Data:     call.Data,
	})

	signedTx, err := s.keys.SignTx(tx, chainID)
	if err != nil {
		return nil, NewWalletError(ErrCodeTransactionFailed, "failed to sign transaction", err, s.config.ChainID)
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if err := s.backend.SendTransaction(ctx, signedTx); err != nil {
		return nil, NewWalletError(ErrCodeTransactionFailed, "failed to send transaction", err, s.config.ChainID)
	}

	s.log.WithFields(logrus.Fields{
		"tx_hash":   signedTx.Hash().Hex(),
		"nonce":     nonce,
		"to":        to.Hex(),
		"gas_limit": call.GasLimit,
		"gas_price": call.GasPrice.String(),
	}).Info("Transaction sent")

	return s.WaitForReceipt(ctx, signedTx.Hash())
}

// Close closes the underlying connection if the backend supports it.
func (s *Signer) Close() {
	if closer, ok := s.backend.(interface{ Close() }); ok {
		closer.Close()
		s.log.Debug("Closed network connection")
	}
}

func (s *Signer) chainID(ctx context.Context) (*big.Int, error) {
	if s.config.ChainID != 0 {
		return big.NewInt(s.config.ChainID), nil
	}
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	chainID, err := s.backend.ChainID(ctx)
	if err != nil {
		return nil, NewWalletError(ErrCodeRPCError, "failed to get chain ID", err, 0)
	}
	return chainID, nil
}

func (s *Signer) checkChainID(ctx context.Context) error {
	if s.config.ChainID == 0 {
		return nil
	}
	if err := s.wait(ctx); err != nil {
		return err
	}
	chainID, err := s.backend.ChainID(ctx)
	if err != nil {
		return NewWalletError(ErrCodeRPCError, "failed to get chain ID", err, s.config.ChainID)
	}
	if chainID.Int64() != s.config.ChainID {
		return NewWalletError(ErrCodeChainMismatch,
			fmt.Sprintf("node reports chain %s", chainID), nil, s.config.ChainID)
	}
	return nil
}

// wait blocks until the rate limiter admits another node request.
func (s *Signer) wait(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return NewWalletError(ErrCodeTimeout, "rate limiter wait failed", err, s.config.ChainID)
	}
	return nil
}

// dialWithRetry attempts to connect to the network, retrying failed attempts
// as configured.
func dialWithRetry(ctx context.Context, log *logrus.Logger, config NetworkConfig) (*ethclient.Client, error) {
	var client *ethclient.Client
	var err error

	for i := 0; i <= config.MaxRetries; i++ {
		client, err = ethclient.DialContext(ctx, config.RPCURL)
		if err == nil {
			return client, nil
		}

		if i < config.MaxRetries {
			log.WithFields(logrus.Fields{
				"rpc_url": config.RPCURL,
				"attempt": i + 1,
				"error":   err,
			}).Debug("Retrying network connection")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(config.RetryDelay):
			}
		}
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", config.MaxRetries+1, err)
}
