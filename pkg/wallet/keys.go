package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// KeyManager holds the signing key of the batch sender and the address
// derived from it.
type KeyManager struct {
	privateKey *ecdsa.PrivateKey // The wallet's private key
	address    common.Address    // The derived Ethereum address
}

// NewKeyManager creates a new key manager from a hex-encoded private key, with
// or without the 0x prefix.
//
// Example:
//
//	km, err := NewKeyManager(os.Getenv("PRIVATE_KEY"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sender := km.Address()
func NewKeyManager(privateKeyHex string) (*KeyManager, error) {
	privateKeyHex = strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	if privateKeyHex == "" {
		return nil, NewWalletError(ErrCodeInvalidPrivateKey, "private key cannot be empty", nil, 0)
	}

	privateKey, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, NewWalletError(ErrCodeInvalidPrivateKey, "invalid private key", err, 0)
	}

	return NewKeyManagerFromECDSA(privateKey), nil
}

// NewKeyManagerFromECDSA wraps an already parsed private key.
func NewKeyManagerFromECDSA(privateKey *ecdsa.PrivateKey) *KeyManager {
	return &KeyManager{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}
}

// Address returns the Ethereum address derived from the key.
func (km *KeyManager) Address() common.Address {
	return km.address
}

// SignTx signs tx for the given chain using EIP-155 replay protection.
func (km *KeyManager) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(chainID), km.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signedTx, nil
}
