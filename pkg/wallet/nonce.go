package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// pendingNonceSource is the part of the backend the nonce manager queries.
type pendingNonceSource interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
}

// NonceManager hands out nonces for one account. Nonces handed out but not yet
// released are skipped, so two submissions in flight never share a nonce even
// before the node has seen the first one.
type NonceManager struct {
	account common.Address
	pending map[uint64]time.Time // nonces in flight and when they were issued
	mu      sync.Mutex
}

func newNonceManager(account common.Address) *NonceManager {
	return &NonceManager{
		account: account,
		pending: make(map[uint64]time.Time),
	}
}

// GetNonce returns the next nonce that is neither used on chain nor in flight.
func (nm *NonceManager) GetNonce(ctx context.Context, source pendingNonceSource) (uint64, error) {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	nonce, err := source.PendingNonceAt(ctx, nm.account)
	if err != nil {
		return 0, NewWalletError(ErrCodeRPCError, "failed to get nonce", err, 0)
	}

	for {
		if _, inFlight := nm.pending[nonce]; !inFlight {
			nm.pending[nonce] = time.Now()
			return nonce, nil
		}
		nonce++
	}
}

// ReleaseNonce marks nonce as no longer in flight. It should be called once the
// transaction is mined or has definitively failed to send.
func (nm *NonceManager) ReleaseNonce(nonce uint64) {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	delete(nm.pending, nonce)
}

// Pending returns the number of nonces currently in flight.
func (nm *NonceManager) Pending() int {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	return len(nm.pending)
}
