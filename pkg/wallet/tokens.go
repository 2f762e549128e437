package wallet

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/shivamsri07/mutisend-sdk/pkg/batch"
)

// TokenBalance retrieves the ERC20 balance of account. It is typically used to
// check that a multi-send proxy holds enough tokens before queued token
// transfers are executed.
//
// Example:
//
//	funded, err := signer.TokenBalance(ctx, tokenAddr, proxyAddr)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Proxy token balance: %s\n", funded.String())
func (s *Signer) TokenBalance(ctx context.Context, token, account common.Address) (*big.Int, error) {
	parsedABI, err := abi.JSON(strings.NewReader(batch.ERC20ABI))
	if err != nil {
		return nil, NewWalletError(ErrCodeContractError, "failed to parse ABI", err, s.config.ChainID)
	}

	contract := bind.NewBoundContract(token, parsedABI, s.backend, nil, nil)

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	var out []interface{}
	err = contract.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", account)
	if err != nil {
		return nil, NewWalletError(ErrCodeContractError, "failed to get token balance", err, s.config.ChainID)
	}

	if len(out) == 0 {
		return nil, NewWalletError(ErrCodeContractError, "no balance returned", nil, s.config.ChainID)
	}

	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, NewWalletError(ErrCodeContractError, "failed to convert balance to *big.Int", nil, s.config.ChainID)
	}

	return balance, nil
}
