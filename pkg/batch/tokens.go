package batch

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ERC20ABI is the minimal token ABI: transfer for queued token payments and
// balanceOf for checking how much a proxy has been pre-funded with.
const ERC20ABI = `[
	{
		"constant": true,
		"inputs": [{"name": "_owner", "type": "address"}],
		"name": "balanceOf",
		"outputs": [{"name": "balance", "type": "uint256"}],
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [
			{"name": "_to", "type": "address"},
			{"name": "_value", "type": "uint256"}
		],
		"name": "transfer",
		"outputs": [{"name": "", "type": "bool"}],
		"type": "function"
	}
]`

// EncodeERC20Transfer returns the calldata of transfer(address,uint256): the
// 4-byte selector followed by the padded recipient and amount.
func EncodeERC20Transfer(to common.Address, amount *big.Int) ([]byte, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	parsedABI, err := abi.JSON(strings.NewReader(ERC20ABI))
	if err != nil {
		return nil, NewBatchError(ErrCodeEncodingFailed, "failed to parse ERC20 ABI", err)
	}

	data, err := parsedABI.Pack("transfer", to, amount)
	if err != nil {
		return nil, NewBatchError(ErrCodeEncodingFailed, "failed to pack transfer call", err)
	}
	return data, nil
}

// DecodeERC20Transfer parses transfer(address,uint256) calldata back into its
// recipient and amount.
func DecodeERC20Transfer(data []byte) (common.Address, *big.Int, error) {
	parsedABI, err := abi.JSON(strings.NewReader(ERC20ABI))
	if err != nil {
		return common.Address{}, nil, NewBatchError(ErrCodeEncodingFailed, "failed to parse ERC20 ABI", err)
	}

	method, err := parsedABI.MethodById(data)
	if err != nil || method.Name != "transfer" {
		return common.Address{}, nil, NewBatchError(ErrCodeEncodingFailed, "calldata is not an ERC20 transfer", err)
	}

	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return common.Address{}, nil, NewBatchError(ErrCodeEncodingFailed, "failed to unpack transfer arguments", err)
	}

	to, ok := args[0].(common.Address)
	if !ok {
		return common.Address{}, nil, NewBatchError(ErrCodeEncodingFailed, fmt.Sprintf("unexpected recipient type %T", args[0]), nil)
	}
	amount, ok := args[1].(*big.Int)
	if !ok {
		return common.Address{}, nil, NewBatchError(ErrCodeEncodingFailed, fmt.Sprintf("unexpected amount type %T", args[1]), nil)
	}
	return to, amount, nil
}
