package batch

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// OperationCall is the only operation this package emits. The multi-send
// contract also understands 1 (delegate call), which is never produced here.
const OperationCall byte = 0

const (
	operationSize = 1
	addressSize   = common.AddressLength
	wordSize      = 32

	// entryHeaderSize is the fixed part of one packed entry: op | to | value | length
	entryHeaderSize = operationSize + addressSize + wordSize + wordSize
)

// multiSendABI is the proxy's entry point. The packed batch is passed as a
// single dynamic bytes argument and the total value is attached to the call.
const multiSendABI = `[
	{
		"inputs": [{"internalType": "bytes", "name": "transactions", "type": "bytes"}],
		"name": "multiSend",
		"outputs": [],
		"stateMutability": "payable",
		"type": "function"
	}
]`

// EncodeMultiSend packs the transactions in order into the multi-send wire
// format. Each entry is laid out without padding as
//
//	operation (1 byte) | to (20 bytes) | value (32 bytes, big-endian) |
//	data length (32 bytes, big-endian) | data
//
// An empty list encodes to an empty slice.
func EncodeMultiSend(txs []Transaction) []byte {
	size := 0
	for _, tx := range txs {
		size += entryHeaderSize + len(tx.Data)
	}

	out := make([]byte, 0, size)
	for _, tx := range txs {
		value := uint256.MustFromBig(valueOrZero(tx.Value)).Bytes32()
		length := uint256.NewInt(uint64(len(tx.Data))).Bytes32()

		out = append(out, OperationCall)
		out = append(out, tx.To.Bytes()...)
		out = append(out, value[:]...)
		out = append(out, length[:]...)
		out = append(out, tx.Data...)
	}
	return out
}

// DecodeMultiSend is the inverse of EncodeMultiSend.
func DecodeMultiSend(encoded []byte) ([]Transaction, error) {
	var txs []Transaction
	for offset := 0; offset < len(encoded); {
		if len(encoded)-offset < entryHeaderSize {
			return nil, NewBatchError(ErrCodeEncodingFailed,
				fmt.Sprintf("truncated entry header at offset %d", offset), nil)
		}

		entry := encoded[offset:]
		if op := entry[0]; op != OperationCall {
			return nil, NewBatchError(ErrCodeEncodingFailed,
				fmt.Sprintf("unsupported operation %d at offset %d", op, offset), nil)
		}

		to := common.BytesToAddress(entry[operationSize : operationSize+addressSize])
		valueStart := operationSize + addressSize
		value := new(big.Int).SetBytes(entry[valueStart : valueStart+wordSize])
		length := new(big.Int).SetBytes(entry[valueStart+wordSize : entryHeaderSize])

		remaining := len(entry) - entryHeaderSize
		if !length.IsUint64() || length.Uint64() > uint64(remaining) {
			return nil, NewBatchError(ErrCodeEncodingFailed,
				fmt.Sprintf("data length %s exceeds remaining %d bytes at offset %d", length, remaining, offset), nil)
		}

		n := int(length.Uint64())
		data := make([]byte, n)
		copy(data, entry[entryHeaderSize:entryHeaderSize+n])

		txs = append(txs, Transaction{To: to, Value: value, Data: data})
		offset += entryHeaderSize + n
	}
	return txs, nil
}

// PackMultiSendCall ABI-encodes the proxy call multiSend(bytes) carrying the
// packed batch.
func PackMultiSendCall(encoded []byte) ([]byte, error) {
	parsedABI, err := abi.JSON(strings.NewReader(multiSendABI))
	if err != nil {
		return nil, NewBatchError(ErrCodeEncodingFailed, "failed to parse multiSend ABI", err)
	}

	data, err := parsedABI.Pack("multiSend", encoded)
	if err != nil {
		return nil, NewBatchError(ErrCodeEncodingFailed, "failed to pack multiSend call", err)
	}
	return data, nil
}

// UnpackMultiSendCall extracts the packed batch from multiSend(bytes) calldata.
func UnpackMultiSendCall(calldata []byte) ([]byte, error) {
	parsedABI, err := abi.JSON(strings.NewReader(multiSendABI))
	if err != nil {
		return nil, NewBatchError(ErrCodeEncodingFailed, "failed to parse multiSend ABI", err)
	}

	method, err := parsedABI.MethodById(calldata)
	if err != nil || method.Name != "multiSend" {
		return nil, NewBatchError(ErrCodeEncodingFailed, "calldata is not a multiSend call", err)
	}

	args, err := method.Inputs.Unpack(calldata[4:])
	if err != nil {
		return nil, NewBatchError(ErrCodeEncodingFailed, "failed to unpack multiSend arguments", err)
	}

	encoded, ok := args[0].([]byte)
	if !ok {
		return nil, NewBatchError(ErrCodeEncodingFailed, "multiSend argument is not bytes", nil)
	}
	return encoded, nil
}

func valueOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
