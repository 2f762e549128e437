package batch

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// Batch is an ordered queue of pending transfers bound to one multi-send proxy.
// Transactions execute in insertion order as a single on-chain call.
//
// A Batch is meant to be driven by one caller at a time; it does no internal
// locking. Callers must not add transactions while ExecuteBatch is running.
type Batch struct {
	proxy        common.Address
	transactions []Transaction
	recorder     Recorder
	log          *logrus.Logger
}

// New creates an empty batch that executes through the multi-send proxy at
// proxyAddress.
//
// Parameters:
//   - log: Logger for batch operations; a default logger is used when nil
//   - proxyAddress: Address of the deployed multi-send proxy contract
//
// Example:
//
//	b := batch.New(logger, common.HexToAddress("0x40A2aCCbd92BCA938b02010E17A5b8929b49130D"))
//	_ = b.AddEtherTransfer(recipient, "1.0")
//	result, err := b.ExecuteBatch(ctx, signer, nil)
func New(log *logrus.Logger, proxyAddress common.Address) *Batch {
	if log == nil {
		log = logrus.New()
	}
	return &Batch{
		proxy: proxyAddress,
		log:   log,
	}
}

// Proxy returns the address of the multi-send proxy this batch executes through.
func (b *Batch) Proxy() common.Address {
	return b.proxy
}

// SetRecorder registers a recorder that is handed every successfully executed
// batch. Passing nil disables recording.
func (b *Batch) SetRecorder(r Recorder) {
	b.recorder = r
}

// AddValueTransfer queues a plain native-currency transfer of amount wei to the
// destination.
//
// Returns an InvalidAmount error if amount is nil, negative or wider than 256 bits.
func (b *Batch) AddValueTransfer(to common.Address, amount *big.Int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}

	b.push(Transaction{To: to, Value: amount})
	return nil
}

// AddEtherTransfer queues a native-currency transfer given in decimal native
// units, e.g. "1.0" for one ether.
func (b *Batch) AddEtherTransfer(to common.Address, amount string) error {
	wei, err := ParseEther(amount)
	if err != nil {
		return err
	}

	b.push(Transaction{To: to, Value: wei})
	return nil
}

// AddTokenTransfer queues an ERC20 transfer of amount base units of token to the
// destination. The call runs from the proxy, so the proxy must hold at least
// amount tokens when the batch executes; this is not checked here.
//
// Parameters:
//   - token: Address of the ERC20 token contract
//   - to: Recipient of the tokens
//   - amount: Amount in the token's base units
func (b *Batch) AddTokenTransfer(token, to common.Address, amount *big.Int) error {
	data, err := EncodeERC20Transfer(to, amount)
	if err != nil {
		return err
	}

	b.push(Transaction{To: token, Value: new(big.Int), Data: data})
	return nil
}

// Clear empties the queue.
func (b *Batch) Clear() {
	b.transactions = nil
}

// Count returns the number of queued transactions.
func (b *Batch) Count() int {
	return len(b.transactions)
}

// Transactions returns a copy of the queue in execution order.
func (b *Batch) Transactions() []Transaction {
	out := make([]Transaction, len(b.transactions))
	for i, tx := range b.transactions {
		out[i] = copyTransaction(tx)
	}
	return out
}

// TotalValue returns the sum of the native value of all queued transactions,
// which is the value attached to the multi-send call.
func (b *Batch) TotalValue() *big.Int {
	total := new(big.Int)
	for _, tx := range b.transactions {
		total.Add(total, tx.Value)
	}
	return total
}

// Encode packs the queue into the multi-send wire format.
func (b *Batch) Encode() []byte {
	return EncodeMultiSend(b.transactions)
}

func (b *Batch) push(tx Transaction) {
	tx = copyTransaction(tx)
	b.transactions = append(b.transactions, tx)

	b.log.WithFields(logrus.Fields{
		"proxy":    b.proxy.Hex(),
		"to":       tx.To.Hex(),
		"value":    tx.Value.String(),
		"data_len": len(tx.Data),
		"count":    len(b.transactions),
	}).Debug("Queued transaction")
}

func copyTransaction(tx Transaction) Transaction {
	out := Transaction{To: tx.To, Value: new(big.Int)}
	if tx.Value != nil {
		out.Value.Set(tx.Value)
	}
	if len(tx.Data) > 0 {
		out.Data = append([]byte(nil), tx.Data...)
	}
	return out
}
