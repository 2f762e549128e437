package batch

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// etherDecimals is the number of decimals between wei and one native unit
const etherDecimals = 18

// ParseEther converts a decimal native-unit amount such as "1.5" into wei.
// It rejects malformed input, negative amounts and amounts with more than 18
// fractional digits.
func ParseEther(amount string) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, NewBatchError(ErrCodeInvalidAmount, "amount is empty", nil)
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, NewBatchError(ErrCodeInvalidAmount, fmt.Sprintf("malformed amount %q", amount), err)
	}
	if d.IsNegative() {
		return nil, NewBatchError(ErrCodeInvalidAmount, fmt.Sprintf("negative amount %q", amount), nil)
	}

	wei := d.Shift(etherDecimals)
	if !wei.Equal(wei.Truncate(0)) {
		return nil, NewBatchError(ErrCodeInvalidAmount, fmt.Sprintf("amount %q has more than %d decimals", amount, etherDecimals), nil)
	}

	value := wei.BigInt()
	if err := validateAmount(value); err != nil {
		return nil, err
	}
	return value, nil
}

// FormatEther renders a wei amount in native units, e.g. 1500000000000000000 as
// "1.5". Whole amounts keep one fractional digit: "1.0", "0.0".
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0.0"
	}
	d := decimal.NewFromBigInt(wei, -etherDecimals)
	if d.Equal(d.Truncate(0)) {
		return d.StringFixed(1)
	}
	return d.String()
}

// validateAmount checks that v can be carried in a 32-byte unsigned word.
func validateAmount(v *big.Int) error {
	if v == nil {
		return NewBatchError(ErrCodeInvalidAmount, "amount is nil", nil)
	}
	if v.Sign() < 0 {
		return NewBatchError(ErrCodeInvalidAmount, fmt.Sprintf("negative amount %s", v), nil)
	}
	if _, overflow := uint256.FromBig(v); overflow {
		return NewBatchError(ErrCodeInvalidAmount, fmt.Sprintf("amount %s exceeds 256 bits", v), nil)
	}
	return nil
}
