package wallet

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// addressRegex is a regular expression for validating the basic format of Ethereum-style addresses.
	// It checks for a "0x" prefix followed by exactly 40 hexadecimal characters.
	addressRegex = regexp.MustCompile("^0x[0-9a-fA-F]{40}$")
)

// ParseAddress validates an address string and converts it. All-lowercase and
// all-uppercase hex is accepted as is; mixed case must carry a valid EIP-55
// checksum.
//
// Example:
//
//	proxy, err := ParseAddress("0x742d35Cc6634C0532925a3b844Bc454e4438f44e")
//	if err != nil {
//	    log.Fatal(err)
//	}
func ParseAddress(address string) (common.Address, error) {
	if !addressRegex.MatchString(address) {
		return common.Address{}, NewWalletError(
			ErrCodeInvalidAddress,
			fmt.Sprintf("invalid address format %q", address),
			nil,
			0,
		)
	}

	addr := common.HexToAddress(address)

	body := address[2:]
	if body != strings.ToLower(body) && body != strings.ToUpper(body) && address != addr.Hex() {
		return common.Address{}, NewWalletError(
			ErrCodeInvalidAddress,
			fmt.Sprintf("invalid address checksum %q", address),
			nil,
			0,
		)
	}

	return addr, nil
}
