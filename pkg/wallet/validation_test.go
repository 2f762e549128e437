package wallet_test

import (
	"github.com/ethereum/go-ethereum/common"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/shivamsri07/mutisend-sdk/pkg/wallet"
)

var _ = Describe("ParseAddress", func() {
	const checksummed = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"

	DescribeTable("accepts",
		func(input string) {
			addr, err := wallet.ParseAddress(input)
			Expect(err).NotTo(HaveOccurred())
			Expect(addr).To(Equal(common.HexToAddress(checksummed)))
		},
		Entry("checksummed", checksummed),
		Entry("lowercase", "0x742d35cc6634c0532925a3b844bc454e4438f44e"),
		Entry("uppercase", "0x742D35CC6634C0532925A3B844BC454E4438F44E"),
	)

	DescribeTable("rejects",
		func(input string) {
			_, err := wallet.ParseAddress(input)
			Expect(wallet.IsWalletError(err, wallet.ErrCodeInvalidAddress)).To(BeTrue())
		},
		Entry("empty", ""),
		Entry("missing prefix", "742d35Cc6634C0532925a3b844Bc454e4438f44e"),
		Entry("too short", "0x742d35Cc6634C0532925a3b844Bc454e4438f4"),
		Entry("non-hex", "0x742d35Cc6634C0532925a3b844Bc454e4438f44g"),
		Entry("bad checksum", "0x742d35cC6634C0532925a3b844Bc454e4438f44e"),
	)
})
