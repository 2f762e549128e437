package wallet_test

import (
	"math/big"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/shivamsri07/mutisend-sdk/pkg/wallet"
)

var _ = Describe("NetworkConfig", func() {
	Context("Validate", func() {
		It("accepts the defaults", func() {
			Expect(wallet.DefaultNetworkConfig("http://localhost:8545").Validate()).To(Succeed())
		})

		DescribeTable("rejects",
			func(mutate func(c *wallet.NetworkConfig)) {
				config := wallet.DefaultNetworkConfig("http://localhost:8545")
				mutate(&config)
				Expect(wallet.IsWalletError(config.Validate(), wallet.ErrCodeInvalidConfig)).To(BeTrue())
			},
			Entry("missing RPC URL", func(c *wallet.NetworkConfig) { c.RPCURL = "" }),
			Entry("negative chain ID", func(c *wallet.NetworkConfig) { c.ChainID = -1 }),
			Entry("negative retries", func(c *wallet.NetworkConfig) { c.MaxRetries = -1 }),
			Entry("negative rate", func(c *wallet.NetworkConfig) { c.RequestsPerSecond = -1 }),
			Entry("zero receipt timeout", func(c *wallet.NetworkConfig) { c.ReceiptTimeout = 0 }),
			Entry("zero poll interval", func(c *wallet.NetworkConfig) { c.PollInterval = 0 }),
			Entry("zero confirmations", func(c *wallet.NetworkConfig) { c.Confirmations = 0 }),
			Entry("zero max gas price", func(c *wallet.NetworkConfig) { c.MaxGasPrice = big.NewInt(0) }),
		)
	})

	Context("NewNetworkConfigFromEnv", func() {
		keys := []string{
			"RPC_URL", "CHAIN_ID", "RPC_MAX_RETRIES", "RPC_RETRY_DELAY", "RPC_REQUESTS_PER_SECOND",
			"RECEIPT_TIMEOUT", "RECEIPT_POLL_INTERVAL", "RECEIPT_CONFIRMATIONS", "MAX_GAS_PRICE_WEI",
		}

		BeforeEach(func() {
			saved := map[string]string{}
			for _, key := range keys {
				if v, ok := os.LookupEnv(key); ok {
					saved[key] = v
				}
				Expect(os.Unsetenv(key)).To(Succeed())
			}
			DeferCleanup(func() {
				for _, key := range keys {
					os.Unsetenv(key)
					if v, ok := saved[key]; ok {
						os.Setenv(key, v)
					}
				}
			})
		})

		It("reads every setting", func() {
			os.Setenv("RPC_URL", "http://node:8545")
			os.Setenv("CHAIN_ID", "11155111")
			os.Setenv("RPC_MAX_RETRIES", "5")
			os.Setenv("RPC_RETRY_DELAY", "250ms")
			os.Setenv("RPC_REQUESTS_PER_SECOND", "2.5")
			os.Setenv("RECEIPT_TIMEOUT", "1m")
			os.Setenv("RECEIPT_POLL_INTERVAL", "500ms")
			os.Setenv("RECEIPT_CONFIRMATIONS", "3")
			os.Setenv("MAX_GAS_PRICE_WEI", "50000000000")

			config, err := wallet.NewNetworkConfigFromEnv()
			Expect(err).NotTo(HaveOccurred())
			Expect(config.RPCURL).To(Equal("http://node:8545"))
			Expect(config.ChainID).To(Equal(int64(11155111)))
			Expect(config.MaxRetries).To(Equal(5))
			Expect(config.RetryDelay).To(Equal(250 * time.Millisecond))
			Expect(config.RequestsPerSecond).To(Equal(2.5))
			Expect(config.ReceiptTimeout).To(Equal(time.Minute))
			Expect(config.PollInterval).To(Equal(500 * time.Millisecond))
			Expect(config.Confirmations).To(Equal(uint64(3)))
			Expect(config.MaxGasPrice.String()).To(Equal("50000000000"))
		})

		It("falls back to defaults", func() {
			os.Setenv("RPC_URL", "http://node:8545")

			config, err := wallet.NewNetworkConfigFromEnv()
			Expect(err).NotTo(HaveOccurred())
			Expect(config.MaxRetries).To(Equal(wallet.DefaultMaxRetries))
			Expect(config.ReceiptTimeout).To(Equal(wallet.DefaultReceiptTimeout))
			Expect(config.Confirmations).To(Equal(uint64(wallet.DefaultConfirmations)))
			Expect(config.MaxGasPrice).To(BeNil())
		})

		It("requires an RPC URL", func() {
			_, err := wallet.NewNetworkConfigFromEnv()
			Expect(wallet.IsWalletError(err, wallet.ErrCodeInvalidConfig)).To(BeTrue())
		})

		DescribeTable("rejects malformed values",
			func(key, value string) {
				os.Setenv("RPC_URL", "http://node:8545")
				os.Setenv(key, value)

				_, err := wallet.NewNetworkConfigFromEnv()
				Expect(wallet.IsWalletError(err, wallet.ErrCodeInvalidConfig)).To(BeTrue())
			},
			Entry("receipt timeout", "RECEIPT_TIMEOUT", "soon"),
			Entry("negative confirmations", "RECEIPT_CONFIRMATIONS", "-1"),
			Entry("zero confirmations", "RECEIPT_CONFIRMATIONS", "0"),
			Entry("max gas price", "MAX_GAS_PRICE_WEI", "lots"),
		)
	})
})
