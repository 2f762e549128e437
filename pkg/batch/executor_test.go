package batch_test

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/shivamsri07/mutisend-sdk/pkg/batch"
)

type recorderFunc func(ctx context.Context, record batch.ExecutionRecord) error

func (f recorderFunc) RecordExecution(ctx context.Context, record batch.ExecutionRecord) error {
	return f(ctx, record)
}

var _ = Describe("ExecuteBatch", func() {
	var (
		ctx   context.Context
		chain *fakeChain
		b     *batch.Batch
		owner = common.HexToAddress("0x00000000000000000000000000000000000000a1")
		proxy = common.HexToAddress("0x00000000000000000000000000000000000000b2")
		addr1 = common.HexToAddress("0x00000000000000000000000000000000000000c3")
		addr2 = common.HexToAddress("0x00000000000000000000000000000000000000d4")
		token = common.HexToAddress("0x00000000000000000000000000000000000000e5")
		ether = big.NewInt(1_000_000_000_000_000_000)
	)

	BeforeEach(func() {
		ctx = context.Background()
		chain = newFakeChain(owner, proxy)
		chain.fund(owner, new(big.Int).Mul(ether, big.NewInt(10)))
		b = batch.New(newTestLogger(), proxy)
	})

	It("forwards a value transfer verbatim and clears the queue", func() {
		before := chain.balance(addr1)
		Expect(b.AddEtherTransfer(addr1, "1.0")).To(Succeed())
		Expect(b.Count()).To(Equal(1))

		result, err := b.ExecuteBatch(ctx, chain, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Status).To(Equal(batch.StatusSuccess))
		Expect(result.TransactionHash).NotTo(Equal(common.Hash{}))
		Expect(result.GasUsed).To(Equal(uint64(30_000)))

		gained := new(big.Int).Sub(chain.balance(addr1), before)
		Expect(gained.Cmp(ether)).To(Equal(0))
		Expect(b.Count()).To(Equal(0))
	})

	It("transfers tokens from a pre-funded proxy", func() {
		fifty := new(big.Int).Mul(ether, big.NewInt(50))
		chain.fundToken(token, proxy, new(big.Int).Mul(ether, big.NewInt(100)))
		before := chain.tokenBalance(token, addr1)

		Expect(b.AddTokenTransfer(token, addr1, fifty)).To(Succeed())
		_, err := b.ExecuteBatch(ctx, chain, nil)
		Expect(err).NotTo(HaveOccurred())

		gained := new(big.Int).Sub(chain.tokenBalance(token, addr1), before)
		Expect(gained.Cmp(fifty)).To(Equal(0))
		Expect(chain.tokenBalance(token, proxy).Cmp(fifty)).To(Equal(0))
	})

	It("executes mixed transfers in a single call", func() {
		chain.fundToken(token, proxy, big.NewInt(500))
		Expect(b.AddValueTransfer(addr1, big.NewInt(7))).To(Succeed())
		Expect(b.AddTokenTransfer(token, addr2, big.NewInt(300))).To(Succeed())
		Expect(b.AddValueTransfer(addr2, big.NewInt(5))).To(Succeed())

		_, err := b.ExecuteBatch(ctx, chain, nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(chain.submitted).To(HaveLen(1))
		Expect(chain.submitted[0].Value.String()).To(Equal("12"))
		Expect(chain.balance(addr1).String()).To(Equal("7"))
		Expect(chain.balance(addr2).String()).To(Equal("5"))
		Expect(chain.tokenBalance(token, addr2).String()).To(Equal("300"))
	})

	It("uses caller-provided gas settings without estimating", func() {
		Expect(b.AddValueTransfer(addr1, big.NewInt(1))).To(Succeed())
		settings := &batch.GasSettings{GasLimit: 500_000, GasPrice: big.NewInt(3_000_000_000), Tier: batch.TierFast}

		result, err := b.ExecuteBatch(ctx, chain, settings)
		Expect(err).NotTo(HaveOccurred())
		Expect(chain.estimates).To(BeEmpty())
		Expect(chain.submitted[0].GasLimit).To(Equal(uint64(500_000)))
		Expect(chain.submitted[0].GasPrice.String()).To(Equal("3000000000"))
		Expect(result.EffectiveGasPrice.String()).To(Equal("3000000000"))
	})

	It("derives gas settings from the network when none are given", func() {
		Expect(b.AddValueTransfer(addr1, big.NewInt(1))).To(Succeed())
		chain.header.GasUsed = chain.header.GasLimit

		_, err := b.ExecuteBatch(ctx, chain, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(chain.submitted[0].GasLimit).To(Equal(uint64(36_000)))
		Expect(chain.submitted[0].GasPrice.String()).To(Equal("1100000000"))
	})

	It("submits an empty batch as a no-op", func() {
		result, err := b.ExecuteBatch(ctx, chain, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Status).To(Equal(batch.StatusSuccess))
		Expect(chain.submitted[0].Value.Sign()).To(Equal(0))
	})

	Context("when execution fails", func() {
		It("keeps the queue when the proxy is under-funded", func() {
			chain.fundToken(token, proxy, big.NewInt(10))
			Expect(b.AddTokenTransfer(token, addr1, big.NewInt(50))).To(Succeed())
			settings := &batch.GasSettings{GasLimit: 100_000, GasPrice: big.NewInt(1)}

			result, err := b.ExecuteBatch(ctx, chain, settings)
			Expect(result).To(BeNil())
			Expect(batch.IsBatchError(err, batch.ErrCodeTransactionFailed)).To(BeTrue())
			Expect(b.Count()).To(Equal(1))
			Expect(chain.tokenBalance(token, addr1).Sign()).To(Equal(0))
		})

		It("keeps the queue when gas settings cannot be derived", func() {
			chain.fundToken(token, proxy, big.NewInt(10))
			Expect(b.AddTokenTransfer(token, addr1, big.NewInt(50))).To(Succeed())

			_, err := b.ExecuteBatch(ctx, chain, nil)
			Expect(batch.IsBatchError(err, batch.ErrCodeTransactionFailed)).To(BeTrue())
			Expect(batch.IsBatchError(err, batch.ErrCodeSimulationFailed)).To(BeTrue())
			Expect(b.Count()).To(Equal(1))
			Expect(chain.submitted).To(BeEmpty())
		})

		It("keeps the queue when submission is rejected", func() {
			cause := errors.New("nonce too low")
			chain.submitErr = cause
			Expect(b.AddValueTransfer(addr1, big.NewInt(1))).To(Succeed())

			_, err := b.ExecuteBatch(ctx, chain, nil)
			Expect(batch.IsBatchError(err, batch.ErrCodeTransactionFailed)).To(BeTrue())
			Expect(errors.Is(err, cause)).To(BeTrue())
			Expect(b.Count()).To(Equal(1))
		})

		It("can be retried once the cause is fixed", func() {
			chain.submitErr = errors.New("temporarily unavailable")
			Expect(b.AddValueTransfer(addr1, big.NewInt(9))).To(Succeed())

			_, err := b.ExecuteBatch(ctx, chain, nil)
			Expect(err).To(HaveOccurred())

			chain.submitErr = nil
			_, err = b.ExecuteBatch(ctx, chain, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(chain.balance(addr1).String()).To(Equal("9"))
			Expect(b.Count()).To(Equal(0))
		})
	})

	Context("with a recorder", func() {
		It("hands over the executed batch", func() {
			var records []batch.ExecutionRecord
			b.SetRecorder(recorderFunc(func(ctx context.Context, record batch.ExecutionRecord) error {
				records = append(records, record)
				return nil
			}))
			Expect(b.AddValueTransfer(addr1, big.NewInt(4))).To(Succeed())

			result, err := b.ExecuteBatch(ctx, chain, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(records).To(HaveLen(1))
			Expect(records[0].Proxy).To(Equal(proxy))
			Expect(records[0].From).To(Equal(owner))
			Expect(records[0].Transactions).To(HaveLen(1))
			Expect(records[0].TotalValue.String()).To(Equal("4"))
			Expect(records[0].Result.TransactionHash).To(Equal(result.TransactionHash))
		})

		It("does not fail a confirmed batch when recording fails", func() {
			b.SetRecorder(recorderFunc(func(ctx context.Context, record batch.ExecutionRecord) error {
				return errors.New("database unavailable")
			}))
			Expect(b.AddValueTransfer(addr1, big.NewInt(4))).To(Succeed())

			_, err := b.ExecuteBatch(ctx, chain, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(b.Count()).To(Equal(0))
		})

		It("records nothing for a failed batch", func() {
			called := false
			b.SetRecorder(recorderFunc(func(ctx context.Context, record batch.ExecutionRecord) error {
				called = true
				return nil
			}))
			chain.submitErr = errors.New("rejected")
			Expect(b.AddValueTransfer(addr1, big.NewInt(4))).To(Succeed())

			_, err := b.ExecuteBatch(ctx, chain, nil)
			Expect(err).To(HaveOccurred())
			Expect(called).To(BeFalse())
		})
	})
})
