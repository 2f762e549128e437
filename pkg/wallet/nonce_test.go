package wallet

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type staticNonceSource struct {
	nonce uint64
	err   error
}

func (s staticNonceSource) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return s.nonce, s.err
}

var _ = Describe("NonceManager", func() {
	var (
		ctx context.Context
		nm  *NonceManager
	)

	BeforeEach(func() {
		ctx = context.Background()
		nm = newNonceManager(common.HexToAddress("0x01"))
	})

	It("skips nonces that are still in flight", func() {
		source := staticNonceSource{nonce: 7}

		first, err := nm.GetNonce(ctx, source)
		Expect(err).NotTo(HaveOccurred())
		second, err := nm.GetNonce(ctx, source)
		Expect(err).NotTo(HaveOccurred())

		Expect(first).To(Equal(uint64(7)))
		Expect(second).To(Equal(uint64(8)))
		Expect(nm.Pending()).To(Equal(2))
	})

	It("reuses a nonce once released", func() {
		source := staticNonceSource{nonce: 3}

		nonce, err := nm.GetNonce(ctx, source)
		Expect(err).NotTo(HaveOccurred())
		nm.ReleaseNonce(nonce)

		again, err := nm.GetNonce(ctx, source)
		Expect(err).NotTo(HaveOccurred())
		Expect(again).To(Equal(nonce))
	})

	It("reports node failures as RPC errors", func() {
		_, err := nm.GetNonce(ctx, staticNonceSource{err: errors.New("boom")})
		Expect(IsWalletError(err, ErrCodeRPCError)).To(BeTrue())
		Expect(nm.Pending()).To(Equal(0))
	})
})

var _ = Describe("confirmationsAt", func() {
	It("counts the inclusion block", func() {
		Expect(confirmationsAt(10, 10)).To(Equal(uint64(1)))
		Expect(confirmationsAt(12, 10)).To(Equal(uint64(3)))
		Expect(confirmationsAt(9, 10)).To(Equal(uint64(0)))
	})
})
