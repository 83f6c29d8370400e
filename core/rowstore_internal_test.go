package core

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/systolica/gemm"
)

var _ = Describe("RowStore", func() {
	Context("with 1-byte elements", func() {
		var s *rowStore

		BeforeEach(func() {
			s = newRowStore(gemm.SpaceA, 4, 1, 16)
		})

		It("should round-trip a row through the direct path", func() {
			s.WriteDirect(3, []int32{1, -2, 3, -4})

			Expect(s.ReadDirect(3)).To(Equal([]int32{1, -2, 3, -4}))
		})

		It("should zero-pad short rows", func() {
			s.WriteDirect(0, []int32{9})

			Expect(s.ReadDirect(0)).To(Equal([]int32{9, 0, 0, 0}))
		})

		It("should present a timed read one tick later", func() {
			s.WriteDirect(5, []int32{-128, 127, 0, 1})

			s.Read(5)
			Expect(s.Out().valid).To(BeFalse())
			s.Commit()

			out := s.Out()
			Expect(out.valid).To(BeTrue())
			Expect(out.data).To(Equal([]int32{-128, 127, 0, 1}))
		})

		It("should drop the output valid when no read is issued", func() {
			s.WriteDirect(5, []int32{1, 2, 3, 4})
			s.Read(5)
			s.Commit()
			s.Commit()

			Expect(s.Out().valid).To(BeFalse())
		})

		It("should apply a timed write before a same-address read", func() {
			s.Write(2, []int32{4, 5, 6, 7})
			s.Read(2)
			s.Commit()

			Expect(s.Out().data).To(Equal([]int32{4, 5, 6, 7}))
		})

		It("should panic on an out-of-range row address", func() {
			Expect(func() { s.Read(16) }).To(Panic())
		})
	})

	Context("with 4-byte elements", func() {
		It("should keep full accumulator precision", func() {
			s := newRowStore(gemm.SpaceC, 2, 4, 8)

			s.WriteDirect(1, []int32{-2147483648, 2147483647})

			Expect(s.ReadDirect(1)).To(Equal(
				[]int32{-2147483648, 2147483647}))
		})
	})
})
