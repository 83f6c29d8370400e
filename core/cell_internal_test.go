package core

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/systolica/gemm"
)

var _ = Describe("Cell", func() {
	var c cell

	dims := gemm.Dims{M: 2, K: 2, N: 2}

	BeforeEach(func() {
		c = cell{row: 1, col: 1}
	})

	Context("weight loading", func() {
		It("should capture a weight whose index matches its row", func() {
			c.evaluate(
				gemm.RowCtl{},
				gemm.ColCtl{Weight: 7, Index: 1, Accept: true},
				gemm.Psum{},
			)
			c.commit()

			Expect(c.cur.inactiveWeight).To(Equal(int8(7)))
			Expect(c.cur.colOut.Accept).To(BeFalse())
		})

		It("should forward a weight destined for a lower row", func() {
			c = cell{row: 0, col: 1}

			c.evaluate(
				gemm.RowCtl{},
				gemm.ColCtl{Weight: 7, Index: 1, Accept: true},
				gemm.Psum{},
			)
			c.commit()

			Expect(c.cur.inactiveWeight).To(Equal(int8(0)))
			Expect(c.cur.colOut).To(Equal(
				gemm.ColCtl{Weight: 7, Index: 1, Accept: true}))
		})

		It("should not touch the active weight while loading", func() {
			c.cur.activeWeight = 3

			c.evaluate(
				gemm.RowCtl{},
				gemm.ColCtl{Weight: 7, Index: 1, Accept: true},
				gemm.Psum{},
			)
			c.commit()

			Expect(c.cur.activeWeight).To(Equal(int8(3)))
		})
	})

	Context("switching", func() {
		It("should promote the staged weight on a switch pulse", func() {
			c.cur.activeWeight = 3
			c.cur.inactiveWeight = 9

			c.evaluate(
				gemm.RowCtl{Data: 2, Valid: true, Switch: true, Dims: dims},
				gemm.ColCtl{},
				gemm.Psum{},
			)
			c.commit()

			Expect(c.cur.activeWeight).To(Equal(int8(9)))
		})

		It("should use the promoted weight in the same cycle", func() {
			c.cur.inactiveWeight = 9

			c.evaluate(
				gemm.RowCtl{Data: 2, Valid: true, Switch: true, Dims: dims},
				gemm.ColCtl{},
				gemm.Psum{Value: 5, Valid: true},
			)
			c.commit()

			Expect(c.cur.psumOut).To(Equal(gemm.Psum{Value: 23, Valid: true}))
		})

		It("should disable itself when outside the block shape", func() {
			c.cur.enabled = true

			c.evaluate(
				gemm.RowCtl{
					Data: 2, Valid: true, Switch: true,
					Dims: gemm.Dims{M: 1, K: 1, N: 1},
				},
				gemm.ColCtl{},
				gemm.Psum{Value: 5, Valid: true},
			)
			c.commit()

			Expect(c.cur.enabled).To(BeFalse())
			Expect(c.cur.psumOut).To(Equal(gemm.Psum{Value: 5, Valid: true}))
		})
	})

	Context("accumulation", func() {
		BeforeEach(func() {
			c.cur.activeWeight = 4
			c.cur.enabled = true
		})

		It("should multiply and accumulate on valid data", func() {
			c.evaluate(
				gemm.RowCtl{Data: -3, Valid: true},
				gemm.ColCtl{},
				gemm.Psum{Value: 100, Valid: true},
			)
			c.commit()

			Expect(c.cur.psumOut).To(Equal(gemm.Psum{Value: 88, Valid: true}))
		})

		It("should pass the partial sum through on a bubble", func() {
			c.evaluate(
				gemm.RowCtl{},
				gemm.ColCtl{},
				gemm.Psum{Value: 100, Valid: true},
			)
			c.commit()

			Expect(c.cur.psumOut).To(Equal(gemm.Psum{Value: 100, Valid: true}))
		})

		It("should register the row signal for the east neighbor", func() {
			in := gemm.RowCtl{Data: -3, Valid: true, Dims: dims}

			c.evaluate(in, gemm.ColCtl{}, gemm.Psum{})
			c.commit()

			Expect(c.cur.rowOut).To(Equal(in))
		})
	})
})
