// Package verify cross-checks the cycle-accurate engine against a plain
// functional model. The model computes what a block must produce with no
// notion of wavefronts or timing, so any disagreement isolates a scheduling
// or alignment bug rather than an arithmetic one.
package verify

import "github.com/sarchlab/systolica/gemm"

// RefGemm computes D = A*B + C for one block. It reads only the dims-shaped
// sub-matrices of its inputs and returns dims.M rows padded to the array
// width, matching the layout of the result region.
func RefGemm(width int, dims gemm.Dims, a, b, c [][]int32) [][]int32 {
	d := make([][]int32, dims.M)
	for r := range d {
		d[r] = make([]int32, width)
		for j := 0; j < dims.N; j++ {
			acc := c[r][j]
			for i := 0; i < dims.K; i++ {
				acc += a[r][i] * b[i][j]
			}
			d[r][j] = acc
		}
	}

	return d
}
