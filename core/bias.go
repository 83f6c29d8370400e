package core

import "github.com/sarchlab/systolica/gemm"

// biasAdder is the registered one-tick stage between the array's bottom row
// and the deskew aligner. Each lane adds the column-skewed bias value to the
// partial sum emerging from the same column; invalid partial sums pass
// through unchanged.
type biasAdder struct {
	width    int
	cur, nxt []gemm.Psum
}

func newBiasAdder(width int) *biasAdder {
	return &biasAdder{
		width: width,
		cur:   make([]gemm.Psum, width),
		nxt:   make([]gemm.Psum, width),
	}
}

// Evaluate returns the current output registers and stages the sum of this
// tick's inputs.
func (b *biasAdder) Evaluate(psums, bias []gemm.Psum) []gemm.Psum {
	for j := 0; j < b.width; j++ {
		b.nxt[j] = psums[j]
		if psums[j].Valid && bias[j].Valid {
			b.nxt[j].Value += bias[j].Value
		}
	}

	return b.cur
}

func (b *biasAdder) Commit() {
	b.cur, b.nxt = b.nxt, b.cur
}

func (b *biasAdder) Reset() {
	for j := range b.cur {
		b.cur[j] = gemm.Psum{}
		b.nxt[j] = gemm.Psum{}
	}
}
