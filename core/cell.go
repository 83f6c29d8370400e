package core

import "github.com/sarchlab/systolica/gemm"

// cellState holds the registered state of one cell: the double-buffered
// weight pair, the latched activity bit, and the outputs presented to the
// east and south neighbors.
type cellState struct {
	activeWeight   int8
	inactiveWeight int8
	enabled        bool

	rowOut  gemm.RowCtl
	colOut  gemm.ColCtl
	psumOut gemm.Psum
}

// A cell is one multiply-accumulate unit of the array. It evaluates in two
// phases: evaluate computes the next state purely from the current state and
// the current inputs, commit latches it at the tick boundary. No cell ever
// observes a neighbor's next state within the same tick.
type cell struct {
	row, col int

	cur, nxt cellState
}

// evaluate runs one cycle of the cell.
//
// The weight-load plane is structural: it consumes or forwards ColCtl purely
// on index match, ignoring the activity mask. The weights in flight may
// belong to a later block than the one the mask describes, so gating this
// plane on `enabled` would strand weight rows that the current block masks
// off.
//
// The MAC plane is gated by the latched `enabled` bit. The bit is re-latched
// from the dims riding the switch pulse, so the mask update travels with the
// same wavefront as the weight switch and cannot go stale across a block
// boundary.
func (c *cell) evaluate(rowIn gemm.RowCtl, colIn gemm.ColCtl, psumIn gemm.Psum) {
	n := c.cur
	n.rowOut = rowIn

	n.colOut = gemm.ColCtl{}
	if colIn.Accept {
		if colIn.Index == c.row {
			n.inactiveWeight = colIn.Weight
		} else {
			n.colOut = colIn
		}
	}

	weight := c.cur.activeWeight
	enabled := c.cur.enabled
	if rowIn.Switch {
		weight = c.cur.inactiveWeight
		enabled = c.row < rowIn.Dims.K && c.col < rowIn.Dims.N
	}
	n.activeWeight = weight
	n.enabled = enabled

	if enabled && rowIn.Valid {
		n.psumOut = gemm.Psum{
			Value: int32(rowIn.Data)*int32(weight) + psumIn.Value,
			Valid: true,
		}
	} else {
		// A bubble in the input stream, or a masked-off lane: the
		// accumulation in flight passes through untouched.
		n.psumOut = psumIn
	}

	c.nxt = n
}

func (c *cell) commit() {
	c.cur = c.nxt
}

func (c *cell) reset() {
	c.cur = cellState{}
	c.nxt = cellState{}
}
