package core

import "github.com/sarchlab/systolica/gemm"

// computeArray is the W×W grid of cells. The grid is a flat arena indexed by
// row*width+col; neighbors are found by index arithmetic, cells never have
// independent lifetime.
//
// RowCtl enters at the west edge (one skewed lane per row) and propagates
// east. ColCtl enters at the north edge (one skewed lane per column) and
// propagates south until consumed. Partial sums accumulate north to south;
// the bottom row's psum registers are the array's raw, still column-skewed
// result stream.
type computeArray struct {
	width  int
	cells  []cell
	bottom []gemm.Psum
}

func newComputeArray(width int) *computeArray {
	a := &computeArray{
		width:  width,
		cells:  make([]cell, width*width),
		bottom: make([]gemm.Psum, width),
	}

	for r := 0; r < width; r++ {
		for c := 0; c < width; c++ {
			a.cells[r*width+c] = cell{row: r, col: c}
		}
	}

	return a
}

func (a *computeArray) at(row, col int) *cell {
	return &a.cells[row*a.width+col]
}

// Evaluate runs the compute phase of every cell against the current neighbor
// registers and returns the current bottom-row outputs, one column-skewed
// Psum per column. Nothing is latched until Commit.
func (a *computeArray) Evaluate(rowIn []gemm.RowCtl, colIn []gemm.ColCtl) []gemm.Psum {
	for col := 0; col < a.width; col++ {
		a.bottom[col] = a.at(a.width-1, col).cur.psumOut
	}

	for row := 0; row < a.width; row++ {
		for col := 0; col < a.width; col++ {
			var rIn gemm.RowCtl
			if col == 0 {
				rIn = rowIn[row]
			} else {
				rIn = a.at(row, col-1).cur.rowOut
			}

			var cIn gemm.ColCtl
			var pIn gemm.Psum
			if row == 0 {
				cIn = colIn[col]
			} else {
				cIn = a.at(row-1, col).cur.colOut
				pIn = a.at(row-1, col).cur.psumOut
			}

			a.at(row, col).evaluate(rIn, cIn, pIn)
		}
	}

	return a.bottom
}

// Commit latches every cell's next state at the tick boundary.
func (a *computeArray) Commit() {
	for i := range a.cells {
		a.cells[i].commit()
	}
}

func (a *computeArray) Reset() {
	for i := range a.cells {
		a.cells[i].reset()
	}
}
