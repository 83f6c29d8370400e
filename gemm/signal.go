package gemm

// RowCtl is the bundle that travels west to east along one row of the array:
// one operand byte, its valid flag, and the weight-switch pulse. The dims of
// the block the pulse belongs to ride along with it, so every cell latches
// its activity mask from the same wavefront that latches its weight.
type RowCtl struct {
	Data   int8
	Valid  bool
	Switch bool
	Dims   Dims
}

// ColCtl is the bundle that travels north to south along one column during
// weight load. Index counts down to the stationary row the weight is bound
// for; a cell whose row identity matches consumes the weight and stops the
// southward forward.
type ColCtl struct {
	Weight int8
	Index  int
	Accept bool
}

// Psum is one partial sum flowing down a column's accumulation chain.
type Psum struct {
	Value int32
	Valid bool
}
