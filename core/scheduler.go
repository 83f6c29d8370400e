package core

import "github.com/sarchlab/systolica/gemm"

// token carries a descriptor from one stage of the cascade to the next. A
// stage that is still busy parks the token in a one-deep pending slot.
type token struct {
	desc  gemm.Descriptor
	valid bool
}

// The *Issue registers remember what each stage asked its row store for on
// the previous tick, so the metadata can be reunited with the row emerging
// from the store this tick.
type weightIssue struct {
	accept bool
	index  int
}

type inputIssue struct {
	valid bool
	sw    bool
	dims  gemm.Dims
}

type biasIssue struct {
	valid bool
}

// wbBlock is one entry of the write-back FIFO. Its dims own the column mask
// used for the row-ready reduction while its rows are emerging.
type wbBlock struct {
	addrD    uint32
	dims     gemm.Dims
	seq      uint64
	rowsDone int
}

// schedFeeds are the flat, unskewed bundles presented to the aligners each
// tick.
type schedFeeds struct {
	col  []gemm.ColCtl
	row  []gemm.RowCtl
	bias []gemm.Psum
}

// doneEvent is emitted once per completed block.
type doneEvent struct {
	seq   uint64
	dims  gemm.Dims
	addrD uint32
}

// blockScheduler is the cascading controller: four cycle-counted pipelines
// chained by tokens. The weight stage is the single pacemaker; with a
// non-empty queue it re-arms on its gap tick, so block b starts its weight
// reads exactly b*(width+1) ticks after block 0 and every other stage runs
// at a fixed offset from it.
type blockScheduler struct {
	width   int
	biasLat int

	queue    []gemm.Descriptor
	queueCap int

	// Popped but not yet retired blocks. The component keeps ticking while
	// this is nonzero.
	tasksInFlight int

	wActive bool
	wCount  int
	wDesc   gemm.Descriptor
	wIssued weightIssue

	iActive  bool
	iCount   int
	iDesc    gemm.Descriptor
	iToken   token
	iPending token
	iIssued  inputIssue

	bBusy    bool
	bWait    int
	bCount   int
	bDesc    gemm.Descriptor
	bToken   token
	bPending token
	bIssued  biasIssue

	wb []wbBlock

	feeds schedFeeds
}

func newBlockScheduler(width, queueCap, biasLat int) *blockScheduler {
	if biasLat < width-2 {
		panic("bias latency must cover the input stage's trigger offset")
	}

	return &blockScheduler{
		width:    width,
		biasLat:  biasLat,
		queueCap: queueCap,
		feeds: schedFeeds{
			col:  make([]gemm.ColCtl, width),
			row:  make([]gemm.RowCtl, width),
			bias: make([]gemm.Psum, width),
		},
	}
}

// CanAccept reports whether the command queue has room. Producers must check
// it before submitting; at most one descriptor enters per tick.
func (s *blockScheduler) CanAccept() bool {
	return len(s.queue) < s.queueCap
}

// Submit appends one descriptor to the command queue. Descriptors are
// trusted here; dimension checking happens at the submission boundary.
func (s *blockScheduler) Submit(desc gemm.Descriptor) bool {
	if !s.CanAccept() {
		return false
	}

	s.queue = append(s.queue, desc)

	return true
}

// Busy reports whether any block is queued or in flight.
func (s *blockScheduler) Busy() bool {
	return s.tasksInFlight > 0 || len(s.queue) > 0
}

// Evaluate runs the front three stages for one tick: it first assembles the
// aligner feeds from the rows emerging out of the stores (issued last tick),
// then advances the stage counters and issues this tick's reads.
func (s *blockScheduler) Evaluate(bufA, bufB, bufC *rowStore) schedFeeds {
	s.buildFeeds(bufA, bufB, bufC)
	s.advanceWeightStage(bufB)
	s.advanceInputStage(bufA)
	s.advanceBiasStage(bufC)

	return s.feeds
}

func (s *blockScheduler) buildFeeds(bufA, bufB, bufC *rowStore) {
	for j := 0; j < s.width; j++ {
		s.feeds.col[j] = gemm.ColCtl{}
		s.feeds.row[j] = gemm.RowCtl{}
		s.feeds.bias[j] = gemm.Psum{}
	}

	if s.wIssued.accept {
		out := bufB.Out()
		if !out.valid {
			panic("weight read issued but no row emerged")
		}
		for j := 0; j < s.width; j++ {
			s.feeds.col[j] = gemm.ColCtl{
				Weight: int8(out.data[j]),
				Index:  s.wIssued.index,
				Accept: true,
			}
		}
	}

	if s.iIssued.valid {
		out := bufA.Out()
		if !out.valid {
			panic("input read issued but no row emerged")
		}
		for i := 0; i < s.width; i++ {
			s.feeds.row[i] = gemm.RowCtl{
				Data:   int8(out.data[i]),
				Valid:  true,
				Switch: s.iIssued.sw,
				Dims:   s.iIssued.dims,
			}
		}
	}

	if s.bIssued.valid {
		out := bufC.Out()
		if !out.valid {
			panic("bias read issued but no row emerged")
		}
		for j := 0; j < s.width; j++ {
			s.feeds.bias[j] = gemm.Psum{Value: out.data[j], Valid: true}
		}
	}
}

// advanceWeightStage drives W weight reads, index counting down, then on its
// gap tick hands the descriptor to the input stage and re-arms from the
// queue with no idle tick.
func (s *blockScheduler) advanceWeightStage(bufB *rowStore) {
	s.wIssued = weightIssue{}

	if !s.wActive && len(s.queue) > 0 {
		s.popIntoWeightStage()
	}

	if !s.wActive {
		return
	}

	if s.wCount < s.width {
		index := s.width - 1 - s.wCount
		if index < s.wDesc.Dims.K {
			bufB.Read(s.wDesc.AddrB + uint32(index))
			s.wIssued = weightIssue{accept: true, index: index}
		}
		s.wCount++

		return
	}

	// Gap tick: the switch token is the timing anchor the other stages
	// cascade from.
	s.iToken = token{desc: s.wDesc, valid: true}

	if len(s.queue) > 0 {
		s.popIntoWeightStage()
	} else {
		s.wActive = false
	}
}

func (s *blockScheduler) popIntoWeightStage() {
	s.wDesc = s.queue[0]
	s.queue = s.queue[1:]
	s.wActive = true
	s.wCount = 0
	s.tasksInFlight++
}

// advanceInputStage streams the A rows. The switch pulse rides the first
// row's data through the same store-and-skew path, so it reaches each cell
// one tick after that cell's staged weight became readable.
func (s *blockScheduler) advanceInputStage(bufA *rowStore) {
	s.iIssued = inputIssue{}

	if s.iToken.valid {
		if !s.iActive {
			s.startInputStage(s.iToken.desc)
		} else {
			s.iPending = s.iToken
		}
		s.iToken = token{}
	}

	if !s.iActive {
		return
	}

	row := s.iCount
	if row < s.iDesc.Dims.M {
		bufA.Read(s.iDesc.AddrA + uint32(row))
		s.iIssued = inputIssue{
			valid: true,
			sw:    row == 0,
			dims:  s.iDesc.Dims,
		}
	}

	if s.iCount == s.width-2 {
		s.bToken = token{desc: s.iDesc, valid: true}
	}

	s.iCount++
	if s.iCount == s.width {
		s.iActive = false
		if s.iPending.valid {
			s.startInputStage(s.iPending.desc)
			s.iPending = token{}
		}
	}
}

func (s *blockScheduler) startInputStage(desc gemm.Descriptor) {
	s.iDesc = desc
	s.iActive = true
	s.iCount = 0
}

// advanceBiasStage waits out the array traversal latency, then streams the C
// rows so bias row r meets systolic result row r at the adder. On completion
// it queues the block for write-back.
func (s *blockScheduler) advanceBiasStage(bufC *rowStore) {
	s.bIssued = biasIssue{}

	if s.bToken.valid {
		if !s.bBusy {
			s.startBiasStage(s.bToken.desc)
		} else {
			if s.bPending.valid {
				panic("bias stage fell behind the block cadence")
			}
			s.bPending = s.bToken
		}
		s.bToken = token{}
	}

	if !s.bBusy {
		return
	}

	if s.bWait > 0 {
		s.bWait--

		return
	}

	row := s.bCount
	if row < s.bDesc.Dims.M {
		bufC.Read(s.bDesc.AddrC + uint32(row))
		s.bIssued = biasIssue{valid: true}
	}

	s.bCount++
	if s.bCount == s.width {
		s.wb = append(s.wb, wbBlock{
			addrD: s.bDesc.AddrD,
			dims:  s.bDesc.Dims,
			seq:   s.bDesc.Seq,
		})
		s.bBusy = false
		if s.bPending.valid {
			s.startBiasStage(s.bPending.desc)
			s.bPending = token{}
			// A restart from the pending slot happens after this tick's
			// wait check, so the countdown must consume the current tick
			// here to stay on the same clock as a token start.
			s.bWait--
		}
	}
}

func (s *blockScheduler) startBiasStage(desc gemm.Descriptor) {
	s.bDesc = desc
	s.bBusy = true
	s.bWait = s.biasLat - (s.width - 2)
	s.bCount = 0
}

// EvaluateWriteback consumes the deskewed output lanes. A row is ready when
// every lane the head block's column mask enables is valid; masked lanes are
// vacuously valid and never hold a row back. One D row is written per ready
// tick; after the head block's M rows it retires the block.
func (s *blockScheduler) EvaluateWriteback(
	deskewed []gemm.Psum,
	bufD *rowStore,
) (doneEvent, bool) {
	if len(s.wb) == 0 {
		return doneEvent{}, false
	}

	head := &s.wb[0]
	for j := 0; j < head.dims.N; j++ {
		if !deskewed[j].Valid {
			return doneEvent{}, false
		}
	}

	row := make([]int32, s.width)
	for j := 0; j < head.dims.N; j++ {
		row[j] = deskewed[j].Value
	}
	bufD.Write(head.addrD+uint32(head.rowsDone), row)

	head.rowsDone++
	if head.rowsDone < head.dims.M {
		return doneEvent{}, false
	}

	done := doneEvent{seq: head.seq, dims: head.dims, addrD: head.addrD}
	s.wb = s.wb[1:]
	s.tasksInFlight--

	return done, true
}

func (s *blockScheduler) Reset() {
	s.queue = nil
	s.tasksInFlight = 0
	s.wActive = false
	s.wCount = 0
	s.wIssued = weightIssue{}
	s.iActive = false
	s.iCount = 0
	s.iToken = token{}
	s.iPending = token{}
	s.iIssued = inputIssue{}
	s.bBusy = false
	s.bWait = 0
	s.bCount = 0
	s.bToken = token{}
	s.bPending = token{}
	s.bIssued = biasIssue{}
	s.wb = nil
}
