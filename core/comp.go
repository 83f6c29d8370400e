package core

import (
	"fmt"

	"github.com/sarchlab/akita/v4/mem/mem"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/systolica/gemm"
)

// Comp is one systolic GEMM accelerator core. The whole core is a
// synchronous lockstep model: every Tick advances the datapath by exactly
// one cycle through a compute-then-commit pass over all subcomponents, so no
// component ever observes another's already-updated state within the same
// tick.
type Comp struct {
	*sim.TickingComponent

	width int

	ctrlPort Port
	memPort  Port

	remoteCtrl sim.RemotePort
	remoteMem  sim.RemotePort

	storeA, storeB, storeC, storeD *rowStore

	rowSkew  *aligner[gemm.RowCtl]
	colSkew  *aligner[gemm.ColCtl]
	biasSkew *aligner[gemm.Psum]
	deskew   *aligner[gemm.Psum]

	array   *computeArray
	biasAdd *biasAdder
	sched   *blockScheduler

	onBlockDone func(seq uint64, dims gemm.Dims)

	doneOut        []*gemm.BlockDoneMsg
	dmaOut         []*mem.WriteReq
	dmaPendingAcks int
}

// Width returns the array width W.
func (c *Comp) Width() int {
	return c.width
}

// CtrlPort returns the port commands arrive on and completions leave from.
func (c *Comp) CtrlPort() sim.Port {
	return c.ctrlPort
}

// MemPort returns the port the DMA write-back traffic leaves from.
func (c *Comp) MemPort() sim.Port {
	return c.memPort
}

// SetRemoteCtrl sets where completion messages are sent.
func (c *Comp) SetRemoteCtrl(port sim.RemotePort) {
	c.remoteCtrl = port
}

// SetRemoteMem sets the host memory port for the optional bulk write-back.
// When unset, completed blocks stay in the D row store only.
func (c *Comp) SetRemoteMem(port sim.RemotePort) {
	c.remoteMem = port
}

// SetBlockDoneCallback registers a function pulsed once per completed block.
func (c *Comp) SetBlockDoneCallback(f func(seq uint64, dims gemm.Dims)) {
	c.onBlockDone = f
}

// Submit offers one block descriptor to the command queue. It returns false
// when the queue is full; the caller must back off and retry. Descriptors
// are validated here, at the boundary, and the pipeline trusts its inputs.
func (c *Comp) Submit(desc gemm.Descriptor) bool {
	if err := desc.Validate(c.width); err != nil {
		panic(fmt.Sprintf("malformed descriptor: %v", err))
	}

	if !c.sched.Submit(desc) {
		return false
	}

	if c.Engine != nil {
		c.TickNow()
	}

	return true
}

// QueueNotFull reports whether a Submit would currently be accepted.
func (c *Comp) QueueNotFull() bool {
	return c.sched.CanAccept()
}

// WriteRow writes one row directly into a row store, bypassing port timing.
// This is the host-side preload path.
func (c *Comp) WriteRow(space gemm.Space, addr uint32, row []int32) {
	c.store(space).WriteDirect(addr, row)
}

// ReadRow reads one row directly out of a row store, bypassing port timing.
func (c *Comp) ReadRow(space gemm.Space, addr uint32) []int32 {
	return c.store(space).ReadDirect(addr)
}

func (c *Comp) store(space gemm.Space) *rowStore {
	switch space {
	case gemm.SpaceA:
		return c.storeA
	case gemm.SpaceB:
		return c.storeB
	case gemm.SpaceC:
		return c.storeC
	case gemm.SpaceD:
		return c.storeD
	default:
		panic("invalid space")
	}
}

// Reset returns every register, delay line and queue to the idle state.
func (c *Comp) Reset() {
	c.array.Reset()
	c.rowSkew.Reset()
	c.colSkew.Reset()
	c.biasSkew.Reset()
	c.deskew.Reset()
	c.biasAdd.Reset()
	c.sched.Reset()
	c.storeA.Reset()
	c.storeB.Reset()
	c.storeC.Reset()
	c.storeD.Reset()
	c.doneOut = nil
	c.dmaOut = nil
	c.dmaPendingAcks = 0
}

// Tick runs the accelerator for one cycle.
func (c *Comp) Tick() (madeProgress bool) {
	madeProgress = c.acceptCommands() || madeProgress
	madeProgress = c.collectMemRsps() || madeProgress
	madeProgress = c.stepDatapath() || madeProgress
	madeProgress = c.deliverNotifications() || madeProgress

	PrintState(c)

	// The core is not drained while write-back acknowledgements are still
	// in flight; keep ticking until the last one is collected.
	return madeProgress || c.dmaPendingAcks > 0
}

// acceptCommands moves at most one descriptor per tick from the ctrl port
// into the command queue. When the queue is full the message stays in the
// port; that is the backpressure the submitter observes.
func (c *Comp) acceptCommands() bool {
	item := c.ctrlPort.PeekIncoming()
	if item == nil {
		return false
	}

	msg, ok := item.(*gemm.CommandMsg)
	if !ok {
		panic(fmt.Sprintf("unexpected message %T on ctrl port", item))
	}

	if err := msg.Desc.Validate(c.width); err != nil {
		panic(fmt.Sprintf("malformed descriptor: %v", err))
	}

	if !c.sched.CanAccept() {
		return false
	}

	c.ctrlPort.RetrieveIncoming()
	c.sched.Submit(msg.Desc)

	Trace("CommandAccepted",
		"Seq", msg.Desc.Seq,
		"M", msg.Desc.Dims.M,
		"K", msg.Desc.Dims.K,
		"N", msg.Desc.Dims.N,
	)

	return true
}

func (c *Comp) collectMemRsps() bool {
	item := c.memPort.PeekIncoming()
	if item == nil {
		return false
	}

	switch item.(type) {
	case *mem.WriteDoneRsp:
		c.memPort.RetrieveIncoming()
		c.dmaPendingAcks--
		return true
	default:
		panic(fmt.Sprintf("unexpected message %T on mem port", item))
	}
}

// stepDatapath advances the whole synchronous core by one cycle: every
// subcomponent evaluates against current state in dependency order, then
// everything commits at once.
func (c *Comp) stepDatapath() bool {
	feeds := c.sched.Evaluate(c.storeA, c.storeB, c.storeC)

	rowIn := c.rowSkew.Evaluate(feeds.row)
	colIn := c.colSkew.Evaluate(feeds.col)
	biasIn := c.biasSkew.Evaluate(feeds.bias)

	bottom := c.array.Evaluate(rowIn, colIn)
	summed := c.biasAdd.Evaluate(bottom, biasIn)
	deskewed := c.deskew.Evaluate(summed)

	done, finished := c.sched.EvaluateWriteback(deskewed, c.storeD)

	c.commit()

	if finished {
		c.completeBlock(done)
	}

	return c.sched.Busy() || finished
}

func (c *Comp) commit() {
	c.array.Commit()
	c.rowSkew.Commit()
	c.colSkew.Commit()
	c.biasSkew.Commit()
	c.biasAdd.Commit()
	c.deskew.Commit()
	c.storeA.Commit()
	c.storeB.Commit()
	c.storeC.Commit()
	c.storeD.Commit()
}

func (c *Comp) completeBlock(done doneEvent) {
	Trace("BlockDone",
		"Seq", done.seq,
		"M", done.dims.M,
		"K", done.dims.K,
		"N", done.dims.N,
	)

	if c.onBlockDone != nil {
		c.onBlockDone(done.seq, done.dims)
	}

	if c.remoteCtrl != "" {
		msg := gemm.BlockDoneMsgBuilder{}.
			WithSrc(c.ctrlPort.AsRemote()).
			WithDst(c.remoteCtrl).
			WithSeq(done.seq).
			WithDims(done.dims).
			Build()
		c.doneOut = append(c.doneOut, msg)
	}

	if c.remoteMem != "" {
		c.stageDMAWriteback(done)
	}
}

// stageDMAWriteback turns one finished block into per-row write requests to
// host memory, mirroring the D region layout at 4 bytes per element.
func (c *Comp) stageDMAWriteback(done doneEvent) {
	rowBytes := uint64(c.width) * 4
	for r := 0; r < done.dims.M; r++ {
		row := c.storeD.ReadDirect(done.addrD + uint32(r))
		data := make([]byte, rowBytes)
		for i, v := range row {
			u := uint32(v)
			data[i*4] = byte(u >> 24)
			data[i*4+1] = byte(u >> 16)
			data[i*4+2] = byte(u >> 8)
			data[i*4+3] = byte(u)
		}

		req := mem.WriteReqBuilder{}.
			WithAddress(uint64(done.addrD+uint32(r)) * rowBytes).
			WithData(data).
			WithSrc(c.memPort.AsRemote()).
			WithDst(c.remoteMem).
			Build()
		c.dmaOut = append(c.dmaOut, req)
	}
}

// deliverNotifications pushes queued completion messages and DMA write
// requests out, one per port per tick, retrying on backpressure.
func (c *Comp) deliverNotifications() bool {
	madeProgress := false

	if len(c.doneOut) > 0 {
		err := c.ctrlPort.Send(c.doneOut[0])
		if err == nil {
			c.doneOut = c.doneOut[1:]
			madeProgress = true
		}
	}

	if len(c.dmaOut) > 0 {
		err := c.memPort.Send(c.dmaOut[0])
		if err == nil {
			c.dmaOut = c.dmaOut[1:]
			c.dmaPendingAcks++
			madeProgress = true
		}
	}

	return madeProgress
}
