// Package api defines the host-side driver for the systolic GEMM engine.
package api

import (
	"fmt"

	"github.com/sarchlab/akita/v4/mem/mem"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/akita/v4/sim/directconnection"

	"github.com/sarchlab/systolica/core"
	"github.com/sarchlab/systolica/gemm"
)

// Driver provides the interface to control an accelerator.
type Driver interface {
	// RegisterAccelerator connects the driver to an accelerator. The driver
	// establishes the control and memory connections to the device.
	RegisterAccelerator(accel gemm.Accelerator)

	// LoadA, LoadB and LoadC preload operand matrices row by row, starting
	// at the given row address of the corresponding on-chip region.
	LoadA(base uint32, mat [][]int32)
	LoadB(base uint32, mat [][]int32)
	LoadC(base uint32, mat [][]int32)

	// ReadD reads a result matrix back out of the on-chip result region.
	ReadD(base uint32, rows int) [][]int32

	// Submit queues one block for execution and returns the sequence
	// number the accelerator will report on completion.
	Submit(desc gemm.Descriptor) (uint64, error)

	// Completions returns the sequence numbers of the blocks completed so
	// far, in completion order.
	Completions() []uint64

	// HostResult reads a completed block out of host memory, where the
	// accelerator's write-back traffic lands.
	HostResult(addrD uint32, rows int) [][]int32

	// Run drives the simulation until all queued work drains.
	Run()
}

type driverImpl struct {
	*sim.TickingComponent

	accel gemm.Accelerator

	ctrlPort core.Port
	memPort  core.Port

	pendingDescs []gemm.Descriptor
	completions  []uint64
	nextSeq      uint64

	hostMem *mem.Storage
	rspsOut []sim.Msg
}

// Tick runs the driver for one cycle.
func (d *driverImpl) Tick() (madeProgress bool) {
	madeProgress = d.sendCommands() || madeProgress
	madeProgress = d.collectCompletions() || madeProgress
	madeProgress = d.serveWritebacks() || madeProgress
	madeProgress = d.sendRsps() || madeProgress

	return madeProgress
}

func (d *driverImpl) sendCommands() bool {
	if len(d.pendingDescs) == 0 {
		return false
	}

	msg := gemm.CommandMsgBuilder{}.
		WithSrc(d.ctrlPort.AsRemote()).
		WithDst(d.accel.CtrlPort().AsRemote()).
		WithDescriptor(d.pendingDescs[0]).
		Build()

	err := d.ctrlPort.Send(msg)
	if err != nil {
		return false
	}

	d.pendingDescs = d.pendingDescs[1:]

	return true
}

func (d *driverImpl) collectCompletions() bool {
	item := d.ctrlPort.PeekIncoming()
	if item == nil {
		return false
	}

	msg, ok := item.(*gemm.BlockDoneMsg)
	if !ok {
		panic(fmt.Sprintf("unexpected message %T on driver ctrl port", item))
	}

	d.ctrlPort.RetrieveIncoming()
	d.completions = append(d.completions, msg.Seq)

	core.Trace("DriverBlockDone", "Seq", msg.Seq)

	return true
}

// serveWritebacks lands the accelerator's DMA traffic in host memory and
// acknowledges it.
func (d *driverImpl) serveWritebacks() bool {
	item := d.memPort.PeekIncoming()
	if item == nil {
		return false
	}

	req, ok := item.(*mem.WriteReq)
	if !ok {
		panic(fmt.Sprintf("unexpected message %T on driver mem port", item))
	}

	err := d.hostMem.Write(req.Address, req.Data)
	if err != nil {
		panic(err)
	}

	d.memPort.RetrieveIncoming()

	rsp := mem.WriteDoneRspBuilder{}.
		WithSrc(d.memPort.AsRemote()).
		WithDst(req.Src).
		WithRspTo(req.ID).
		Build()
	d.rspsOut = append(d.rspsOut, rsp)

	return true
}

func (d *driverImpl) sendRsps() bool {
	if len(d.rspsOut) == 0 {
		return false
	}

	err := d.memPort.Send(d.rspsOut[0])
	if err != nil {
		return false
	}

	d.rspsOut = d.rspsOut[1:]

	return true
}

// RegisterAccelerator connects the driver to an accelerator.
func (d *driverImpl) RegisterAccelerator(accel gemm.Accelerator) {
	d.accel = accel

	ctrlConn := directconnection.MakeBuilder().
		WithEngine(d.Engine).
		WithFreq(d.Freq).
		Build(d.Name() + ".CtrlConn")
	ctrlConn.PlugIn(d.ctrlPort)
	ctrlConn.PlugIn(accel.CtrlPort())
	accel.SetRemoteCtrl(d.ctrlPort.AsRemote())

	memConn := directconnection.MakeBuilder().
		WithEngine(d.Engine).
		WithFreq(d.Freq).
		Build(d.Name() + ".MemConn")
	memConn.PlugIn(d.memPort)
	memConn.PlugIn(accel.MemPort())
	accel.SetRemoteMem(d.memPort.AsRemote())
}

func (d *driverImpl) LoadA(base uint32, mat [][]int32) {
	d.loadMatrix(gemm.SpaceA, base, mat)
}

func (d *driverImpl) LoadB(base uint32, mat [][]int32) {
	d.loadMatrix(gemm.SpaceB, base, mat)
}

func (d *driverImpl) LoadC(base uint32, mat [][]int32) {
	d.loadMatrix(gemm.SpaceC, base, mat)
}

func (d *driverImpl) loadMatrix(space gemm.Space, base uint32, mat [][]int32) {
	for i, row := range mat {
		d.accel.WriteRow(space, base+uint32(i), row)
	}
}

func (d *driverImpl) ReadD(base uint32, rows int) [][]int32 {
	mat := make([][]int32, rows)
	for i := range mat {
		mat[i] = d.accel.ReadRow(gemm.SpaceD, base+uint32(i))
	}

	return mat
}

func (d *driverImpl) Submit(desc gemm.Descriptor) (uint64, error) {
	if err := desc.Validate(d.accel.Width()); err != nil {
		return 0, err
	}

	d.nextSeq++
	desc.Seq = d.nextSeq
	d.pendingDescs = append(d.pendingDescs, desc)

	return desc.Seq, nil
}

func (d *driverImpl) Completions() []uint64 {
	return d.completions
}

func (d *driverImpl) HostResult(addrD uint32, rows int) [][]int32 {
	width := d.accel.Width()
	rowBytes := uint64(width) * 4

	mat := make([][]int32, rows)
	for r := range mat {
		buf, err := d.hostMem.Read(
			uint64(addrD+uint32(r))*rowBytes, rowBytes)
		if err != nil {
			panic(err)
		}

		row := make([]int32, width)
		for j := 0; j < width; j++ {
			row[j] = int32(uint32(buf[j*4])<<24 |
				uint32(buf[j*4+1])<<16 |
				uint32(buf[j*4+2])<<8 |
				uint32(buf[j*4+3]))
		}
		mat[r] = row
	}

	return mat
}

// Run runs all the tasks in the driver.
func (d *driverImpl) Run() {
	d.TickNow()
	err := d.Engine.Run()
	if err != nil {
		panic(err)
	}
}
