// Package gemm defines the commonly used data structures for the systolic
// matrix-multiply accelerator.
package gemm

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
)

// Space identifies one of the accelerator's row-store regions.
type Space int

const (
	SpaceA Space = iota
	SpaceB
	SpaceC
	SpaceD
)

// Name returns the name of the space.
func (s Space) Name() string {
	switch s {
	case SpaceA:
		return "A"
	case SpaceB:
		return "B"
	case SpaceC:
		return "C"
	case SpaceD:
		return "D"
	default:
		panic("invalid space")
	}
}

// Dims holds the bounded dimensions of one block: M row-groups of A and D,
// K contraction rows, N output columns. K and N select the active lanes of
// the array; lanes beyond them are masked off.
type Dims struct {
	M, K, N int
}

// Descriptor describes one block of work, D = A*B + C. Addresses are row
// indices into the corresponding row-store region. A descriptor is immutable
// once queued.
type Descriptor struct {
	AddrA, AddrB, AddrC, AddrD uint32

	Dims Dims

	// Seq is assigned by the submitter and echoed on completion so an
	// external DMA stage can identify the finished block.
	Seq uint64
}

// Validate checks a descriptor against the array width. The pipeline trusts
// its inputs; dimension checking happens here, at the submission boundary,
// and nowhere else.
func (d Descriptor) Validate(width int) error {
	if d.Dims.K < 1 || d.Dims.K > width {
		return fmt.Errorf("k must be in [1, %d], got %d", width, d.Dims.K)
	}

	if d.Dims.N < 1 || d.Dims.N > width {
		return fmt.Errorf("n must be in [1, %d], got %d", width, d.Dims.N)
	}

	if d.Dims.M < 1 || d.Dims.M > width {
		return fmt.Errorf("m must be in [1, %d], got %d", width, d.Dims.M)
	}

	return nil
}

// An Accelerator is one systolic GEMM device.
type Accelerator interface {
	Width() int

	CtrlPort() sim.Port
	MemPort() sim.Port
	SetRemoteCtrl(port sim.RemotePort)
	SetRemoteMem(port sim.RemotePort)

	WriteRow(space Space, addr uint32, row []int32)
	ReadRow(space Space, addr uint32) []int32
}
