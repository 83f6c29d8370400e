package core

import (
	"fmt"

	"github.com/sarchlab/akita/v4/mem/mem"
	"github.com/sarchlab/systolica/gemm"
)

// rowOut is the registered output of a row store's read port.
type rowOut struct {
	data  []int32
	valid bool
}

// rowStore models one operand region as a fixed-latency row memory: a read
// issued on tick t presents its row on tick t+1, a write committed on tick t
// is not guaranteed visible to a read issued the same tick. Rows are width
// elements wide; elements are 1 byte (operands) or 4 bytes (accumulators),
// backed by a mem.Storage.
type rowStore struct {
	space    gemm.Space
	width    int
	elemSize int
	rows     uint32
	storage  *mem.Storage

	readAddr uint32
	readPend bool
	out      rowOut

	writeAddr uint32
	writeRow  []int32
	writePend bool
}

func newRowStore(space gemm.Space, width, elemSize int, rows uint32) *rowStore {
	s := &rowStore{
		space:    space,
		width:    width,
		elemSize: elemSize,
		rows:     rows,
		storage:  mem.NewStorage(uint64(rows) * uint64(width*elemSize)),
	}
	s.out.data = make([]int32, width)

	return s
}

// Read issues a read of one row. The data appears on Out one tick later.
func (s *rowStore) Read(addr uint32) {
	s.mustBeInBounds(addr)
	s.readAddr = addr
	s.readPend = true
}

// Write stages a full-row write, applied at the tick boundary.
func (s *rowStore) Write(addr uint32, row []int32) {
	s.mustBeInBounds(addr)
	s.writeAddr = addr
	s.writeRow = append(s.writeRow[:0], row...)
	s.writePend = true
}

// Out returns the read port's current output register.
func (s *rowStore) Out() rowOut {
	return s.out
}

func (s *rowStore) Commit() {
	if s.writePend {
		s.storeRow(s.writeAddr, s.writeRow)
		s.writePend = false
	}

	if s.readPend {
		s.loadRow(s.readAddr, s.out.data)
		s.out.valid = true
		s.readPend = false
	} else {
		s.out.valid = false
	}
}

func (s *rowStore) Reset() {
	s.readPend = false
	s.writePend = false
	s.out.valid = false
	for i := range s.out.data {
		s.out.data[i] = 0
	}
}

// WriteDirect bypasses the port timing. It is the host-side path used to
// preload operand regions before a run.
func (s *rowStore) WriteDirect(addr uint32, row []int32) {
	s.mustBeInBounds(addr)
	s.storeRow(addr, row)
}

// ReadDirect bypasses the port timing. It is the host-side path used to
// read results back after a run.
func (s *rowStore) ReadDirect(addr uint32) []int32 {
	s.mustBeInBounds(addr)
	row := make([]int32, s.width)
	s.loadRow(addr, row)

	return row
}

func (s *rowStore) storeRow(addr uint32, row []int32) {
	buf := make([]byte, s.width*s.elemSize)
	for i := 0; i < s.width; i++ {
		var v int32
		if i < len(row) {
			v = row[i]
		}
		if s.elemSize == 1 {
			buf[i] = byte(v)
		} else {
			u := uint32(v)
			buf[i*4] = byte(u >> 24)
			buf[i*4+1] = byte(u >> 16)
			buf[i*4+2] = byte(u >> 8)
			buf[i*4+3] = byte(u)
		}
	}

	err := s.storage.Write(s.rowOffset(addr), buf)
	if err != nil {
		panic(err)
	}
}

func (s *rowStore) loadRow(addr uint32, row []int32) {
	buf, err := s.storage.Read(s.rowOffset(addr), uint64(s.width*s.elemSize))
	if err != nil {
		panic(err)
	}

	for i := 0; i < s.width; i++ {
		if s.elemSize == 1 {
			row[i] = int32(int8(buf[i]))
		} else {
			row[i] = int32(uint32(buf[i*4])<<24 |
				uint32(buf[i*4+1])<<16 |
				uint32(buf[i*4+2])<<8 |
				uint32(buf[i*4+3]))
		}
	}
}

func (s *rowStore) rowOffset(addr uint32) uint64 {
	return uint64(addr) * uint64(s.width*s.elemSize)
}

func (s *rowStore) mustBeInBounds(addr uint32) {
	if addr >= s.rows {
		panic(fmt.Sprintf(
			"row store %s: row address %d out of range [0, %d)",
			s.space.Name(), addr, s.rows,
		))
	}
}
