package core

import (
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/systolica/gemm"
)

// Builder can create accelerator cores.
type Builder struct {
	engine      sim.Engine
	freq        sim.Freq
	width       int
	queueDepth  int
	biasLatency int
	storeRows   uint32
}

// NewBuilder returns a builder with the default geometry.
func NewBuilder() Builder {
	return Builder{
		width:      4,
		queueDepth: 4,
		storeRows:  1024,
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the core.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithWidth sets the side length of the square compute array.
func (b Builder) WithWidth(width int) Builder {
	if width < 2 {
		panic("array width must be at least 2")
	}
	b.width = width
	return b
}

// WithQueueDepth sets the command queue capacity.
func (b Builder) WithQueueDepth(depth int) Builder {
	if depth < 1 {
		panic("queue depth must be at least 1")
	}
	b.queueDepth = depth
	return b
}

// WithBiasLatency sets the bias read-to-merge latency in cycles. The value
// zero selects the default of one array width.
func (b Builder) WithBiasLatency(latency int) Builder {
	b.biasLatency = latency
	return b
}

// WithStoreRows sets the row capacity of each on-chip row store.
func (b Builder) WithStoreRows(rows uint32) Builder {
	if rows == 0 {
		panic("row stores need at least one row")
	}
	b.storeRows = rows
	return b
}

// Build creates an accelerator core.
func (b Builder) Build(name string) *Comp {
	biasLat := b.biasLatency
	if biasLat == 0 {
		biasLat = b.width
	}

	c := &Comp{
		width: b.width,
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	c.ctrlPort = NewPort(c, 4, 4, name+".Ctrl")
	c.memPort = NewPort(c, 4, 4, name+".Mem")
	c.AddPort("Ctrl", c.ctrlPort)
	c.AddPort("Mem", c.memPort)

	c.storeA = newRowStore(gemm.SpaceA, b.width, 1, b.storeRows)
	c.storeB = newRowStore(gemm.SpaceB, b.width, 1, b.storeRows)
	c.storeC = newRowStore(gemm.SpaceC, b.width, 4, b.storeRows)
	c.storeD = newRowStore(gemm.SpaceD, b.width, 4, b.storeRows)

	c.rowSkew = newSkewAligner[gemm.RowCtl](b.width)
	c.colSkew = newSkewAligner[gemm.ColCtl](b.width)
	c.biasSkew = newSkewAligner[gemm.Psum](b.width)
	c.deskew = newDeskewAligner[gemm.Psum](b.width)

	c.array = newComputeArray(b.width)
	c.biasAdd = newBiasAdder(b.width)
	c.sched = newBlockScheduler(b.width, b.queueDepth, biasLat)

	return c
}
