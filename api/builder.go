package api

import (
	"github.com/sarchlab/akita/v4/mem/mem"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/systolica/core"
)

// DriverBuilder creates a new instance of Driver.
type DriverBuilder struct {
	engine      sim.Engine
	freq        sim.Freq
	hostMemSize uint64
}

// WithEngine sets the engine.
func (b DriverBuilder) WithEngine(engine sim.Engine) DriverBuilder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the driver.
func (b DriverBuilder) WithFreq(freq sim.Freq) DriverBuilder {
	b.freq = freq
	return b
}

// WithHostMemSize sets the host memory capacity in bytes.
func (b DriverBuilder) WithHostMemSize(size uint64) DriverBuilder {
	b.hostMemSize = size
	return b
}

// Build creates a driver.
func (b DriverBuilder) Build(name string) Driver {
	hostMemSize := b.hostMemSize
	if hostMemSize == 0 {
		hostMemSize = 1 << 20
	}

	d := &driverImpl{
		hostMem: mem.NewStorage(hostMemSize),
	}

	d.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, d)
	d.ctrlPort = core.NewPort(d, 4, 4, name+".Ctrl")
	d.memPort = core.NewPort(d, 4, 4, name+".Mem")
	d.AddPort("Ctrl", d.ctrlPort)
	d.AddPort("Mem", d.memPort)

	return d
}
