// Package config assembles full simulation platforms with default settings.
package config

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/systolica/api"
	"github.com/sarchlab/systolica/core"
)

// Platform bundles an engine, a driver and the accelerator it controls.
type Platform struct {
	Engine sim.Engine
	Driver api.Driver
	Accel  *core.Comp
}

// PlatformBuilder can build ready-to-run simulation platforms.
type PlatformBuilder struct {
	freq        sim.Freq
	width       int
	queueDepth  int
	biasLatency int
	storeRows   uint32
}

// MakePlatformBuilder returns a builder with the default configuration.
func MakePlatformBuilder() PlatformBuilder {
	return PlatformBuilder{
		freq:       1 * sim.GHz,
		width:      4,
		queueDepth: 4,
		storeRows:  1024,
	}
}

// WithFreq sets the frequency of every component on the platform.
func (b PlatformBuilder) WithFreq(freq sim.Freq) PlatformBuilder {
	b.freq = freq
	return b
}

// WithWidth sets the side length of the compute array.
func (b PlatformBuilder) WithWidth(width int) PlatformBuilder {
	b.width = width
	return b
}

// WithQueueDepth sets the accelerator's command queue capacity.
func (b PlatformBuilder) WithQueueDepth(depth int) PlatformBuilder {
	b.queueDepth = depth
	return b
}

// WithBiasLatency sets the bias read-to-merge latency in cycles.
func (b PlatformBuilder) WithBiasLatency(latency int) PlatformBuilder {
	b.biasLatency = latency
	return b
}

// WithStoreRows sets the row capacity of the on-chip operand stores.
func (b PlatformBuilder) WithStoreRows(rows uint32) PlatformBuilder {
	b.storeRows = rows
	return b
}

// Build creates a platform: a serial engine, one accelerator and a driver
// already connected to it.
func (b PlatformBuilder) Build(name string) *Platform {
	engine := sim.NewSerialEngine()

	accel := core.NewBuilder().
		WithEngine(engine).
		WithFreq(b.freq).
		WithWidth(b.width).
		WithQueueDepth(b.queueDepth).
		WithBiasLatency(b.biasLatency).
		WithStoreRows(b.storeRows).
		Build(name + ".Accel")

	driver := api.DriverBuilder{}.
		WithEngine(engine).
		WithFreq(b.freq).
		Build(name + ".Driver")
	driver.RegisterAccelerator(accel)

	return &Platform{
		Engine: engine,
		Driver: driver,
		Accel:  accel,
	}
}
