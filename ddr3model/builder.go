package ddr3model

import (
	"github.com/sarchlab/slowdram/memory"
	"github.com/sarchlab/slowdram/sim"
	"github.com/sarchlab/slowdram/slowddr3"
)

// Builder constructs behavioral DDR3 devices.
type Builder struct {
	engine      *sim.Engine
	pads        *slowddr3.Pads
	storage     *memory.Storage
	casLatency  uint64
	driveCycles uint64
}

// MakeBuilder returns a Builder with default device timing.
func MakeBuilder() Builder {
	return Builder{
		casLatency:  4,
		driveCycles: 4,
	}
}

// WithEngine sets the engine the device runs on.
func (b Builder) WithEngine(engine *sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithPads attaches the device to the controller's pins.
func (b Builder) WithPads(pads *slowddr3.Pads) Builder {
	b.pads = pads
	return b
}

// WithStorage sets the backing storage. When unset, Build allocates sparse
// storage sized for the modeled 2 Gib part.
func (b Builder) WithStorage(storage *memory.Storage) Builder {
	b.storage = storage
	return b
}

// WithCASLatency sets the cycles between a RD command and the device driving
// read data.
func (b Builder) WithCASLatency(cycles uint64) Builder {
	b.casLatency = cycles
	return b
}

// WithDriveCycles sets how many cycles the device drives read data.
func (b Builder) WithDriveCycles(cycles uint64) Builder {
	b.driveCycles = cycles
	return b
}

// Build creates the device and registers it with the engine.
func (b Builder) Build(name string) *Comp {
	if b.engine == nil {
		panic("ddr3model: builder requires an engine")
	}
	if b.pads == nil {
		panic("ddr3model: builder requires pads")
	}
	if b.casLatency == 0 || b.driveCycles == 0 {
		panic("ddr3model: device timing must be positive")
	}

	storage := b.storage
	if storage == nil {
		storage = memory.NewStorage(2 * memory.GB / 8)
	}

	c := &Comp{
		ModuleBase:  sim.NewModuleBase(name),
		pads:        b.pads,
		storage:     storage,
		casLatency:  b.casLatency,
		driveCycles: b.driveCycles,
	}
	c.deviceReset()

	b.engine.Register(c)

	return c
}
