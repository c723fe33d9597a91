// Package led provides a small LED chaser, handy as a liveness indicator on
// boards and as a minimal module in simulation benches.
package led

import (
	"github.com/sarchlab/slowdram/sim"
)

// Chaser walks a single lit LED across an output vector, advancing once per
// configured period.
type Chaser struct {
	sim.ModuleBase

	count  int
	period uint64

	pos     int
	divider uint64

	// Out holds one bit per LED, bit 0 being LED 0.
	Out uint32
}

// Out publishes the register state. Nothing combinational feeds the chaser,
// so one pass always settles.
func (c *Chaser) Eval() (madeProgress bool) {
	out := uint32(1) << c.pos
	if c.Out == out {
		return false
	}

	c.Out = out

	return true
}

// Tick advances the divider and, when it wraps, the lit position.
func (c *Chaser) Tick(rst bool) {
	if rst {
		c.pos = 0
		c.divider = 0
		return
	}

	c.divider++
	if c.divider < c.period {
		return
	}

	c.divider = 0
	c.pos++
	if c.pos >= c.count {
		c.pos = 0
	}
}

// Builder configures and creates LED chasers.
type Builder struct {
	engine *sim.Engine
	count  int
	period uint64
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		count:  8,
		period: 1000000,
	}
}

// WithEngine sets the engine to register the chaser with.
func (b Builder) WithEngine(engine *sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithCount sets the number of LEDs.
func (b Builder) WithCount(count int) Builder {
	b.count = count
	return b
}

// WithPeriod sets the number of cycles each LED stays lit.
func (b Builder) WithPeriod(period uint64) Builder {
	b.period = period
	return b
}

// Build creates the chaser and registers it with the engine.
func (b Builder) Build(name string) *Chaser {
	if b.engine == nil {
		panic("led chaser must have an engine")
	}

	if b.count <= 0 || b.count > 32 {
		panic("led count must be between 1 and 32")
	}

	if b.period == 0 {
		panic("led period must be positive")
	}

	c := &Chaser{
		ModuleBase: sim.NewModuleBase(name),
		count:      b.count,
		period:     b.period,
	}

	b.engine.Register(c)

	return c
}
