package slowddr3

import "github.com/sarchlab/slowdram/sim"

// Builder constructs controllers. Unsupported configurations are rejected
// when Build is called.
type Builder struct {
	engine *sim.Engine
	cfg    Config
}

// MakeBuilder returns a Builder with the modeled part's configuration and
// simulation-bench timings.
func MakeBuilder() Builder {
	return Builder{
		cfg: Config{
			DataWidth: 16,
			Density:   2 * Gib,
			Freq:      100 * sim.MHz,
			TriState:  true,
			Timings:   SimTimings(),
		},
	}
}

// WithEngine sets the engine the controller runs on.
func (b Builder) WithEngine(engine *sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the system clock frequency.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.cfg.Freq = freq
	return b
}

// WithDataWidth sets the data width in bits.
func (b Builder) WithDataWidth(width int) Builder {
	b.cfg.DataWidth = width
	return b
}

// WithDensity sets the device density in bits.
func (b Builder) WithDensity(density uint64) Builder {
	b.cfg.Density = density
	return b
}

// WithTimings sets the protocol cycle counts.
func (b Builder) WithTimings(t Timings) Builder {
	b.cfg.Timings = t
	return b
}

// WithTriState selects whether the data pins are modeled as a shared
// tri-state line or as split unidirectional paths.
func (b Builder) WithTriState(triState bool) Builder {
	b.cfg.TriState = triState
	return b
}

// WithDebug enables the debug-visible state signals.
func (b Builder) WithDebug(debug bool) Builder {
	b.cfg.Debug = debug
	return b
}

// WithModeRegs sets the mode register values programmed during
// initialization.
func (b Builder) WithModeRegs(regs [4]uint16) Builder {
	b.cfg.ModeRegs = regs
	return b
}

// Build creates the controller, its streaming port, and its pad resolver, and
// registers the clocked parts with the engine.
func (b Builder) Build(name string) *Comp {
	if b.engine == nil {
		panic("slowddr3: builder requires an engine")
	}

	if err := b.cfg.validate(); err != nil {
		panic("slowddr3: " + err.Error())
	}

	c := &Comp{
		ModuleBase: sim.NewModuleBase(name),
		cfg:        b.cfg,
		io:         &SysIO{},
		pads:       NewPads(name+".Pads", b.cfg.TriState),
	}
	c.reset()

	b.engine.Register(c)
	b.engine.Register(c.pads)

	return c
}
