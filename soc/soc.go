// Package soc assembles a complete simulated system: a bus master, a bus
// fabric, plain bus registers, the DRAM controller with its bridge, and a
// behavioral memory device on the other side of the pads.
package soc

import (
	"fmt"

	"github.com/sarchlab/slowdram/analyzer"
	"github.com/sarchlab/slowdram/ddr3model"
	"github.com/sarchlab/slowdram/led"
	"github.com/sarchlab/slowdram/sim"
	"github.com/sarchlab/slowdram/slowddr3"
	"github.com/sarchlab/slowdram/wishbone"
)

// Word-address bases of the bus regions.
const (
	DRAMBase  uint32 = 0x2000_0000
	Reg32Base uint32 = 0x3000_0000
	Reg16Base uint32 = 0x4000_0000
)

// An SoC is a fully wired simulated system.
type SoC struct {
	Engine *sim.Engine
	Driver *wishbone.Driver
	Fabric *wishbone.Fabric

	DRAM  *slowddr3.Comp
	Model *ddr3model.Comp

	Reg32 *wishbone.Register
	Reg16 *wishbone.Register
	Leds  *led.Chaser

	Analyzer *analyzer.Analyzer
}

// Reset holds the synchronous reset for a few cycles and releases it.
func (s *SoC) Reset() {
	s.Engine.HoldReset(true)
	s.Engine.Run(2)
	s.Engine.HoldReset(false)
}

// WaitInit runs the clock until the controller reports initialization done.
func (s *SoC) WaitInit(limit uint64) error {
	done := s.Engine.RunUntil(func() bool {
		return s.DRAM.SysIO().InitFin
	}, limit)

	if !done {
		return fmt.Errorf(
			"controller did not finish initialization within %d cycles", limit)
	}

	return nil
}

// WriteWord issues one bus write and runs the clock until it completes.
func (s *SoC) WriteWord(adr, data uint32, sel uint8) error {
	op := s.Driver.Write(adr, data, sel)
	return s.waitOp(op)
}

// ReadWord issues one bus read and runs the clock until it completes.
func (s *SoC) ReadWord(adr uint32) (uint32, error) {
	op := s.Driver.Read(adr)
	if err := s.waitOp(op); err != nil {
		return 0, err
	}

	return op.DatR, nil
}

func (s *SoC) waitOp(op *wishbone.Op) error {
	const opLimit = 100000

	done := s.Engine.RunUntil(func() bool { return op.Done }, opLimit)
	if !done {
		return fmt.Errorf("bus transaction did not complete within %d cycles",
			opLimit)
	}

	return op.Err
}

// RunRegisterTest exercises one bus register with a write, a read back, an
// incremented write, and a second read back.
func (s *SoC) RunRegisterTest(base uint32, mask uint32) error {
	const pattern = 0xDEAD_BEEF

	if err := s.WriteWord(base, pattern, 0xf); err != nil {
		return err
	}

	got, err := s.ReadWord(base)
	if err != nil {
		return err
	}
	if got != pattern&mask {
		return fmt.Errorf("register at 0x%08X: read 0x%08X, want 0x%08X",
			base, got, pattern&mask)
	}

	if err := s.WriteWord(base, pattern+1, 0xf); err != nil {
		return err
	}

	got, err = s.ReadWord(base)
	if err != nil {
		return err
	}
	if got != (pattern+1)&mask {
		return fmt.Errorf("register at 0x%08X: read 0x%08X, want 0x%08X",
			base, got, (pattern+1)&mask)
	}

	return nil
}

// Builder configures and creates SoCs.
type Builder struct {
	freq     sim.Freq
	timings  slowddr3.Timings
	triState bool
	debug    bool

	withDRAM      bool
	withRegisters bool
	withLeds      bool

	recorder   analyzer.Recorder
	traceDepth int
}

// MakeBuilder returns a Builder with the simulation-bench defaults.
func MakeBuilder() Builder {
	return Builder{
		freq:          100 * sim.MHz,
		timings:       slowddr3.SimTimings(),
		triState:      true,
		withDRAM:      true,
		withRegisters: true,
		traceDepth:    4096,
	}
}

// WithFreq sets the system clock frequency.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithTimings sets the controller timing parameters.
func (b Builder) WithTimings(t slowddr3.Timings) Builder {
	b.timings = t
	return b
}

// WithTriState selects shared or split data-line modeling on the pads.
func (b Builder) WithTriState(triState bool) Builder {
	b.triState = triState
	return b
}

// WithDebug exposes the controller's internal state for inspection.
func (b Builder) WithDebug(debug bool) Builder {
	b.debug = debug
	return b
}

// WithDRAM includes or excludes the DRAM controller and memory device.
func (b Builder) WithDRAM(withDRAM bool) Builder {
	b.withDRAM = withDRAM
	return b
}

// WithRegisters includes or excludes the plain bus registers.
func (b Builder) WithRegisters(withRegisters bool) Builder {
	b.withRegisters = withRegisters
	return b
}

// WithLeds includes an LED chaser.
func (b Builder) WithLeds(withLeds bool) Builder {
	b.withLeds = withLeds
	return b
}

// WithTraceRecorder attaches a signal analyzer storing through r.
func (b Builder) WithTraceRecorder(r analyzer.Recorder) Builder {
	b.recorder = r
	return b
}

// WithTraceDepth sets the analyzer capture depth.
func (b Builder) WithTraceDepth(depth int) Builder {
	b.traceDepth = depth
	return b
}

// Build creates and wires the system.
func (b Builder) Build(name string) *SoC {
	s := &SoC{}
	s.Engine = sim.NewEngine(b.freq)

	masterBus := &wishbone.Interface{}
	s.Driver = wishbone.NewDriver(name+".Driver", masterBus)
	s.Engine.Register(s.Driver)

	s.Fabric = wishbone.NewFabric(name+".Fabric", masterBus)
	s.Engine.Register(s.Fabric)

	if b.withDRAM {
		b.buildDRAM(name, s)
	}

	if b.withRegisters {
		b.buildRegisters(name, s)
	}

	if b.withLeds {
		s.Leds = led.MakeBuilder().
			WithEngine(s.Engine).
			WithCount(8).
			WithPeriod(1024).
			Build(name + ".Leds")
	}

	if b.recorder != nil {
		b.buildAnalyzer(name, s)
	}

	return s
}

func (b Builder) buildDRAM(name string, s *SoC) {
	s.DRAM = slowddr3.MakeBuilder().
		WithEngine(s.Engine).
		WithFreq(b.freq).
		WithTimings(b.timings).
		WithTriState(b.triState).
		WithDebug(b.debug).
		Build(name + ".DRAM")

	dramBus := &wishbone.Interface{}
	bridge := slowddr3.NewBridge(name+".DRAM.Bridge", dramBus, s.DRAM.SysIO())
	s.Engine.Register(bridge)

	region := wishbone.Region{
		Name:  "dram",
		Base:  DRAMBase,
		Words: uint32(s.DRAM.Config().Words()),
	}
	if err := s.Fabric.AddSlave(region, dramBus); err != nil {
		panic(err)
	}

	// The device sees read commands one bus cycle after the controller
	// issues them, so its latency is set two cycles short of the
	// controller's sampling point.
	s.Model = ddr3model.MakeBuilder().
		WithEngine(s.Engine).
		WithPads(s.DRAM.Pads()).
		WithCASLatency(b.timings.CASLatency - 2).
		Build(name + ".Memory")
}

func (b Builder) buildRegisters(name string, s *SoC) {
	reg32Bus := &wishbone.Interface{}
	s.Reg32 = wishbone.NewRegister(name+".Reg32", reg32Bus, 32)
	s.Engine.Register(s.Reg32)

	reg16Bus := &wishbone.Interface{}
	s.Reg16 = wishbone.NewRegister(name+".Reg16", reg16Bus, 16)
	s.Engine.Register(s.Reg16)

	mustAddSlave(s.Fabric, wishbone.Region{
		Name: "reg32", Base: Reg32Base, Words: 1,
	}, reg32Bus)
	mustAddSlave(s.Fabric, wishbone.Region{
		Name: "reg16", Base: Reg16Base, Words: 1,
	}, reg16Bus)
}

func mustAddSlave(
	f *wishbone.Fabric,
	region wishbone.Region,
	bus *wishbone.Interface,
) {
	if err := f.AddSlave(region, bus); err != nil {
		panic(err)
	}
}

func (b Builder) buildAnalyzer(name string, s *SoC) {
	s.Analyzer = analyzer.MakeBuilder().
		WithEngine(s.Engine).
		WithRecorder(b.recorder).
		WithDepth(b.traceDepth).
		Build(name + ".Analyzer")

	if s.DRAM == nil {
		return
	}

	io := s.DRAM.SysIO()
	pads := s.DRAM.Pads()

	s.Analyzer.AddProbe(analyzer.Probe{
		Name:   "init_fin",
		Sample: func() uint64 { return boolBit(io.InitFin) },
	})
	s.Analyzer.AddProbe(analyzer.Probe{
		Name:   "wr_ready",
		Sample: func() uint64 { return boolBit(io.WrReady) },
	})
	s.Analyzer.AddProbe(analyzer.Probe{
		Name:   "rd_valid",
		Sample: func() uint64 { return boolBit(io.RdValid) },
	})
	s.Analyzer.AddProbe(analyzer.Probe{
		Name:   "rd_data",
		Sample: func() uint64 { return uint64(io.RdData) },
	})
	s.Analyzer.AddProbe(analyzer.Probe{
		Name: "command",
		Sample: func() uint64 {
			return uint64(slowddr3.DecodeCommand(pads))
		},
	})
	s.Analyzer.AddProbe(analyzer.Probe{
		Name:   "dq",
		Sample: func() uint64 { return uint64(pads.DQAtMem()) },
	})
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
