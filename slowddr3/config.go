// Package slowddr3 models a slow, non-pipelined DDR3 memory controller and
// the register-bus bridge that exposes the DRAM array as one addressable
// memory region.
package slowddr3

import (
	"fmt"
	"math/bits"

	"github.com/sarchlab/slowdram/sim"
)

// Gib is one gigabit.
const Gib uint64 = 1 << 30

// Timings carries every cycle count of the controller's protocol behavior.
// The values are board and part specific configuration. They are supplied by
// the user, never inferred from the memory part's data sheet by this package.
type Timings struct {
	// Initialization step durations, in cycles.
	PowerUp uint64 // WAIT0
	CKE     uint64 // CKE
	MRS     uint64 // each of MRS2, MRS3, MRS1, MRS0
	ZQCL    uint64 // ZQCL
	Settle  uint64 // WAIT1

	// Work phase.
	ActToRW    uint64 // cycles from ACT to the RD/WR command
	CASLatency uint64 // cycles from the RD command to read data capture
	Recovery   uint64 // cycles from the RD/WR command to the bank being idle

	// Refresh scheduling.
	RefreshCycles    uint64 // duration of one refresh operation
	RefreshTick      uint64 // cycles per refresh-counter increment
	RefreshThreshold uint8  // counter value at which a refresh becomes due
}

// SimTimings returns short timings for simulation benches. They preserve the
// protocol's ordering and handshake behavior but compress the wall-clock
// waits of real hardware so that tests run in a few hundred cycles.
func SimTimings() Timings {
	return Timings{
		PowerUp:          16,
		CKE:              4,
		MRS:              4,
		ZQCL:             16,
		Settle:           8,
		ActToRW:          3,
		CASLatency:       6,
		Recovery:         4,
		RefreshCycles:    12,
		RefreshTick:      64,
		RefreshThreshold: 8,
	}
}

func (t Timings) validate() error {
	fields := []struct {
		name  string
		value uint64
	}{
		{"PowerUp", t.PowerUp},
		{"CKE", t.CKE},
		{"MRS", t.MRS},
		{"ZQCL", t.ZQCL},
		{"Settle", t.Settle},
		{"ActToRW", t.ActToRW},
		{"Recovery", t.Recovery},
		{"RefreshCycles", t.RefreshCycles},
		{"RefreshTick", t.RefreshTick},
	}
	for _, f := range fields {
		if f.value == 0 {
			return fmt.Errorf("timing %s must be positive", f.name)
		}
	}

	if t.CASLatency < 3 {
		return fmt.Errorf("CASLatency must be at least 3, got %d", t.CASLatency)
	}

	if t.RefreshThreshold == 0 || t.RefreshThreshold > 15 {
		return fmt.Errorf(
			"RefreshThreshold must be in [1,15], got %d", t.RefreshThreshold)
	}

	if t.RefreshCycles <= 3 {
		return fmt.Errorf(
			"RefreshCycles must be longer than the refresh command sequence")
	}

	min := t.ActToRW + t.CASLatency + 1
	if t.RefreshTick*uint64(t.RefreshThreshold) <= min {
		return fmt.Errorf("refresh interval shorter than one operation")
	}

	return nil
}

// Config selects the modeled memory configuration. Only the single
// width/density combination of the supported part can be built; everything
// else is rejected at construction.
type Config struct {
	DataWidth int    // bits
	Density   uint64 // bits
	Freq      sim.Freq
	TriState  bool
	Debug     bool
	ModeRegs  [4]uint16
	Timings   Timings
}

// AddrWidth returns the width of the flat word address,
// log2(density / data width).
func (c Config) AddrWidth() int {
	return bits.Len64(c.Density/uint64(c.DataWidth)) - 1
}

// Words returns the number of addressable words.
func (c Config) Words() uint64 {
	return c.Density / uint64(c.DataWidth)
}

// CapacityBytes returns the device capacity in bytes.
func (c Config) CapacityBytes() uint64 {
	return c.Density / 8
}

func (c Config) validate() error {
	if c.DataWidth != 16 {
		return fmt.Errorf("unsupported data width %d, only 16 is modeled",
			c.DataWidth)
	}

	if c.Density != 2*Gib {
		return fmt.Errorf("unsupported density %d bits, only 2 Gib is modeled",
			c.Density)
	}

	if c.Freq <= 0 {
		return fmt.Errorf("frequency must be positive")
	}

	return c.Timings.validate()
}
