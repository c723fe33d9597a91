package wishbone

import "github.com/sarchlab/slowdram/sim"

// A Register is a single read/write register attached to the bus, used by the
// register-tester bench. It acknowledges every active transaction in the same
// cycle. Writes honor the byte selects; reads return the stored value.
type Register struct {
	sim.ModuleBase

	bus   *Interface
	width int

	q uint32 // stored value
	d uint32 // next value, settled combinationally
}

// NewRegister creates a Register of the given bit width (16 or 32) on bus.
func NewRegister(name string, bus *Interface, width int) *Register {
	if width != 16 && width != 32 {
		panic("register width must be 16 or 32")
	}

	return &Register{
		ModuleBase: sim.NewModuleBase(name),
		bus:        bus,
		width:      width,
	}
}

// Value returns the stored value.
func (r *Register) Value() uint32 {
	return r.q
}

func (r *Register) mask() uint32 {
	if r.width == 32 {
		return 0xffff_ffff
	}
	return 0xffff
}

// Eval derives the acknowledge, read data, and next register value.
func (r *Register) Eval() bool {
	next := *r.bus
	d := r.q

	if r.bus.Active() {
		next.Ack = true
		if r.bus.We {
			d = r.q
			for b := 0; b < r.width/8; b++ {
				if r.bus.Sel&(1<<b) != 0 {
					byteMask := uint32(0xff) << (8 * b)
					d = d&^byteMask | r.bus.DatW&byteMask
				}
			}
		} else {
			next.DatR = r.q
		}
	} else {
		next.clearSlave()
	}

	changed := false
	if next != *r.bus {
		*r.bus = next
		changed = true
	}

	if d != r.d {
		r.d = d
		changed = true
	}

	return changed
}

// Tick latches the settled next value.
func (r *Register) Tick(rst bool) {
	if rst {
		r.q = 0
		r.d = 0
		return
	}

	r.q = r.d & r.mask()
}
