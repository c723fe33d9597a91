package slowddr3

import (
	"github.com/sarchlab/slowdram/sim"
	"github.com/sarchlab/slowdram/wishbone"
)

// A Bridge adapts register-bus transactions to the controller's streaming
// ports. It is purely combinational.
//
// On an active write, the write stream carries the bus data and the
// acknowledge is a passthrough of the controller's write-ready. On an active
// read, the acknowledge mirrors the controller's read-valid and the bus read
// data mirrors the read payload. The read stream's ready is held asserted
// whenever the bus is idle or reading, so the bridge continuously drains the
// controller's read channel.
//
// An inactive bus forces the address, byte selects, and valid flags to
// quiescent values so no spurious command reaches the controller. The bridge
// has no timeout: a stalled controller stalls the bus indefinitely.
type Bridge struct {
	sim.ModuleBase

	bus *wishbone.Interface
	io  *SysIO
}

// NewBridge creates a Bridge between bus and the controller port io.
func NewBridge(name string, bus *wishbone.Interface, io *SysIO) *Bridge {
	return &Bridge{
		ModuleBase: sim.NewModuleBase(name),
		bus:        bus,
		io:         io,
	}
}

// Eval derives the streaming-port requests and the bus response.
func (b *Bridge) Eval() bool {
	active := b.bus.Active()
	writing := active && b.bus.We
	reading := active && !b.bus.We

	io := *b.io
	io.WrValid = writing
	io.RdReady = !writing
	if active {
		io.Address = b.bus.Adr
		io.Sel = b.bus.Sel & 0b11
	} else {
		io.Address = 0
		io.Sel = 0
	}
	if writing {
		io.WrData = uint16(b.bus.DatW)
	} else {
		io.WrData = 0
	}

	bus := *b.bus
	switch {
	case writing:
		bus.Ack = b.io.WrReady
		bus.DatR = 0
	case reading:
		bus.Ack = b.io.RdValid
		bus.DatR = uint32(b.io.RdData)
	default:
		bus.Ack = false
		bus.DatR = 0
	}

	changed := false
	if io != *b.io {
		*b.io = io
		changed = true
	}
	if bus != *b.bus {
		*b.bus = bus
		changed = true
	}

	return changed
}

// Tick implements sim.Module. The bridge holds no clocked state.
func (b *Bridge) Tick(rst bool) {}
