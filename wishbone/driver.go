package wishbone

import (
	"errors"

	"github.com/sarchlab/slowdram/sim"
)

// ErrTimeout reports that a transaction was not acknowledged within the
// driver's configured cycle limit.
var ErrTimeout = errors.New("bus timeout waiting for ack")

// ErrReset reports that a transaction was abandoned by a reset.
var ErrReset = errors.New("bus transaction aborted by reset")

// An Op is one bus transaction issued through a Driver. Done is set when the
// transaction is acknowledged or abandoned; DatR carries the read data of a
// completed read.
type Op struct {
	We   bool
	Adr  uint32
	DatW uint32
	Sel  uint8

	Done bool
	Err  error
	DatR uint32
}

// A Driver is a programmatic bus master. It issues queued transactions one at
// a time, holding each active until the slave acknowledges. A zero timeout
// waits forever, matching the bus contract that a stalled slave stalls the
// master indefinitely.
type Driver struct {
	sim.ModuleBase

	bus     *Interface
	timeout uint64

	queue []*Op
	cur   *Op
	tries uint64

	drive Interface // registered master outputs
}

// NewDriver creates a Driver mastering the given bus interface.
func NewDriver(name string, bus *Interface) *Driver {
	return &Driver{
		ModuleBase: sim.NewModuleBase(name),
		bus:        bus,
	}
}

// WithTimeout bounds, in cycles, how long a transaction may wait for an
// acknowledge. Zero means no bound.
func (d *Driver) WithTimeout(cycles uint64) *Driver {
	d.timeout = cycles
	return d
}

// Write queues a write of data to the given word address.
func (d *Driver) Write(adr, data uint32, sel uint8) *Op {
	op := &Op{We: true, Adr: adr, DatW: data, Sel: sel}
	d.queue = append(d.queue, op)
	return op
}

// Read queues a read of the given word address.
func (d *Driver) Read(adr uint32) *Op {
	op := &Op{Adr: adr, Sel: 0xff}
	d.queue = append(d.queue, op)
	return op
}

// Idle reports whether the driver has no transaction in flight or queued.
func (d *Driver) Idle() bool {
	return d.cur == nil && len(d.queue) == 0
}

// Eval publishes the registered master signals onto the bus.
func (d *Driver) Eval() bool {
	next := *d.bus
	next.Adr = d.drive.Adr
	next.DatW = d.drive.DatW
	next.Sel = d.drive.Sel
	next.We = d.drive.We
	next.Cyc = d.drive.Cyc
	next.Stb = d.drive.Stb

	if next == *d.bus {
		return false
	}

	*d.bus = next

	return true
}

// Tick samples the acknowledge and advances the transaction queue.
func (d *Driver) Tick(rst bool) {
	if rst {
		d.abortAll()
		return
	}

	if d.cur == nil {
		d.issueNext()
		return
	}

	if d.bus.Ack {
		if !d.cur.We {
			d.cur.DatR = d.bus.DatR
		}
		d.complete(nil)
		return
	}

	d.tries++
	if d.timeout > 0 && d.tries >= d.timeout {
		d.complete(ErrTimeout)
	}
}

func (d *Driver) issueNext() {
	if len(d.queue) == 0 {
		return
	}

	d.cur = d.queue[0]
	d.queue = d.queue[1:]
	d.tries = 0

	d.drive = Interface{
		Adr:  d.cur.Adr,
		DatW: d.cur.DatW,
		Sel:  d.cur.Sel,
		We:   d.cur.We,
		Cyc:  true,
		Stb:  true,
	}
}

func (d *Driver) complete(err error) {
	d.cur.Err = err
	d.cur.Done = true
	d.cur = nil
	d.drive = Interface{}
}

func (d *Driver) abortAll() {
	if d.cur != nil {
		d.cur.Err = ErrReset
		d.cur.Done = true
		d.cur = nil
	}

	for _, op := range d.queue {
		op.Err = ErrReset
		op.Done = true
	}

	d.queue = nil
	d.drive = Interface{}
}
