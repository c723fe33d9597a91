// Package ddr3model provides a behavioral DDR3 device used as the test-side
// responder for the controller's pin-level command traffic. It is a fixture:
// it emulates a device faithfully enough for round-trip testing and panics on
// command sequences a real part would reject.
package ddr3model

import (
	"log"

	"github.com/sarchlab/slowdram/memory"
	"github.com/sarchlab/slowdram/sim"
	"github.com/sarchlab/slowdram/slowddr3"
)

const bytesPerWord = 2

type readReturn struct {
	at   uint64
	data uint16
}

// Comp is the behavioral memory device. It decodes the command strobes each
// cycle, tracks mode registers and per-bank open rows, stores write data, and
// drives read data back after its CAS latency.
type Comp struct {
	sim.ModuleBase

	pads        *slowddr3.Pads
	storage     *memory.Storage
	casLatency  uint64
	driveCycles uint64

	now      uint64
	modeRegs [4]uint16
	modeSeen [4]bool
	zqDone   bool
	openRow  [1 << slowddr3.BankBits]int32

	pending []readReturn

	reads     uint64
	writes    uint64
	refreshes uint64
}

// Refreshes returns the number of REF commands the device has received.
func (c *Comp) Refreshes() uint64 { return c.refreshes }

// Reads returns the number of RD commands the device has received.
func (c *Comp) Reads() uint64 { return c.reads }

// Writes returns the number of WR commands the device has received.
func (c *Comp) Writes() uint64 { return c.writes }

// ModeReg returns the value programmed into the given mode register.
func (c *Comp) ModeReg(i int) uint16 { return c.modeRegs[i] }

// Eval drives the data pins while a scheduled read return is active.
func (c *Comp) Eval() bool {
	drive := slowddr3.Tri{}
	strobe := slowddr3.Tri{}
	for _, r := range c.pending {
		if c.now >= r.at && c.now < r.at+c.driveCycles {
			drive = slowddr3.Tri{Out: r.data, OE: true}
			strobe = slowddr3.Tri{Out: 0b11, OE: true}
			break
		}
	}

	changed := false
	if c.pads.MemDQ != drive {
		c.pads.MemDQ = drive
		changed = true
	}
	if c.pads.MemDQS != strobe {
		c.pads.MemDQS = strobe
		changed = true
	}

	return changed
}

// Tick decodes and executes the command on the pins.
func (c *Comp) Tick(rst bool) {
	defer func() { c.now++ }()

	if !c.pads.RSTn {
		c.deviceReset()
		return
	}

	c.expirePending()

	if !c.pads.CKE {
		return
	}

	switch cmd := slowddr3.DecodeCommand(c.pads); cmd {
	case slowddr3.CmdMRS:
		c.modeRegisterSet()
	case slowddr3.CmdZQCL:
		c.zqDone = true
	case slowddr3.CmdACT:
		c.activate()
	case slowddr3.CmdWR:
		c.write()
	case slowddr3.CmdRD:
		c.read()
	case slowddr3.CmdPRE:
		c.precharge()
	case slowddr3.CmdREF:
		c.refresh()
	case slowddr3.CmdNOP, slowddr3.CmdDES:
	}
}

func (c *Comp) deviceReset() {
	c.modeSeen = [4]bool{}
	c.zqDone = false
	c.pending = nil
	for b := range c.openRow {
		c.openRow[b] = -1
	}
}

func (c *Comp) expirePending() {
	live := c.pending[:0]
	for _, r := range c.pending {
		if c.now < r.at+c.driveCycles {
			live = append(live, r)
		}
	}
	c.pending = live
}

func (c *Comp) initDone() bool {
	return c.zqDone &&
		c.modeSeen[0] && c.modeSeen[1] && c.modeSeen[2] && c.modeSeen[3]
}

func (c *Comp) modeRegisterSet() {
	mr := int(c.pads.BA & 0b11)
	c.modeRegs[mr] = c.pads.A
	c.modeSeen[mr] = true
}

func (c *Comp) activate() {
	if !c.initDone() {
		log.Panicf("%s: ACT before initialization completed", c.Name())
	}

	bank := c.pads.BA
	if c.openRow[bank] >= 0 {
		log.Panicf("%s: ACT to bank %d with row %d already open",
			c.Name(), bank, c.openRow[bank])
	}

	c.openRow[bank] = int32(c.pads.A)
}

func (c *Comp) openRowOr(cmd string) uint16 {
	bank := c.pads.BA
	row := c.openRow[bank]
	if row < 0 {
		log.Panicf("%s: %s to bank %d with no open row", c.Name(), cmd, bank)
	}
	return uint16(row)
}

func (c *Comp) write() {
	row := c.openRowOr("WR")
	addr := c.byteAddr(row)

	cur, err := c.storage.Read(addr, bytesPerWord)
	if err != nil {
		log.Panic(err)
	}

	dq := c.pads.DQAtMem()
	data := []byte{byte(dq), byte(dq >> 8)}
	for b := 0; b < bytesPerWord; b++ {
		if c.pads.DM&(1<<b) != 0 {
			data[b] = cur[b] // masked byte keeps its old value
		}
	}

	if err := c.storage.Write(addr, data); err != nil {
		log.Panic(err)
	}

	c.writes++
}

func (c *Comp) read() {
	row := c.openRowOr("RD")

	data, err := c.storage.Read(c.byteAddr(row), bytesPerWord)
	if err != nil {
		log.Panic(err)
	}

	c.pending = append(c.pending, readReturn{
		at:   c.now + c.casLatency,
		data: uint16(data[0]) | uint16(data[1])<<8,
	})
	c.reads++
}

func (c *Comp) precharge() {
	if c.pads.A&(1<<10) != 0 {
		for b := range c.openRow {
			c.openRow[b] = -1
		}
		return
	}

	c.openRow[c.pads.BA] = -1
}

func (c *Comp) refresh() {
	for b, row := range c.openRow {
		if row >= 0 {
			log.Panicf("%s: REF with bank %d open", c.Name(), b)
		}
	}

	c.refreshes++
}

func (c *Comp) byteAddr(row uint16) uint64 {
	col := c.pads.A & (1<<slowddr3.ColBits - 1)
	word := slowddr3.JoinAddress(row, c.pads.BA, col)
	return uint64(word) * bytesPerWord
}
