package slowddr3

import (
	"log"

	"github.com/sarchlab/slowdram/sim"
)

// Address geometry of the modeled 2 Gib x16 part.
const (
	ColBits  = 10
	BankBits = 3
	RowBits  = 14
)

// SplitAddress splits a flat word address into row, bank, and column.
func SplitAddress(word uint32) (row uint16, bank uint8, col uint16) {
	col = uint16(word & (1<<ColBits - 1))
	bank = uint8(word >> ColBits & (1<<BankBits - 1))
	row = uint16(word >> (ColBits + BankBits) & (1<<RowBits - 1))
	return
}

// JoinAddress reassembles a flat word address from row, bank, and column.
func JoinAddress(row uint16, bank uint8, col uint16) uint32 {
	return uint32(row)<<(ColBits+BankBits) |
		uint32(bank)<<ColBits |
		uint32(col)
}

// A Command is a decoded DDR3 command. On the pins a command is encoded on
// the active-low CSn/RASn/CASn/WEn strobes per the JEDEC command truth table.
type Command uint8

// The commands the controller issues.
const (
	CmdDES Command = iota // chip deselected
	CmdNOP
	CmdACT
	CmdRD
	CmdWR
	CmdPRE
	CmdREF
	CmdMRS
	CmdZQCL
)

func (c Command) String() string {
	switch c {
	case CmdDES:
		return "DES"
	case CmdNOP:
		return "NOP"
	case CmdACT:
		return "ACT"
	case CmdRD:
		return "RD"
	case CmdWR:
		return "WR"
	case CmdPRE:
		return "PRE"
	case CmdREF:
		return "REF"
	case CmdMRS:
		return "MRS"
	case CmdZQCL:
		return "ZQCL"
	}
	return "INVALID"
}

// encode drives the command strobes. Strobe fields hold the pin level, so a
// true value means the active-low strobe is deasserted.
func (c Command) encode(p *Pads) {
	p.CSn = false
	switch c {
	case CmdDES:
		p.CSn, p.RASn, p.CASn, p.WEn = true, true, true, true
	case CmdNOP:
		p.RASn, p.CASn, p.WEn = true, true, true
	case CmdACT:
		p.RASn, p.CASn, p.WEn = false, true, true
	case CmdRD:
		p.RASn, p.CASn, p.WEn = true, false, true
	case CmdWR:
		p.RASn, p.CASn, p.WEn = true, false, false
	case CmdPRE:
		p.RASn, p.CASn, p.WEn = false, true, false
	case CmdREF:
		p.RASn, p.CASn, p.WEn = false, false, true
	case CmdMRS:
		p.RASn, p.CASn, p.WEn = false, false, false
	case CmdZQCL:
		p.RASn, p.CASn, p.WEn = true, true, false
	}
}

// DecodeCommand recovers the command from the pin levels.
func DecodeCommand(p *Pads) Command {
	if p.CSn {
		return CmdDES
	}

	switch {
	case p.RASn && p.CASn && p.WEn:
		return CmdNOP
	case !p.RASn && p.CASn && p.WEn:
		return CmdACT
	case p.RASn && !p.CASn && p.WEn:
		return CmdRD
	case p.RASn && !p.CASn && !p.WEn:
		return CmdWR
	case !p.RASn && p.CASn && !p.WEn:
		return CmdPRE
	case !p.RASn && !p.CASn && p.WEn:
		return CmdREF
	case !p.RASn && !p.CASn && !p.WEn:
		return CmdMRS
	default:
		return CmdZQCL
	}
}

// A Tri is one driver's view of a bidirectional pin group: the value it would
// drive and whether its output is enabled.
type Tri struct {
	Out uint16
	OE  bool
}

// Pads is the pin-level interface between the controller and the memory
// device. The controller drives the command, address, and control pins; the
// data and strobe pins are bidirectional, with each side owning a Tri driver
// that the pad resolver arbitrates.
type Pads struct {
	sim.ModuleBase

	A    uint16 // row/column address, RowBits wide
	BA   uint8
	CSn  bool
	RASn bool
	CASn bool
	WEn  bool
	CKE  bool
	ODT  bool
	RSTn bool
	CKp  bool
	CKn  bool
	DM   uint8 // one bit per data byte, high masks the byte

	CtrlDQ Tri
	MemDQ  Tri
	CtrlDQS Tri
	MemDQS  Tri

	triState bool

	dqAtCtrl  uint16
	dqAtMem   uint16
	dqsAtCtrl uint16
	dqsAtMem  uint16
}

// NewPads creates the pad resolver. With triState set, the data pins are a
// shared line and simultaneous drive from both sides is a fatal modeling
// error. Without it, the two directions are split into independent paths.
func NewPads(name string, triState bool) *Pads {
	return &Pads{
		ModuleBase: sim.NewModuleBase(name),
		triState:   triState,
		RASn:       true,
		CASn:       true,
		WEn:        true,
		CSn:        true,
	}
}

// DQAtCtrl returns the data pins as sampled by the controller.
func (p *Pads) DQAtCtrl() uint16 { return p.dqAtCtrl }

// DQAtMem returns the data pins as sampled by the memory device.
func (p *Pads) DQAtMem() uint16 { return p.dqAtMem }

// Eval resolves the bidirectional lines and the complementary clock.
func (p *Pads) Eval() bool {
	dqCtrl, dqMem := p.resolve("DQ", p.CtrlDQ, p.MemDQ, p.dqAtCtrl, p.dqAtMem)
	dqsCtrl, dqsMem := p.resolve(
		"DQS", p.CtrlDQS, p.MemDQS, p.dqsAtCtrl, p.dqsAtMem)
	ckn := !p.CKp

	changed := dqCtrl != p.dqAtCtrl || dqMem != p.dqAtMem ||
		dqsCtrl != p.dqsAtCtrl || dqsMem != p.dqsAtMem ||
		ckn != p.CKn

	p.dqAtCtrl, p.dqAtMem = dqCtrl, dqMem
	p.dqsAtCtrl, p.dqsAtMem = dqsCtrl, dqsMem
	p.CKn = ckn

	return changed
}

func (p *Pads) resolve(
	line string,
	ctrl, mem Tri,
	prevCtrl, prevMem uint16,
) (atCtrl, atMem uint16) {
	if !p.triState {
		return mem.Out, ctrl.Out
	}

	if ctrl.OE && mem.OE {
		log.Panicf("%s: both sides driving %s", p.Name(), line)
	}

	switch {
	case ctrl.OE:
		return ctrl.Out, ctrl.Out
	case mem.OE:
		return mem.Out, mem.Out
	default:
		// Nobody drives; the line floats at its previous value.
		return prevCtrl, prevMem
	}
}

// Tick implements sim.Module. The pads hold no clocked state.
func (p *Pads) Tick(rst bool) {}
