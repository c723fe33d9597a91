package slowddr3

import "github.com/sarchlab/slowdram/sim"

// DebugState is a read-only snapshot of the controller's debug-visible
// signals. It is purely observational and must never feed back into control
// logic.
type DebugState struct {
	InitState     InitState
	WorkState     WorkState
	RefreshCnt    uint8
	RefreshIssued bool
}

// Comp is the DDR3 controller. It owns two orthogonal state machines: an
// initialization sequencer that runs exactly once after reset, and a work
// scheduler that arbitrates reads, writes, and periodic refreshes once
// initialization finishes. At most one operation is in flight at a time.
type Comp struct {
	sim.ModuleBase

	cfg  Config
	io   *SysIO
	pads *Pads

	// Initialization sequencer.
	initState InitState
	initCnt   uint64
	initFin   bool

	// Work scheduler.
	workState WorkState
	opCnt     uint64
	adr       uint32
	wrData    uint16
	wrSel     uint8
	rdData    uint16
	rdValid   bool
	wrReady   bool

	// Refresh scheduling.
	refreshPrescale uint64
	refreshCnt      uint8
	refreshIssued   bool

	// Pin drive registers.
	cmd   Command
	cmdA  uint16
	cmdBA uint8
	cke   bool
	odt   bool
	rstn  bool
	dq    Tri
	dqs   Tri
	dm    uint8
}

// SysIO returns the controller's system-side streaming port.
func (c *Comp) SysIO() *SysIO {
	return c.io
}

// Pads returns the controller's pin-level interface.
func (c *Comp) Pads() *Pads {
	return c.pads
}

// Config returns the configuration the controller was built with.
func (c *Comp) Config() Config {
	return c.cfg
}

// Debug returns the debug-visible state, or nil when the controller was built
// without the debug flag.
func (c *Comp) Debug() *DebugState {
	if !c.cfg.Debug {
		return nil
	}

	return &DebugState{
		InitState:     c.initState,
		WorkState:     c.workState,
		RefreshCnt:    c.refreshCnt,
		RefreshIssued: c.refreshIssued,
	}
}

func setSig[T comparable](dst *T, v T) bool {
	if *dst == v {
		return false
	}
	*dst = v
	return true
}

// Eval publishes the register outputs onto the streaming port and the pins.
func (c *Comp) Eval() bool {
	changed := false

	io := *c.io
	io.WrReady = c.wrReady
	io.RdValid = c.rdValid
	io.RdData = c.rdData
	io.InitFin = c.initFin
	if io != *c.io {
		*c.io = io
		changed = true
	}

	p := c.pads
	changed = setSig(&p.A, c.cmdA) || changed
	changed = setSig(&p.BA, c.cmdBA) || changed
	changed = setSig(&p.CKE, c.cke) || changed
	changed = setSig(&p.ODT, c.odt) || changed
	changed = setSig(&p.RSTn, c.rstn) || changed
	changed = setSig(&p.CKp, true) || changed
	changed = setSig(&p.DM, c.dm) || changed
	changed = setSig(&p.CtrlDQ, c.dq) || changed
	changed = setSig(&p.CtrlDQS, c.dqs) || changed

	var strobes Pads
	c.cmd.encode(&strobes)
	changed = setSig(&p.CSn, strobes.CSn) || changed
	changed = setSig(&p.RASn, strobes.RASn) || changed
	changed = setSig(&p.CASn, strobes.CASn) || changed
	changed = setSig(&p.WEn, strobes.WEn) || changed

	return changed
}

// Tick advances both state machines by one clock cycle.
func (c *Comp) Tick(rst bool) {
	if rst {
		c.reset()
		return
	}

	// One-cycle pulses and per-cycle pin defaults.
	c.cmd = CmdNOP
	c.cmdA = 0
	c.cmdBA = 0
	c.wrReady = false
	c.refreshIssued = false
	c.dq = Tri{}
	c.dqs = Tri{}
	c.dm = 0
	c.odt = false

	if !c.initFin {
		c.tickInit()
		return
	}

	c.tickRefreshCounter()
	c.tickWork()
}

func (c *Comp) reset() {
	c.initState = InitWait0
	c.initCnt = 0
	c.initFin = false
	c.workState = WorkIdle
	c.opCnt = 0
	c.adr = 0
	c.wrData = 0
	c.wrSel = 0
	c.rdData = 0
	c.rdValid = false
	c.wrReady = false
	c.refreshPrescale = 0
	c.refreshCnt = 0
	c.refreshIssued = false
	c.cmd = CmdDES
	c.cmdA = 0
	c.cmdBA = 0
	c.cke = false
	c.odt = false
	c.rstn = false
	c.dq = Tri{}
	c.dqs = Tri{}
	c.dm = 0
}

func (c *Comp) initDuration(s InitState) uint64 {
	t := c.cfg.Timings
	switch s {
	case InitWait0:
		return t.PowerUp
	case InitCKE:
		return t.CKE
	case InitZQCL:
		return t.ZQCL
	case InitWait1:
		return t.Settle
	default:
		return t.MRS
	}
}

func (c *Comp) tickInit() {
	c.initCnt++

	if c.initState == InitWait0 {
		// The device is held in reset and deselected while power settles.
		c.rstn = false
		c.cmd = CmdDES
	}

	if c.initCnt < c.initDuration(c.initState) {
		return
	}

	if c.initState == InitWait1 {
		c.initFin = true
		return
	}

	c.initState = c.initState.next()
	c.initCnt = 0
	c.enterInitState()
}

// enterInitState issues the command of the initialization step being entered.
func (c *Comp) enterInitState() {
	c.rstn = true

	switch c.initState {
	case InitCKE:
		c.cke = true
	case InitZQCL:
		c.cmd = CmdZQCL
		c.cmdA = 1 << 10
	default:
		if mr := c.initState.modeRegister(); mr >= 0 {
			c.cmd = CmdMRS
			c.cmdBA = uint8(mr)
			c.cmdA = c.cfg.ModeRegs[mr]
		}
	}
}

func (c *Comp) tickRefreshCounter() {
	c.refreshPrescale++
	if c.refreshPrescale < c.cfg.Timings.RefreshTick {
		return
	}

	c.refreshPrescale = 0
	if c.refreshCnt < 15 {
		c.refreshCnt++
	}
}

func (c *Comp) tickWork() {
	switch c.workState {
	case WorkIdle:
		c.tickIdle()
	case WorkWrite:
		c.tickWrite()
	case WorkRead:
		c.tickRead()
	case WorkRefresh:
		c.tickRefresh()
	}
}

// tickIdle arbitrates the next operation. Refresh outranks writes, writes
// outrank reads, so refresh can never be starved by traffic.
func (c *Comp) tickIdle() {
	switch {
	case c.refreshCnt >= c.cfg.Timings.RefreshThreshold:
		c.workState = WorkRefresh
		c.opCnt = 0
		c.cmd = CmdPRE
		c.cmdA = 1 << 10 // precharge all banks
	case c.io.WrValid:
		c.workState = WorkWrite
		c.opCnt = 0
		c.adr = c.io.Address
		c.wrData = c.io.WrData
		c.wrSel = c.io.Sel
		c.activateRow()
	case c.io.readRequested():
		c.workState = WorkRead
		c.opCnt = 0
		c.adr = c.io.Address
		c.activateRow()
	}
}

func (c *Comp) activateRow() {
	row, bank, _ := SplitAddress(c.adr)
	c.cmd = CmdACT
	c.cmdA = row
	c.cmdBA = bank
}

func (c *Comp) tickWrite() {
	c.opCnt++
	t := c.cfg.Timings
	_, bank, col := SplitAddress(c.adr)

	switch c.opCnt {
	case t.ActToRW:
		c.cmd = CmdWR
		c.cmdA = col
		c.cmdBA = bank
		c.dq = Tri{Out: c.wrData, OE: true}
		c.dqs = Tri{Out: 0b11, OE: true}
		c.dm = ^c.wrSel & 0b11
		c.odt = true
	case t.ActToRW + t.Recovery:
		c.cmd = CmdPRE
		c.cmdBA = bank
	case t.ActToRW + t.Recovery + 1:
		// Consume the write payload: ready pulses for exactly one cycle.
		c.wrReady = true
	case t.ActToRW + t.Recovery + 2:
		c.workState = WorkIdle
	}
}

func (c *Comp) tickRead() {
	c.opCnt++
	t := c.cfg.Timings
	_, bank, col := SplitAddress(c.adr)

	switch c.opCnt {
	case t.ActToRW:
		c.cmd = CmdRD
		c.cmdA = col
		c.cmdBA = bank
	case t.ActToRW + t.CASLatency:
		c.rdData = c.pads.DQAtCtrl()
		c.rdValid = true
	case t.ActToRW + t.CASLatency + 1:
		c.cmd = CmdPRE
		c.cmdBA = bank
	}

	// The presented payload is held until the consumer takes it.
	if c.io.RdValid && c.io.RdReady {
		c.rdValid = false
	}

	total := t.ActToRW + t.CASLatency + t.Recovery
	if c.opCnt >= total && !c.rdValid && !c.io.RdValid {
		c.workState = WorkIdle
	}
}

func (c *Comp) tickRefresh() {
	c.opCnt++
	t := c.cfg.Timings

	if c.opCnt == 2 {
		c.cmd = CmdREF
		c.refreshIssued = true
		c.refreshCnt = 0
		c.refreshPrescale = 0
	}

	if c.opCnt >= t.RefreshCycles {
		c.workState = WorkIdle
	}
}
