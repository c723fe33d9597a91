// Package wishbone models a synchronous split-handshake register bus with
// cycle/strobe/acknowledge signaling, word addressing, and byte selects.
package wishbone

// An Interface is the signal bundle of one bus connection. Data lines carry
// up to 32 bits; narrower peripherals use the low bits and the matching Sel
// bits.
type Interface struct {
	Adr  uint32 // word address
	DatW uint32
	DatR uint32
	Sel  uint8 // one bit per byte of DatW/DatR
	We   bool
	Cyc  bool
	Stb  bool
	Ack  bool
}

// Active reports whether a transaction is being presented. Ack must never be
// asserted while the interface is inactive.
func (i *Interface) Active() bool {
	return i.Cyc && i.Stb
}

// clearSlave forces the signals a slave drives to their quiescent values.
func (i *Interface) clearSlave() {
	i.DatR = 0
	i.Ack = false
}

// clearMaster forces the signals a master drives to their quiescent values.
func (i *Interface) clearMaster() {
	i.Adr = 0
	i.DatW = 0
	i.Sel = 0
	i.We = false
	i.Cyc = false
	i.Stb = false
}
