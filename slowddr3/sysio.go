package slowddr3

// SysIO is the controller's native system-side port: one valid/ready stream
// per direction plus flat address and byte-select lines shared by both.
//
// A transfer happens exactly on cycles where both valid and ready of a stream
// are asserted. A producer must hold its payload stable from the cycle it
// asserts valid until the transfer completes.
type SysIO struct {
	Address uint32 // flat word address
	Sel     uint8  // byte select, one bit per payload byte

	// Write stream, bridge to controller.
	WrData  uint16
	WrValid bool
	WrReady bool

	// Read stream, controller to bridge.
	RdData  uint16
	RdValid bool
	RdReady bool

	// InitFin latches once the initialization sequence completes.
	InitFin bool
}

// readRequested reports whether the system side is presenting a read request:
// the consumer is ready and a transaction is selecting bytes. The byte-select
// gate keeps the always-ready drain of an idle bus from issuing reads.
func (io *SysIO) readRequested() bool {
	return io.RdReady && io.Sel != 0 && !io.WrValid
}
