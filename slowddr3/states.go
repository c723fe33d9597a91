package slowddr3

// InitState enumerates the steps of the power-up initialization sequence. The
// sequencer traverses the states strictly in order, exactly once per reset.
type InitState uint8

// The initialization sequence.
const (
	InitWait0 InitState = iota
	InitCKE
	InitMRS2
	InitMRS3
	InitMRS1
	InitMRS0
	InitZQCL
	InitWait1
)

func (s InitState) String() string {
	switch s {
	case InitWait0:
		return "WAIT0"
	case InitCKE:
		return "CKE"
	case InitMRS2:
		return "MRS2"
	case InitMRS3:
		return "MRS3"
	case InitMRS1:
		return "MRS1"
	case InitMRS0:
		return "MRS0"
	case InitZQCL:
		return "ZQCL"
	case InitWait1:
		return "WAIT1"
	}
	return "INVALID"
}

// next returns the following initialization step. InitWait1 is terminal.
func (s InitState) next() InitState {
	if s == InitWait1 {
		return InitWait1
	}
	return s + 1
}

// modeRegister returns the mode register a MRS step programs, or -1 if the
// step does not issue a mode-register-set command.
func (s InitState) modeRegister() int {
	switch s {
	case InitMRS0:
		return 0
	case InitMRS1:
		return 1
	case InitMRS2:
		return 2
	case InitMRS3:
		return 3
	}
	return -1
}

// WorkState enumerates the scheduler states entered after initialization
// finishes.
type WorkState uint8

// The work scheduler states.
const (
	WorkIdle WorkState = iota
	WorkRead
	WorkWrite
	WorkRefresh
)

func (s WorkState) String() string {
	switch s {
	case WorkIdle:
		return "IDLE"
	case WorkRead:
		return "READ"
	case WorkWrite:
		return "WRITE"
	case WorkRefresh:
		return "REFRESH"
	}
	return "INVALID"
}
