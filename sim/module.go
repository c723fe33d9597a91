package sim

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// A Module is a piece of synchronous hardware attached to the system clock.
//
// All modules in one Engine share a single clock domain. Within a cycle, the
// Engine calls Eval repeatedly until no module reports a change, so that
// combinational signals settle to a fixpoint. It then calls Tick on every
// module exactly once to apply the clock edge.
//
// Eval must only derive outputs from the module's current inputs and internal
// registers. Tick must only sample settled inputs and update internal
// registers; outputs computed from registers are published in the next Eval.
type Module interface {
	Named

	// Eval propagates combinational logic. It returns true if any signal that
	// the module drives changed value.
	Eval() bool

	// Tick applies the clock edge. When rst is true the module must load its
	// reset state instead of its next state (synchronous reset).
	Tick(rst bool)
}

// ModuleBase provides the name bookkeeping shared by module implementations.
type ModuleBase struct {
	name string
}

// NewModuleBase creates a new ModuleBase.
func NewModuleBase(name string) ModuleBase {
	return ModuleBase{name: name}
}

// Name returns the name of the module.
func (m ModuleBase) Name() string {
	return m.name
}
