package sim

import (
	"fmt"
	"log"
	"sync"
)

// settleLimit bounds the number of Eval passes within one cycle. A design
// whose combinational logic does not settle within this many passes contains
// a combinational loop.
const settleLimit = 1000

// An Engine drives all modules of a design through a single clock domain,
// cycle by cycle.
type Engine struct {
	HookableBase

	freq    Freq
	modules []Module
	byName  map[string]Module

	cycleLock sync.RWMutex
	cycle     uint64

	rstPending bool
	rstHeld    bool

	pauseLock    sync.Mutex
	isPaused     bool
	isPausedLock sync.Mutex
}

// NewEngine creates an Engine running at the given clock frequency.
func NewEngine(freq Freq) *Engine {
	e := new(Engine)
	e.freq = freq
	e.byName = make(map[string]Module)
	return e
}

// Freq returns the clock frequency of the engine.
func (e *Engine) Freq() Freq {
	return e.freq
}

// Register attaches a module to the clock. Module names must be unique within
// one engine.
func (e *Engine) Register(m Module) {
	if _, found := e.byName[m.Name()]; found {
		panic(fmt.Sprintf("module %s already registered", m.Name()))
	}

	e.byName[m.Name()] = m
	e.modules = append(e.modules, m)
}

// Module returns the registered module with the given name, or nil.
func (e *Engine) Module(name string) Module {
	return e.byName[name]
}

// Modules returns all registered modules in registration order.
func (e *Engine) Modules() []Module {
	return e.modules
}

// Cycle returns the number of clock edges applied since the engine was
// created.
func (e *Engine) Cycle() uint64 {
	e.cycleLock.RLock()
	defer e.cycleLock.RUnlock()

	return e.cycle
}

// PulseReset asserts the synchronous reset for the next cycle only.
func (e *Engine) PulseReset() {
	e.rstPending = true
}

// HoldReset asserts or releases the synchronous reset until changed again.
func (e *Engine) HoldReset(held bool) {
	e.rstHeld = held
}

// Step settles combinational logic and applies one clock edge to every
// module.
func (e *Engine) Step() {
	e.pauseLock.Lock()
	defer e.pauseLock.Unlock()

	e.settle()

	rst := e.rstPending || e.rstHeld
	e.rstPending = false

	e.InvokeHook(HookCtx{Domain: e, Pos: HookPosCycleStart, Item: e.cycle})
	if rst {
		e.InvokeHook(HookCtx{Domain: e, Pos: HookPosReset, Item: e.cycle})
	}

	for _, m := range e.modules {
		m.Tick(rst)
	}

	e.cycleLock.Lock()
	e.cycle++
	e.cycleLock.Unlock()

	e.InvokeHook(HookCtx{Domain: e, Pos: HookPosCycleEnd, Item: e.cycle})
}

func (e *Engine) settle() {
	for i := 0; i < settleLimit; i++ {
		changed := false
		for _, m := range e.modules {
			changed = m.Eval() || changed
		}

		if !changed {
			return
		}
	}

	log.Panicf(
		"combinational logic did not settle after %d passes at cycle %d",
		settleLimit, e.cycle,
	)
}

// Run applies n clock edges.
func (e *Engine) Run(n uint64) {
	for i := uint64(0); i < n; i++ {
		e.Step()
	}
}

// RunUntil steps the engine until cond holds after a cycle, or until limit
// cycles have elapsed. It returns true if cond was met.
func (e *Engine) RunUntil(cond func() bool, limit uint64) bool {
	for i := uint64(0); i < limit; i++ {
		e.Step()
		if cond() {
			return true
		}
	}

	return false
}

// Pause prevents the engine from applying further clock edges until Continue
// is called. It is safe to call from another goroutine.
func (e *Engine) Pause() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if e.isPaused {
		return
	}

	e.pauseLock.Lock()
	e.isPaused = true
}

// Continue resumes an engine paused with Pause.
func (e *Engine) Continue() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if !e.isPaused {
		return
	}

	e.isPaused = false
	e.pauseLock.Unlock()
}
