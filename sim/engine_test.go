package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// scriptedModule counts kernel callbacks and reports combinational progress a
// configurable number of times per cycle.
type scriptedModule struct {
	ModuleBase

	evalProgress int
	evalCalls    int
	tickCalls    int
	rstSeen      int
}

func (m *scriptedModule) Eval() bool {
	m.evalCalls++
	if m.evalProgress > 0 {
		m.evalProgress--
		return true
	}
	return false
}

func (m *scriptedModule) Tick(rst bool) {
	m.tickCalls++
	if rst {
		m.rstSeen++
	}
}

type recordingHook struct {
	positions []*HookPos
}

func (h *recordingHook) Func(ctx HookCtx) {
	h.positions = append(h.positions, ctx.Pos)
}

var _ = Describe("Engine", func() {
	var (
		engine *Engine
		m1, m2 *scriptedModule
	)

	BeforeEach(func() {
		engine = NewEngine(100 * MHz)
		m1 = &scriptedModule{ModuleBase: NewModuleBase("M1")}
		m2 = &scriptedModule{ModuleBase: NewModuleBase("M2")}
		engine.Register(m1)
		engine.Register(m2)
	})

	It("should reject duplicate module names", func() {
		dup := &scriptedModule{ModuleBase: NewModuleBase("M1")}
		Expect(func() { engine.Register(dup) }).To(Panic())
	})

	It("should find modules by name", func() {
		Expect(engine.Module("M1")).To(BeIdenticalTo(m1))
		Expect(engine.Module("M3")).To(BeNil())
		Expect(engine.Modules()).To(HaveLen(2))
	})

	It("should tick every module once per step", func() {
		engine.Step()
		engine.Step()

		Expect(m1.tickCalls).To(Equal(2))
		Expect(m2.tickCalls).To(Equal(2))
		Expect(engine.Cycle()).To(Equal(uint64(2)))
	})

	It("should re-evaluate until combinational logic settles", func() {
		m1.evalProgress = 3

		engine.Step()

		// Three passes with progress, plus the final pass that
		// observes no change.
		Expect(m1.evalCalls).To(Equal(4))
		Expect(m2.evalCalls).To(Equal(4))
	})

	It("should panic on a combinational loop", func() {
		m1.evalProgress = settleLimit + 1

		Expect(func() { engine.Step() }).To(Panic())
	})

	It("should apply a pulsed reset for exactly one cycle", func() {
		engine.PulseReset()

		engine.Step()
		Expect(m1.rstSeen).To(Equal(1))

		engine.Step()
		Expect(m1.rstSeen).To(Equal(1))
	})

	It("should hold reset until released", func() {
		engine.HoldReset(true)
		engine.Run(3)
		Expect(m1.rstSeen).To(Equal(3))

		engine.HoldReset(false)
		engine.Step()
		Expect(m1.rstSeen).To(Equal(3))
	})

	It("should run until a condition holds", func() {
		met := engine.RunUntil(func() bool {
			return engine.Cycle() == 5
		}, 100)

		Expect(met).To(BeTrue())
		Expect(engine.Cycle()).To(Equal(uint64(5)))
	})

	It("should give up when the condition is never met", func() {
		met := engine.RunUntil(func() bool { return false }, 10)

		Expect(met).To(BeFalse())
		Expect(engine.Cycle()).To(Equal(uint64(10)))
	})

	It("should invoke hooks around each cycle", func() {
		hook := &recordingHook{}
		engine.AcceptHook(hook)

		engine.PulseReset()
		engine.Step()
		engine.Step()

		Expect(hook.positions).To(Equal([]*HookPos{
			HookPosCycleStart, HookPosReset, HookPosCycleEnd,
			HookPosCycleStart, HookPosCycleEnd,
		}))
	})
})
