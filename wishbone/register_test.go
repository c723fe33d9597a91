package wishbone

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/slowdram/sim"
)

var _ = Describe("Register", func() {
	var (
		engine *sim.Engine
		bus    *Interface
		reg    *Register
	)

	BeforeEach(func() {
		engine = sim.NewEngine(100 * sim.MHz)
		bus = &Interface{}
		reg = NewRegister("Reg", bus, 32)
		engine.Register(reg)
	})

	It("should reject unsupported widths", func() {
		Expect(func() { NewRegister("Bad", bus, 8) }).To(Panic())
	})

	It("should stay quiet while the bus is idle", func() {
		engine.Run(3)

		Expect(bus.Ack).To(BeFalse())
		Expect(bus.DatR).To(Equal(uint32(0)))
	})

	It("should acknowledge and store a full write", func() {
		*bus = Interface{
			DatW: 0xDEAD_BEEF, Sel: 0xf, We: true, Cyc: true, Stb: true,
		}

		engine.Step()

		Expect(bus.Ack).To(BeTrue())
		Expect(reg.Value()).To(Equal(uint32(0xDEAD_BEEF)))
	})

	It("should honor byte selects on writes", func() {
		*bus = Interface{
			DatW: 0xDEAD_BEEF, Sel: 0xf, We: true, Cyc: true, Stb: true,
		}
		engine.Step()

		*bus = Interface{
			DatW: 0x1122_3344, Sel: 0b0101, We: true, Cyc: true, Stb: true,
		}
		engine.Step()

		Expect(reg.Value()).To(Equal(uint32(0xDE22_BE44)))
	})

	It("should return the stored value on reads", func() {
		*bus = Interface{
			DatW: 0xCAFE_F00D, Sel: 0xf, We: true, Cyc: true, Stb: true,
		}
		engine.Step()

		*bus = Interface{Sel: 0xf, Cyc: true, Stb: true}
		engine.Step()

		Expect(bus.Ack).To(BeTrue())
		Expect(bus.DatR).To(Equal(uint32(0xCAFE_F00D)))
	})

	It("should mask writes to its width", func() {
		bus16 := &Interface{}
		reg16 := NewRegister("Reg16", bus16, 16)
		engine.Register(reg16)

		*bus16 = Interface{
			DatW: 0xDEAD_BEEF, Sel: 0b11, We: true, Cyc: true, Stb: true,
		}
		engine.Step()

		Expect(reg16.Value()).To(Equal(uint32(0xBEEF)))
	})

	It("should clear on reset", func() {
		*bus = Interface{
			DatW: 0xFFFF_FFFF, Sel: 0xf, We: true, Cyc: true, Stb: true,
		}
		engine.Step()
		Expect(reg.Value()).ToNot(Equal(uint32(0)))

		*bus = Interface{}
		engine.PulseReset()
		engine.Step()

		Expect(reg.Value()).To(Equal(uint32(0)))
	})
})
