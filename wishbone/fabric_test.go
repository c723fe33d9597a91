package wishbone

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/slowdram/sim"
)

var _ = Describe("Fabric", func() {
	var (
		engine *sim.Engine
		master *Interface
		fabric *Fabric

		busA, busB *Interface
		regA, regB *Register
	)

	BeforeEach(func() {
		engine = sim.NewEngine(100 * sim.MHz)
		master = &Interface{}
		fabric = NewFabric("Fabric", master)
		engine.Register(fabric)

		busA = &Interface{}
		regA = NewRegister("RegA", busA, 32)
		engine.Register(regA)

		busB = &Interface{}
		regB = NewRegister("RegB", busB, 32)
		engine.Register(regB)

		err := fabric.AddSlave(Region{Name: "a", Base: 0x1000, Words: 16}, busA)
		Expect(err).ToNot(HaveOccurred())

		err = fabric.AddSlave(Region{Name: "b", Base: 0x2000, Words: 16}, busB)
		Expect(err).ToNot(HaveOccurred())
	})

	It("should reject empty regions", func() {
		err := fabric.AddSlave(Region{Name: "empty", Base: 0x3000}, &Interface{})
		Expect(err).To(HaveOccurred())
	})

	It("should reject overlapping regions", func() {
		err := fabric.AddSlave(
			Region{Name: "clash", Base: 0x1008, Words: 16}, &Interface{})
		Expect(err).To(HaveOccurred())
	})

	It("should route a transaction to the decoded slave", func() {
		*master = Interface{
			Adr: 0x1003, DatW: 42, Sel: 0xf, We: true, Cyc: true, Stb: true,
		}

		engine.Step()

		Expect(master.Ack).To(BeTrue())
		Expect(regA.Value()).To(Equal(uint32(42)))
		Expect(regB.Value()).To(Equal(uint32(0)))
	})

	It("should present region-relative addresses to slaves", func() {
		*master = Interface{Adr: 0x2005, Sel: 0xf, Cyc: true, Stb: true}

		engine.Step()

		Expect(busB.Adr).To(Equal(uint32(5)))
		Expect(busA.Cyc).To(BeFalse())
	})

	It("should never acknowledge an unmapped address", func() {
		*master = Interface{Adr: 0x9000, Sel: 0xf, We: true, Cyc: true, Stb: true}

		for i := 0; i < 5; i++ {
			engine.Step()
			Expect(master.Ack).To(BeFalse())
		}
	})

	It("should hold inactive slaves quiescent", func() {
		*master = Interface{
			Adr: 0x1000, DatW: 7, Sel: 0xf, We: true, Cyc: true, Stb: true,
		}

		engine.Step()

		Expect(busB.Cyc).To(BeFalse())
		Expect(busB.Stb).To(BeFalse())
		Expect(busB.We).To(BeFalse())
		Expect(busB.Sel).To(Equal(uint8(0)))
	})
})
