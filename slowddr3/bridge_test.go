package slowddr3

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/slowdram/sim"
	"github.com/sarchlab/slowdram/wishbone"
)

var _ = Describe("Bridge", func() {
	var (
		engine *sim.Engine
		bus    *wishbone.Interface
		io     *SysIO
	)

	BeforeEach(func() {
		engine = sim.NewEngine(100 * sim.MHz)
		bus = &wishbone.Interface{}
		io = &SysIO{}
		bridge := NewBridge("Bridge", bus, io)
		engine.Register(bridge)
	})

	It("should hold streams quiescent while the bus is idle", func() {
		engine.Step()

		Expect(io.WrValid).To(BeFalse())
		Expect(io.Address).To(Equal(uint32(0)))
		Expect(io.Sel).To(Equal(uint8(0)))
		Expect(io.RdReady).To(BeTrue())
		Expect(bus.Ack).To(BeFalse())
	})

	It("should map an active write onto the write stream", func() {
		*bus = wishbone.Interface{
			Adr: 0x42, DatW: 0x1234_BEEF, Sel: 0xf,
			We: true, Cyc: true, Stb: true,
		}

		engine.Step()

		Expect(io.WrValid).To(BeTrue())
		Expect(io.WrData).To(Equal(uint16(0xBEEF)))
		Expect(io.Address).To(Equal(uint32(0x42)))
		Expect(io.Sel).To(Equal(uint8(0b11)))
		Expect(io.RdReady).To(BeFalse())
		Expect(bus.Ack).To(BeFalse())
	})

	It("should acknowledge a write when the controller consumes it", func() {
		*bus = wishbone.Interface{
			Adr: 0x42, DatW: 0xBEEF, Sel: 0b11,
			We: true, Cyc: true, Stb: true,
		}
		io.WrReady = true

		engine.Step()

		Expect(bus.Ack).To(BeTrue())
	})

	It("should acknowledge a read when the controller presents data", func() {
		*bus = wishbone.Interface{Adr: 0x42, Sel: 0b11, Cyc: true, Stb: true}
		io.RdValid = true
		io.RdData = 0x55AA

		engine.Step()

		Expect(bus.Ack).To(BeTrue())
		Expect(bus.DatR).To(Equal(uint32(0x55AA)))
		Expect(io.RdReady).To(BeTrue())
	})

	It("should never acknowledge an inactive bus", func() {
		io.WrReady = true
		io.RdValid = true

		engine.Step()

		Expect(bus.Ack).To(BeFalse())
		Expect(bus.DatR).To(Equal(uint32(0)))
	})
})
