package soc

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/slowdram/analyzer"
)

type memoryRecorder struct {
	tables  []string
	entries []analyzer.TraceEntry
}

func (r *memoryRecorder) CreateTable(name string, _ any) {
	r.tables = append(r.tables, name)
}

func (r *memoryRecorder) InsertData(_ string, entry any) {
	r.entries = append(r.entries, entry.(analyzer.TraceEntry))
}

func (r *memoryRecorder) ListTables() []string { return r.tables }

func (r *memoryRecorder) Flush() {}

var _ = Describe("SoC", func() {
	var s *SoC

	BeforeEach(func() {
		s = MakeBuilder().
			WithDebug(true).
			Build("SoC")
		s.Reset()
	})

	It("should pass the register bench on both registers", func() {
		Expect(s.RunRegisterTest(Reg32Base, 0xffff_ffff)).To(Succeed())
		Expect(s.RunRegisterTest(Reg16Base, 0xffff)).To(Succeed())
	})

	It("should finish memory initialization", func() {
		Expect(s.WaitInit(10000)).To(Succeed())

		Expect(s.Model.ModeReg(0)).To(Equal(s.DRAM.Config().ModeRegs[0]))
	})

	It("should write and read back through the whole stack", func() {
		Expect(s.WaitInit(10000)).To(Succeed())

		Expect(s.WriteWord(DRAMBase+0x000, 0xDEAD, 0b11)).To(Succeed())

		got, err := s.ReadWord(DRAMBase + 0x000)
		Expect(err).ToNot(HaveOccurred())
		Expect(got).To(Equal(uint32(0xDEAD)))
	})

	It("should keep distinct addresses distinct", func() {
		Expect(s.WaitInit(10000)).To(Succeed())

		addrs := []uint32{0x0, 0x1, 0x400, 0x2000, 0x07FF_FFFF}
		for i, a := range addrs {
			Expect(s.WriteWord(DRAMBase+a, uint32(0x1000+i), 0b11)).
				To(Succeed())
		}

		for i, a := range addrs {
			got, err := s.ReadWord(DRAMBase + a)
			Expect(err).ToNot(HaveOccurred())
			Expect(got).To(Equal(uint32(0x1000 + i)))
		}
	})

	It("should honor byte selects end to end", func() {
		Expect(s.WaitInit(10000)).To(Succeed())

		Expect(s.WriteWord(DRAMBase+0x20, 0xFFFF, 0b11)).To(Succeed())
		Expect(s.WriteWord(DRAMBase+0x20, 0x00AA, 0b01)).To(Succeed())

		got, err := s.ReadWord(DRAMBase + 0x20)
		Expect(err).ToNot(HaveOccurred())
		Expect(got).To(Equal(uint32(0xFFAA)))
	})

	It("should read back zero from untouched memory", func() {
		Expect(s.WaitInit(10000)).To(Succeed())

		got, err := s.ReadWord(DRAMBase + 0x123456)
		Expect(err).ToNot(HaveOccurred())
		Expect(got).To(Equal(uint32(0)))
	})

	It("should refresh the device periodically", func() {
		Expect(s.WaitInit(10000)).To(Succeed())

		s.Engine.Run(2000)

		Expect(s.Model.Refreshes()).To(BeNumerically(">=", 3))
	})

	It("should keep refreshing under steady traffic", func() {
		Expect(s.WaitInit(10000)).To(Succeed())

		for i := 0; i < 100; i++ {
			adr := DRAMBase + uint32(i)
			Expect(s.WriteWord(adr, uint32(i), 0b11)).To(Succeed())
		}

		Expect(s.Model.Writes()).To(BeNumerically(">=", 100))
		Expect(s.Model.Refreshes()).ToNot(BeZero())
	})
})

var _ = Describe("SoC variants", func() {
	It("should build without the memory subsystem", func() {
		s := MakeBuilder().
			WithDRAM(false).
			Build("RegOnly")
		s.Reset()

		Expect(s.DRAM).To(BeNil())
		Expect(s.RunRegisterTest(Reg32Base, 0xffff_ffff)).To(Succeed())
	})

	It("should record signal traces while running", func() {
		rec := &memoryRecorder{}
		s := MakeBuilder().
			WithTraceRecorder(rec).
			WithTraceDepth(1024).
			Build("Traced")
		s.Reset()

		Expect(s.WaitInit(10000)).To(Succeed())
		Expect(s.WriteWord(DRAMBase, 0x1234, 0b11)).To(Succeed())

		Expect(rec.tables).To(ContainElement("Traced.Analyzer"))
		Expect(s.Analyzer.Captured()).ToNot(BeZero())

		names := map[string]bool{}
		for _, e := range rec.entries {
			names[e.Signal] = true
		}
		Expect(names).To(HaveKey("init_fin"))
		Expect(names).To(HaveKey("command"))
	})

	It("should include an LED chaser when asked", func() {
		s := MakeBuilder().
			WithDRAM(false).
			WithRegisters(false).
			WithLeds(true).
			Build("Blinky")
		s.Reset()

		s.Engine.Run(3)
		Expect(s.Leds.Out).To(Equal(uint32(1)))

		s.Engine.Run(1025)
		Expect(s.Leds.Out).To(Equal(uint32(2)))
	})
})
