package sim

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Freq", func() {
	It("should calculate the period", func() {
		Expect((100 * MHz).Period()).To(Equal(10 * time.Nanosecond))
		Expect((1 * GHz).Period()).To(Equal(1 * time.Nanosecond))
		Expect((1 * KHz).Period()).To(Equal(1 * time.Millisecond))
	})

	It("should panic on zero frequency", func() {
		Expect(func() { Freq(0).Period() }).To(Panic())
	})

	It("should round cycle counts up", func() {
		f := 100 * MHz

		Expect(f.Cycles(10 * time.Nanosecond)).To(Equal(uint64(1)))
		Expect(f.Cycles(11 * time.Nanosecond)).To(Equal(uint64(2)))
		Expect(f.Cycles(200 * time.Microsecond)).To(Equal(uint64(20000)))
	})

	It("should panic on negative durations", func() {
		Expect(func() { (1 * GHz).Cycles(-time.Second) }).To(Panic())
	})
})
