package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/slowdram/analyzer"
	"github.com/sarchlab/slowdram/monitoring"
	"github.com/sarchlab/slowdram/slowddr3"
	"github.com/sarchlab/slowdram/soc"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run the register and memory bench.",
	Long: "`bench` brings the system out of reset, waits for memory " +
		"initialization, exercises the plain bus registers, and performs " +
		"memory writes and read backs through the controller.",
	Run: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().Uint64("cycles", 0,
		"Extra cycles to run after the bench completes")
	benchCmd.Flags().Bool("with-dram", true,
		"Include the DRAM controller and memory device")
	benchCmd.Flags().Bool("with-leds", false,
		"Include an LED chaser")
	benchCmd.Flags().Bool("debug", false,
		"Expose controller internal state")
	benchCmd.Flags().String("trace", "",
		"Record a signal trace into the named database")
	benchCmd.Flags().Int("trace-depth", 4096,
		"Maximum number of trace entries")
	benchCmd.Flags().Int("monitor", -1,
		"Serve the monitoring API on this port (0 picks a free port)")
	benchCmd.Flags().Bool("browser", false,
		"Open the monitoring page in a browser")
}

func runBench(cmd *cobra.Command, _ []string) {
	// A .env file can override individual timing values without
	// recompiling.
	_ = godotenv.Load()

	timings := timingsFromEnv(slowddr3.SimTimings())

	b := soc.MakeBuilder().WithTimings(timings)

	withDRAM, _ := cmd.Flags().GetBool("with-dram")
	b = b.WithDRAM(withDRAM)

	withLeds, _ := cmd.Flags().GetBool("with-leds")
	b = b.WithLeds(withLeds)

	debug, _ := cmd.Flags().GetBool("debug")
	b = b.WithDebug(debug)

	trace, _ := cmd.Flags().GetString("trace")
	if trace != "" {
		depth, _ := cmd.Flags().GetInt("trace-depth")
		b = b.WithTraceRecorder(analyzer.NewRecorder(trace)).
			WithTraceDepth(depth)
	}

	s := b.Build("SoC")

	if port, _ := cmd.Flags().GetInt("monitor"); port >= 0 {
		m := monitoring.NewMonitor().WithPortNumber(port)
		if open, _ := cmd.Flags().GetBool("browser"); open {
			m = m.WithBrowser()
		}
		m.RegisterEngine(s.Engine)
		m.StartServer()
	}

	s.Reset()

	runRegisterBench(s)
	if withDRAM {
		runMemoryBench(s)
	}

	if extra, _ := cmd.Flags().GetUint64("cycles"); extra > 0 {
		s.Engine.Run(extra)
	}

	fmt.Printf("Bench passed after %d cycles\n", s.Engine.Cycle())
	atexit.Exit(0)
}

func runRegisterBench(s *soc.SoC) {
	if err := s.RunRegisterTest(soc.Reg32Base, 0xffff_ffff); err != nil {
		log.Fatalf("32-bit register bench failed: %v", err)
	}

	if err := s.RunRegisterTest(soc.Reg16Base, 0xffff); err != nil {
		log.Fatalf("16-bit register bench failed: %v", err)
	}
}

func runMemoryBench(s *soc.SoC) {
	if err := s.WaitInit(10000); err != nil {
		log.Fatalf("memory bench failed: %v", err)
	}

	patterns := []struct {
		adr  uint32
		data uint32
	}{
		{0x0000_0000, 0xBEEF},
		{0x0000_0001, 0x1234},
		{0x0421_0000, 0xA5A5},
		{0x07FF_FFFF, 0xFFFF},
	}

	for _, p := range patterns {
		err := s.WriteWord(soc.DRAMBase+p.adr, p.data, 0b11)
		if err != nil {
			log.Fatalf("memory write at 0x%08X failed: %v", p.adr, err)
		}
	}

	for _, p := range patterns {
		got, err := s.ReadWord(soc.DRAMBase + p.adr)
		if err != nil {
			log.Fatalf("memory read at 0x%08X failed: %v", p.adr, err)
		}

		if got != p.data {
			log.Fatalf("memory at 0x%08X: read 0x%04X, want 0x%04X",
				p.adr, got, p.data)
		}
	}
}

func timingsFromEnv(t slowddr3.Timings) slowddr3.Timings {
	overrideU64(&t.PowerUp, "SLOWDRAM_POWER_UP")
	overrideU64(&t.CKE, "SLOWDRAM_CKE")
	overrideU64(&t.MRS, "SLOWDRAM_MRS")
	overrideU64(&t.ZQCL, "SLOWDRAM_ZQCL")
	overrideU64(&t.Settle, "SLOWDRAM_SETTLE")
	overrideU64(&t.ActToRW, "SLOWDRAM_ACT_TO_RW")
	overrideU64(&t.CASLatency, "SLOWDRAM_CAS_LATENCY")
	overrideU64(&t.Recovery, "SLOWDRAM_RECOVERY")
	overrideU64(&t.RefreshCycles, "SLOWDRAM_REFRESH_CYCLES")
	overrideU64(&t.RefreshTick, "SLOWDRAM_REFRESH_TICK")

	if v := os.Getenv("SLOWDRAM_REFRESH_THRESHOLD"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			log.Fatalf("SLOWDRAM_REFRESH_THRESHOLD: %v", err)
		}
		t.RefreshThreshold = uint8(parsed)
	}

	return t
}

func overrideU64(dst *uint64, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}

	parsed, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		log.Fatalf("%s: %v", key, err)
	}

	*dst = parsed
}
