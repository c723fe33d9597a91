package sim

import (
	"log"
	"math"
	"time"
)

// Freq defines the type of frequency.
type Freq float64

// Defines the unit of frequency.
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// Period returns the time between two consecutive clock edges.
func (f Freq) Period() time.Duration {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}
	return time.Duration(math.Round(float64(time.Second) / float64(f)))
}

// Cycles converts a duration into a number of clock cycles, rounding up so
// that a timing constraint expressed in wall-clock time is never violated by
// the rounded cycle count.
func (f Freq) Cycles(d time.Duration) uint64 {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}
	if d < 0 {
		log.Panic("duration cannot be negative")
	}
	return uint64(math.Ceil(d.Seconds() * float64(f)))
}
