// Package memory provides the sparse backing storage used by the simulated
// DRAM device.
package memory

import "fmt"

// Common capacity units.
const (
	KB uint64 = 1 << 10
	MB uint64 = 1 << 20
	GB uint64 = 1 << 30
)

// A Storage keeps the data of a simulated memory device.
//
// Storage allocates memory in fixed-size units, so that a large device (such
// as a 2 Gib DRAM part) can be modeled without committing its full capacity
// up front. Units that are never written occupy no host memory and read as
// zero.
type Storage struct {
	unitSize uint64
	capacity uint64
	units    map[uint64][]byte
}

// NewStorage creates a Storage with the given capacity in bytes.
func NewStorage(capacity uint64) *Storage {
	return &Storage{
		unitSize: 4096,
		capacity: capacity,
		units:    make(map[uint64][]byte),
	}
}

// Capacity returns the capacity of the storage in bytes.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

func (s *Storage) unit(addr uint64, alloc bool) ([]byte, uint64, error) {
	if addr >= s.capacity {
		return nil, 0, fmt.Errorf(
			"address 0x%x beyond storage capacity 0x%x", addr, s.capacity)
	}

	inUnit := addr % s.unitSize
	base := addr - inUnit

	u, ok := s.units[base]
	if !ok {
		if !alloc {
			return nil, inUnit, nil
		}

		u = make([]byte, s.unitSize)
		s.units[base] = u
	}

	return u, inUnit, nil
}

// Read returns n bytes starting at addr. Unwritten locations read as zero.
func (s *Storage) Read(addr, n uint64) ([]byte, error) {
	if addr+n > s.capacity {
		return nil, fmt.Errorf(
			"read of %d bytes at 0x%x beyond storage capacity 0x%x",
			n, addr, s.capacity)
	}

	out := make([]byte, n)
	for done := uint64(0); done < n; {
		u, inUnit, err := s.unit(addr+done, false)
		if err != nil {
			return nil, err
		}

		span := s.unitSize - inUnit
		if left := n - done; left < span {
			span = left
		}

		if u != nil {
			copy(out[done:done+span], u[inUnit:inUnit+span])
		}

		done += span
	}

	return out, nil
}

// Write stores data starting at addr.
func (s *Storage) Write(addr uint64, data []byte) error {
	n := uint64(len(data))
	if addr+n > s.capacity {
		return fmt.Errorf(
			"write of %d bytes at 0x%x beyond storage capacity 0x%x",
			n, addr, s.capacity)
	}

	for done := uint64(0); done < n; {
		u, inUnit, err := s.unit(addr+done, true)
		if err != nil {
			return err
		}

		span := s.unitSize - inUnit
		if left := n - done; left < span {
			span = left
		}

		copy(u[inUnit:inUnit+span], data[done:done+span])
		done += span
	}

	return nil
}
