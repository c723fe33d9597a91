package wishbone

import (
	"fmt"

	"github.com/sarchlab/slowdram/sim"
)

// A Region is the word-address window a slave occupies on the bus.
type Region struct {
	Name  string
	Base  uint32 // word address of the first word
	Words uint32 // number of addressable words
}

func (r Region) contains(adr uint32) bool {
	return adr >= r.Base && adr-r.Base < r.Words
}

func (r Region) overlaps(o Region) bool {
	return r.Base < o.Base+o.Words && o.Base < r.Base+r.Words
}

type slave struct {
	region Region
	bus    *Interface
}

// A Fabric is a single-master shared bus. It decodes the master's word
// address into one of the attached slave regions, presents the transaction on
// the selected slave interface with a region-relative address, and routes the
// slave's acknowledge and read data back. A transaction that decodes to no
// region is never acknowledged.
type Fabric struct {
	sim.ModuleBase

	master *Interface
	slaves []slave
}

// NewFabric creates a Fabric serving the given master interface.
func NewFabric(name string, master *Interface) *Fabric {
	return &Fabric{
		ModuleBase: sim.NewModuleBase(name),
		master:     master,
	}
}

// AddSlave attaches a slave interface at the given region. Overlapping
// regions are rejected.
func (f *Fabric) AddSlave(region Region, bus *Interface) error {
	if region.Words == 0 {
		return fmt.Errorf("region %s is empty", region.Name)
	}

	for _, s := range f.slaves {
		if s.region.overlaps(region) {
			return fmt.Errorf(
				"region %s overlaps region %s", region.Name, s.region.Name)
		}
	}

	f.slaves = append(f.slaves, slave{region: region, bus: bus})

	return nil
}

// Eval routes the master transaction to the decoded slave and the slave
// response back to the master.
func (f *Fabric) Eval() bool {
	changed := false

	sel := -1
	if f.master.Active() {
		for i, s := range f.slaves {
			if s.region.contains(f.master.Adr) {
				sel = i
				break
			}
		}
	}

	for i, s := range f.slaves {
		next := *s.bus
		if i == sel {
			next.Adr = f.master.Adr - s.region.Base
			next.DatW = f.master.DatW
			next.Sel = f.master.Sel
			next.We = f.master.We
			next.Cyc = f.master.Cyc
			next.Stb = f.master.Stb
		} else {
			next.clearMaster()
		}

		if next != *s.bus {
			*s.bus = next
			changed = true
		}
	}

	next := *f.master
	if sel >= 0 {
		next.Ack = f.slaves[sel].bus.Ack
		next.DatR = f.slaves[sel].bus.DatR
	} else {
		next.clearSlave()
	}

	if next != *f.master {
		*f.master = next
		changed = true
	}

	return changed
}

// Tick implements sim.Module. The fabric is purely combinational.
func (f *Fabric) Tick(rst bool) {}
