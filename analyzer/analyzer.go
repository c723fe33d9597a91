package analyzer

import (
	"log"

	"github.com/sarchlab/slowdram/sim"
)

// A Probe names one signal and knows how to read its current value.
type Probe struct {
	Name   string
	Sample func() uint64
}

// A TraceEntry is one recorded value change of one probed signal.
type TraceEntry struct {
	Cycle  uint64
	Signal string
	Value  uint64
}

// Analyzer samples a set of probes at the end of every cycle and records
// value changes through a Recorder. It stops recording once the configured
// depth is exhausted.
type Analyzer struct {
	name     string
	engine   *sim.Engine
	recorder Recorder
	depth    int

	probes   []Probe
	last     map[string]uint64
	captured int
}

// Name returns the analyzer name.
func (a *Analyzer) Name() string {
	return a.name
}

// AddProbe registers a signal to observe.
func (a *Analyzer) AddProbe(p Probe) {
	if p.Sample == nil {
		log.Panicf("analyzer %s: probe %s has no sample function",
			a.name, p.Name)
	}

	a.probes = append(a.probes, p)
}

// Captured returns the number of entries recorded so far.
func (a *Analyzer) Captured() int {
	return a.captured
}

// Func samples all probes at the end of each cycle. Only value changes are
// recorded, so idle stretches cost no trace depth.
func (a *Analyzer) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosCycleEnd {
		return
	}

	if a.captured >= a.depth {
		return
	}

	cycle := a.engine.Cycle()
	for _, p := range a.probes {
		v := p.Sample()

		prev, seen := a.last[p.Name]
		if seen && prev == v {
			continue
		}

		a.last[p.Name] = v
		a.recorder.InsertData(a.name, TraceEntry{
			Cycle:  cycle,
			Signal: p.Name,
			Value:  v,
		})

		a.captured++
		if a.captured >= a.depth {
			return
		}
	}
}

// Builder configures and creates analyzers.
type Builder struct {
	engine   *sim.Engine
	recorder Recorder
	depth    int
}

// MakeBuilder returns a Builder with a default capture depth.
func MakeBuilder() Builder {
	return Builder{depth: 4096}
}

// WithEngine sets the engine whose cycles drive the sampling.
func (b Builder) WithEngine(engine *sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithRecorder sets the trace storage backend.
func (b Builder) WithRecorder(r Recorder) Builder {
	b.recorder = r
	return b
}

// WithDepth sets the maximum number of recorded entries.
func (b Builder) WithDepth(depth int) Builder {
	b.depth = depth
	return b
}

// Build creates the analyzer and hooks it to the engine.
func (b Builder) Build(name string) *Analyzer {
	if b.engine == nil {
		panic("analyzer must have an engine")
	}

	if b.recorder == nil {
		panic("analyzer must have a recorder")
	}

	if b.depth <= 0 {
		panic("analyzer depth must be positive")
	}

	a := &Analyzer{
		name:     name,
		engine:   b.engine,
		recorder: b.recorder,
		depth:    b.depth,
		last:     make(map[string]uint64),
	}

	a.recorder.CreateTable(name, TraceEntry{})
	b.engine.AcceptHook(a)

	return a
}
