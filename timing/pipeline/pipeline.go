package pipeline

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/timing/latency"
)

// HookPosCycleEnd is the hook position invoked after every simulated
// cycle. The hook item is the cycle's CycleSnapshot, so trace and CSV
// writers can be attached to the engine as ordinary Akita hooks.
var HookPosCycleEnd = &sim.HookPos{Name: "PipelineCycleEnd"}

// PipelineOption is a functional option for configuring the Pipeline.
type PipelineOption func(*Pipeline)

// WithHazardConfig sets custom stall penalties for hazard detection.
func WithHazardConfig(config *latency.Config) PipelineOption {
	return func(p *Pipeline) {
		p.hazardUnit = NewHazardUnitWithConfig(config)
	}
}

// Pipeline is the stepwise engine: explicit 5-slot pipeline register
// state advanced one cycle at a time, with stall-bubble injection on
// read-after-write hazards.
//
// Each cycle either retires an instruction or drains a pending stall,
// so a run always terminates within BaseCycles(N) plus the injected
// stall cycles.
type Pipeline struct {
	sim.HookableBase

	program    insts.Program
	hazardUnit *HazardUnit

	slots        SlotFile
	pc           int // next unfetched instruction index
	completed    int
	cycle        int
	pendingStall int

	timings   []Timing
	snapshots []CycleSnapshot
	stats     Statistics
}

// NewPipeline creates a stepwise engine for the given program. The
// program must already be validated by the parser; the engine performs
// no opcode-arity checks of its own.
func NewPipeline(program insts.Program, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		program:    program,
		hazardUnit: NewHazardUnit(),
		slots:      NewSlotFile(),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.timings = make([]Timing, len(program))
	for i, inst := range program {
		p.timings[i] = Timing{Index: i + 1, Text: inst.Text}
	}

	return p
}

// Run advances the pipeline until every instruction has written back.
// It returns ErrNothingToSimulate when the program is empty.
func (p *Pipeline) Run() error {
	if len(p.program) == 0 {
		return ErrNothingToSimulate
	}

	for !p.Done() {
		p.Tick()
	}

	return nil
}

// Done reports whether every instruction has retired.
func (p *Pipeline) Done() bool {
	return p.completed == len(p.program)
}

// Cycle returns the current cycle number. After a completed run this is
// the total cycle count of the program.
func (p *Pipeline) Cycle() int {
	return p.cycle
}

// Tick advances the pipeline by one cycle.
func (p *Pipeline) Tick() {
	if p.Done() {
		return
	}

	p.cycle++

	if p.pendingStall > 0 {
		// Bubble injection: the downstream half of the pipe keeps moving,
		// EX drains empty, and IF/ID stay frozen in place.
		p.shift(StageMEM, StageWB)
		p.shift(StageEX, StageMEM)
		p.pendingStall--
		p.stats.Stalls++
	} else {
		p.shift(StageMEM, StageWB)
		p.shift(StageEX, StageMEM)
		p.shift(StageID, StageEX)
		p.shift(StageIF, StageID)
		p.fetch()
		p.detectHazard()
	}

	snap := p.snapshot()
	p.snapshots = append(p.snapshots, snap)
	p.InvokeHook(sim.HookCtx{Domain: p, Pos: HookPosCycleEnd, Item: snap})

	p.retire()
	p.stats.Cycles = uint64(p.cycle)
}

// shift moves the occupant of one stage into the next, leaving the
// source stage empty. Empty stages propagate as bubbles.
func (p *Pipeline) shift(from, to Stage) {
	if !p.slots.Occupied(from) {
		return
	}

	idx := p.slots[from]
	p.slots[to] = idx
	p.slots[from] = EmptySlot
	p.enteredStage(idx, to)
}

// fetch places the next unfetched instruction into IF, if any remains.
func (p *Pipeline) fetch() {
	if p.pc < len(p.program) {
		p.slots[StageIF] = p.pc
		p.pc++
	}
}

// detectHazard consults the hazard unit for the instruction that just
// arrived in ID, against the post-move occupants of EX and MEM. A
// positive result freezes IF/ID and schedules that many bubble cycles,
// charged to the decoding instruction.
func (p *Pipeline) detectHazard() {
	idIdx := p.slots[StageID]
	if idIdx == EmptySlot {
		return
	}

	req := p.hazardUnit.StallCycles(
		p.occupant(StageID),
		p.occupant(StageEX),
		p.occupant(StageMEM),
	)
	if req == 0 {
		return
	}

	p.pendingStall = req
	p.stats.DataHazards++
	p.timings[idIdx].Stalls = req
}

// retire completes the instruction sitting in WB at the end of the
// cycle. The cycle it spent in WB is its write-back cycle, so the final
// cycle number of a run equals the last instruction's WB entry.
func (p *Pipeline) retire() {
	if !p.slots.Occupied(StageWB) {
		return
	}

	p.slots[StageWB] = EmptySlot
	p.completed++
	p.stats.Instructions++
}

// enteredStage records stage-entry cycles for the timing report.
//
// EX, MEM, and WB entries are observed directly. A stalled instruction
// physically waits in ID (with its successor frozen in IF) while the
// bubbles drain; the reported IF/ID columns place that wait before
// fetch instead, so every reported instruction advances exactly one
// stage per cycle from its IF on.
func (p *Pipeline) enteredStage(idx int, s Stage) {
	tm := &p.timings[idx]
	switch s {
	case StageEX:
		tm.EX = p.cycle
		tm.ID = p.cycle - 1
		tm.IF = p.cycle - 2
	case StageMEM:
		tm.MEM = p.cycle
	case StageWB:
		tm.WB = p.cycle
	}
}

// occupant returns the instruction in the given stage, or nil for a
// bubble.
func (p *Pipeline) occupant(s Stage) *insts.Instruction {
	idx := p.slots[s]
	if idx == EmptySlot {
		return nil
	}
	return p.program[idx]
}

// snapshot captures the post-move occupancy of the current cycle.
func (p *Pipeline) snapshot() CycleSnapshot {
	snap := CycleSnapshot{
		Cycle:         p.cycle,
		StallsPending: p.pendingStall,
	}

	for s := StageIF; s < NumStages; s++ {
		idx := p.slots[s]
		slot := StageSlot{Index: idx}
		if idx != EmptySlot {
			inst := p.program[idx]
			slot.Text = inst.Text
			slot.Dest = inst.Rd
		}
		snap.Slots[s] = slot
	}

	return snap
}

// Timings returns the per-instruction timing rows. The rows are complete
// once Run has finished; during a partial Tick-by-Tick run, stages not
// yet reached hold zero.
func (p *Pipeline) Timings() []Timing {
	return p.timings
}

// Snapshots returns the per-cycle occupancy records emitted so far.
func (p *Pipeline) Snapshots() []CycleSnapshot {
	return p.snapshots
}

// Stats returns the run-level performance counters.
func (p *Pipeline) Stats() Statistics {
	return p.stats
}

// Summary aggregates the per-instruction timing of a completed run.
func (p *Pipeline) Summary() Summary {
	return Summarize(p.timings)
}
