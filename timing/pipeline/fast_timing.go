package pipeline

import (
	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/timing/latency"
)

// FastTimingOption is a functional option for configuring FastTiming.
type FastTimingOption func(*FastTiming)

// WithFastHazardConfig sets custom stall penalties for the closed-form
// engine.
func WithFastHazardConfig(config *latency.Config) FastTimingOption {
	return func(ft *FastTiming) {
		ft.config = config
	}
}

// FastTiming is the closed-form engine: it computes the same
// per-instruction stage-entry cycles as Pipeline directly from
// cumulative stalls, without simulating bubbles cycle by cycle.
//
// With single-issue no-forwarding timing, instruction i always arrives
// in ID in the cycle instruction i-1 enters EX, so the EX occupant at
// decode time is always i-1. The MEM occupant is i-2 only when i-1
// flowed without stalling: a stall on i-1 widens the gap and lets i-2
// drain through MEM before i decodes. Tracking the two preceding
// destination registers plus the preceding stall therefore reproduces
// the hazard unit's penalty policy without modeling stage occupancy at
// all, which makes this engine both a fast path and an independent
// cross-check for the stepwise one.
type FastTiming struct {
	program insts.Program
	config  *latency.Config

	timings []Timing
	stats   Statistics
}

// NewFastTiming creates a closed-form engine for the given program.
func NewFastTiming(program insts.Program, opts ...FastTimingOption) *FastTiming {
	ft := &FastTiming{
		program: program,
		config:  latency.DefaultConfig(),
	}

	for _, opt := range opts {
		opt(ft)
	}

	return ft
}

// Run computes the timing of every instruction. It returns
// ErrNothingToSimulate when the program is empty.
func (ft *FastTiming) Run() error {
	if len(ft.program) == 0 {
		return ErrNothingToSimulate
	}

	ft.timings = make([]Timing, len(ft.program))

	// Destination registers of the two immediately preceding
	// instructions; "" while fewer than two have been seen.
	prev1, prev2 := "", ""

	// prevStall is the stall count of the preceding instruction. A
	// stalled predecessor means the 2-back producer has already drained
	// out of MEM by the time this instruction decodes.
	prevStall := 0

	// cursor is the earliest possible IF cycle for the next instruction.
	cursor := 1

	for i, inst := range ft.program {
		stall := 0
		switch {
		case prev1 != "" && inst.ReadsFrom(prev1):
			// Nearer producer dominates; never a sum of both penalties.
			stall = ft.config.EXHazardStalls
		case prev2 != "" && prevStall == 0 && inst.ReadsFrom(prev2):
			stall = ft.config.MEMHazardStalls
		}

		first := cursor + stall
		ft.timings[i] = Timing{
			Index:  i + 1,
			Text:   inst.Text,
			IF:     first,
			ID:     first + 1,
			EX:     first + 2,
			MEM:    first + 3,
			WB:     first + 4,
			Stalls: stall,
		}
		cursor = first + 1

		if stall > 0 {
			ft.stats.DataHazards++
			ft.stats.Stalls += uint64(stall)
		}

		prev2 = prev1
		prev1 = inst.Rd
		prevStall = stall
	}

	ft.stats.Instructions = uint64(len(ft.program))
	ft.stats.Cycles = uint64(ft.timings[len(ft.timings)-1].WB)

	return nil
}

// Timings returns the per-instruction timing rows of the last run.
func (ft *FastTiming) Timings() []Timing {
	return ft.timings
}

// Stats returns the run-level performance counters of the last run.
func (ft *FastTiming) Stats() Statistics {
	return ft.stats
}

// Summary aggregates the per-instruction timing of the last run.
func (ft *FastTiming) Summary() Summary {
	return Summarize(ft.timings)
}
