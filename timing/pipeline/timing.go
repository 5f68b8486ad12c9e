package pipeline

import "errors"

// ErrNothingToSimulate is returned when an engine is invoked with an
// empty program. An empty run is a precondition violation, not a
// zero-cycle result.
var ErrNothingToSimulate = errors.New("nothing to simulate: empty program")

// Timing records the stage-entry cycles and attributed stalls for one
// instruction. For every instruction ID=IF+1, EX=IF+2, MEM=IF+3 and
// WB=IF+4: stalls delay entry into IF, they never desynchronize the
// stage spacing once an instruction is flowing.
type Timing struct {
	// Index is the 1-based position in program order.
	Index int
	// Text is the instruction's display text.
	Text string

	// Stage-entry cycle numbers.
	IF  int
	ID  int
	EX  int
	MEM int
	WB  int

	// Stalls is the number of bubble cycles charged to this instruction.
	Stalls int
}

// BaseCycles returns the hazard-free cycle count for n instructions:
// one cycle per instruction plus the pipeline fill of the trailing
// four stages.
func BaseCycles(n int) int {
	return n + int(NumStages) - 1
}

// Summary aggregates the timing of a complete run.
type Summary struct {
	// Instructions is the program length N.
	Instructions int
	// BaseCycles is the hazard-free cycle count, N+4.
	BaseCycles int
	// TotalStalls is the sum of all injected bubble cycles.
	TotalStalls int
	// TotalCycles is the cycle in which the last instruction writes back,
	// always BaseCycles+TotalStalls.
	TotalCycles int
}

// Summarize computes the run summary from per-instruction timing rows.
func Summarize(timings []Timing) Summary {
	sum := Summary{Instructions: len(timings)}
	if len(timings) == 0 {
		return sum
	}

	for _, t := range timings {
		sum.TotalStalls += t.Stalls
	}
	sum.BaseCycles = BaseCycles(len(timings))
	sum.TotalCycles = timings[len(timings)-1].WB

	return sum
}

// Statistics holds run-level performance counters.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// Stalls is the number of bubble cycles injected.
	Stalls uint64
	// DataHazards is the number of RAW hazards detected.
	DataHazards uint64
}

// CPI returns the cycles per instruction.
func (s Statistics) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}
