// Package pipeline implements the hazard-aware timing model of a 5-stage,
// in-order, no-forwarding pipeline (IF/ID/EX/MEM/WB).
//
// The package contains two independent engines that must produce identical
// per-instruction timing: Pipeline simulates the datapath cycle by cycle
// with explicit stall bubbles, and FastTiming computes the same stage-entry
// cycles in closed form from cumulative stalls. Keeping both allows each to
// cross-check the other.
package pipeline

// Stage identifies one of the five pipeline stages.
type Stage int

// Pipeline stages, in datapath order.
const (
	StageIF Stage = iota
	StageID
	StageEX
	StageMEM
	StageWB
	NumStages
)

// String returns the conventional stage name.
func (s Stage) String() string {
	switch s {
	case StageIF:
		return "IF"
	case StageID:
		return "ID"
	case StageEX:
		return "EX"
	case StageMEM:
		return "MEM"
	case StageWB:
		return "WB"
	default:
		return "??"
	}
}

// EmptySlot marks a stage slot holding no instruction (a bubble).
const EmptySlot = -1

// SlotFile is the pipeline register state: one slot per stage, each
// holding a 0-based instruction index into the program, or EmptySlot.
// Occupancy is bounded and known at compile time, so the slots are a
// fixed array rather than any linked structure.
type SlotFile [NumStages]int

// NewSlotFile returns a slot file with every stage empty.
func NewSlotFile() SlotFile {
	var f SlotFile
	f.Clear()
	return f
}

// Clear empties every stage slot.
func (f *SlotFile) Clear() {
	for s := range f {
		f[s] = EmptySlot
	}
}

// Occupied reports whether the given stage holds an instruction.
func (f *SlotFile) Occupied(s Stage) bool {
	return f[s] != EmptySlot
}

// StageSlot describes the occupant of one stage in a cycle snapshot.
type StageSlot struct {
	// Index is the 0-based instruction index, or EmptySlot for a bubble.
	Index int
	// Text is the occupant's display text, "" for a bubble.
	Text string
	// Dest is the occupant's destination register, "" for a bubble.
	Dest string
}

// Occupied reports whether the slot holds an instruction.
func (s StageSlot) Occupied() bool {
	return s.Index != EmptySlot
}

// CycleSnapshot records the full pipeline occupancy at the end of one
// simulated cycle. Snapshots are immutable once emitted and may be
// streamed to trace or CSV writers without synchronization.
type CycleSnapshot struct {
	// Cycle is the 1-based cycle number.
	Cycle int

	// Slots holds the occupant of each stage, indexed by Stage.
	Slots [NumStages]StageSlot

	// StallsPending is the number of bubble cycles still to be injected
	// for the instruction currently held in ID.
	StallsPending int
}
