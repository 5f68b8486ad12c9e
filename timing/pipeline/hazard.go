package pipeline

import (
	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/timing/latency"
)

// HazardUnit detects read-after-write hazards for the no-forwarding
// datapath and reports the stall cycles they require. It holds only
// immutable configuration, so a single unit may be consulted by any
// number of engines.
type HazardUnit struct {
	config *latency.Config
}

// NewHazardUnit creates a hazard unit with the default penalties
// (EX producer: 2 stalls, MEM producer: 1 stall).
func NewHazardUnit() *HazardUnit {
	return NewHazardUnitWithConfig(latency.DefaultConfig())
}

// NewHazardUnitWithConfig creates a hazard unit with custom penalties.
func NewHazardUnitWithConfig(config *latency.Config) *HazardUnit {
	return &HazardUnit{config: config}
}

// Config returns the penalty configuration in use.
func (h *HazardUnit) Config() *latency.Config {
	return h.config
}

// StallCycles returns the number of bubble cycles required before the
// instruction in ID may proceed, given the instructions currently in EX
// and MEM (nil when the stage holds a bubble).
//
// The nearer producer dominates: when both the EX and the MEM occupant
// write a register the decoding instruction reads, the result is the EX
// penalty alone, never the sum of the two.
func (h *HazardUnit) StallCycles(id, ex, mem *insts.Instruction) int {
	if id == nil {
		return 0
	}
	if ex != nil && id.ReadsFrom(ex.Rd) {
		return h.config.EXHazardStalls
	}
	if mem != nil && id.ReadsFrom(mem.Rd) {
		return h.config.MEMHazardStalls
	}
	return 0
}
