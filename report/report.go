package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pipesim/timing/pipeline"
)

// WriteSummary writes the run summary block: instruction count, base
// cycles, total stalls, total cycles, and the per-instruction stall
// list.
func WriteSummary(w io.Writer, sum pipeline.Summary, timings []pipeline.Timing) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Instructions: %d\n", sum.Instructions)
	fmt.Fprintf(&b, "Base cycles (N+4): %d\n", sum.BaseCycles)
	fmt.Fprintf(&b, "Total stalls: %d\n", sum.TotalStalls)
	fmt.Fprintf(&b, "Total cycles with stalls: %d\n", sum.TotalCycles)

	b.WriteString("Per-instruction stalls (index:stalls):\n")
	for i, t := range timings {
		sep := ", "
		if i == len(timings)-1 {
			sep = "\n"
		}
		fmt.Fprintf(&b, "%d:%d%s", t.Index, t.Stalls, sep)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// SimulatedTime converts a cycle count into simulated seconds at the
// given clock frequency.
func SimulatedTime(cycles int, freq sim.Freq) sim.VTimeInSec {
	return sim.VTimeInSec(float64(cycles) / float64(freq))
}
