// Package report renders pipeline runs as human-readable cycle traces,
// CSV tables, and summary blocks.
//
// The per-cycle writers implement sim.Hook, so they can be attached to
// the stepwise engine and stream each cycle as it is simulated:
//
//	pipe := pipeline.NewPipeline(program)
//	pipe.AcceptHook(report.NewTraceWriter(os.Stdout))
//	err := pipe.Run()
package report

import (
	"fmt"
	"io"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pipesim/timing/pipeline"
)

// TraceWriter renders one block of stage-activity lines per cycle, in
// commit order (WB first, IF last).
type TraceWriter struct {
	w   io.Writer
	err error
}

// NewTraceWriter creates a trace writer targeting w.
func NewTraceWriter(w io.Writer) *TraceWriter {
	return &TraceWriter{w: w}
}

// Func implements sim.Hook. It renders snapshots delivered at
// HookPosCycleEnd and ignores every other hook position.
func (t *TraceWriter) Func(ctx sim.HookCtx) {
	if ctx.Pos != pipeline.HookPosCycleEnd {
		return
	}
	t.Write(ctx.Item.(pipeline.CycleSnapshot))
}

// Write renders a single cycle snapshot.
func (t *TraceWriter) Write(s pipeline.CycleSnapshot) {
	t.stage(s.Cycle, "WB    ", s.Slots[pipeline.StageWB], " -> write "+s.Slots[pipeline.StageWB].Dest)
	t.stage(s.Cycle, "MEM   ", s.Slots[pipeline.StageMEM], " (bypassed)")
	t.stage(s.Cycle, "EXEC  ", s.Slots[pipeline.StageEX], "")
	t.stage(s.Cycle, "DECODE", s.Slots[pipeline.StageID], "")
	t.stage(s.Cycle, "FETCH ", s.Slots[pipeline.StageIF], "")
}

func (t *TraceWriter) stage(cycle int, name string, slot pipeline.StageSlot, suffix string) {
	if !slot.Occupied() || t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, "C%3d: %s [%2d] %s%s\n",
		cycle, name, slot.Index, slot.Text, suffix)
}

// Err returns the first write error encountered, if any.
func (t *TraceWriter) Err() error {
	return t.err
}
