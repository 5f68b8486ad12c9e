package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pipesim/timing/pipeline"
)

// CycleCSVWriter writes one row per simulated cycle:
// cycle,IF,ID,EX,MEM,WB,stalls_pending. Empty stage fields denote
// bubbles.
type CycleCSVWriter struct {
	w           *csv.Writer
	wroteHeader bool
	err         error
}

// NewCycleCSVWriter creates a per-cycle CSV writer targeting w.
func NewCycleCSVWriter(w io.Writer) *CycleCSVWriter {
	return &CycleCSVWriter{w: csv.NewWriter(w)}
}

// Func implements sim.Hook. It renders snapshots delivered at
// HookPosCycleEnd and ignores every other hook position.
func (c *CycleCSVWriter) Func(ctx sim.HookCtx) {
	if ctx.Pos != pipeline.HookPosCycleEnd {
		return
	}
	c.Write(ctx.Item.(pipeline.CycleSnapshot))
}

// Write appends the row for one cycle snapshot.
func (c *CycleCSVWriter) Write(s pipeline.CycleSnapshot) {
	if c.err != nil {
		return
	}
	if !c.wroteHeader {
		c.err = c.w.Write([]string{"cycle", "IF", "ID", "EX", "MEM", "WB", "stalls_pending"})
		c.wroteHeader = true
		if c.err != nil {
			return
		}
	}

	row := []string{strconv.Itoa(s.Cycle)}
	for st := pipeline.StageIF; st < pipeline.NumStages; st++ {
		row = append(row, s.Slots[st].Text)
	}
	row = append(row, strconv.Itoa(s.StallsPending))
	c.err = c.w.Write(row)
}

// Flush writes buffered rows through and returns the first error
// encountered during writing.
func (c *CycleCSVWriter) Flush() error {
	c.w.Flush()
	if c.err != nil {
		return c.err
	}
	return c.w.Error()
}

// WriteTimeline writes the per-instruction timing table:
// idx,instruction,IF,ID,EX,MEM,WB,stalls_here.
func WriteTimeline(w io.Writer, timings []pipeline.Timing) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"idx", "instruction", "IF", "ID", "EX", "MEM", "WB", "stalls_here"}); err != nil {
		return fmt.Errorf("failed to write timeline header: %w", err)
	}

	for _, t := range timings {
		row := []string{
			strconv.Itoa(t.Index),
			t.Text,
			strconv.Itoa(t.IF),
			strconv.Itoa(t.ID),
			strconv.Itoa(t.EX),
			strconv.Itoa(t.MEM),
			strconv.Itoa(t.WB),
			strconv.Itoa(t.Stalls),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write timeline row %d: %w", t.Index, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush timeline: %w", err)
	}
	return nil
}
