package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pipesim/timing/pipeline"
)

// snapshotRecorder collects cycle snapshots delivered through the hook.
type snapshotRecorder struct {
	snaps []pipeline.CycleSnapshot
}

func (r *snapshotRecorder) Func(ctx sim.HookCtx) {
	if ctx.Pos != pipeline.HookPosCycleEnd {
		return
	}
	r.snaps = append(r.snaps, ctx.Item.(pipeline.CycleSnapshot))
}

var _ = Describe("Pipeline", func() {
	It("should reject an empty program", func() {
		pipe := pipeline.NewPipeline(nil)

		Expect(pipe.Run()).To(MatchError(pipeline.ErrNothingToSimulate))
		Expect(pipe.Snapshots()).To(BeEmpty())
	})

	It("should run a single mov in five cycles", func() {
		pipe := pipeline.NewPipeline(mustParse("mov x1, x2"))

		Expect(pipe.Run()).To(Succeed())

		Expect(pipe.Cycle()).To(Equal(5))
		tm := pipe.Timings()[0]
		Expect(tm.IF).To(Equal(1))
		Expect(tm.ID).To(Equal(2))
		Expect(tm.EX).To(Equal(3))
		Expect(tm.MEM).To(Equal(4))
		Expect(tm.WB).To(Equal(5))
		Expect(tm.Stalls).To(Equal(0))
	})

	It("should run a hazard-free program in N+4 cycles", func() {
		pipe := pipeline.NewPipeline(mustParse(
			"add x1, x2, x3",
			"sub x4, x5, x6",
			"mov x7, x8",
			"add x9, x10, x11",
		))

		Expect(pipe.Run()).To(Succeed())

		Expect(pipe.Cycle()).To(Equal(8))
		for _, tm := range pipe.Timings() {
			Expect(tm.Stalls).To(Equal(0))
		}
		stats := pipe.Stats()
		Expect(stats.Instructions).To(Equal(uint64(4)))
		Expect(stats.Stalls).To(Equal(uint64(0)))
		Expect(stats.DataHazards).To(Equal(uint64(0)))
	})

	It("should stall twice for an EX producer", func() {
		pipe := pipeline.NewPipeline(mustParse(
			"add x1, x2, x3",
			"add x4, x1, x5",
		))

		Expect(pipe.Run()).To(Succeed())

		timings := pipe.Timings()
		Expect(timings[0].Stalls).To(Equal(0))
		Expect(timings[1].Stalls).To(Equal(2))
		Expect(timings[0].IF).To(Equal(1))
		Expect(timings[1].IF).To(Equal(4))
		Expect(timings[1].WB).To(Equal(8))
		Expect(pipe.Cycle()).To(Equal(8))
		Expect(pipe.Stats().Stalls).To(Equal(uint64(2)))
	})

	It("should stall once for a MEM producer", func() {
		pipe := pipeline.NewPipeline(mustParse(
			"add x1, x2, x3",
			"mov x5, x6",
			"add x4, x1, x7",
		))

		Expect(pipe.Run()).To(Succeed())

		timings := pipe.Timings()
		Expect(timings[0].Stalls).To(Equal(0))
		Expect(timings[1].Stalls).To(Equal(0))
		Expect(timings[2].Stalls).To(Equal(1))
		Expect(timings[2].IF).To(Equal(4))
		Expect(timings[2].WB).To(Equal(8))
		Expect(pipe.Cycle()).To(Equal(8))
	})

	It("should not stall a reader of a drained producer", func() {
		// While instruction 2 drains its two bubbles, the producer of x1
		// moves through MEM and WB, so instruction 3 decodes against an
		// empty MEM and flows freely.
		pipe := pipeline.NewPipeline(mustParse(
			"add x1, x2, x3",
			"add x4, x1, x5",
			"add x6, x1, x7",
		))

		Expect(pipe.Run()).To(Succeed())

		timings := pipe.Timings()
		Expect(timings[1].Stalls).To(Equal(2))
		Expect(timings[2].Stalls).To(Equal(0))
		Expect(timings[2].IF).To(Equal(5))
		Expect(timings[2].WB).To(Equal(9))
		Expect(pipe.Cycle()).To(Equal(9))
		Expect(pipe.Stats().DataHazards).To(Equal(uint64(1)))
	})

	It("should charge the larger penalty when both producers match", func() {
		// The third instruction reads x1, written by both predecessors.
		pipe := pipeline.NewPipeline(mustParse(
			"add x1, x2, x3",
			"mov x1, x4",
			"add x5, x1, x6",
		))

		Expect(pipe.Run()).To(Succeed())

		timings := pipe.Timings()
		Expect(timings[2].Stalls).To(Equal(2))
		Expect(pipe.Cycle()).To(Equal(3 + 4 + 2))
	})

	It("should stall every link of a dependency chain", func() {
		pipe := pipeline.NewPipeline(mustParse(
			"add x1, x2, x3",
			"add x2, x1, x4",
			"add x3, x2, x5",
		))

		Expect(pipe.Run()).To(Succeed())

		timings := pipe.Timings()
		Expect(timings[1].Stalls).To(Equal(2))
		Expect(timings[2].Stalls).To(Equal(2))
		Expect(pipe.Cycle()).To(Equal(3 + 4 + 4))
		Expect(timings[2].WB).To(Equal(11))
	})

	Describe("cycle snapshots", func() {
		It("should emit one snapshot per cycle", func() {
			pipe := pipeline.NewPipeline(mustParse("mov x1, x2"))

			Expect(pipe.Run()).To(Succeed())

			snaps := pipe.Snapshots()
			Expect(snaps).To(HaveLen(5))
			for i, snap := range snaps {
				Expect(snap.Cycle).To(Equal(i + 1))
			}
		})

		It("should walk the instruction through the stages", func() {
			pipe := pipeline.NewPipeline(mustParse("mov x1, x2"))

			Expect(pipe.Run()).To(Succeed())

			snaps := pipe.Snapshots()
			Expect(snaps[0].Slots[pipeline.StageIF].Text).To(Equal("mov x1, x2"))
			Expect(snaps[1].Slots[pipeline.StageID].Text).To(Equal("mov x1, x2"))
			Expect(snaps[2].Slots[pipeline.StageEX].Text).To(Equal("mov x1, x2"))
			Expect(snaps[3].Slots[pipeline.StageMEM].Text).To(Equal("mov x1, x2"))
			Expect(snaps[4].Slots[pipeline.StageWB].Text).To(Equal("mov x1, x2"))
			Expect(snaps[4].Slots[pipeline.StageWB].Dest).To(Equal("x1"))
			Expect(snaps[4].Slots[pipeline.StageIF].Occupied()).To(BeFalse())
		})

		It("should freeze IF/ID and drain a bubble through EX while stalling", func() {
			pipe := pipeline.NewPipeline(mustParse(
				"add x1, x2, x3",
				"add x4, x1, x5",
			))

			Expect(pipe.Run()).To(Succeed())

			snaps := pipe.Snapshots()
			// Cycle 3: hazard detected, two bubbles scheduled.
			Expect(snaps[2].StallsPending).To(Equal(2))
			Expect(snaps[2].Slots[pipeline.StageEX].Index).To(Equal(0))
			Expect(snaps[2].Slots[pipeline.StageID].Index).To(Equal(1))
			// Cycle 4: first bubble, the consumer stays in ID, EX is empty.
			Expect(snaps[3].StallsPending).To(Equal(1))
			Expect(snaps[3].Slots[pipeline.StageID].Index).To(Equal(1))
			Expect(snaps[3].Slots[pipeline.StageEX].Occupied()).To(BeFalse())
			Expect(snaps[3].Slots[pipeline.StageMEM].Index).To(Equal(0))
			// Cycle 5: second bubble drained.
			Expect(snaps[4].StallsPending).To(Equal(0))
			Expect(snaps[4].Slots[pipeline.StageWB].Index).To(Equal(0))
			// Cycle 6: the consumer finally advances to EX.
			Expect(snaps[5].Slots[pipeline.StageEX].Index).To(Equal(1))
		})

		It("should stream snapshots to attached hooks", func() {
			pipe := pipeline.NewPipeline(mustParse("mov x1, x2"))
			recorder := &snapshotRecorder{}
			pipe.AcceptHook(recorder)

			Expect(pipe.Run()).To(Succeed())

			Expect(recorder.snaps).To(Equal(pipe.Snapshots()))
		})
	})

	Describe("Tick", func() {
		It("should be a no-op once the run is done", func() {
			pipe := pipeline.NewPipeline(mustParse("mov x1, x2"))
			Expect(pipe.Run()).To(Succeed())

			pipe.Tick()

			Expect(pipe.Cycle()).To(Equal(5))
			Expect(pipe.Snapshots()).To(HaveLen(5))
		})
	})
})
