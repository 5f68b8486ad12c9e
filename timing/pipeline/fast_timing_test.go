package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipesim/timing/latency"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

var _ = Describe("FastTiming", func() {
	It("should reject an empty program", func() {
		ft := pipeline.NewFastTiming(nil)

		Expect(ft.Run()).To(MatchError(pipeline.ErrNothingToSimulate))
		Expect(ft.Timings()).To(BeEmpty())
	})

	It("should time a single mov", func() {
		ft := pipeline.NewFastTiming(mustParse("mov x1, x2"))

		Expect(ft.Run()).To(Succeed())

		Expect(ft.Timings()).To(Equal([]pipeline.Timing{{
			Index: 1, Text: "mov x1, x2",
			IF: 1, ID: 2, EX: 3, MEM: 4, WB: 5,
			Stalls: 0,
		}}))
		Expect(ft.Summary().TotalCycles).To(Equal(5))
	})

	It("should charge 2 stalls for a 1-back dependence", func() {
		ft := pipeline.NewFastTiming(mustParse(
			"add x1, x2, x3",
			"add x4, x1, x5",
		))

		Expect(ft.Run()).To(Succeed())

		timings := ft.Timings()
		Expect(timings[0].Stalls).To(Equal(0))
		Expect(timings[1].Stalls).To(Equal(2))
		Expect(timings[1].IF).To(Equal(4))
		Expect(timings[1].WB).To(Equal(8))
		Expect(ft.Summary().TotalCycles).To(Equal(8))
	})

	It("should charge 1 stall for a 2-back dependence", func() {
		ft := pipeline.NewFastTiming(mustParse(
			"add x1, x2, x3",
			"mov x5, x6",
			"add x4, x1, x7",
		))

		Expect(ft.Run()).To(Succeed())

		timings := ft.Timings()
		Expect(timings[2].Stalls).To(Equal(1))
		Expect(ft.Summary().TotalCycles).To(Equal(8))
	})

	It("should not charge a 2-back penalty once the producer has drained", func() {
		// Instruction 2 stalls twice on x1, which lets the producer of x1
		// retire before instruction 3 decodes. A naive 2-back check would
		// charge 1 stall here.
		ft := pipeline.NewFastTiming(mustParse(
			"add x1, x2, x3",
			"add x4, x1, x5",
			"add x6, x1, x7",
		))

		Expect(ft.Run()).To(Succeed())

		timings := ft.Timings()
		Expect(timings[1].Stalls).To(Equal(2))
		Expect(timings[2].Stalls).To(Equal(0))
		Expect(timings[2].IF).To(Equal(5))
		Expect(timings[2].WB).To(Equal(9))
		Expect(ft.Summary().TotalCycles).To(Equal(9))
	})

	It("should only look back two instructions", func() {
		// x1 is produced three instructions before its use.
		ft := pipeline.NewFastTiming(mustParse(
			"add x1, x2, x3",
			"mov x5, x6",
			"mov x7, x8",
			"add x4, x1, x9",
		))

		Expect(ft.Run()).To(Succeed())

		for _, tm := range ft.Timings() {
			Expect(tm.Stalls).To(Equal(0))
		}
		Expect(ft.Summary().TotalCycles).To(Equal(8))
	})

	It("should let the nearer producer dominate without summing", func() {
		ft := pipeline.NewFastTiming(mustParse(
			"add x1, x2, x3",
			"mov x1, x4",
			"add x5, x1, x6",
		))

		Expect(ft.Run()).To(Succeed())

		Expect(ft.Timings()[2].Stalls).To(Equal(2))
		Expect(ft.Summary().TotalCycles).To(Equal(9))
	})

	It("should honor custom penalties", func() {
		config := &latency.Config{EXHazardStalls: 3, MEMHazardStalls: 2}
		ft := pipeline.NewFastTiming(mustParse(
			"add x1, x2, x3",
			"add x4, x1, x5",
		), pipeline.WithFastHazardConfig(config))

		Expect(ft.Run()).To(Succeed())

		Expect(ft.Timings()[1].Stalls).To(Equal(3))
		Expect(ft.Summary().TotalCycles).To(Equal(2 + 4 + 3))
	})

	It("should fill the statistics counters", func() {
		ft := pipeline.NewFastTiming(mustParse(
			"add x1, x2, x3",
			"add x4, x1, x5",
		))

		Expect(ft.Run()).To(Succeed())

		stats := ft.Stats()
		Expect(stats.Instructions).To(Equal(uint64(2)))
		Expect(stats.Stalls).To(Equal(uint64(2)))
		Expect(stats.DataHazards).To(Equal(uint64(1)))
		Expect(stats.Cycles).To(Equal(uint64(8)))
		Expect(stats.CPI()).To(BeNumerically("==", 4.0))
	})
})

var _ = Describe("Summarize", func() {
	It("should return zeros for no timing rows", func() {
		Expect(pipeline.Summarize(nil)).To(Equal(pipeline.Summary{}))
	})

	It("should satisfy the cycle total identity", func() {
		ft := pipeline.NewFastTiming(mustParse(
			"add x1, x2, x3",
			"add x2, x1, x4",
			"add x3, x2, x5",
		))
		Expect(ft.Run()).To(Succeed())

		sum := ft.Summary()
		Expect(sum.Instructions).To(Equal(3))
		Expect(sum.BaseCycles).To(Equal(7))
		Expect(sum.TotalStalls).To(Equal(4))
		Expect(sum.TotalCycles).To(Equal(sum.BaseCycles + sum.TotalStalls))
	})
})
