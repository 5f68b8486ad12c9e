// Package benchmarks provides program generators for validating the
// timing engines against each other.
package benchmarks

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/sarchlab/pipesim/insts"
)

// Benchmark is a named program with a description of the pipeline
// behavior it targets.
type Benchmark struct {
	Name        string
	Description string
	Program     insts.Program

	// ExpectedStalls is the analytically derived total stall count, or -1
	// when the program is generated and no hand-derived figure exists.
	ExpectedStalls int
}

// GetMicrobenchmarks returns the standard set of programs. Each one
// targets a specific hazard pattern.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(20),
		twoBackDependence(),
		alternatingHazards(),
		movShuffle(),
		mixedOperations(),
	}
}

// 1. Arithmetic Sequential - independent operations, zero stalls.
func arithmeticSequential() Benchmark {
	lines := make([]string, 20)
	for i := range lines {
		base := i * 3
		lines[i] = fmt.Sprintf("add x%d, x%d, x%d", base, base+1, base+2)
	}

	return Benchmark{
		Name:           "arithmetic_sequential",
		Description:    "20 independent ADDs - no hazards, CPI approaches 1",
		Program:        mustProgram(lines),
		ExpectedStalls: 0,
	}
}

// 2. Dependency Chain - every instruction reads its predecessor's
// destination, the worst case for a no-forwarding pipeline.
func dependencyChain(n int) Benchmark {
	lines := make([]string, n)
	lines[0] = "add x1, x2, x3"
	for i := 1; i < n; i++ {
		lines[i] = fmt.Sprintf("add x%d, x%d, x9", i+1, i)
	}

	return Benchmark{
		Name:           "dependency_chain",
		Description:    fmt.Sprintf("%d chained ADDs - 2 stalls per link", n),
		Program:        mustProgram(lines),
		ExpectedStalls: 2 * (n - 1),
	}
}

// 3. Two-Back Dependence - consumers separated from their producer by
// one unrelated instruction, exercising the smaller penalty.
func twoBackDependence() Benchmark {
	var lines []string
	for i := 0; i < 6; i++ {
		base := i * 10
		lines = append(lines,
			fmt.Sprintf("add x%d, x%d, x%d", base, base+1, base+2),
			fmt.Sprintf("mov x%d, x%d", base+3, base+4),
			fmt.Sprintf("sub x%d, x%d, x%d", base+5, base, base+6),
		)
	}

	return Benchmark{
		Name:           "two_back_dependence",
		Description:    "producer/filler/consumer triplets - 1 stall per triplet",
		Program:        mustProgram(lines),
		ExpectedStalls: 6,
	}
}

// 4. Alternating Hazards - hazardous and independent pairs interleaved.
func alternatingHazards() Benchmark {
	var lines []string
	for i := 0; i < 5; i++ {
		base := i * 10
		lines = append(lines,
			fmt.Sprintf("add x%d, x%d, x%d", base, base+1, base+2),
			fmt.Sprintf("sub x%d, x%d, x%d", base+3, base, base+4),
			fmt.Sprintf("mov x%d, x%d", base+5, base+6),
			fmt.Sprintf("mov x%d, x%d", base+7, base+8),
		)
	}

	return Benchmark{
		Name:           "alternating_hazards",
		Description:    "1-back pairs separated by independent movs",
		Program:        mustProgram(lines),
		ExpectedStalls: 10,
	}
}

// 5. Mov Shuffle - register-to-register copies with disjoint registers.
func movShuffle() Benchmark {
	lines := make([]string, 15)
	for i := range lines {
		lines[i] = fmt.Sprintf("mov x%d, x%d", i*2, i*2+1)
	}

	return Benchmark{
		Name:           "mov_shuffle",
		Description:    "15 independent movs - no hazards",
		Program:        mustProgram(lines),
		ExpectedStalls: 0,
	}
}

// 6. Mixed Operations - a hand-written mix of all three opcodes with
// both hazard distances and a both-producers-match case.
func mixedOperations() Benchmark {
	lines := []string{
		"add x1, x2, x3",
		"sub x4, x1, x5",  // 1-back on x1: 2 stalls
		"mov x6, x7",
		"add x8, x4, x9",  // 2-back on x4: 1 stall
		"mov x8, x10",     // no source overlap
		"sub x11, x8, x8", // 1-back on x8: 2 stalls
		"mov x12, x13",
		"add x14, x15, x16",
	}

	return Benchmark{
		Name:           "mixed_operations",
		Description:    "all three opcodes with both hazard distances",
		Program:        mustProgram(lines),
		ExpectedStalls: 5,
	}
}

// RandomProgram generates a reproducible pseudo-random program drawing
// from a small register pool so that hazards occur frequently.
func RandomProgram(seed int64, n int) Benchmark {
	rng := rand.New(rand.NewSource(seed))
	ops := []string{"add", "sub", "mov"}

	lines := make([]string, n)
	for i := range lines {
		op := ops[rng.Intn(len(ops))]
		reg := func() int { return rng.Intn(8) }
		if op == "mov" {
			lines[i] = fmt.Sprintf("mov x%d, x%d", reg(), reg())
		} else {
			lines[i] = fmt.Sprintf("%s x%d, x%d, x%d", op, reg(), reg(), reg())
		}
	}

	return Benchmark{
		Name:           fmt.Sprintf("random_seed%d_n%d", seed, n),
		Description:    "pseudo-random program over an 8-register pool",
		Program:        mustProgram(lines),
		ExpectedStalls: -1,
	}
}

func mustProgram(lines []string) insts.Program {
	program, err := insts.Parse(strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		panic(err)
	}
	return program
}
