// Package main provides the entry point for pipesim.
// Pipesim is a teaching-oriented timing model of a 5-stage,
// no-forwarding, in-order instruction pipeline.
//
// For the full CLI, use: go run ./cmd/pipesim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("pipesim - 5-stage pipeline timing simulator")
	fmt.Println("")
	fmt.Println("Usage: pipesim [options] <instructions.txt>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -trace       Print the human-readable cycle trace")
	fmt.Println("  -timeline    Path for the per-instruction timeline CSV")
	fmt.Println("  -cycle-csv   Path for the per-cycle CSV")
	fmt.Println("  -config      Path to a stall-penalty configuration JSON file")
	fmt.Println("  -fast        Run only the closed-form engine")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/pipesim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/pipesim' instead.")
	}
}
