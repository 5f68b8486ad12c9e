// Package main provides the entry point for pipesim.
// Pipesim models the timing of a 5-stage, no-forwarding, in-order
// pipeline for a minimal add/sub/mov instruction set.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/log"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/report"
	"github.com/sarchlab/pipesim/timing/latency"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

// Exit codes, one per failure class.
const (
	exitBadInput   = 1 // cannot open or read the instruction file
	exitParseError = 2 // malformed instruction line
	exitEmpty      = 4 // nothing to simulate
	exitBadOutput  = 5 // cannot write a report file
)

var (
	trace      = flag.Bool("trace", false, "Print the human-readable cycle trace")
	cycleCSV   = flag.String("cycle-csv", "pipeline_cycles.csv", "Path for the per-cycle CSV (empty to disable)")
	timeline   = flag.String("timeline", "pipeline_timeline.csv", "Path for the per-instruction timeline CSV (empty to disable)")
	configPath = flag.String("config", "", "Path to a stall-penalty configuration JSON file")
	fastOnly   = flag.Bool("fast", false, "Run only the closed-form engine (skips the cross-check)")
	freqGHz    = flag.Float64("freq", 0, "Clock frequency in GHz for the simulated-time summary line (0 to disable)")
	debug      = flag.Bool("debug", false, "Enable debug logging")
	quiet      = flag.Bool("q", false, "Only log errors")
)

func main() {
	flag.Parse()

	logger := newLogger(*debug, *quiet)

	inputPath := "instructions.txt"
	if flag.NArg() >= 1 {
		inputPath = flag.Arg(0)
	}

	config, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("Loading stall config failed", log.Err(err))
		os.Exit(exitBadInput)
	}

	program, err := insts.ParseFile(inputPath)
	if err != nil {
		var parseErr *insts.ParseError
		if errors.As(err, &parseErr) {
			logger.Error("Parsing failed", log.Err(err))
			os.Exit(exitParseError)
		}
		logger.Error("Reading input failed", log.Err(err))
		os.Exit(exitBadInput)
	}

	logger.Info("pipesim",
		log.String("input", inputPath),
		log.Int("instructions", len(program)))

	if err := run(logger, program, config); err != nil {
		if errors.Is(err, pipeline.ErrNothingToSimulate) {
			logger.Error("No instructions parsed", log.Err(err))
			os.Exit(exitEmpty)
		}
		logger.Error("Simulation failed", log.Err(err))
		os.Exit(exitBadOutput)
	}
}

// newLogger creates a logger with the level selected by the CLI flags.
func newLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// loadConfig returns the stall penalties from path, or the defaults when
// no path is given.
func loadConfig(path string) (*latency.Config, error) {
	if path == "" {
		return latency.DefaultConfig(), nil
	}

	config, err := latency.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// run executes the requested engines, verifies their agreement, and
// writes the reports.
func run(logger *log.Logger, program insts.Program, config *latency.Config) error {
	fast := pipeline.NewFastTiming(program, pipeline.WithFastHazardConfig(config))
	if err := fast.Run(); err != nil {
		return err
	}
	timings := fast.Timings()

	if !*fastOnly {
		stepTimings, err := runStepwise(program, config)
		if err != nil {
			return err
		}
		if err := verifyAgreement(stepTimings, timings); err != nil {
			return err
		}
		logger.Info("Engines agree", log.Int("instructions", len(timings)))
	}

	if *timeline != "" {
		if err := writeTimelineFile(*timeline, timings); err != nil {
			return err
		}
		logger.Info("Timeline written", log.String("path", *timeline))
	}

	sum := pipeline.Summarize(timings)
	if err := report.WriteSummary(os.Stdout, sum, timings); err != nil {
		return err
	}

	if *freqGHz > 0 {
		freq := sim.Freq(*freqGHz) * sim.GHz
		fmt.Printf("Simulated time at %.2f GHz: %.3e s\n",
			*freqGHz, float64(report.SimulatedTime(sum.TotalCycles, freq)))
	}

	return nil
}

// runStepwise runs the cycle-by-cycle engine with the trace and cycle
// CSV writers attached as hooks.
func runStepwise(program insts.Program, config *latency.Config) ([]pipeline.Timing, error) {
	pipe := pipeline.NewPipeline(program, pipeline.WithHazardConfig(config))

	var traceWriter *report.TraceWriter
	if *trace {
		traceWriter = report.NewTraceWriter(os.Stdout)
		pipe.AcceptHook(traceWriter)
	}

	var csvWriter *report.CycleCSVWriter
	var csvFile *os.File
	if *cycleCSV != "" {
		f, err := os.Create(*cycleCSV)
		if err != nil {
			return nil, fmt.Errorf("failed to create cycle CSV: %w", err)
		}
		csvFile = f
		csvWriter = report.NewCycleCSVWriter(f)
		pipe.AcceptHook(csvWriter)
	}

	if err := pipe.Run(); err != nil {
		return nil, err
	}

	if traceWriter != nil {
		if err := traceWriter.Err(); err != nil {
			return nil, fmt.Errorf("failed to write cycle trace: %w", err)
		}
	}
	if csvWriter != nil {
		if err := csvWriter.Flush(); err != nil {
			return nil, fmt.Errorf("failed to write cycle CSV: %w", err)
		}
		if err := csvFile.Close(); err != nil {
			return nil, fmt.Errorf("failed to close cycle CSV: %w", err)
		}
	}

	return pipe.Timings(), nil
}

// writeTimelineFile writes the per-instruction timing table to path.
func writeTimelineFile(path string, timings []pipeline.Timing) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create timeline CSV: %w", err)
	}
	defer f.Close()

	return report.WriteTimeline(f, timings)
}

// verifyAgreement checks that the two engines produced identical timing
// for every instruction.
func verifyAgreement(stepwise, fast []pipeline.Timing) error {
	if len(stepwise) != len(fast) {
		return fmt.Errorf("engine disagreement: %d vs %d timing rows",
			len(stepwise), len(fast))
	}
	for i := range stepwise {
		if stepwise[i] != fast[i] {
			return fmt.Errorf("engine disagreement at instruction %d: stepwise %+v, closed-form %+v",
				i+1, stepwise[i], fast[i])
		}
	}
	return nil
}
