// Package latency provides the stall-penalty configuration for the
// no-forwarding pipeline model.
package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds the bubble-cycle penalties charged for read-after-write
// hazards. The defaults model a classic 5-stage datapath without
// forwarding, where register reads happen in ID and writes in WB.
type Config struct {
	// EXHazardStalls is the number of bubble cycles inserted when the
	// decoding instruction reads a register produced by the instruction
	// currently in EX. Default: 2 cycles.
	EXHazardStalls int `json:"ex_hazard_stalls"`

	// MEMHazardStalls is the number of bubble cycles inserted when the
	// decoding instruction reads a register produced by the instruction
	// currently in MEM. Default: 1 cycle.
	MEMHazardStalls int `json:"mem_hazard_stalls"`
}

// DefaultConfig returns a Config with the classic no-forwarding penalties.
func DefaultConfig() *Config {
	return &Config{
		EXHazardStalls:  2,
		MEMHazardStalls: 1,
	}
}

// LoadConfig loads a Config from a JSON file. Fields absent from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stall config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse stall config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize stall config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write stall config file: %w", err)
	}

	return nil
}

// Validate checks that the penalty values describe a meaningful
// no-forwarding model: both penalties positive, and the nearer (EX)
// producer at least as expensive as the farther (MEM) one.
func (c *Config) Validate() error {
	if c.EXHazardStalls <= 0 {
		return fmt.Errorf("ex_hazard_stalls must be > 0")
	}
	if c.MEMHazardStalls <= 0 {
		return fmt.Errorf("mem_hazard_stalls must be > 0")
	}
	if c.EXHazardStalls < c.MEMHazardStalls {
		return fmt.Errorf("ex_hazard_stalls must be >= mem_hazard_stalls")
	}
	return nil
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	return &Config{
		EXHazardStalls:  c.EXHazardStalls,
		MEMHazardStalls: c.MEMHazardStalls,
	}
}
