// Package insts provides instruction definitions and parsing for the
// three-opcode teaching ISA (add, sub, mov).
//
// Instructions are decoded from line-oriented assembly listings into
// immutable records. The timing engines only ever read the destination
// register, the source registers, and the display text.
//
// Usage:
//
//	program, err := insts.ParseFile("instructions.txt")
//	if err != nil { ... }
//	fmt.Println(program[0]) // "add x1, x2, x3"
package insts

import "fmt"

// Op represents an opcode of the teaching ISA.
type Op uint8

// Opcodes.
const (
	OpUnknown Op = iota
	OpADD
	OpSUB
	OpMOV
)

// String returns the lowercase mnemonic.
func (o Op) String() string {
	switch o {
	case OpADD:
		return "add"
	case OpSUB:
		return "sub"
	case OpMOV:
		return "mov"
	default:
		return "unknown"
	}
}

// SourceCount returns the number of source registers the opcode reads:
// 2 for add/sub, 1 for mov.
func (o Op) SourceCount() int {
	switch o {
	case OpADD, OpSUB:
		return 2
	case OpMOV:
		return 1
	default:
		return 0
	}
}

// Instruction is a decoded instruction. It is constructed once by the
// parser and never mutated afterwards.
type Instruction struct {
	// Op is the operation code.
	Op Op

	// Rd is the destination register name, e.g. "x1".
	Rd string

	// Srcs holds the source register names in operand order:
	// exactly 2 for add/sub, exactly 1 for mov.
	Srcs []string

	// Text is the canonical display text used in traces and reports.
	// It carries no semantic role.
	Text string
}

// ReadsFrom reports whether reg appears among the instruction's source
// registers.
func (i *Instruction) ReadsFrom(reg string) bool {
	for _, s := range i.Srcs {
		if s == reg {
			return true
		}
	}
	return false
}

// String returns the display text.
func (i *Instruction) String() string {
	return i.Text
}

// newInstruction builds an instruction and its canonical display text.
func newInstruction(op Op, rd string, srcs []string) *Instruction {
	text := op.String() + " " + rd
	for _, s := range srcs {
		text += ", " + s
	}

	return &Instruction{
		Op:   op,
		Rd:   rd,
		Srcs: srcs,
		Text: text,
	}
}

// Program is an ordered sequence of instructions. Slice order is program
// order; the timing engines never reorder it.
type Program []*Instruction

// ParseError describes a line whose opcode was recognized but whose
// register count does not match the opcode's arity.
type ParseError struct {
	// Line is the 1-based input line number.
	Line int
	// Op is the opcode found on the line.
	Op Op
	// Want is the register count the opcode requires, destination included.
	Want int
	// Got is the register count actually found.
	Got int
	// Text is the cleaned-up line content.
	Text string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error on line %d: need %d regs for %s; got %d | line: %q",
		e.Line, e.Want, e.Op, e.Got, e.Text)
}
