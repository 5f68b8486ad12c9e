package insts

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxRegsPerLine is the largest register count any opcode can use
// (destination plus two sources). Scanning stops after this many tokens.
const maxRegsPerLine = 3

// stripBOM removes a UTF-8 byte-order mark from the start of a line.
// Notepad-style editors emit one, sometimes on every saved line.
func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}

// stripComment drops everything from the first '#' to the end of the line.
func stripComment(s string) string {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		return s[:i]
	}
	return s
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// findOpcode scans the line for an alphabetic word naming a known opcode,
// ignoring case. It returns OpUnknown when no opcode word is present.
func findOpcode(s string) Op {
	for i := 0; i < len(s); {
		for i < len(s) && !isAlpha(s[i]) {
			i++
		}
		j := i
		for j < len(s) && isAlpha(s[j]) {
			j++
		}
		if j > i {
			switch strings.ToLower(s[i:j]) {
			case "add":
				return OpADD
			case "sub":
				return OpSUB
			case "mov":
				return OpMOV
			}
		}
		i = j + 1
	}
	return OpUnknown
}

// findRegisters collects up to max register tokens of the form x<digits>
// anywhere in the line. Token case is normalized to lowercase.
func findRegisters(s string, max int) []string {
	var regs []string
	for i := 0; i < len(s) && len(regs) < max; i++ {
		if s[i] != 'x' && s[i] != 'X' {
			continue
		}
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > i+1 {
			regs = append(regs, "x"+s[i+1:j])
			i = j - 1
		}
	}
	return regs
}

// ParseLine decodes a single input line in a tolerant way: the opcode may
// appear anywhere on the line, registers are collected by scanning x<digits>
// tokens, and separators between operands are free-form.
//
// Blank lines, comment-only lines, and lines without a known opcode return
// (nil, nil) and are skipped by the caller. A recognized opcode with the
// wrong register count returns a *ParseError.
func ParseLine(line string, lineno int) (*Instruction, error) {
	s := stripBOM(line)
	s = stripComment(s)
	s = strings.TrimRight(s, " \t\r\n\f\v")
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	op := findOpcode(s)
	if op == OpUnknown {
		// Not an instruction line.
		return nil, nil
	}

	regs := findRegisters(s, maxRegsPerLine)
	want := op.SourceCount() + 1
	if len(regs) != want {
		return nil, &ParseError{
			Line: lineno,
			Op:   op,
			Want: want,
			Got:  len(regs),
			Text: s,
		}
	}

	return newInstruction(op, regs[0], regs[1:]), nil
}

// Parse reads a whole listing and returns the decoded program in input
// order. The first malformed line aborts the parse.
func Parse(r io.Reader) (Program, error) {
	var program Program

	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		inst, err := ParseLine(scanner.Text(), lineno)
		if err != nil {
			return nil, err
		}
		if inst != nil {
			program = append(program, inst)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read instruction listing: %w", err)
	}

	return program, nil
}

// ParseFile reads and parses the instruction listing at path.
func ParseFile(path string) (Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open instruction file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}
