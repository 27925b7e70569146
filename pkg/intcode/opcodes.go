package intcode

import (
	"fmt"
	"sort"
)

// Opcode is the two low decimal digits of an instruction cell.
type Opcode int64

const (
	OpAdd         Opcode = 1  // mem[c] = a + b
	OpMul         Opcode = 2  // mem[c] = a * b
	OpInput       Opcode = 3  // mem[a] = next input
	OpOutput      Opcode = 4  // emit a
	OpJumpIfTrue  Opcode = 5  // if a != 0 { pc = b }
	OpJumpIfFalse Opcode = 6  // if a == 0 { pc = b }
	OpLessThan    Opcode = 7  // mem[c] = a < b
	OpEquals      Opcode = 8  // mem[c] = a == b
	OpAdjustBase  Opcode = 9  // rb += a
	OpHalt        Opcode = 99 // stop
)

// maxParams is the widest parameter list of any opcode.
const maxParams = 3

// OpcodeInfo provides metadata about each opcode for decoding and listings.
type OpcodeInfo struct {
	Name   string // Mnemonic used by the disassembler
	Params int    // Number of parameter cells following the opcode cell
	Writes int    // 1-based index of the write-target parameter, 0 if none
}

var opcodeInfoTable = map[Opcode]OpcodeInfo{
	OpAdd:         {"ADD", 3, 3},
	OpMul:         {"MUL", 3, 3},
	OpInput:       {"IN", 1, 1},
	OpOutput:      {"OUT", 1, 0},
	OpJumpIfTrue:  {"JT", 2, 0},
	OpJumpIfFalse: {"JF", 2, 0},
	OpLessThan:    {"LT", 3, 3},
	OpEquals:      {"EQ", 3, 3},
	OpAdjustBase:  {"ARB", 1, 0},
	OpHalt:        {"HALT", 0, 0},
}

// GetOpcodeInfo returns metadata for an opcode.
// The second result is false if the opcode is not part of the instruction set.
func GetOpcodeInfo(op Opcode) (OpcodeInfo, bool) {
	info, ok := opcodeInfoTable[op]
	return info, ok
}

// String returns the mnemonic of an opcode.
func (op Opcode) String() string {
	if info, ok := opcodeInfoTable[op]; ok {
		return info.Name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int64(op))
}

// Valid reports whether op is part of the instruction set.
func (op Opcode) Valid() bool {
	_, ok := opcodeInfoTable[op]
	return ok
}

// ParamCount returns the number of parameters the opcode takes.
func (op Opcode) ParamCount() int {
	return opcodeInfoTable[op].Params
}

// Width returns the number of memory cells the instruction occupies.
func (op Opcode) Width() int64 {
	return 1 + int64(op.ParamCount())
}

// IsJump returns true for the two conditional jumps.
func (op Opcode) IsJump() bool {
	return op == OpJumpIfTrue || op == OpJumpIfFalse
}

// AllOpcodes returns every defined opcode in ascending order.
func AllOpcodes() []Opcode {
	ops := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

// Mode is a parameter addressing mode.
type Mode uint8

const (
	// ModePosition treats the parameter as a memory address.
	ModePosition Mode = 0

	// ModeImmediate treats the parameter as a literal value.
	ModeImmediate Mode = 1

	// ModeRelative treats the parameter as an offset from the relative base.
	ModeRelative Mode = 2
)

// String returns a human-readable name for Mode.
func (m Mode) String() string {
	switch m {
	case ModePosition:
		return "position"
	case ModeImmediate:
		return "immediate"
	case ModeRelative:
		return "relative"
	default:
		return fmt.Sprintf("Mode(%d)", m)
	}
}
