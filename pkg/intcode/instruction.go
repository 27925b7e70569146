package intcode

import (
	"fmt"
	"strings"
)

// Parameter is one mode-tagged operand of a decoded instruction.
type Parameter struct {
	Mode  Mode
	Value int64 // Raw cell contents, before mode resolution
}

// String formats the parameter in assembler notation:
// position "[v]", immediate "v", relative "[rb+v]".
func (p Parameter) String() string {
	switch p.Mode {
	case ModeImmediate:
		return fmt.Sprintf("%d", p.Value)
	case ModeRelative:
		if p.Value < 0 {
			return fmt.Sprintf("[rb%d]", p.Value)
		}
		return fmt.Sprintf("[rb+%d]", p.Value)
	default:
		return fmt.Sprintf("[%d]", p.Value)
	}
}

// Instruction is a decoded instruction.
type Instruction struct {
	PC   int64 // Address of the opcode cell
	Raw  int64 // Full opcode cell, modes included
	Op   Opcode
	Args [maxParams]Parameter
	Argc int
}

// Params returns the decoded parameters.
func (in *Instruction) Params() []Parameter {
	return in.Args[:in.Argc]
}

// Next returns the address of the instruction that follows this one.
func (in *Instruction) Next() int64 {
	return in.PC + 1 + int64(in.Argc)
}

// String formats the instruction as "MNEMONIC p1, p2, p3".
func (in *Instruction) String() string {
	var sb strings.Builder
	sb.WriteString(in.Op.String())
	for i, p := range in.Params() {
		if i == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	return sb.String()
}

// Decode reads the instruction at pc.
//
// The low two decimal digits of the cell select the opcode; the remaining
// digits, least significant first, give one mode per parameter. Parameters
// without a digit are in position mode.
func Decode(mem Memory, pc int64) (Instruction, error) {
	if pc < 0 {
		return Instruction{PC: pc}, ErrInvalidPointer
	}

	raw := mem.Load(pc)
	in := Instruction{PC: pc, Raw: raw, Op: Opcode(raw % 100)}

	info, ok := GetOpcodeInfo(in.Op)
	if !ok {
		return in, ErrInvalidOpcode
	}

	modes := raw / 100
	for i := 0; i < info.Params; i++ {
		m := Mode(modes % 10)
		if m > ModeRelative {
			return in, ErrInvalidMode
		}
		modes /= 10
		in.Args[i] = Parameter{Mode: m, Value: mem.Load(pc + 1 + int64(i))}
	}
	in.Argc = info.Params

	return in, nil
}
