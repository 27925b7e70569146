package intcode

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOpcode is returned when the decoded opcode has no instruction.
	ErrInvalidOpcode = errors.New("invalid opcode")

	// ErrInvalidMode is returned when a parameter mode digit is not 0, 1 or 2.
	ErrInvalidMode = errors.New("invalid parameter mode")

	// ErrInvalidPointer is returned when the program counter or an effective
	// address is negative.
	ErrInvalidPointer = errors.New("invalid pointer")

	// ErrImmediateWrite is returned when an instruction's write target is in
	// immediate mode. Well-formed programs never do this.
	ErrImmediateWrite = errors.New("write through immediate-mode parameter")

	// ErrStepLimit is returned when a VM exceeds its configured step budget.
	ErrStepLimit = errors.New("step limit exceeded")

	// ErrAwaitingInput is returned by pull-style calls when an input
	// instruction found the queue empty. It is not fatal: feed a value and
	// pull again.
	ErrAwaitingInput = errors.New("awaiting input")
)

// Fault describes a fatal error raised while executing an instruction.
// Once a VM has faulted every further call returns the same Fault.
type Fault struct {
	PC  int64 // Address of the faulting instruction
	Raw int64 // Raw instruction cell at PC
	Err error // One of the sentinel errors above
}

func (f *Fault) Error() string {
	return fmt.Sprintf("intcode: fault at pc=%d (cell %d): %v", f.PC, f.Raw, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// NonASCIIError reports an output value that is not a 7-bit character code.
// Interactive programs commonly emit their final numeric answer this way.
type NonASCIIError struct {
	Value int64
}

func (e *NonASCIIError) Error() string {
	return fmt.Sprintf("intcode: non-ASCII output %d", e.Value)
}
