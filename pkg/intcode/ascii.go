package intcode

import (
	"errors"
	"io"
	"strings"
)

// Newline is the character code that terminates ASCII lines and commands.
const Newline = 10

// EncodeASCII converts a command to character codes, appending a newline
// if cmd does not already end with one.
func EncodeASCII(cmd string) []int64 {
	codes := make([]int64, 0, len(cmd)+1)
	for i := 0; i < len(cmd); i++ {
		codes = append(codes, int64(cmd[i]))
	}
	if len(cmd) == 0 || cmd[len(cmd)-1] != '\n' {
		codes = append(codes, Newline)
	}
	return codes
}

// DecodeASCII converts character codes to text. The first value outside
// 0..127 stops decoding and is reported as a *NonASCIIError alongside the
// text decoded before it.
func DecodeASCII(values []int64) (string, error) {
	var sb strings.Builder
	for _, v := range values {
		if v < 0 || v > 127 {
			return sb.String(), &NonASCIIError{Value: v}
		}
		sb.WriteByte(byte(v))
	}
	return sb.String(), nil
}

// SendLine feeds cmd to the VM as ASCII, newline-terminated.
func (vm *VM) SendLine(cmd string) {
	vm.Feed(EncodeASCII(cmd)...)
}

// SendLines feeds each command in order.
func (vm *VM) SendLines(cmds ...string) {
	for _, c := range cmds {
		vm.SendLine(c)
	}
}

// ReadLine pulls outputs until a newline and returns the line without it.
//
// If the VM halts mid-line the partial line is returned with a nil error and
// the next call returns io.EOF; a VM that halts with nothing pending returns
// io.EOF directly. A value outside 0..127 ends the line early and is
// reported as *NonASCIIError. Starvation returns the partial line and
// ErrAwaitingInput; the partial text is not retained.
func (vm *VM) ReadLine() (string, error) {
	var sb strings.Builder
	for {
		v, ok, err := vm.NextOutput()
		if err != nil {
			return sb.String(), err
		}
		if !ok {
			if sb.Len() == 0 {
				return "", io.EOF
			}
			return sb.String(), nil
		}
		if v == Newline {
			return sb.String(), nil
		}
		if v < 0 || v > 127 {
			return sb.String(), &NonASCIIError{Value: v}
		}
		sb.WriteByte(byte(v))
	}
}

// ReadText pulls outputs until the VM needs input or halts and returns the
// text, newlines included. This is the prompt of an interactive program.
// Reaching either stopping point is not an error.
func (vm *VM) ReadText() (string, error) {
	var sb strings.Builder
	for {
		v, ok, err := vm.NextOutput()
		if errors.Is(err, ErrAwaitingInput) {
			return sb.String(), nil
		}
		if err != nil {
			return sb.String(), err
		}
		if !ok {
			return sb.String(), nil
		}
		if v < 0 || v > 127 {
			return sb.String(), &NonASCIIError{Value: v}
		}
		sb.WriteByte(byte(v))
	}
}

// Converse sends cmd and returns the text the program prints in response,
// up to its next request for input.
func (vm *VM) Converse(cmd string) (string, error) {
	vm.SendLine(cmd)
	return vm.ReadText()
}
