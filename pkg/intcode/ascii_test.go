package intcode

import (
	"errors"
	"io"
	"slices"
	"testing"
)

// printer builds a program that prints text, optionally waits for one input
// value, prints after, and halts.
func printer(text string, waitInput bool, after string) Program {
	var p Program
	for i := 0; i < len(text); i++ {
		p = append(p, 104, int64(text[i]))
	}
	if waitInput {
		p = append(p, 3, 1000)
	}
	for i := 0; i < len(after); i++ {
		p = append(p, 104, int64(after[i]))
	}
	return append(p, 99)
}

func TestEncodeASCII(t *testing.T) {
	got := EncodeASCII("north")
	want := []int64{'n', 'o', 'r', 't', 'h', 10}
	if !slices.Equal(got, want) {
		t.Errorf("EncodeASCII(north) = %v, want %v", got, want)
	}
	if got := EncodeASCII("go\n"); !slices.Equal(got, []int64{'g', 'o', 10}) {
		t.Errorf("EncodeASCII with newline = %v", got)
	}
	if got := EncodeASCII(""); !slices.Equal(got, []int64{10}) {
		t.Errorf("EncodeASCII(\"\") = %v", got)
	}
}

func TestDecodeASCII(t *testing.T) {
	s, err := DecodeASCII([]int64{'#', '.', 10})
	if err != nil || s != "#.\n" {
		t.Errorf("DecodeASCII = %q, %v", s, err)
	}

	s, err = DecodeASCII([]int64{'o', 'k', 19349993, 'x'})
	var na *NonASCIIError
	if !errors.As(err, &na) || na.Value != 19349993 {
		t.Fatalf("DecodeASCII error = %v, want NonASCIIError", err)
	}
	if s != "ok" {
		t.Errorf("partial text = %q, want ok", s)
	}
}

func TestReadLine(t *testing.T) {
	// Replace the trailing halt with an output of a large value, then halt.
	program := printer("Hi\nthere\n", false, "")
	program = append(program[:len(program)-1], 104, 1000, 99)
	vm := New(program)

	line, err := vm.ReadLine()
	if err != nil || line != "Hi" {
		t.Errorf("ReadLine() = %q, %v; want Hi", line, err)
	}
	line, err = vm.ReadLine()
	if err != nil || line != "there" {
		t.Errorf("ReadLine() = %q, %v; want there", line, err)
	}
	line, err = vm.ReadLine()
	var na *NonASCIIError
	if !errors.As(err, &na) || na.Value != 1000 || line != "" {
		t.Errorf("ReadLine() = %q, %v; want NonASCIIError(1000)", line, err)
	}
	if _, err := vm.ReadLine(); err != io.EOF {
		t.Errorf("ReadLine() at halt error = %v, want io.EOF", err)
	}
}

func TestReadLinePartialAtHalt(t *testing.T) {
	vm := New(printer("abc", false, ""))
	line, err := vm.ReadLine()
	if err != nil || line != "abc" {
		t.Errorf("ReadLine() = %q, %v; want abc", line, err)
	}
	if _, err := vm.ReadLine(); err != io.EOF {
		t.Errorf("second ReadLine() error = %v, want io.EOF", err)
	}
}

func TestSendLineEcho(t *testing.T) {
	vm := New(echoLoop)
	vm.SendLine("north")

	line, err := vm.ReadLine()
	if err != nil || line != "north" {
		t.Errorf("ReadLine() = %q, %v; want north", line, err)
	}
	if _, err := vm.ReadLine(); !errors.Is(err, ErrAwaitingInput) {
		t.Errorf("ReadLine() with empty queue error = %v, want ErrAwaitingInput", err)
	}

	vm.SendLines("take mug", "inv")
	for _, want := range []string{"take mug", "inv"} {
		if line, err := vm.ReadLine(); err != nil || line != want {
			t.Errorf("ReadLine() = %q, %v; want %q", line, err, want)
		}
	}
}

func TestReadTextAndConverse(t *testing.T) {
	vm := New(printer("Room\nCommand?\n", true, "Bye\n"))

	prompt, err := vm.ReadText()
	if err != nil || prompt != "Room\nCommand?\n" {
		t.Fatalf("ReadText() = %q, %v", prompt, err)
	}
	if vm.State() != StateAwaitingInput {
		t.Errorf("state = %s, want awaiting-input", vm.State())
	}

	reply, err := vm.Converse("x")
	if err != nil || reply != "Bye\n" {
		t.Errorf("Converse() = %q, %v; want Bye", reply, err)
	}
	if !vm.Halted() {
		t.Errorf("state = %s, want halted", vm.State())
	}
	// The program consumed one value; the rest of the line stays queued.
	if p := vm.Pending(); !slices.Equal(p, []int64{10}) {
		t.Errorf("pending = %v, want [10]", p)
	}
}

func TestReadTextNonASCII(t *testing.T) {
	program := printer("score ", false, "")
	program = append(program[:len(program)-1], 104, 4242, 99)
	vm := New(program)

	text, err := vm.ReadText()
	var na *NonASCIIError
	if !errors.As(err, &na) || na.Value != 4242 {
		t.Errorf("ReadText() error = %v, want NonASCIIError(4242)", err)
	}
	if text != "score " {
		t.Errorf("ReadText() text = %q", text)
	}
}
