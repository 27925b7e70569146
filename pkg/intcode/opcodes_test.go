package intcode

import (
	"strings"
	"testing"
)

func TestAllOpcodesHaveMetadata(t *testing.T) {
	for _, op := range AllOpcodes() {
		info, ok := GetOpcodeInfo(op)
		if !ok || info.Name == "" {
			t.Errorf("Opcode %d has no metadata", op)
		}
		if info.Params > maxParams {
			t.Errorf("Opcode %s takes %d params, more than maxParams", op, info.Params)
		}
		if info.Writes > info.Params {
			t.Errorf("Opcode %s writes param %d of %d", op, info.Writes, info.Params)
		}
	}
	if n := len(AllOpcodes()); n != 10 {
		t.Errorf("len(AllOpcodes()) = %d, want 10", n)
	}
}

func TestOpcodeParamCounts(t *testing.T) {
	tests := []struct {
		op   Opcode
		want int
	}{
		{OpAdd, 3},
		{OpMul, 3},
		{OpLessThan, 3},
		{OpEquals, 3},
		{OpJumpIfTrue, 2},
		{OpJumpIfFalse, 2},
		{OpInput, 1},
		{OpOutput, 1},
		{OpAdjustBase, 1},
		{OpHalt, 0},
	}

	for _, tt := range tests {
		if got := tt.op.ParamCount(); got != tt.want {
			t.Errorf("%s.ParamCount() = %d, want %d", tt.op, got, tt.want)
		}
		if got := tt.op.Width(); got != int64(tt.want)+1 {
			t.Errorf("%s.Width() = %d, want %d", tt.op, got, tt.want+1)
		}
	}
}

func TestOpcodeString(t *testing.T) {
	tests := []struct {
		op   Opcode
		want string
	}{
		{OpAdd, "ADD"},
		{OpInput, "IN"},
		{OpJumpIfFalse, "JF"},
		{OpAdjustBase, "ARB"},
		{OpHalt, "HALT"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Opcode(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}

	if got := Opcode(42).String(); !strings.HasPrefix(got, "UNKNOWN") {
		t.Errorf("unknown opcode should return UNKNOWN, got %q", got)
	}
	if Opcode(42).Valid() {
		t.Error("Opcode(42).Valid() = true")
	}
}

func TestIsJump(t *testing.T) {
	for _, op := range AllOpcodes() {
		want := op == OpJumpIfTrue || op == OpJumpIfFalse
		if op.IsJump() != want {
			t.Errorf("%s.IsJump() = %v, want %v", op, op.IsJump(), want)
		}
	}
}
