package intcode

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Snapshot is a serialisable capture of a paused VM.
type Snapshot struct {
	Memory       map[int64]int64 `cbor:"1,keyasint"` // Non-zero cells only
	PC           int64           `cbor:"2,keyasint"`
	RelativeBase int64           `cbor:"3,keyasint"`
	Inputs       []int64         `cbor:"4,keyasint,omitempty"`
	State        State           `cbor:"5,keyasint"`
}

// ErrSnapshotFaulted is returned when snapshotting a faulted VM.
var ErrSnapshotFaulted = errors.New("intcode: cannot snapshot a faulted VM")

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("intcode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Snapshot captures the VM's memory, registers, pending input and state.
func (vm *VM) Snapshot() (*Snapshot, error) {
	if vm.state == StateFaulted {
		return nil, ErrSnapshotFaulted
	}
	s := &Snapshot{
		Memory:       make(map[int64]int64),
		PC:           vm.pc,
		RelativeBase: vm.relativeBase,
		Inputs:       vm.Pending(),
		State:        vm.state,
	}
	vm.mem.Cells(func(addr, value int64) {
		s.Memory[addr] = value
	})
	return s, nil
}

// Restore creates a VM that continues exactly where the snapshot was taken.
// Options may choose the memory backend, step limit, tracing and logger;
// WithPC, WithRelativeBase and WithInputs are overridden by the snapshot.
func Restore(s *Snapshot, opts ...Option) (*VM, error) {
	switch s.State {
	case StateRunning, StateAwaitingInput, StateHalted:
	default:
		return nil, fmt.Errorf("intcode: restore: unexpected state %s", s.State)
	}

	opts = append(opts,
		WithPC(s.PC),
		WithRelativeBase(s.RelativeBase),
		func(o *options) { o.inputs = append([]int64(nil), s.Inputs...) },
	)
	vm, err := NewFromMemory(s.Memory, opts...)
	if err != nil {
		return nil, fmt.Errorf("intcode: restore: %w", err)
	}
	vm.state = s.State
	if vm.state == StateAwaitingInput && len(vm.inputs) > 0 {
		vm.state = StateRunning
	}
	return vm, nil
}

// MarshalSnapshot serializes a Snapshot to canonical CBOR bytes.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// UnmarshalSnapshot deserializes a Snapshot from CBOR bytes.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("intcode: unmarshal snapshot: %w", err)
	}
	if s.Memory == nil {
		s.Memory = make(map[int64]int64)
	}
	return &s, nil
}
