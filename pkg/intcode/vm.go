package intcode

import (
	"errors"
	"fmt"

	"github.com/tliron/commonlog"
)

// State is the execution state of a VM.
type State uint8

const (
	// StateRunning means the next Step decodes and executes an instruction.
	StateRunning State = iota

	// StateAwaitingInput means an input instruction found the queue empty.
	// The program counter still points at that instruction.
	StateAwaitingInput

	// StateHalted means the halt instruction executed. Terminal.
	StateHalted

	// StateFaulted means an instruction failed. Terminal.
	StateFaulted
)

// String returns a human-readable name for State.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateAwaitingInput:
		return "awaiting-input"
	case StateHalted:
		return "halted"
	case StateFaulted:
		return "faulted"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Event reports what a single Step did.
type Event uint8

const (
	// EventContinue means an instruction executed with nothing to report.
	EventContinue Event = iota

	// EventOutput means an output instruction produced a value.
	EventOutput

	// EventAwaitingInput means an input instruction found the queue empty.
	EventAwaitingInput

	// EventHalt means the machine is halted.
	EventHalt

	// EventFault means the machine is faulted.
	EventFault
)

// String returns a human-readable name for Event.
func (e Event) String() string {
	switch e {
	case EventContinue:
		return "continue"
	case EventOutput:
		return "output"
	case EventAwaitingInput:
		return "awaiting-input"
	case EventHalt:
		return "halt"
	case EventFault:
		return "fault"
	default:
		return fmt.Sprintf("Event(%d)", e)
	}
}

// VM is an Intcode machine. It is not safe for concurrent use; see
// network.Worker for sharing one between goroutines.
type VM struct {
	mem          Memory
	pc           int64
	relativeBase int64
	inputs       []int64

	state State
	fault *Fault

	steps   uint64
	nInput  uint64
	nOutput uint64
	perOp   opcodeCounters

	stepLimit uint64
	trace     bool
	log       commonlog.Logger
}

// Option configures a VM at construction.
type Option func(*options)

type options struct {
	inputs       []int64
	pc           int64
	relativeBase int64
	memory       MemoryKind
	stepLimit    uint64
	trace        bool
	logger       commonlog.Logger
}

// WithInputs pre-seeds the input queue.
func WithInputs(values ...int64) Option {
	return func(o *options) {
		o.inputs = append(o.inputs, values...)
	}
}

// WithPC starts execution at pc instead of 0.
func WithPC(pc int64) Option {
	return func(o *options) {
		o.pc = pc
	}
}

// WithRelativeBase sets the initial relative base.
func WithRelativeBase(rb int64) Option {
	return func(o *options) {
		o.relativeBase = rb
	}
}

// WithMemory selects the memory implementation.
func WithMemory(kind MemoryKind) Option {
	return func(o *options) {
		o.memory = kind
	}
}

// WithStepLimit faults the VM with ErrStepLimit once it has executed n
// instructions. Zero means no limit.
func WithStepLimit(n uint64) Option {
	return func(o *options) {
		o.stepLimit = n
	}
}

// WithTrace logs every decoded instruction at debug level.
func WithTrace(on bool) Option {
	return func(o *options) {
		o.trace = on
	}
}

// WithLogger replaces the package logger.
func WithLogger(l commonlog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: log}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New creates a VM whose memory is a copy of program.
func New(program Program, opts ...Option) *VM {
	o := buildOptions(opts)

	var mem Memory
	if o.memory == MemoryArena {
		mem = NewArenaMemory(len(program))
	} else {
		mem = NewSparseMemory()
	}
	loadProgram(mem, program)

	return newVM(mem, o)
}

// NewFromMemory creates a VM from a sparse cell map, typically one saved
// from a paused machine. Combine with WithPC and WithRelativeBase to resume
// where that machine stopped.
func NewFromMemory(cells map[int64]int64, opts ...Option) (*VM, error) {
	o := buildOptions(opts)
	if o.pc < 0 {
		return nil, fmt.Errorf("intcode: start pc %d: %w", o.pc, ErrInvalidPointer)
	}

	mem := NewMemory(o.memory)
	for addr, v := range cells {
		if addr < 0 {
			return nil, fmt.Errorf("intcode: memory cell %d: %w", addr, ErrInvalidPointer)
		}
		mem.Store(addr, v)
	}

	return newVM(mem, o), nil
}

func newVM(mem Memory, o options) *VM {
	return &VM{
		mem:          mem,
		pc:           o.pc,
		relativeBase: o.relativeBase,
		inputs:       o.inputs,
		stepLimit:    o.stepLimit,
		trace:        o.trace,
		log:          o.logger,
	}
}

// Feed appends values to the input queue. Values are consumed in order.
func (vm *VM) Feed(values ...int64) {
	vm.inputs = append(vm.inputs, values...)
	if vm.state == StateAwaitingInput && len(vm.inputs) > 0 {
		vm.state = StateRunning
	}
}

// Pending returns a copy of the unconsumed input queue.
func (vm *VM) Pending() []int64 {
	return append([]int64(nil), vm.inputs...)
}

// PC returns the program counter.
func (vm *VM) PC() int64 { return vm.pc }

// RelativeBase returns the relative base register.
func (vm *VM) RelativeBase() int64 { return vm.relativeBase }

// State returns the execution state.
func (vm *VM) State() State { return vm.state }

// Halted reports whether the halt instruction has executed.
func (vm *VM) Halted() bool { return vm.state == StateHalted }

// Steps returns the number of instructions executed so far.
func (vm *VM) Steps() uint64 { return vm.steps }

// Err returns the fault that stopped the VM, or nil.
func (vm *VM) Err() error {
	if vm.fault == nil {
		return nil
	}
	return vm.fault
}

// Peek returns the value at addr. Negative addresses read as 0.
func (vm *VM) Peek(addr int64) int64 {
	if addr < 0 {
		return 0
	}
	return vm.mem.Load(addr)
}

// Poke writes value at addr, e.g. to patch a program before running it.
func (vm *VM) Poke(addr, value int64) error {
	if addr < 0 {
		return fmt.Errorf("intcode: poke %d: %w", addr, ErrInvalidPointer)
	}
	vm.mem.Store(addr, value)
	return nil
}

// Stats returns a copy of the execution counters.
func (vm *VM) Stats() Stats {
	return Stats{
		Steps:     vm.steps,
		Inputs:    vm.nInput,
		Outputs:   vm.nOutput,
		PerOpcode: vm.perOp.snapshot(),
		Extent:    vm.mem.Extent(),
	}
}

// Clone returns a deep copy of the VM: memory, registers, pending input,
// state and counters. The copy shares nothing mutable with the original.
func (vm *VM) Clone() *VM {
	c := *vm
	c.mem = vm.mem.Clone()
	c.inputs = append([]int64(nil), vm.inputs...)
	if vm.fault != nil {
		f := *vm.fault
		c.fault = &f
	}
	return &c
}

// Step decodes and executes one instruction.
//
// On EventOutput the second result is the produced value. A halted VM keeps
// returning EventHalt; a faulted VM keeps returning EventFault with its
// fault. EventAwaitingInput leaves the VM on the input instruction.
func (vm *VM) Step() (Event, int64, error) {
	switch vm.state {
	case StateHalted:
		return EventHalt, 0, nil
	case StateFaulted:
		return EventFault, 0, vm.fault
	}

	if vm.stepLimit > 0 && vm.steps >= vm.stepLimit {
		return vm.raise(vm.pc, vm.Peek(vm.pc), ErrStepLimit)
	}

	in, err := Decode(vm.mem, vm.pc)
	if err != nil {
		return vm.raise(in.PC, in.Raw, err)
	}

	if vm.trace && vm.log.AllowLevel(commonlog.Debug) {
		vm.log.Debugf("%06d  %-28s rb=%d", in.PC, in.String(), vm.relativeBase)
	}

	return vm.execute(&in)
}

// execute runs a decoded instruction. Decode has already rejected unknown
// opcodes, so the switch covers exactly the opcode table.
func (vm *VM) execute(in *Instruction) (Event, int64, error) {
	ev := EventContinue
	var out int64

	switch in.Op {
	case OpAdd, OpMul, OpLessThan, OpEquals:
		a, b, dst, err := vm.binaryOperands(in)
		if err != nil {
			return vm.raise(in.PC, in.Raw, err)
		}
		var v int64
		switch in.Op {
		case OpAdd:
			v = a + b
		case OpMul:
			v = a * b
		case OpLessThan:
			v = boolToInt(a < b)
		case OpEquals:
			v = boolToInt(a == b)
		}
		vm.mem.Store(dst, v)
		vm.pc = in.Next()

	case OpInput:
		dst, err := vm.address(in.Args[0])
		if err != nil {
			return vm.raise(in.PC, in.Raw, err)
		}
		if len(vm.inputs) == 0 {
			vm.state = StateAwaitingInput
			return EventAwaitingInput, 0, nil
		}
		vm.mem.Store(dst, vm.inputs[0])
		vm.inputs = vm.inputs[1:]
		vm.nInput++
		vm.state = StateRunning
		vm.pc = in.Next()

	case OpOutput:
		v, err := vm.load(in.Args[0])
		if err != nil {
			return vm.raise(in.PC, in.Raw, err)
		}
		vm.nOutput++
		ev, out = EventOutput, v
		vm.pc = in.Next()

	case OpJumpIfTrue, OpJumpIfFalse:
		cond, err := vm.load(in.Args[0])
		if err != nil {
			return vm.raise(in.PC, in.Raw, err)
		}
		target, err := vm.load(in.Args[1])
		if err != nil {
			return vm.raise(in.PC, in.Raw, err)
		}
		if (cond != 0) == (in.Op == OpJumpIfTrue) {
			vm.pc = target
		} else {
			vm.pc = in.Next()
		}

	case OpAdjustBase:
		delta, err := vm.load(in.Args[0])
		if err != nil {
			return vm.raise(in.PC, in.Raw, err)
		}
		vm.relativeBase += delta
		vm.pc = in.Next()

	case OpHalt:
		vm.state = StateHalted
		ev = EventHalt
		vm.log.Debugf("halted at pc=%d after %d steps", in.PC, vm.steps+1)
	}

	vm.steps++
	vm.perOp.record(in.Op)
	return ev, out, nil
}

func (vm *VM) binaryOperands(in *Instruction) (a, b, dst int64, err error) {
	if a, err = vm.load(in.Args[0]); err != nil {
		return
	}
	if b, err = vm.load(in.Args[1]); err != nil {
		return
	}
	dst, err = vm.address(in.Args[2])
	return
}

// load resolves a parameter to a value.
func (vm *VM) load(p Parameter) (int64, error) {
	if p.Mode == ModeImmediate {
		return p.Value, nil
	}
	addr, err := vm.address(p)
	if err != nil {
		return 0, err
	}
	return vm.mem.Load(addr), nil
}

// address resolves a parameter to a memory address without dereferencing.
func (vm *VM) address(p Parameter) (int64, error) {
	var addr int64
	switch p.Mode {
	case ModePosition:
		addr = p.Value
	case ModeRelative:
		addr = vm.relativeBase + p.Value
	case ModeImmediate:
		return 0, ErrImmediateWrite
	default:
		return 0, ErrInvalidMode
	}
	if addr < 0 {
		return 0, ErrInvalidPointer
	}
	return addr, nil
}

func (vm *VM) raise(pc, raw int64, err error) (Event, int64, error) {
	vm.fault = &Fault{PC: pc, Raw: raw, Err: err}
	vm.state = StateFaulted
	vm.log.Debugf("fault at pc=%d: %v", pc, err)
	return EventFault, 0, vm.fault
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// NextOutput resumes execution until the next output instruction and
// returns its value.
//
// At halt it returns (0, false, nil), now and on every later call. If an
// input instruction finds the queue empty it returns ErrAwaitingInput; feed
// a value and call again to continue from the same instruction. Faults are
// returned as *Fault.
func (vm *VM) NextOutput() (int64, bool, error) {
	for {
		ev, v, err := vm.Step()
		if err != nil {
			return 0, false, err
		}
		switch ev {
		case EventOutput:
			return v, true, nil
		case EventHalt:
			return 0, false, nil
		case EventAwaitingInput:
			return 0, false, ErrAwaitingInput
		}
	}
}

// Run executes until halt and returns every output in order. It is meant
// for programs that terminate and never need more input than was supplied;
// if the program starves, Run returns the outputs so far and
// ErrAwaitingInput.
func (vm *VM) Run() ([]int64, error) {
	var out []int64
	for {
		v, ok, err := vm.NextOutput()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}

// Drain executes until the VM halts or needs input and returns the outputs
// produced on the way. Unlike Run, running out of input is not an error;
// check State to tell the two apart.
func (vm *VM) Drain() ([]int64, error) {
	out, err := vm.Run()
	if errors.Is(err, ErrAwaitingInput) {
		err = nil
	}
	return out, err
}
