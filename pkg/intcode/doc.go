// Package intcode provides a resumable, sparse-memory virtual machine for
// Intcode programs. A VM is driven from outside: the caller feeds input
// values, pulls output values one at a time, and observes the machine
// between pulls.
//
// # Architecture Overview
//
// The package consists of a handful of small components:
//
//   - Opcodes: the closed instruction set (add, multiply, input, output,
//     two conditional jumps, two comparisons, adjust-relative-base, halt)
//     with a metadata table giving each opcode's name and parameter count.
//
//   - Decoder: Decode reads the cell at the program counter, splits it into
//     an opcode and parameter modes, and pairs each following cell with its
//     addressing mode. Decoding never allocates.
//
//   - Memory: an address space with implicit zero for every cell that was
//     never written. SparseMemory is a hash map; ArenaMemory is a growable
//     slice. Both grow without bound and never shrink.
//
//   - VM: the executor. Step runs exactly one instruction and reports what
//     happened. NextOutput resumes execution from wherever it last stopped
//     and returns at the next output instruction or at halt.
//
// # Suspension Points
//
// Execution returns control to the caller in exactly three situations:
//
//   - An output instruction fires. The value is returned and the VM keeps
//     its program counter, relative base and memory for the next pull.
//
//   - The program halts. Every later pull reports "no output".
//
//   - An input instruction finds the queue empty. The VM stays on that
//     instruction and pulls return ErrAwaitingInput until the caller feeds
//     a value with Feed or SendLine.
//
// # ASCII Programs
//
// Interactive programs speak ASCII: output codes form lines terminated by
// code 10, and commands are fed as character codes followed by a newline.
// ReadLine, ReadText, SendLine, EncodeASCII and DecodeASCII implement that
// convention on top of the core executor without changing its semantics.
//
// # Forking
//
// Clone returns a deep copy of a VM, including its pending inputs, so that
// search code can explore several futures from one paused present. Snapshot
// and Restore do the same across process boundaries using CBOR.
package intcode
