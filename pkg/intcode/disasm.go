package intcode

import (
	"fmt"
	"slices"
	"strings"
)

// Disassemble returns a listing of program, decoding from address 0 and
// stepping by instruction width. Cells that do not decode are listed as
// DATA and skipped one at a time, since Intcode freely mixes code and data.
func Disassemble(program Program) string {
	mem := NewSparseMemory()
	loadProgram(mem, program)
	return disassemble(mem, 0, int64(len(program)), "")
}

// DisassembleWithName returns a listing with a name header.
func DisassembleWithName(program Program, name string) string {
	mem := NewSparseMemory()
	loadProgram(mem, program)
	return disassemble(mem, 0, int64(len(program)), name)
}

// zeroRunLimit is the longest run of zero cells listed inline by
// (*VM).Disassemble. Longer runs collapse into a single comment line.
const zeroRunLimit = 8

// Disassemble lists the VM's non-zero memory, marking the instruction at
// the program counter. Runs of more than zeroRunLimit zero cells are
// summarised, so scratch writes far beyond the code stay cheap to list.
func (vm *VM) Disassemble() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("; pc=%d rb=%d state=%s pending=%d\n",
		vm.pc, vm.relativeBase, vm.state, len(vm.inputs)))

	var addrs []int64
	vm.mem.Cells(func(addr, _ int64) {
		addrs = append(addrs, addr)
	})
	if i, found := slices.BinarySearch(addrs, vm.pc); !found && vm.pc >= 0 {
		addrs = slices.Insert(addrs, i, vm.pc)
	}

	var next int64
	for _, r := range listingRanges(addrs) {
		from := max(r.from, next)
		if from >= r.to {
			continue
		}
		if from > next {
			sb.WriteString(fmt.Sprintf("  ; %d zero cells\n", from-next))
		}
		for pc := from; pc < r.to; {
			line, width := disassembleInstruction(vm.mem, pc)
			if pc == vm.pc {
				sb.WriteString("> ")
			} else {
				sb.WriteString("  ")
			}
			sb.WriteString(fmt.Sprintf("%06d  %s\n", pc, line))
			pc += width
			next = pc
		}
	}
	return sb.String()
}

// addrRange is a half-open address interval.
type addrRange struct {
	from, to int64
}

// listingRanges groups sorted addresses into ranges separated by more than
// zeroRunLimit zero cells. A range near address 0 is extended down to 0.
func listingRanges(addrs []int64) []addrRange {
	var out []addrRange
	for _, a := range addrs {
		n := len(out)
		switch {
		case n > 0 && a-out[n-1].to <= zeroRunLimit:
			out[n-1].to = a + 1
		case n == 0 && a <= zeroRunLimit:
			out = append(out, addrRange{0, a + 1})
		default:
			out = append(out, addrRange{a, a + 1})
		}
	}
	return out
}

func disassemble(mem Memory, from, to int64, name string) string {
	var sb strings.Builder

	if name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	}

	for pc := from; pc < to; {
		line, width := disassembleInstruction(mem, pc)
		sb.WriteString(fmt.Sprintf("%06d  %s\n", pc, line))
		pc += width
	}

	return sb.String()
}

// disassembleInstruction formats the instruction at pc.
// Returns the formatted string and the number of cells consumed.
func disassembleInstruction(mem Memory, pc int64) (string, int64) {
	in, err := Decode(mem, pc)
	if err != nil {
		return fmt.Sprintf("DATA %d", mem.Load(pc)), 1
	}
	return in.String(), in.Next() - pc
}
