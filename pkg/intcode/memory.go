package intcode

import (
	"fmt"
	"slices"
)

// Memory is an unbounded address space of int64 cells.
//
// Reading a cell that was never written yields 0. Writing never shrinks the
// space. Callers guarantee addr >= 0; the VM rejects negative addresses
// before they reach a Memory.
type Memory interface {
	// Load returns the value at addr, or 0 if it was never written.
	Load(addr int64) int64
	// Store writes value at addr.
	Store(addr, value int64)
	// Clone returns a deep, independent copy.
	Clone() Memory
	// Extent returns one past the highest address ever written.
	Extent() int64
	// Cells calls fn for every non-zero cell in ascending address order.
	Cells(fn func(addr, value int64))
}

// MemoryKind selects a Memory implementation.
type MemoryKind uint8

const (
	// MemorySparse backs memory with a hash map.
	MemorySparse MemoryKind = iota

	// MemoryArena backs memory with a growable slice.
	MemoryArena
)

// String returns the configuration name of the kind.
func (k MemoryKind) String() string {
	switch k {
	case MemorySparse:
		return "sparse"
	case MemoryArena:
		return "arena"
	default:
		return fmt.Sprintf("MemoryKind(%d)", k)
	}
}

// ParseMemoryKind maps a configuration name to a MemoryKind.
func ParseMemoryKind(name string) (MemoryKind, error) {
	switch name {
	case "", "sparse":
		return MemorySparse, nil
	case "arena":
		return MemoryArena, nil
	default:
		return 0, fmt.Errorf("unknown memory kind %q", name)
	}
}

// NewMemory creates an empty memory of the given kind.
func NewMemory(kind MemoryKind) Memory {
	if kind == MemoryArena {
		return NewArenaMemory(0)
	}
	return NewSparseMemory()
}

// SparseMemory stores cells in a map.
type SparseMemory struct {
	cells  map[int64]int64
	extent int64
}

// NewSparseMemory creates an empty sparse memory.
func NewSparseMemory() *SparseMemory {
	return &SparseMemory{cells: make(map[int64]int64)}
}

func (m *SparseMemory) Load(addr int64) int64 {
	return m.cells[addr]
}

func (m *SparseMemory) Store(addr, value int64) {
	m.cells[addr] = value
	if addr >= m.extent {
		m.extent = addr + 1
	}
}

func (m *SparseMemory) Clone() Memory {
	cells := make(map[int64]int64, len(m.cells))
	for k, v := range m.cells {
		cells[k] = v
	}
	return &SparseMemory{cells: cells, extent: m.extent}
}

func (m *SparseMemory) Extent() int64 {
	return m.extent
}

func (m *SparseMemory) Cells(fn func(addr, value int64)) {
	addrs := make([]int64, 0, len(m.cells))
	for a, v := range m.cells {
		if v != 0 {
			addrs = append(addrs, a)
		}
	}
	slices.Sort(addrs)
	for _, a := range addrs {
		fn(a, m.cells[a])
	}
}

// arenaDenseLimit is the highest address an arena always stores densely.
// Beyond it the slice grows at most to twice its length; writes further out
// go to an overflow map.
const arenaDenseLimit = 1 << 20

// ArenaMemory stores cells in a slice that grows up to the highest written
// address. Reads past the end yield 0 without growing. Writes far beyond the
// slice land in a sparse overflow map, so scattered high addresses never
// force a huge allocation.
type ArenaMemory struct {
	cells    []int64
	overflow map[int64]int64
	extent   int64
}

// NewArenaMemory creates an empty arena with room for size cells.
func NewArenaMemory(size int) *ArenaMemory {
	return &ArenaMemory{cells: make([]int64, 0, size)}
}

func (m *ArenaMemory) Load(addr int64) int64 {
	if addr < int64(len(m.cells)) {
		return m.cells[addr]
	}
	return m.overflow[addr]
}

func (m *ArenaMemory) Store(addr, value int64) {
	if addr >= m.extent {
		m.extent = addr + 1
	}
	n := int64(len(m.cells))
	switch {
	case addr < n:
		m.cells[addr] = value
	case addr < max(arenaDenseLimit, 2*n):
		m.grow(addr + 1)
		m.cells[addr] = value
	default:
		if m.overflow == nil {
			m.overflow = make(map[int64]int64)
		}
		m.overflow[addr] = value
	}
}

// grow extends the slice to n cells, pulling in overflow cells it now covers.
func (m *ArenaMemory) grow(n int64) {
	if n <= int64(cap(m.cells)) {
		m.cells = m.cells[:n]
	} else {
		c := int64(cap(m.cells)) * 2
		if c < n {
			c = n
		}
		cells := make([]int64, n, c)
		copy(cells, m.cells)
		m.cells = cells
	}
	for addr, v := range m.overflow {
		if addr < n {
			m.cells[addr] = v
			delete(m.overflow, addr)
		}
	}
}

func (m *ArenaMemory) Clone() Memory {
	c := &ArenaMemory{
		cells:  make([]int64, len(m.cells)),
		extent: m.extent,
	}
	copy(c.cells, m.cells)
	if len(m.overflow) > 0 {
		c.overflow = make(map[int64]int64, len(m.overflow))
		for k, v := range m.overflow {
			c.overflow[k] = v
		}
	}
	return c
}

func (m *ArenaMemory) Extent() int64 {
	return m.extent
}

func (m *ArenaMemory) Cells(fn func(addr, value int64)) {
	for a, v := range m.cells {
		if v != 0 {
			fn(int64(a), v)
		}
	}
	if len(m.overflow) == 0 {
		return
	}
	// Overflow addresses all lie past the slice.
	addrs := make([]int64, 0, len(m.overflow))
	for a, v := range m.overflow {
		if v != 0 {
			addrs = append(addrs, a)
		}
	}
	slices.Sort(addrs)
	for _, a := range addrs {
		fn(a, m.overflow[a])
	}
}

// loadProgram copies program into mem starting at address 0.
func loadProgram(mem Memory, program Program) {
	for i, v := range program {
		mem.Store(int64(i), v)
	}
}
