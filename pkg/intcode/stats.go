package intcode

// Stats holds execution counters for one VM. The executor updates them on
// every completed instruction; an input instruction that had to wait for a
// value is counted once, when it finally completes.
type Stats struct {
	Steps     uint64            // Instructions executed
	Inputs    uint64            // Values consumed from the input queue
	Outputs   uint64            // Values produced
	PerOpcode map[Opcode]uint64 // Executions per opcode
	Extent    int64             // One past the highest memory address written
}

// opcodeCounters is indexed by opcode, with halt folded into slot 0.
type opcodeCounters [10]uint64

func counterSlot(op Opcode) int {
	if op == OpHalt {
		return 0
	}
	return int(op)
}

func (c *opcodeCounters) record(op Opcode) {
	c[counterSlot(op)]++
}

func (c *opcodeCounters) snapshot() map[Opcode]uint64 {
	m := make(map[Opcode]uint64, len(opcodeInfoTable))
	for _, op := range AllOpcodes() {
		if n := c[counterSlot(op)]; n > 0 {
			m[op] = n
		}
	}
	return m
}

// Hottest returns the most executed opcode and its count.
// It returns (0, 0) if nothing has executed.
func (s Stats) Hottest() (Opcode, uint64) {
	var best Opcode
	var n uint64
	for _, op := range AllOpcodes() {
		if c := s.PerOpcode[op]; c > n {
			best, n = op, c
		}
	}
	return best, n
}
