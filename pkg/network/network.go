// Package network runs groups of Intcode machines together: feedback
// networks whose outputs feed each other's inputs, batches of independent
// machines on worker goroutines, and a worker that serialises access to a
// single machine shared between goroutines.
package network

import (
	"context"
	"errors"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/chazu/intcode/pkg/intcode"
)

var log = commonlog.GetLogger("intcode.network")

// ErrDeadlock is returned when every live node is waiting for input and a
// whole round passed without any node executing an instruction.
var ErrDeadlock = errors.New("network: deadlock, every live node awaits input")

// Network is a set of VMs whose outputs are routed to each other's input
// queues. Nodes are scheduled round-robin in the order they were added.
type Network struct {
	nodes   []*intcode.VM
	links   map[int]int
	outputs map[int][]int64
	last    map[int]int64
}

// New creates an empty network.
func New() *Network {
	return &Network{
		links:   make(map[int]int),
		outputs: make(map[int][]int64),
		last:    make(map[int]int64),
	}
}

// Add appends a node and returns its index.
func (n *Network) Add(vm *intcode.VM) int {
	n.nodes = append(n.nodes, vm)
	return len(n.nodes) - 1
}

// Len returns the number of nodes.
func (n *Network) Len() int {
	return len(n.nodes)
}

// Node returns the VM at index i.
func (n *Network) Node(i int) *intcode.VM {
	return n.nodes[i]
}

// Link routes every output of node from into the input queue of node to.
// A node has at most one downstream link; linking again replaces it.
func (n *Network) Link(from, to int) error {
	if from < 0 || from >= len(n.nodes) || to < 0 || to >= len(n.nodes) {
		return fmt.Errorf("network: link %d -> %d: node out of range [0,%d)", from, to, len(n.nodes))
	}
	n.links[from] = to
	return nil
}

// Inject feeds values to node i directly.
func (n *Network) Inject(i int, values ...int64) {
	n.nodes[i].Feed(values...)
}

// Outputs returns the values node i produced that had no link to follow.
func (n *Network) Outputs(i int) []int64 {
	return append([]int64(nil), n.outputs[i]...)
}

// Last returns the most recent value node i produced, linked or not.
func (n *Network) Last(i int) (int64, bool) {
	v, ok := n.last[i]
	return v, ok
}

// Run schedules nodes round-robin until every node has halted. On each turn
// a node executes until it halts or needs input, and its outputs are
// delivered before the next node runs.
//
// Run checks ctx between turns. A fault in any node stops the network and
// is returned wrapped with the node index.
func (n *Network) Run(ctx context.Context) error {
	for round := 1; ; round++ {
		progressed := false
		live := 0

		for i, vm := range n.nodes {
			if err := ctx.Err(); err != nil {
				return err
			}
			if vm.Halted() {
				continue
			}

			before := vm.Steps()
			out, err := vm.Drain()
			if err != nil {
				return fmt.Errorf("network: node %d: %w", i, err)
			}
			if vm.Steps() != before {
				progressed = true
			}
			if len(out) > 0 {
				n.route(i, out)
			}
			if !vm.Halted() {
				live++
			}
		}

		if live == 0 {
			log.Debugf("network of %d nodes halted after %d rounds", len(n.nodes), round)
			return nil
		}
		if !progressed {
			log.Infof("network deadlocked in round %d with %d live nodes", round, live)
			return ErrDeadlock
		}
	}
}

func (n *Network) route(from int, values []int64) {
	n.last[from] = values[len(values)-1]
	if to, ok := n.links[from]; ok {
		n.nodes[to].Feed(values...)
		return
	}
	n.outputs[from] = append(n.outputs[from], values...)
}

// Pipeline builds a chain of copies of program, one per phase setting. Each
// node receives its phase as its first input and feeds the next node. With
// feedback, the last node feeds the first, closing a loop.
func Pipeline(program intcode.Program, phases []int64, feedback bool, opts ...intcode.Option) *Network {
	n := New()
	for _, phase := range phases {
		nodeOpts := append(append([]intcode.Option(nil), opts...), intcode.WithInputs(phase))
		n.Add(intcode.New(program, nodeOpts...))
	}
	for i := 0; i+1 < len(phases); i++ {
		n.links[i] = i + 1
	}
	if feedback && len(phases) > 0 {
		n.links[len(phases)-1] = 0
	}
	return n
}

// Amplify runs a Pipeline seeded with signal at the first node and returns
// the last value emitted by the final node.
func Amplify(ctx context.Context, program intcode.Program, phases []int64, feedback bool, signal int64, opts ...intcode.Option) (int64, error) {
	if len(phases) == 0 {
		return 0, errors.New("network: amplify: no phases")
	}

	n := Pipeline(program, phases, feedback, opts...)
	n.Inject(0, signal)
	if err := n.Run(ctx); err != nil {
		return 0, err
	}

	v, ok := n.Last(n.Len() - 1)
	if !ok {
		return 0, errors.New("network: amplify: final node produced no output")
	}
	return v, nil
}
