package network

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/intcode/pkg/intcode"
)

var (
	chainProgram = intcode.MustParseProgram(
		"3,15,3,16,1002,16,10,16,1,16,15,15,4,15,99,0,0")
	chainProgram2 = intcode.MustParseProgram(
		"3,23,3,24,1002,24,10,24,1002,23,-1,23,101,5,23,23,1,24,23,23,4,23,99,0,0")
	loopProgram = intcode.MustParseProgram(
		"3,26,1001,26,-4,26,3,27,1002,27,2,27,1,27,26,27,4,27,1001,28,-1,28,1005,28,6,99,0,0,5")
	loopProgram2 = intcode.MustParseProgram(
		"3,52,1001,52,-5,52,3,53,1,52,56,54,1007,54,5,55,1005,55,26,1001,54,-5,54,1105,1,12,1,53," +
			"54,53,1008,54,0,55,1001,55,1,55,2,53,55,53,4,53,1001,56,-1,56,1005,56,6,99,0,0,0,0,10")
)

func TestAmplify(t *testing.T) {
	cases := []struct {
		name     string
		program  intcode.Program
		phases   []int64
		feedback bool
		want     int64
	}{
		{"chain", chainProgram, []int64{4, 3, 2, 1, 0}, false, 43210},
		{"chain reversed", chainProgram2, []int64{0, 1, 2, 3, 4}, false, 54321},
		{"feedback", loopProgram, []int64{9, 8, 7, 6, 5}, true, 139629729},
		{"feedback long", loopProgram2, []int64{9, 7, 8, 5, 6}, true, 18216},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Amplify(context.Background(), tc.program, tc.phases, tc.feedback, 0)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAmplifyArenaMemory(t *testing.T) {
	got, err := Amplify(context.Background(), loopProgram, []int64{9, 8, 7, 6, 5}, true, 0,
		intcode.WithMemory(intcode.MemoryArena))
	require.NoError(t, err)
	assert.Equal(t, int64(139629729), got)
}

func TestAmplifyNoPhases(t *testing.T) {
	_, err := Amplify(context.Background(), chainProgram, nil, false, 0)
	assert.Error(t, err)
}

func TestPipelineDoesNotShareMemory(t *testing.T) {
	n := Pipeline(chainProgram, []int64{1, 2}, false)
	require.Equal(t, 2, n.Len())

	require.NoError(t, n.Node(0).Poke(15, 77))
	assert.Equal(t, int64(0), n.Node(1).Peek(15))
	assert.Equal(t, int64(0), chainProgram[15])
}

func TestUnlinkedOutputsCollected(t *testing.T) {
	n := New()
	i := n.Add(intcode.New(intcode.Program{104, 7, 104, 8, 99}))

	require.NoError(t, n.Run(context.Background()))
	assert.Equal(t, []int64{7, 8}, n.Outputs(i))

	last, ok := n.Last(i)
	assert.True(t, ok)
	assert.Equal(t, int64(8), last)
}

func TestLinkedOutputsNotCollected(t *testing.T) {
	n := New()
	src := n.Add(intcode.New(intcode.Program{104, 5, 99}))
	dst := n.Add(intcode.New(intcode.Program{3, 9, 1002, 9, 2, 9, 4, 9, 99, 0}))
	require.NoError(t, n.Link(src, dst))

	require.NoError(t, n.Run(context.Background()))
	assert.Empty(t, n.Outputs(src))
	assert.Equal(t, []int64{10}, n.Outputs(dst))
}

func TestLinkOutOfRange(t *testing.T) {
	n := New()
	n.Add(intcode.New(intcode.Program{99}))

	assert.Error(t, n.Link(0, 1))
	assert.Error(t, n.Link(-1, 0))
	assert.NoError(t, n.Link(0, 0))
}

func TestDeadlock(t *testing.T) {
	echo := intcode.Program{3, 9, 4, 9, 99}
	n := New()
	a := n.Add(intcode.New(echo))
	b := n.Add(intcode.New(echo))
	require.NoError(t, n.Link(a, b))
	require.NoError(t, n.Link(b, a))

	err := n.Run(context.Background())
	assert.ErrorIs(t, err, ErrDeadlock)
}

func TestDeadlockAfterProgress(t *testing.T) {
	// Echoes one value, then waits for a second that never comes.
	n := New()
	i := n.Add(intcode.New(intcode.Program{3, 11, 4, 11, 3, 11, 4, 11, 99}, intcode.WithInputs(42)))

	err := n.Run(context.Background())
	assert.ErrorIs(t, err, ErrDeadlock)
	assert.Equal(t, []int64{42}, n.Outputs(i))
	assert.Equal(t, intcode.StateAwaitingInput, n.Node(i).State())
}

func TestRunResumesAfterInject(t *testing.T) {
	n := New()
	i := n.Add(intcode.New(intcode.Program{3, 7, 4, 7, 99}))

	require.ErrorIs(t, n.Run(context.Background()), ErrDeadlock)
	n.Inject(i, 9)
	require.NoError(t, n.Run(context.Background()))
	assert.Equal(t, []int64{9}, n.Outputs(i))
}

func TestNodeFault(t *testing.T) {
	n := New()
	n.Add(intcode.New(intcode.Program{104, 1, 99}))
	n.Add(intcode.New(intcode.Program{98}))

	err := n.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, intcode.ErrInvalidOpcode)
	assert.Contains(t, err.Error(), "node 1")

	var fault *intcode.Fault
	assert.True(t, errors.As(err, &fault))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := New()
	n.Add(intcode.New(intcode.Program{99}))
	assert.ErrorIs(t, n.Run(ctx), context.Canceled)
}

func TestEmptyNetworkHalts(t *testing.T) {
	assert.NoError(t, New().Run(context.Background()))
}
