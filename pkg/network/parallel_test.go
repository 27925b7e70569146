package network

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/intcode/pkg/intcode"
)

func TestRunParallelOrder(t *testing.T) {
	square := intcode.Program{3, 9, 2, 9, 9, 9, 4, 9, 99, 0}

	var jobs []Job
	for i := int64(0); i < 20; i++ {
		jobs = append(jobs, Job{Program: square, Inputs: []int64{i}})
	}

	out, err := RunParallel(context.Background(), jobs, 4)
	require.NoError(t, err)
	require.Len(t, out, len(jobs))
	for i, o := range out {
		assert.Equal(t, []int64{int64(i * i)}, o, "job %d", i)
	}
}

func TestRunParallelStarvation(t *testing.T) {
	jobs := []Job{
		{Program: intcode.Program{104, 1, 99}},
		{Program: intcode.Program{3, 0, 99}},
	}

	_, err := RunParallel(context.Background(), jobs, 0)
	assert.ErrorIs(t, err, intcode.ErrAwaitingInput)
}

func TestRunParallelStepLimit(t *testing.T) {
	jobs := []Job{{
		Program: intcode.Program{1105, 1, 0},
		Options: []intcode.Option{intcode.WithStepLimit(1000)},
	}}

	_, err := RunParallel(context.Background(), jobs, 1)
	assert.ErrorIs(t, err, intcode.ErrStepLimit)
}

func TestRunParallelCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []Job{{Program: intcode.Program{1105, 1, 0}}}
	_, err := RunParallel(ctx, jobs, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMapLimit(t *testing.T) {
	var running, peak atomic.Int32
	items := make([]int, 16)
	for i := range items {
		items[i] = i
	}

	out, err := Map(context.Background(), items, 3, func(_ context.Context, v int) (int, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		defer running.Add(-1)
		return v * 2, nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
	for i, v := range out {
		assert.Equal(t, i*2, v)
	}
}

func TestMapFirstError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Map(context.Background(), []int{1, 2, 3}, 0, func(_ context.Context, v int) (int, error) {
		if v == 2 {
			return 0, boom
		}
		return v, nil
	})
	assert.ErrorIs(t, err, boom)
}
