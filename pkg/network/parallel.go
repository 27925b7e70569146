package network

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/intcode/pkg/intcode"
)

// cancelCheckInterval is how many instructions a job executes between
// context checks.
const cancelCheckInterval = 4096

// Job is one independent program run.
type Job struct {
	Program intcode.Program
	Inputs  []int64
	Options []intcode.Option
}

// Map calls fn for every item on at most limit goroutines and returns the
// results in item order. The first error cancels the context passed to the
// remaining calls. A limit of zero or less means one goroutine per item.
func Map[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) (R, error)) ([]R, error) {
	results := make([]R, len(items))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		g.Go(func() error {
			r, err := fn(ctx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunParallel runs every job to halt on at most limit goroutines and
// returns each job's outputs in job order. A job that faults or starves
// for input fails the batch and cancels the jobs still running.
func RunParallel(ctx context.Context, jobs []Job, limit int) ([][]int64, error) {
	return Map(ctx, jobs, limit, func(ctx context.Context, job Job) ([]int64, error) {
		opts := append(append([]intcode.Option(nil), job.Options...), intcode.WithInputs(job.Inputs...))
		out, err := runJob(ctx, intcode.New(job.Program, opts...))
		if err != nil {
			return nil, fmt.Errorf("network: job: %w", err)
		}
		return out, nil
	})
}

// runJob steps vm to halt, checking ctx every cancelCheckInterval steps.
func runJob(ctx context.Context, vm *intcode.VM) ([]int64, error) {
	var out []int64
	for n := 0; ; n++ {
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return out, err
			}
		}
		ev, v, err := vm.Step()
		if err != nil {
			return out, err
		}
		switch ev {
		case intcode.EventOutput:
			out = append(out, v)
		case intcode.EventHalt:
			return out, nil
		case intcode.EventAwaitingInput:
			return out, intcode.ErrAwaitingInput
		}
	}
}
