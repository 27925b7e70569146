package network

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chazu/intcode/pkg/intcode"
)

// ErrWorkerStopped is returned by Do after Stop has been called.
var ErrWorkerStopped = errors.New("network: worker stopped")

// workerRequest is a unit of work executed on the worker goroutine.
type workerRequest struct {
	fn   func(*intcode.VM) (any, error)
	done chan workerResult

	// orphan, if set, receives the result of a request whose caller gave
	// up while it ran. It runs on the worker goroutine.
	orphan func(workerResult)

	mu        sync.Mutex
	abandoned bool
}

// workerResult holds the return value from a VM operation.
type workerResult struct {
	value any
	err   error
}

// output is the result of one NextOutput call.
type output struct {
	value int64
	ok    bool
}

// Worker serializes all access to one VM through a single goroutine.
// A VM is not safe for concurrent use; goroutines that share one must go
// through the worker.
type Worker struct {
	vm       *intcode.VM
	requests chan *workerRequest
	quit     chan struct{}
	stopOnce sync.Once

	// held are outputs produced for NextOutput callers that had already
	// left. Owned by the worker goroutine.
	held []int64
}

// NewWorker creates a Worker and starts its processing goroutine.
func NewWorker(vm *intcode.VM) *Worker {
	w := &Worker{
		vm:       vm,
		requests: make(chan *workerRequest, 64),
		quit:     make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *Worker) loop() {
	for {
		select {
		case req := <-w.requests:
			w.serve(req)
		case <-w.quit:
			return
		}
	}
}

// serve runs req unless its caller left while it was queued, then hands
// the result to the caller or, if the caller left meanwhile, to orphan.
func (w *Worker) serve(req *workerRequest) {
	req.mu.Lock()
	skip := req.abandoned
	req.mu.Unlock()
	if skip {
		return
	}

	result := w.execute(req.fn)

	req.mu.Lock()
	defer req.mu.Unlock()
	if req.abandoned {
		if req.orphan != nil {
			req.orphan(result)
		}
		return
	}
	req.done <- result
}

// execute runs fn on the VM, turning a panic into an error.
func (w *Worker) execute(fn func(*intcode.VM) (any, error)) (result workerResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("worker recovered from panic: %v", r)
			result = workerResult{err: fmt.Errorf("network: worker panic: %v", r)}
		}
	}()
	result.value, result.err = fn(w.vm)
	return result
}

// submit queues fn and waits for its result. If ctx ends first, a request
// still in the queue is dropped; one already running completes and its
// result goes to orphan.
func (w *Worker) submit(ctx context.Context, fn func(*intcode.VM) (any, error), orphan func(workerResult)) (any, error) {
	select {
	case <-w.quit:
		return nil, ErrWorkerStopped
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := &workerRequest{fn: fn, done: make(chan workerResult, 1), orphan: orphan}
	select {
	case w.requests <- req:
	case <-w.quit:
		return nil, ErrWorkerStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case result := <-req.done:
		return result.value, result.err
	case <-w.quit:
		return nil, ErrWorkerStopped
	case <-ctx.Done():
	}

	req.mu.Lock()
	defer req.mu.Unlock()
	select {
	case result := <-req.done:
		return result.value, result.err
	default:
		req.abandoned = true
		return nil, ctx.Err()
	}
}

// Do submits fn for execution on the worker goroutine and blocks until it
// completes or ctx is done. When ctx ends while fn is running, fn still
// runs to completion on the worker; it must not write to variables the
// caller reads after Do returns.
func (w *Worker) Do(ctx context.Context, fn func(*intcode.VM) error) error {
	_, err := w.submit(ctx, func(vm *intcode.VM) (any, error) {
		return nil, fn(vm)
	}, nil)
	return err
}

// Feed queues input values on the worker's VM.
func (w *Worker) Feed(ctx context.Context, values ...int64) error {
	return w.Do(ctx, func(vm *intcode.VM) error {
		vm.Feed(values...)
		return nil
	})
}

// NextOutput resumes the worker's VM until its next output. A value
// produced after ctx ended is kept and returned by the next call.
func (w *Worker) NextOutput(ctx context.Context) (int64, bool, error) {
	v, err := w.submit(ctx, func(vm *intcode.VM) (any, error) {
		if len(w.held) > 0 {
			out := output{value: w.held[0], ok: true}
			w.held = w.held[1:]
			return out, nil
		}
		value, ok, err := vm.NextOutput()
		return output{value: value, ok: ok}, err
	}, w.hold)
	if err != nil {
		return 0, false, err
	}
	out := v.(output)
	return out.value, out.ok, nil
}

func (w *Worker) hold(result workerResult) {
	if out, ok := result.value.(output); ok && result.err == nil && out.ok {
		w.held = append(w.held, out.value)
	}
}

// Snapshot captures the worker's VM between requests.
func (w *Worker) Snapshot(ctx context.Context) (*intcode.Snapshot, error) {
	v, err := w.submit(ctx, func(vm *intcode.VM) (any, error) {
		snap, err := vm.Snapshot()
		return snap, err
	}, nil)
	if err != nil {
		return nil, err
	}
	return v.(*intcode.Snapshot), nil
}

// Stop shuts down the worker goroutine. It is safe to call more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.quit) })
}
