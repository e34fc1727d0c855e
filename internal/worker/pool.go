// Package worker runs slow KDF-bound tasks on a bounded set of goroutines
// and hands back their results as futures.
package worker

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of tasks running at once.
type Pool struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

// NewPool creates a pool running at most size tasks concurrently.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size))}
}

// Wait blocks until every submitted task has completed.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Future is the eventual result of a task.
type Future[T any] struct {
	done chan struct{}

	mu        sync.Mutex
	val       T
	err       error
	callbacks []func(T, error)
}

// Go submits fn to p. If ctx ends while fn is still queued, fn never runs and
// the future completes with ctx.Err(). fn gets ctx and decides itself up to
// which point it honours cancellation.
func Go[T any](p *Pool, ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		if err := p.sem.Acquire(ctx, 1); err != nil {
			var zero T
			f.complete(zero, err)
			return
		}
		val, err := fn(ctx)
		p.sem.Release(1)
		f.complete(val, err)
	}()

	return f
}

func (f *Future[T]) complete(val T, err error) {
	f.mu.Lock()
	f.val, f.err = val, err
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(val, err)
	}
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the task completes or ctx ends. Giving up on the wait
// does not stop the task.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// OnComplete registers cb to run with the result. cb runs on the task's goroutine,
// or right away on the caller's goroutine if the task has already completed.
func (f *Future[T]) OnComplete(cb func(T, error)) {
	f.mu.Lock()
	select {
	case <-f.done:
		val, err := f.val, f.err
		f.mu.Unlock()
		cb(val, err)
	default:
		f.callbacks = append(f.callbacks, cb)
		f.mu.Unlock()
	}
}
