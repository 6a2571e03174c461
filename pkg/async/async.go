package async

import (
	"context"
	"fmt"
	"time"
)

// Future holds the eventual result of a task started with Run.
type Future[T any] struct {
	result T
	err    error
	done   chan struct{}
}

// Run starts fn in its own goroutine. A panic inside fn completes the
// future with ErrPanic instead of crashing the process.
func Run[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}

		f.result, f.err = call(ctx, fn)
	}()

	return f
}

// Resolved returns an already completed future.
func Resolved[T any](v T, err error) *Future[T] {
	f := &Future[T]{result: v, err: err, done: make(chan struct{})}
	close(f.done)
	return f
}

func call[T any](ctx context.Context, fn func(context.Context) (T, error)) (res T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return fn(ctx)
}

// Done is closed once the task has finished.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await blocks until the task finishes or ctx ends, whichever comes first.
// Ending ctx does not stop the task itself.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// AwaitTimeout is Await bounded by d. It returns ErrTimeout on expiry.
func (f *Future[T]) AwaitTimeout(d time.Duration) (T, error) {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-f.done:
		return f.result, f.err
	case <-t.C:
		var zero T
		return zero, ErrTimeout
	}
}

// IsComplete reports whether the task has finished without blocking.
func (f *Future[T]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// WaitAll awaits every future in order and returns the first error met.
func WaitAll[T any](ctx context.Context, futures ...*Future[T]) ([]T, error) {
	if len(futures) == 0 {
		return nil, ErrNoFutures
	}

	results := make([]T, len(futures))
	for i, f := range futures {
		res, err := f.Await(ctx)
		results[i] = res
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
