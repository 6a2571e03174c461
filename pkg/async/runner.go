package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/internhub/pkg/logger"
)

// Runner executes fire-and-forget tasks that must outlive the request that
// started them, and lets the process drain them on shutdown.
type Runner struct {
	logger  *slog.Logger
	timeout time.Duration

	mu       sync.Mutex
	wg       sync.WaitGroup
	draining bool
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets the logger used to report task failures.
func WithRunnerLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTaskTimeout bounds every task. Zero disables the bound.
func WithTaskTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeout = d
	}
}

// NewRunner creates a Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{logger: logger.Discard(), timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Go runs fn in the background. The task keeps ctx values but not its
// cancellation. Failures and panics are logged under name.
func (r *Runner) Go(ctx context.Context, name string, fn func(context.Context) error) error {
	r.mu.Lock()
	if r.draining {
		r.mu.Unlock()
		return ErrDraining
	}
	r.wg.Add(1)
	r.mu.Unlock()

	taskCtx := context.WithoutCancel(ctx)
	cancel := context.CancelFunc(func() {})
	if r.timeout > 0 {
		taskCtx, cancel = context.WithTimeout(taskCtx, r.timeout)
	}

	go func() {
		defer r.wg.Done()
		defer cancel()

		start := time.Now()
		_, err := call(taskCtx, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, fn(ctx)
		})
		if err != nil {
			r.logger.LogAttrs(taskCtx, slog.LevelError, "background task failed",
				logger.Component("async"),
				logger.Event(name),
				logger.Duration(time.Since(start)),
				logger.Error(err),
			)
		}
	}()
	return nil
}

// Shutdown stops accepting tasks and waits for running ones until ctx ends.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.draining = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Join(ErrTimeout, ctx.Err())
	}
}
