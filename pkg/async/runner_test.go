package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/internhub/pkg/async"
)

func TestRunner_OutlivesCallerContext(t *testing.T) {
	t.Parallel()

	r := async.NewRunner()
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	var finished atomic.Bool
	require.NoError(t, r.Go(ctx, "notify", func(ctx context.Context) error {
		close(started)
		time.Sleep(20 * time.Millisecond)
		if ctx.Err() == nil {
			finished.Store(true)
		}
		return nil
	}))

	<-started
	cancel()

	require.NoError(t, r.Shutdown(context.Background()))
	assert.True(t, finished.Load())
}

func TestRunner_FailuresDoNotEscape(t *testing.T) {
	t.Parallel()

	r := async.NewRunner()
	require.NoError(t, r.Go(context.Background(), "fails", func(context.Context) error {
		return errors.New("boom")
	}))
	require.NoError(t, r.Go(context.Background(), "panics", func(context.Context) error {
		panic("boom")
	}))

	assert.NoError(t, r.Shutdown(context.Background()))
}

func TestRunner_TaskTimeout(t *testing.T) {
	t.Parallel()

	r := async.NewRunner(async.WithTaskTimeout(10 * time.Millisecond))
	var cause atomic.Value
	require.NoError(t, r.Go(context.Background(), "slow", func(ctx context.Context) error {
		<-ctx.Done()
		cause.Store(ctx.Err())
		return ctx.Err()
	}))

	require.NoError(t, r.Shutdown(context.Background()))
	assert.ErrorIs(t, cause.Load().(error), context.DeadlineExceeded)
}

func TestRunner_Shutdown(t *testing.T) {
	t.Parallel()

	r := async.NewRunner(async.WithTaskTimeout(0))
	release := make(chan struct{})
	require.NoError(t, r.Go(context.Background(), "blocked", func(context.Context) error {
		<-release
		return nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Shutdown(ctx), async.ErrTimeout)

	assert.ErrorIs(t, r.Go(context.Background(), "late", func(context.Context) error { return nil }), async.ErrDraining)

	close(release)
	assert.NoError(t, r.Shutdown(context.Background()))
}
