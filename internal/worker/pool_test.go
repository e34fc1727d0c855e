package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AlexZinkM/ether-keystore/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoReturnsResult(t *testing.T) {
	p := worker.NewPool(2)

	f := worker.Go(p, context.Background(), func(context.Context) (int, error) {
		return 42, nil
	})

	v, err := f.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	select {
	case <-f.Done():
	default:
		t.Fatal("Done must be closed after Wait returned")
	}
}

func TestGoReturnsError(t *testing.T) {
	p := worker.NewPool(1)
	boom := errors.New("boom")

	f := worker.Go(p, context.Background(), func(context.Context) (string, error) {
		return "", boom
	})

	_, err := f.Wait(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestPoolBoundsConcurrency(t *testing.T) {
	const size = 2
	p := worker.NewPool(size)

	var running, peak atomic.Int32
	futures := make([]*worker.Future[struct{}], 0, 8)
	for j := 0; j < 8; j++ {
		futures = append(futures, worker.Go(p, context.Background(), func(context.Context) (struct{}, error) {
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			return struct{}{}, nil
		}))
	}
	for _, f := range futures {
		_, err := f.Wait(context.Background())
		require.NoError(t, err)
	}

	assert.LessOrEqual(t, peak.Load(), int32(size))
	assert.Positive(t, peak.Load())
}

func TestQueuedTaskSkippedOnCancel(t *testing.T) {
	p := worker.NewPool(1)

	started := make(chan struct{})
	release := make(chan struct{})
	blocker := worker.Go(p, context.Background(), func(context.Context) (int, error) {
		close(started)
		<-release
		return 1, nil
	})
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	var ran atomic.Bool
	queued := worker.Go(p, ctx, func(context.Context) (int, error) {
		ran.Store(true)
		return 2, nil
	})
	cancel()

	_, err := queued.Wait(context.Background())
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	v, err := blocker.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	p.Wait()
	assert.False(t, ran.Load())
}

func TestWaitGivesUpWithContext(t *testing.T) {
	p := worker.NewPool(1)
	release := make(chan struct{})
	defer close(release)

	f := worker.Go(p, context.Background(), func(context.Context) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOnComplete(t *testing.T) {
	p := worker.NewPool(1)
	release := make(chan struct{})

	f := worker.Go(p, context.Background(), func(context.Context) (string, error) {
		<-release
		return "done", nil
	})

	got := make(chan string, 2)
	f.OnComplete(func(v string, err error) {
		assert.NoError(t, err)
		got <- v
	})
	close(release)
	assert.Equal(t, "done", <-got)

	// registering after completion runs the callback immediately
	f.OnComplete(func(v string, _ error) { got <- v })
	select {
	case v := <-got:
		assert.Equal(t, "done", v)
	default:
		t.Fatal("callback on a completed future must run synchronously")
	}
}
