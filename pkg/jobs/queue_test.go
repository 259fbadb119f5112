package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRunsImmediateAndDelayedJobs(t *testing.T) {
	var ran atomic.Int32
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		ran.Add(1)
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "now"}))
	require.NoError(t, q.EnqueueAfter(Job{ID: "later"}, 30*time.Millisecond))

	require.Eventually(t, func() bool { return ran.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return ran.Load() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, q.Scheduled())
}

func TestQueueStopDropsScheduledJobs(t *testing.T) {
	var ran atomic.Int32
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		ran.Add(1)
		return nil
	}, QueueConfig{})
	q.Start(context.Background())

	require.NoError(t, q.EnqueueAfter(Job{ID: "never"}, time.Hour))
	assert.Equal(t, 1, q.Scheduled())

	done := make(chan struct{})
	go func() {
		q.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stop did not return")
	}
	assert.Equal(t, int32(0), ran.Load())
	assert.Error(t, q.Enqueue(Job{ID: "after-stop"}))
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var attempts atomic.Int32
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		if attempts.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	}, QueueConfig{MaxRetries: 5, RetryDelay: 5 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "flaky"}))
	require.Eventually(t, func() bool { return attempts.Load() == 3 }, time.Second, 5*time.Millisecond)
}

func TestEnqueueBeforeStartFails(t *testing.T) {
	q := NewQueue("idle", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{ID: "x"}))
}
