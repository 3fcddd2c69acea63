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

func TestQueueProcessesJobs(t *testing.T) {
	done := make(chan Job, 1)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		done <- job
		return nil
	}, QueueConfig{Workers: 1})

	require.Error(t, q.Enqueue(Job{Type: "noop"}))

	q.Start(context.Background())
	defer q.Stop()
	require.True(t, q.Running())

	require.NoError(t, q.Enqueue(Job{Type: "noop", Payload: "x"}))
	select {
	case job := <-done:
		assert.NotEmpty(t, job.ID)
		assert.Equal(t, "x", job.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed")
	}
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var attempts int32
	succeeded := make(chan struct{})
	q := NewQueue("retry", func(ctx context.Context, job Job) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("transient")
		}
		close(succeeded)
		return nil
	}, QueueConfig{Workers: 1, MaxRetries: 3, RetryDelay: 5 * time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{Type: "flaky"}))
	select {
	case <-succeeded:
	case <-time.After(2 * time.Second):
		t.Fatal("job never succeeded")
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestQueueStopIsIdempotent(t *testing.T) {
	q := NewQueue("stop", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	q.Stop()
	q.Start(context.Background())
	q.Stop()
	q.Stop()
	assert.False(t, q.Running())
}

func TestQueueRejectsJobsAfterParentCancel(t *testing.T) {
	processed := make(chan struct{}, 1)
	q := NewQueue("cancel", func(ctx context.Context, job Job) error {
		processed <- struct{}{}
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 8})

	ctx, cancel := context.WithCancel(context.Background())
	q.Start(ctx)
	defer q.Stop()
	cancel()

	assert.False(t, q.Running())
	for i := 0; i < 20; i++ {
		require.Error(t, q.Enqueue(Job{Type: "late"}))
	}
	select {
	case <-processed:
		t.Fatal("job ran after cancellation")
	default:
	}
}
