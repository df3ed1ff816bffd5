package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueConsumeAck(t *testing.T) {
	q := New(DefaultConfig())
	require.NoError(t, q.Enqueue(context.Background(), GenerateContent, "job-1", "payload", 1000))

	handle, err := q.Consume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "job-1", handle.Task.JobID)
	handle.Ack()

	_, err = q.Enqueue(context.Background(), GenerateContent, "job-1", "payload", 1000)
	assert.NoError(t, err, "re-enqueue after ack must succeed since the job is no longer in flight")
}

func TestEnqueue_DuplicateJobIDRejected(t *testing.T) {
	q := New(DefaultConfig())
	require.NoError(t, q.Enqueue(context.Background(), GenerateContent, "job-1", "payload", 1000))
	err := q.Enqueue(context.Background(), GenerateContent, "job-1", "payload", 1000)
	assert.ErrorIs(t, err, ErrDuplicateJobID)
}

func TestNack_RequeuesWithinRetryBudget(t *testing.T) {
	q := New(Config{Capacity: 10, MaxRetries: 1, StallInterval: time.Minute, MaxStalls: 2})
	require.NoError(t, q.Enqueue(context.Background(), GenerateContent, "job-1", "payload", 1000))

	handle, err := q.Consume(context.Background())
	require.NoError(t, err)
	handle.Nack()

	handle2, err := q.Consume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "job-1", handle2.Task.JobID)
	handle2.Nack()

	select {
	case <-q.tasks:
		t.Fatal("task should not be requeued once retries are exhausted")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestNack_KeepsJobIDTrackedAcrossRetry(t *testing.T) {
	q := New(Config{Capacity: 10, MaxRetries: 1, StallInterval: time.Minute, MaxStalls: 2})
	require.NoError(t, q.Enqueue(context.Background(), GenerateContent, "job-1", "payload", 1000))

	handle, err := q.Consume(context.Background())
	require.NoError(t, err)
	handle.Nack()

	err = q.Enqueue(context.Background(), GenerateContent, "job-1", "payload", 1000)
	assert.ErrorIs(t, err, ErrDuplicateJobID, "a retried task must still be tracked as in-flight, blocking a duplicate enqueue")

	_, ok := q.inFlight["job-1"]
	assert.True(t, ok, "the retried task must remain visible to stall detection")
}

func TestClose_RejectsFurtherEnqueues(t *testing.T) {
	q := New(DefaultConfig())
	q.Close()
	err := q.Enqueue(context.Background(), GenerateContent, "job-1", "payload", 1000)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestStalledJobIDs_DetectsHeartbeatTimeout(t *testing.T) {
	q := New(Config{Capacity: 10, MaxRetries: 0, StallInterval: time.Millisecond, MaxStalls: 1})
	require.NoError(t, q.Enqueue(context.Background(), GenerateContent, "job-1", "payload", 1000))
	_, err := q.Consume(context.Background())
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	assert.Contains(t, q.StalledJobIDs(), "job-1")
}

func TestTokenBucket_AcquireBlocksUntilRefill(t *testing.T) {
	b := NewTokenBucket(1, 20*time.Millisecond)
	require.True(t, b.TryAcquire())
	assert.False(t, b.TryAcquire())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, b.Acquire(ctx))
}
