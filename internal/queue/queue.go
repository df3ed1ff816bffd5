// Package queue implements the reliable FIFO work queue from §2 item 2
// and §6: per-job identity (duplicate job_id rejected), a configurable
// per-task retry count, a stall-detection interval, and ack/nack
// semantics for the worker side.
package queue

import (
	"context"
	"errors"
	"sync"
	"time"
)

// TaskType enumerates the queue's task kinds. The pipeline only ever
// enqueues one: generate-content, per §6.
type TaskType string

const GenerateContent TaskType = "generate-content"

// ErrDuplicateJobID is returned by Enqueue when a task for the same
// job_id is already queued or in flight.
var ErrDuplicateJobID = errors.New("job_id collision: a task for this job is already queued")

// ErrClosed is returned by Enqueue/Consume once Close has been called.
var ErrClosed = errors.New("queue is closed")

// Task is one unit of work travelling through the queue.
type Task struct {
	Type      TaskType
	JobID     string
	Payload   interface{}
	TimeoutMs int

	attempt      int
	maxRetries   int
	enqueuedAt   time.Time
	lastHeartbeat time.Time
	stalls       int
}

// Handle is the worker-side view of a dequeued Task, supporting ack/nack.
type Handle struct {
	Task *Task
	q    *Queue
}

// Ack marks the task's job as done and removes it from in-flight tracking.
func (h *Handle) Ack() {
	h.q.mu.Lock()
	delete(h.q.inFlight, h.Task.JobID)
	h.q.mu.Unlock()
}

// Nack requeues the task if it has retries remaining, otherwise drops it
// (the caller is expected to have already recorded a terminal failure).
func (h *Handle) Nack() {
	h.q.mu.Lock()
	defer h.q.mu.Unlock()

	h.Task.attempt++
	if h.Task.attempt > h.Task.maxRetries {
		delete(h.q.inFlight, h.Task.JobID)
		return
	}
	h.Task.lastHeartbeat = time.Now()
	select {
	case h.q.tasks <- h.Task:
		// Stays in inFlight under the same job_id: dedup and stall
		// detection must keep covering the task across redelivery.
	default:
		// Queue full; drop rather than block a worker holding the lock.
		delete(h.q.inFlight, h.Task.JobID)
	}
}

// Heartbeat records that the in-flight task is still making progress,
// resetting its stall clock.
func (h *Handle) Heartbeat() {
	h.q.mu.Lock()
	h.Task.lastHeartbeat = time.Now()
	h.q.mu.Unlock()
}

// Config controls queue behavior (§6 Configuration).
type Config struct {
	Capacity      int
	MaxRetries    int
	StallInterval time.Duration
	MaxStalls     int
}

// DefaultConfig matches §6's defaults: 2 retries per task, a generous
// buffer, stall detection per §5 (30s heartbeat window, 2 stalls).
func DefaultConfig() Config {
	return Config{Capacity: 1024, MaxRetries: 2, StallInterval: 30 * time.Second, MaxStalls: 2}
}

// Queue is a single reliable FIFO queue with per-job-id dedup.
type Queue struct {
	tasks    chan *Task
	mu       sync.Mutex
	inFlight map[string]*Task
	config   Config
	closed   bool
	closeCh  chan struct{}
}

// New builds a Queue with the given config.
func New(cfg Config) *Queue {
	return &Queue{
		tasks:    make(chan *Task, cfg.Capacity),
		inFlight: make(map[string]*Task),
		config:   cfg,
		closeCh:  make(chan struct{}),
	}
}

// Enqueue adds a task for jobID. A second Enqueue for the same jobID
// while one is queued or in flight is rejected (§6: "job_id collisions
// are rejected").
func (q *Queue) Enqueue(ctx context.Context, taskType TaskType, jobID string, payload interface{}, timeoutMs int) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	if _, exists := q.inFlight[jobID]; exists {
		q.mu.Unlock()
		return ErrDuplicateJobID
	}

	task := &Task{
		Type:          taskType,
		JobID:         jobID,
		Payload:       payload,
		TimeoutMs:     timeoutMs,
		maxRetries:    q.config.MaxRetries,
		enqueuedAt:    time.Now(),
		lastHeartbeat: time.Now(),
	}
	q.inFlight[jobID] = task
	q.mu.Unlock()

	select {
	case q.tasks <- task:
		return nil
	case <-ctx.Done():
		q.mu.Lock()
		delete(q.inFlight, jobID)
		q.mu.Unlock()
		return ctx.Err()
	case <-q.closeCh:
		return ErrClosed
	}
}

// Consume blocks until a task is available, the context is cancelled, or
// the queue is closed.
func (q *Queue) Consume(ctx context.Context) (*Handle, error) {
	select {
	case task, ok := <-q.tasks:
		if !ok {
			return nil, ErrClosed
		}
		q.mu.Lock()
		task.lastHeartbeat = time.Now()
		q.mu.Unlock()
		return &Handle{Task: task, q: q}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-q.closeCh:
		return nil, ErrClosed
	}
}

// ResurrectStalled gives a stalled in-flight task one more attempt by
// requeuing it for another worker to consume, up to Config.MaxStalls
// times (§4.1/§5: "resurrected or abandoned per the retry policy, max 2
// stalls"). It reports whether the task was requeued; false means the
// stall budget is exhausted and the task has been dropped from
// in-flight tracking, leaving the caller to abandon the job.
func (q *Queue) ResurrectStalled(jobID string) bool {
	q.mu.Lock()
	task, ok := q.inFlight[jobID]
	if !ok {
		q.mu.Unlock()
		return false
	}
	if task.stalls >= q.config.MaxStalls {
		delete(q.inFlight, jobID)
		q.mu.Unlock()
		return false
	}
	task.stalls++
	task.lastHeartbeat = time.Now()
	q.mu.Unlock()

	select {
	case q.tasks <- task:
		return true
	default:
		q.mu.Lock()
		delete(q.inFlight, jobID)
		q.mu.Unlock()
		return false
	}
}

// StalledJobIDs returns job IDs currently in flight whose last heartbeat
// exceeds the configured stall interval (§5: "marks a task stalled if it
// makes no progress within its heartbeat window").
func (q *Queue) StalledJobIDs() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	var stalled []string
	now := time.Now()
	for jobID, task := range q.inFlight {
		if now.Sub(task.lastHeartbeat) > q.config.StallInterval {
			stalled = append(stalled, jobID)
		}
	}
	return stalled
}

// Close stops accepting new tasks. In-flight tasks are left to complete
// or be abandoned by their callers.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.closeCh)
}
