package jobs

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrQueueEmpty  = errors.New("queue is empty")
	ErrQueueClosed = errors.New("queue is closed")
)

// Queue is a durable FIFO of jobs for one kind. PushDelayed schedules a job
// to become visible after the given delay, which is how retry backoff is
// realized.
type Queue interface {
	Push(ctx context.Context, job *Job) error
	PushDelayed(ctx context.Context, job *Job, delay time.Duration) error
	Pop(ctx context.Context) (*Job, error)
	Size(ctx context.Context) (int, error)
	Close() error
}

// InMemoryQueue keeps jobs in process memory. Used by tests and single-node
// deployments without a broker.
type InMemoryQueue struct {
	jobs   []*Job
	mu     sync.Mutex
	cond   *sync.Cond
	timers []*time.Timer
	closed bool
}

func NewInMemoryQueue() *InMemoryQueue {
	q := &InMemoryQueue{
		jobs: make([]*Job, 0),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *InMemoryQueue) Push(ctx context.Context, job *Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	q.jobs = append(q.jobs, job)
	q.cond.Signal()

	return nil
}

func (q *InMemoryQueue) PushDelayed(ctx context.Context, job *Job, delay time.Duration) error {
	if delay <= 0 {
		return q.Push(ctx, job)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	timer := time.AfterFunc(delay, func() {
		q.Push(context.Background(), job)
	})
	q.timers = append(q.timers, timer)

	return nil
}

func (q *InMemoryQueue) Pop(ctx context.Context) (*Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	// Wake the cond loop when the context is done; Wait itself cannot
	// observe cancellation.
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	for len(q.jobs) == 0 && !q.closed && ctx.Err() == nil {
		q.cond.Wait()
	}

	if len(q.jobs) == 0 {
		if q.closed {
			return nil, ErrQueueClosed
		}
		return nil, ctx.Err()
	}

	job := q.jobs[0]
	q.jobs = q.jobs[1:]

	return job, nil
}

func (q *InMemoryQueue) Size(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs), nil
}

func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	for _, timer := range q.timers {
		timer.Stop()
	}
	q.cond.Broadcast()

	return nil
}
