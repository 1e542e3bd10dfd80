package jobs

import (
	"context"
	"fmt"
	"log/slog"
)

// Manager owns the per-kind queues and worker pools and is the intake layer's
// entry point for submitting jobs.
type Manager struct {
	queues map[Kind]Queue
	pools  map[Kind]*Pool
	store  Store
	logger *slog.Logger
}

func NewManager(store Store, logger *slog.Logger) *Manager {
	if store == nil {
		store = NopStore{}
	}
	return &Manager{
		queues: make(map[Kind]Queue),
		pools:  make(map[Kind]*Pool),
		store:  store,
		logger: logger.With("component", "job_manager"),
	}
}

// Register attaches a queue and its worker pool for one job kind.
func (m *Manager) Register(kind Kind, queue Queue, pool *Pool) {
	m.queues[kind] = queue
	m.pools[kind] = pool
}

// Enqueue creates a job, records it in the ledger, and pushes it onto the
// kind's queue.
func (m *Manager) Enqueue(ctx context.Context, kind Kind, payload any) (*Job, error) {
	queue, ok := m.queues[kind]
	if !ok {
		return nil, fmt.Errorf("no queue registered for kind %q", kind)
	}

	job, err := NewJob(kind, payload)
	if err != nil {
		return nil, err
	}

	if err := m.store.Insert(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to record job: %w", err)
	}

	if err := queue.Push(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	m.logger.Info("job enqueued", "job", job.ID, "kind", string(kind))
	return job, nil
}

// Start launches every registered pool.
func (m *Manager) Start(ctx context.Context) {
	for _, pool := range m.pools {
		pool.Start(ctx)
	}
}

// Wait blocks until every pool's workers have exited.
func (m *Manager) Wait() {
	for _, pool := range m.pools {
		pool.Wait()
	}
}

// Stats reports the ledger summary.
func (m *Manager) Stats(ctx context.Context) (*Stats, error) {
	return m.store.Stats(ctx)
}

// Close closes all queues, releasing blocked workers.
func (m *Manager) Close() error {
	var firstErr error
	for kind, queue := range m.queues {
		if err := queue.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close %s queue: %w", kind, err)
		}
	}
	return firstErr
}
