package jobs

import (
	"context"
)

// Stats summarizes the job ledger.
type Stats struct {
	TotalJobs     int `json:"total_jobs"`
	QueuedJobs    int `json:"queued_jobs"`
	ActiveJobs    int `json:"active_jobs"`
	CompletedJobs int `json:"completed_jobs"`
	DeadJobs      int `json:"dead_jobs"`
}

// Store is the durable ledger of job lifecycle transitions. The queue decides
// what runs next; the store records what happened for audit and stats.
type Store interface {
	Insert(ctx context.Context, job *Job) error
	Update(ctx context.Context, job *Job) error
	Stats(ctx context.Context) (*Stats, error)
}

// NopStore discards all writes. Used when no database is configured and by
// tests that only exercise queue behavior.
type NopStore struct{}

func (NopStore) Insert(ctx context.Context, job *Job) error { return nil }
func (NopStore) Update(ctx context.Context, job *Job) error { return nil }
func (NopStore) Stats(ctx context.Context) (*Stats, error)  { return &Stats{}, nil }
