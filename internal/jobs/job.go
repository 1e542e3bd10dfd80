// Package jobs implements the durable job orchestration layer: an explicit
// per-job state machine, per-kind queues and worker pools, retry with
// exponential backoff, and exactly one terminal delivery per submitted job.
package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind identifies a job queue and its worker pool.
type Kind string

const (
	// KindArchive discovers product links from category listing pages.
	KindArchive Kind = "extract_archive"
	// KindProduct extracts one full product record.
	KindProduct Kind = "extract_link"
	// KindFastSync re-checks a known subset of variant combinations.
	KindFastSync Kind = "fast_sync"
)

// State is a node in the job lifecycle machine.
type State string

const (
	StateQueued    State = "queued"
	StateActive    State = "active"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	// StateDead is terminal: the attempt budget is exhausted and a
	// failure-shaped payload has been handed to delivery.
	StateDead State = "dead"
)

var transitions = map[State][]State{
	StateQueued:    {StateActive},
	StateActive:    {StateCompleted, StateFailed},
	StateFailed:    {StateQueued, StateDead},
	StateCompleted: {},
	StateDead:      {},
}

// ErrInvalidTransition is returned when a lifecycle transition is not allowed.
type ErrInvalidTransition struct {
	From, To State
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid job transition %s -> %s", e.From, e.To)
}

// Job is one retryable unit of work.
type Job struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	State     State           `json:"state"`
	Attempts  int             `json:"attempts"`
	LastError string          `json:"last_error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewJob builds a queued job with a fresh ID.
func NewJob(kind Kind, payload any) (*Job, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job payload: %w", err)
	}

	return &Job{
		ID:        uuid.New().String(),
		Kind:      kind,
		Payload:   data,
		State:     StateQueued,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Transition moves the job to the given state, rejecting moves the lifecycle
// machine does not allow.
func (j *Job) Transition(to State) error {
	for _, allowed := range transitions[j.State] {
		if allowed == to {
			j.State = to
			return nil
		}
	}
	return &ErrInvalidTransition{From: j.State, To: to}
}

// Terminal reports whether the job has reached a final state.
func (j *Job) Terminal() bool {
	return j.State == StateCompleted || j.State == StateDead
}

// Fail records a failed attempt. Below the attempt budget the job returns to
// queued with an exponential backoff delay; at the budget it becomes dead.
func (j *Job) Fail(cause error, maxAttempts int, backoffBase time.Duration) (retryIn time.Duration, dead bool, err error) {
	if err := j.Transition(StateFailed); err != nil {
		return 0, false, err
	}

	j.Attempts++
	if cause != nil {
		j.LastError = cause.Error()
	}

	if j.Attempts >= maxAttempts {
		if err := j.Transition(StateDead); err != nil {
			return 0, false, err
		}
		return 0, true, nil
	}

	if err := j.Transition(StateQueued); err != nil {
		return 0, false, err
	}

	return Backoff(backoffBase, j.Attempts), false, nil
}

// Backoff returns the delay before the given attempt number is retried,
// doubling per attempt: base, 2*base, 4*base, ...
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base << (attempt - 1)
}

// ArchivePayload is the inbound shape for archive discovery jobs.
type ArchivePayload struct {
	URLs []string `json:"urls"`
	UUID string   `json:"uuid"`
}

// ProductPayload is the inbound shape for full product extraction jobs.
type ProductPayload struct {
	URL  string `json:"url"`
	UUID string `json:"uuid"`
}

// FastSyncPayload is the inbound shape for targeted re-sync jobs.
type FastSyncPayload struct {
	URL                    string   `json:"url"`
	UUID                   string   `json:"uuid"`
	TargetLinkTitles       []string `json:"target_link_titles"`
	VariationCombinationID string   `json:"variation_combination_id"`
}
