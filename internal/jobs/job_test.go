package jobs

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJobStartsQueued(t *testing.T) {
	job, err := NewJob(KindProduct, ProductPayload{URL: "https://www.trendyol.com/p/1", UUID: "abc"})
	require.NoError(t, err)

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, KindProduct, job.Kind)
	assert.Equal(t, StateQueued, job.State)
	assert.Equal(t, 0, job.Attempts)
	assert.False(t, job.Terminal())
	assert.JSONEq(t, `{"url":"https://www.trendyol.com/p/1","uuid":"abc"}`, string(job.Payload))
}

func TestTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		to      State
		allowed bool
	}{
		{name: "queued to active", from: StateQueued, to: StateActive, allowed: true},
		{name: "active to completed", from: StateActive, to: StateCompleted, allowed: true},
		{name: "active to failed", from: StateActive, to: StateFailed, allowed: true},
		{name: "failed to queued", from: StateFailed, to: StateQueued, allowed: true},
		{name: "failed to dead", from: StateFailed, to: StateDead, allowed: true},
		{name: "queued to completed", from: StateQueued, to: StateCompleted, allowed: false},
		{name: "completed is terminal", from: StateCompleted, to: StateQueued, allowed: false},
		{name: "dead is terminal", from: StateDead, to: StateQueued, allowed: false},
		{name: "active to queued", from: StateActive, to: StateQueued, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &Job{State: tt.from}
			err := job.Transition(tt.to)

			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, job.State)
			} else {
				var invalid *ErrInvalidTransition
				require.ErrorAs(t, err, &invalid)
				assert.Equal(t, tt.from, job.State)
			}
		})
	}
}

func TestFailRequeuesBelowAttemptBudget(t *testing.T) {
	job := &Job{State: StateActive}

	retryIn, dead, err := job.Fail(errors.New("page timeout"), 3, time.Second)
	require.NoError(t, err)

	assert.False(t, dead)
	assert.Equal(t, time.Second, retryIn)
	assert.Equal(t, StateQueued, job.State)
	assert.Equal(t, 1, job.Attempts)
	assert.Equal(t, "page timeout", job.LastError)
}

func TestFailBackoffDoublesPerAttempt(t *testing.T) {
	job := &Job{State: StateActive}

	_, _, err := job.Fail(errors.New("first"), 5, time.Second)
	require.NoError(t, err)

	require.NoError(t, job.Transition(StateActive))
	retryIn, dead, err := job.Fail(errors.New("second"), 5, time.Second)
	require.NoError(t, err)

	assert.False(t, dead)
	assert.Equal(t, 2*time.Second, retryIn)
}

func TestFailGoesDeadAtAttemptBudget(t *testing.T) {
	job := &Job{State: StateActive, Attempts: 2}

	_, dead, err := job.Fail(errors.New("still broken"), 3, time.Second)
	require.NoError(t, err)

	assert.True(t, dead)
	assert.Equal(t, StateDead, job.State)
	assert.Equal(t, 3, job.Attempts)
	assert.True(t, job.Terminal())
}

func TestBackoff(t *testing.T) {
	base := 5 * time.Second

	assert.Equal(t, 5*time.Second, Backoff(base, 1))
	assert.Equal(t, 10*time.Second, Backoff(base, 2))
	assert.Equal(t, 20*time.Second, Backoff(base, 3))
	assert.Equal(t, 5*time.Second, Backoff(base, 0))
}
