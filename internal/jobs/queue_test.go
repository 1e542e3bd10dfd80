package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryQueuePushPopFIFO(t *testing.T) {
	q := NewInMemoryQueue()
	defer q.Close()

	ctx := context.Background()
	first, err := NewJob(KindProduct, ProductPayload{URL: "https://www.trendyol.com/p/1"})
	require.NoError(t, err)
	second, err := NewJob(KindProduct, ProductPayload{URL: "https://www.trendyol.com/p/2"})
	require.NoError(t, err)

	require.NoError(t, q.Push(ctx, first))
	require.NoError(t, q.Push(ctx, second))

	size, err := q.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, size)

	got, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	got, err = q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
}

func TestInMemoryQueuePopBlocksUntilPush(t *testing.T) {
	q := NewInMemoryQueue()
	defer q.Close()

	job, err := NewJob(KindArchive, ArchivePayload{URLs: []string{"https://www.trendyol.com/x"}})
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		q.Push(context.Background(), job)
	}()

	got, err := q.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
}

func TestInMemoryQueuePopHonorsContext(t *testing.T) {
	q := NewInMemoryQueue()
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Pop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInMemoryQueuePushDelayed(t *testing.T) {
	q := NewInMemoryQueue()
	defer q.Close()

	ctx := context.Background()
	job, err := NewJob(KindFastSync, FastSyncPayload{URL: "https://www.trendyol.com/p/1"})
	require.NoError(t, err)

	require.NoError(t, q.PushDelayed(ctx, job, 30*time.Millisecond))

	size, err := q.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, size, "job must stay invisible until the delay elapses")

	got, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
}

func TestInMemoryQueuePushDelayedZeroDelayIsImmediate(t *testing.T) {
	q := NewInMemoryQueue()
	defer q.Close()

	ctx := context.Background()
	job, err := NewJob(KindProduct, ProductPayload{URL: "https://www.trendyol.com/p/1"})
	require.NoError(t, err)

	require.NoError(t, q.PushDelayed(ctx, job, 0))

	size, err := q.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}

func TestInMemoryQueueClose(t *testing.T) {
	q := NewInMemoryQueue()

	ctx := context.Background()
	job, err := NewJob(KindProduct, ProductPayload{URL: "https://www.trendyol.com/p/1"})
	require.NoError(t, err)
	require.NoError(t, q.Push(ctx, job))

	require.NoError(t, q.Close())

	// Jobs already queued drain before the closed error surfaces.
	got, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)

	_, err = q.Pop(ctx)
	assert.ErrorIs(t, err, ErrQueueClosed)

	assert.ErrorIs(t, q.Push(ctx, job), ErrQueueClosed)
}
