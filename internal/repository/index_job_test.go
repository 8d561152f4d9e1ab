//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/cloo-solutions/litbot/internal/domain"
	"github.com/cloo-solutions/litbot/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHistoryForIndexJob(ctx context.Context, t *testing.T, historyRepo *HistoryRepository, link string) {
	require.NoError(t, historyRepo.Add(ctx, &domain.HistoryRecord{Link: link, Title: "Indexed later"}))
}

func TestIndexJobRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc)
	defer pool.Close()

	historyRepo := NewHistoryRepository(pool)
	jobRepo := NewIndexJobRepository(pool)
	setupHistoryForIndexJob(ctx, t, historyRepo, "https://x/1")

	job := domain.NewIndexJob(uuid.NewString(), "https://x/1", time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, jobRepo.Create(ctx, job))

	got, err := jobRepo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.Link, got.Link)
	assert.Equal(t, domain.IndexJobStatusPending, got.Status)
	assert.Equal(t, int32(0), got.Retries)
	assert.Empty(t, got.Error)
	assert.Nil(t, got.ProcessedAt)
}

func TestIndexJobRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc)
	defer pool.Close()

	_, err := NewIndexJobRepository(pool).GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrIndexJobNotFound)
}

func TestIndexJobRepository_EnqueueDeduplicatesPending(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc)
	defer pool.Close()

	historyRepo := NewHistoryRepository(pool)
	jobRepo := NewIndexJobRepository(pool)
	setupHistoryForIndexJob(ctx, t, historyRepo, "https://x/1")

	require.NoError(t, jobRepo.Enqueue(ctx, "https://x/1"))
	require.NoError(t, jobRepo.Enqueue(ctx, "https://x/1"))

	counts, err := jobRepo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.IndexJobStatusPending])
}

func TestIndexJobRepository_ClaimPending(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc)
	defer pool.Close()

	historyRepo := NewHistoryRepository(pool)
	jobRepo := NewIndexJobRepository(pool)
	for _, link := range []string{"https://x/1", "https://x/2"} {
		setupHistoryForIndexJob(ctx, t, historyRepo, link)
		require.NoError(t, jobRepo.Enqueue(ctx, link))
	}

	claimed, err := jobRepo.ClaimPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 2)
	for _, j := range claimed {
		assert.Equal(t, domain.IndexJobStatusProcessing, j.Status)
	}

	again, err := jobRepo.ClaimPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestIndexJobRepository_UpdateStatusAndRetries(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc)
	defer pool.Close()

	historyRepo := NewHistoryRepository(pool)
	jobRepo := NewIndexJobRepository(pool)
	setupHistoryForIndexJob(ctx, t, historyRepo, "https://x/1")

	job := domain.NewIndexJob(uuid.NewString(), "https://x/1", time.Now().UTC())
	require.NoError(t, jobRepo.Create(ctx, job))

	require.NoError(t, jobRepo.IncrementRetries(ctx, job.ID))
	require.NoError(t, jobRepo.UpdateStatus(ctx, job.ID, domain.IndexJobStatusFailed, "embedding down"))

	got, err := jobRepo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(1), got.Retries)
	assert.Equal(t, domain.IndexJobStatusFailed, got.Status)
	assert.Equal(t, "embedding down", got.Error)
	assert.NotNil(t, got.ProcessedAt)

	assert.ErrorIs(t, jobRepo.UpdateStatus(ctx, uuid.NewString(), domain.IndexJobStatusCompleted, ""), domain.ErrIndexJobNotFound)
	assert.ErrorIs(t, jobRepo.IncrementRetries(ctx, uuid.NewString()), domain.ErrIndexJobNotFound)
}
