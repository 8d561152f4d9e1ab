package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/cloo-solutions/litbot/internal/domain"
)

const (
	MaxRetries = 3
)

type IndexJobRepository interface {
	// GetPendingJobs claims a batch of pending jobs.
	GetPendingJobs(ctx context.Context) ([]*domain.IndexJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status domain.IndexJobStatus, errMsg string) error
	IncrementRetries(ctx context.Context, jobID string) error
}

// Reindexer re-indexes one published article by link.
type Reindexer interface {
	Reindex(ctx context.Context, link string) error
}

// IndexWorker retries vector indexing for articles that were published and
// recorded but failed to index.
type IndexWorker struct {
	repo      IndexJobRepository
	reindexer Reindexer
}

func NewIndexWorker(repo IndexJobRepository, reindexer Reindexer) *IndexWorker {
	return &IndexWorker{repo: repo, reindexer: reindexer}
}

func (w *IndexWorker) ProcessJobs(ctx context.Context) error {
	jobs, err := w.repo.GetPendingJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch pending jobs: %w", err)
	}
	if len(jobs) == 0 {
		return nil
	}

	log.Printf("jobs: processing %d index jobs", len(jobs))
	for _, job := range jobs {
		if err := w.processJob(ctx, job); err != nil {
			log.Printf("jobs: index job %s: %v", job.ID, err)
		}
	}
	return nil
}

func (w *IndexWorker) processJob(ctx context.Context, job *domain.IndexJob) error {
	if job.Link == "" {
		return w.repo.UpdateJobStatus(ctx, job.ID, domain.IndexJobStatusFailed, "job has no link")
	}

	if err := w.reindexer.Reindex(ctx, job.Link); err != nil {
		return w.handleJobFailure(ctx, job, err)
	}

	if err := w.repo.UpdateJobStatus(ctx, job.ID, domain.IndexJobStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to update job status to completed: %w", err)
	}
	log.Printf("jobs: re-indexed %s", job.Link)
	return nil
}

func (w *IndexWorker) handleJobFailure(ctx context.Context, job *domain.IndexJob, jobErr error) error {
	if err := w.repo.IncrementRetries(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	attempt := int(job.Retries) + 1
	if attempt >= MaxRetries {
		log.Printf("jobs: index job %s for %s failed after %d attempts: %v", job.ID, job.Link, attempt, jobErr)
		if err := w.repo.UpdateJobStatus(ctx, job.ID, domain.IndexJobStatusFailed, fmt.Sprintf("max retries exceeded: %v", jobErr)); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		return nil
	}

	log.Printf("jobs: index job %s will be retried (attempt %d/%d): %v", job.ID, attempt, MaxRetries, jobErr)
	if err := w.repo.UpdateJobStatus(ctx, job.ID, domain.IndexJobStatusPending, fmt.Sprintf("retry %d: %v", attempt, jobErr)); err != nil {
		return fmt.Errorf("failed to reset job status to pending: %w", err)
	}
	return nil
}
