package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cloo-solutions/litbot/internal/domain"
)

type HistoryGetter interface {
	Get(ctx context.Context, link string) (*domain.HistoryRecord, error)
}

// Reindexer rebuilds chunks for a recorded article. Only the stored summary
// is available at this point, so retried chunks hold title and summary.
type Reindexer struct {
	history HistoryGetter
	indexer *IndexerService
}

func NewReindexer(history HistoryGetter, indexer *IndexerService) *Reindexer {
	return &Reindexer{history: history, indexer: indexer}
}

func (r *Reindexer) Reindex(ctx context.Context, link string) error {
	rec, err := r.history.Get(ctx, link)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", link, err)
	}
	return r.indexer.IndexRecord(ctx, rec, "history", rec.CreatedAt.UTC().Format(time.RFC3339))
}
