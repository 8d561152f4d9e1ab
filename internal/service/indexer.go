package service

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/cloo-solutions/litbot/internal/domain"
)

// VectorStore stores chunk text with metadata and answers similarity queries.
type VectorStore interface {
	Upsert(ctx context.Context, ids, texts []string, metas []domain.ChunkMetadata) error
	Query(ctx context.Context, text string, k int) ([]domain.ChunkMatch, error)
}

// IndexerService chunks article text into the vector store.
type IndexerService struct {
	store    VectorStore
	chunkCfg ChunkConfig
}

func NewIndexerService(store VectorStore) *IndexerService {
	return &IndexerService{
		store:    store,
		chunkCfg: DefaultChunkConfig(),
	}
}

// ChunkID derives a stable chunk identifier so reindexing overwrites.
func ChunkID(link string, offset int) string {
	return link + "_" + strconv.Itoa(offset)
}

// Index splits text and upserts every chunk in one batch. Empty text is a no-op.
func (s *IndexerService) Index(ctx context.Context, text string, meta domain.ChunkMetadata) error {
	chunks := chunkText(text, s.chunkCfg)
	if len(chunks) == 0 {
		return nil
	}

	ids := make([]string, len(chunks))
	texts := make([]string, len(chunks))
	metas := make([]domain.ChunkMetadata, len(chunks))
	for i, c := range chunks {
		ids[i] = ChunkID(meta.Link, c.Offset)
		texts[i] = c.Text
		metas[i] = meta
	}

	if err := s.store.Upsert(ctx, ids, texts, metas); err != nil {
		return fmt.Errorf("failed to upsert chunks: %w", err)
	}

	log.Printf("indexer: indexed %d chunks for %q", len(chunks), meta.Title)
	return nil
}

// IndexRecord indexes a persisted history record the way ingest does.
func (s *IndexerService) IndexRecord(ctx context.Context, rec *domain.HistoryRecord, source, published string) error {
	return s.Index(ctx, ArticleText(rec.Title, rec.Summary), domain.ChunkMetadata{
		Source:    source,
		Title:     rec.Title,
		Link:      rec.Link,
		Published: published,
	})
}

// ArticleText is the text indexed for a published article. Summary markup is
// stripped so chunks hold plain text.
func ArticleText(title, summary string) string {
	return title + "\n\n" + StripHTML(summary)
}
