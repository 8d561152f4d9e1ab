package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloo-solutions/litbot/internal/domain"
)

// Embedder turns texts into vectors, preserving order.
type Embedder interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// ChunkRepository persists chunks and runs nearest-neighbour queries.
type ChunkRepository interface {
	Upsert(ctx context.Context, chunks []domain.IndexedChunk) error
	Query(ctx context.Context, embedding []float32, k int) ([]domain.ChunkMatch, error)
}

var ErrLengthMismatch = errors.New("ids, texts and metadatas must have equal length")

// Store is a text-in vector store over pgvector.
type Store struct {
	embedder Embedder
	repo     ChunkRepository
}

func New(embedder Embedder, repo ChunkRepository) *Store {
	return &Store{embedder: embedder, repo: repo}
}

// Upsert embeds texts and writes them under ids. Existing ids are overwritten.
func (s *Store) Upsert(ctx context.Context, ids, texts []string, metas []domain.ChunkMetadata) error {
	if len(ids) != len(texts) || len(ids) != len(metas) {
		return ErrLengthMismatch
	}
	if len(ids) == 0 {
		return nil
	}

	embeddings, err := s.embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return domain.Wrap(domain.ErrEmbeddingFailed, err)
	}

	chunks := make([]domain.IndexedChunk, len(ids))
	for i := range ids {
		chunks[i] = domain.IndexedChunk{
			ID:        ids[i],
			Text:      texts[i],
			Embedding: embeddings[i],
			Metadata:  metas[i],
		}
	}

	if err := s.repo.Upsert(ctx, chunks); err != nil {
		return fmt.Errorf("failed to store chunks: %w", err)
	}
	return nil
}

// Query returns the k chunks closest to text, nearest first.
func (s *Store) Query(ctx context.Context, text string, k int) ([]domain.ChunkMatch, error) {
	if text == "" {
		return nil, domain.ErrEmptyQuery
	}

	embeddings, err := s.embedder.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, domain.Wrap(domain.ErrEmbeddingFailed, err)
	}

	matches, err := s.repo.Query(ctx, embeddings[0], k)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	return matches, nil
}
