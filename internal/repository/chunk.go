package repository

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/litbot/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ChunkRepository persists embedded article chunks in pgvector.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx dbtx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// Upsert writes all chunks in one batch. Existing ids are overwritten.
func (r *ChunkRepository) Upsert(ctx context.Context, chunks []domain.IndexedChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, c := range chunks {
		batch.Queue(
			`INSERT INTO article_chunks (id, link, title, source, published_str, content, embedding, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, now())
			 ON CONFLICT (id) DO UPDATE SET
			     link = EXCLUDED.link,
			     title = EXCLUDED.title,
			     source = EXCLUDED.source,
			     published_str = EXCLUDED.published_str,
			     content = EXCLUDED.content,
			     embedding = EXCLUDED.embedding,
			     updated_at = now()`,
			c.ID,
			c.Metadata.Link,
			c.Metadata.Title,
			c.Metadata.Source,
			c.Metadata.Published,
			c.Text,
			pgvector.NewVector(c.Embedding),
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for i := range chunks {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert chunk %s: %w", chunks[i].ID, err)
		}
	}
	return nil
}

// Query returns the k chunks closest to embedding by cosine distance.
func (r *ChunkRepository) Query(ctx context.Context, embedding []float32, k int) ([]domain.ChunkMatch, error) {
	if k <= 0 {
		k = 10
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, content, link, title, source, published_str, embedding <=> $1 AS distance
		 FROM article_chunks
		 ORDER BY embedding <=> $1, id
		 LIMIT $2`,
		pgvector.NewVector(embedding), k,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]domain.ChunkMatch, 0, k)
	for rows.Next() {
		var m domain.ChunkMatch
		if err := rows.Scan(&m.ID, &m.Text, &m.Metadata.Link, &m.Metadata.Title, &m.Metadata.Source, &m.Metadata.Published, &m.Distance); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// IDsByLink lists chunk ids stored for link.
func (r *ChunkRepository) IDsByLink(ctx context.Context, link string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM article_chunks WHERE link = $1 ORDER BY id`, link)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count returns the number of stored chunks.
func (r *ChunkRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM article_chunks`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
