package repository

import (
	"context"
	"strings"

	"github.com/cloo-solutions/litbot/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// KeywordRepository stores the active keyword set. Keywords keep their original
// case; uniqueness and lookups ignore case.
type KeywordRepository struct {
	db dbtx
}

func NewKeywordRepository(pool *pgxpool.Pool) *KeywordRepository {
	return &KeywordRepository{db: pool}
}

func NewKeywordRepositoryWithTx(tx pgx.Tx) *KeywordRepository {
	return &KeywordRepository{db: tx}
}

// List returns the keywords in insertion order.
func (r *KeywordRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT keyword FROM keywords ORDER BY created_at ASC, keyword ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keywords := make([]string, 0)
	for rows.Next() {
		var kw string
		if err := rows.Scan(&kw); err != nil {
			return nil, err
		}
		keywords = append(keywords, kw)
	}
	return keywords, rows.Err()
}

// ListDetailed returns keywords with their creation time.
func (r *KeywordRepository) ListDetailed(ctx context.Context) ([]*domain.Keyword, error) {
	rows, err := r.db.Query(ctx, `SELECT keyword, created_at FROM keywords ORDER BY created_at ASC, keyword ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keywords := make([]*domain.Keyword, 0)
	for rows.Next() {
		var kw domain.Keyword
		if err := rows.Scan(&kw.Keyword, &kw.CreatedAt); err != nil {
			return nil, err
		}
		keywords = append(keywords, &kw)
	}
	return keywords, rows.Err()
}

// Add inserts keyword. It returns false when an equal keyword (ignoring case) exists.
func (r *KeywordRepository) Add(ctx context.Context, keyword string) (bool, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return false, domain.ErrEmptyKeyword
	}

	tag, err := r.db.Exec(ctx,
		`INSERT INTO keywords (keyword) VALUES ($1) ON CONFLICT DO NOTHING`,
		keyword,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Remove deletes keyword, matching case-insensitively. It returns false when absent.
func (r *KeywordRepository) Remove(ctx context.Context, keyword string) (bool, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return false, domain.ErrEmptyKeyword
	}

	tag, err := r.db.Exec(ctx,
		`DELETE FROM keywords WHERE lower(keyword) = lower($1)`,
		keyword,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Count returns the number of keywords.
func (r *KeywordRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM keywords`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// SeedDefaults inserts defaults when the table is empty and returns how many were written.
func (r *KeywordRepository) SeedDefaults(ctx context.Context, defaults []string) (int, error) {
	n, err := r.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	// Later rows get later timestamps so List preserves the default order.
	batch := &pgx.Batch{}
	for i, kw := range defaults {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		batch.Queue(
			`INSERT INTO keywords (keyword, created_at)
			 VALUES ($1, now() + make_interval(secs => $2::double precision / 1000000))
			 ON CONFLICT DO NOTHING`,
			kw, float64(i),
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for i := 0; i < batch.Len(); i++ {
		tag, err := results.Exec()
		if err != nil {
			return inserted, err
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}
