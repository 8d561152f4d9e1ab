package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloo-solutions/litbot/internal/domain"
	"github.com/cloo-solutions/litbot/internal/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SearchPageSize bounds substring search results.
const SearchPageSize = 10

// HistoryRepository is the durable record of every published article, keyed by link.
type HistoryRepository struct {
	db dbtx
}

func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{db: pool}
}

func NewHistoryRepositoryWithTx(tx pgx.Tx) *HistoryRepository {
	return &HistoryRepository{db: tx}
}

// IsNew reports whether no record exists for link.
func (r *HistoryRepository) IsNew(ctx context.Context, link string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM history WHERE link = $1)`,
		link,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// Add records a published article. An existing link is left untouched and no error is returned.
func (r *HistoryRepository) Add(ctx context.Context, rec *domain.HistoryRecord) error {
	_, err := r.Insert(ctx, rec)
	return err
}

// Insert is Add that also reports whether a new row was written.
func (r *HistoryRepository) Insert(ctx context.Context, rec *domain.HistoryRecord) (bool, error) {
	if strings.TrimSpace(rec.Link) == "" {
		return false, domain.ErrMissingRequiredField
	}

	var createdAt *time.Time
	if !rec.CreatedAt.IsZero() {
		t := rec.CreatedAt.UTC()
		createdAt = &t
	}

	tag, err := r.db.Exec(ctx,
		`INSERT INTO history (link, title, summary, category, tags, created_at)
		 VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
		 ON CONFLICT (link) DO NOTHING`,
		rec.Link,
		nullableString(rec.Title),
		nullableString(rec.Summary),
		nullableString(rec.Category),
		nullableString(rec.Tags),
		createdAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Get returns the record for link.
func (r *HistoryRepository) Get(ctx context.Context, link string) (*domain.HistoryRecord, error) {
	row := r.db.QueryRow(ctx,
		`SELECT link, title, summary, category, tags, created_at
		 FROM history WHERE link = $1`,
		link,
	)
	rec, err := scanHistory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrHistoryNotFound
		}
		return nil, err
	}
	return rec, nil
}

// Search matches query case-insensitively as a substring of title, summary, link,
// category or tags. Results are newest first and capped at SearchPageSize.
func (r *HistoryRepository) Search(ctx context.Context, query string) ([]*domain.HistoryRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	pattern := "%" + escapeLike(query) + "%"
	rows, err := r.db.Query(ctx,
		`SELECT link, title, summary, category, tags, created_at
		 FROM history
		 WHERE title ILIKE $1
		    OR summary ILIKE $1
		    OR link ILIKE $1
		    OR category ILIKE $1
		    OR tags ILIKE $1
		 ORDER BY created_at DESC, link DESC
		 LIMIT $2`,
		pattern, SearchPageSize,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectHistory(rows)
}

// Count returns the number of recorded articles.
func (r *HistoryRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM history`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// List pages through history newest first.
func (r *HistoryRepository) List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]*domain.HistoryRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var (
		rows pgx.Rows
		err  error
	)
	if cursor == nil {
		rows, err = r.db.Query(ctx,
			`SELECT link, title, summary, category, tags, created_at
			 FROM history
			 ORDER BY created_at DESC, link DESC
			 LIMIT $1`,
			limit,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT link, title, summary, category, tags, created_at
			 FROM history
			 WHERE (created_at, link) < ($1, $2)
			 ORDER BY created_at DESC, link DESC
			 LIMIT $3`,
			cursor.CreatedAt, cursor.Link, limit,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectHistory(rows)
}

// ListMissingMetadata returns records lacking a category or tags, oldest first.
func (r *HistoryRepository) ListMissingMetadata(ctx context.Context, limit int) ([]*domain.HistoryRecord, error) {
	if limit <= 0 {
		limit = 500
	}

	rows, err := r.db.Query(ctx,
		`SELECT link, title, summary, category, tags, created_at
		 FROM history
		 WHERE category IS NULL OR category = '' OR tags IS NULL OR tags = ''
		 ORDER BY created_at ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectHistory(rows)
}

// UpdateMetadata fills derived category and tags. It is only used by backfill.
func (r *HistoryRepository) UpdateMetadata(ctx context.Context, link, category, tags string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE history SET category = $2, tags = $3 WHERE link = $1`,
		link, category, tags,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrHistoryNotFound
	}
	return nil
}

// All streams every record oldest first, for backups.
func (r *HistoryRepository) All(ctx context.Context) ([]*domain.HistoryRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT link, title, summary, category, tags, created_at
		 FROM history
		 ORDER BY created_at ASC, link ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectHistory(rows)
}

func scanHistory(row pgx.Row) (*domain.HistoryRecord, error) {
	var rec domain.HistoryRecord
	var title, summary, category, tags pgtype.Text
	if err := row.Scan(&rec.Link, &title, &summary, &category, &tags, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.Title = title.String
	rec.Summary = summary.String
	rec.Category = category.String
	rec.Tags = tags.String
	return &rec, nil
}

func collectHistory(rows pgx.Rows) ([]*domain.HistoryRecord, error) {
	records := make([]*domain.HistoryRecord, 0)
	for rows.Next() {
		rec, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
