package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRepositories exposes the repositories a bulk write needs, all bound to
// one transaction.
type TxRepositories interface {
	History() *HistoryRepository
	Keywords() *KeywordRepository
}

// TxRunner runs bulk writes such as legacy imports and backup restores so
// they land entirely or not at all.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// WithTx commits when fn returns nil and rolls back otherwise, including
// when fn panics.
func (r *TxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(txRepos{tx: tx})
	})
	if err != nil {
		return fmt.Errorf("transaction rolled back: %w", err)
	}
	return nil
}

type txRepos struct {
	tx pgx.Tx
}

func (r txRepos) History() *HistoryRepository {
	return NewHistoryRepositoryWithTx(r.tx)
}

func (r txRepos) Keywords() *KeywordRepository {
	return NewKeywordRepositoryWithTx(r.tx)
}
