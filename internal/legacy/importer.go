package legacy

import (
	"context"
	"fmt"
	"log"

	"github.com/cloo-solutions/litbot/internal/repository"
)

type TxRunner interface {
	WithTx(ctx context.Context, fn func(repos repository.TxRepositories) error) error
}

type Report struct {
	HistoryInserted int `json:"history_inserted"`
	HistorySkipped  int `json:"history_skipped"`
	KeywordsAdded   int `json:"keywords_added"`
	KeywordsSkipped int `json:"keywords_skipped"`
}

// Importer writes a Dataset in one transaction. Existing links and
// keywords are left as they are, so importing twice is harmless.
type Importer struct {
	tx TxRunner
}

func NewImporter(tx TxRunner) *Importer {
	return &Importer{tx: tx}
}

func (i *Importer) Import(ctx context.Context, ds *Dataset) (*Report, error) {
	report := &Report{}
	err := i.tx.WithTx(ctx, func(repos repository.TxRepositories) error {
		*report = Report{}
		for idx := range ds.History {
			inserted, err := repos.History().Insert(ctx, &ds.History[idx])
			if err != nil {
				return fmt.Errorf("failed to import %s: %w", ds.History[idx].Link, err)
			}
			if inserted {
				report.HistoryInserted++
			} else {
				report.HistorySkipped++
			}
		}
		for _, kw := range ds.Keywords {
			added, err := repos.Keywords().Add(ctx, kw)
			if err != nil {
				return fmt.Errorf("failed to import keyword %q: %w", kw, err)
			}
			if added {
				report.KeywordsAdded++
			} else {
				report.KeywordsSkipped++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("legacy: imported %d articles (%d already present), %d keywords (%d already present)",
		report.HistoryInserted, report.HistorySkipped, report.KeywordsAdded, report.KeywordsSkipped)
	return report, nil
}
