package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode"

	"github.com/cloo-solutions/litbot/internal/classifier"
	"github.com/cloo-solutions/litbot/internal/domain"
)

const backfillBatchSize = 100

// BackfillHistoryRepository is the history surface backfill needs.
type BackfillHistoryRepository interface {
	ListMissingMetadata(ctx context.Context, limit int) ([]*domain.HistoryRecord, error)
	UpdateMetadata(ctx context.Context, link, category, tags string) error
}

// KeywordLister returns the active keywords.
type KeywordLister interface {
	List(ctx context.Context) ([]string, error)
}

// BackfillService fills category and tags on legacy rows from their link text.
type BackfillService struct {
	history    BackfillHistoryRepository
	keywords   KeywordLister
	classifier *classifier.Classifier
}

func NewBackfillService(history BackfillHistoryRepository, keywords KeywordLister, c *classifier.Classifier) *BackfillService {
	return &BackfillService{history: history, keywords: keywords, classifier: c}
}

// Run updates every record missing metadata and returns how many were updated.
func (s *BackfillService) Run(ctx context.Context) (int, error) {
	keywords, err := s.keywords.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list keywords: %w", err)
	}

	updated := 0
	for {
		records, err := s.history.ListMissingMetadata(ctx, backfillBatchSize)
		if err != nil {
			return updated, fmt.Errorf("failed to list records: %w", err)
		}
		if len(records) == 0 {
			break
		}

		for _, rec := range records {
			text := LinkText(rec.Link)
			if rec.Title != "" {
				text = rec.Title + " " + text
			}
			res := s.classifier.ClassifyText(text, keywords)
			if err := s.history.UpdateMetadata(ctx, rec.Link, res.Category, domain.JoinTags(res.Hashtags)); err != nil {
				return updated, fmt.Errorf("failed to update %s: %w", rec.Link, err)
			}
			updated++
		}
	}

	log.Printf("backfill: updated %d records", updated)
	return updated, nil
}

// LinkText turns a URL into space-separated words so whole-word patterns can hit.
func LinkText(link string) string {
	return strings.Join(strings.FieldsFunc(link, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}
