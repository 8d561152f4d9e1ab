package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/litbot/internal/domain"
)

type stubHistoryGetter map[string]*domain.HistoryRecord

func (s stubHistoryGetter) Get(_ context.Context, link string) (*domain.HistoryRecord, error) {
	rec, ok := s[link]
	if !ok {
		return nil, domain.ErrHistoryNotFound
	}
	return rec, nil
}

func TestReindexer_Reindex(t *testing.T) {
	store := new(MockVectorStore)
	created := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	history := stubHistoryGetter{"https://x/1": {
		Link:      "https://x/1",
		Title:     "GDPR fine",
		Summary:   "The regulator fined a retailer for unlawful processing of customer data. 🤖 <i>AI-generated</i>",
		CreatedAt: created,
	}}

	store.On("Upsert", mock.Anything, []string{"https://x/1_0"}, mock.Anything, []domain.ChunkMetadata{{
		Source:    "history",
		Title:     "GDPR fine",
		Link:      "https://x/1",
		Published: "2024-06-01T08:00:00Z",
	}}).Return(nil)

	err := NewReindexer(history, NewIndexerService(store)).Reindex(context.Background(), "https://x/1")

	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestReindexer_MissingRecord(t *testing.T) {
	store := new(MockVectorStore)

	err := NewReindexer(stubHistoryGetter{}, NewIndexerService(store)).Reindex(context.Background(), "https://x/none")

	assert.ErrorIs(t, err, domain.ErrHistoryNotFound)
	store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
