package service

import (
	"context"

	"github.com/cloo-solutions/litbot/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	args := m.Called(ctx, system, prompt)
	return args.String(0), args.Error(1)
}

type MockVectorStore struct {
	mock.Mock
}

func (m *MockVectorStore) Upsert(ctx context.Context, ids, texts []string, metas []domain.ChunkMetadata) error {
	args := m.Called(ctx, ids, texts, metas)
	return args.Error(0)
}

func (m *MockVectorStore) Query(ctx context.Context, text string, k int) ([]domain.ChunkMatch, error) {
	args := m.Called(ctx, text, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChunkMatch), args.Error(1)
}

type MockChatProvider struct {
	mock.Mock
}

func (m *MockChatProvider) Chat(ctx context.Context, prompt string, temperature float64) (string, error) {
	args := m.Called(ctx, prompt, temperature)
	return args.String(0), args.Error(1)
}

type MockKeywordRepo struct {
	mock.Mock
}

func (m *MockKeywordRepo) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockKeywordRepo) Add(ctx context.Context, keyword string) (bool, error) {
	args := m.Called(ctx, keyword)
	return args.Bool(0), args.Error(1)
}

func (m *MockKeywordRepo) Remove(ctx context.Context, keyword string) (bool, error) {
	args := m.Called(ctx, keyword)
	return args.Bool(0), args.Error(1)
}

func (m *MockKeywordRepo) SeedDefaults(ctx context.Context, defaults []string) (int, error) {
	args := m.Called(ctx, defaults)
	return args.Int(0), args.Error(1)
}

type MockBackfillHistoryRepo struct {
	mock.Mock
}

func (m *MockBackfillHistoryRepo) ListMissingMetadata(ctx context.Context, limit int) ([]*domain.HistoryRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.HistoryRecord), args.Error(1)
}

func (m *MockBackfillHistoryRepo) UpdateMetadata(ctx context.Context, link, category, tags string) error {
	args := m.Called(ctx, link, category, tags)
	return args.Error(0)
}
