package service

import (
	"context"
	"log"
	"strings"

	"github.com/cloo-solutions/litbot/internal/domain"
)

// KeywordRepository is the keyword store surface.
type KeywordRepository interface {
	List(ctx context.Context) ([]string, error)
	Add(ctx context.Context, keyword string) (bool, error)
	Remove(ctx context.Context, keyword string) (bool, error)
	SeedDefaults(ctx context.Context, defaults []string) (int, error)
}

// KeywordService maps keyword store outcomes onto domain errors.
type KeywordService struct {
	repo KeywordRepository
}

func NewKeywordService(repo KeywordRepository) *KeywordService {
	return &KeywordService{repo: repo}
}

func (s *KeywordService) List(ctx context.Context) ([]string, error) {
	return s.repo.List(ctx)
}

// Add returns ErrKeywordAlreadyExists when an equal keyword (ignoring case) exists.
func (s *KeywordService) Add(ctx context.Context, keyword string) (string, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return "", domain.ErrEmptyKeyword
	}
	added, err := s.repo.Add(ctx, keyword)
	if err != nil {
		return "", err
	}
	if !added {
		return "", domain.ErrKeywordAlreadyExists
	}
	return keyword, nil
}

// Remove returns ErrKeywordNotFound when nothing matched.
func (s *KeywordService) Remove(ctx context.Context, keyword string) error {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return domain.ErrEmptyKeyword
	}
	removed, err := s.repo.Remove(ctx, keyword)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrKeywordNotFound
	}
	return nil
}

// Seed writes defaults into an empty store.
func (s *KeywordService) Seed(ctx context.Context, defaults []string) error {
	n, err := s.repo.SeedDefaults(ctx, defaults)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("keywords: seeded %d defaults", n)
	}
	return nil
}
