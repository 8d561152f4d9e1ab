// Package backup exports history and keywords as a JSON snapshot to object
// storage.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloo-solutions/litbot/internal/domain"
)

const (
	KeyPrefix       = "backups/"
	DefaultRetained = 14
	contentType     = "application/json"
	keyLayout       = "20060102T150405Z"
)

type HistoryLister interface {
	All(ctx context.Context) ([]*domain.HistoryRecord, error)
}

type KeywordLister interface {
	ListDetailed(ctx context.Context) ([]*domain.Keyword, error)
}

type ObjectStore interface {
	PutObject(ctx context.Context, key, contentType string, body []byte) error
	GetObject(ctx context.Context, key string) ([]byte, error)
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	DeleteObject(ctx context.Context, key string) error
}

type Snapshot struct {
	CreatedAt time.Time      `json:"created_at"`
	Keywords  []KeywordEntry `json:"keywords"`
	History   []HistoryEntry `json:"history"`
}

type KeywordEntry struct {
	Keyword   string    `json:"keyword"`
	CreatedAt time.Time `json:"created_at"`
}

type HistoryEntry struct {
	Link      string    `json:"link"`
	Title     string    `json:"title,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	Category  string    `json:"category,omitempty"`
	Tags      string    `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Service struct {
	history  HistoryLister
	keywords KeywordLister
	store    ObjectStore
	retained int
	now      func() time.Time
}

func NewService(history HistoryLister, keywords KeywordLister, store ObjectStore) *Service {
	return &Service{
		history:  history,
		keywords: keywords,
		store:    store,
		retained: DefaultRetained,
		now:      time.Now,
	}
}

// WithRetention sets how many snapshots Run keeps. Zero keeps all.
func (s *Service) WithRetention(n int) *Service {
	s.retained = n
	return s
}

// Build reads the current state into a snapshot.
func (s *Service) Build(ctx context.Context) (*Snapshot, error) {
	records, err := s.history.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	keywords, err := s.keywords.ListDetailed(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read keywords: %w", err)
	}

	snap := &Snapshot{
		CreatedAt: s.now().UTC(),
		Keywords:  make([]KeywordEntry, 0, len(keywords)),
		History:   make([]HistoryEntry, 0, len(records)),
	}
	for _, k := range keywords {
		snap.Keywords = append(snap.Keywords, KeywordEntry{Keyword: k.Keyword, CreatedAt: k.CreatedAt})
	}
	for _, r := range records {
		snap.History = append(snap.History, HistoryEntry{
			Link:      r.Link,
			Title:     r.Title,
			Summary:   r.Summary,
			Category:  r.Category,
			Tags:      r.Tags,
			CreatedAt: r.CreatedAt,
		})
	}
	return snap, nil
}

// Run uploads a fresh snapshot, prunes old ones and returns the new key.
func (s *Service) Run(ctx context.Context) (string, error) {
	snap, err := s.Build(ctx)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := KeyPrefix + snap.CreatedAt.Format(keyLayout) + ".json"
	if err := s.store.PutObject(ctx, key, contentType, body); err != nil {
		return "", err
	}
	log.Printf("backup: wrote %s (%d articles, %d keywords)", key, len(snap.History), len(snap.Keywords))

	if err := s.prune(ctx); err != nil {
		log.Printf("backup: prune failed: %v", err)
	}
	return key, nil
}

// Latest downloads and decodes the newest snapshot.
func (s *Service) Latest(ctx context.Context) (*Snapshot, string, error) {
	keys, err := s.snapshotKeys(ctx)
	if err != nil {
		return nil, "", err
	}
	if len(keys) == 0 {
		return nil, "", domain.Wrap(domain.ErrBackupNotFound, fmt.Errorf("no backups under %s", KeyPrefix))
	}
	key := keys[len(keys)-1]
	snap, err := s.Load(ctx, key)
	if err != nil {
		return nil, "", err
	}
	return snap, key, nil
}

// Load downloads and decodes the snapshot stored under key. A bare file name
// is looked up under KeyPrefix.
func (s *Service) Load(ctx context.Context, key string) (*Snapshot, error) {
	if !strings.HasPrefix(key, KeyPrefix) {
		key = KeyPrefix + key
	}
	data, err := s.store.GetObject(ctx, key)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return &snap, nil
}

// Records converts the snapshot history back into history records.
func (snap *Snapshot) Records() []domain.HistoryRecord {
	out := make([]domain.HistoryRecord, 0, len(snap.History))
	for _, h := range snap.History {
		out = append(out, domain.HistoryRecord{
			Link:      h.Link,
			Title:     h.Title,
			Summary:   h.Summary,
			Category:  h.Category,
			Tags:      h.Tags,
			CreatedAt: h.CreatedAt,
		})
	}
	return out
}

// KeywordNames lists the snapshot keywords in stored order.
func (snap *Snapshot) KeywordNames() []string {
	out := make([]string, 0, len(snap.Keywords))
	for _, k := range snap.Keywords {
		out = append(out, k.Keyword)
	}
	return out
}

func (s *Service) prune(ctx context.Context) error {
	if s.retained <= 0 {
		return nil
	}
	keys, err := s.snapshotKeys(ctx)
	if err != nil {
		return err
	}
	for len(keys) > s.retained {
		if err := s.store.DeleteObject(ctx, keys[0]); err != nil {
			return err
		}
		keys = keys[1:]
	}
	return nil
}

// snapshotKeys lists snapshot keys oldest first; the key layout sorts by time.
func (s *Service) snapshotKeys(ctx context.Context) ([]string, error) {
	keys, err := s.store.ListKeys(ctx, KeyPrefix)
	if err != nil {
		return nil, err
	}
	out := keys[:0]
	for _, k := range keys {
		if strings.HasSuffix(k, ".json") {
			out = append(out, k)
		}
	}
	return out, nil
}
