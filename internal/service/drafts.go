package service

import (
	"sync"
	"time"

	"github.com/cloo-solutions/litbot/internal/domain"
	"github.com/google/uuid"
)

const (
	DefaultDraftTTL      = 24 * time.Hour
	DefaultDraftCapacity = 256
)

// DraftCache holds share previews until confirmed. Drafts expire after ttl and
// the oldest is evicted once capacity is reached. Nothing survives a restart.
type DraftCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	drafts   map[string]*domain.ShareDraft
	order    []string
	now      func() time.Time
}

func NewDraftCache(ttl time.Duration, capacity int) *DraftCache {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	if capacity <= 0 {
		capacity = DefaultDraftCapacity
	}
	return &DraftCache{
		ttl:      ttl,
		capacity: capacity,
		drafts:   make(map[string]*domain.ShareDraft),
		now:      time.Now,
	}
}

// Put stores a draft under a fresh token.
func (c *DraftCache) Put(item domain.Item, processed domain.Processed) *domain.ShareDraft {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.purgeLocked()
	for len(c.order) >= c.capacity {
		delete(c.drafts, c.order[0])
		c.order = c.order[1:]
	}

	draft := &domain.ShareDraft{
		Token:     uuid.NewString(),
		Item:      item,
		Processed: processed,
		CreatedAt: c.now(),
	}
	c.drafts[draft.Token] = draft
	c.order = append(c.order, draft.Token)
	return draft
}

// Take removes and returns the draft. A second Take of the same token fails.
func (c *DraftCache) Take(token string) (*domain.ShareDraft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.purgeLocked()
	draft, ok := c.drafts[token]
	if !ok {
		return nil, domain.ErrDraftNotFound
	}
	delete(c.drafts, token)
	c.removeOrderLocked(token)
	return draft, nil
}

// Len reports live drafts.
func (c *DraftCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purgeLocked()
	return len(c.drafts)
}

func (c *DraftCache) purgeLocked() {
	cutoff := c.now().Add(-c.ttl)
	n := 0
	for _, token := range c.order {
		d := c.drafts[token]
		if d == nil || !d.CreatedAt.After(cutoff) {
			delete(c.drafts, token)
			continue
		}
		c.order[n] = token
		n++
	}
	c.order = c.order[:n]
}

func (c *DraftCache) removeOrderLocked(token string) {
	for i, t := range c.order {
		if t == token {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
