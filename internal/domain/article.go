package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Item is a feed entry as produced by a fetcher. Link is the dedupe key.
type Item struct {
	Title     string
	Link      string
	Summary   string
	Published time.Time
	Source    string
}

// HistoryRecord is the persisted record of a published or shared article.
type HistoryRecord struct {
	Link      string
	Title     string
	Summary   string
	Category  string
	Tags      string
	CreatedAt time.Time
}

// Keyword is an active relevance keyword.
type Keyword struct {
	Keyword   string
	CreatedAt time.Time
}

// ValidateItem validates an Item instance
func ValidateItem(i *Item) error {
	if i == nil {
		return fmt.Errorf("item cannot be nil")
	}

	if strings.TrimSpace(i.Link) == "" {
		return fmt.Errorf("item Link is required")
	}

	u, err := url.Parse(i.Link)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidLink
	}

	if strings.TrimSpace(i.Title) == "" {
		return fmt.Errorf("item Title is required")
	}

	return nil
}

// HashtagList splits the space-joined Tags column.
func (r *HistoryRecord) HashtagList() []string {
	return strings.Fields(r.Tags)
}

// JoinTags produces the stored representation of a hashtag list.
func JoinTags(tags []string) string {
	return strings.Join(tags, " ")
}
