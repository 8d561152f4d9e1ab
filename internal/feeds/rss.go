package feeds

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cloo-solutions/litbot/internal/domain"
	"github.com/mmcdole/gofeed"
)

// RSSSource reads an RSS or Atom feed.
type RSSSource struct {
	name   string
	url    string
	parser *gofeed.Parser
}

func NewRSSSource(name, url string, client *http.Client) *RSSSource {
	p := gofeed.NewParser()
	p.UserAgent = UserAgent
	if client != nil {
		p.Client = client
	}
	return &RSSSource{name: name, url: url, parser: p}
}

func (s *RSSSource) Name() string {
	return s.name
}

// Fetch parses the feed. Entries without a publish or update time are dropped.
func (s *RSSSource) Fetch(ctx context.Context) ([]domain.Item, error) {
	feed, err := s.parser.ParseURLWithContext(s.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return itemsFromFeed(feed, s.name), nil
}

func itemsFromFeed(feed *gofeed.Feed, fallbackSource string) []domain.Item {
	source := strings.TrimSpace(feed.Title)
	if source == "" {
		source = fallbackSource
	}

	items := make([]domain.Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		published := entry.PublishedParsed
		if published == nil {
			published = entry.UpdatedParsed
		}
		if published == nil || entry.Link == "" {
			continue
		}

		title := strings.TrimSpace(entry.Title)
		if title == "" {
			title = "No Title"
		}
		summary := entry.Description
		if summary == "" {
			summary = entry.Content
		}

		items = append(items, domain.Item{
			Title:     title,
			Link:      strings.TrimSpace(entry.Link),
			Summary:   summary,
			Published: published.UTC(),
			Source:    source,
		})
	}
	return items
}
