// Package scraper extracts readable article text for ad-hoc summaries.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/cloo-solutions/litbot/internal/domain"
)

const (
	DefaultTimeout = 20 * time.Second
	// MaxContentRunes bounds extracted text passed to the summarizer.
	MaxContentRunes = 4000

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Scraper turns a URL into an Item ready for classification and summary.
type Scraper struct {
	client *http.Client
}

func New(client *http.Client) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Scraper{client: client}
}

// Scrape fetches rawURL and extracts its title and main text.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (*domain.Item, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, domain.ErrInvalidLink
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, domain.Wrap(domain.ErrExtractFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.Wrap(domain.ErrExtractFailed, fmt.Errorf("status %d", resp.StatusCode))
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return nil, domain.Wrap(domain.ErrExtractFailed, err)
	}

	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = parsed.Host
	}
	source := strings.TrimSpace(article.SiteName)
	if source == "" {
		source = parsed.Host
	}

	item := &domain.Item{
		Title:     title,
		Link:      parsed.String(),
		Summary:   truncate(strings.TrimSpace(article.TextContent), MaxContentRunes),
		Published: time.Now().UTC(),
		Source:    source,
	}
	if article.PublishedTime != nil {
		item.Published = article.PublishedTime.UTC()
	}
	return item, nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
