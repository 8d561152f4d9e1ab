package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cloo-solutions/litbot/internal/domain"
)

const (
	pdpcBaseURL    = "https://www.pdpc.gov.sg"
	pdpcDateLayout = "02 Jan 2006"
	pdpcSourceName = "PDPC Singapore"
)

// PDPCSource reads the PDPC press-room listing API.
type PDPCSource struct {
	name   string
	url    string
	client *http.Client
	loc    *time.Location
	now    func() time.Time
}

func NewPDPCSource(name, endpoint string, client *http.Client) *PDPCSource {
	if name == "" {
		name = pdpcSourceName
	}
	loc, err := time.LoadLocation("Asia/Singapore")
	if err != nil {
		loc = time.UTC
	}
	return &PDPCSource{name: name, url: endpoint, client: client, loc: loc, now: time.Now}
}

func (s *PDPCSource) Name() string {
	return s.name
}

type pdpcListing struct {
	Items []pdpcItem `json:"items"`
}

type pdpcItem struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

func (s *PDPCSource) Fetch(ctx context.Context) ([]domain.Item, error) {
	form := url.Values{}
	form.Set("type", "all")
	form.Set("year", "all")
	form.Set("page", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing returned status %d", resp.StatusCode)
	}

	var listing pdpcListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}

	return s.parse(listing), nil
}

// parse drops entries without a title, link or parseable date. Listing dates
// have day precision, so an entry counts as published at the end of its day
// (or now, for today's entries) and periodic sweeps still see it.
func (s *PDPCSource) parse(listing pdpcListing) []domain.Item {
	items := make([]domain.Item, 0, len(listing.Items))
	for _, it := range listing.Items {
		title := strings.TrimSpace(it.Title)
		link := strings.TrimSpace(it.URL)
		if title == "" || link == "" {
			continue
		}
		if strings.HasPrefix(link, "/") {
			link = pdpcBaseURL + link
		}

		day, err := time.ParseInLocation(pdpcDateLayout, strings.TrimSpace(it.Date), s.loc)
		if err != nil {
			continue
		}
		published := day.Add(24*time.Hour - time.Second)
		if now := s.now(); published.After(now) {
			published = now
		}

		items = append(items, domain.Item{
			Title:     title,
			Link:      link,
			Summary:   it.Description,
			Published: published.UTC(),
			Source:    s.name,
		})
	}
	return items
}
