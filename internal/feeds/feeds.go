// Package feeds fetches candidate items from RSS feeds and the PDPC press room.
package feeds

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/cloo-solutions/litbot/internal/config"
	"github.com/cloo-solutions/litbot/internal/domain"
	"golang.org/x/sync/errgroup"
)

const (
	// UserAgent is sent with every feed request; several sources reject Go's default.
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	DefaultTimeout     = 20 * time.Second
	DefaultConcurrency = 4
)

// Source fetches items from one origin.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.Item, error)
}

// SourceError is a per-source failure. It is logged and never aborts a sweep.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Aggregator fetches every source concurrently and merges the results.
type Aggregator struct {
	sources     []Source
	concurrency int
}

func NewAggregator(sources []Source) *Aggregator {
	return &Aggregator{sources: sources, concurrency: DefaultConcurrency}
}

// NewAggregatorFromConfig builds sources from configuration.
func NewAggregatorFromConfig(sources []config.FeedSource, client *http.Client) *Aggregator {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	built := make([]Source, 0, len(sources))
	for _, s := range sources {
		switch s.Type {
		case config.SourceTypePDPC:
			built = append(built, NewPDPCSource(s.Name, s.URL, client))
		default:
			built = append(built, NewRSSSource(s.Name, s.URL, client))
		}
	}
	return NewAggregator(built)
}

// Sources returns the configured sources.
func (a *Aggregator) Sources() []Source {
	return a.sources
}

// FetchSince returns items published strictly after since, newest first.
// Failing sources are skipped; their errors are returned for reporting.
func (a *Aggregator) FetchSince(ctx context.Context, since time.Time) ([]domain.Item, []*SourceError) {
	results := make([][]domain.Item, len(a.sources))
	errs := make([]*SourceError, len(a.sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, src := range a.sources {
		g.Go(func() error {
			items, err := src.Fetch(gctx)
			if err != nil {
				errs[i] = &SourceError{Source: src.Name(), Err: err}
				log.Printf("feeds: %v", errs[i])
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]struct{})
	var merged []domain.Item
	for _, items := range results {
		for _, it := range items {
			if it.Link == "" || it.Published.IsZero() || !it.Published.After(since) {
				continue
			}
			if _, dup := seen[it.Link]; dup {
				continue
			}
			seen[it.Link] = struct{}{}
			merged = append(merged, it)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Published.After(merged[j].Published)
	})

	var failed []*SourceError
	for _, e := range errs {
		if e != nil {
			failed = append(failed, e)
		}
	}
	return merged, failed
}
