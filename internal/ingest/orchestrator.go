// Package ingest runs feed sweeps: fetch, filter, classify, summarize,
// publish, then record and index what was published.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/cloo-solutions/litbot/internal/classifier"
	"github.com/cloo-solutions/litbot/internal/config"
	"github.com/cloo-solutions/litbot/internal/domain"
	"github.com/cloo-solutions/litbot/internal/feeds"
	"github.com/cloo-solutions/litbot/internal/service"
	"github.com/cloo-solutions/litbot/internal/telemetry"
)

type Fetcher interface {
	FetchSince(ctx context.Context, since time.Time) ([]domain.Item, []*feeds.SourceError)
}

type HistoryStore interface {
	IsNew(ctx context.Context, link string) (bool, error)
	Add(ctx context.Context, rec *domain.HistoryRecord) error
}

type KeywordLister interface {
	List(ctx context.Context) ([]string, error)
}

type Classifier interface {
	IsRelevant(item *domain.Item, keywords []string) bool
	Classify(item *domain.Item, keywords []string) classifier.Result
}

type Summarizer interface {
	Summarize(ctx context.Context, item *domain.Item) service.Summary
}

// Publisher posts rendered HTML to the channel and returns the message id.
type Publisher interface {
	Publish(ctx context.Context, text string) (int, error)
}

type Indexer interface {
	Index(ctx context.Context, text string, meta domain.ChunkMetadata) error
}

// IndexJobQueue records links whose indexing must be retried.
type IndexJobQueue interface {
	Enqueue(ctx context.Context, link string) error
}

// Deps are the collaborators of an Orchestrator. IndexJobs may be nil.
type Deps struct {
	Fetcher    Fetcher
	History    HistoryStore
	Keywords   KeywordLister
	Classifier Classifier
	Summarizer Summarizer
	Publisher  Publisher
	Indexer    Indexer
	IndexJobs  IndexJobQueue
}

type Options struct {
	Lookback        time.Duration
	StartupLookback time.Duration
	StartupLimit    int
	PublishDelay    time.Duration
}

func DefaultOptions() Options {
	return Options{
		Lookback:        time.Hour,
		StartupLookback: 7 * 24 * time.Hour,
		StartupLimit:    4,
		PublishDelay:    2 * time.Second,
	}
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Lookback:        cfg.SweepLookback(),
		StartupLookback: cfg.StartupLookback,
		StartupLimit:    cfg.StartupLimit,
		PublishDelay:    cfg.PublishDelay,
	}
}

// Orchestrator owns the sweep state machine. Sweeps never overlap.
type Orchestrator struct {
	deps Deps
	opts Options

	sweepMu sync.Mutex
	manual  singleflight.Group

	lastMu sync.RWMutex
	last   *domain.SweepResult

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func New(deps Deps, opts Options) *Orchestrator {
	return &Orchestrator{
		deps:  deps,
		opts:  opts,
		now:   time.Now,
		sleep: sleepCtx,
	}
}

func (o *Orchestrator) RunPeriodic(ctx context.Context) (*domain.SweepResult, error) {
	return o.sweep(ctx, domain.SweepTriggerPeriodic, o.now().Add(-o.opts.Lookback), 0)
}

// RunStartup catches up on the last StartupLookback, publishing at most
// StartupLimit items.
func (o *Orchestrator) RunStartup(ctx context.Context) (*domain.SweepResult, error) {
	return o.sweep(ctx, domain.SweepTriggerStartup, o.now().Add(-o.opts.StartupLookback), o.opts.StartupLimit)
}

// RunManual behaves like a periodic sweep. Concurrent callers share one run.
func (o *Orchestrator) RunManual(ctx context.Context) (*domain.SweepResult, error) {
	v, err, _ := o.manual.Do("manual", func() (any, error) {
		return o.sweep(ctx, domain.SweepTriggerManual, o.now().Add(-o.opts.Lookback), 0)
	})
	res, _ := v.(*domain.SweepResult)
	return res, err
}

// LastResult returns the most recent finished sweep, or nil.
func (o *Orchestrator) LastResult() *domain.SweepResult {
	o.lastMu.RLock()
	defer o.lastMu.RUnlock()
	if o.last == nil {
		return nil
	}
	res := *o.last
	return &res
}

func (o *Orchestrator) sweep(ctx context.Context, trigger domain.SweepTrigger, since time.Time, limit int) (*domain.SweepResult, error) {
	o.sweepMu.Lock()
	defer o.sweepMu.Unlock()

	ctx, span := telemetry.StartSpan(ctx, "ingest.sweep", telemetry.SpanAttributes{
		Trigger:   string(trigger),
		Operation: "sweep",
	})
	defer span.End()

	res := &domain.SweepResult{Trigger: trigger, Since: since, StartedAt: o.now()}
	defer o.record(res)

	items, failed := o.deps.Fetcher.FetchSince(ctx, since)
	for _, f := range failed {
		log.Printf("ingest: source %s failed: %v", f.Source, f.Err)
	}
	res.Fetched = len(items)

	keywords, err := o.deps.Keywords.List(ctx)
	if err != nil {
		res.FinishedAt = o.now()
		span.SetError(err)
		return res, fmt.Errorf("failed to list keywords: %w", err)
	}

	for i := range items {
		if limit > 0 && res.Published >= limit {
			break
		}
		if ctx.Err() != nil {
			break
		}
		item := &items[i]

		isNew, err := o.deps.History.IsNew(ctx, item.Link)
		if err != nil {
			log.Printf("ingest: failed to check history for %s: %v", item.Link, err)
			res.Failed++
			continue
		}
		if !isNew {
			res.Duplicates++
			continue
		}
		if !o.deps.Classifier.IsRelevant(item, keywords) {
			res.Irrelevant++
			continue
		}

		processed := o.process(ctx, item, keywords)

		if res.Published > 0 {
			if err := o.sleep(ctx, o.opts.PublishDelay); err != nil {
				break
			}
		}
		if err := o.deliver(ctx, item, processed, ShareViaFeed); err != nil {
			log.Printf("ingest: %v", err)
			telemetry.CaptureError(ctx, err)
			res.Failed++
			continue
		}
		res.Published++
	}

	res.FinishedAt = o.now()
	span.SetCount("sweep.fetched", res.Fetched)
	span.SetCount("sweep.published", res.Published)
	span.SetCount("sweep.failed", res.Failed)
	log.Printf("ingest: %s sweep since %s: fetched=%d duplicates=%d irrelevant=%d published=%d failed=%d (%s)",
		trigger, since.Format(time.RFC3339), res.Fetched, res.Duplicates, res.Irrelevant,
		res.Published, res.Failed, res.Duration().Round(time.Millisecond))
	return res, ctx.Err()
}

func (o *Orchestrator) record(res *domain.SweepResult) {
	o.lastMu.Lock()
	defer o.lastMu.Unlock()
	o.last = res
}

// Prepare classifies and summarizes item against the current keywords
// without publishing anything.
func (o *Orchestrator) Prepare(ctx context.Context, item *domain.Item) domain.Processed {
	keywords, err := o.deps.Keywords.List(ctx)
	if err != nil {
		log.Printf("ingest: failed to list keywords, classifying without them: %v", err)
	}
	return o.process(ctx, item, keywords)
}

func (o *Orchestrator) process(ctx context.Context, item *domain.Item, keywords []string) domain.Processed {
	result := o.deps.Classifier.Classify(item, keywords)
	summary := o.deps.Summarizer.Summarize(ctx, item)
	return domain.Processed{
		Category:     result.Category,
		Summary:      summary.Text,
		Hashtags:     result.Hashtags,
		UsedFallback: summary.UsedFallback,
	}
}

// Share publishes item outside a sweep, skipping relevance checks and limits.
func (o *Orchestrator) Share(ctx context.Context, item *domain.Item, via ShareVia) (domain.Processed, error) {
	processed := o.Prepare(ctx, item)
	return processed, o.deliver(ctx, item, processed, via)
}

// PublishDraft publishes a previewed draft as-is.
func (o *Orchestrator) PublishDraft(ctx context.Context, draft *domain.ShareDraft) error {
	return o.deliver(ctx, &draft.Item, draft.Processed, ShareViaSummarise)
}

// deliver publishes, then records and indexes. Only a publish failure is
// returned; the link stays unrecorded so the next sweep retries it.
func (o *Orchestrator) deliver(ctx context.Context, item *domain.Item, processed domain.Processed, via ShareVia) error {
	if _, err := o.deps.Publisher.Publish(ctx, FormatMessage(item, processed, via)); err != nil {
		return domain.Wrap(domain.ErrPublishFailed, fmt.Errorf("%s: %w", item.Link, err))
	}

	rec := &domain.HistoryRecord{
		Link:     item.Link,
		Title:    item.Title,
		Summary:  processed.Summary,
		Category: processed.Category,
		Tags:     domain.JoinTags(processed.Hashtags),
	}
	if err := o.deps.History.Add(ctx, rec); err != nil {
		log.Printf("ingest: failed to record %s: %v", item.Link, err)
		telemetry.CaptureError(ctx, err)
	}

	o.index(ctx, item)
	return nil
}

func (o *Orchestrator) index(ctx context.Context, item *domain.Item) {
	if o.deps.Indexer == nil {
		return
	}
	ctx, span := telemetry.StartSpan(ctx, "ingest.index", telemetry.SpanAttributes{
		Link:      item.Link,
		Source:    item.Source,
		Operation: "index",
	})
	defer span.End()

	err := o.deps.Indexer.Index(ctx, service.ArticleText(item.Title, item.Summary), domain.ChunkMetadata{
		Source:    item.Source,
		Title:     item.Title,
		Link:      item.Link,
		Published: item.Published.Format(time.RFC3339),
	})
	if err == nil {
		return
	}

	log.Printf("ingest: failed to index %s: %v", item.Link, err)
	span.SetError(err)
	if o.deps.IndexJobs == nil {
		return
	}
	if err := o.deps.IndexJobs.Enqueue(ctx, item.Link); err != nil {
		log.Printf("ingest: failed to enqueue index retry for %s: %v", item.Link, err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsPublishFailure reports whether err came from the channel transport.
func IsPublishFailure(err error) bool {
	return errors.Is(err, domain.ErrPublishFailed)
}
