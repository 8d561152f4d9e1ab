// Package jobs runs the background retry loop for articles whose vector
// indexing failed at publish time.
package jobs

import (
	"context"
	"log"
	"sync"
	"time"
)

// JobProcessor handles one poll's worth of queued jobs.
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker polls a JobProcessor on a fixed interval until stopped.
type Worker struct {
	name      string
	processor JobProcessor
	interval  time.Duration
	onError   func(ctx context.Context, err error)

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
	done    chan struct{}
}

type WorkerOption func(*Worker)

// WithName labels the worker's log lines.
func WithName(name string) WorkerOption {
	return func(w *Worker) { w.name = name }
}

// WithErrorHandler receives every failed poll in addition to the log line.
func WithErrorHandler(fn func(ctx context.Context, err error)) WorkerOption {
	return func(w *Worker) { w.onError = fn }
}

func NewWorker(processor JobProcessor, interval time.Duration, opts ...WorkerOption) *Worker {
	w := &Worker{
		name:      "worker",
		processor: processor,
		interval:  interval,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start polls once immediately, then every interval, until ctx is cancelled
// or Stop is called. It blocks, so callers usually run it in a goroutine.
func (w *Worker) Start(ctx context.Context) {
	defer close(w.done)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.cancel = cancel
	w.mu.Unlock()

	log.Printf("jobs: %s started (every %v)", w.name, w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.poll(ctx)
		select {
		case <-ctx.Done():
			log.Printf("jobs: %s stopped", w.name)
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) poll(ctx context.Context) {
	err := w.processor.ProcessJobs(ctx)
	if err == nil || ctx.Err() != nil {
		return
	}
	log.Printf("jobs: %s: %v", w.name, err)
	if w.onError != nil {
		w.onError(ctx, err)
	}
}

// Stop cancels the loop and waits for the in-flight poll. It is safe to call
// more than once. A Start that begins after Stop returns at once.
func (w *Worker) Stop() {
	w.mu.Lock()
	w.stopped = true
	cancel := w.cancel
	w.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-w.done
}
