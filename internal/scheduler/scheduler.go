// Package scheduler runs the periodic sweep and the backup on cron.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler owns named cron entries in one timezone. A job that is still
// running when its next tick arrives is skipped.
type Scheduler struct {
	cron     *cron.Cron
	location *time.Location

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

func New(timezone string) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", timezone, err)
	}

	logger := cron.PrintfLogger(log.Default())
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	return &Scheduler{
		cron:     c,
		location: loc,
		entries:  make(map[string]cron.EntryID),
	}, nil
}

// Every runs task at a fixed interval, replacing any entry with the same name.
func (s *Scheduler) Every(name string, interval time.Duration, task func()) error {
	if interval <= 0 {
		return fmt.Errorf("invalid interval %v for %s", interval, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(name)
	s.entries[name] = s.cron.Schedule(cron.Every(interval), cron.FuncJob(task))
	log.Printf("scheduler: %s every %v", name, interval)
	return nil
}

// Cron runs task on a standard five-field spec, replacing any entry with the
// same name.
func (s *Scheduler) Cron(name, spec string, task func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(spec, task)
	if err != nil {
		return fmt.Errorf("failed to schedule %s with %q: %w", name, spec, err)
	}
	s.removeLocked(name)
	s.entries[name] = id
	log.Printf("scheduler: %s at %q (%s)", name, spec, s.location)
	return nil
}

func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(name)
}

func (s *Scheduler) removeLocked(name string) {
	if id, ok := s.entries[name]; ok {
		s.cron.Remove(id)
		delete(s.entries, name)
	}
}

// Next reports when the named entry fires next. Before Start it is zero.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		log.Printf("scheduler: stop timed out waiting for running jobs")
	}
}
