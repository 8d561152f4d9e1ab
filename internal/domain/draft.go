package domain

import "time"

// Processed holds the derived presentation of an item before it is published.
type Processed struct {
	Category     string
	Summary      string
	Hashtags     []string
	UsedFallback bool
}

// ShareDraft is a preview awaiting confirmation. It lives only in process memory.
type ShareDraft struct {
	Token     string
	Item      Item
	Processed Processed
	CreatedAt time.Time
}

// SweepTrigger names what started an ingest sweep.
type SweepTrigger string

const (
	SweepTriggerPeriodic SweepTrigger = "periodic"
	SweepTriggerStartup  SweepTrigger = "startup"
	SweepTriggerManual   SweepTrigger = "manual"
)

// SweepResult summarizes one ingest sweep.
type SweepResult struct {
	Trigger    SweepTrigger `json:"trigger"`
	Since      time.Time    `json:"since"`
	Fetched    int          `json:"fetched"`
	Duplicates int          `json:"duplicates"`
	Irrelevant int          `json:"irrelevant"`
	Published  int          `json:"published"`
	Failed     int          `json:"failed"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// Duration reports how long the sweep ran.
func (r *SweepResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
