package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/litbot/internal/api"
	"github.com/cloo-solutions/litbot/internal/domain"
)

type Counter interface {
	Count(ctx context.Context) (int, error)
}

type IndexJobCounter interface {
	CountByStatus(ctx context.Context) (map[domain.IndexJobStatus]int, error)
}

type SweepStatus interface {
	LastResult() *domain.SweepResult
}

type StatsHandler struct {
	history  Counter
	keywords Counter
	chunks   Counter
	jobs     IndexJobCounter
	sweeps   SweepStatus
	sources  int
}

type StatsConfig struct {
	History   Counter
	Keywords  Counter
	Chunks    Counter
	IndexJobs IndexJobCounter
	Sweeps    SweepStatus
	Sources   int
}

func NewStatsHandler(cfg StatsConfig) *StatsHandler {
	return &StatsHandler{
		history:  cfg.History,
		keywords: cfg.Keywords,
		chunks:   cfg.Chunks,
		jobs:     cfg.IndexJobs,
		sweeps:   cfg.Sweeps,
		sources:  cfg.Sources,
	}
}

type StatsResponse struct {
	Articles  int                 `json:"articles"`
	Keywords  int                 `json:"keywords"`
	Chunks    int                 `json:"chunks"`
	Sources   int                 `json:"sources"`
	IndexJobs map[string]int      `json:"index_jobs"`
	LastSweep *domain.SweepResult `json:"last_sweep,omitempty"`
}

func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := StatsResponse{Sources: h.sources, IndexJobs: map[string]int{}}

	var err error
	if resp.Articles, err = h.history.Count(ctx); err != nil {
		api.HandleError(w, err)
		return
	}
	if resp.Keywords, err = h.keywords.Count(ctx); err != nil {
		api.HandleError(w, err)
		return
	}
	if h.chunks != nil {
		if resp.Chunks, err = h.chunks.Count(ctx); err != nil {
			api.HandleError(w, err)
			return
		}
	}
	if h.jobs != nil {
		counts, err := h.jobs.CountByStatus(ctx)
		if err != nil {
			api.HandleError(w, err)
			return
		}
		for status, n := range counts {
			resp.IndexJobs[string(status)] = n
		}
	}
	if h.sweeps != nil {
		resp.LastSweep = h.sweeps.LastResult()
	}

	api.Success(w, http.StatusOK, resp)
}
