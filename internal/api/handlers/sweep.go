package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cloo-solutions/litbot/internal/api"
	"github.com/cloo-solutions/litbot/internal/domain"
	"github.com/cloo-solutions/litbot/internal/ingest"
)

type Pipeline interface {
	RunManual(ctx context.Context) (*domain.SweepResult, error)
	LastResult() *domain.SweepResult
	Share(ctx context.Context, item *domain.Item, via ingest.ShareVia) (domain.Processed, error)
}

type ArticleScraper interface {
	Scrape(ctx context.Context, rawURL string) (*domain.Item, error)
}

// SweepHandler exposes manual sweeps and link sharing.
type SweepHandler struct {
	pipeline Pipeline
	scraper  ArticleScraper
}

func NewSweepHandler(pipeline Pipeline, scraper ArticleScraper) *SweepHandler {
	return &SweepHandler{pipeline: pipeline, scraper: scraper}
}

// Run blocks until the sweep finishes. Concurrent callers share one sweep.
func (h *SweepHandler) Run(w http.ResponseWriter, r *http.Request) {
	res, err := h.pipeline.RunManual(r.Context())
	if err != nil {
		if res == nil {
			api.HandleError(w, err)
			return
		}
		api.Partial(w, res, err)
		return
	}

	api.Success(w, http.StatusOK, res)
}

func (h *SweepHandler) Last(w http.ResponseWriter, r *http.Request) {
	res := h.pipeline.LastResult()
	if res == nil {
		api.Error(w, http.StatusNotFound, "no sweep has run yet")
		return
	}
	api.Success(w, http.StatusOK, res)
}

type ShareRequest struct {
	URL string `json:"url"`
}

type ShareResponse struct {
	Link         string   `json:"link"`
	Title        string   `json:"title"`
	Category     string   `json:"category"`
	Hashtags     []string `json:"hashtags"`
	UsedFallback bool     `json:"used_fallback"`
}

// Share scrapes a link and publishes it to the channel as a manual share.
func (h *SweepHandler) Share(w http.ResponseWriter, r *http.Request) {
	var req ShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		api.Error(w, http.StatusBadRequest, "url is required")
		return
	}

	item, err := h.scraper.Scrape(r.Context(), strings.TrimSpace(req.URL))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	processed, err := h.pipeline.Share(r.Context(), item, ingest.ShareViaCommand)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, ShareResponse{
		Link:         item.Link,
		Title:        item.Title,
		Category:     processed.Category,
		Hashtags:     processed.Hashtags,
		UsedFallback: processed.UsedFallback,
	})
}
