package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cloo-solutions/litbot/internal/api"
	"github.com/cloo-solutions/litbot/internal/domain"
	"github.com/cloo-solutions/litbot/internal/pagination"
)

const defaultHistoryPageSize = 20

type HistoryReader interface {
	List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]*domain.HistoryRecord, error)
	Search(ctx context.Context, query string) ([]*domain.HistoryRecord, error)
}

type HistoryHandler struct {
	history HistoryReader
}

func NewHistoryHandler(history HistoryReader) *HistoryHandler {
	return &HistoryHandler{history: history}
}

type HistoryResponse struct {
	Link      string   `json:"link"`
	Title     string   `json:"title"`
	Summary   string   `json:"summary,omitempty"`
	Category  string   `json:"category,omitempty"`
	Hashtags  []string `json:"hashtags,omitempty"`
	CreatedAt string   `json:"created_at"`
}

func historyToResponse(rec *domain.HistoryRecord) HistoryResponse {
	return HistoryResponse{
		Link:      rec.Link,
		Title:     rec.Title,
		Summary:   rec.Summary,
		Category:  rec.Category,
		Hashtags:  rec.HashtagList(),
		CreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func historyPage(records []*domain.HistoryRecord) []HistoryResponse {
	out := make([]HistoryResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, historyToResponse(rec))
	}
	return out
}

// List pages through published articles, newest first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			api.Error(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	cursor, err := pagination.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid cursor")
		return
	}

	records, err := h.history.List(r.Context(), cursor, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	next := pagination.CreateNextCursor(records, limit,
		func(rec *domain.HistoryRecord) string { return rec.Link },
		func(rec *domain.HistoryRecord) time.Time { return rec.CreatedAt },
	)
	api.Success(w, http.StatusOK, pagination.PageResult[HistoryResponse]{
		Items:   historyPage(records),
		Cursor:  next,
		HasMore: next != "",
	})
}

func (h *HistoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		api.Error(w, http.StatusBadRequest, "q is required")
		return
	}

	records, err := h.history.Search(r.Context(), query)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, historyPage(records))
}
