package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/cloo-solutions/litbot/internal/api"
	"github.com/go-chi/chi/v5"
)

type KeywordService interface {
	List(ctx context.Context) ([]string, error)
	Add(ctx context.Context, keyword string) (string, error)
	Remove(ctx context.Context, keyword string) error
}

type KeywordHandler struct {
	svc KeywordService
}

func NewKeywordHandler(svc KeywordService) *KeywordHandler {
	return &KeywordHandler{svc: svc}
}

type KeywordRequest struct {
	Keyword string `json:"keyword"`
}

func (h *KeywordHandler) List(w http.ResponseWriter, r *http.Request) {
	keywords, err := h.svc.List(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if keywords == nil {
		keywords = []string{}
	}
	api.Success(w, http.StatusOK, keywords)
}

func (h *KeywordHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req KeywordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Keyword) == "" {
		api.Error(w, http.StatusBadRequest, "keyword is required")
		return
	}

	added, err := h.svc.Add(r.Context(), req.Keyword)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, KeywordRequest{Keyword: added})
}

func (h *KeywordHandler) Remove(w http.ResponseWriter, r *http.Request) {
	keyword := chi.URLParam(r, "keyword")
	if unescaped, err := url.PathUnescape(keyword); err == nil {
		keyword = unescaped
	}
	if strings.TrimSpace(keyword) == "" {
		api.Error(w, http.StatusBadRequest, "keyword is required")
		return
	}

	if err := h.svc.Remove(r.Context(), keyword); err != nil {
		api.HandleError(w, err)
		return
	}

	api.NoContent(w)
}
