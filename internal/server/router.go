package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cloo-solutions/litbot/internal/api"
	"github.com/cloo-solutions/litbot/internal/api/handlers"
	"github.com/cloo-solutions/litbot/internal/api/middleware"
)

type RouterConfig struct {
	Auth           middleware.TokenValidator
	HistoryHandler *handlers.HistoryHandler
	KeywordHandler *handlers.KeywordHandler
	AskHandler     *handlers.AskHandler
	SweepHandler   *handlers.SweepHandler
	StatsHandler   *handlers.StatsHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 << 20

	r.Use(middleware.RequestID)
	r.Use(middleware.Sentry)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(cfg.Auth))

		r.Get("/stats", cfg.StatsHandler.Get)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", cfg.HistoryHandler.List)
			r.Get("/search", cfg.HistoryHandler.Search)
		})

		r.Route("/keywords", func(r chi.Router) {
			r.Get("/", cfg.KeywordHandler.List)
			r.Post("/", cfg.KeywordHandler.Add)
			r.Delete("/{keyword}", cfg.KeywordHandler.Remove)
		})

		r.Post("/ask", cfg.AskHandler.Ask)
		r.Get("/sweep", cfg.SweepHandler.Last)
		r.Post("/sweep", cfg.SweepHandler.Run)
		r.Post("/share", cfg.SweepHandler.Share)
	})

	return r
}
