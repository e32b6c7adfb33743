package server

import (
	"net/http"

	"github.com/clauselens/clauselens/internal/api"
	"github.com/clauselens/clauselens/internal/api/handlers"
	"github.com/clauselens/clauselens/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	APIToken        string
	AnalysisHandler *handlers.AnalysisHandler
	FollowupHandler *handlers.FollowupHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(cfg.APIToken))

		r.Route("/v1/analyses", func(r chi.Router) {
			r.Post("/", cfg.AnalysisHandler.Create)
			r.Get("/", cfg.AnalysisHandler.List)
			r.Post("/batch", cfg.AnalysisHandler.Batch)
			r.Get("/similar", cfg.AnalysisHandler.Similar)
			r.Get("/{id}", cfg.AnalysisHandler.Get)
		})

		r.Post("/v1/followups", cfg.FollowupHandler.Answer)
	})

	return r
}
