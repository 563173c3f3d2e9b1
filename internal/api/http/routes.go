package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates the HTTP router with configured routes, middleware, and
// handlers: download tracking routes, health check and Prometheus metrics.
func NewRouter(tracker TrackerI, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	downloadHandler := NewDownloadHandler(tracker, logger)

	r.Route("/downloads", func(r chi.Router) {
		r.Post("/", downloadHandler.CreateDownloads)
		r.Get("/", downloadHandler.ListDownloads)
		r.Get("/{taskID}", downloadHandler.GetDownload)
		r.Delete("/{taskID}", downloadHandler.CancelDownload)
	})

	r.Get("/health", downloadHandler.Health)

	r.Handle("/metrics", promhttp.Handler())

	return r
}
