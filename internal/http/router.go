// Package httpapi wires the JSON API routes.
package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"luxelens/internal/http/handlers"
	"luxelens/internal/infra"
	"luxelens/internal/middleware"
)

func NewRouter(app *handlers.App, logger infra.Logger, cfg *infra.Config) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.Logger(logger))
	if cfg.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/batch", func(r chi.Router) {
		r.Post("/", app.BatchSubmit)
		r.Get("/", app.BatchCurrent)
		r.Post("/reset", app.BatchReset)
		r.Get("/archive", app.BatchArchive)
	})

	r.Route("/v1/options", func(r chi.Router) {
		r.Get("/", app.OptionsGet)
		r.Put("/", app.OptionsSet)
	})

	r.Get("/v1/credits", app.Credits)

	r.Post("/v1/videos", app.VideoGenerate)

	r.Get("/v1/results/{run_id}/{item_id}", app.ResultDownload)

	return r
}
