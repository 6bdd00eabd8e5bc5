package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"orderboard/internal/common/logger"
)

// Router mounts the API under /api. maxConcurrent caps in-flight requests
// when positive.
func Router(h *Handler, lg *logger.Logger, maxConcurrent int) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(lg.Slog().Handler(), slog.LevelDebug),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	if maxConcurrent > 0 {
		r.Use(middleware.Throttle(maxConcurrent))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.SystemHandler.Health)
		r.Post("/db/init", h.SystemHandler.InitDB)

		r.Route("/dishes", func(r chi.Router) {
			r.Get("/", h.DishHandler.List)
			r.Post("/", h.DishHandler.Create)
			r.Delete("/", h.DishHandler.Clear)
			r.Put("/{id}", h.DishHandler.Update)
			r.Delete("/{id}", h.DishHandler.Delete)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.OrderHandler.List)
			r.Post("/", h.OrderHandler.AddOrder)
			r.Delete("/", h.OrderHandler.Clear)
			r.Put("/{id}", h.OrderHandler.SetStatus)
			r.Delete("/{id}", h.OrderHandler.Delete)
		})
	})
	return r
}
