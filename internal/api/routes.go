package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	RPS   float64
	Burst int
}

// NewRouter mounts the lifecycle endpoints under /{APIPath}. Mutating routes
// share one rate limiter.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.Logger))
	r.Use(Recoverer(h.Logger))

	limit := RateLimit(h.Logger, cfg.RPS, cfg.Burst)

	r.Get("/healthz", h.Health)

	r.Route("/"+h.APIPath, func(r chi.Router) {
		r.Route("/reservations", func(r chi.Router) {
			r.With(limit).Post("/", h.CreateReservation)
			r.Get("/", h.ListReservations)
		})
		r.Route("/payments/{id}", func(r chi.Router) {
			r.Get("/", h.GetPayment)
			r.With(limit).Put("/", h.ConfirmPayment)
			r.With(limit).Delete("/", h.CancelPayment)
			r.Get("/qr", h.PaymentQR)
		})
		if h.Events != nil {
			r.Get("/events", h.StreamEvents)
		}
	})
	return r
}
