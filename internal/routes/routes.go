package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/luciano-mota/payment-gateway/internal/handlers"
	appmw "github.com/luciano-mota/payment-gateway/internal/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

func NewRoutes(h *handlers.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.With(appmw.Authenticated).Get("/auth/me", h.Me)

	r.Route("/charges", func(r chi.Router) {
		r.Use(appmw.Authenticated)
		r.Post("/", h.CreateCharge)
		r.Get("/sent", h.ListSent)
		r.Get("/received", h.ListReceived)
		r.Post("/deposit", h.Deposit)
		r.Post("/{id}/pay/balance", h.PayByBalance)
		r.Post("/{id}/pay/card", h.PayByCard)
		r.Post("/{id}/cancel", h.CancelCharge)
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}
