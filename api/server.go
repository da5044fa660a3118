/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the web and mobile hosts

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", h.Healthz)

		r.Route("/children", func(r chi.Router) {
			r.Get("/", h.ListChildren)
			r.Post("/", h.CreateChild)
			r.Get("/{id}", h.GetChild)
			r.Put("/{id}", h.UpdateChild)
			r.Delete("/{id}", h.DeleteChild)

			r.Get("/{id}/payments", h.ListPayments)
			r.Post("/{id}/payments", h.ConfirmPayment)
			r.Delete("/{id}/payments/{pid}", h.DeletePayment)

			r.Post("/{id}/calculate", h.Calculate)
			r.Get("/{id}/export", h.ExportPayments)
		})
	})

	return r
}
