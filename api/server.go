/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request for tracing
  2. RequestLogger: Structured request logging (zerolog)
  3. Recoverer:     Panic recovery (500 instead of crash)
  4. CORS:          Cross-origin requests for frontend

ROUTE GROUPS:
  /api/users/*    Day and weekly operations scoped to a user
  /api/days/*     Transition and entry operations by day id
  /api/entries/*  Entry deletion
  /api/teams/*    Team reporting
  /api/health     Liveness

SECURITY NOTE:
  No authentication middleware. The engine records actors but does not
  verify them; gate these routes behind the deployment's auth layer.

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
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Day operations scoped to (user, date)
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Route("/days/{date}", func(r chi.Router) {
				r.Get("/", h.GetDay)
				r.Put("/", h.UpsertDay)
				r.Post("/entries", h.AddEntry)
			})
			r.Get("/week", h.WeeklyTotal)
		})

		// Operations by day id
		r.Route("/days/{dayID}", func(r chi.Router) {
			r.Get("/entries", h.ListEntries)
			r.Post("/submit", h.SubmitDay)
			r.Post("/approve", h.ApproveDay)
			r.Post("/reject", h.RejectDay)
			r.Post("/release", h.ReleaseDay)
		})

		r.Delete("/entries/{entryID}", h.DeleteEntry)

		r.Post("/teams/week", h.TeamWeeklySummary)
	})

	return r
}
