package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)

	if s.corsOrigin != "" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{s.corsOrigin},
			AllowedMethods:   []string{http.MethodGet, http.MethodPost},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		}))
	}

	// Health probe
	r.Get("/health", s.handleHealth())

	// Clerk webhook delivery. GET is the sender's reachability check.
	r.Get("/api/webhooks/clerk", s.webhooks.HandleLiveness())
	r.Post("/api/webhooks/clerk", s.webhooks.HandleDelivery())

	// Site API — browser-facing, rate limited per IP.
	r.Group(func(api chi.Router) {
		api.Use(s.rateLimit.Middleware)

		if s.payments != nil {
			api.Post("/api/subscriptions", s.handleCreateSubscription())
		}
		api.With(s.clerkJWTAuth).Post("/api/teams", s.handleCreateTeam())
	})

	s.router = r
}
