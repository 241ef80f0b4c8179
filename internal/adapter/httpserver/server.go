// Package httpserver is the HTTP edge of growthsync: chi routing,
// middleware, and the handlers bridging webhooks and site API calls to
// the core services.
package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/modelarc/growthsync/internal/config"
	"github.com/modelarc/growthsync/internal/core/port"
	"github.com/modelarc/growthsync/internal/core/service"
)

// Server wraps the HTTP server with chi routing, middleware, and
// graceful shutdown.
type Server struct {
	httpServer *http.Server
	router     chi.Router
	logger     *slog.Logger
	corsOrigin string

	webhooks  *WebhookHandler
	teams     *service.TeamService
	payments  port.PaymentSetup
	rateLimit *ipRateLimiter
}

// New creates a Server wired with the webhook handler and the site API
// services. payments may be nil, which disables the subscription
// endpoint.
func New(cfg *config.Config, webhooks *WebhookHandler, teams *service.TeamService,
	payments port.PaymentSetup, logger *slog.Logger) *Server {
	s := &Server{
		logger:     logger,
		corsOrigin: cfg.CORSOrigin,
		webhooks:   webhooks,
		teams:      teams,
		payments:   payments,
		rateLimit:  newIPRateLimiter(cfg.RateLimitPerMinute),
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	return s
}

// ListenAndServe starts the HTTP server and blocks until it stops.
// Returns nil if the server was shut down gracefully via Shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
