package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/modelarc/growthsync/internal/adapter/analytics"
	"github.com/modelarc/growthsync/internal/adapter/clerkapi"
	"github.com/modelarc/growthsync/internal/adapter/httpserver"
	phadapter "github.com/modelarc/growthsync/internal/adapter/posthog"
	"github.com/modelarc/growthsync/internal/adapter/redisguard"
	"github.com/modelarc/growthsync/internal/adapter/segment"
	"github.com/modelarc/growthsync/internal/adapter/stripeapi"
	"github.com/modelarc/growthsync/internal/config"
	"github.com/modelarc/growthsync/internal/core/port"
	"github.com/modelarc/growthsync/internal/core/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	logger.Info("starting growthsync-server",
		slog.String("log_level", cfg.LogLevel.String()),
		slog.String("listen_addr", cfg.ListenAddr),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	clerk.SetKey(cfg.ClerkSecretKey)

	// Analytics destinations: Segment is primary, PostHog optional.
	sinks := []port.AnalyticsSink{segment.New(cfg.SegmentEndpoint, cfg.SegmentWriteKey)}
	if cfg.PostHogAPIKey != "" {
		ph, err := phadapter.New(cfg.PostHogEndpoint, cfg.PostHogAPIKey)
		if err != nil {
			return fmt.Errorf("creating posthog client: %w", err)
		}
		defer func() { _ = ph.Close() }()
		sinks = append(sinks, ph)
		logger.Info("posthog sink enabled")
	}
	sink := analytics.NewFanout(sinks...)

	// Webhook replay guard (optional).
	var guard port.ReplayGuard
	if cfg.RedisAddr != "" {
		g, err := redisguard.New(ctx, cfg.RedisAddr, cfg.ReplayTTL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer func() { _ = g.Close() }()
		guard = g
		logger.Info("webhook replay guard enabled")
	}

	normalizer := service.NewNormalizer(sink, clerkapi.NewDirectory(), logger)
	teams := service.NewTeamService(clerkapi.NewOrganizations(), logger)

	var payments port.PaymentSetup
	if cfg.StripeSecretKey != "" {
		payments = stripeapi.New(cfg.StripeSecretKey)
		logger.Info("subscription endpoint enabled")
	}

	webhooks := httpserver.NewWebhookHandler(cfg.ClerkWebhookSecret, normalizer, guard, logger)
	if webhooks == nil {
		return fmt.Errorf("invalid CLERK_WEBHOOK_SECRET")
	}

	srv := httpserver.New(cfg, webhooks, teams, payments, logger)

	// Second signal during shutdown = hard exit.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		select {
		case sig := <-sigCh:
			logger.Warn("forced shutdown", slog.String("signal", sig.String()))
			os.Exit(1)
		case <-ctx.Done():
		}
	}()

	g, ctx := errgroup.WithContext(ctx)

	// Component: HTTP server.
	g.Go(func() error {
		return srv.ListenAndServe()
	})

	// Shutdown trigger: when ctx is cancelled (signal or component
	// failure), gracefully stop the HTTP server.
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("shutdown complete")
	return nil
}
