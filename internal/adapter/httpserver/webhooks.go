package httpserver

import (
	"io"
	"log/slog"
	"net/http"

	svix "github.com/svix/svix-webhooks/go"

	"github.com/modelarc/growthsync/internal/core/domain"
	"github.com/modelarc/growthsync/internal/core/port"
	"github.com/modelarc/growthsync/internal/core/service"
)

// maxWebhookBody caps how much of a delivery is read. Clerk payloads are
// small; anything past 1 MB is noise.
const maxWebhookBody = 1 << 20

// WebhookHandler receives Clerk webhook deliveries, verifies the Svix
// signature, and hands verified events to the normalizer.
type WebhookHandler struct {
	wh         *svix.Webhook
	normalizer *service.Normalizer
	guard      port.ReplayGuard // nil disables replay deduplication
	logger     *slog.Logger
}

// NewWebhookHandler creates a webhook handler with Svix signature
// verification. Returns nil when the secret is malformed.
func NewWebhookHandler(webhookSecret string, normalizer *service.Normalizer,
	guard port.ReplayGuard, logger *slog.Logger) *WebhookHandler {
	wh, err := svix.NewWebhook(webhookSecret)
	if err != nil {
		logger.Error("invalid webhook secret", slog.String("error", err.Error()))
		return nil
	}
	return &WebhookHandler{
		wh:         wh,
		normalizer: normalizer,
		guard:      guard,
		logger:     logger,
	}
}

// HandleLiveness answers the sender's GET reachability check.
func (h *WebhookHandler) HandleLiveness() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// HandleDelivery processes one POST delivery. Responses follow the
// sender's retry contract: 400 rejects the delivery permanently (bad
// headers or signature), 500 asks for a retry (enrichment or dispatch
// failure), 200 acknowledges — including event kinds we ignore.
func (h *WebhookHandler) HandleDelivery() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		msgID := r.Header.Get("svix-id")
		timestamp := r.Header.Get("svix-timestamp")
		signature := r.Header.Get("svix-signature")
		if msgID == "" || timestamp == "" || signature == "" {
			http.Error(w, "missing svix headers", http.StatusBadRequest)
			return
		}

		headers := http.Header{
			"svix-id":        r.Header.Values("svix-id"),
			"svix-timestamp": r.Header.Values("svix-timestamp"),
			"svix-signature": r.Header.Values("svix-signature"),
		}
		if err := h.wh.Verify(body, headers); err != nil {
			h.logger.Warn("webhook signature verification failed",
				slog.String("svix_id", msgID),
				slog.String("error", err.Error()),
			)
			http.Error(w, "invalid signature", http.StatusBadRequest)
			return
		}

		event, err := domain.ParseEvent(body)
		if err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		h.logger.Info("webhook received",
			slog.String("svix_id", msgID),
			slog.String("kind", string(event.Kind)),
		)

		if h.guard != nil && event.Kind != domain.KindUnknown {
			seen, err := h.guard.CheckAndMark(ctx, msgID)
			if err != nil {
				h.logger.Error("replay guard check failed",
					slog.String("svix_id", msgID),
					slog.String("error", err.Error()),
				)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if seen {
				h.logger.Info("duplicate delivery acknowledged", slog.String("svix_id", msgID))
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("ok"))
				return
			}
		}

		if err := h.normalizer.Process(ctx, event); err != nil {
			h.logger.Error("failed to process webhook event",
				slog.String("svix_id", msgID),
				slog.String("kind", string(event.Kind)),
				slog.String("error", err.Error()),
			)
			if h.guard != nil && event.Kind != domain.KindUnknown {
				// Let the sender's retry through.
				if relErr := h.guard.Release(ctx, msgID); relErr != nil {
					h.logger.Error("replay guard release failed",
						slog.String("svix_id", msgID),
						slog.String("error", relErr.Error()),
					)
				}
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
