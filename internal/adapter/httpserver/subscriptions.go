package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type createSubscriptionRequest struct {
	TeamName string `json:"teamName"`
}

type createSubscriptionResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// handleCreateSubscription creates a payment-method setup intent for the
// pricing flow and returns the client secret the browser confirms.
func (s *Server) handleCreateSubscription() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSubscriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
			return
		}

		clientSecret, err := s.payments.CreateSetupIntent(r.Context(), req.TeamName)
		if err != nil {
			s.logger.Error("failed to create subscription setup intent",
				slog.String("error", err.Error()),
			)
			http.Error(w, `{"error":"error creating subscription"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(createSubscriptionResponse{ClientSecret: clientSecret})
	}
}
