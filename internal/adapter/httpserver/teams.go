package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelarc/growthsync/internal/core/service"
)

type createTeamRequest struct {
	TeamName string `json:"teamName"`
	TeamSlug string `json:"teamSlug"`
}

type createTeamResponse struct {
	OrganizationID string `json:"organizationId"`
}

// handleCreateTeam creates a team workspace for the authenticated user.
func (s *Server) handleCreateTeam() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}

		var req createTeamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
			return
		}
		if req.TeamName == "" || req.TeamSlug == "" {
			http.Error(w, `{"error":"teamName and teamSlug are required"}`, http.StatusBadRequest)
			return
		}

		org, err := s.teams.CreateTeam(r.Context(), req.TeamName, req.TeamSlug, userID)
		if err != nil {
			if errors.Is(err, service.ErrTeamExists) {
				http.Error(w, `{"error":"a team with this name or slug already exists"}`, http.StatusConflict)
				return
			}
			s.logger.Error("failed to create team",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(createTeamResponse{OrganizationID: org.ID})
	}
}
