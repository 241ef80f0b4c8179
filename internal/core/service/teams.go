package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelarc/growthsync/internal/core/port"
)

// ErrTeamExists is returned when a team with the requested name or slug
// already exists in the identity provider.
var ErrTeamExists = errors.New("team already exists")

// TeamService creates team workspaces as organizations in the identity
// provider, rejecting names and slugs that collide with existing ones.
type TeamService struct {
	orgs   port.OrganizationManager
	logger *slog.Logger
}

// NewTeamService creates a TeamService backed by the given organization
// manager.
func NewTeamService(orgs port.OrganizationManager, logger *slog.Logger) *TeamService {
	return &TeamService{orgs: orgs, logger: logger}
}

// CreateTeam creates an organization owned by createdBy. Name and slug
// uniqueness is checked case-insensitively; the provider's search is
// fuzzy, so results are re-filtered for exact matches.
func (s *TeamService) CreateTeam(ctx context.Context, name, slug, createdBy string) (*port.Organization, error) {
	byName, err := s.orgs.Search(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("search organizations by name: %w", err)
	}
	for _, org := range byName {
		if strings.EqualFold(org.Name, name) {
			return nil, fmt.Errorf("%w: name %q", ErrTeamExists, name)
		}
	}

	bySlug, err := s.orgs.Search(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("search organizations by slug: %w", err)
	}
	for _, org := range bySlug {
		if strings.EqualFold(org.Slug, slug) {
			return nil, fmt.Errorf("%w: slug %q", ErrTeamExists, slug)
		}
	}

	org, err := s.orgs.Create(ctx, name, slug, createdBy)
	if err != nil {
		return nil, fmt.Errorf("create organization: %w", err)
	}

	s.logger.Info("team created",
		slog.String("org_id", org.ID),
		slog.String("name", name),
		slog.String("created_by", createdBy),
	)
	return org, nil
}
