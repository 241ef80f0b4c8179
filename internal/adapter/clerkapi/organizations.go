package clerkapi

import (
	"context"
	"fmt"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/organization"

	"github.com/modelarc/growthsync/internal/core/port"
)

// Organizations implements port.OrganizationManager.
type Organizations struct{}

// NewOrganizations creates a Clerk-backed organization manager.
func NewOrganizations() *Organizations {
	return &Organizations{}
}

// Search implements port.OrganizationManager. Clerk's query matches
// against both names and slugs, so callers filter for exact hits.
func (o *Organizations) Search(ctx context.Context, query string) ([]port.Organization, error) {
	list, err := organization.List(ctx, &organization.ListParams{
		Query: &query,
	})
	if err != nil {
		return nil, fmt.Errorf("clerk list organizations: %w", err)
	}

	out := make([]port.Organization, 0, len(list.Organizations))
	for _, org := range list.Organizations {
		out = append(out, port.Organization{
			ID:   org.ID,
			Name: org.Name,
			Slug: org.Slug,
		})
	}
	return out, nil
}

// Create implements port.OrganizationManager.
func (o *Organizations) Create(ctx context.Context, name, slug, createdBy string) (*port.Organization, error) {
	org, err := organization.Create(ctx, &organization.CreateParams{
		Name:      clerk.String(name),
		Slug:      clerk.String(slug),
		CreatedBy: clerk.String(createdBy),
	})
	if err != nil {
		return nil, fmt.Errorf("clerk create organization: %w", err)
	}
	return &port.Organization{
		ID:   org.ID,
		Name: org.Name,
		Slug: org.Slug,
	}, nil
}
