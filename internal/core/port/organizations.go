package port

import "context"

// Organization is the identity-provider view of an organization.
type Organization struct {
	ID   string
	Name string
	Slug string
}

// OrganizationManager searches and creates organizations in the identity
// provider.
type OrganizationManager interface {
	// Search returns organizations matching the query string.
	Search(ctx context.Context, query string) ([]Organization, error)

	// Create creates an organization owned by the given user.
	Create(ctx context.Context, name, slug, createdBy string) (*Organization, error)
}
