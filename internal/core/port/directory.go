package port

import "context"

// DirectoryUser is the identity-provider view of a user, reduced to the
// fields the normalizer enriches events with.
type DirectoryUser struct {
	ID           string
	FirstName    string
	LastName     string
	Username     string
	AvatarURL    string
	PrimaryEmail string
	PrimaryPhone string
}

// IdentityDirectory looks up user records in the identity provider.
type IdentityDirectory interface {
	// GetUser fetches a user by provider id. A missing user is an error;
	// the normalizer treats any failure here as terminal for the event.
	GetUser(ctx context.Context, id string) (*DirectoryUser, error)
}
