// Package clerkapi implements the identity-provider ports on the Clerk
// Backend API. The SDK key is installed globally by main via
// clerk.SetKey before any adapter is used.
package clerkapi

import (
	"context"
	"fmt"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/user"

	"github.com/modelarc/growthsync/internal/core/port"
)

// Directory implements port.IdentityDirectory.
type Directory struct{}

// NewDirectory creates a Clerk-backed identity directory.
func NewDirectory() *Directory {
	return &Directory{}
}

// GetUser implements port.IdentityDirectory.
func (d *Directory) GetUser(ctx context.Context, id string) (*port.DirectoryUser, error) {
	u, err := user.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("clerk get user %s: %w", id, err)
	}

	out := &port.DirectoryUser{
		ID:        u.ID,
		FirstName: deref(u.FirstName),
		LastName:  deref(u.LastName),
		Username:  deref(u.Username),
		AvatarURL: deref(u.ImageURL),
	}
	out.PrimaryEmail = primaryEmail(u)
	out.PrimaryPhone = primaryPhone(u)
	return out, nil
}

func primaryEmail(u *clerk.User) string {
	for _, e := range u.EmailAddresses {
		if u.PrimaryEmailAddressID != nil && e.ID == *u.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}

func primaryPhone(u *clerk.User) string {
	for _, p := range u.PhoneNumbers {
		if u.PrimaryPhoneNumberID != nil && p.ID == *u.PrimaryPhoneNumberID {
			return p.PhoneNumber
		}
	}
	if len(u.PhoneNumbers) > 0 {
		return u.PhoneNumbers[0].PhoneNumber
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
