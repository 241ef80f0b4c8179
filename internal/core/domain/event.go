package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EventKind discriminates verified webhook events.
type EventKind string

const (
	KindUserCreated         EventKind = "user.created"
	KindOrganizationCreated EventKind = "organization.created"
	KindSessionCreated      EventKind = "session.created"
	KindUnknown             EventKind = "unknown"
)

// Envelope is the raw Clerk webhook body: a type tag plus an
// event-specific data object.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Event is a verified, typed webhook event. Exactly one of the payload
// pointers is set for the known kinds; all are nil for KindUnknown.
type Event struct {
	Kind         EventKind
	User         *UserCreated
	Organization *OrganizationCreated
	Session      *SessionCreated
}

// UserCreated is the payload for "user.created" events.
type UserCreated struct {
	ID                    string            `json:"id"`
	FirstName             string            `json:"first_name"`
	LastName              string            `json:"last_name"`
	Username              string            `json:"username"`
	AvatarURL             string            `json:"image_url"`
	CreatedAt             Timestamp         `json:"created_at"`
	EmailAddresses        []EmailAddress    `json:"email_addresses"`
	PrimaryEmailAddressID string            `json:"primary_email_address_id"`
	PhoneNumbers          []PhoneNumber     `json:"phone_numbers"`
	PrimaryPhoneNumberID  string            `json:"primary_phone_number_id"`
	ExternalAccounts      []ExternalAccount `json:"external_accounts"`
}

// EmailAddress is a nested object within Clerk user data.
type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// PhoneNumber is a nested object within Clerk user data.
type PhoneNumber struct {
	ID          string `json:"id"`
	PhoneNumber string `json:"phone_number"`
}

// ExternalAccount is a linked OAuth account on a Clerk user.
type ExternalAccount struct {
	Provider string `json:"provider"`
}

// OrganizationCreated is the payload for "organization.created" events.
type OrganizationCreated struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	AvatarURL    string    `json:"image_url"`
	CreatedAt    Timestamp `json:"created_at"`
	MembersCount int       `json:"members_count"`
	CreatedBy    string    `json:"created_by"`
}

// SessionCreated is the payload for "session.created" events.
type SessionCreated struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	ClientID     string    `json:"client_id"`
	Status       string    `json:"status"`
	CreatedAt    Timestamp `json:"created_at"`
	LastActiveAt Timestamp `json:"last_active_at"`
}

// ParseEvent decodes a verified webhook body into a typed Event.
// Unrecognized event types yield KindUnknown with no payload; the caller
// is expected to acknowledge and ignore those.
func ParseEvent(body []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Event{}, fmt.Errorf("unmarshal envelope: %w", err)
	}

	switch EventKind(env.Type) {
	case KindUserCreated:
		var d UserCreated
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return Event{}, fmt.Errorf("unmarshal user data: %w", err)
		}
		return Event{Kind: KindUserCreated, User: &d}, nil
	case KindOrganizationCreated:
		var d OrganizationCreated
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return Event{}, fmt.Errorf("unmarshal organization data: %w", err)
		}
		return Event{Kind: KindOrganizationCreated, Organization: &d}, nil
	case KindSessionCreated:
		var d SessionCreated
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return Event{}, fmt.Errorf("unmarshal session data: %w", err)
		}
		return Event{Kind: KindSessionCreated, Session: &d}, nil
	default:
		return Event{Kind: KindUnknown}, nil
	}
}

// PrimaryEmail returns the address marked primary, falling back to the
// first listed address when the primary id is absent or unmatched.
func (u *UserCreated) PrimaryEmail() string {
	for _, e := range u.EmailAddresses {
		if u.PrimaryEmailAddressID != "" && e.ID == u.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}

// PrimaryPhone returns the phone number marked primary, falling back to
// the first listed number.
func (u *UserCreated) PrimaryPhone() string {
	for _, p := range u.PhoneNumbers {
		if u.PrimaryPhoneNumberID != "" && p.ID == u.PrimaryPhoneNumberID {
			return p.PhoneNumber
		}
	}
	if len(u.PhoneNumbers) > 0 {
		return u.PhoneNumbers[0].PhoneNumber
	}
	return ""
}

// SignupMethod derives how the user signed up from the first linked
// external account provider. Clerk reports providers as "oauth_google",
// "oauth_github", etc; users without a linked account signed up by email.
func (u *UserCreated) SignupMethod() string {
	if len(u.ExternalAccounts) == 0 {
		return "email"
	}
	provider := u.ExternalAccounts[0].Provider
	if provider == "" {
		return "email"
	}
	return strings.TrimPrefix(provider, "oauth_")
}

// Timestamp tolerates both representations Clerk has used for event
// timestamps: a unix-milliseconds number and an ISO string. The value is
// carried through to analytics properties verbatim.
type Timestamp string

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Timestamp(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = Timestamp(n.String())
	return nil
}

func (t Timestamp) String() string { return string(t) }
