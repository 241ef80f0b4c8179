package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelarc/growthsync/internal/core/domain"
	"github.com/modelarc/growthsync/internal/core/port"
)

// Sentinel errors distinguishing the two recoverable failure classes.
// Both map to a 500 at the HTTP edge; the webhook sender retries.
var (
	// ErrEnrichment marks an identity directory lookup failure.
	ErrEnrichment = errors.New("identity enrichment failed")

	// ErrDispatch marks an analytics sink delivery failure.
	ErrDispatch = errors.New("analytics dispatch failed")
)

// Normalizer maps verified webhook events onto analytics calls,
// enriching from the identity directory when the event payload lacks
// needed fields.
//
// For kinds that emit two calls the first must succeed before the second
// is issued: downstream consumers assume group/identify traits exist by
// the time the paired track event arrives. There is no rollback of a
// successful first call — the sinks are at-least-once and idempotent per
// event properties.
type Normalizer struct {
	sink      port.AnalyticsSink
	directory port.IdentityDirectory
	logger    *slog.Logger
}

// NewNormalizer creates a Normalizer dispatching to the given sink and
// enriching via the given directory.
func NewNormalizer(sink port.AnalyticsSink, directory port.IdentityDirectory, logger *slog.Logger) *Normalizer {
	return &Normalizer{
		sink:      sink,
		directory: directory,
		logger:    logger,
	}
}

// Process dispatches one event. Unknown kinds are acknowledged and
// ignored. Any returned error wraps ErrEnrichment or ErrDispatch.
func (n *Normalizer) Process(ctx context.Context, ev domain.Event) error {
	switch ev.Kind {
	case domain.KindUserCreated:
		return n.userCreated(ctx, ev.User)
	case domain.KindOrganizationCreated:
		return n.organizationCreated(ctx, ev.Organization)
	case domain.KindSessionCreated:
		return n.sessionCreated(ctx, ev.Session)
	default:
		n.logger.Debug("ignoring unhandled event kind", slog.String("kind", string(ev.Kind)))
		return nil
	}
}

func (n *Normalizer) userCreated(ctx context.Context, u *domain.UserCreated) error {
	email := u.PrimaryEmail()

	props := port.Properties{
		"firstName":    u.FirstName,
		"lastName":     u.LastName,
		"email":        email,
		"phone":        u.PrimaryPhone(),
		"username":     u.Username,
		"signupMethod": u.SignupMethod(),
		"createdAt":    u.CreatedAt.String(),
		"avatarUrl":    u.AvatarURL,
	}
	if err := n.sink.Track(ctx, u.ID, "User Signed Up", props); err != nil {
		return fmt.Errorf("%w: track signup for %s: %w", ErrDispatch, u.ID, err)
	}

	traits := port.Properties{
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"email":     email,
		"phone":     u.PrimaryPhone(),
		"username":  u.Username,
		"createdAt": u.CreatedAt.String(),
		"avatarUrl": u.AvatarURL,
	}
	if dom := domain.ExtractCompanyDomain(email); dom != "" {
		traits["domain"] = dom
	}
	if err := n.sink.Identify(ctx, u.ID, traits); err != nil {
		return fmt.Errorf("%w: identify %s: %w", ErrDispatch, u.ID, err)
	}

	n.logger.Info("user signup normalized",
		slog.String("user_id", u.ID),
		slog.String("signup_method", u.SignupMethod()),
	)
	return nil
}

func (n *Normalizer) organizationCreated(ctx context.Context, o *domain.OrganizationCreated) error {
	creator, err := n.directory.GetUser(ctx, o.CreatedBy)
	if err != nil {
		return fmt.Errorf("%w: look up org creator %s: %w", ErrEnrichment, o.CreatedBy, err)
	}
	dom := domain.ExtractCompanyDomain(creator.PrimaryEmail)

	traits := port.Properties{
		"name":        o.Name,
		"slug":        o.Slug,
		"createdAt":   o.CreatedAt.String(),
		"avatarUrl":   o.AvatarURL,
		"memberCount": o.MembersCount,
	}
	if dom != "" {
		traits["domain"] = dom
	}
	if err := n.sink.Group(ctx, o.ID, o.CreatedBy, traits); err != nil {
		return fmt.Errorf("%w: group %s: %w", ErrDispatch, o.ID, err)
	}

	props := port.Properties{
		"organizationId": o.ID,
		"name":           o.Name,
		"slug":           o.Slug,
		"createdAt":      o.CreatedAt.String(),
		"avatarUrl":      o.AvatarURL,
		"memberCount":    o.MembersCount,
	}
	if dom != "" {
		props["domain"] = dom
	}
	if err := n.sink.Track(ctx, o.CreatedBy, "Organization Created", props); err != nil {
		return fmt.Errorf("%w: track org creation %s: %w", ErrDispatch, o.ID, err)
	}

	n.logger.Info("organization creation normalized",
		slog.String("org_id", o.ID),
		slog.String("creator_id", o.CreatedBy),
	)
	return nil
}

func (n *Normalizer) sessionCreated(ctx context.Context, s *domain.SessionCreated) error {
	// Session payloads carry no profile fields; the full user record
	// comes from the directory. A failed lookup fails the whole event —
	// no partial enrichment.
	user, err := n.directory.GetUser(ctx, s.UserID)
	if err != nil {
		return fmt.Errorf("%w: look up session user %s: %w", ErrEnrichment, s.UserID, err)
	}

	props := port.Properties{
		"sessionId":    s.ID,
		"clientId":     s.ClientID,
		"createdAt":    s.CreatedAt.String(),
		"status":       s.Status,
		"lastActiveAt": s.LastActiveAt.String(),
	}
	if err := n.sink.Track(ctx, s.UserID, "Session Started", props); err != nil {
		return fmt.Errorf("%w: track session %s: %w", ErrDispatch, s.ID, err)
	}

	traits := port.Properties{
		"firstName":   user.FirstName,
		"lastName":    user.LastName,
		"email":       user.PrimaryEmail,
		"phone":       user.PrimaryPhone,
		"username":    user.Username,
		"avatarUrl":   user.AvatarURL,
		"lastLoginAt": s.LastActiveAt.String(),
	}
	if dom := domain.ExtractCompanyDomain(user.PrimaryEmail); dom != "" {
		traits["companyDomain"] = dom
	}
	if err := n.sink.Identify(ctx, s.UserID, traits); err != nil {
		return fmt.Errorf("%w: identify %s: %w", ErrDispatch, s.UserID, err)
	}

	return nil
}
