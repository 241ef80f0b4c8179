package port

import "context"

// Properties is a flat bag of scalar event attributes. Keys are unique,
// insertion order is irrelevant.
type Properties map[string]any

// AnalyticsSink records behavioral events and user/group traits in an
// analytics destination. Implementations must deliver each call before
// returning (flush threshold of one): the hosting environment may kill
// the process right after the webhook response is written, so a buffered
// call would be silently lost.
type AnalyticsSink interface {
	// Track records a named event for a user.
	Track(ctx context.Context, userID, event string, props Properties) error

	// Identify sets traits on a user.
	Identify(ctx context.Context, userID string, traits Properties) error

	// Group sets traits on an organization, attributed to a user.
	Group(ctx context.Context, groupID, userID string, traits Properties) error
}
