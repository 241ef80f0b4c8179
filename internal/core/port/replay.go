package port

import "context"

// ReplayGuard deduplicates webhook deliveries. The sender delivers
// at-least-once, so replays of already-processed message ids are routine.
type ReplayGuard interface {
	// CheckAndMark atomically marks a message id as processed. It reports
	// true when the id had already been marked.
	CheckAndMark(ctx context.Context, messageID string) (seen bool, err error)

	// Release removes the mark so the sender's retry gets processed.
	// Called when processing fails after the mark was taken.
	Release(ctx context.Context, messageID string) error
}
