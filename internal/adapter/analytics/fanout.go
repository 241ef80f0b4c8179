// Package analytics composes multiple sink destinations behind the
// single port.AnalyticsSink the normalizer sees.
package analytics

import (
	"context"

	"github.com/modelarc/growthsync/internal/core/port"
)

// Fanout dispatches every call to each destination in order and stops at
// the first error. No concurrency: the ordering contract of the
// normalizer extends to destinations, and a failure must abort the
// request rather than race a half-delivered call.
type Fanout struct {
	sinks []port.AnalyticsSink
}

// NewFanout creates a Fanout over the given destinations. Order matters:
// the primary destination goes first.
func NewFanout(sinks ...port.AnalyticsSink) *Fanout {
	return &Fanout{sinks: sinks}
}

// Track implements port.AnalyticsSink.
func (f *Fanout) Track(ctx context.Context, userID, event string, props port.Properties) error {
	for _, s := range f.sinks {
		if err := s.Track(ctx, userID, event, props); err != nil {
			return err
		}
	}
	return nil
}

// Identify implements port.AnalyticsSink.
func (f *Fanout) Identify(ctx context.Context, userID string, traits port.Properties) error {
	for _, s := range f.sinks {
		if err := s.Identify(ctx, userID, traits); err != nil {
			return err
		}
	}
	return nil
}

// Group implements port.AnalyticsSink.
func (f *Fanout) Group(ctx context.Context, groupID, userID string, traits port.Properties) error {
	for _, s := range f.sinks {
		if err := s.Group(ctx, groupID, userID, traits); err != nil {
			return err
		}
	}
	return nil
}
