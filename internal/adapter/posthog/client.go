// Package posthog adapts the PostHog Go client to port.AnalyticsSink.
// The client is configured with a batch size of one so every call is
// flushed as it is enqueued, matching the delivery contract of the
// webhook handler.
package posthog

import (
	"context"
	"fmt"
	"time"

	posthog "github.com/posthog/posthog-go"

	"github.com/modelarc/growthsync/internal/core/port"
)

// groupType is the PostHog group taxonomy bucket organizations land in.
const groupType = "organization"

// Client implements port.AnalyticsSink against PostHog.
type Client struct {
	ph posthog.Client
}

// New creates a PostHog client posting to the given endpoint.
func New(endpoint, apiKey string) (*Client, error) {
	ph, err := posthog.NewWithConfig(apiKey, posthog.Config{
		Endpoint:  endpoint,
		BatchSize: 1,
		Interval:  100 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("create posthog client: %w", err)
	}
	return &Client{ph: ph}, nil
}

// Track implements port.AnalyticsSink.
func (c *Client) Track(_ context.Context, userID, event string, props port.Properties) error {
	if err := c.ph.Enqueue(posthog.Capture{
		DistinctId: userID,
		Event:      event,
		Properties: posthog.Properties(props),
	}); err != nil {
		return fmt.Errorf("posthog capture: %w", err)
	}
	return nil
}

// Identify implements port.AnalyticsSink.
func (c *Client) Identify(_ context.Context, userID string, traits port.Properties) error {
	if err := c.ph.Enqueue(posthog.Identify{
		DistinctId: userID,
		Properties: posthog.Properties(traits),
	}); err != nil {
		return fmt.Errorf("posthog identify: %w", err)
	}
	return nil
}

// Group implements port.AnalyticsSink.
func (c *Client) Group(_ context.Context, groupID, userID string, traits port.Properties) error {
	if err := c.ph.Enqueue(posthog.GroupIdentify{
		Type:       groupType,
		Key:        groupID,
		Properties: posthog.Properties(traits),
	}); err != nil {
		return fmt.Errorf("posthog group identify: %w", err)
	}
	return nil
}

// Close flushes anything still queued and releases the client.
func (c *Client) Close() error {
	return c.ph.Close()
}
