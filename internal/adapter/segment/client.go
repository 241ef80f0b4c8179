// Package segment delivers analytics calls to the Segment HTTP tracking
// API (v1). Calls are synchronous: each request is delivered and
// acknowledged before the method returns, which is what the webhook
// handler needs — the official Go client only enqueues for a background
// flush and cannot report delivery failures to the caller.
package segment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/modelarc/growthsync/internal/core/port"
)

const defaultTimeout = 10 * time.Second

// Client implements port.AnalyticsSink against the Segment v1 API.
type Client struct {
	endpoint string
	writeKey string
	hc       *http.Client
}

// New creates a Segment client. endpoint is the API base URL without a
// trailing slash, e.g. "https://api.segment.io".
func New(endpoint, writeKey string) *Client {
	return &Client{
		endpoint: endpoint,
		writeKey: writeKey,
		hc:       &http.Client{Timeout: defaultTimeout},
	}
}

// payload is the common body shape of the track/identify/group endpoints.
type payload struct {
	UserID     string          `json:"userId"`
	GroupID    string          `json:"groupId,omitempty"`
	Event      string          `json:"event,omitempty"`
	Properties port.Properties `json:"properties,omitempty"`
	Traits     port.Properties `json:"traits,omitempty"`
	Timestamp  string          `json:"timestamp"`
}

// Track implements port.AnalyticsSink.
func (c *Client) Track(ctx context.Context, userID, event string, props port.Properties) error {
	return c.send(ctx, "track", payload{
		UserID:     userID,
		Event:      event,
		Properties: props,
	})
}

// Identify implements port.AnalyticsSink.
func (c *Client) Identify(ctx context.Context, userID string, traits port.Properties) error {
	return c.send(ctx, "identify", payload{
		UserID: userID,
		Traits: traits,
	})
}

// Group implements port.AnalyticsSink.
func (c *Client) Group(ctx context.Context, groupID, userID string, traits port.Properties) error {
	return c.send(ctx, "group", payload{
		UserID:  userID,
		GroupID: groupID,
		Traits:  traits,
	})
}

func (c *Client) send(ctx context.Context, endpoint string, p payload) error {
	p.Timestamp = time.Now().UTC().Format(time.RFC3339)

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/v1/%s", c.endpoint, endpoint), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Segment authenticates with the write key as a Basic auth username
	// and an empty password.
	req.SetBasicAuth(c.writeKey, "")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("send %s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("segment %s: unexpected status %d", endpoint, resp.StatusCode)
	}
	return nil
}
