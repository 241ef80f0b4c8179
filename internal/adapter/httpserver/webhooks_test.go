package httpserver

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelarc/growthsync/internal/core/port"
	"github.com/modelarc/growthsync/internal/core/service"
)

// Svix uses a whsec_ prefixed base64-encoded secret.
const testWebhookSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

type sinkCall struct {
	op     string
	userID string
	event  string
	props  port.Properties
}

type recordingSink struct {
	calls []sinkCall
}

func (r *recordingSink) Track(_ context.Context, userID, event string, props port.Properties) error {
	r.calls = append(r.calls, sinkCall{op: "track", userID: userID, event: event, props: props})
	return nil
}

func (r *recordingSink) Identify(_ context.Context, userID string, traits port.Properties) error {
	r.calls = append(r.calls, sinkCall{op: "identify", userID: userID, props: traits})
	return nil
}

func (r *recordingSink) Group(_ context.Context, groupID, userID string, traits port.Properties) error {
	r.calls = append(r.calls, sinkCall{op: "group", userID: userID, props: traits})
	return nil
}

type stubDirectory struct {
	err error
}

func (s *stubDirectory) GetUser(_ context.Context, id string) (*port.DirectoryUser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &port.DirectoryUser{ID: id, PrimaryEmail: "someone@acme.com"}, nil
}

// memoryGuard is an in-process ReplayGuard for handler tests.
type memoryGuard struct {
	seen map[string]bool
}

func (g *memoryGuard) CheckAndMark(_ context.Context, messageID string) (bool, error) {
	if g.seen == nil {
		g.seen = make(map[string]bool)
	}
	if g.seen[messageID] {
		return true, nil
	}
	g.seen[messageID] = true
	return false, nil
}

func (g *memoryGuard) Release(_ context.Context, messageID string) error {
	delete(g.seen, messageID)
	return nil
}

func newTestWebhookHandler(t *testing.T, sink port.AnalyticsSink, dir port.IdentityDirectory, guard port.ReplayGuard) *WebhookHandler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	normalizer := service.NewNormalizer(sink, dir, logger)
	h := NewWebhookHandler(testWebhookSecret, normalizer, guard, logger)
	require.NotNil(t, h)
	return h
}

// signPayload creates valid Svix signature headers for a given body.
func signPayload(t *testing.T, msgID string, body []byte) http.Header {
	t.Helper()
	// Decode the secret (strip "whsec_" prefix, base64 decode).
	secretBytes, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(testWebhookSecret, "whsec_"))
	require.NoError(t, err)

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	toSign := fmt.Sprintf("%s.%s.%s", msgID, timestamp, string(body))

	mac := hmac.New(sha256.New, secretBytes)
	mac.Write([]byte(toSign))
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return http.Header{
		"svix-id":        {msgID},
		"svix-timestamp": {timestamp},
		"svix-signature": {"v1," + sig},
	}
}

func signedRequest(t *testing.T, msgID string, body []byte) *http.Request {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/webhooks/clerk", bytes.NewReader(body))
	for k, vs := range signPayload(t, msgID, body) {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
	return req
}

func TestWebhook_MissingHeaders(t *testing.T) {
	sink := &recordingSink{}
	h := newTestWebhookHandler(t, sink, &stubDirectory{}, nil)
	handler := h.HandleDelivery()

	body := []byte(`{"type":"user.created","data":{}}`)
	req := httptest.NewRequest("POST", "/api/webhooks/clerk", bytes.NewReader(body))
	// No svix headers at all.

	w := httptest.NewRecorder()
	handler(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "missing svix headers")
	assert.Empty(t, sink.calls)
}

func TestWebhook_InvalidSignature(t *testing.T) {
	sink := &recordingSink{}
	h := newTestWebhookHandler(t, sink, &stubDirectory{}, nil)
	handler := h.HandleDelivery()

	body := []byte(`{"type":"user.created","data":{}}`)
	req := httptest.NewRequest("POST", "/api/webhooks/clerk", bytes.NewReader(body))
	req.Header.Set("svix-id", "msg_123")
	req.Header.Set("svix-timestamp", fmt.Sprintf("%d", time.Now().Unix()))
	req.Header.Set("svix-signature", "v1,invalidsignature")

	w := httptest.NewRecorder()
	handler(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid signature")
	assert.Empty(t, sink.calls)
}

func TestWebhook_TamperedBody(t *testing.T) {
	sink := &recordingSink{}
	h := newTestWebhookHandler(t, sink, &stubDirectory{}, nil)
	handler := h.HandleDelivery()

	signed := []byte(`{"type":"user.created","data":{"id":"u1"}}`)
	tampered := []byte(`{"type":"user.created","data":{"id":"u2"}}`)

	req := httptest.NewRequest("POST", "/api/webhooks/clerk", bytes.NewReader(tampered))
	for k, vs := range signPayload(t, "msg_tamper", signed) {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	w := httptest.NewRecorder()
	handler(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, sink.calls)
}

func TestWebhook_InvalidJSON(t *testing.T) {
	h := newTestWebhookHandler(t, &recordingSink{}, &stubDirectory{}, nil)
	handler := h.HandleDelivery()

	body := []byte(`not valid json`)
	w := httptest.NewRecorder()
	handler(w, signedRequest(t, "msg_badjson", body))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid json")
}

func TestWebhook_UnknownEventAcknowledged(t *testing.T) {
	sink := &recordingSink{}
	h := newTestWebhookHandler(t, sink, &stubDirectory{}, nil)
	handler := h.HandleDelivery()

	body := []byte(`{"type":"ping","data":{}}`)
	w := httptest.NewRecorder()
	handler(w, signedRequest(t, "msg_ping", body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sink.calls)
}

func TestWebhook_UserCreated(t *testing.T) {
	sink := &recordingSink{}
	h := newTestWebhookHandler(t, sink, &stubDirectory{}, nil)
	handler := h.HandleDelivery()

	body := []byte(`{
		"type": "user.created",
		"data": {
			"id": "u1",
			"first_name": "A",
			"last_name": "B",
			"email_addresses": [{"email_address": "u1@acme.com"}],
			"created_at": "t0"
		}
	}`)
	w := httptest.NewRecorder()
	handler(w, signedRequest(t, "msg_user1", body))

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, sink.calls, 2)

	assert.Equal(t, "track", sink.calls[0].op)
	assert.Equal(t, "User Signed Up", sink.calls[0].event)
	assert.Equal(t, "u1@acme.com", sink.calls[0].props["email"])

	assert.Equal(t, "identify", sink.calls[1].op)
	assert.Equal(t, "acme.com", sink.calls[1].props["domain"])
}

func TestWebhook_EnrichmentFailureReturns500(t *testing.T) {
	sink := &recordingSink{}
	dir := &stubDirectory{err: errors.New("directory down")}
	h := newTestWebhookHandler(t, sink, dir, nil)
	handler := h.HandleDelivery()

	body := []byte(`{
		"type": "organization.created",
		"data": {"id": "org_1", "name": "Acme", "slug": "acme", "created_by": "u1"}
	}`)
	w := httptest.NewRecorder()
	handler(w, signedRequest(t, "msg_org1", body))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, sink.calls)
}

func TestWebhook_ReplayAcknowledgedWithoutReprocessing(t *testing.T) {
	sink := &recordingSink{}
	h := newTestWebhookHandler(t, sink, &stubDirectory{}, &memoryGuard{})
	handler := h.HandleDelivery()

	body := []byte(`{"type":"user.created","data":{"id":"u1","email_addresses":[{"email_address":"u1@acme.com"}]}}`)

	w := httptest.NewRecorder()
	handler(w, signedRequest(t, "msg_dup", body))
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, sink.calls, 2)

	// Same svix-id again: acknowledged, not re-dispatched.
	w2 := httptest.NewRecorder()
	handler(w2, signedRequest(t, "msg_dup", body))
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Len(t, sink.calls, 2)
}

func TestWebhook_FailureReleasesReplayMark(t *testing.T) {
	sink := &recordingSink{}
	dir := &stubDirectory{err: errors.New("directory down")}
	guard := &memoryGuard{}
	h := newTestWebhookHandler(t, sink, dir, guard)
	handler := h.HandleDelivery()

	body := []byte(`{"type":"session.created","data":{"id":"sess_1","user_id":"u1"}}`)

	w := httptest.NewRecorder()
	handler(w, signedRequest(t, "msg_retry", body))
	require.Equal(t, http.StatusInternalServerError, w.Code)

	// The retry must not be treated as a duplicate.
	dir.err = nil
	w2 := httptest.NewRecorder()
	handler(w2, signedRequest(t, "msg_retry", body))
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Len(t, sink.calls, 2)
}

func TestWebhook_BodySizeLimit(t *testing.T) {
	h := newTestWebhookHandler(t, &recordingSink{}, &stubDirectory{}, nil)
	handler := h.HandleDelivery()

	// A body larger than 1 MB is truncated, so its signature can't match.
	bigBody := bytes.Repeat([]byte("x"), (1<<20)+100)
	req := httptest.NewRequest("POST", "/api/webhooks/clerk", bytes.NewReader(bigBody))
	req.Header.Set("svix-id", "msg_big")
	req.Header.Set("svix-timestamp", fmt.Sprintf("%d", time.Now().Unix()))
	req.Header.Set("svix-signature", "v1,fake")

	w := httptest.NewRecorder()
	handler(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhook_Liveness(t *testing.T) {
	h := newTestWebhookHandler(t, &recordingSink{}, &stubDirectory{}, nil)

	req := httptest.NewRequest("GET", "/api/webhooks/clerk", nil)
	w := httptest.NewRecorder()
	h.HandleLiveness()(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestNewWebhookHandler_InvalidSecret(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewWebhookHandler("not-a-valid-secret", nil, nil, logger)
	assert.Nil(t, h)
}
