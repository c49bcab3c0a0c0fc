package events

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
)

const (
	defaultWebhookTimeout = 10 * time.Second
	webhookUserAgent      = "feedbackapi-webhook/1"
)

// WebhookNotifier POSTs new-feedback notifications to a configured endpoint.
// Non-2xx responses are errors; the dispatcher logs them and does not retry.
type WebhookNotifier struct {
	url    string
	secret []byte
	client *http.Client
	now    func() time.Time
}

// NewWebhookNotifier returns a WebhookNotifier that POSTs to url. With a
// non-empty secret every request is signed. A zero or negative timeout falls
// back to defaultWebhookTimeout.
func NewWebhookNotifier(url, secret string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	return &WebhookNotifier{
		url:    url,
		secret: []byte(secret),
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}
}

// Notify sends the notification envelope as JSON with these headers:
//
//	X-Feedback-Event:      feedback.created
//	X-Feedback-Delivery:   <delivery id>
//	X-Feedback-Project:    <project id>
//	X-Feedback-Timestamp:  <unix seconds>
//	X-Feedback-Signature:  sha256=<hex HMAC-SHA256 of "<timestamp>.<body>">
//
// The signature header is omitted when no secret is configured.
func (p *WebhookNotifier) Notify(ctx context.Context, n domain.Notification) error {
	env := newEnvelope(n, p.now())
	payload, err := env.marshal()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	timestamp := strconv.FormatInt(env.SentAt.Unix(), 10)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", webhookUserAgent)
	req.Header.Set("X-Feedback-Event", env.Event)
	req.Header.Set("X-Feedback-Delivery", env.DeliveryID)
	req.Header.Set("X-Feedback-Project", n.ProjectID)
	req.Header.Set("X-Feedback-Timestamp", timestamp)
	if len(p.secret) > 0 {
		req.Header.Set("X-Feedback-Signature", "sha256="+SignPayload(p.secret, timestamp, payload))
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook %s returned status %d", env.DeliveryID, resp.StatusCode)
	}
	return nil
}

// SignPayload computes the hex HMAC-SHA256 a receiver should compare against
// X-Feedback-Signature. Binding the timestamp lets receivers reject replays.
func SignPayload(secret []byte, timestamp string, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(timestamp))
	mac.Write([]byte{'.'})
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
