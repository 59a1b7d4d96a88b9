package events

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bshishov/timelinewiki/internal/core/domain"
)

const defaultWebhookTimeout = 10 * time.Second

// WebhookPublisher sends change envelopes to a configured HTTP endpoint.
// Each request is signed with HMAC-SHA256 so the receiver can verify authenticity.
// Non-2xx responses are errors, which leaves retries and dead-lettering to the
// outbox dispatcher.
type WebhookPublisher struct {
	url    string
	secret []byte
	client *resty.Client
}

// NewWebhookPublisher returns a WebhookPublisher that POSTs changes to url and
// signs them with secret. A zero or negative timeout falls back to
// defaultWebhookTimeout.
func NewWebhookPublisher(url, secret string, timeout time.Duration) *WebhookPublisher {
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	return &WebhookPublisher{
		url:    url,
		secret: []byte(secret),
		client: resty.New().SetTimeout(timeout),
	}
}

// Publish marshals change to JSON, signs the body and POSTs it. Every request
// carries these headers:
//
//	Content-Type:                application/json
//	X-Timelinewiki-Topic:        <topic>
//	X-Timelinewiki-Change-Type:  <change.ChangeType>
//	X-Timelinewiki-Resource:     <change.ResourceType>/<change.ResourceID>
//	X-Hub-Signature-256:         sha256=<hex-encoded HMAC-SHA256>
func (p *WebhookPublisher) Publish(ctx context.Context, topic string, change domain.ChangeEnvelope) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Timelinewiki-Topic", topic).
		SetHeader("X-Timelinewiki-Change-Type", change.ChangeType).
		SetHeader("X-Timelinewiki-Resource", change.ResourceType+"/"+change.ResourceID).
		SetHeader("X-Hub-Signature-256", "sha256="+p.sign(payload)).
		SetBody(payload).
		Post(p.url)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}
	return nil
}

// sign returns the lowercase hex-encoded HMAC-SHA256 of payload using p.secret.
func (p *WebhookPublisher) sign(payload []byte) string {
	mac := hmac.New(sha256.New, p.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
