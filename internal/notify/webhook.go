package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/alanyoungcy/predicthub/internal/crypto"
)

// WebhookSender posts {"title","text"} to a generic endpoint. Slack
// incoming webhooks accept the same shape and ignore "title". With a secret
// configured, requests carry an HMAC-SHA256 signature header.
type WebhookSender struct {
	url    string
	signer *crypto.HMACSigner
	client *http.Client
}

// NewWebhookSender creates a WebhookSender. An empty secret disables signing.
func NewWebhookSender(url, secret string) *WebhookSender {
	return &WebhookSender{url: url, signer: crypto.NewHMACSigner(secret), client: newHTTPClient()}
}

func (w *WebhookSender) Send(ctx context.Context, title, message string) error {
	payload := map[string]string{"title": title, "text": title + "\n" + message}
	if err := postJSON(ctx, w.client, w.url, payload, w.signer.Headers); err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	return nil
}

func (w *WebhookSender) Name() string { return "webhook" }
