package shopify

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	goshopify "github.com/bold-commerce/go-shopify/v4"
)

// ErrInvalidWebhookSignature is returned when X-Shopify-Hmac-Sha256 does not verify
var ErrInvalidWebhookSignature = errors.New("invalid webhook signature")

// WebhookVerifier checks webhook deliveries against the app secret
type WebhookVerifier struct {
	app goshopify.App
}

// NewWebhookVerifier creates a verifier for the given app secret
func NewWebhookVerifier(apiSecret string) *WebhookVerifier {
	return &WebhookVerifier{app: goshopify.App{ApiSecret: apiSecret}}
}

// Verify checks the signature of an already-read payload
func (v *WebhookVerifier) Verify(header http.Header, payload []byte) error {
	req, err := http.NewRequest(http.MethodPost, "/", io.NopCloser(bytes.NewReader(payload)))
	if err != nil {
		return err
	}
	req.Header = header.Clone()
	if !v.app.VerifyWebhookRequest(req) {
		return ErrInvalidWebhookSignature
	}
	return nil
}
