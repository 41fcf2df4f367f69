package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signWebhook(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestWebhookVerifier(t *testing.T) {
	body := []byte(`{"domain":"foo.myshopify.com"}`)
	v := NewWebhookVerifier("api-secret")

	header := http.Header{}
	header.Set("X-Shopify-Hmac-Sha256", signWebhook("api-secret", body))
	assert.NoError(t, v.Verify(header, body))

	assert.ErrorIs(t, v.Verify(header, []byte(`{"domain":"evil.myshopify.com"}`)), ErrInvalidWebhookSignature)

	header.Set("X-Shopify-Hmac-Sha256", signWebhook("other-secret", body))
	assert.ErrorIs(t, v.Verify(header, body), ErrInvalidWebhookSignature)

	assert.ErrorIs(t, v.Verify(http.Header{}, body), ErrInvalidWebhookSignature)
}
