package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"opshub-integrations-layer/internal/domain"
)

// WebhookVerifier checks inbound webhook signatures. Verification runs
// over the exact raw body bytes, before any parsing; the signature header
// carries the base64-encoded HMAC-SHA256 of the body under the shared
// webhook secret.
type WebhookVerifier struct {
	secret []byte
}

func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: []byte(secret)}
}

// Sign computes the signature for a body. Used by tests and by outbound
// tooling; the provider computes the same value on its side.
func (v *WebhookVerifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify compares the provided signature against the expected MAC of the
// raw body in constant time.
func (v *WebhookVerifier) Verify(body []byte, signature string) error {
	if signature == "" {
		return domain.NewAuthError(domain.AuthCodeInvalidSignature, "missing signature")
	}
	provided, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return domain.NewAuthError(domain.AuthCodeInvalidSignature, "invalid signature encoding")
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	if !hmac.Equal(provided, mac.Sum(nil)) {
		return domain.NewAuthError(domain.AuthCodeInvalidSignature, "signature mismatch")
	}
	return nil
}
