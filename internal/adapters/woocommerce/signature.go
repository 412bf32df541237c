package woocommerce

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Webhook delivery headers.
const (
	HeaderSignature  = "X-WC-Webhook-Signature"
	HeaderDeliveryID = "X-WC-Webhook-Delivery-ID"
	HeaderTopic      = "X-WC-Webhook-Topic"
)

// Sign returns the base64 HMAC-SHA256 of body, as sent in X-WC-Webhook-Signature.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature matches body. An empty secret disables the check.
func VerifySignature(body []byte, signature, secret string) bool {
	if secret == "" {
		return true
	}
	return hmac.Equal([]byte(Sign(body, secret)), []byte(signature))
}
