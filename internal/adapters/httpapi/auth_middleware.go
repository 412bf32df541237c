package httpapi

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"github.com/denhac/membership-sync/internal/adapters/woocommerce"
	"github.com/denhac/membership-sync/internal/ports/out/inbox"
)

const maxWebhookBody = 1 << 20

// Webhook sources, used as the inbox namespace.
const (
	SourceWooCommerce = "woocommerce"
	SourceWaivers     = "waivers"
	SourceCards       = "cards"
)

// NewSignatureMiddleware authenticates WooCommerce deliveries by their HMAC signature.
// An empty secret accepts unsigned deliveries.
func NewSignatureMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, ok := readBody(w, r)
			if !ok {
				return
			}
			if !woocommerce.VerifySignature(body, r.Header.Get(woocommerce.HeaderSignature), secret) {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid webhook signature", nil)
				return
			}
			fp := fingerprint(SourceWooCommerce, r.Header.Get(woocommerce.HeaderDeliveryID), body)
			next.ServeHTTP(w, r.WithContext(withDelivery(r.Context(), fp, body)))
		})
	}
}

// NewTokenMiddleware authenticates deliveries carrying "Authorization: Bearer <token>".
// An empty token accepts every delivery.
func NewTokenMiddleware(source, token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" {
				authz := r.Header.Get("Authorization")
				if authz == "" {
					writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing Authorization header", nil)
					return
				}
				const prefix = "Bearer "
				if !strings.HasPrefix(authz, prefix) {
					writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "malformed Authorization header", nil)
					return
				}
				raw := strings.TrimSpace(strings.TrimPrefix(authz, prefix))
				if subtle.ConstantTimeCompare([]byte(raw), []byte(token)) != 1 {
					writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token", nil)
					return
				}
			}
			body, ok := readBody(w, r)
			if !ok {
				return
			}
			fp := fingerprint(source, r.Header.Get("X-Delivery-ID"), body)
			next.ServeHTTP(w, r.WithContext(withDelivery(r.Context(), fp, body)))
		})
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, r, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "webhook body too large or unreadable", nil)
		return nil, false
	}
	return body, true
}

// fingerprint falls back to a body hash when the sender sends no delivery id.
func fingerprint(source, deliveryID string, body []byte) inbox.Fingerprint {
	id := strings.TrimSpace(deliveryID)
	if id == "" {
		sum := sha256.Sum256(body)
		id = "sha256:" + hex.EncodeToString(sum[:])
	}
	return inbox.Fingerprint{Source: source, DeliveryID: id}
}
