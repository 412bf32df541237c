package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/denhac/membership-sync/internal/adapters/woocommerce"
	"github.com/denhac/membership-sync/internal/ports/out/inbox"
)

// deliveryRecorder records the delivery the middleware stored in the request context.
type deliveryRecorder struct {
	fp   inbox.Fingerprint
	body []byte
	hit  bool
}

func (p *deliveryRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.fp, p.body, p.hit = deliveryFromContext(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func TestSignatureMiddleware(t *testing.T) {
	t.Parallel()

	body := []byte(`{"id":7}`)
	cases := []struct {
		name       string
		secret     string
		signature  string
		delivery   string
		wantStatus int
		wantID     string
	}{
		{name: "valid", secret: "s", signature: woocommerce.Sign(body, "s"), delivery: "42", wantStatus: http.StatusNoContent, wantID: "42"},
		{name: "forged", secret: "s", signature: woocommerce.Sign(body, "other"), delivery: "42", wantStatus: http.StatusUnauthorized},
		{name: "missing", secret: "s", wantStatus: http.StatusUnauthorized},
		{name: "no_secret", secret: "", wantStatus: http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p := &deliveryRecorder{}
			h := NewSignatureMiddleware(tc.secret)(p)
			req := httptest.NewRequest(http.MethodPost, "/webhooks/woocommerce/customer.created", bytes.NewReader(body))
			if tc.signature != "" {
				req.Header.Set(woocommerce.HeaderSignature, tc.signature)
			}
			if tc.delivery != "" {
				req.Header.Set(woocommerce.HeaderDeliveryID, tc.delivery)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status=%d, want %d body=%s", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if tc.wantStatus != http.StatusNoContent {
				if p.hit {
					t.Fatalf("next handler ran for a rejected delivery")
				}
				return
			}
			if p.fp.Source != SourceWooCommerce || !bytes.Equal(p.body, body) {
				t.Fatalf("delivery=%+v body=%s, want woocommerce with original body", p.fp, p.body)
			}
			if tc.wantID != "" && p.fp.DeliveryID != tc.wantID {
				t.Fatalf("delivery id=%q, want %q", p.fp.DeliveryID, tc.wantID)
			}
			if tc.wantID == "" && !strings.HasPrefix(p.fp.DeliveryID, "sha256:") {
				t.Fatalf("delivery id=%q, want body hash", p.fp.DeliveryID)
			}
		})
	}
}

func TestTokenMiddleware_AcceptsBearerToken(t *testing.T) {
	t.Parallel()

	p := &deliveryRecorder{}
	h := NewTokenMiddleware(SourceWaivers, "tok")(p)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/waivers", strings.NewReader(`{"waiver_id":"w-1"}`))
	req.Header.Set("Authorization", "Bearer tok")
	req.Header.Set("X-Delivery-ID", "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status=%d, want 204", rec.Code)
	}
	if p.fp != (inbox.Fingerprint{Source: SourceWaivers, DeliveryID: "abc"}) {
		t.Fatalf("fingerprint=%+v, want waivers/abc", p.fp)
	}
}

func TestMiddleware_RejectsOversizedBody(t *testing.T) {
	t.Parallel()

	p := &deliveryRecorder{}
	h := NewTokenMiddleware(SourceCards, "")(p)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/card-holders", bytes.NewReader(make([]byte, maxWebhookBody+1)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge || p.hit {
		t.Fatalf("status=%d hit=%v, want 413 without reaching the handler", rec.Code, p.hit)
	}
}
