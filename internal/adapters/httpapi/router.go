package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterOptions struct {
	// WooCommerceSecret verifies X-WC-Webhook-Signature.
	WooCommerceSecret string
	// WebhookToken is the bearer token the waiver and card systems send.
	WebhookToken string
}

// NewRouter constructs the webhook and status router.
func NewRouter(s *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/webhooks", func(r chi.Router) {
		r.With(NewSignatureMiddleware(opts.WooCommerceSecret)).Post("/woocommerce/{topic}", s.handleWooCommerce)
		r.With(NewTokenMiddleware(SourceWaivers, opts.WebhookToken)).Post("/waivers", s.handleWaiver)
		r.With(NewTokenMiddleware(SourceCards, opts.WebhookToken)).Post("/card-holders", s.handleCardHolders)
	})

	r.Get("/customers/{id}/membership", s.handleMembershipStatus)
	return r
}
