package httpapi

import (
	"context"

	"github.com/denhac/membership-sync/internal/ports/out/inbox"
)

type deliveryKey struct{}
type bodyKey struct{}

// withDelivery stores the authenticated delivery and its raw body.
func withDelivery(ctx context.Context, fp inbox.Fingerprint, body []byte) context.Context {
	ctx = context.WithValue(ctx, deliveryKey{}, fp)
	return context.WithValue(ctx, bodyKey{}, body)
}

func deliveryFromContext(ctx context.Context) (inbox.Fingerprint, []byte, bool) {
	fp, ok := ctx.Value(deliveryKey{}).(inbox.Fingerprint)
	body, _ := ctx.Value(bodyKey{}).([]byte)
	return fp, body, ok && fp.DeliveryID != ""
}
