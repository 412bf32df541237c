package inbox

import (
	"context"
	"time"
)

// Fingerprint identifies one webhook delivery.
//
// Source names the sender ("woocommerce", "waivers", "cards"), DeliveryID is the sender's
// delivery id header, or a body hash when the sender provides none.
type Fingerprint struct {
	Source     string
	DeliveryID string
}

// Record is stored once a delivery has been processed so redeliveries can be acknowledged without replaying them.
type Record struct {
	Topic      string
	StatusCode int
	CreatedAt  time.Time
}

// Store persists processed webhook deliveries.
type Store interface {
	Get(ctx context.Context, fp Fingerprint) (Record, bool, error)
	Put(ctx context.Context, fp Fingerprint, rec Record) error
}
