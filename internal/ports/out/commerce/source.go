package commerce

import (
	"context"

	"github.com/denhac/membership-sync/internal/domain"
)

// Source pulls the full customer and subscription lists from the e-commerce platform.
type Source interface {
	ListCustomers(ctx context.Context) ([]domain.CustomerFacts, error)
	ListSubscriptions(ctx context.Context) ([]domain.SubscriptionFacts, error)
}
