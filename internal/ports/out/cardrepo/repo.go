package cardrepo

import (
	"context"

	"github.com/denhac/membership-sync/internal/domain"
)

// Repository stores access card records keyed by normalized number.
type Repository interface {
	// Upsert writes a card. EverActivated is sticky: once true it stays true.
	Upsert(ctx context.Context, c domain.Card) error
	// SetActiveForCustomer flips Active on every card the customer holds.
	SetActiveForCustomer(ctx context.Context, id domain.CustomerID, active bool) error
	ListByCustomer(ctx context.Context, id domain.CustomerID) ([]domain.Card, error)
	Get(ctx context.Context, number string) (domain.Card, error)
}
