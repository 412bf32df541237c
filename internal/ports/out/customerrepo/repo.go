package customerrepo

import (
	"context"
	"time"

	"github.com/denhac/membership-sync/internal/domain"
)

// Repository is the customer read model.
//
// List results are ordered by customer id ascending.
type Repository interface {
	// Upsert writes profile fields and clears the soft-delete marker: a customer with fresh
	// profile facts exists again. The Member flag is left untouched on update.
	Upsert(ctx context.Context, c domain.Customer) error
	SetMember(ctx context.Context, id domain.CustomerID, member bool) error
	SoftDelete(ctx context.Context, id domain.CustomerID, at time.Time) error

	GetByID(ctx context.Context, id domain.CustomerID) (domain.Customer, error)
	List(ctx context.Context, includeDeleted bool) ([]domain.Customer, error)

	// FindByIdentity returns non-deleted customers whose normalized first name, last name and email all match.
	FindByIdentity(ctx context.Context, id domain.Identity) ([]domain.Customer, error)
}
