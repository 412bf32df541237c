// Package projectors keeps the read models (customers, waivers, cards) in step with the event stream.
package projectors

import (
	"context"
	"errors"

	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/ports/out/customerrepo"
	"github.com/denhac/membership-sync/internal/ports/out/eventstore"
)

// Customers projects profile facts, soft deletes and the cached member flag.
type Customers struct {
	repo customerrepo.Repository
}

func NewCustomers(repo customerrepo.Repository) *Customers {
	return &Customers{repo: repo}
}

func (p *Customers) Project(ctx context.Context, se eventstore.StoredEvent) error {
	if facts, ok := domain.CustomerFactsOf(se.Event); ok {
		return p.repo.Upsert(ctx, domain.Customer{
			ID:           facts.ID,
			FirstName:    domain.NormalizeHumanName(facts.FirstName),
			LastName:     domain.NormalizeHumanName(facts.LastName),
			Email:        domain.NormalizeEmail(facts.Email),
			SlackID:      facts.SlackID,
			Capabilities: facts.Capabilities,
			Cards:        facts.Cards,
			UpdatedAt:    se.RecordedAt,
		})
	}

	switch e := se.Event.(type) {
	case domain.CustomerDeleted:
		err := p.repo.SoftDelete(ctx, e.CustomerID, e.DeletedAt)
		if errors.Is(err, customerrepo.ErrNotFound) {
			return nil
		}
		return err
	case domain.MembershipActivated:
		return p.setMember(ctx, e.CustomerID, true)
	case domain.MembershipDeactivated:
		return p.setMember(ctx, e.CustomerID, false)
	}
	return nil
}

// setMember creates a placeholder row when subscription events arrive before the customer.
func (p *Customers) setMember(ctx context.Context, id domain.CustomerID, member bool) error {
	err := p.repo.SetMember(ctx, id, member)
	if !errors.Is(err, customerrepo.ErrNotFound) {
		return err
	}
	if err := p.repo.Upsert(ctx, domain.Customer{ID: id}); err != nil {
		return err
	}
	return p.repo.SetMember(ctx, id, member)
}
