package projectors

import (
	"context"
	"errors"

	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/ports/out/cardrepo"
	"github.com/denhac/membership-sync/internal/ports/out/customerrepo"
	"github.com/denhac/membership-sync/internal/ports/out/eventstore"
)

// Cards keeps access card records: ownership from customer facts, Active from membership.
// It must run after the Customers projector so the member flag is current.
type Cards struct {
	cards     cardrepo.Repository
	customers customerrepo.Repository
}

func NewCards(cards cardrepo.Repository, customers customerrepo.Repository) *Cards {
	return &Cards{cards: cards, customers: customers}
}

func (p *Cards) Project(ctx context.Context, se eventstore.StoredEvent) error {
	if facts, ok := domain.CustomerFactsOf(se.Event); ok {
		return p.syncCustomerCards(ctx, facts, se)
	}
	switch e := se.Event.(type) {
	case domain.MembershipActivated:
		return p.cards.SetActiveForCustomer(ctx, e.CustomerID, true)
	case domain.MembershipDeactivated:
		return p.cards.SetActiveForCustomer(ctx, e.CustomerID, false)
	}
	return nil
}

func (p *Cards) syncCustomerCards(ctx context.Context, facts domain.CustomerFacts, se eventstore.StoredEvent) error {
	member := false
	if c, err := p.customers.GetByID(ctx, facts.ID); err == nil {
		member = c.Member
	} else if !errors.Is(err, customerrepo.ErrNotFound) {
		return err
	}

	for _, raw := range facts.Cards {
		number := domain.NormalizeCardNumber(raw)
		if number == "" {
			continue
		}
		card, err := p.cards.Get(ctx, number)
		switch {
		case errors.Is(err, cardrepo.ErrNotFound):
			card = domain.Card{Number: number, Active: member}
		case err != nil:
			return err
		}
		if card.CustomerID != facts.ID {
			card.Active = member
		}
		card.CustomerID = facts.ID
		card.MemberHasCard = true
		card.UpdatedAt = se.RecordedAt
		if err := p.cards.Upsert(ctx, card); err != nil {
			return err
		}
	}
	return nil
}
