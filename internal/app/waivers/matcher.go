// Package waivers links accepted waivers to customers by exact identity.
package waivers

import (
	"context"
	"errors"
	"fmt"

	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/platform/logger"
	"github.com/denhac/membership-sync/internal/ports/out/customerrepo"
	"github.com/denhac/membership-sync/internal/ports/out/waiverrepo"
)

// Assigner records WaiverAssignedToCustomer on the customer's aggregate.
type Assigner interface {
	AssignWaiver(ctx context.Context, customer domain.CustomerID, waiver domain.WaiverID) error
}

// Matcher runs the same exact-match rule from both sides: when a waiver arrives and when
// a customer profile changes. First name, last name and canonical email must all match.
type Matcher struct {
	customers customerrepo.Repository
	waivers   waiverrepo.Repository
	assigner  Assigner
	log       *logger.Logger
}

func NewMatcher(customers customerrepo.Repository, waivers waiverrepo.Repository, assigner Assigner, log *logger.Logger) *Matcher {
	return &Matcher{
		customers: customers,
		waivers:   waivers,
		assigner:  assigner,
		log:       log,
	}
}

// Handle implements eventbus.Handler.
func (m *Matcher) Handle(ctx context.Context, ev domain.Event) error {
	if e, ok := ev.(domain.WaiverAccepted); ok {
		return m.MatchWaiver(ctx, e.Waiver.ID)
	}
	if facts, ok := domain.CustomerFactsOf(ev); ok {
		return m.MatchCustomer(ctx, facts.ID)
	}
	return nil
}

// MatchWaiver assigns the waiver when exactly one live customer has its identity.
func (m *Matcher) MatchWaiver(ctx context.Context, id domain.WaiverID) error {
	w, err := m.waivers.Get(ctx, id)
	if err != nil {
		if errors.Is(err, waiverrepo.ErrNotFound) {
			return nil
		}
		return err
	}
	if w.CustomerID != nil || w.Status != domain.WaiverStatusAccepted {
		return nil
	}
	identity := w.Identity()
	if !identity.Complete() {
		return nil
	}

	matches, err := m.customers.FindByIdentity(ctx, identity)
	if err != nil {
		return err
	}
	switch len(matches) {
	case 0:
		return nil
	case 1:
		return m.assign(ctx, matches[0].ID, w.ID)
	default:
		ids := make([]domain.CustomerID, 0, len(matches))
		for _, c := range matches {
			ids = append(ids, c.ID)
		}
		m.log.Warn("waiver matches more than one customer", "waiver_id", w.ID, "customer_ids", ids)
		return nil
	}
}

// MatchCustomer assigns every unassigned accepted waiver that carries the customer's identity.
func (m *Matcher) MatchCustomer(ctx context.Context, id domain.CustomerID) error {
	c, err := m.customers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, customerrepo.ErrNotFound) {
			return nil
		}
		return err
	}
	if c.IsDeleted() {
		return nil
	}
	identity := c.Identity()
	if !identity.Complete() {
		return nil
	}

	ws, err := m.waivers.ListUnassignedByIdentity(ctx, identity)
	if err != nil {
		return err
	}
	var errs []error
	for _, w := range ws {
		if err := m.assign(ctx, c.ID, w.ID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Matcher) assign(ctx context.Context, customer domain.CustomerID, waiver domain.WaiverID) error {
	if err := m.assigner.AssignWaiver(ctx, customer, waiver); err != nil {
		return fmt.Errorf("assign waiver %s to %s: %w", waiver, customer, err)
	}
	m.log.Info("waiver assigned", "waiver_id", waiver, "customer_id", customer)
	return nil
}
