package projectors

import (
	"context"
	"errors"

	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/ports/out/eventstore"
	"github.com/denhac/membership-sync/internal/ports/out/waiverrepo"
)

// Waivers projects accepted waivers and their assignments.
type Waivers struct {
	repo waiverrepo.Repository
}

func NewWaivers(repo waiverrepo.Repository) *Waivers {
	return &Waivers{repo: repo}
}

func (p *Waivers) Project(ctx context.Context, se eventstore.StoredEvent) error {
	switch e := se.Event.(type) {
	case domain.WaiverAccepted:
		w := e.Waiver
		w.Email = domain.NormalizeEmail(w.Email)
		w.FirstName = domain.NormalizeHumanName(w.FirstName)
		w.LastName = domain.NormalizeHumanName(w.LastName)
		w.CustomerID = nil
		return p.repo.Upsert(ctx, w)
	case domain.WaiverAssignedToCustomer:
		err := p.repo.Assign(ctx, e.WaiverID, e.CustomerID)
		if errors.Is(err, waiverrepo.ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}
