package reactors

import (
	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/ports/out/jobqueue"
)

// GroupAddresses names the directory groups the reactor manages.
type GroupAddresses struct {
	General string
	Members string
	Board   string
}

// Groups schedules directory group Actions. Deactivation removes nobody: members stay on
// the mailing lists.
type Groups struct {
	addr GroupAddresses
}

func NewGroups(addr GroupAddresses) *Groups {
	return &Groups{addr: addr}
}

func (r *Groups) React(ev domain.Event) []jobqueue.Job {
	switch e := ev.(type) {
	case domain.CustomerCreated:
		return []jobqueue.Job{{
			Kind:       jobqueue.KindAddToDirectoryGroup,
			CustomerID: e.Customer.ID,
			Group:      r.addr.General,
			Email:      domain.NormalizeEmail(e.Customer.Email),
		}}
	case domain.MembershipActivated:
		return []jobqueue.Job{{Kind: jobqueue.KindAddToDirectoryGroup, CustomerID: e.CustomerID, Group: r.addr.Members}}
	case domain.CustomerBecameBoardMember:
		return []jobqueue.Job{{Kind: jobqueue.KindAddToDirectoryGroup, CustomerID: e.CustomerID, Group: r.addr.Board}}
	case domain.CustomerRemovedFromBoard:
		return []jobqueue.Job{{Kind: jobqueue.KindRemoveFromDirectoryGroup, CustomerID: e.CustomerID, Group: r.addr.Board}}
	}
	return nil
}
