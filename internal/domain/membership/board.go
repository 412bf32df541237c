package membership

import "github.com/denhac/membership-sync/internal/domain"

// board state only moves on the derived board events, so replay never re-decides it.
type board struct {
	member bool
}

func (b *board) apply(ev domain.Event) {
	switch ev.(type) {
	case domain.CustomerBecameBoardMember:
		b.member = true
	case domain.CustomerRemovedFromBoard:
		b.member = false
	}
}

func (b *board) decide(id domain.CustomerID, was, now bool) domain.Event {
	switch {
	case now && !was:
		return domain.CustomerBecameBoardMember{CustomerID: id}
	case !now && was:
		return domain.CustomerRemovedFromBoard{CustomerID: id}
	default:
		return nil
	}
}
