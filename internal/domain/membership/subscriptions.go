package membership

import "github.com/denhac/membership-sync/internal/domain"

type subscriptions struct {
	oldStatus map[domain.SubscriptionID]domain.SubscriptionStatus
	newStatus map[domain.SubscriptionID]domain.SubscriptionStatus

	// everActive is never reset; see Aggregate.EverActivated.
	everActive bool
}

func newSubscriptions() subscriptions {
	return subscriptions{
		oldStatus: make(map[domain.SubscriptionID]domain.SubscriptionStatus),
		newStatus: make(map[domain.SubscriptionID]domain.SubscriptionStatus),
	}
}

func (s *subscriptions) apply(ev domain.Event) {
	if sub, ok := domain.SubscriptionFactsOf(ev); ok {
		if prev, seen := s.newStatus[sub.ID]; seen {
			s.oldStatus[sub.ID] = prev
		}
		s.newStatus[sub.ID] = sub.Status
		if sub.Status == domain.StatusActive {
			s.everActive = true
		}
		return
	}
	if _, ok := ev.(domain.MembershipActivated); ok {
		s.everActive = true
	}
}

func (s *subscriptions) status(id domain.SubscriptionID) (domain.SubscriptionStatus, bool) {
	st, ok := s.newStatus[id]
	return st, ok
}

func (s *subscriptions) anyActive() bool {
	for _, st := range s.newStatus {
		if st == domain.StatusActive {
			return true
		}
	}
	return false
}

// decide runs after the status map already holds next.
func (s *subscriptions) decide(id domain.CustomerID, prev domain.SubscriptionStatus, seen bool, next domain.SubscriptionStatus) []domain.Event {
	if seen && prev == next {
		return nil
	}

	var out []domain.Event
	if next == domain.StatusActive && (!seen || prev == "" || prev.IsIdentityCheck()) {
		out = append(out, domain.MembershipActivated{CustomerID: id})
	}
	if next.EndsMembership() && !s.anyActive() {
		out = append(out, domain.MembershipDeactivated{CustomerID: id})
	}
	return out
}
