package audit

import (
	"strings"

	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/ports/out/legacymembers"
)

// member is the auditor's flattened view of one person from either member source.
type member struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	IsMember  bool
	Cards     []string
	SlackID   string
}

func (m member) hasCard(number string) bool {
	for _, c := range m.Cards {
		if c == number {
			return true
		}
	}
	return false
}

// buildMembers joins customers with their subscriptions and appends the legacy members.
// A customer is a member when any of their subscriptions is active right now.
func buildMembers(customers []domain.CustomerFacts, subs []domain.SubscriptionFacts, legacy []legacymembers.Member) []member {
	active := make(map[domain.CustomerID]bool)
	for _, s := range subs {
		if s.Status == domain.StatusActive {
			active[s.CustomerID] = true
		}
	}

	out := make([]member, 0, len(customers)+len(legacy))
	for _, c := range customers {
		out = append(out, member{
			ID:        c.ID.String(),
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Email:     strings.ToLower(c.Email),
			IsMember:  active[c.ID],
			Cards:     normalizeCards(c.Cards),
			SlackID:   string(c.SlackID),
		})
	}
	for _, l := range legacy {
		out = append(out, member{
			ID:        l.PaypalID,
			FirstName: l.FirstName,
			LastName:  l.LastName,
			Email:     strings.ToLower(l.Email),
			IsMember:  l.Active,
			Cards:     normalizeCards(l.Cards),
			SlackID:   l.SlackID,
		})
	}
	return out
}

func normalizeCards(cards []string) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		if n := domain.NormalizeCardNumber(c); n != "" {
			out = append(out, n)
		}
	}
	return out
}
