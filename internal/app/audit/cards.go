package audit

import (
	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/ports/out/cardsnapshot"
)

// checkCards compares the access system's active card holders with the member records.
// Card numbers are compared with leading zeros stripped on both sides.
func checkCards(r *Report, members []member, holders []cardsnapshot.CardHolder) {
	active := make(map[string]bool, len(holders))
	for _, h := range holders {
		num := domain.NormalizeCardNumber(h.CardNum)
		active[num] = true

		var withCard []member
		for _, m := range members {
			if m.hasCard(num) {
				withCard = append(withCard, m)
			}
		}

		switch len(withCard) {
		case 0:
			r.addf(CategoryCard, "%s %s has the active card (%s) but I have no membership record of them with that card.",
				h.FirstName, h.LastName, h.CardNum)
			continue
		case 1:
		default:
			r.addf(CategoryCard, "%s %s has the active card (%s) but is connected to multiple accounts.",
				h.FirstName, h.LastName, h.CardNum)
			continue
		}

		m := withCard[0]
		if h.FirstName != m.FirstName || h.LastName != m.LastName {
			r.addf(CategoryCard, "%s %s has the active card (%s) but is listed as %s %s in our records.",
				h.FirstName, h.LastName, h.CardNum, m.FirstName, m.LastName)
		}
		if !m.IsMember {
			r.addf(CategoryCard, "%s %s has the active card (%s) but is not currently a member.",
				h.FirstName, h.LastName, h.CardNum)
		}
	}

	for _, m := range members {
		if m.FirstName == "" || m.LastName == "" || !m.IsMember {
			continue
		}
		for _, card := range m.Cards {
			if !active[card] {
				r.addf(CategoryCard, "%s %s has the card %s but it doesn't appear to be active", m.FirstName, m.LastName, card)
			}
		}
	}
}
