package membership

import "github.com/denhac/membership-sync/internal/domain"

type profile struct {
	facts   domain.CustomerFacts
	deleted bool
}

func (p *profile) apply(ev domain.Event) {
	if c, ok := domain.CustomerFactsOf(ev); ok {
		p.facts = c
		p.deleted = false
		return
	}
	if _, ok := ev.(domain.CustomerDeleted); ok {
		p.deleted = true
	}
}
