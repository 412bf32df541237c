package commerce

import (
	"context"
	"sync"

	"github.com/denhac/membership-sync/internal/domain"
)

// Source is an in-memory e-commerce catalogue of customers and subscriptions.
type Source struct {
	mu        sync.RWMutex
	customers []domain.CustomerFacts
	subs      []domain.SubscriptionFacts
}

func NewSource() *Source {
	return &Source{}
}

func (s *Source) AddCustomers(cs ...domain.CustomerFacts) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers = append(s.customers, cs...)
}

func (s *Source) AddSubscriptions(subs ...domain.SubscriptionFacts) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, subs...)
}

func (s *Source) ListCustomers(ctx context.Context) ([]domain.CustomerFacts, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CustomerFacts, len(s.customers))
	for i, c := range s.customers {
		c.Capabilities = append([]string(nil), c.Capabilities...)
		c.Cards = append([]string(nil), c.Cards...)
		out[i] = c
	}
	return out, nil
}

func (s *Source) ListSubscriptions(ctx context.Context) ([]domain.SubscriptionFacts, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.SubscriptionFacts(nil), s.subs...), nil
}
