package cardrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/ports/out/cardrepo"
)

// Repo is an in-memory implementation of cardrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byNumber map[string]domain.Card
}

func NewRepo() *Repo {
	return &Repo{
		byNumber: make(map[string]domain.Card),
	}
}

func (r *Repo) Upsert(ctx context.Context, c domain.Card) error {
	_ = ctx
	c.Number = domain.NormalizeCardNumber(c.Number)
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byNumber[c.Number]; ok && existing.EverActivated {
		c.EverActivated = true
	}
	if c.Active {
		c.EverActivated = true
	}
	r.byNumber[c.Number] = c
	return nil
}

func (r *Repo) SetActiveForCustomer(ctx context.Context, id domain.CustomerID, active bool) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	for n, c := range r.byNumber {
		if c.CustomerID != id {
			continue
		}
		c.Active = active
		if active {
			c.EverActivated = true
		}
		r.byNumber[n] = c
	}
	return nil
}

func (r *Repo) ListByCustomer(ctx context.Context, id domain.CustomerID) ([]domain.Card, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Card, 0)
	for _, c := range r.byNumber {
		if c.CustomerID == id {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *Repo) Get(ctx context.Context, number string) (domain.Card, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byNumber[domain.NormalizeCardNumber(number)]
	if !ok {
		return domain.Card{}, cardrepo.ErrNotFound
	}
	return c, nil
}
