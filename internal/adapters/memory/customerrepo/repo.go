package customerrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/ports/out/customerrepo"
)

// Repo is an in-memory implementation of customerrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID map[domain.CustomerID]domain.Customer
}

func NewRepo() *Repo {
	return &Repo{
		byID: make(map[domain.CustomerID]domain.Customer),
	}
}

func (r *Repo) Upsert(ctx context.Context, c domain.Customer) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	c.DeletedAt = nil
	if existing, ok := r.byID[c.ID]; ok {
		c.Member = existing.Member
	}
	r.byID[c.ID] = cloneCustomer(c)
	return nil
}

func (r *Repo) SetMember(ctx context.Context, id domain.CustomerID, member bool) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return customerrepo.ErrNotFound
	}
	c.Member = member
	r.byID[id] = c
	return nil
}

func (r *Repo) SoftDelete(ctx context.Context, id domain.CustomerID, at time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return customerrepo.ErrNotFound
	}
	at = at.UTC()
	c.DeletedAt = &at
	r.byID[id] = c
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.CustomerID) (domain.Customer, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return domain.Customer{}, customerrepo.ErrNotFound
	}
	return cloneCustomer(c), nil
}

func (r *Repo) List(ctx context.Context, includeDeleted bool) ([]domain.Customer, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Customer, 0, len(r.byID))
	for _, c := range r.byID {
		if !includeDeleted && c.IsDeleted() {
			continue
		}
		out = append(out, cloneCustomer(c))
	}
	sortCustomersByID(out)
	return out, nil
}

func (r *Repo) FindByIdentity(ctx context.Context, id domain.Identity) ([]domain.Customer, error) {
	_ = ctx
	if !id.Complete() {
		return []domain.Customer{}, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Customer, 0)
	for _, c := range r.byID {
		if c.IsDeleted() || c.Identity() != id {
			continue
		}
		out = append(out, cloneCustomer(c))
	}
	sortCustomersByID(out)
	return out, nil
}

func cloneCustomer(c domain.Customer) domain.Customer {
	out := c
	out.Capabilities = append([]string(nil), c.Capabilities...)
	out.Cards = append([]string(nil), c.Cards...)
	if c.DeletedAt != nil {
		v := *c.DeletedAt
		out.DeletedAt = &v
	}
	return out
}

func sortCustomersByID(cs []domain.Customer) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].ID < cs[j].ID })
}
