package waiverrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/ports/out/waiverrepo"
)

// Repo is an in-memory implementation of waiverrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID map[domain.WaiverID]domain.Waiver
}

func NewRepo() *Repo {
	return &Repo{
		byID: make(map[domain.WaiverID]domain.Waiver),
	}
}

func (r *Repo) Upsert(ctx context.Context, w domain.Waiver) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byID[w.ID]; ok && existing.CustomerID != nil {
		w.CustomerID = existing.CustomerID
	}
	r.byID[w.ID] = cloneWaiver(w)
	return nil
}

func (r *Repo) Assign(ctx context.Context, id domain.WaiverID, customer domain.CustomerID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.byID[id]
	if !ok {
		return waiverrepo.ErrNotFound
	}
	w.CustomerID = &customer
	r.byID[id] = w
	return nil
}

func (r *Repo) Get(ctx context.Context, id domain.WaiverID) (domain.Waiver, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.byID[id]
	if !ok {
		return domain.Waiver{}, waiverrepo.ErrNotFound
	}
	return cloneWaiver(w), nil
}

func (r *Repo) ListUnassignedByIdentity(ctx context.Context, id domain.Identity) ([]domain.Waiver, error) {
	_ = ctx
	if !id.Complete() {
		return []domain.Waiver{}, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Waiver, 0)
	for _, w := range r.byID {
		if w.CustomerID != nil || w.Status != domain.WaiverStatusAccepted {
			continue
		}
		if w.Identity() != id {
			continue
		}
		out = append(out, cloneWaiver(w))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func cloneWaiver(w domain.Waiver) domain.Waiver {
	out := w
	if w.CustomerID != nil {
		v := *w.CustomerID
		out.CustomerID = &v
	}
	return out
}
