package cardsnapshot

import (
	"context"
	"sync"

	"github.com/denhac/membership-sync/internal/ports/out/cardsnapshot"
)

// Store keeps the latest card-holder snapshot in memory.
type Store struct {
	mu     sync.RWMutex
	latest *cardsnapshot.Snapshot
}

func NewStore() *Store { return &Store{} }

func (s *Store) Save(ctx context.Context, snap cardsnapshot.Snapshot) error {
	_ = ctx
	snap.CardHolders = append([]cardsnapshot.CardHolder(nil), snap.CardHolders...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = &snap
	return nil
}

func (s *Store) Latest(ctx context.Context) (cardsnapshot.Snapshot, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return cardsnapshot.Snapshot{}, false, nil
	}
	out := *s.latest
	out.CardHolders = append([]cardsnapshot.CardHolder(nil), s.latest.CardHolders...)
	return out, true, nil
}
