package inbox

import (
	"context"
	"sync"

	"github.com/denhac/membership-sync/internal/ports/out/inbox"
)

// Store is an in-memory implementation of inbox.Store.
// It is safe for concurrent use.
type Store struct {
	mu sync.RWMutex
	m  map[inbox.Fingerprint]inbox.Record
}

func NewStore() *Store {
	return &Store{
		m: make(map[inbox.Fingerprint]inbox.Record),
	}
}

func (s *Store) Get(ctx context.Context, fp inbox.Fingerprint) (inbox.Record, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.m[fp]
	return rec, ok, nil
}

func (s *Store) Put(ctx context.Context, fp inbox.Fingerprint, rec inbox.Record) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[fp] = rec
	return nil
}
