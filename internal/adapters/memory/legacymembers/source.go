package legacymembers

import (
	"context"
	"sync"

	"github.com/denhac/membership-sync/internal/ports/out/legacymembers"
)

// Source is a fixed, in-memory legacy member list.
type Source struct {
	mu      sync.RWMutex
	members []legacymembers.Member
}

func NewSource(members ...legacymembers.Member) *Source {
	return &Source{members: append([]legacymembers.Member(nil), members...)}
}

func (s *Source) List(ctx context.Context) ([]legacymembers.Member, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]legacymembers.Member{}, s.members...), nil
}

