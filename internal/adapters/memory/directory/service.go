package directory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/ports/out/directory"
)

// Service is an in-memory group directory. It is safe for concurrent use.
type Service struct {
	mu     sync.RWMutex
	groups map[string]map[string]bool
}

func NewService() *Service {
	return &Service{groups: make(map[string]map[string]bool)}
}

// Seed creates a group with the given members.
func (s *Service) Seed(group string, members ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.group(domain.NormalizeEmail(group))
	for _, m := range members {
		g[domain.NormalizeEmail(m)] = true
	}
}

func (s *Service) GroupsForDomain(ctx context.Context, dom string, progress directory.ProgressFunc) ([]directory.Group, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]directory.Group, 0)
	for addr := range s.groups {
		if strings.HasSuffix(addr, "@"+strings.ToLower(dom)) {
			out = append(out, directory.Group{Email: addr})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	if progress != nil {
		progress(1, 1)
	}
	return out, nil
}

func (s *Service) MembersOf(ctx context.Context, group string, progress directory.ProgressFunc) ([]string, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0)
	for m, in := range s.groups[domain.NormalizeEmail(group)] {
		if in {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	if progress != nil {
		progress(1, 1)
	}
	return out, nil
}

func (s *Service) AddMember(ctx context.Context, group, email string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.group(domain.NormalizeEmail(group))
	email = domain.NormalizeEmail(email)
	if g[email] {
		return directory.ErrAlreadyMember
	}
	g[email] = true
	return nil
}

func (s *Service) RemoveMember(ctx context.Context, group, email string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.group(domain.NormalizeEmail(group))
	email = domain.NormalizeEmail(email)
	if !g[email] {
		return directory.ErrNotMember
	}
	delete(g, email)
	return nil
}

func (s *Service) group(addr string) map[string]bool {
	g, ok := s.groups[addr]
	if !ok {
		g = make(map[string]bool)
		s.groups[addr] = g
	}
	return g
}
