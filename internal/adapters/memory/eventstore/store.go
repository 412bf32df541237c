package eventstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/denhac/membership-sync/internal/domain"
	clockport "github.com/denhac/membership-sync/internal/ports/out/clock"
	"github.com/denhac/membership-sync/internal/ports/out/eventstore"
)

// Store is an in-memory implementation of eventstore.Store.
// It is safe for concurrent use.
type Store struct {
	mu  sync.RWMutex
	clk clockport.Clock

	streams    map[string][]eventstore.StoredEvent
	dispatched map[string]int64
}

func NewStore(clk clockport.Clock) *Store {
	return &Store{
		clk:        clk,
		streams:    make(map[string][]eventstore.StoredEvent),
		dispatched: make(map[string]int64),
	}
}

func (s *Store) Append(ctx context.Context, stream string, expectedSeq int64, events ...domain.Event) ([]eventstore.StoredEvent, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.streams[stream]
	if int64(len(existing)) != expectedSeq {
		return nil, eventstore.ErrConcurrentAppend
	}

	now := s.clk.Now().UTC()
	out := make([]eventstore.StoredEvent, 0, len(events))
	for i, ev := range events {
		out = append(out, eventstore.StoredEvent{
			ID:         uuid.NewString(),
			Stream:     stream,
			Seq:        expectedSeq + int64(i) + 1,
			Event:      ev,
			RecordedAt: now,
		})
	}
	s.streams[stream] = append(existing, out...)
	return append([]eventstore.StoredEvent(nil), out...), nil
}

func (s *Store) Replay(ctx context.Context, stream string) ([]eventstore.StoredEvent, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]eventstore.StoredEvent{}, s.streams[stream]...), nil
}

func (s *Store) Dispatched(ctx context.Context, stream string) (int64, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dispatched[stream], nil
}

func (s *Store) MarkDispatched(ctx context.Context, stream string, seq int64) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq > s.dispatched[stream] {
		s.dispatched[stream] = seq
	}
	return nil
}
