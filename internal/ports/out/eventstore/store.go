package eventstore

import (
	"context"
	"time"

	"github.com/denhac/membership-sync/internal/domain"
)

// StoredEvent is an event as persisted in a stream.
type StoredEvent struct {
	ID         string
	Stream     string
	Seq        int64
	Event      domain.Event
	RecordedAt time.Time
}

// Store is an append-only log of events grouped into per-aggregate streams.
//
// Append requires the stream's current length to equal expectedSeq; any mismatch returns
// ErrConcurrentAppend. Replay returns events in append order.
//
// Each stream also keeps a dispatch cursor: the highest seq already handed to projectors
// and reactors. Events past the cursor are dispatched again on the stream's next update.
// MarkDispatched never moves the cursor backwards.
type Store interface {
	Append(ctx context.Context, stream string, expectedSeq int64, events ...domain.Event) ([]StoredEvent, error)
	Replay(ctx context.Context, stream string) ([]StoredEvent, error)
	Dispatched(ctx context.Context, stream string) (int64, error)
	MarkDispatched(ctx context.Context, stream string, seq int64) error
}

// After returns the events with a seq greater than seq.
func After(stored []StoredEvent, seq int64) []StoredEvent {
	for i, se := range stored {
		if se.Seq > seq {
			return stored[i:]
		}
	}
	return nil
}

// Events strips storage metadata.
func Events(stored []StoredEvent) []domain.Event {
	out := make([]domain.Event, 0, len(stored))
	for _, s := range stored {
		out = append(out, s.Event)
	}
	return out
}
