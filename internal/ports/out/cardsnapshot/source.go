package cardsnapshot

import (
	"context"
	"time"
)

// CardHolder is one row of the access-control system's active card-holder list.
type CardHolder struct {
	FirstName string
	LastName  string
	CardNum   string
}

// Snapshot is the full active card-holder list at a point in time.
type Snapshot struct {
	CardHolders []CardHolder
	TakenAt     time.Time
}

// Store keeps the most recent snapshot reported by the card system.
type Store interface {
	Save(ctx context.Context, s Snapshot) error
	// Latest returns ok=false when no snapshot has been reported yet.
	Latest(ctx context.Context) (Snapshot, bool, error)
}
